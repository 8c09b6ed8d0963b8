//go:build !linux

package shm

import (
	"runtime"
	"sync/atomic"
)

// futexWait degrades to a yielding spin on platforms without the Linux
// futex syscall. CreateSegment is unavailable on these platforms, so no
// lock word here is ever shared with another process, and the lack of a
// real blocking wait costs CPU but never correctness.
func futexWait(addr *uint32, expect uint32) {
	for atomic.LoadUint32(addr) == expect {
		runtime.Gosched()
	}
}

// futexWake is a no-op: there is nothing parked in a real wait queue to
// wake on this platform.
func futexWake(addr *uint32, n int32) {}
