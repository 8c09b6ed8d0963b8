//go:build linux

package shm

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// FUTEX_WAIT and FUTEX_WAKE, deliberately without FUTEX_PRIVATE_FLAG:
// the private variants tell the kernel the futex word is only ever
// touched by threads of one process, which is exactly the assumption
// this package must NOT make — the whole point is that several processes
// wait on the same word at different virtual addresses mapping the same
// physical page.
const (
	futexWaitOp = 0
	futexWakeOp = 1
)

// futexWait blocks the calling thread while *addr == expect, returning
// either when woken or immediately if the value has already changed.
// Spurious wakeups are possible; the caller's CAS loop re-checks state.
func futexWait(addr *uint32, expect uint32) {
	unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(addr)), uintptr(futexWaitOp), uintptr(expect), 0, 0, 0)
}

// futexWake wakes up to n threads blocked on addr.
func futexWake(addr *uint32, n int32) {
	unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(addr)), uintptr(futexWakeOp), uintptr(uint32(n)), 0, 0, 0)
}
