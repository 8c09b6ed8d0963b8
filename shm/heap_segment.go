package shm

import (
	"unsafe"

	"github.com/bytedance/gopkg/lang/dirtmake"

	"github.com/shmbuddy/shmbuddy/offset"
)

// NewHeapSegment allocates a Segment backed by a single process's heap
// rather than a real OS shared-memory object. It satisfies the same
// offset/locking contract as a CreateSegment result (futex-based Mutex
// works on any address stable for the process's lifetime, not only on
// mmap'd pages) but is not shareable across processes and has no FD.
//
// This exists for portable, privilege-free testing of the buddy
// allocator's bit-arithmetic and list logic on platforms or sandboxes
// where memfd_create/mmap are unavailable; production callers use
// CreateSegment.
func NewHeapSegment(size uint64) (*Segment, error) {
	if size == 0 {
		return nil, ErrInvalidSize
	}

	data := dirtmake.Bytes(int(size), int(size))
	// dirtmake deliberately skips zeroing; the segment header's Init
	// clears every field it cares about, so stale bytes never leak into
	// an invariant.

	return &Segment{
		fd:   -1,
		heap: true,
		data: data,
		base: offset.Base(uintptr(unsafe.Pointer(&data[0]))),
		size: size,
	}, nil
}
