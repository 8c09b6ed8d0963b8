package shm

import (
	"sync"

	"github.com/shmbuddy/shmbuddy/offset"
)

// Options configures segment creation, as a typed options struct rather
// than a config file or env-loader: this is a library, not a service.
type Options struct {
	// HugePages requests hugetlb backing (MFD_HUGETLB on the memfd,
	// MAP_HUGETLB on the mapping). Where the kernel cannot satisfy it,
	// the caller finds out via the error returned from CreateSegment,
	// not a silent downgrade.
	HugePages bool
}

// Segment is a contiguous, process-shareable byte region, together with
// the OS handle needed to let another process attach to the same bytes.
type Segment struct {
	mu sync.Mutex
	fd int
	// heap is true for a Segment created by NewHeapSegment: data is a
	// plain Go-allocated slice, not an mmap'd region, so Close must not
	// hand it to munmap or close fd (-1 for a heap segment).
	heap   bool
	data   []byte
	base   offset.Base
	size   uint64
	closed bool
}

// ID is the opaque identifier recorded in the segment header so a
// later-joining process can confirm it has attached the segment it
// expects. It is derived from the creating process's PID and a random
// nonce, not from the memfd's file descriptor number (fd numbers are
// process-local and meaningless to a peer).
type ID uint64

// Base returns the address this segment is mapped at in the calling
// process. Only Offset values computed relative to it are portable to
// other processes; Base itself is not.
func (s *Segment) Base() offset.Base {
	return s.base
}

// Size returns the segment size in bytes, fixed for the segment's
// lifetime.
func (s *Segment) Size() uint64 {
	return s.size
}

// Bytes returns the mapped region as a byte slice. Callers building
// structures on top of it (the buddy allocator) are expected to use
// unsafe pointer arithmetic from Base(), not slice indexing, once past
// initialization, since the slice header itself carries no cross-process
// meaning.
func (s *Segment) Bytes() []byte {
	return s.data
}

// FD returns the OS file descriptor backing the segment, valid only in
// the calling process. Handing it to another process (e.g. over a
// Unix-domain socket with SCM_RIGHTS) is how that process would attach;
// that channel is out of scope here.
func (s *Segment) FD() int {
	return s.fd
}
