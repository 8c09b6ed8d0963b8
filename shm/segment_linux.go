//go:build linux

package shm

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/shmbuddy/shmbuddy/offset"
)

// CreateSegment creates a new anonymous, process-shareable memory region
// of size bytes and maps it into the caller's address space.
//
// The region is backed by memfd_create(2): unlike shm_open, the
// resulting object has no name in any filesystem namespace from the
// moment it is created, so there is no separate unlink-to-defer-
// reclamation step the way named shared memory needs — the kernel
// already reclaims the pages once the last mapping referencing them is
// torn down and the last fd referencing them is closed. Inheriting the
// fd into another process (e.g. via fork, or SCM_RIGHTS over a
// Unix-domain socket) is how that process attaches; that channel is out
// of scope here.
func CreateSegment(size uint64, opts Options) (*Segment, error) {
	if size == 0 {
		return nil, ErrInvalidSize
	}

	mfdFlags := unix.MFD_CLOEXEC
	if opts.HugePages {
		mfdFlags |= unix.MFD_HUGETLB
	}
	fd, err := unix.MemfdCreate("shmbuddy", mfdFlags)
	if err != nil {
		return nil, fmt.Errorf("%w: memfd_create: %v", ErrCreateFailed, err)
	}

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: ftruncate: %v", ErrCreateFailed, err)
	}

	return mapFD(fd, size, opts)
}

// AttachSegment maps an already-open, inherited file descriptor as a
// segment of the given size. The caller is responsible for having
// obtained fd from the process that created it (outside this package's
// scope).
func AttachSegment(fd int, size uint64) (*Segment, error) {
	if size == 0 {
		return nil, ErrInvalidSize
	}
	return mapFD(fd, size, Options{})
}

func mapFD(fd int, size uint64, opts Options) (*Segment, error) {
	flags := unix.MAP_SHARED
	if opts.HugePages {
		flags |= unix.MAP_HUGETLB
	}

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, flags)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: mmap: %v", ErrCreateFailed, err)
	}

	seg := &Segment{
		fd:   fd,
		data: data,
		base: offset.Base(uintptr(unsafe.Pointer(&data[0]))),
		size: size,
	}
	return seg, nil
}

// Close unmaps the segment and closes the process's file descriptor. The
// backing pages are reclaimed once every process that mapped them has
// done the same. For a heap-backed Segment (NewHeapSegment) there is
// nothing to unmap or close; Close only marks it closed, so a second
// Close returns ErrClosed just as it does for a real segment.
func (s *Segment) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.closed = true

	if s.heap {
		return nil
	}

	var unmapErr error
	if s.data != nil {
		unmapErr = unix.Munmap(s.data)
		s.data = nil
	}
	closeErr := unix.Close(s.fd)

	if unmapErr != nil {
		return fmt.Errorf("shm: munmap: %w", unmapErr)
	}
	return closeErr
}
