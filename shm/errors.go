package shm

import "errors"

var (
	// ErrInvalidSize is returned when a requested segment size is zero.
	ErrInvalidSize = errors.New("shm: invalid segment size")

	// ErrCreateFailed wraps an underlying OS failure creating or mapping
	// the segment (memfd_create, ftruncate, mmap).
	ErrCreateFailed = errors.New("shm: segment creation failed")

	// ErrUnsupportedPlatform is returned by CreateSegment on platforms
	// without the memfd_create/futex primitives this package is built on.
	ErrUnsupportedPlatform = errors.New("shm: unsupported platform")

	// ErrClosed is returned by Close on a Segment that has already been
	// closed.
	ErrClosed = errors.New("shm: segment already closed")
)
