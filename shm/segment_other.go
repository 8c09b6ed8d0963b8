//go:build !linux

package shm

// CreateSegment is unavailable outside Linux: memfd_create and the raw
// futex syscalls this package relies on for process-shared locking are
// Linux-specific. Build against shm.NewHeapSegment (heap_segment.go) for
// single-process testing on any platform.
func CreateSegment(size uint64, opts Options) (*Segment, error) {
	return nil, ErrUnsupportedPlatform
}

// AttachSegment is unavailable outside Linux; see CreateSegment.
func AttachSegment(fd int, size uint64) (*Segment, error) {
	return nil, ErrUnsupportedPlatform
}

// Close is a no-op stand-in; real segments never exist on this platform.
func (s *Segment) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}
