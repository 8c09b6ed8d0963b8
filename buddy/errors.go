package buddy

import "errors"

var (
	// ErrSegmentTooSmall is returned by Init when S cannot fit even a
	// single MinClass chunk after the header.
	ErrSegmentTooSmall = errors.New("buddy: segment too small to carve a class-6 chunk")

	// ErrInvalidSize is returned by Init for a non-positive segment size.
	ErrInvalidSize = errors.New("buddy: segment size must be positive")
)
