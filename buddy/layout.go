package buddy

import (
	"unsafe"

	"github.com/shmbuddy/shmbuddy/dlist"
	"github.com/shmbuddy/shmbuddy/shm"
)

const (
	// MinClass is the smallest chunk class: chunks of this class are
	// 1<<MinClass = 64 bytes.
	MinClass = 6

	// MaxClass is the largest chunk class: chunks of this class are
	// 1<<MaxClass = 2 GiB.
	MaxClass = 31

	// numClasses is the number of distinct chunk classes, [MinClass, MaxClass].
	numClasses = MaxClass - MinClass + 1
)

// classIndex converts a class in [MinClass, MaxClass] to a 0-based index
// into the per-class arrays.
func classIndex(c int) int { return c - MinClass }

// chunkHeader is the fixed-size header at the front of every chunk. When
// the chunk is free, list is linked into free_list[mclass]; when active,
// the bytes at and after list are the caller's payload — the address of
// list is the pointer Alloc returns, so a chunk's identity as seen by the
// caller never moves across the free/active transition.
type chunkHeader struct {
	mclass uint32
	active uint32
	list   dlist.Node
}

// chunkHeaderBytes is the offset of the list field within chunkHeader:
// the part of the header that can never be reused as payload, because a
// free chunk needs it to stay linked. Every class-selection computation
// must add this in before comparing a request against a chunk's total
// size, or a request sized exactly to a chunk's class would overrun it.
const chunkHeaderBytes = unsafe.Offsetof(chunkHeader{}.list)

// segmentHeader sits at offset 0 of every segment. Its layout is fixed
// for the segment's lifetime; nothing below o0 (see bootstrap.go) is ever
// part of a chunk (invariant D).
type segmentHeader struct {
	segmentID   uint64
	segmentSize uint64

	freeList  [numClasses]dlist.Node
	numActive [numClasses]uint64
	numFree   [numClasses]uint64

	// rw serializes every Alloc/Free (taken exclusively) against Stats
	// (taken shared), so a snapshot never observes a free list mid-splice.
	rw shm.RWMutex
}

// segmentHeaderSize is unsafe.Sizeof(segmentHeader{}), used by the
// bootstrap tiling to find the first chunk-aligned offset past the
// header.
const segmentHeaderSize = unsafe.Sizeof(segmentHeader{})
