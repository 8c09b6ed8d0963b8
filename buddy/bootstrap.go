package buddy

import (
	"math/bits"

	"github.com/shmbuddy/shmbuddy/offset"
)

// firstUsableOffset returns o0: the smallest power of two strictly
// greater than headerSize, but never less than 1<<MinClass. Any chunk
// placed at or after o0 satisfies the natural-alignment invariant and
// cannot overlap the segment header.
//
// This can leave unused bytes between the header and o0 (e.g. a
// 900-byte header rounds up to a 1024-byte o0). That waste is a
// deliberate trade for keeping "no chunk overlaps the header" a plain
// alignment check rather than a general interval-overlap test, not a
// bug to optimize away.
func firstUsableOffset(headerSize uint64) uint64 {
	o0 := uint64(1)
	for o0 <= headerSize {
		o0 <<= 1
	}
	if min := uint64(1) << MinClass; o0 < min {
		o0 = min
	}
	return o0
}

// chooseClass picks the largest class c such that a chunk of that class
// placed at offset o is both naturally aligned and fits before limit.
// It starts from ffs(o)-1 (the number of trailing zero bits in o, i.e.
// the largest alignment o already has), clamps to MaxClass, and backs
// off until the fit test passes. Returns a value below MinClass if no
// usable class fits, signaling the bootstrap tiling to stop.
func chooseClass(o, limit uint64) int {
	c := bits.TrailingZeros64(o)
	if c > MaxClass {
		c = MaxClass
	}
	for c >= MinClass {
		size := uint64(1) << uint(c)
		if o&(size-1) == 0 && o+size <= limit {
			return c
		}
		c--
	}
	return c
}

// bootstrap tiles the post-header region of a freshly formatted segment
// with the largest naturally-aligned power-of-two chunks that fit,
// linking each onto its class's free list. This establishes invariants
// A-F before any Alloc/Free call is made.
func (a *Allocator) bootstrap() {
	o := a.o0
	limit := a.header.segmentSize

	for limit-o >= uint64(1)<<MinClass {
		c := chooseClass(o, limit)
		if c < MinClass {
			break
		}
		a.formatFreeChunk(offset.Offset(o), c)
		a.insertFree(offset.Offset(o), c)
		o += uint64(1) << uint(c)
	}
}
