package buddy

import "math/bits"

// ClassFor computes the chunk class needed to satisfy a payload request
// of n bytes, without taking the segment lock — it is a pure function of
// n. ok is false when the request cannot be satisfied by any chunk (n is
// larger than a MaxClass chunk can hold).
//
// need = n + chunkHeaderBytes; the returned class c is the smallest
// integer with 1<<c >= need, clamped up to MinClass. A request whose
// payload exactly fills a class's capacity must round down to that
// class, not up to the next one: requesting exactly
// (1<<MinClass)-chunkHeaderBytes bytes must yield a MinClass chunk, and
// only one byte more should spill into MinClass+1. bits.Len64(need-1)
// gives exactly that boundary (the "-1" is what keeps an exact power of
// two from rounding itself up a class).
func ClassFor(n int) (c int, ok bool) {
	if n < 0 {
		n = 0
	}
	need := uint64(n) + uint64(chunkHeaderBytes)

	c = bits.Len64(need - 1)
	if c < MinClass {
		c = MinClass
	}
	if c > MaxClass {
		return 0, false
	}
	return c, true
}
