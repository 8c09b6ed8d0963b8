package buddy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmbuddy/shmbuddy/offset"
)

func TestInitRejectsZeroSize(t *testing.T) {
	_, err := InitOnHeap(0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestInitRejectsSegmentTooSmallForOneChunk(t *testing.T) {
	_, err := InitOnHeap(uint64(segmentHeaderSize)) // no room for o0's chunk
	assert.ErrorIs(t, err, ErrSegmentTooSmall)
}

func TestAllocReturnsDistinctOffsets(t *testing.T) {
	a, err := InitOnHeap(1 << 16)
	require.NoError(t, err)

	p1 := a.Alloc(32)
	p2 := a.Alloc(32)
	require.NotEqual(t, offset.Null, p1)
	require.NotEqual(t, offset.Null, p2)
	assert.NotEqual(t, p1, p2)
}

func TestAllocZeroLengthStillReturnsUsableChunk(t *testing.T) {
	a, err := InitOnHeap(1 << 16)
	require.NoError(t, err)

	p := a.Alloc(0)
	assert.True(t, a.IsValidOffset(p))
	a.Free(p)
}

func TestFreeThenAllocReusesSpace(t *testing.T) {
	a, err := InitOnHeap(1 << 16)
	require.NoError(t, err)

	p1 := a.Alloc(4000)
	a.Free(p1)
	p2 := a.Alloc(4000)

	assert.Equal(t, p1, p2, "freeing the only chunk of a class must make the identical offset available again")
}

func TestSplitThenFullCoalesceRestoresSingleFreeChunk(t *testing.T) {
	a, err := InitOnHeap(1 << 16)
	require.NoError(t, err)

	before := a.Stats()

	// Force a split: allocate something small enough to require splitting
	// the smallest bootstrap chunk (class 10, at o0) down several classes.
	p := a.Alloc(10)
	require.NotEqual(t, offset.Null, p)
	a.Free(p)

	after := a.Stats()
	assert.Equal(t, before, after, "alloc immediately followed by free of the same chunk must fully coalesce back to the original layout")
}

func TestAllocExhaustionReturnsNull(t *testing.T) {
	a, err := InitOnHeap(1 << 13) // small: a handful of MinClass chunks after header
	require.NoError(t, err)

	var got []offset.Offset
	for {
		p := a.Alloc(1)
		if p == offset.Null {
			break
		}
		got = append(got, p)
	}
	assert.NotEmpty(t, got)

	// Every chunk is exhausted; one more request must fail, not panic or
	// silently overlap a previous allocation.
	assert.Equal(t, offset.Null, a.Alloc(1))

	for _, p := range got {
		a.Free(p)
	}
}

func TestAllocRequestLargerThanSegmentFails(t *testing.T) {
	a, err := InitOnHeap(1 << 16)
	require.NoError(t, err)

	assert.Equal(t, offset.Null, a.Alloc(1<<20))
}

func TestFreeNullIsNoop(t *testing.T) {
	a, err := InitOnHeap(1 << 16)
	require.NoError(t, err)
	assert.NotPanics(t, func() { a.Free(offset.Null) })
}

func TestStatsAccountForActiveAndFree(t *testing.T) {
	a, err := InitOnHeap(1 << 16)
	require.NoError(t, err)

	c, ok := a.Class(100)
	require.True(t, ok)

	freeBefore := freeCountForClass(t, a.Stats(), c)

	p := a.Alloc(100)
	mid := a.Stats()
	assert.Equal(t, uint64(1), classStat(t, mid, c).Active)
	assert.Equal(t, uint64(1), mid.TotalActive)
	// A 64 KiB bootstrap has no class-7 chunk, so the alloc splits a larger
	// chunk and the other half of the final split stays on free_list[c].
	assert.Equal(t, freeBefore+1, classStat(t, mid, c).Free, "splitting down to class c must leave exactly one sibling chunk on free_list[c]")

	a.Free(p)

	after := a.Stats()
	assert.Equal(t, uint64(0), after.TotalActive)
	assert.Equal(t, freeBefore, classStat(t, after, c).Free, "freeing the chunk must restore free_list[c] to its pre-alloc count")
}

func classStat(t *testing.T, s Stats, c int) ClassStats {
	t.Helper()
	for _, cs := range s.PerClass {
		if cs.Class == c {
			return cs
		}
	}
	t.Fatalf("class %d not present in stats", c)
	return ClassStats{}
}

func freeCountForClass(t *testing.T, s Stats, c int) uint64 {
	return classStat(t, s, c).Free
}

func TestIsValidOffsetRejectsOutOfRange(t *testing.T) {
	a, err := InitOnHeap(1 << 16)
	require.NoError(t, err)

	assert.False(t, a.IsValidOffset(offset.Offset(a.SegmentSize()+1000)))
	assert.False(t, a.IsValidOffset(offset.Offset(1))) // inside the header
}

func TestConcurrentAllocFreeDoesNotCorruptFreeLists(t *testing.T) {
	a, err := InitOnHeap(1 << 20)
	require.NoError(t, err)

	const workers = 8
	const rounds = 200

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				p := a.Alloc(64)
				if p == offset.Null {
					continue
				}
				a.Free(p)
			}
		}()
	}
	wg.Wait()

	// After every worker has allocated and freed in lockstep, the segment
	// must have returned to its original, fully-coalesced bootstrap state.
	stats := a.Stats()
	var total uint64
	for _, s := range stats.PerClass {
		total += s.Free * (uint64(1) << uint(s.Class))
		assert.Equal(t, uint64(0), s.Active, "no allocation should remain active")
	}
	assert.Equal(t, uint64(0), stats.TotalActive)
	assert.Equal(t, a.SegmentSize()-a.o0, total)
}
