// Package buddy implements a buddy allocator over a process-shared
// memory segment. Multiple processes mapping the same segment (via
// shm.CreateSegment / shm.AttachSegment) may call Alloc and Free
// concurrently; every call serializes on a single mutex living inside
// the segment header.
//
// Chunks are powers of two from 1<<MinClass (64 bytes) to 1<<MaxClass
// (2 GiB), identified internally by class (their base-2 log). All
// cross-process references — free-list links, the pointer Alloc
// returns — are segment-relative offsets (package offset), never native
// pointers, so the allocator's structures mean the same thing regardless
// of where each process happens to have mapped the segment.
package buddy

import (
	"fmt"
	"unsafe"

	"github.com/shmbuddy/shmbuddy/dlist"
	"github.com/shmbuddy/shmbuddy/offset"
	"github.com/shmbuddy/shmbuddy/shm"
)

// Allocator manages chunks within a single mapped Segment.
type Allocator struct {
	seg    *shm.Segment
	base   offset.Base
	header *segmentHeader
	o0     uint64 // first offset past the header; see bootstrap.go
}

// Init creates a new process-shared segment of size bytes, optionally
// backed by huge pages, formats its header, and tiles the region after
// the header into the largest naturally-aligned free chunks that fit.
func Init(size uint64, hugePages bool) (*Allocator, error) {
	if size == 0 {
		return nil, ErrInvalidSize
	}
	seg, err := shm.CreateSegment(size, shm.Options{HugePages: hugePages})
	if err != nil {
		return nil, err
	}
	a, err := initOnSegment(seg)
	if err != nil {
		seg.Close()
		return nil, err
	}
	return a, nil
}

// InitOnHeap formats and bootstraps an allocator over a single-process
// heap-backed segment (shm.NewHeapSegment). It exists for portable,
// privilege-free testing of the allocator's logic on platforms where
// real shared memory is unavailable; production callers use Init.
func InitOnHeap(size uint64) (*Allocator, error) {
	if size == 0 {
		return nil, ErrInvalidSize
	}
	seg, err := shm.NewHeapSegment(size)
	if err != nil {
		return nil, err
	}
	return initOnSegment(seg)
}

// Attach wraps an already-initialized segment (one a peer process
// created with Init and handed this process a descriptor for) without
// reformatting or re-bootstrapping it. The segment's header is read as
// it already stands.
func Attach(seg *shm.Segment) *Allocator {
	return &Allocator{
		seg:    seg,
		base:   seg.Base(),
		header: (*segmentHeader)(seg.Base().Ptr()),
		o0:     firstUsableOffset(uint64(segmentHeaderSize)),
	}
}

// Segment returns the underlying segment, e.g. for Close.
func (a *Allocator) Segment() *shm.Segment { return a.seg }

func initOnSegment(seg *shm.Segment) (*Allocator, error) {
	o0 := firstUsableOffset(uint64(segmentHeaderSize))
	if seg.Size() < o0+(uint64(1)<<MinClass) {
		return nil, fmt.Errorf("%w: size=%d, need at least %d", ErrSegmentTooSmall, seg.Size(), o0+(uint64(1)<<MinClass))
	}

	a := &Allocator{
		seg:    seg,
		base:   seg.Base(),
		header: (*segmentHeader)(seg.Base().Ptr()),
		o0:     o0,
	}

	id, err := shm.NewID()
	if err != nil {
		return nil, err
	}

	h := a.header
	h.segmentID = uint64(id)
	h.segmentSize = seg.Size()
	for i := range h.freeList {
		headOff := a.base.OffsetOf(unsafe.Pointer(&h.freeList[i]))
		dlist.Init(headOff, &h.freeList[i])
		h.numActive[i] = 0
		h.numFree[i] = 0
	}
	h.rw.Init()

	a.bootstrap()
	return a, nil
}

// resolveNode implements dlist.Resolver for this allocator's segment.
func (a *Allocator) resolveNode(o offset.Offset) *dlist.Node {
	return (*dlist.Node)(a.base.AddrOf(o))
}

func (a *Allocator) chunkAt(o offset.Offset) *chunkHeader {
	return (*chunkHeader)(a.base.AddrOf(o))
}

func (a *Allocator) headOffset(c int) offset.Offset {
	return a.base.OffsetOf(unsafe.Pointer(&a.header.freeList[classIndex(c)]))
}

func (a *Allocator) formatFreeChunk(o offset.Offset, c int) {
	ch := a.chunkAt(o)
	ch.mclass = uint32(c)
	ch.active = 0
}

// insertFree links the chunk at offset o (already formatted with class
// c) onto free_list[c] and increments num_free[c].
func (a *Allocator) insertFree(o offset.Offset, c int) {
	idx := classIndex(c)
	head := &a.header.freeList[idx]
	nodeOff := o + offset.Offset(chunkHeaderBytes)
	node := a.resolveNode(nodeOff)
	dlist.Add(a.resolveNode, a.headOffset(c), head, nodeOff, node)
	a.header.numFree[idx]++
}

// popFree detaches and returns the offset of the first chunk on
// free_list[c], or offset.Null if the list is empty. Decrements
// num_free[c] on success.
func (a *Allocator) popFree(c int) offset.Offset {
	idx := classIndex(c)
	head := &a.header.freeList[idx]
	nodeOff := dlist.PopFront(a.resolveNode, a.headOffset(c), head)
	if nodeOff == offset.Null {
		return offset.Null
	}
	a.header.numFree[idx]--
	return nodeOff - offset.Offset(chunkHeaderBytes)
}

// removeFree detaches a specific chunk (not necessarily the head) from
// free_list[c], used when coalescing needs to pull out a known buddy.
func (a *Allocator) removeFree(o offset.Offset, c int) {
	nodeOff := o + offset.Offset(chunkHeaderBytes)
	node := a.resolveNode(nodeOff)
	dlist.Del(a.resolveNode, nodeOff, node)
	a.header.numFree[classIndex(c)]--
}

// ensureClass makes sure free_list[c] is non-empty, recursively
// splitting a chunk of class c+1 in half if necessary. Returns false if
// no chunk of class c can be produced even by splitting all the way up
// to MaxClass.
func (a *Allocator) ensureClass(c int) bool {
	if !dlist.IsEmpty(a.headOffset(c), &a.header.freeList[classIndex(c)]) {
		return true
	}
	if c == MaxClass {
		return false
	}
	if !a.ensureClass(c + 1) {
		return false
	}

	parent := a.popFree(c + 1)
	half := uint64(1) << uint(c)
	left := parent
	right := parent + offset.Offset(half)

	a.formatFreeChunk(left, c)
	a.formatFreeChunk(right, c)
	a.insertFree(left, c)
	a.insertFree(right, c)
	return true
}

// Alloc reserves a chunk able to hold at least n payload bytes and
// returns the offset of its payload (the address of the chunk's list
// node), or offset.Null if no chunk can be produced.
func (a *Allocator) Alloc(n int) offset.Offset {
	c, ok := ClassFor(n)
	if !ok {
		return offset.Null
	}

	a.header.rw.Lock()
	defer a.header.rw.Unlock()

	if !a.ensureClass(c) {
		return offset.Null
	}
	chunkOff := a.popFree(c)
	ch := a.chunkAt(chunkOff)
	ch.active = 1
	a.header.numActive[classIndex(c)]++

	return chunkOff + offset.Offset(chunkHeaderBytes)
}

// Free returns a chunk previously obtained from Alloc. Freeing
// offset.Null is a no-op. Freeing an offset not obtained from Alloc, or
// freeing the same offset twice, is undefined; a build tagged buddydebug
// turns the common case of the latter into a panic instead (debug.go).
func (a *Allocator) Free(p offset.Offset) {
	if p == offset.Null {
		return
	}
	chunkOff := p - offset.Offset(chunkHeaderBytes)

	a.header.rw.Lock()
	defer a.header.rw.Unlock()

	ch := a.chunkAt(chunkOff)
	debugAssertActive(ch)

	c := int(ch.mclass)
	ch.active = 0
	a.header.numActive[classIndex(c)]--

	o := uint64(chunkOff)
	for c < MaxClass {
		size := uint64(1) << uint(c)
		buddyOff := o ^ size

		if buddyOff < a.o0 {
			break // would reach into the segment header (invariant D)
		}
		if buddyOff+size > a.header.segmentSize {
			break // buddy was never carved as a whole chunk
		}

		buddy := a.chunkAt(offset.Offset(buddyOff))
		if buddy.active != 0 || int(buddy.mclass) != c {
			break // buddy in use, or itself subdivided
		}

		a.removeFree(offset.Offset(buddyOff), c)

		merged := o &^ ((uint64(1) << uint(c+1)) - 1)
		mergedCh := a.chunkAt(offset.Offset(merged))
		mergedCh.mclass = uint32(c + 1)
		mergedCh.active = 0

		o = merged
		c++
	}

	a.formatFreeChunk(offset.Offset(o), c)
	a.insertFree(offset.Offset(o), c)
}

// IsValidOffset reports whether p could plausibly be a payload offset
// returned by Alloc: in bounds, past the header, and aligned to at least
// a MinClass boundary. It does not confirm the chunk is currently
// active — callers receiving an offset from an untrusted peer process
// should use this before calling Free, not as a substitute for Free's
// own (debug-only) consistency checks.
func (a *Allocator) IsValidOffset(p offset.Offset) bool {
	if uint64(p) < uint64(chunkHeaderBytes) {
		return false
	}
	chunkOff := uint64(p) - uint64(chunkHeaderBytes)
	if chunkOff < a.o0 || chunkOff >= a.header.segmentSize {
		return false
	}
	return chunkOff&((uint64(1)<<MinClass)-1) == 0
}

// Class exposes the lockless class-selection computation a caller can
// use to pre-size requests; equivalent to ClassFor but kept as a method
// for callers holding only an *Allocator.
func (a *Allocator) Class(n int) (int, bool) {
	return ClassFor(n)
}
