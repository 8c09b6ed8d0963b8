// Package offset implements the bidirectional translation between a raw
// pointer into a mapped shared-memory segment and a non-negative integer
// offset relative to the segment's base address.
//
// Every cross-process reference stored inside the segment (list pointers,
// chunk identities) is an Offset, never a native pointer: two processes
// that map the same segment will in general get different base addresses
// back from mmap, so only offsets relative to each process's own base are
// portable between them.
package offset

import "unsafe"

// Offset is a position relative to a segment's base address. The zero
// value, Null, is reserved as the sentinel for "no chunk" and never
// denotes a usable address: nothing the allocator hands out ever sits at
// offset 0, since the segment header itself occupies the first bytes of
// every segment.
type Offset uint64

// Null is the offset sentinel equivalent to a nil pointer.
const Null Offset = 0

// Base is the address a segment happens to be mapped at in the calling
// process. It is not itself shared between processes; only Offset values
// computed relative to it are.
type Base uintptr

// Ptr returns the raw mapped base address, bypassing the Null sentinel
// logic in AddrOf. Used once, at segment setup, to locate the segment
// header which always begins at byte 0.
func (b Base) Ptr() unsafe.Pointer {
	return unsafe.Pointer(uintptr(b))
}

// OffsetOf returns 0 if p is nil; otherwise it returns p-B as an offset.
// It is a precondition that p lies within the mapped segment.
func (b Base) OffsetOf(p unsafe.Pointer) Offset {
	if p == nil {
		return Null
	}
	return Offset(uintptr(p) - uintptr(b))
}

// AddrOf returns nil if o is Null; otherwise it returns B+o.
func (b Base) AddrOf(o Offset) unsafe.Pointer {
	if o == Null {
		return nil
	}
	return unsafe.Pointer(uintptr(b) + uintptr(o))
}
