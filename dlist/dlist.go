// Package dlist implements an intrusive circular doubly-linked list whose
// prev/next fields are offsets, not pointers, so the list can be embedded
// directly inside a memory-mapped shared-memory segment and walked by any
// process mapping that segment, regardless of where the segment happens to
// be mapped in that process's address space.
//
// A Node may be a free-standing list head (as embedded in a segment
// header) or the intrusive anchor inside a larger structure (as embedded
// inside a chunk header). Callers supply a Resolver that turns an Offset
// into the *Node living at that address; dlist itself has no notion of
// "the structure containing the node" beyond that.
package dlist

import "github.com/shmbuddy/shmbuddy/offset"

// Node is the intrusive list link: two segment-relative offsets. An empty
// (self-linked) node satisfies Next == Prev == its own offset.
type Node struct {
	Next offset.Offset
	Prev offset.Offset
}

// Resolver maps the offset of a Node to the Node itself. All offsets
// dlist operates on are node offsets, never offsets of some enclosing
// structure; callers needing the enclosing structure subtract a constant
// header size themselves (see buddy.chunkHeaderBytes).
type Resolver func(offset.Offset) *Node

// Init sets node's prev and next to its own offset, making it an empty
// circular list of one (itself, linked to nothing).
func Init(self offset.Offset, node *Node) {
	node.Next = self
	node.Prev = self
}

// IsEmpty reports whether head (whose own offset is self) has no
// elements linked after it.
func IsEmpty(self offset.Offset, head *Node) bool {
	return head.Next == self
}

// Add inserts node (living at offset nodeOff) immediately after base
// (living at offset baseOff). All four pointers touched are updated
// together; callers are responsible for serializing concurrent access
// (the buddy allocator does this via its segment lock).
func Add(resolve Resolver, baseOff offset.Offset, base *Node, nodeOff offset.Offset, node *Node) {
	succOff := base.Next
	succ := resolve(succOff)

	node.Prev = baseOff
	node.Next = succOff
	succ.Prev = nodeOff
	base.Next = nodeOff
}

// Del unlinks node (living at offset self) from whatever list it is on
// and reinitializes it so it is safe to Add again.
func Del(resolve Resolver, self offset.Offset, node *Node) {
	prev := resolve(node.Prev)
	next := resolve(node.Next)
	prev.Next = node.Next
	next.Prev = node.Prev
	Init(self, node)
}

// PopFront removes and returns the offset of the first node linked after
// head (living at offset headOff), or offset.Null if the list is empty.
func PopFront(resolve Resolver, headOff offset.Offset, head *Node) offset.Offset {
	if IsEmpty(headOff, head) {
		return offset.Null
	}
	firstOff := head.Next
	first := resolve(firstOff)
	Del(resolve, firstOff, first)
	return firstOff
}
