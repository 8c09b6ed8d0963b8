package dlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmbuddy/shmbuddy/offset"
)

// arena is a small in-process stand-in for a mapped segment: a slice of
// Node, indexed by position, used as both list heads and list elements.
// Offset i refers to arena[i].
type arena []Node

func (a arena) resolve(o offset.Offset) *Node {
	return &a[o]
}

func TestInitIsEmpty(t *testing.T) {
	a := make(arena, 1)
	Init(0, &a[0])
	assert.True(t, IsEmpty(0, &a[0]))
}

func TestAddAndPopFrontLIFO(t *testing.T) {
	a := make(arena, 4)
	for i := range a {
		Init(offset.Offset(i), &a[i])
	}

	// Insert 1, 2, 3 after head 0, each time immediately after the head,
	// so the list ends up in LIFO order relative to insertion: 3, 2, 1.
	Add(a.resolve, 0, &a[0], 1, &a[1])
	Add(a.resolve, 0, &a[0], 2, &a[2])
	Add(a.resolve, 0, &a[0], 3, &a[3])

	require.False(t, IsEmpty(0, &a[0]))

	got := PopFront(a.resolve, 0, &a[0])
	assert.Equal(t, offset.Offset(3), got)
	got = PopFront(a.resolve, 0, &a[0])
	assert.Equal(t, offset.Offset(2), got)
	got = PopFront(a.resolve, 0, &a[0])
	assert.Equal(t, offset.Offset(1), got)

	assert.True(t, IsEmpty(0, &a[0]))
}

func TestDelReinitializesNode(t *testing.T) {
	a := make(arena, 3)
	for i := range a {
		Init(offset.Offset(i), &a[i])
	}
	Add(a.resolve, 0, &a[0], 1, &a[1])
	Add(a.resolve, 0, &a[0], 2, &a[2])

	Del(a.resolve, 1, &a[1])
	assert.True(t, IsEmpty(1, &a[1]), "deleted node must be safe to re-add")

	// Remaining list must still be internally consistent.
	assert.Equal(t, offset.Offset(2), a[0].Next)
	assert.Equal(t, offset.Offset(0), a[2].Next)
	assert.Equal(t, offset.Offset(0), a[2].Prev)

	// Re-add the deleted node; list must accept it cleanly.
	Add(a.resolve, 0, &a[0], 1, &a[1])
	assert.Equal(t, offset.Offset(1), a[0].Next)
}

func TestInvariantSymmetricLinks(t *testing.T) {
	a := make(arena, 5)
	for i := range a {
		Init(offset.Offset(i), &a[i])
	}
	Add(a.resolve, 0, &a[0], 1, &a[1])
	Add(a.resolve, 1, &a[1], 2, &a[2])
	Add(a.resolve, 2, &a[2], 3, &a[3])

	for i := offset.Offset(0); i <= 3; i++ {
		n := a.resolve(i)
		next := a.resolve(n.Next)
		assert.Equal(t, i, next.Prev, "node %d: next.Prev must point back", i)
		prev := a.resolve(n.Prev)
		assert.Equal(t, i, prev.Next, "node %d: prev.Next must point forward", i)
	}
}
