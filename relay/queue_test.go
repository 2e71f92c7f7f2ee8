package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePushOrderAndPositions(t *testing.T) {
	q := NewQueue(5)

	require.True(t, q.Push(101))
	require.True(t, q.Push(102))
	require.True(t, q.Push(103))

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 1, q.Position(101))
	assert.Equal(t, 2, q.Position(102))
	assert.Equal(t, 3, q.Position(103))
	assert.Equal(t, 0, q.Position(999))

	head, ok := q.Head()
	require.True(t, ok)
	assert.Equal(t, int64(101), head)
}

func TestQueueRejectsDuplicates(t *testing.T) {
	q := NewQueue(5)

	require.True(t, q.Push(101))
	assert.False(t, q.Push(101))
	assert.Equal(t, 1, q.Len())
}

func TestQueueCapacity(t *testing.T) {
	q := NewQueue(2)

	require.True(t, q.Push(1))
	require.True(t, q.Push(2))
	assert.False(t, q.Push(3))
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 2, q.Cap())

	// freeing a slot admits the next user
	q.Remove(1)
	assert.True(t, q.Push(3))
}

func TestQueueMinimumCapacity(t *testing.T) {
	q := NewQueue(0)
	assert.Equal(t, 1, q.Cap())
}

func TestQueuePopHead(t *testing.T) {
	q := NewQueue(3)

	_, ok := q.PopHead()
	assert.False(t, ok)

	q.Push(7)
	q.Push(8)

	head, ok := q.PopHead()
	require.True(t, ok)
	assert.Equal(t, int64(7), head)
	assert.Equal(t, 1, q.Position(8))
}

func TestQueueRemoveMiddle(t *testing.T) {
	q := NewQueue(5)
	q.Push(1)
	q.Push(2)
	q.Push(3)

	q.Remove(2)
	assert.Equal(t, 1, q.Position(1))
	assert.Equal(t, 2, q.Position(3))

	// removing an absent user changes nothing
	q.Remove(42)
	assert.Equal(t, 2, q.Len())
}
