package challenge

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHistoryPushEvictsOldest(t *testing.T) {
	h := NewHistory(3)

	ids := make([]uuid.UUID, 5)
	for i := range ids {
		ids[i] = uuid.New()
		h.Push(ids[i])
	}

	assert.Equal(t, 3, h.Len())
	assert.False(t, h.Contains(ids[0]))
	assert.False(t, h.Contains(ids[1]))
	assert.True(t, h.Contains(ids[2]))
	assert.True(t, h.Contains(ids[3]))
	assert.True(t, h.Contains(ids[4]))

	// Oldest first.
	assert.Equal(t, []uuid.UUID{ids[2], ids[3], ids[4]}, h.IDs())
}

func TestHistoryNeverExceedsCapacity(t *testing.T) {
	h := NewHistory(2)
	for i := 0; i < 100; i++ {
		h.Push(uuid.New())
		assert.LessOrEqual(t, h.Len(), 2)
	}
}

func TestHistoryMinimumCapacity(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, 1, h.Capacity())

	a, b := uuid.New(), uuid.New()
	h.Push(a)
	h.Push(b)
	assert.Equal(t, 1, h.Len())
	assert.False(t, h.Contains(a))
	assert.True(t, h.Contains(b))
}

func TestHistoryIDsReturnsCopy(t *testing.T) {
	h := NewHistory(3)
	id := uuid.New()
	h.Push(id)

	ids := h.IDs()
	ids[0] = uuid.New()
	assert.True(t, h.Contains(id))
}
