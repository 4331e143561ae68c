package challenge

import (
	"github.com/google/uuid"
)

// History is a fixed-capacity FIFO of recently used challenge ids. Adding to
// a full history evicts the oldest entry. Not safe for concurrent use; it is
// owned by a room and guarded by the room's serialization point.
type History struct {
	capacity int
	ids      []uuid.UUID
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		capacity: capacity,
		ids:      make([]uuid.UUID, 0, capacity),
	}
}

// Push appends id, evicting the oldest entry when the history is full.
func (h *History) Push(id uuid.UUID) {
	if len(h.ids) == h.capacity {
		h.ids = h.ids[1:]
	}
	h.ids = append(h.ids, id)
}

func (h *History) Contains(id uuid.UUID) bool {
	for _, v := range h.ids {
		if v == id {
			return true
		}
	}
	return false
}

// IDs returns a copy of the history, oldest first.
func (h *History) IDs() []uuid.UUID {
	out := make([]uuid.UUID, len(h.ids))
	copy(out, h.ids)
	return out
}

func (h *History) Len() int {
	return len(h.ids)
}

func (h *History) Capacity() int {
	return h.capacity
}
