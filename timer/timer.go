// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"
)

type task struct {
	id       int64
	deadline time.Time
	callback func()
	index    int
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].deadline.Before(q[j].deadline)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	t.index = -1
	*q = old[0 : n-1]
	return t
}

// Manager runs one-shot timers off a single heap, polled by a background
// goroutine. Callbacks fire on their own goroutines.
type Manager struct {
	mu        sync.Mutex
	queue     taskQueue
	nextID    int64
	closeChan chan struct{}
}

func NewManager() *Manager {
	m := &Manager{
		queue:     make(taskQueue, 0),
		nextID:    1,
		closeChan: make(chan struct{}),
	}
	heap.Init(&m.queue)
	go m.process()
	return m
}

// Add schedules callback to fire once after delay and returns its id.
func (m *Manager) Add(delay time.Duration, callback func()) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &task{
		id:       m.nextID,
		deadline: time.Now().Add(delay),
		callback: callback,
	}
	m.nextID++
	heap.Push(&m.queue, t)
	return t.id
}

// Remove cancels a pending timer. Removing an already-fired or unknown id
// is a no-op.
func (m *Manager) Remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.queue {
		if t.id == id {
			heap.Remove(&m.queue, i)
			break
		}
	}
}

// Close stops the polling goroutine. Pending timers never fire.
func (m *Manager) Close() {
	close(m.closeChan)
}

func (m *Manager) process() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.fireDue()
		case <-m.closeChan:
			return
		}
	}
}

func (m *Manager) fireDue() {
	now := time.Now()

	m.mu.Lock()
	var due []*task
	for m.queue.Len() > 0 {
		t := m.queue[0]
		if t.deadline.After(now) {
			break
		}
		heap.Pop(&m.queue)
		due = append(due, t)
	}
	m.mu.Unlock()

	for _, t := range due {
		go t.callback()
	}
}

// Scheduler keys the manager's timers by room, keeping at most one pending
// timer per room: arming supersedes the previous timer, cancelling is
// best-effort and safe when nothing is pending. Implements game.Scheduler.
type Scheduler struct {
	manager *Manager
	mu      sync.Mutex
	armed   map[uuid.UUID]int64
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		manager: NewManager(),
		armed:   make(map[uuid.UUID]int64),
	}
}

// Arm cancels any pending timer for roomID, then schedules fn once after
// delay.
func (s *Scheduler) Arm(roomID uuid.UUID, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.armed[roomID]; ok {
		s.manager.Remove(id)
	}

	var id int64
	id = s.manager.Add(delay, func() {
		s.mu.Lock()
		if s.armed[roomID] == id {
			delete(s.armed, roomID)
		}
		s.mu.Unlock()
		fn()
	})
	s.armed[roomID] = id
}

// Cancel drops the pending timer for roomID, if any.
func (s *Scheduler) Cancel(roomID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.armed[roomID]; ok {
		s.manager.Remove(id)
		delete(s.armed, roomID)
	}
}

// Close stops the underlying manager.
func (s *Scheduler) Close() {
	s.manager.Close()
}
