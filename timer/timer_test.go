package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestManagerFiresOnce(t *testing.T) {
	m := NewManager()
	defer m.Close()

	var fired atomic.Int32
	m.Add(60*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(400 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("expected callback to fire once, fired %d times", got)
	}
}

func TestManagerRemoveCancelsPending(t *testing.T) {
	m := NewManager()
	defer m.Close()

	var fired atomic.Int32
	id := m.Add(100*time.Millisecond, func() { fired.Add(1) })
	m.Remove(id)

	time.Sleep(400 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("removed timer fired %d times", got)
	}

	// Removing an unknown id is a no-op.
	m.Remove(9999)
}

func TestManagerFiresInDeadlineOrder(t *testing.T) {
	m := NewManager()
	defer m.Close()

	ch := make(chan int, 2)
	m.Add(200*time.Millisecond, func() { ch <- 2 })
	m.Add(60*time.Millisecond, func() { ch <- 1 })

	first := <-ch
	second := <-ch
	if first != 1 || second != 2 {
		t.Fatalf("expected fire order 1,2; got %d,%d", first, second)
	}
}

func TestSchedulerArmSupersedes(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	roomID := uuid.New()
	ch := make(chan string, 2)

	s.Arm(roomID, 100*time.Millisecond, func() { ch <- "first" })
	s.Arm(roomID, 100*time.Millisecond, func() { ch <- "second" })

	select {
	case got := <-ch:
		if got != "second" {
			t.Fatalf("superseded timer fired: %s", got)
		}
	case <-time.After(time.Second):
		t.Fatal("armed timer never fired")
	}

	select {
	case got := <-ch:
		t.Fatalf("unexpected extra fire: %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	roomID := uuid.New()
	var fired atomic.Int32

	s.Arm(roomID, 100*time.Millisecond, func() { fired.Add(1) })
	s.Cancel(roomID)

	time.Sleep(400 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("cancelled timer fired %d times", got)
	}

	// Cancelling with nothing pending is safe, as is cancelling twice.
	s.Cancel(roomID)
	s.Cancel(uuid.New())
}

func TestSchedulerIsolatesRooms(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	roomA, roomB := uuid.New(), uuid.New()
	ch := make(chan string, 2)

	s.Arm(roomA, 60*time.Millisecond, func() { ch <- "a" })
	s.Arm(roomB, 60*time.Millisecond, func() { ch <- "b" })
	s.Cancel(roomA)

	select {
	case got := <-ch:
		if got != "b" {
			t.Fatalf("cancelled room fired: %s", got)
		}
	case <-time.After(time.Second):
		t.Fatal("surviving timer never fired")
	}
}
