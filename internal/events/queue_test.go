package events

import (
	"sync"
	"testing"
)

func TestQueueSlotVisibility(t *testing.T) {
	t.Parallel()

	q := NewQueue[int](4)
	q.Push(1)
	q.Push(2)

	if got := q.Events(); len(got) != 0 {
		t.Fatalf("events must not be visible before a slot indication, got %v", got)
	}

	q.SlotIndication()
	if got := q.Events(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected events %v", got)
	}

	// Events pushed after the swap surface at the next boundary only.
	q.Push(3)
	if got := q.Events(); len(got) != 2 {
		t.Fatalf("pending push leaked into current slot: %v", got)
	}

	q.SlotIndication()
	if got := q.Events(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("unexpected events after second indication: %v", got)
	}

	q.SlotIndication()
	if got := q.Events(); len(got) != 0 {
		t.Fatalf("stale events survived an empty slot: %v", got)
	}
}

func TestQueueConcurrentPush(t *testing.T) {
	t.Parallel()

	const producers = 8
	const perProducer = 1000

	q := NewQueue[int](16)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(i)
			}
		}()
	}
	wg.Wait()

	q.SlotIndication()
	if got := len(q.Events()); got != producers*perProducer {
		t.Fatalf("expected %d events, got %d", producers*perProducer, got)
	}
}
