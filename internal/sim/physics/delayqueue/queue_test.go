package delayqueue

import "testing"

func TestFIFOAcrossGrowth(t *testing.T) {
	q := New[int](0, nil)
	// Advance head so the ring wraps before it grows.
	for i := 0; i < 20; i++ {
		q.Enqueue(-1, 0)
	}
	for i := 0; i < 20; i++ {
		q.Dequeue()
	}
	for i := 0; i < 100; i++ {
		q.Enqueue(i, 0)
	}
	if q.Len() != 100 || q.Cap() != 128 {
		t.Fatalf("len=%d cap=%d", q.Len(), q.Cap())
	}
	for i := 0; i < 100; i++ {
		e, ok := q.Dequeue()
		if !ok || e.Item != i {
			t.Fatalf("dequeue %d: got %v ok=%v", i, e.Item, ok)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestCheckWaitsDelayChecks(t *testing.T) {
	q := New[string](0, nil)
	q.Enqueue("water", 5)
	for i := 1; i <= 5; i++ {
		item, ready := q.Check()
		if ready {
			t.Fatalf("check %d: ready too early", i)
		}
		if item != "water" || q.Len() != 1 {
			t.Fatalf("check %d: item=%q len=%d", i, item, q.Len())
		}
	}
	item, ready := q.Check()
	if !ready || item != "water" {
		t.Fatalf("sixth check: item=%q ready=%v", item, ready)
	}
	if q.Len() != 0 {
		t.Fatalf("ready entry should leave the queue, len=%d", q.Len())
	}
}

func TestCheckOnEmpty(t *testing.T) {
	q := New[int](0, nil)
	if _, ready := q.Check(); ready {
		t.Fatalf("empty queue reported ready")
	}
}

func TestCeilingClears(t *testing.T) {
	var cleared []int
	q := New[int](64, func(n int) { cleared = append(cleared, n) })
	for i := 0; i < 64; i++ {
		q.Enqueue(i, 0)
	}
	if len(cleared) != 0 || q.Cap() != 64 {
		t.Fatalf("cleared=%v cap=%d", cleared, q.Cap())
	}
	q.Enqueue(999, 0)
	if len(cleared) != 1 || cleared[0] != 64 {
		t.Fatalf("expected one clear of 64 entries, got %v", cleared)
	}
	if q.Len() != 1 || q.Cap() != minCapacity {
		t.Fatalf("after clear len=%d cap=%d", q.Len(), q.Cap())
	}
	e, _ := q.Dequeue()
	if e.Item != 999 {
		t.Fatalf("item enqueued after clear lost: %v", e.Item)
	}
}
