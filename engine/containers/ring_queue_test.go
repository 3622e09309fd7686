package containers

import (
	"errors"
	"testing"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)
	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := rq.Enqueue(4); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if v, _ := rq.Peek(); v != 1 {
		t.Fatalf("peek = %d, want 1", v)
	}
	for want := 1; want <= 3; want++ {
		v, err := rq.Dequeue()
		if err != nil || v != want {
			t.Fatalf("dequeue = %d, %v; want %d", v, err, want)
		}
	}
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty, got %v", err)
	}
}

func TestRingQueuePushOverwritesOldest(t *testing.T) {
	rq := NewRingQueue[string](2)
	rq.Push("a")
	rq.Push("b")
	rq.Push("c")

	items := rq.Items()
	if len(items) != 2 || items[0] != "b" || items[1] != "c" {
		t.Fatalf("items = %v, want [b c]", items)
	}
	if rq.Len() != 2 || !rq.IsFull() {
		t.Fatal("queue should be full")
	}
}
