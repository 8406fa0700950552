package pool

import "testing"

func TestTwoBucketQueue_PrefersOldBucket(t *testing.T) {
	q := newTwoBucketQueue[int]()

	q.enqueue(1)
	q.enqueue(2)
	q.reselect() // 1,2 become old
	q.enqueue(3) // 3 is new

	v, ok := q.tryDequeue()
	if !ok || v != 1 {
		t.Fatalf("expected old item 1 first, got %v ok=%v", v, ok)
	}

	v, ok = q.tryDequeue()
	if !ok || v != 2 {
		t.Fatalf("expected old item 2 second, got %v ok=%v", v, ok)
	}

	v, ok = q.tryDequeue()
	if !ok || v != 3 {
		t.Fatalf("expected new item 3 last, got %v ok=%v", v, ok)
	}

	if _, ok = q.tryDequeue(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestTwoBucketQueue_ClearOld(t *testing.T) {
	q := newTwoBucketQueue[int]()
	for i := 0; i < 5; i++ {
		q.enqueue(i)
	}
	q.reselect()
	q.enqueue(100)

	var dropped []int
	n := q.clearOld(3, func(v int) { dropped = append(dropped, v) })
	if n != 3 {
		t.Fatalf("expected 3 cleared, got %d", n)
	}
	if q.oldSize() != 2 {
		t.Fatalf("expected 2 remaining old items, got %d", q.oldSize())
	}
	if q.size() != 3 {
		t.Fatalf("expected size 3 (2 old + 1 new), got %d", q.size())
	}
}

func TestTwoBucketQueue_Size(t *testing.T) {
	q := newTwoBucketQueue[string]()
	if q.size() != 0 {
		t.Fatalf("expected empty queue")
	}
	q.enqueue("a")
	q.reselect()
	q.enqueue("b")
	if q.size() != 2 {
		t.Fatalf("expected size 2, got %d", q.size())
	}
}
