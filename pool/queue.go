/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package pool

import "sync"

// twoBucketQueue is a lock-minimizing free-queue: two FIFOs plus a selected
// index. reselect() flips the index so everything enqueued so far becomes
// the "old" bucket and new enqueues land in a fresh "new" bucket; this
// gives an idle-timeout reaper a bounded window to drain aged items
// (clearOld) without inspecting a per-item timestamp, and without blocking
// producers against it.
type twoBucketQueue[T any] struct {
	mu       sync.Mutex
	buckets  [2][]T
	selected int
}

func newTwoBucketQueue[T any]() *twoBucketQueue[T] {
	return &twoBucketQueue[T]{}
}

// enqueue appends to the currently selected bucket.
func (q *twoBucketQueue[T]) enqueue(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buckets[q.selected] = append(q.buckets[q.selected], v)
}

// tryDequeue pops from the old bucket first (selected^1), falling back to
// the selected bucket. Returns false if both are empty.
func (q *twoBucketQueue[T]) tryDequeue() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	old := q.selected ^ 1
	if len(q.buckets[old]) > 0 {
		v = q.buckets[old][0]
		q.buckets[old] = q.buckets[old][1:]
		return v, true
	}
	if len(q.buckets[q.selected]) > 0 {
		v = q.buckets[q.selected][0]
		q.buckets[q.selected] = q.buckets[q.selected][1:]
		return v, true
	}
	return v, false
}

// reselect flips the selected index: everything enqueued up to this call
// becomes the old bucket.
func (q *twoBucketQueue[T]) reselect() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.selected ^= 1
}

// clearOld discards up to max items from the non-selected (old) bucket and
// returns how many were discarded, invoking drop for each.
func (q *twoBucketQueue[T]) clearOld(max int, drop func(T)) int {
	q.mu.Lock()
	old := q.selected ^ 1
	n := len(q.buckets[old])
	if n > max {
		n = max
	}
	dropped := q.buckets[old][:n]
	q.buckets[old] = q.buckets[old][n:]
	q.mu.Unlock()

	for _, v := range dropped {
		drop(v)
	}
	return n
}

// size returns the total number of items across both buckets.
func (q *twoBucketQueue[T]) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buckets[0]) + len(q.buckets[1])
}

// oldSize returns the number of items in the non-selected bucket.
func (q *twoBucketQueue[T]) oldSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buckets[q.selected^1])
}
