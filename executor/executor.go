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

// Package executor provides the cooperative-scheduler abstraction the
// server acceptor and connection loop run on: a bounded pool that accepts
// work with Post/Dispatch, plus general-purpose sleep/timer helpers
// (Timer, SleepFor). Go has no coroutine to pin a connection to, so "pinned to
// one executor thread" becomes "one goroutine per connection, started by
// Post"; the pool's job is purely to cap how many run concurrently.
package executor

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of concurrently running tasks it has accepted,
// modeled on golang.org/x/sync/semaphore's weighted semaphore.
type Pool struct {
	sem *semaphore.Weighted
	cap int64
}

// NewPool returns a Pool allowing at most n concurrent tasks. n <= 0 means
// runtime.GOMAXPROCS(0).
func NewPool(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return &Pool{sem: semaphore.NewWeighted(int64(n)), cap: int64(n)}
}

// Post runs fn on a new goroutine once a slot is free, blocking the caller
// until then or until ctx is done.
func (p *Pool) Post(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	go func() {
		defer p.sem.Release(1)
		fn()
	}()
	return nil
}

// Dispatch runs fn inline if a slot is immediately available, else behaves
// like Post. There is no "current executor" concept in this Go port (no
// task is pinned to a specific goroutine the way a coroutine is pinned to
// an executor thread), so Dispatch only differs from Post in whether it
// can avoid a goroutine hop for light work.
func (p *Pool) Dispatch(ctx context.Context, fn func()) error {
	if p.sem.TryAcquire(1) {
		defer p.sem.Release(1)
		fn()
		return nil
	}
	return p.Post(ctx, fn)
}

// Capacity returns the configured concurrency bound.
func (p *Pool) Capacity() int64 {
	return p.cap
}
