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

package executor

import (
	"sync"
	"time"
)

// Timer is a one-shot, cancellable, re-armable timer. The server's
// keep-alive and the client's call timeout do not use it; both rely on
// net.Conn deadlines instead.
type Timer struct {
	mu    sync.Mutex
	t     *time.Timer
	fired bool
}

// NewTimer returns a Timer with nothing armed.
func NewTimer() *Timer {
	return &Timer{}
}

// Reset (re-)arms the timer to fire fn after d. Any previously armed fire
// is canceled first. A zero or negative d disarms the timer instead of
// arming it.
func (t *Timer) Reset(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
	t.fired = false

	if d <= 0 {
		return
	}

	t.t = time.AfterFunc(d, func() {
		t.mu.Lock()
		t.fired = true
		t.mu.Unlock()
		fn()
	})
}

// Cancel disarms the timer; fn will not run if it hadn't already started.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
}

// Fired reports whether fn ran (or began running).
func (t *Timer) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

// SleepFor blocks for d or until stop is closed, whichever comes first.
// Returns true if it returned because of the duration elapsing, false if
// canceled.
func SleepFor(d time.Duration, stop <-chan struct{}) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-stop:
		return false
	}
}
