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

package channel

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/rand"
)

// Balancer picks the index, in [0, n), of the endpoint a Channel should
// send the next request to.
type Balancer interface {
	Next(n int) int
}

// Variant names a Balancer construction Config can select by string.
type Variant string

const (
	// RoundRobin cycles through endpoints in order.
	RoundRobin Variant = "round_robin"

	// Random picks a uniformly random endpoint each call.
	Random Variant = "random"
)

// New returns the Balancer named by v, defaulting to RoundRobin for an
// unrecognized or empty Variant.
func New(v Variant) Balancer {
	switch v {
	case Random:
		return newRandomBalancer()
	default:
		return newRoundRobinBalancer()
	}
}

type roundRobinBalancer struct {
	counter uint64
}

func newRoundRobinBalancer() *roundRobinBalancer {
	return &roundRobinBalancer{}
}

func (b *roundRobinBalancer) Next(n int) int {
	if n <= 0 {
		return 0
	}
	i := atomic.AddUint64(&b.counter, 1)
	return int(i % uint64(n))
}

// randomBalancer wraps a x/exp/rand source, which is not safe for
// concurrent use on its own; every Channel.SendRequest caller shares one
// Balancer, so Next must serialize access to rnd itself.
type randomBalancer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newRandomBalancer() *randomBalancer {
	return &randomBalancer{rnd: rand.New(rand.NewSource(uint64(time.Now().UnixNano())))}
}

func (b *randomBalancer) Next(n int) int {
	if n <= 0 {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rnd.Intn(n)
}
