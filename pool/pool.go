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

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/sabouaram/corpc/client"
	"github.com/sabouaram/corpc/codec"
	liberr "github.com/sabouaram/corpc/errors"
	"github.com/sabouaram/corpc/logger"
	"github.com/sabouaram/corpc/metrics"
)

// Pool holds a bounded, reusable set of client.Client connections to one
// endpoint. GetClient hands out a free connection or dials a new one up to
// Config.MaxConnection; CollectFreeClient returns it for reuse. A
// background reaper, started the first time a connection is freed and
// stopped once the free list drains, closes connections that have sat idle
// past Config.IdleTimeout.
type Pool struct {
	cfg   Config
	codec codec.Codec
	log   logger.Logger

	queue *twoBucketQueue[*client.Client]

	size       int32
	generation int32
	closed     int32

	metrics  *metrics.Collectors
	endpoint string
}

// SetMetrics attaches a Collectors set this pool reports its size and free
// count to, labeled by endpoint. Optional; an unset pool simply skips
// instrumentation.
func (p *Pool) SetMetrics(m *metrics.Collectors, endpoint string) {
	p.metrics = m
	p.endpoint = endpoint
}

func (p *Pool) reportGauges() {
	if p.metrics == nil {
		return
	}
	p.metrics.PoolSize.WithLabelValues(p.endpoint).Set(float64(atomic.LoadInt32(&p.size)))
	p.metrics.PoolFreeCount.WithLabelValues(p.endpoint).Set(float64(p.queue.size()))
}

// New returns a Pool bound to cfg. A nil codec or logger falls back to the
// same defaults client.New uses.
func New(cfg Config, cd codec.Codec, log logger.Logger) *Pool {
	if log == nil {
		log = logger.Discard()
	}
	return &Pool{
		cfg:   cfg,
		codec: cd,
		log:   log,
		queue: newTwoBucketQueue[*client.Client](),
	}
}

// GetClient returns a free connection from the pool, or dials a new one if
// none is free and the pool has not reached Config.MaxConnection. Returns
// a pool_exhausted Error at the cap, or a connection_refused Error (with
// the last dial error as its parent) once every dial attempt has failed.
func (p *Pool) GetClient(ctx context.Context) (*client.Client, error) {
	if c, ok := p.queue.tryDequeue(); ok {
		p.reportGauges()
		return c, nil
	}

	if atomic.LoadInt32(&p.closed) != 0 {
		return nil, liberr.NotConnected.Error(fmt.Errorf("pool is closed"))
	}

	if int(atomic.AddInt32(&p.size, 1)) > p.cfg.maxConnOrDefault() {
		atomic.AddInt32(&p.size, -1)
		return nil, liberr.PoolExhausted.Error(fmt.Errorf("pool exhausted: max %d connections in use", p.cfg.maxConnOrDefault()))
	}

	c := client.New(p.cfg.Client, p.codec, p.log)
	if err := p.connectWithRetry(ctx, c); err != nil {
		atomic.AddInt32(&p.size, -1)
		return nil, err
	}
	p.reportGauges()
	return c, nil
}

func (p *Pool) connectWithRetry(ctx context.Context, c *client.Client) error {
	attempts := p.cfg.retryCountOrDefault()
	wait := p.cfg.reconnectWaitOrDefault()

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return liberr.OperationCanceled.Error(ctx.Err())
			case <-time.After(wait):
			}
		}
		err := c.Connect(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return liberr.ConnectionRefused.Error(lastErr)
}

// CollectFreeClient returns c to the pool for reuse, or discards it (and
// frees its size slot) if it has already been closed. Freeing the first
// connection into an empty free list starts the idle reaper.
func (p *Pool) CollectFreeClient(c *client.Client) {
	if c == nil {
		return
	}
	if c.Closed() {
		atomic.AddInt32(&p.size, -1)
		p.reportGauges()
		return
	}
	p.queue.enqueue(c)
	p.ensureReaper()
	p.reportGauges()
}

func (p *Pool) ensureReaper() {
	if p.cfg.IdleTimeout <= 0 {
		return
	}
	if atomic.CompareAndSwapInt32(&p.generation, 0, 1) {
		go p.runReaper(1)
	}
}

// runReaper evicts connections that have aged past one full IdleTimeout
// tick: reselect() moves whatever is currently free into the "old" bucket,
// fixing the exact set of connections enqueued at or before this tick, and
// the loop below fully drains that bucket in bounded batches (yielding
// between batches) before going back to sleep for the next tick. Draining
// to completion here, rather than taking one batch per tick, matters:
// anything left in the old bucket at the next tick would get silently
// folded into the "new" bucket by the next reselect() and mixed with
// connections freed since, so an old connection could survive indefinitely
// whenever the backlog exceeds IdleQueuePerMaxClearCount. Connections freed
// during a drain still survive to the following tick untouched, since they
// land in the bucket reselect() just vacated.
func (p *Pool) runReaper(gen int32) {
	batch := p.cfg.IdleQueuePerMaxClearCount
	if batch <= 0 {
		batch = math.MaxInt32
	}

	ticker := time.NewTicker(p.cfg.IdleTimeout)
	defer ticker.Stop()

	for range ticker.C {
		if atomic.LoadInt32(&p.closed) != 0 {
			atomic.CompareAndSwapInt32(&p.generation, gen, 0)
			return
		}
		if atomic.LoadInt32(&p.generation) != gen {
			return
		}

		p.queue.reselect()
		for p.queue.oldSize() > 0 {
			p.queue.clearOld(batch, func(c *client.Client) {
				_ = c.Close()
				atomic.AddInt32(&p.size, -1)
			})
			p.reportGauges()
			runtime.Gosched()
		}

		if p.queue.size() == 0 {
			atomic.CompareAndSwapInt32(&p.generation, gen, 0)
			return
		}
	}
}

// FreeClientCount returns how many connections currently sit idle in the
// pool.
func (p *Pool) FreeClientCount() int {
	return p.queue.size()
}

// ReaperRunning reports whether an idle reaper goroutine is currently
// active for this pool.
func (p *Pool) ReaperRunning() bool {
	return atomic.LoadInt32(&p.generation) != 0
}

// Size returns the total number of connections the pool currently owns,
// free or in use.
func (p *Pool) Size() int {
	return int(atomic.LoadInt32(&p.size))
}

// Close stops the reaper and closes every free connection. In-flight
// connections already handed out by GetClient are unaffected; future
// GetClient calls fail with not_connected.
func (p *Pool) Close() error {
	atomic.StoreInt32(&p.closed, 1)
	atomic.StoreInt32(&p.generation, 0)

	p.queue.clearOld(math.MaxInt32, func(c *client.Client) { _ = c.Close() })
	p.queue.reselect()
	p.queue.clearOld(math.MaxInt32, func(c *client.Client) { _ = c.Close() })
	return nil
}

// SendRequest acquires a connection, issues the call, and returns the
// connection to the pool on success. A failed call's connection is closed
// rather than returned, since the framing it left the socket in is
// unknown.
func SendRequest[Req any, Resp any](ctx context.Context, p *Pool, funcName string, req Req) (Resp, error) {
	var zero Resp

	c, err := p.GetClient(ctx)
	if err != nil {
		return zero, err
	}

	resp, err := client.Call[Req, Resp](ctx, c, funcName, req)
	if err != nil {
		_ = c.Close()
		atomic.AddInt32(&p.size, -1)
		return zero, err
	}

	p.CollectFreeClient(c)
	return resp, nil
}
