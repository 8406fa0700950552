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

package server

import (
	"context"
	"fmt"
	"net"
	"sync"

	uuid "github.com/hashicorp/go-uuid"

	"github.com/sabouaram/corpc/codec"
	"github.com/sabouaram/corpc/ctxmap"
	liberr "github.com/sabouaram/corpc/errors"
	"github.com/sabouaram/corpc/executor"
	"github.com/sabouaram/corpc/logger"
	"github.com/sabouaram/corpc/metrics"
	"github.com/sabouaram/corpc/router"
)

// Acceptor owns a listening socket and the set of connections it has
// accepted. Start and Stop are both idempotent: calling either a second
// time is a no-op rather than an error, so callers running under a signal
// handler or a supervising goroutine don't need their own guard around
// shutdown.
type Acceptor struct {
	cfg     Config
	router  *router.Router
	codec   codec.Codec
	log     logger.Logger
	pool    *executor.Pool
	metrics *metrics.Collectors

	mu      sync.Mutex
	ln      net.Listener
	started bool
	stopped bool
	conns   *ctxmap.Map[string, *Connection]
	doneCh  chan struct{}
}

// New returns an Acceptor bound to cfg and r. A nil codec defaults to the
// registry's default (CBOR); a nil logger discards; a nil metrics
// collector set disables instrumentation entirely.
func New(cfg Config, r *router.Router, cd codec.Codec, log logger.Logger, m *metrics.Collectors) *Acceptor {
	if cd == nil {
		cd, _ = codec.ByType(0)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Acceptor{
		cfg:     cfg,
		router:  r,
		codec:   cd,
		log:     log,
		pool:    executor.NewPool(cfg.MaxConnections),
		metrics: m,
		conns:   ctxmap.New[string, *Connection](),
		doneCh:  make(chan struct{}),
	}
}

// Start binds the listen address and begins accepting connections on a
// background goroutine. Calling Start again once already started is a
// no-op.
func (a *Acceptor) Start() error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return nil
	}

	ln, err := net.Listen("tcp", a.cfg.Address)
	if err != nil {
		a.mu.Unlock()
		return liberr.NotConnected.Error(err)
	}
	a.ln = ln
	a.started = true
	a.mu.Unlock()

	go a.acceptLoop()
	return nil
}

func (a *Acceptor) acceptLoop() {
	for {
		conn, err := a.ln.Accept()
		if err != nil {
			close(a.doneCh)
			return
		}

		id, genErr := uuid.GenerateUUID()
		if genErr != nil {
			id = fmt.Sprintf("conn-%p", conn)
		}

		c := newConnection(id, conn, a.router, a.codec, a.log, a.cfg.KeepAliveTimeout, a.onConnQuit)
		a.conns.Store(id, c)

		if a.metrics != nil {
			a.metrics.ConnectionsAccepted.Inc()
			a.metrics.ConnectionsActive.Inc()
		}

		if postErr := a.pool.Post(context.Background(), c.Run); postErr != nil {
			a.conns.Delete(id)
			_ = conn.Close()
			if a.metrics != nil {
				a.metrics.ConnectionsActive.Dec()
			}
		}
	}
}

func (a *Acceptor) onConnQuit(id string) {
	if _, ok := a.conns.LoadAndDelete(id); ok && a.metrics != nil {
		a.metrics.ConnectionsActive.Dec()
	}
}

// Addr returns the bound listen address. Only meaningful after Start.
func (a *Acceptor) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ln == nil {
		return nil
	}
	return a.ln.Addr()
}

// ConnectionCount returns the number of currently live connections.
func (a *Acceptor) ConnectionCount() int {
	return a.conns.Len()
}

// Stop closes the listener and every live connection. Calling Stop more
// than once, or before Start, is a no-op.
func (a *Acceptor) Stop() error {
	a.mu.Lock()
	if a.stopped || !a.started {
		a.mu.Unlock()
		return nil
	}
	a.stopped = true
	ln := a.ln
	a.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}

	a.conns.Range(func(_ string, c *Connection) bool {
		c.close()
		return true
	})

	return err
}
