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

// Package registry is the process-wide endpoint -> pool.Pool directory a
// Channel uses so that two channels naming the same endpoint share one
// underlying connection pool instead of each dialing their own.
package registry

import (
	"github.com/sabouaram/corpc/codec"
	"github.com/sabouaram/corpc/ctxmap"
	"github.com/sabouaram/corpc/logger"
	"github.com/sabouaram/corpc/metrics"
	"github.com/sabouaram/corpc/pool"
)

// Registry maps an endpoint ("host:port") to the Pool serving it, backed
// by ctxmap.Map so lookups of an already-registered endpoint never take a
// lock. The zero value is not usable; construct with New.
type Registry struct {
	pools *ctxmap.Map[string, *pool.Pool]
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{pools: ctxmap.New[string, *pool.Pool]()}
}

// At returns the Pool for endpoint, creating it with cfg if this is the
// first request for that endpoint. Concurrent calls racing to create the
// same endpoint's pool will all observe the same *Pool: LoadOrStore lets
// exactly one caller's freshly-built pool win the insert, and every other
// racer gets that winner back instead of leaking the one it built itself.
// m, when non-nil, is wired into a newly-created pool so its size and free
// count are reported under this endpoint's label; it is ignored if a pool
// already exists for endpoint.
func (r *Registry) At(endpoint string, cfg pool.Config, cd codec.Codec, log logger.Logger, m *metrics.Collectors) *pool.Pool {
	if p, ok := r.pools.Load(endpoint); ok {
		return p
	}

	candidate := pool.New(cfg, cd, log)
	if m != nil {
		candidate.SetMetrics(m, endpoint)
	}
	actual, loaded := r.pools.LoadOrStore(endpoint, candidate)
	if loaded {
		_ = candidate.Close()
	}
	return actual
}

// Remove closes and forgets the pool registered for endpoint, if any.
func (r *Registry) Remove(endpoint string) {
	if p, ok := r.pools.LoadAndDelete(endpoint); ok {
		_ = p.Close()
	}
}

// Len reports how many endpoints currently have a registered pool.
func (r *Registry) Len() int {
	return r.pools.Len()
}
