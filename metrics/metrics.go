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

// Package metrics declares the prometheus collectors this module's server
// and pool expose. Registration is explicit (Register), never via
// promauto's global default registry, so an embedding process controls
// exactly which registry these collectors land in.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups every metric this module exposes. Construct with New
// and pass to Register once; the server and pool packages take a
// *Collectors as an optional dependency and skip instrumentation entirely
// when given nil.
type Collectors struct {
	ConnectionsAccepted prometheus.Counter
	ConnectionsActive   prometheus.Gauge
	RequestsHandled     *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec

	PoolSize       *prometheus.GaugeVec
	PoolFreeCount  *prometheus.GaugeVec
	PoolAcquireWait *prometheus.HistogramVec
}

// New builds a fresh, unregistered Collectors set under the given
// namespace (e.g. "corpc").
func New(namespace string) *Collectors {
	return &Collectors{
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "connections_accepted_total",
			Help:      "Total TCP connections accepted by the server.",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "connections_active",
			Help:      "Connections currently open on the server.",
		}),
		RequestsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "requests_handled_total",
			Help:      "RPC requests dispatched, labeled by result.",
		}, []string{"result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "request_duration_seconds",
			Help:      "Handler latency from dispatch to response enqueue.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"function"}),
		PoolSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "size",
			Help:      "Connections a pool currently owns, free or in use.",
		}, []string{"endpoint"}),
		PoolFreeCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "free_count",
			Help:      "Connections currently idle in a pool's free list.",
		}, []string{"endpoint"}),
		PoolAcquireWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "acquire_wait_seconds",
			Help:      "Time GetClient spent before returning a connection.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// Register installs every collector into reg.
func (c *Collectors) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		c.ConnectionsAccepted,
		c.ConnectionsActive,
		c.RequestsHandled,
		c.RequestDuration,
		c.PoolSize,
		c.PoolFreeCount,
		c.PoolAcquireWait,
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}
