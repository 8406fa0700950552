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

// Package channel load-balances calls across the pools serving a fixed set
// of endpoints. A Channel never retries a call against a second endpoint:
// if the endpoint its balancer picked is down, the call fails and it is
// the caller's job to decide whether to retry.
package channel

import (
	"context"
	"fmt"
	"net"

	"github.com/sabouaram/corpc/codec"
	liberr "github.com/sabouaram/corpc/errors"
	"github.com/sabouaram/corpc/logger"
	"github.com/sabouaram/corpc/metrics"
	"github.com/sabouaram/corpc/pool"
	"github.com/sabouaram/corpc/registry"
)

// Config configures a Channel.
type Config struct {
	// Pool is applied to every endpoint's pool.Pool, with only the
	// Client.Host/Port overridden per endpoint.
	Pool pool.Config `mapstructure:"pool" json:"pool" yaml:"pool"`

	// LoadBalancer selects which Balancer variant distributes calls across
	// endpoints. Defaults to round_robin.
	LoadBalancer Variant `mapstructure:"loadBalancer" json:"loadBalancer" yaml:"loadBalancer"`
}

// Channel is a fixed list of "host:port" endpoints, each with its own
// pool.Pool obtained from a registry.Registry, plus a Balancer choosing
// which one serves the next call.
type Channel struct {
	endpoints []string
	pools     []*pool.Pool
	lb        Balancer
}

// Create builds a Channel over endpoints ("host:port" strings), fetching
// or creating each endpoint's pool from reg so that multiple Channels
// naming the same endpoint share its connections.
func Create(endpoints []string, cfg Config, reg *registry.Registry, cd codec.Codec, log logger.Logger, m *metrics.Collectors) (*Channel, error) {
	if len(endpoints) == 0 {
		return nil, liberr.InvalidArgument.Error(fmt.Errorf("channel requires at least one endpoint"))
	}

	pools := make([]*pool.Pool, len(endpoints))
	for i, ep := range endpoints {
		host, port, err := net.SplitHostPort(ep)
		if err != nil {
			return nil, liberr.InvalidArgument.Error(fmt.Errorf("invalid endpoint %q: %w", ep, err))
		}

		epCfg := cfg.Pool
		epCfg.Client.Host = host
		epCfg.Client.Port = port

		pools[i] = reg.At(ep, epCfg, cd, log, m)
	}

	return &Channel{
		endpoints: endpoints,
		pools:     pools,
		lb:        New(cfg.LoadBalancer),
	}, nil
}

// SendRequest picks one endpoint via the channel's Balancer and issues
// funcName(req) against that endpoint's pool. It never tries a second
// endpoint on failure.
func SendRequest[Req any, Resp any](ctx context.Context, ch *Channel, funcName string, req Req) (Resp, error) {
	p := ch.pools[ch.lb.Next(len(ch.pools))]
	return pool.SendRequest[Req, Resp](ctx, p, funcName, req)
}

// Endpoints returns the channel's configured endpoint list.
func (ch *Channel) Endpoints() []string {
	return ch.endpoints
}
