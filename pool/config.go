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

// Package pool maintains a bounded set of client.Client connections to one
// endpoint, reusing them across calls and reaping ones that have sat idle
// too long. A two-bucket free-queue (see queue.go) gives the reaper a
// cheap way to find aged connections without a per-item timestamp.
package pool

import (
	"time"

	"github.com/sabouaram/corpc/client"
)

// Config configures a Pool.
type Config struct {
	// Client is the template used to dial each new connection. An empty
	// ClientID makes each connection generate its own; a non-empty one is
	// copied to every connection.
	Client client.Config `mapstructure:"client" json:"client" yaml:"client"`

	// MaxConnection bounds how many client connections the pool will hold
	// open (idle or in use) at once. Zero means 10.
	MaxConnection int `mapstructure:"maxConnection" json:"maxConnection" yaml:"maxConnection"`

	// ConnectRetryCount is how many dial attempts GetClient makes before
	// giving up. Zero is normalized to 1 (a single attempt, no retry).
	ConnectRetryCount int `mapstructure:"connectRetryCount" json:"connectRetryCount" yaml:"connectRetryCount"`

	// ReconnectWait is the backoff between dial attempts.
	ReconnectWait time.Duration `mapstructure:"reconnectWait" json:"reconnectWait" yaml:"reconnectWait"`

	// IdleTimeout is how long a connection may sit free in the pool before
	// the reaper closes it. Zero disables reaping.
	IdleTimeout time.Duration `mapstructure:"idleTimeout" json:"idleTimeout" yaml:"idleTimeout"`

	// IdleQueuePerMaxClearCount bounds how many aged connections the reaper
	// closes in a single pass, so a reap doesn't stall behind a very large
	// free list. Zero means unbounded.
	IdleQueuePerMaxClearCount int `mapstructure:"idleQueuePerMaxClearCount" json:"idleQueuePerMaxClearCount" yaml:"idleQueuePerMaxClearCount"`
}

func (c Config) maxConnOrDefault() int {
	if c.MaxConnection > 0 {
		return c.MaxConnection
	}
	return 10
}

func (c Config) retryCountOrDefault() int {
	if c.ConnectRetryCount > 0 {
		return c.ConnectRetryCount
	}
	return 1
}

func (c Config) reconnectWaitOrDefault() time.Duration {
	if c.ReconnectWait > 0 {
		return c.ReconnectWait
	}
	return 200 * time.Millisecond
}
