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

// Package server implements the RPC server: a connection state machine
// driving read-head/read-payload/route/enqueue-response/write per
// accepted socket, and an acceptor owning the listener and the live
// connection set.
package server

import "time"

// Config configures an Acceptor.
type Config struct {
	// Address is the listen address, e.g. "0.0.0.0:8801".
	Address string `mapstructure:"address" json:"address" yaml:"address" validate:"required"`

	// KeepAliveTimeout bounds how long a connection may sit idle between
	// requests before the server closes it. Zero disables the timeout.
	KeepAliveTimeout time.Duration `mapstructure:"keepAliveTimeout" json:"keepAliveTimeout" yaml:"keepAliveTimeout"`

	// MaxConnections bounds how many connection goroutines may run at
	// once; additional accepted sockets block in the accept loop until a
	// slot frees up. Zero means runtime.GOMAXPROCS(0).
	MaxConnections int `mapstructure:"maxConnections" json:"maxConnections" yaml:"maxConnections"`
}
