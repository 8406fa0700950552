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

// Package client implements the RPC client: connect with timeout,
// call/call-for with a per-call deadline, and reconnect.
package client

import "time"

// Config describes one client's target endpoint and defaults.
type Config struct {
	// ClientID is an opaque identifier for logging/metrics; auto-generated
	// if empty.
	ClientID string `mapstructure:"clientId" json:"clientId" yaml:"clientId"`

	// Host and Port name the RPC server to dial.
	Host string `mapstructure:"host" json:"host" yaml:"host" validate:"required"`
	Port string `mapstructure:"port" json:"port" yaml:"port" validate:"required"`

	// Timeout is the default deadline for Connect and Call when the caller
	// doesn't pass an explicit one. Defaults to 5s.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

func (c Config) address() string {
	return c.Host + ":" + c.Port
}

func (c Config) timeoutOrDefault() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 5 * time.Second
}
