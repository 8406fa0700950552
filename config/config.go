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

// Package config is the single validated configuration surface a process
// embedding this module loads once at startup: a server side (if it hosts
// RPC endpoints), a channel side (if it calls out to one or more), or
// both. Validation runs through go-playground/validator so every tag
// (required, min, oneof, ...) the component configs declare is enforced
// uniformly, the same way it would be across any config struct in this
// codebase.
package config

import (
	"github.com/go-playground/validator/v10"

	"github.com/sabouaram/corpc/channel"
	"github.com/sabouaram/corpc/server"
)

var validate = validator.New()

// Config is the top-level configuration for a process using this module.
// Either side may be left zero-valued if the process doesn't play that
// role.
type Config struct {
	// Server configures an Acceptor, if this process hosts RPC endpoints.
	Server server.Config `mapstructure:"server" json:"server" yaml:"server"`

	// Channels names the outbound channels this process calls through,
	// keyed by a caller-chosen logical name (e.g. "billing", "inventory").
	Channels map[string]ChannelConfig `mapstructure:"channels" json:"channels" yaml:"channels"`
}

// ChannelConfig is one named channel.Config plus the endpoint list
// channel.Create expects.
type ChannelConfig struct {
	Endpoints []string       `mapstructure:"endpoints" json:"endpoints" yaml:"endpoints" validate:"required,min=1,dive,hostname_port"`
	Channel   channel.Config `mapstructure:"channel" json:"channel" yaml:"channel"`
}

// Validate runs struct-tag validation over the configuration tree. Server
// is only checked if HasServer reports this process hosts an Acceptor --
// server.Config.Address is a required field, but a process that is purely
// a caller legitimately leaves the whole Server block zero-valued.
func (c Config) Validate() error {
	if c.HasServer() {
		if err := validate.Struct(c.Server); err != nil {
			return err
		}
	}
	for _, ch := range c.Channels {
		if err := validate.Struct(ch); err != nil {
			return err
		}
	}
	return nil
}

// HasServer reports whether Server names a listen address, i.e. whether
// this process should start an Acceptor at all.
func (c Config) HasServer() bool {
	return c.Server.Address != ""
}
