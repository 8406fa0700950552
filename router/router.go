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

// Package router maps a 32-bit function-id route key, derived from a
// function's registered name, to either a plain request/response handler
// or a deferred-context handler. It owns the uniform exception boundary
// every dispatch goes through, independent of which kind of handler it
// reaches.
package router

import (
	"context"
	"fmt"

	"github.com/sabouaram/corpc/codec"
	liberr "github.com/sabouaram/corpc/errors"
	"github.com/sabouaram/corpc/logger"
	"github.com/sabouaram/corpc/protocol"
)

type syncHandler func(c codec.Codec, body []byte) (respBody []byte, errCode uint8)

type ctxHandler func(ctx context.Context, dc *DeferredContext, c codec.Codec, body []byte)

// Router owns the route-key -> handler tables and the uniform dispatch
// boundary. The zero value is not usable; construct with New.
type Router struct {
	handlers    map[uint32]syncHandler
	ctxHandlers map[uint32]ctxHandler
	names       map[uint32]string
	log         logger.Logger
}

// New returns an empty Router. A nil logger falls back to a discarding one.
func New(log logger.Logger) *Router {
	if log == nil {
		log = logger.Discard()
	}
	return &Router{
		handlers:    make(map[uint32]syncHandler),
		ctxHandlers: make(map[uint32]ctxHandler),
		names:       make(map[uint32]string),
		log:         log,
	}
}

func (r *Router) registerKey(name string) uint32 {
	key := protocol.FunctionID(name)
	if existing, ok := r.names[key]; ok {
		panic(fmt.Sprintf("corpc/router: duplicate function %q register (collides with %q)", name, existing))
	}
	r.names[key] = name
	return key
}

// Register installs a plain handler under name: its return value (and
// error) fully determine the response, with no option to defer.
func Register[Req any, Resp any](r *Router, name string, fn func(ctx context.Context, req Req) (Resp, error)) {
	key := r.registerKey(name)

	r.handlers[key] = func(c codec.Codec, body []byte) ([]byte, uint8) {
		var req Req
		if len(body) > 0 {
			if err := c.Unmarshal(body, &req); err != nil {
				respBody, _ := c.Marshal("invalid rpc function arguments")
				return respBody, liberr.InvalidArgument.Uint8()
			}
		}

		resp, callErr := invokeRecovered(func() (Resp, error) {
			return fn(context.Background(), req)
		})

		if callErr != nil {
			respBody, _ := c.Marshal(callErr.Error())
			return respBody, liberr.Interrupted.Uint8()
		}

		respBody, err := c.Marshal(resp)
		if err != nil {
			msg, _ := c.Marshal(fmt.Sprintf("failed to serialize rpc return value: %v", err))
			return msg, liberr.Interrupted.Uint8()
		}
		return respBody, 0
	}
}

// RegisterContext installs a deferred-context handler under name: fn
// receives a typed Ctx it may answer synchronously or stash and answer
// later from any goroutine.
func RegisterContext[Req any, Resp any](r *Router, name string, fn func(ctx *Ctx[Resp], req Req)) {
	key := r.registerKey(name)

	r.ctxHandlers[key] = func(_ context.Context, dc *DeferredContext, c codec.Codec, body []byte) {
		var req Req
		if len(body) > 0 {
			if err := c.Unmarshal(body, &req); err != nil {
				_ = dc.respond(nil, errInvalidArguments)
				return
			}
		}

		typed := &Ctx[Resp]{dc: dc}

		dc.enterHandler()
		func() {
			defer dc.leaveHandler()
			defer func() {
				if rec := recover(); rec != nil {
					_ = typed.Respond(*new(Resp), fmt.Errorf("unknown exception"))
				}
			}()
			fn(typed, req)
		}()
	}
}

func invokeRecovered[Resp any](fn func() (Resp, error)) (resp Resp, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("unknown rpc function exception")
		}
	}()
	return fn()
}

// Dispatch runs the handler registered for req's route key. For a plain
// handler (or when no handler is registered) it always returns
// NonCallback with a ready-to-write response. For a context handler it
// returns whichever CallType the handler's interaction with Respond
// produced; the caller only needs to write a response itself when the
// return is NonCallback.
func (r *Router) Dispatch(ctx context.Context, req protocol.ReqHeader, body []byte, c codec.Codec, out Responder) (respHeader, respBody []byte, callType CallType) {
	key := protocol.GetRouteKey(req)

	if h, ok := r.handlers[key]; ok {
		rb, errCode := h(c, body)
		return protocol.PrepareResponse(rb, req, errCode), rb, NonCallback
	}

	if h, ok := r.ctxHandlers[key]; ok {
		dc := newDeferredContext(ctx, req, c, out)
		h(ctx, dc, c, body)
		return nil, nil, dc.finish()
	}

	r.log.Warning("no handler registered for route key %d", key)
	rb, _ := c.Marshal("the rpc function not registered")
	return protocol.PrepareResponse(rb, req, liberr.FunctionNotSupported.Uint8()), rb, NonCallback
}

// Has reports whether a handler (of either kind) is registered for name.
func (r *Router) Has(name string) bool {
	key := protocol.FunctionID(name)
	_, ok := r.names[key]
	return ok
}
