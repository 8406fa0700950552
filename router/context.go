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

package router

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sabouaram/corpc/codec"
	liberr "github.com/sabouaram/corpc/errors"
	"github.com/sabouaram/corpc/protocol"
)

// CallType classifies how a dispatched handler interacted with its
// response, mirroring the four-way discriminator the server connection
// loop needs to decide whether to write immediately, suspend on a delayed
// reply, or do nothing further.
type CallType uint8

const (
	// NonCallback is a plain handler: its return value is the response.
	NonCallback CallType = iota

	// CallbackWithDelay is a context handler that returned without calling
	// Respond; the connection must suspend its keep-alive timer and wait.
	CallbackWithDelay

	// CallbackFinished is a context handler that called Respond before its
	// function returned; the response is already enqueued.
	CallbackFinished

	// CallbackStarted is a context handler whose Respond call raced with
	// the handler function returning, from a goroutine the handler itself
	// spawned; like CallbackFinished, the response is already enqueued.
	CallbackStarted
)

func (t CallType) String() string {
	switch t {
	case NonCallback:
		return "non_callback"
	case CallbackWithDelay:
		return "callback_with_delay"
	case CallbackFinished:
		return "callback_finished"
	case CallbackStarted:
		return "callback_started"
	default:
		return "unknown"
	}
}

// Responder is how a DeferredContext hands a finished reply back to its
// owning connection. server.Connection implements it.
type Responder interface {
	EnqueueResponse(header, body []byte, wasDelay bool)
}

const (
	ctxPending int32 = iota
	ctxDelayed
	ctxResponded
)

// DeferredContext is handed to a context handler so it can answer a
// request asynchronously: store the pointer, return, and call Respond
// later from any goroutine. Respond may be called at most once; a second
// call returns an error instead of writing again.
type DeferredContext struct {
	ctx           context.Context
	req           protocol.ReqHeader
	codec         codec.Codec
	out           Responder
	status        int32
	insideHandler int32
	respondedSync int32
}

func newDeferredContext(ctx context.Context, req protocol.ReqHeader, c codec.Codec, out Responder) *DeferredContext {
	return &DeferredContext{ctx: ctx, req: req, codec: c, out: out}
}

// Context returns the context associated with the originating request.
func (d *DeferredContext) Context() context.Context {
	return d.ctx
}

// errInvalidArguments is the error a context handler's argument decode
// failure is answered with; respond maps it to InvalidArgument.
var errInvalidArguments = fmt.Errorf("invalid rpc function arguments")

// respond marshals v (or, on failure, err) and hands the frame to the
// connection. It is safe to call from any goroutine, at most once.
func (d *DeferredContext) respond(v interface{}, callErr error) error {
	var (
		body    []byte
		errCode uint8
		err     error
	)

	if callErr != nil {
		errCode = liberr.Interrupted.Uint8()
		if callErr == errInvalidArguments {
			errCode = liberr.InvalidArgument.Uint8()
		}
		body, err = d.codec.Marshal(callErr.Error())
	} else {
		body, err = d.codec.Marshal(v)
	}
	if err != nil {
		errCode = liberr.Interrupted.Uint8()
		body, _ = d.codec.Marshal(fmt.Sprintf("failed to serialize rpc return value: %v", err))
	}

	header := protocol.PrepareResponse(body, d.req, errCode)

	if atomic.CompareAndSwapInt32(&d.status, ctxPending, ctxResponded) {
		// insideHandler is only ever 1 while the handler function's own
		// stack frame is still running this call synchronously; the router
		// clears it via leaveHandler once fn returns, which happens before
		// finish() runs. Snapshot the distinction here, while it is still
		// observable, instead of leaving finish() to read it too late.
		if atomic.LoadInt32(&d.insideHandler) == 1 {
			atomic.StoreInt32(&d.respondedSync, 1)
		}
		d.out.EnqueueResponse(header, body, false)
		return nil
	}
	if atomic.CompareAndSwapInt32(&d.status, ctxDelayed, ctxResponded) {
		d.out.EnqueueResponse(header, body, true)
		return nil
	}
	return liberr.New(0, "rpc context already responded")
}

// finish is called by the router immediately after the handler function
// returns. It decides, via the same compare-and-swap Respond uses, whether
// the handler already answered (CallbackFinished/CallbackStarted) or left
// the reply for later (CallbackWithDelay).
func (d *DeferredContext) finish() CallType {
	if atomic.CompareAndSwapInt32(&d.status, ctxPending, ctxDelayed) {
		return CallbackWithDelay
	}

	if atomic.LoadInt32(&d.respondedSync) == 1 {
		return CallbackFinished
	}
	return CallbackStarted
}

func (d *DeferredContext) enterHandler() { atomic.StoreInt32(&d.insideHandler, 1) }
func (d *DeferredContext) leaveHandler() { atomic.StoreInt32(&d.insideHandler, 0) }

// Ctx is the typed view of a DeferredContext a RegisterContext handler
// receives, so Respond is checked against the function's declared return
// type instead of taking interface{}.
type Ctx[Resp any] struct {
	dc *DeferredContext
}

// Respond answers the call. Calling it more than once returns an error and
// has no further effect.
func (c *Ctx[Resp]) Respond(resp Resp, err error) error {
	return c.dc.respond(resp, err)
}

// Context returns the context associated with the originating request.
func (c *Ctx[Resp]) Context() context.Context {
	return c.dc.Context()
}
