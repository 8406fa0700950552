package router_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sabouaram/corpc/codec"
	liberr "github.com/sabouaram/corpc/errors"
	"github.com/sabouaram/corpc/protocol"
	"github.com/sabouaram/corpc/router"
)

type recordingResponder struct {
	header, body []byte
	wasDelay     bool
	calls        int
}

func (r *recordingResponder) EnqueueResponse(header, body []byte, wasDelay bool) {
	r.header, r.body, r.wasDelay = header, body, wasDelay
	r.calls++
}

func TestRegister_EchoSuccess(t *testing.T) {
	r := router.New(nil)
	router.Register(r, "echo", func(_ context.Context, req string) (string, error) {
		return req, nil
	})

	c := codec.CBOR{}
	body, _ := c.Marshal("hello")
	req := protocol.ReqHeader{FunctionID: protocol.FunctionID("echo"), SeqNum: 1}

	respHeader, respBody, callType := r.Dispatch(context.Background(), req, body, c, nil)

	require.Equal(t, router.NonCallback, callType)
	resp := protocol.DecodeRespHeader(respHeader)
	require.Equal(t, uint8(0), resp.ErrCode)

	var got string
	require.NoError(t, c.Unmarshal(respBody, &got))
	require.Equal(t, "hello", got)
}

func TestDispatch_UnknownFunction(t *testing.T) {
	r := router.New(nil)
	c := codec.CBOR{}
	req := protocol.ReqHeader{FunctionID: protocol.FunctionID("missing")}

	respHeader, respBody, callType := r.Dispatch(context.Background(), req, nil, c, nil)

	require.Equal(t, router.NonCallback, callType)
	resp := protocol.DecodeRespHeader(respHeader)
	require.Equal(t, liberr.FunctionNotSupported.Uint8(), resp.ErrCode)

	var msg string
	require.NoError(t, c.Unmarshal(respBody, &msg))
	require.Equal(t, "the rpc function not registered", msg)
}

func TestDispatch_InvalidArguments(t *testing.T) {
	r := router.New(nil)
	router.Register(r, "add", func(_ context.Context, req int) (int, error) {
		return req + 1, nil
	})

	c := codec.CBOR{}
	req := protocol.ReqHeader{FunctionID: protocol.FunctionID("add")}

	// a string payload where an int is expected fails to decode
	badBody, _ := c.Marshal("not-an-int")
	respHeader, _, callType := r.Dispatch(context.Background(), req, badBody, c, nil)

	require.Equal(t, router.NonCallback, callType)
	resp := protocol.DecodeRespHeader(respHeader)
	require.Equal(t, liberr.InvalidArgument.Uint8(), resp.ErrCode)
}

func TestDispatch_HandlerError(t *testing.T) {
	r := router.New(nil)
	router.Register(r, "boom", func(_ context.Context, req string) (string, error) {
		return "", errors.New("kaboom")
	})

	c := codec.CBOR{}
	body, _ := c.Marshal("x")
	req := protocol.ReqHeader{FunctionID: protocol.FunctionID("boom")}

	respHeader, _, _ := r.Dispatch(context.Background(), req, body, c, nil)
	resp := protocol.DecodeRespHeader(respHeader)
	require.Equal(t, liberr.Interrupted.Uint8(), resp.ErrCode)
}

func TestDispatch_HandlerPanic(t *testing.T) {
	r := router.New(nil)
	router.Register(r, "panics", func(_ context.Context, req string) (string, error) {
		panic("boom")
	})

	c := codec.CBOR{}
	body, _ := c.Marshal("x")
	req := protocol.ReqHeader{FunctionID: protocol.FunctionID("panics")}

	respHeader, respBody, _ := r.Dispatch(context.Background(), req, body, c, nil)
	resp := protocol.DecodeRespHeader(respHeader)
	require.Equal(t, liberr.Interrupted.Uint8(), resp.ErrCode)

	var msg string
	require.NoError(t, c.Unmarshal(respBody, &msg))
	require.Equal(t, "unknown rpc function exception", msg)
}

func TestRegisterContext_SynchronousRespond(t *testing.T) {
	r := router.New(nil)
	router.RegisterContext(r, "ctx-echo", func(ctx *router.Ctx[string], req string) {
		require.NoError(t, ctx.Respond(req, nil))
	})

	c := codec.CBOR{}
	body, _ := c.Marshal("sync")
	req := protocol.ReqHeader{FunctionID: protocol.FunctionID("ctx-echo")}
	out := &recordingResponder{}

	_, _, callType := r.Dispatch(context.Background(), req, body, c, out)

	require.Equal(t, router.CallbackFinished, callType)
	require.Equal(t, 1, out.calls)
	require.False(t, out.wasDelay)
}

func TestRegisterContext_DeferredRespond(t *testing.T) {
	r := router.New(nil)
	done := make(chan struct{})

	router.RegisterContext(r, "ctx-defer", func(ctx *router.Ctx[string], req string) {
		go func() {
			require.NoError(t, ctx.Respond(fmt.Sprintf("later:%s", req), nil))
			close(done)
		}()
	})

	c := codec.CBOR{}
	body, _ := c.Marshal("x")
	req := protocol.ReqHeader{FunctionID: protocol.FunctionID("ctx-defer")}
	out := &recordingResponder{}

	_, _, callType := r.Dispatch(context.Background(), req, body, c, out)
	require.Equal(t, router.CallbackWithDelay, callType)

	<-done
	require.Equal(t, 1, out.calls)
	require.True(t, out.wasDelay)
}

func TestRegisterContext_DoubleRespondFails(t *testing.T) {
	dc := router.New(nil)
	var callErr error
	router.RegisterContext(dc, "twice", func(ctx *router.Ctx[string], req string) {
		require.NoError(t, ctx.Respond(req, nil))
		callErr = ctx.Respond(req, nil)
	})

	c := codec.CBOR{}
	body, _ := c.Marshal("x")
	req := protocol.ReqHeader{FunctionID: protocol.FunctionID("twice")}
	out := &recordingResponder{}

	dc.Dispatch(context.Background(), req, body, c, out)
	require.Error(t, callErr)
}

func TestRegister_DuplicateNamePanics(t *testing.T) {
	r := router.New(nil)
	router.Register(r, "dup", func(_ context.Context, req string) (string, error) { return req, nil })

	require.Panics(t, func() {
		router.Register(r, "dup", func(_ context.Context, req string) (string, error) { return req, nil })
	})
}
