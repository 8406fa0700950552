package server_test

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sabouaram/corpc/codec"
	"github.com/sabouaram/corpc/protocol"
	"github.com/sabouaram/corpc/router"
	"github.com/sabouaram/corpc/server"
)

func startAcceptor(t *testing.T, cfg server.Config, r *router.Router) (*server.Acceptor, string) {
	t.Helper()
	if cfg.Address == "" {
		cfg.Address = "127.0.0.1:0"
	}
	a := server.New(cfg, r, nil, nil, nil)
	require.NoError(t, a.Start())
	t.Cleanup(func() { _ = a.Stop() })
	return a, a.Addr().String()
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	return conn
}

func sendRequest(t *testing.T, conn net.Conn, funcName string, c codec.Codec, req interface{}) {
	t.Helper()
	body, err := c.Marshal(req)
	require.NoError(t, err)

	header := make([]byte, protocol.ReqHeaderLen)
	protocol.ReqHeader{
		Magic:         protocol.Magic,
		Version:       protocol.Version,
		SerializeType: protocol.DefaultSerializeType,
		SeqNum:        1,
		FunctionID:    protocol.FunctionID(funcName),
		Length:        uint32(len(body)),
	}.Encode(header)

	require.NoError(t, protocol.WriteFrame(conn, header, body))
}

func readResponse(t *testing.T, conn net.Conn) (protocol.RespHeader, []byte) {
	t.Helper()
	h, err := protocol.ReadRespHead(conn)
	require.NoError(t, err)
	body, err := protocol.ReadRespBody(conn, h)
	require.NoError(t, err)
	return h, body
}

func TestConnection_EchoSuccess(t *testing.T) {
	r := router.New(nil)
	router.Register[string, string](r, "echo", func(_ context.Context, req string) (string, error) {
		return req, nil
	})

	_, addr := startAcceptor(t, server.Config{}, r)
	conn := dial(t, addr)
	defer conn.Close()

	c := codec.CBOR{}
	sendRequest(t, conn, "echo", c, "Hello world!")

	h, body := readResponse(t, conn)
	require.Equal(t, uint8(0), h.ErrCode)

	var got string
	require.NoError(t, c.Unmarshal(body, &got))
	require.Equal(t, "Hello world!", got)
}

func TestConnection_UnknownFunction(t *testing.T) {
	r := router.New(nil)
	_, addr := startAcceptor(t, server.Config{}, r)
	conn := dial(t, addr)
	defer conn.Close()

	c := codec.CBOR{}
	body, _ := c.Marshal("anything")
	header := make([]byte, protocol.ReqHeaderLen)
	protocol.ReqHeader{
		Magic:         protocol.Magic,
		Version:       protocol.Version,
		SerializeType: protocol.DefaultSerializeType,
		SeqNum:        7,
		FunctionID:    0xDEADBEEF,
		Length:        uint32(len(body)),
	}.Encode(header)
	require.NoError(t, protocol.WriteFrame(conn, header, body))

	h, respBody := readResponse(t, conn)
	require.NotEqual(t, uint8(0), h.ErrCode)

	var msg string
	require.NoError(t, c.Unmarshal(respBody, &msg))
	require.Equal(t, "the rpc function not registered", msg)
}

func TestConnection_BadMagic_ClosesWithoutResponse(t *testing.T) {
	r := router.New(nil)
	_, addr := startAcceptor(t, server.Config{}, r)
	conn := dial(t, addr)
	defer conn.Close()

	header := make([]byte, protocol.ReqHeaderLen)
	header[0] = 0x16 // bad magic
	binary.LittleEndian.PutUint32(header[12:16], 0)
	_, err := conn.Write(header)
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	require.Error(t, err) // connection closed, no response written
}

func TestConnection_DeferredReply(t *testing.T) {
	r := router.New(nil)
	router.RegisterContext[string, string](r, "delayed_echo", func(ctx *router.Ctx[string], req string) {
		go func() {
			time.Sleep(20 * time.Millisecond)
			_ = ctx.Respond(req, nil)
		}()
	})

	_, addr := startAcceptor(t, server.Config{}, r)
	conn := dial(t, addr)
	defer conn.Close()

	c := codec.CBOR{}
	sendRequest(t, conn, "delayed_echo", c, "later")

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	h, body := readResponse(t, conn)
	require.Equal(t, uint8(0), h.ErrCode)

	var got string
	require.NoError(t, c.Unmarshal(body, &got))
	require.Equal(t, "later", got)
}

func TestAcceptor_StartStop_Idempotent(t *testing.T) {
	r := router.New(nil)
	a := server.New(server.Config{Address: "127.0.0.1:0"}, r, nil, nil, nil)
	require.NoError(t, a.Start())
	require.NoError(t, a.Start())
	require.NoError(t, a.Stop())
	require.NoError(t, a.Stop())
}
