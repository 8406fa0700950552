package client_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sabouaram/corpc/client"
	"github.com/sabouaram/corpc/codec"
	liberr "github.com/sabouaram/corpc/errors"
	"github.com/sabouaram/corpc/protocol"
)

// fakeServer speaks just enough of the wire protocol to drive client
// behavior under test, without depending on the server package.
type fakeServer struct {
	ln net.Listener
}

func startFakeServer(t *testing.T, handle func(conn net.Conn)) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go handle(conn)
		}
	}()

	return &fakeServer{ln: ln}
}

func (s *fakeServer) addr() (string, string) {
	host, port, _ := net.SplitHostPort(s.ln.Addr().String())
	return host, port
}

func (s *fakeServer) close() { _ = s.ln.Close() }

func echoHandler(conn net.Conn) {
	defer conn.Close()
	c := codec.CBOR{}
	for {
		req, err := protocol.ReadHead(conn)
		if err != nil {
			return
		}
		body, err := protocol.ReadPayload(conn, req)
		if err != nil {
			return
		}

		var msg string
		_ = c.Unmarshal(body, &msg)
		respBody, _ := c.Marshal(msg)
		header := protocol.PrepareResponse(respBody, req, 0)
		if err := protocol.WriteFrame(conn, header, respBody); err != nil {
			return
		}
	}
}

func hangingHandler(conn net.Conn) {
	defer conn.Close()
	req, err := protocol.ReadHead(conn)
	if err != nil {
		return
	}
	_, _ = protocol.ReadPayload(conn, req)
	time.Sleep(time.Hour)
}

func TestClient_CallEchoSuccess(t *testing.T) {
	srv := startFakeServer(t, echoHandler)
	defer srv.close()
	host, port := srv.addr()

	c := client.New(client.Config{Host: host, Port: port, Timeout: time.Second}, nil, nil)
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	resp, err := client.Call[string, string](context.Background(), c, "echo", "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", resp)
}

func TestClient_CallTimesOut(t *testing.T) {
	srv := startFakeServer(t, hangingHandler)
	defer srv.close()
	host, port := srv.addr()

	c := client.New(client.Config{Host: host, Port: port, Timeout: time.Second}, nil, nil)
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	_, err := client.CallFor[string, string](context.Background(), c, "echo", 50*time.Millisecond, "hello")
	require.Error(t, err)
	require.True(t, liberr.IsCode(err, liberr.TimedOut))
}

func TestClient_CallOnClosedClient(t *testing.T) {
	c := client.New(client.Config{Host: "127.0.0.1", Port: "1"}, nil, nil)
	require.NoError(t, c.Close())

	_, err := client.Call[string, string](context.Background(), c, "echo", "hi")
	require.Error(t, err)
	require.True(t, liberr.IsCode(err, liberr.IOError))
}

func TestClient_ConnectRefused(t *testing.T) {
	c := client.New(client.Config{Host: "127.0.0.1", Port: "1", Timeout: 200 * time.Millisecond}, nil, nil)
	err := c.Connect(context.Background())
	require.Error(t, err)
	require.True(t, liberr.IsCode(err, liberr.NotConnected))
}

func TestClient_Close_Idempotent(t *testing.T) {
	srv := startFakeServer(t, echoHandler)
	defer srv.close()
	host, port := srv.addr()

	c := client.New(client.Config{Host: host, Port: port}, nil, nil)
	require.NoError(t, c.Connect(context.Background()))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	require.True(t, c.Closed())
}
