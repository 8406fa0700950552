package pool_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sabouaram/corpc/client"
	"github.com/sabouaram/corpc/codec"
	"github.com/sabouaram/corpc/pool"
	"github.com/sabouaram/corpc/protocol"
)

func startEchoServer(t *testing.T) (host, port string, closeFn func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
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
			}(conn)
		}
	}()

	h, p, _ := net.SplitHostPort(ln.Addr().String())
	return h, p, func() { _ = ln.Close() }
}

func TestPool_GetClient_ReusesCollected(t *testing.T) {
	host, port, closeFn := startEchoServer(t)
	defer closeFn()

	p := pool.New(pool.Config{
		Client:        client.Config{Host: host, Port: port, Timeout: time.Second},
		MaxConnection: 2,
	}, nil, nil)

	resp, err := pool.SendRequest[string, string](context.Background(), p, "echo", "one")
	require.NoError(t, err)
	require.Equal(t, "one", resp)
	require.Equal(t, 1, p.FreeClientCount())

	resp, err = pool.SendRequest[string, string](context.Background(), p, "echo", "two")
	require.NoError(t, err)
	require.Equal(t, "two", resp)
	require.Equal(t, 1, p.Size(), "second call should reuse the freed connection")
}

func TestPool_GetClient_ExhaustsAtMax(t *testing.T) {
	host, port, closeFn := startEchoServer(t)
	defer closeFn()

	p := pool.New(pool.Config{
		Client:        client.Config{Host: host, Port: port, Timeout: time.Second},
		MaxConnection: 1,
	}, nil, nil)

	c1, err := p.GetClient(context.Background())
	require.NoError(t, err)
	defer c1.Close()

	_, err = p.GetClient(context.Background())
	require.Error(t, err)
}

func TestPool_IdleReap(t *testing.T) {
	host, port, closeFn := startEchoServer(t)
	defer closeFn()

	p := pool.New(pool.Config{
		Client:      client.Config{Host: host, Port: port, Timeout: time.Second},
		IdleTimeout: 50 * time.Millisecond,
	}, nil, nil)

	resp, err := pool.SendRequest[string, string](context.Background(), p, "echo", "ping")
	require.NoError(t, err)
	require.Equal(t, "ping", resp)
	require.Equal(t, 1, p.FreeClientCount())
	require.True(t, p.ReaperRunning())

	time.Sleep(250 * time.Millisecond)
	require.Equal(t, 0, p.FreeClientCount())
	require.False(t, p.ReaperRunning())
}

func TestPool_Reconnect_FailsAfterRetries(t *testing.T) {
	host, port, closeFn := startEchoServer(t)
	closeFn() // close before the first attempt so every dial fails

	p := pool.New(pool.Config{
		Client:            client.Config{Host: host, Port: port, Timeout: 100 * time.Millisecond},
		ConnectRetryCount: 2,
		ReconnectWait:     10 * time.Millisecond,
	}, nil, nil)

	_, err := p.GetClient(context.Background())
	require.Error(t, err)
}
