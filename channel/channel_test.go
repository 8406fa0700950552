package channel_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sabouaram/corpc/channel"
	"github.com/sabouaram/corpc/client"
	"github.com/sabouaram/corpc/codec"
	"github.com/sabouaram/corpc/pool"
	"github.com/sabouaram/corpc/protocol"
	"github.com/sabouaram/corpc/registry"
)

func startTaggedEchoServer(t *testing.T, tag string) (addr string, closeFn func(), hits *int32) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var count int32
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			count++
			go func(conn net.Conn) {
				defer conn.Close()
				c := codec.CBOR{}
				for {
					req, err := protocol.ReadHead(conn)
					if err != nil {
						return
					}
					_, err = protocol.ReadPayload(conn, req)
					if err != nil {
						return
					}
					respBody, _ := c.Marshal(tag)
					header := protocol.PrepareResponse(respBody, req, 0)
					if err := protocol.WriteFrame(conn, header, respBody); err != nil {
						return
					}
				}
			}(conn)
		}
	}()

	return ln.Addr().String(), func() { _ = ln.Close() }, &count
}

func TestChannel_RoundRobin_VisitsEveryEndpoint(t *testing.T) {
	addrA, closeA, _ := startTaggedEchoServer(t, "a")
	defer closeA()
	addrB, closeB, _ := startTaggedEchoServer(t, "b")
	defer closeB()

	reg := registry.New()
	ch, err := channel.Create([]string{addrA, addrB}, channel.Config{
		Pool:         pool.Config{Client: client.Config{Timeout: time.Second}},
		LoadBalancer: channel.RoundRobin,
	}, reg, nil, nil, nil)
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		resp, err := channel.SendRequest[string, string](context.Background(), ch, "whoami", "x")
		require.NoError(t, err)
		seen[resp] = true
	}
	require.True(t, seen["a"])
	require.True(t, seen["b"])
	require.Equal(t, 2, reg.Len())
}
