package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sabouaram/corpc/client"
	"github.com/sabouaram/corpc/pool"
	"github.com/sabouaram/corpc/registry"
)

func TestRegistry_At_SharesPoolForSameEndpoint(t *testing.T) {
	reg := registry.New()
	cfg := pool.Config{Client: client.Config{Host: "127.0.0.1", Port: "9"}}

	p1 := reg.At("127.0.0.1:9", cfg, nil, nil, nil)
	p2 := reg.At("127.0.0.1:9", cfg, nil, nil, nil)
	require.Same(t, p1, p2)
	require.Equal(t, 1, reg.Len())
}

func TestRegistry_At_DistinctEndpointsGetDistinctPools(t *testing.T) {
	reg := registry.New()
	cfg := pool.Config{}

	p1 := reg.At("127.0.0.1:9", cfg, nil, nil, nil)
	p2 := reg.At("127.0.0.1:10", cfg, nil, nil, nil)
	require.NotSame(t, p1, p2)
	require.Equal(t, 2, reg.Len())
}

func TestRegistry_Remove(t *testing.T) {
	reg := registry.New()
	reg.At("127.0.0.1:9", pool.Config{}, nil, nil, nil)
	require.Equal(t, 1, reg.Len())

	reg.Remove("127.0.0.1:9")
	require.Equal(t, 0, reg.Len())
}
