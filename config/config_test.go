package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sabouaram/corpc/channel"
	"github.com/sabouaram/corpc/config"
	"github.com/sabouaram/corpc/server"
)

func TestConfig_Validate_ServerOptional(t *testing.T) {
	cfg := config.Config{}
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate_ServerWithAddressPasses(t *testing.T) {
	cfg := config.Config{Server: server.Config{Address: "0.0.0.0:8801"}}
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate_ChannelRequiresEndpoints(t *testing.T) {
	cfg := config.Config{
		Channels: map[string]config.ChannelConfig{
			"billing": {Channel: channel.Config{}},
		},
	}
	require.Error(t, cfg.Validate())
}

func TestConfig_Validate_ChannelWithEndpointsPasses(t *testing.T) {
	cfg := config.Config{
		Channels: map[string]config.ChannelConfig{
			"billing": {Endpoints: []string{"10.0.0.1:8801"}},
		},
	}
	require.NoError(t, cfg.Validate())
}

func TestConfig_HasServer(t *testing.T) {
	require.False(t, config.Config{}.HasServer())
	require.True(t, config.Config{Server: server.Config{Address: "x:1"}}.HasServer())
}
