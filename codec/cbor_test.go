package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sabouaram/corpc/codec"
)

type echoArgs struct {
	Msg string `cbor:"msg"`
}

func TestCBOR_RoundTrip(t *testing.T) {
	c := codec.CBOR{}

	in := echoArgs{Msg: "hello"}
	data, err := c.Marshal(in)
	require.NoError(t, err)

	var out echoArgs
	require.NoError(t, c.Unmarshal(data, &out))
	require.Equal(t, in, out)
}

func TestByType_DefaultRegistered(t *testing.T) {
	c, ok := codec.ByType(0)
	require.True(t, ok)
	require.Equal(t, "cbor", c.Name())

	_, ok = codec.ByType(255)
	require.False(t, ok)
}
