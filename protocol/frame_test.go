package protocol_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	liberr "github.com/sabouaram/corpc/errors"
	"github.com/sabouaram/corpc/protocol"
)

func TestReadHead_RoundTrip(t *testing.T) {
	h := protocol.ReqHeader{
		Magic:      protocol.Magic,
		Version:    protocol.Version,
		SeqNum:     7,
		FunctionID: protocol.FunctionID("echo"),
		Length:     3,
	}

	buf := make([]byte, protocol.ReqHeaderLen)
	h.Encode(buf)

	got, err := protocol.ReadHead(bytes.NewReader(buf))
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestReadHead_BadMagic(t *testing.T) {
	buf := make([]byte, protocol.ReqHeaderLen)
	h := protocol.ReqHeader{Magic: 0xFF}
	h.Encode(buf)

	_, err := protocol.ReadHead(bytes.NewReader(buf))
	require.Error(t, err)
	require.True(t, liberr.IsCode(err, liberr.ProtocolError))
}

func TestReadPayload_RejectsOversized(t *testing.T) {
	h := protocol.ReqHeader{Length: protocol.MaxPayloadLen + 1}
	_, err := protocol.ReadPayload(bytes.NewReader(nil), h)
	require.Error(t, err)
}

func TestReadPayload_ZeroLength(t *testing.T) {
	h := protocol.ReqHeader{Length: 0}
	body, err := protocol.ReadPayload(bytes.NewReader(nil), h)
	require.NoError(t, err)
	require.Empty(t, body)
}

func TestPrepareResponse_MirrorsSeqNum(t *testing.T) {
	req := protocol.ReqHeader{SeqNum: 42, Version: protocol.Version}
	body := []byte("abc")

	buf := protocol.PrepareResponse(body, req, 0)
	resp := protocol.DecodeRespHeader(buf)

	require.Equal(t, uint32(42), resp.SeqNum)
	require.Equal(t, uint32(len(body)), resp.Length)
	require.Equal(t, protocol.Magic, resp.Magic)
	require.Equal(t, uint8(0), resp.ErrCode)
}

func TestFunctionID_Stable(t *testing.T) {
	require.Equal(t, protocol.FunctionID("echo"), protocol.FunctionID("echo"))
	require.NotEqual(t, protocol.FunctionID("echo"), protocol.FunctionID("other"))
}
