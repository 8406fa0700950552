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

// Package protocol defines the wire framing this module's server and client
// share: a 20-byte request header, a 16-byte response header, and the
// helpers that read/write them. Both headers are little-endian and packed;
// field order and width are part of the wire contract and must not change.
package protocol

import "encoding/binary"

const (
	// Magic is the fixed first byte of every header, request or response.
	Magic uint8 = 0x15

	// Version is the protocol version this module emits. Readers only
	// reject on bad magic, not on version mismatch, so this module can be
	// rolled forward without breaking older peers that ignore it.
	Version uint8 = 1

	// ReqHeaderLen is the fixed, on-the-wire size of ReqHeader.
	ReqHeaderLen = 20

	// RespHeaderLen is the fixed, on-the-wire size of RespHeader.
	RespHeaderLen = 16

	// DefaultSerializeType selects the codec registered under type 0.
	DefaultSerializeType uint8 = 0

	// MaxPayloadLen bounds read_payload; readers refuse a header claiming
	// more than this for a single frame.
	MaxPayloadLen = 64 << 20
)

// ReqHeader is the 20-byte request header.
type ReqHeader struct {
	Magic          uint8
	Version        uint8
	SerializeType  uint8
	MsgType        uint8
	SeqNum         uint32
	FunctionID     uint32
	Length         uint32
	Reserved       uint32
}

// RespHeader is the 16-byte response header.
type RespHeader struct {
	Magic    uint8
	Version  uint8
	ErrCode  uint8
	MsgType  uint8
	SeqNum   uint32
	Length   uint32
	Reserved uint32
}

// Encode writes h's wire representation into buf, which must be at least
// ReqHeaderLen bytes.
func (h ReqHeader) Encode(buf []byte) {
	buf[0] = h.Magic
	buf[1] = h.Version
	buf[2] = h.SerializeType
	buf[3] = h.MsgType
	binary.LittleEndian.PutUint32(buf[4:8], h.SeqNum)
	binary.LittleEndian.PutUint32(buf[8:12], h.FunctionID)
	binary.LittleEndian.PutUint32(buf[12:16], h.Length)
	binary.LittleEndian.PutUint32(buf[16:20], h.Reserved)
}

// DecodeReqHeader parses a ReqHeaderLen-byte buffer.
func DecodeReqHeader(buf []byte) ReqHeader {
	return ReqHeader{
		Magic:         buf[0],
		Version:       buf[1],
		SerializeType: buf[2],
		MsgType:       buf[3],
		SeqNum:        binary.LittleEndian.Uint32(buf[4:8]),
		FunctionID:    binary.LittleEndian.Uint32(buf[8:12]),
		Length:        binary.LittleEndian.Uint32(buf[12:16]),
		Reserved:      binary.LittleEndian.Uint32(buf[16:20]),
	}
}

// Encode writes h's wire representation into buf, which must be at least
// RespHeaderLen bytes.
func (h RespHeader) Encode(buf []byte) {
	buf[0] = h.Magic
	buf[1] = h.Version
	buf[2] = h.ErrCode
	buf[3] = h.MsgType
	binary.LittleEndian.PutUint32(buf[4:8], h.SeqNum)
	binary.LittleEndian.PutUint32(buf[8:12], h.Length)
	binary.LittleEndian.PutUint32(buf[12:16], h.Reserved)
}

// DecodeRespHeader parses a RespHeaderLen-byte buffer.
func DecodeRespHeader(buf []byte) RespHeader {
	return RespHeader{
		Magic:    buf[0],
		Version:  buf[1],
		ErrCode:  buf[2],
		MsgType:  buf[3],
		SeqNum:   binary.LittleEndian.Uint32(buf[4:8]),
		Length:   binary.LittleEndian.Uint32(buf[8:12]),
		Reserved: binary.LittleEndian.Uint32(buf[12:16]),
	}
}

// GetRouteKey returns the 32-bit router key carried by a request header.
func GetRouteKey(h ReqHeader) uint32 {
	return h.FunctionID
}

// HasKnownSerializeType reports whether h.SerializeType names a codec this
// build understands (currently only the default).
func HasKnownSerializeType(h ReqHeader) bool {
	return h.SerializeType == DefaultSerializeType
}
