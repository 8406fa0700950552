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

package protocol

import (
	"fmt"
	"io"

	liberr "github.com/sabouaram/corpc/errors"
)

// ReadHead reads exactly ReqHeaderLen bytes from r and validates the magic
// byte.
func ReadHead(r io.Reader) (ReqHeader, error) {
	buf := make([]byte, ReqHeaderLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return ReqHeader{}, err
	}

	h := DecodeReqHeader(buf)
	if h.Magic != Magic {
		return ReqHeader{}, liberr.ProtocolError.Error()
	}
	return h, nil
}

// ReadPayload reads exactly h.Length bytes from r, refusing frames larger
// than MaxPayloadLen.
func ReadPayload(r io.Reader, h ReqHeader) ([]byte, error) {
	if h.Length > MaxPayloadLen {
		return nil, liberr.ProtocolError.Error(fmt.Errorf("payload length %d exceeds maximum %d", h.Length, MaxPayloadLen))
	}

	buf := make([]byte, h.Length)
	if h.Length == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadRespHead reads exactly RespHeaderLen bytes from r.
func ReadRespHead(r io.Reader) (RespHeader, error) {
	buf := make([]byte, RespHeaderLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return RespHeader{}, err
	}
	return DecodeRespHeader(buf), nil
}

// ReadRespBody reads exactly h.Length bytes from r.
func ReadRespBody(r io.Reader, h RespHeader) ([]byte, error) {
	buf := make([]byte, h.Length)
	if h.Length == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// PrepareResponse builds the RespHeaderLen-byte header for a reply to req.
// If errCode is non-zero, body is assumed to already hold the
// codec-serialized error message (this function never serializes).
func PrepareResponse(body []byte, req ReqHeader, errCode uint8) []byte {
	buf := make([]byte, RespHeaderLen)
	RespHeader{
		Magic:   Magic,
		Version: req.Version,
		ErrCode: errCode,
		SeqNum:  req.SeqNum,
		Length:  uint32(len(body)),
	}.Encode(buf)
	return buf
}

// WriteFrame writes header and body as a single scatter-gather write where
// the underlying writer supports it, falling back to two sequential writes
// otherwise. Request and response framing both use this helper.
func WriteFrame(w io.Writer, header, body []byte) error {
	if mw, ok := w.(interface {
		WriteV(bufs [][]byte) error
	}); ok {
		return mw.WriteV([][]byte{header, body})
	}

	if _, err := w.Write(header); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}
