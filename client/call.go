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

package client

import (
	"context"
	"fmt"
	"time"

	liberr "github.com/sabouaram/corpc/errors"
	"github.com/sabouaram/corpc/protocol"
)

// Call invokes funcName with req using the client's default timeout and
// decodes the reply into Resp.
func Call[Req any, Resp any](ctx context.Context, c *Client, funcName string, req Req) (Resp, error) {
	return CallFor[Req, Resp](ctx, c, funcName, c.cfg.timeoutOrDefault(), req)
}

// CallFor is Call with an explicit per-call timeout.
func CallFor[Req any, Resp any](ctx context.Context, c *Client, funcName string, timeout time.Duration, req Req) (resp Resp, err error) {
	c.mu.Lock()
	closed := c.closed
	conn := c.conn
	c.mu.Unlock()

	if closed {
		return resp, liberr.IOError.Error(fmt.Errorf("client has been closed, please re-connect"))
	}
	if conn == nil {
		return resp, liberr.NotConnected.Error(fmt.Errorf("client is not connected"))
	}

	deadline := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return resp, liberr.IOError.Error(err)
	}
	defer func() { _ = conn.SetDeadline(time.Time{}) }()

	body, err := c.codec.Marshal(req)
	if err != nil {
		return resp, liberr.InvalidArgument.Error(fmt.Errorf("failed to serialize rpc function arguments: %w", err))
	}

	header := make([]byte, protocol.ReqHeaderLen)
	protocol.ReqHeader{
		Magic:         protocol.Magic,
		Version:       protocol.Version,
		SerializeType: protocol.DefaultSerializeType,
		SeqNum:        c.nextSeq(),
		FunctionID:    protocol.FunctionID(funcName),
		Length:        uint32(len(body)),
	}.Encode(header)

	if err := protocol.WriteFrame(conn, header, body); err != nil {
		c.closeConn()
		return resp, classifyIOErr(err)
	}

	respHeader, err := protocol.ReadRespHead(conn)
	if err != nil {
		c.closeConn()
		return resp, classifyIOErr(err)
	}

	respBody, err := protocol.ReadRespBody(conn, respHeader)
	if err != nil {
		c.closeConn()
		return resp, classifyIOErr(err)
	}

	if respHeader.ErrCode != 0 {
		var msg string
		_ = c.codec.Unmarshal(respBody, &msg)
		return resp, liberr.NewCodeError(uint16(respHeader.ErrCode)).Error(fmt.Errorf("%s", msg))
	}

	if err := c.codec.Unmarshal(respBody, &resp); err != nil {
		return resp, liberr.InvalidArgument.Error(fmt.Errorf("failed to deserialize rpc return value: %w", err))
	}

	return resp, nil
}

func classifyIOErr(err error) error {
	if isTimeoutErr(err) {
		return liberr.TimedOut.Error(err)
	}
	return liberr.IOError.Error(err)
}
