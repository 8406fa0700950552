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

package errors

// RPC error codes. Values double as the wire resp_header.err_code byte, so
// they must each fit a uint8 and stay stable across releases.
const (
	NoError CodeError = iota

	// ProtocolError is returned when a frame's magic byte does not match,
	// or when a request header claims a payload larger than the maximum.
	ProtocolError

	// FunctionNotSupported is returned when the router has no handler for
	// the requested route key.
	FunctionNotSupported

	// InvalidArgument is returned when a request body fails to deserialize
	// into the handler's argument type, or a response body fails to
	// deserialize into the expected return type.
	InvalidArgument

	// Interrupted is returned when a handler panics or returns an error.
	Interrupted

	// IOError wraps a transport-level read/write failure.
	IOError

	// TimedOut is returned when a client call's deadline elapses before a
	// response arrives.
	TimedOut

	// NotConnected is returned when a client call is attempted, or a
	// connect attempt fails, with no usable connection.
	NotConnected

	// OperationCanceled is returned when a call or connection is canceled
	// before it completes.
	OperationCanceled

	// ConnectionRefused is returned by a pool when it cannot hand out a
	// client (acquire failure with no connection available).
	ConnectionRefused

	// PoolExhausted is returned when a pool is at its connection cap and no
	// idle client is available.
	PoolExhausted
)

func init() {
	RegisterMessage(ProtocolError, "protocol error")
	RegisterMessage(FunctionNotSupported, "the rpc function not registered")
	RegisterMessage(InvalidArgument, "invalid rpc function arguments")
	RegisterMessage(Interrupted, "unknown exception")
	RegisterMessage(IOError, "io error")
	RegisterMessage(TimedOut, "timed out")
	RegisterMessage(NotConnected, "not connected")
	RegisterMessage(OperationCanceled, "operation canceled")
	RegisterMessage(ConnectionRefused, "connection refused")
	RegisterMessage(PoolExhausted, "pool exhausted")
}
