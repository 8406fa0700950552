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

// Package errors implements a CodeError-keyed error hierarchy: every error
// carries a numeric code, a message and an optional chain of parent errors.
package errors

import (
	"math"
	"sort"
	"strconv"
)

var idMsgFct = make(map[CodeError]Message)

// Message generates the text associated with a CodeError.
type Message func(code CodeError) (message string)

// CodeError is a numeric error classifier, similar in spirit to an HTTP
// status code.
type CodeError uint16

const (
	// UnknownError is the zero-value code used when no registration applies.
	UnknownError CodeError = 0

	// UnknownMessage is returned for unregistered codes.
	UnknownMessage = "unknown error"

	// NullMessage is the empty message sentinel.
	NullMessage = ""
)

// ParseCodeError clamps an arbitrary integer into the CodeError range.
func ParseCodeError(i int64) CodeError {
	if i < 0 {
		return UnknownError
	} else if i >= int64(math.MaxUint16) {
		return math.MaxUint16
	}
	return CodeError(i)
}

func NewCodeError(code uint16) CodeError {
	return CodeError(code)
}

func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

func (c CodeError) Int() int {
	return int(c)
}

// Uint8 narrows c to the wire resp_header.err_code byte. RPC error codes in
// this module are all small enough to fit; a code that doesn't is a
// programming error, reported as math.MaxUint8 rather than silently
// wrapping.
func (c CodeError) Uint8() uint8 {
	if c > 255 {
		return 255
	}
	return uint8(c)
}

func (c CodeError) String() string {
	return strconv.Itoa(c.Int())
}

// Message returns the registered text for c, or UnknownMessage.
func (c CodeError) Message() string {
	if c == UnknownError {
		return UnknownMessage
	}

	if f, ok := idMsgFct[c]; ok {
		if m := f(c); m != NullMessage {
			return m
		}
	}

	return UnknownMessage
}

// Error builds a new Error carrying this code, its registered message and
// the given parent errors.
func (c CodeError) Error(p ...error) Error {
	return New(c.Uint16(), c.Message(), p...)
}

// RegisterMessage associates a fixed message string with a code. Registering
// the same code twice overwrites the previous message.
func RegisterMessage(code CodeError, msg string) {
	idMsgFct[code] = func(CodeError) string { return msg }
}

func registeredCodes() []CodeError {
	keys := make([]int, 0, len(idMsgFct))
	for k := range idMsgFct {
		keys = append(keys, k.Int())
	}
	sort.Ints(keys)

	res := make([]CodeError, 0, len(keys))
	for _, k := range keys {
		res = append(res, CodeError(k))
	}
	return res
}
