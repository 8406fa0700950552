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

import (
	"fmt"
	"strings"
)

type ers struct {
	c uint16
	e string
	p []Error
}

func (e *ers) Error() string {
	return e.e
}

func (e *ers) Is(err error) bool {
	if err == nil {
		return false
	}

	if er, ok := err.(*ers); ok {
		return e.is(er)
	}
	return e.IsError(err)
}

func (e *ers) is(o *ers) bool {
	if e == nil || o == nil {
		return false
	}
	if e.c != 0 || o.c != 0 {
		return e.c == o.c
	}
	return strings.EqualFold(e.e, o.e)
}

func (e *ers) IsCode(code CodeError) bool {
	return e.c == code.Uint16()
}

func (e *ers) IsError(err error) bool {
	return strings.EqualFold(e.e, err.Error())
}

func (e *ers) HasCode(code CodeError) bool {
	if e.IsCode(code) {
		return true
	}
	for _, p := range e.p {
		if p.HasCode(code) {
			return true
		}
	}
	return false
}

func (e *ers) HasError(err error) bool {
	if e.IsError(err) {
		return true
	}
	for _, p := range e.p {
		if p.IsError(err) || p.HasError(err) {
			return true
		}
	}
	return false
}

func (e *ers) GetCode() CodeError {
	return CodeError(e.c)
}

func (e *ers) GetParentCode() []CodeError {
	res := []CodeError{e.GetCode()}
	for _, p := range e.p {
		res = append(res, p.GetParentCode()...)
	}
	return uniqueCodes(res)
}

func (e *ers) HasParent() bool {
	return len(e.p) > 0
}

func (e *ers) GetParent() []Error {
	return e.p
}

func (e *ers) Add(parents ...error) {
	for _, v := range parents {
		if v == nil {
			continue
		}

		if er, ok := v.(*ers); ok {
			if e.is(er) {
				e.p = append(e.p, er.p...)
			} else {
				e.p = append(e.p, er)
			}
		} else if err, ok := v.(Error); ok {
			e.p = append(e.p, err)
		} else {
			e.p = append(e.p, &ers{e: v.Error()})
		}
	}
}

func (e *ers) SetParent(parents ...error) {
	e.p = nil
	e.Add(parents...)
}

func (e *ers) Unwrap() error {
	if len(e.p) == 0 {
		return nil
	}
	return e.p[0]
}

func (e *ers) StringError() string {
	parts := []string{e.e}
	for _, p := range e.p {
		if s := p.StringError(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(nonEmpty(parts), ": ")
}

func nonEmpty(in []string) []string {
	res := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			res = append(res, s)
		}
	}
	return res
}

func uniqueCodes(in []CodeError) []CodeError {
	seen := make(map[CodeError]bool, len(in))
	res := make([]CodeError, 0, len(in))
	for _, c := range in {
		if !seen[c] {
			seen[c] = true
			res = append(res, c)
		}
	}
	return res
}

// New builds an Error with the given numeric code, message and parents.
func New(code uint16, message string, parents ...error) Error {
	e := &ers{c: code, e: message}
	e.Add(parents...)
	return e
}

// Newf builds an Error with a formatted message.
func Newf(code uint16, format string, args ...interface{}) Error {
	if len(args) == 0 {
		return New(code, format)
	}
	return New(code, fmt.Sprintf(format, args...))
}

// Is reports whether err matches target the way Error.Is does, working for
// both Error and plain error values.
func Is(err, target error) bool {
	if err == nil || target == nil {
		return err == target
	}
	if e, ok := err.(Error); ok {
		return e.Is(target)
	}
	return err.Error() == target.Error()
}

// IsCode reports whether err (or one of its parents) carries code.
func IsCode(err error, code CodeError) bool {
	if e, ok := err.(Error); ok {
		return e.HasCode(code)
	}
	return false
}

// Get extracts the Error view of err if it implements it.
func Get(err error) (Error, bool) {
	e, ok := err.(Error)
	return e, ok
}

// Make wraps a plain error into an Error, leaving it unchanged if it
// already is one.
func Make(err error) Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(Error); ok {
		return e
	}
	return New(0, err.Error())
}
