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

// Package logger is a thin structured-logging facade over logrus, shared by
// the server connection loop, the client and the pool reaper so that all of
// them log through the same leveled, field-carrying interface.
package logger

import (
	"github.com/sirupsen/logrus"
)

// Fields is a set of structured key/value pairs attached to a log entry.
type Fields map[string]interface{}

// Logger is the logging facade every package in this module takes as a
// dependency instead of calling logrus or the stdlib log package directly.
type Logger interface {
	SetLevel(lvl logrus.Level)
	GetLevel() logrus.Level

	SetFields(f Fields) Logger
	WithFields(f Fields) Logger

	Debug(message string, args ...interface{})
	Info(message string, args ...interface{})
	Warning(message string, args ...interface{})
	Error(message string, args ...interface{})

	Entry(lvl logrus.Level, message string, args ...interface{}) *logrus.Entry

	Clone() Logger
}

type logger struct {
	out    *logrus.Logger
	fields Fields
}

// New builds a Logger writing JSON-formatted entries to the default logrus
// output (stderr), at Info level.
func New() Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)

	return &logger{out: l, fields: Fields{}}
}

// NewFrom wraps an already-configured logrus.Logger.
func NewFrom(l *logrus.Logger) Logger {
	if l == nil {
		return New()
	}
	return &logger{out: l, fields: Fields{}}
}

func (o *logger) SetLevel(lvl logrus.Level) {
	o.out.SetLevel(lvl)
}

func (o *logger) GetLevel() logrus.Level {
	return o.out.GetLevel()
}

func (o *logger) SetFields(f Fields) Logger {
	o.fields = f
	return o
}

func (o *logger) WithFields(f Fields) Logger {
	merged := make(Fields, len(o.fields)+len(f))
	for k, v := range o.fields {
		merged[k] = v
	}
	for k, v := range f {
		merged[k] = v
	}
	return &logger{out: o.out, fields: merged}
}

func (o *logger) entry() *logrus.Entry {
	return o.out.WithFields(logrus.Fields(o.fields))
}

func (o *logger) Debug(message string, args ...interface{}) {
	o.entry().Debugf(message, args...)
}

func (o *logger) Info(message string, args ...interface{}) {
	o.entry().Infof(message, args...)
}

func (o *logger) Warning(message string, args ...interface{}) {
	o.entry().Warnf(message, args...)
}

func (o *logger) Error(message string, args ...interface{}) {
	o.entry().Errorf(message, args...)
}

func (o *logger) Entry(lvl logrus.Level, message string, args ...interface{}) *logrus.Entry {
	e := o.entry()
	e.Message = message
	e.Level = lvl
	return e
}

func (o *logger) Clone() Logger {
	cp := make(Fields, len(o.fields))
	for k, v := range o.fields {
		cp[k] = v
	}
	return &logger{out: o.out, fields: cp}
}

// Discard returns a Logger that drops every entry, for tests and for
// callers that do not want logging.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return &logger{out: l, fields: Fields{}}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
