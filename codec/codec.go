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

// Package codec declares the serialization boundary the wire protocol
// depends on. Only the byte-level contract (Marshal/Unmarshal) matters to
// the rest of this module; a caller can swap in any codec satisfying this
// interface.
package codec

// Codec converts between Go values and their wire representation.
type Codec interface {
	// Name identifies the codec on the wire (protocol.Header.SerializeType
	// chooses between registered codecs).
	Name() string
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

var registry = map[uint8]Codec{
	0: CBOR{},
}

// ByType returns the codec registered for a protocol serialize_type byte.
func ByType(t uint8) (Codec, bool) {
	c, ok := registry[t]
	return c, ok
}

// Register installs a codec under a serialize_type byte. Intended for
// process init; not safe to call concurrently with ByType.
func Register(t uint8, c Codec) {
	registry[t] = c
}
