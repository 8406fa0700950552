/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

// Package ctxmap provides a generic, type-safe concurrent map on top of
// sync.Map. It backs the server's connection registry (conn id ->
// Connection) and the pools registry (endpoint -> Pool), the two places
// this module needs a process-scoped map shared across goroutines.
package ctxmap

import "sync"

// Map is a typed wrapper over sync.Map: every accessor returns values of V
// directly instead of forcing callers to do the type assertion themselves.
type Map[K comparable, V any] struct {
	m sync.Map
}

// New returns an empty Map ready to use.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{}
}

func (o *Map[K, V]) Load(key K) (value V, ok bool) {
	v, found := o.m.Load(key)
	if !found {
		return value, false
	}
	value, ok = v.(V)
	return value, ok
}

func (o *Map[K, V]) Store(key K, value V) {
	o.m.Store(key, value)
}

func (o *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	v, l := o.m.LoadOrStore(key, value)
	actual, _ = v.(V)
	return actual, l
}

func (o *Map[K, V]) LoadAndDelete(key K) (value V, loaded bool) {
	v, l := o.m.LoadAndDelete(key)
	if !l {
		return value, false
	}
	value, _ = v.(V)
	return value, true
}

func (o *Map[K, V]) Delete(key K) {
	o.m.Delete(key)
}

func (o *Map[K, V]) CompareAndSwap(key K, old, new V) bool {
	return o.m.CompareAndSwap(key, old, new)
}

func (o *Map[K, V]) CompareAndDelete(key K, old V) bool {
	return o.m.CompareAndDelete(key, old)
}

// Range calls f for each stored entry, stopping early if f returns false.
// It follows sync.Map.Range's no-fixed-snapshot semantics.
func (o *Map[K, V]) Range(f func(key K, value V) bool) {
	o.m.Range(func(k, v any) bool {
		key, ok := k.(K)
		if !ok {
			return true
		}
		value, ok := v.(V)
		if !ok {
			return true
		}
		return f(key, value)
	})
}

// Len walks the map counting entries. O(n); intended for diagnostics, not
// hot paths.
func (o *Map[K, V]) Len() int {
	n := 0
	o.Range(func(K, V) bool {
		n++
		return true
	})
	return n
}
