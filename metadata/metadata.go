/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package metadata implements the read-only key/value context passed through
// every public operation, with typed keys for the knobs bindx itself reads.
package metadata

import (
	"dirpx.dev/bindx/apis"
)

// Key is a typed metadata key. Keys compare by identity, so declare them once as package variables.
type Key[T any] struct {
	name string
	def  T
}

// NewKey returns a key with a diagnostic name and a default value.
func NewKey[T any](name string, def T) *Key[T] {
	return &Key[T]{name: name, def: def}
}

// Name returns the diagnostic name.
func (k *Key[T]) Name() string { return k.name }

// String implements fmt.Stringer.
func (k *Key[T]) String() string { return k.name }

// Get reads the key from md, falling back to the default.
func (k *Key[T]) Get(md apis.Metadata) T {
	v, _ := k.TryGet(md)
	return v
}

// TryGet reads the key from md and reports whether it was present with the right type.
func (k *Key[T]) TryGet(md apis.Metadata) (T, bool) {
	if md == nil {
		return k.def, false
	}
	raw, ok := md.Get(k)
	if !ok {
		return k.def, false
	}
	v, ok := raw.(T)
	if !ok {
		return k.def, false
	}
	return v, true
}

// Value pairs k with v for New.
func (k *Key[T]) Value(v T) Entry {
	return Entry{Key: k, Value: v}
}

// Entry is a single key/value pair.
type Entry struct {
	Key   any
	Value any
}

// Context is an immutable map-backed apis.Metadata.
type Context struct {
	m map[any]any
}

// Ensure Context implements apis.Metadata.
var _ apis.Metadata = (*Context)(nil)

// Empty is the shared empty context.
var Empty apis.Metadata = &Context{}

// New builds a context from entries; later entries win.
func New(entries ...Entry) *Context {
	m := make(map[any]any, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	return &Context{m: m}
}

// With returns a copy of md extended with entries. md may be nil.
func With(md apis.Metadata, entries ...Entry) *Context {
	out := &Context{m: make(map[any]any, len(entries))}
	if c, ok := md.(*Context); ok && c != nil {
		for k, v := range c.m {
			out.m[k] = v
		}
	} else if md != nil && md.Len() > 0 {
		if r, ok := md.(interface{ Range(func(k, v any) bool) }); ok {
			r.Range(func(k, v any) bool {
				out.m[k] = v
				return true
			})
		}
	}
	for _, e := range entries {
		out.m[e.Key] = e.Value
	}
	return out
}

// Get implements apis.Metadata.
func (c *Context) Get(key any) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.m[key]
	return v, ok
}

// Len implements apis.Metadata.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.m)
}

// Range calls fn for every entry until fn returns false.
func (c *Context) Range(fn func(k, v any) bool) {
	if c == nil {
		return
	}
	for k, v := range c.m {
		if !fn(k, v) {
			return
		}
	}
}
