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

// Package components implements the prioritized component collection that
// managers consult in order. Reads take a lock-free snapshot, so iterating
// components never blocks registration.
package components

import (
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/token"
)

// Default priorities. Higher runs first.
const (
	AttachedPriority  = 100
	ExtensionPriority = 50
	DefaultPriority   = 0
	SelectorPriority  = -100
)

type entry[T any] struct {
	c        T
	priority int
	seq      uint64
}

// Collection is an ordered set of components of type T.
// Components with a higher priority come first; equal priorities keep insertion order.
type Collection[T any] struct {
	mu        sync.Mutex
	seq       uint64
	items     atomic.Pointer[[]entry[T]]
	onChanged func()
}

// New returns an empty collection. onChanged, when non-nil, runs after every
// Add and Remove, outside the collection lock.
func New[T any](onChanged func()) *Collection[T] {
	return &Collection[T]{onChanged: onChanged}
}

// Add inserts c with priority and returns a token removing it.
func (c *Collection[T]) Add(component T, priority int) apis.Token {
	if isNil(component) {
		return token.NoDo
	}
	c.mu.Lock()
	c.seq++
	e := entry[T]{c: component, priority: priority, seq: c.seq}
	var cur []entry[T]
	if p := c.items.Load(); p != nil {
		cur = *p
	}
	next := make([]entry[T], 0, len(cur)+1)
	next = append(next, cur...)
	next = append(next, e)
	slices.SortStableFunc(next, func(a, b entry[T]) int { return b.priority - a.priority })
	c.items.Store(&next)
	c.mu.Unlock()

	c.changed()
	seq := e.seq
	return token.New(func() { c.removeSeq(seq) })
}

// Remove deletes the first registration of component and reports whether it was found.
func (c *Collection[T]) Remove(component T) bool {
	c.mu.Lock()
	removed := false
	if p := c.items.Load(); p != nil {
		for i, e := range *p {
			if same(e.c, component) {
				c.storeWithout(*p, i)
				removed = true
				break
			}
		}
	}
	c.mu.Unlock()
	if removed {
		c.changed()
	}
	return removed
}

func (c *Collection[T]) removeSeq(seq uint64) {
	c.mu.Lock()
	removed := false
	if p := c.items.Load(); p != nil {
		for i, e := range *p {
			if e.seq == seq {
				c.storeWithout(*p, i)
				removed = true
				break
			}
		}
	}
	c.mu.Unlock()
	if removed {
		c.changed()
	}
}

func (c *Collection[T]) storeWithout(cur []entry[T], i int) {
	next := make([]entry[T], 0, len(cur)-1)
	next = append(next, cur[:i]...)
	next = append(next, cur[i+1:]...)
	c.items.Store(&next)
}

func (c *Collection[T]) changed() {
	if c.onChanged != nil {
		c.onChanged()
	}
}

// Items returns the components in priority order. The slice is a fresh copy.
func (c *Collection[T]) Items() []T {
	p := c.items.Load()
	if p == nil {
		return nil
	}
	out := make([]T, len(*p))
	for i, e := range *p {
		out[i] = e.c
	}
	return out
}

// Each calls fn for every component in priority order until fn returns false.
func (c *Collection[T]) Each(fn func(T) bool) {
	p := c.items.Load()
	if p == nil {
		return
	}
	for _, e := range *p {
		if !fn(e.c) {
			return
		}
	}
}

// Len returns the number of components.
func (c *Collection[T]) Len() int {
	if p := c.items.Load(); p != nil {
		return len(*p)
	}
	return 0
}

// OfType returns the components of c implementing U, in priority order.
func OfType[U any, T any](c *Collection[T]) []U {
	var out []U
	c.Each(func(v T) bool {
		if u, ok := any(v).(U); ok {
			out = append(out, u)
		}
		return true
	})
	return out
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func same(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == nil || ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
