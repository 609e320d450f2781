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

// Package listeners implements the compacting listener collection every
// observer in bindx relies on, plus weak and func listener adapters.
//
// # Concurrency model
//
// Add, Remove, Clear and Cleanup serialize on the collection mutex. Raise does
// not lock: it loads the current slot array through an atomic pointer and
// walks its live prefix. Slots are atomic pointers themselves, so a concurrent
// Add or Remove never produces a torn read. Compaction always publishes a new
// array, so a raise in progress keeps iterating the old one.
//
// Delivery is best-effort under concurrent mutation: a listener removed while
// a raise is running may or may not receive that raise, and a listener added
// during a raise may miss it.
package listeners

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/token"
)

// ErrorHandler receives panics recovered from listeners during Raise.
type ErrorHandler func(sender any, err error)

// Collection is a thread-safe, compacting set of listener handles.
// The zero value is an empty collection ready to use.
type Collection struct {
	// mu serializes every mutation of items, size and removedSize.
	mu sync.Mutex
	// items is the backing array; slots at or beyond size are not live.
	items atomic.Pointer[[]slot]
	// size is the length of the used prefix of items.
	size atomic.Int32
	// removedSize counts tombstones (nil slots) inside the used prefix.
	removedSize int
	// onError receives recovered listener panics; nil discards them.
	onError atomic.Pointer[ErrorHandler]
}

// Ensure Collection implements apis.EventSource.
var _ apis.EventSource = (*Collection)(nil)

type slot = atomic.Pointer[handle]

// handle wraps one registered listener.
type handle struct {
	l    apis.EventListener
	weak apis.WeakEventListener
	dead atomic.Bool
}

func newHandle(l apis.EventListener) *handle {
	h := &handle{l: l}
	if w, ok := l.(apis.WeakEventListener); ok {
		h.weak = w
	}
	return h
}

func (h *handle) alive() bool {
	if h.dead.Load() {
		return false
	}
	return h.weak == nil || h.weak.Target() != nil
}

// SetErrorHandler installs fn as the receiver of recovered listener panics.
func (c *Collection) SetErrorHandler(fn ErrorHandler) {
	if fn == nil {
		c.onError.Store(nil)
		return
	}
	c.onError.Store(&fn)
}

// Add appends l, reusing a tombstone slot when one exists.
func (c *Collection) Add(l apis.EventListener) {
	if l == nil {
		return
	}
	c.add(newHandle(l))
}

// AddWithToken appends l and returns a token removing exactly this registration.
func (c *Collection) AddWithToken(l apis.EventListener) apis.Token {
	if l == nil {
		return token.NoDo
	}
	h := newHandle(l)
	c.add(h)
	return token.New(func() { c.removeHandle(h) })
}

// Subscribe implements apis.EventSource.
func (c *Collection) Subscribe(l apis.EventListener) apis.Token {
	return c.AddWithToken(l)
}

func (c *Collection) add(h *handle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	arr := c.items.Load()
	size := int(c.size.Load())
	if c.removedSize > 0 {
		for i := 0; i < size; i++ {
			if (*arr)[i].Load() == nil {
				(*arr)[i].Store(h)
				c.removedSize--
				return
			}
		}
	}
	if arr == nil || size == len(*arr) {
		arr = c.growLocked(arr, size)
	}
	(*arr)[size].Store(h)
	c.size.Store(int32(size + 1))
}

// growLocked publishes a larger copy of arr: +1 up to 4 elements, x1.25 afterwards.
func (c *Collection) growLocked(arr *[]slot, size int) *[]slot {
	newCap := size + 1
	if size > 4 {
		newCap = size + size/4
		if newCap <= size {
			newCap = size + 1
		}
	}
	grown := make([]slot, newCap)
	for i := 0; i < size; i++ {
		grown[i].Store((*arr)[i].Load())
	}
	c.items.Store(&grown)
	return &grown
}

// Remove removes the first registration of l and reports whether one was found.
// Listeners are matched by identity. A weak listener also matches a registered
// weak listener whose live target is the same, so a fresh wrapper around the
// same target can remove it.
func (c *Collection) Remove(l apis.EventListener) bool {
	if l == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	arr := c.items.Load()
	size := int(c.size.Load())
	for i := 0; i < size; i++ {
		h := (*arr)[i].Load()
		if h != nil && (sameListener(h.l, l) || sameWeakTarget(h.weak, l)) {
			c.tombstoneLocked(arr, i, size)
			return true
		}
	}
	return false
}

func (c *Collection) removeHandle(target *handle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	arr := c.items.Load()
	size := int(c.size.Load())
	for i := 0; i < size; i++ {
		if (*arr)[i].Load() == target {
			c.tombstoneLocked(arr, i, size)
			return
		}
	}
}

func (c *Collection) tombstoneLocked(arr *[]slot, i, size int) {
	if i == size-1 {
		(*arr)[i].Store(nil)
		c.size.Store(int32(size - 1))
	} else {
		(*arr)[i].Store(nil)
		c.removedSize++
	}
	// Compact once less than half of the used prefix is live.
	if live := int(c.size.Load()) - c.removedSize; c.removedSize > 0 && live*2 < int(c.size.Load()) {
		c.cleanupLocked()
	}
}

// Raise delivers (sender, message) to every live listener without holding the lock.
// Dead listeners are skipped and compacted away afterwards. A recovered listener
// panic is reported to the error handler and does not stop delivery.
func (c *Collection) Raise(sender any, message any, md apis.Metadata) {
	arr := c.items.Load()
	if arr == nil {
		return
	}
	size := min(int(c.size.Load()), len(*arr))
	hasDeadRef := false
	for i := 0; i < size; i++ {
		h := (*arr)[i].Load()
		if h == nil {
			continue
		}
		if !h.alive() {
			hasDeadRef = true
			continue
		}
		if !c.invoke(h, sender, message, md) {
			h.dead.Store(true)
			hasDeadRef = true
		}
	}
	if hasDeadRef {
		c.Cleanup()
	}
}

func (c *Collection) invoke(h *handle, sender any, message any, md apis.Metadata) (handled bool) {
	defer func() {
		if r := recover(); r != nil {
			handled = true
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("listeners: listener panic: %v", r)
			}
			c.reportError(sender, err)
		}
	}()
	return h.l.TryHandle(sender, message, md)
}

func (c *Collection) reportError(sender any, err error) {
	if fn := c.onError.Load(); fn != nil {
		(*fn)(sender, err)
		return
	}
	logger().Warn().Err(err).Msg("listener panicked; no error handler installed")
}

// Cleanup drops dead listeners and tombstones, compacting live ones to the front.
// The backing array shrinks when its capacity exceeds twice the live count.
func (c *Collection) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupLocked()
}

func (c *Collection) cleanupLocked() {
	arr := c.items.Load()
	if arr == nil {
		return
	}
	size := int(c.size.Load())
	live := make([]*handle, 0, size)
	for i := 0; i < size; i++ {
		if h := (*arr)[i].Load(); h != nil && h.alive() {
			live = append(live, h)
		}
	}
	newCap := len(*arr)
	if newCap > 2*len(live) {
		newCap = len(live)
	}
	compacted := make([]slot, newCap)
	for i, h := range live {
		compacted[i].Store(h)
	}
	c.items.Store(&compacted)
	c.size.Store(int32(len(live)))
	c.removedSize = 0
}

// Clear removes every listener.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Store(nil)
	c.size.Store(0)
	c.removedSize = 0
}

// Count returns the number of live listeners.
func (c *Collection) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	arr := c.items.Load()
	if arr == nil {
		return 0
	}
	n := 0
	size := int(c.size.Load())
	for i := 0; i < size; i++ {
		if h := (*arr)[i].Load(); h != nil && h.alive() {
			n++
		}
	}
	return n
}

// HasListeners reports whether at least one live listener is registered.
func (c *Collection) HasListeners() bool {
	return c.Count() > 0
}

// sameListener compares listeners by identity without panicking on
// non-comparable dynamic types.
func sameListener(a, b apis.EventListener) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// sameWeakTarget reports whether l is a weak listener pointing at the same live
// target as registered.
func sameWeakTarget(registered apis.WeakEventListener, l apis.EventListener) bool {
	w, ok := l.(apis.WeakEventListener)
	if registered == nil || !ok {
		return false
	}
	a, b := registered.Target(), w.Target()
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
