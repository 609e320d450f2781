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

package resolver

import (
	"container/list"
	"reflect"
	"sync"

	"dirpx.dev/bindx/apis"
	cachestrategy "dirpx.dev/bindx/cache/strategy"
	uref "dirpx.dev/bindx/utils/reflect"
)

// DefaultCapacity bounds the LRU cache when the config leaves CacheCapacity unset.
const DefaultCapacity = 1024

// Key identifies one member lookup.
type Key struct {
	Type        reflect.Type
	Name        string
	MemberTypes apis.MemberType
	Flags       apis.MemberFlags
}

// Cache stores lookup results, including empty ones.
//
// Implementations returned by NewCache are not safe for concurrent use; the
// Manager wraps them with a mutex when configured as synchronized.
type Cache interface {
	Get(k Key) ([]apis.MemberInfo, bool)
	Put(k Key, members []apis.MemberInfo)
	// Invalidate drops entries whose type (or its pointer-normalized form)
	// equals t. A nil t drops everything.
	Invalidate(t reflect.Type) int
	Len() int
}

// NewCache returns the cache implementation for the given strategy.
func NewCache(s cachestrategy.Strategy, capacity int) Cache {
	switch s {
	case cachestrategy.LRU:
		if capacity <= 0 {
			capacity = DefaultCapacity
		}
		return &lruCache{cap: capacity, items: make(map[Key]*list.Element), order: list.New()}
	case cachestrategy.None:
		return noCache{}
	default:
		return &mapCache{m: make(map[Key][]apis.MemberInfo)}
	}
}

func matchesType(kt, t reflect.Type) bool {
	if kt == t {
		return true
	}
	nt, err := uref.Normalize(kt)
	return err == nil && nt == t
}

type mapCache struct {
	m map[Key][]apis.MemberInfo
}

func (c *mapCache) Get(k Key) ([]apis.MemberInfo, bool) {
	v, ok := c.m[k]
	return v, ok
}

func (c *mapCache) Put(k Key, members []apis.MemberInfo) { c.m[k] = members }

func (c *mapCache) Invalidate(t reflect.Type) int {
	if t == nil {
		n := len(c.m)
		clear(c.m)
		return n
	}
	n := 0
	for k := range c.m {
		if matchesType(k.Type, t) {
			delete(c.m, k)
			n++
		}
	}
	return n
}

func (c *mapCache) Len() int { return len(c.m) }

type lruEntry struct {
	key     Key
	members []apis.MemberInfo
}

type lruCache struct {
	cap   int
	items map[Key]*list.Element
	order *list.List // front = most recently used
}

func (c *lruCache) Get(k Key) ([]apis.MemberInfo, bool) {
	el, ok := c.items[k]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).members, true
}

func (c *lruCache) Put(k Key, members []apis.MemberInfo) {
	if el, ok := c.items[k]; ok {
		el.Value.(*lruEntry).members = members
		c.order.MoveToFront(el)
		return
	}
	c.items[k] = c.order.PushFront(&lruEntry{key: k, members: members})
	for c.order.Len() > c.cap {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.items, last.Value.(*lruEntry).key)
	}
}

func (c *lruCache) Invalidate(t reflect.Type) int {
	if t == nil {
		n := len(c.items)
		clear(c.items)
		c.order.Init()
		return n
	}
	n := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if e := el.Value.(*lruEntry); matchesType(e.key.Type, t) {
			c.order.Remove(el)
			delete(c.items, e.key)
			n++
		}
		el = next
	}
	return n
}

func (c *lruCache) Len() int { return len(c.items) }

type noCache struct{}

func (noCache) Get(Key) ([]apis.MemberInfo, bool) { return nil, false }
func (noCache) Put(Key, []apis.MemberInfo)        {}
func (noCache) Invalidate(reflect.Type) int       { return 0 }
func (noCache) Len() int                          { return 0 }

// Locked wraps c with a mutex.
func Locked(c Cache) Cache {
	if l, ok := c.(*lockedCache); ok {
		return l
	}
	return &lockedCache{c: c}
}

type lockedCache struct {
	mu sync.Mutex
	c  Cache
}

func (l *lockedCache) Get(k Key) ([]apis.MemberInfo, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Get(k)
}

func (l *lockedCache) Put(k Key, members []apis.MemberInfo) {
	l.mu.Lock()
	l.c.Put(k, members)
	l.mu.Unlock()
}

func (l *lockedCache) Invalidate(t reflect.Type) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Invalidate(t)
}

func (l *lockedCache) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Len()
}
