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

// Package extdata implements the extra-data side table: per-object key/value
// storage used by attached members to keep state for objects that do not
// declare it themselves.
//
// Owners are identified by their dynamic type and pointer identity, so only
// pointers to sized values, maps and channels can carry extra data. Pointers
// to zero-size values may share an address and funcs share their code pointer,
// so neither has a stable identity.
// The store keeps an owner reachable until Clear is called for it. Types that
// manage their own lifetime can implement Holder instead and keep the bag inline.
package extdata

import (
	"errors"
	"reflect"
	"sync"
)

// ErrUnsupportedOwner is returned for owners without a stable identity.
var ErrUnsupportedOwner = errors.New("bindx(extdata): owner has no stable identity")

// Holder is implemented by owners carrying their own bag.
type Holder interface {
	ExtData() *Bag
}

// Default is the process-wide store used when a component is not given one.
var Default = New()

type identity struct {
	t reflect.Type
	p uintptr
}

type entry struct {
	owner any
	bag   *Bag
}

// Store maps owner identities to bags. It is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	bags map[identity]*entry
}

// New returns an empty store.
func New() *Store {
	return &Store{bags: make(map[identity]*entry)}
}

func identify(owner any) (identity, error) {
	if owner == nil {
		return identity{}, ErrUnsupportedOwner
	}
	v := reflect.ValueOf(owner)
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || v.Type().Elem().Size() == 0 {
			return identity{}, ErrUnsupportedOwner
		}
		return identity{t: v.Type(), p: v.Pointer()}, nil
	case reflect.Map, reflect.Chan, reflect.UnsafePointer:
		if v.IsNil() {
			return identity{}, ErrUnsupportedOwner
		}
		return identity{t: v.Type(), p: v.Pointer()}, nil
	default:
		return identity{}, ErrUnsupportedOwner
	}
}

// Bag returns the bag of owner. When create is false and the owner has none yet, it returns (nil, nil).
func (s *Store) Bag(owner any, create bool) (*Bag, error) {
	if h, ok := owner.(Holder); ok {
		if b := h.ExtData(); b != nil {
			return b, nil
		}
	}
	id, err := identify(owner)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.bags[id]; ok {
		return e.bag, nil
	}
	if !create {
		return nil, nil
	}
	e := &entry{owner: owner, bag: &Bag{}}
	s.bags[id] = e
	return e.bag, nil
}

// Get returns the value stored for (owner, key).
func (s *Store) Get(owner any, key string) (any, bool) {
	b, err := s.Bag(owner, false)
	if err != nil || b == nil {
		return nil, false
	}
	return b.Get(key)
}

// Set stores value for (owner, key).
func (s *Store) Set(owner any, key string, value any) error {
	b, err := s.Bag(owner, true)
	if err != nil {
		return err
	}
	b.Set(key, value)
	return nil
}

// GetOrAdd returns the value stored for (owner, key), storing fn() first when absent.
// added reports whether fn ran.
func (s *Store) GetOrAdd(owner any, key string, fn func() any) (value any, added bool, err error) {
	b, err := s.Bag(owner, true)
	if err != nil {
		return nil, false, err
	}
	value, added = b.GetOrAdd(key, fn)
	return value, added, nil
}

// Remove deletes (owner, key) and reports whether it existed.
func (s *Store) Remove(owner any, key string) bool {
	b, err := s.Bag(owner, false)
	if err != nil || b == nil {
		return false
	}
	return b.Remove(key)
}

// Clear drops every value of owner and releases it.
func (s *Store) Clear(owner any) bool {
	if h, ok := owner.(Holder); ok {
		if b := h.ExtData(); b != nil {
			return b.Clear() > 0
		}
	}
	id, err := identify(owner)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bags[id]; !ok {
		return false
	}
	delete(s.bags, id)
	return true
}

// Len returns the number of owners with a bag in the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bags)
}

// Bag is a concurrent-safe string-keyed value map. The zero value is ready to use.
type Bag struct {
	mu     sync.Mutex
	values map[string]any
}

// Get returns the value under key.
func (b *Bag) Get(key string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[key]
	return v, ok
}

// Set stores value under key.
func (b *Bag) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.values == nil {
		b.values = make(map[string]any)
	}
	b.values[key] = value
}

// GetOrAdd returns the value under key, storing fn() first when absent.
// fn runs under the bag lock and must not touch the bag.
func (b *Bag) GetOrAdd(key string, fn func() any) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.values[key]; ok {
		return v, false
	}
	if b.values == nil {
		b.values = make(map[string]any)
	}
	v := fn()
	b.values[key] = v
	return v, true
}

// Remove deletes key and reports whether it existed.
func (b *Bag) Remove(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.values[key]; !ok {
		return false
	}
	delete(b.values, key)
	return true
}

// Clear drops every value and returns how many there were.
func (b *Bag) Clear() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.values)
	b.values = nil
	return n
}

// Len returns the number of stored values.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.values)
}
