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

package registry

import (
	"errors"
	"reflect"
	"sync"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/components"
	uref "dirpx.dev/bindx/utils/reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("bindx(registry): nil reflect.Type provided")
	// ErrNilMember is returned when a nil member is provided.
	ErrNilMember = errors.New("bindx(registry): nil member provided")
	// ErrEmptyName is returned when a member has an empty name.
	ErrEmptyName = errors.New("bindx(registry): empty member name")
	// ErrConflictingRegistration indicates an attempt to register a different
	// member under an existing (type, name, member type) key.
	ErrConflictingRegistration = errors.New("bindx(registry): conflicting member registration")
)

// New constructs an empty Registry.
func New(_ apis.Config) apis.Registry {
	return &registry{handlers: components.New[func(reflect.Type)](nil)}
}

// key identifies one registration. Types are normalized so that T and *T share registrations.
type key struct {
	t          reflect.Type
	name       string
	memberType apis.MemberType
}

// registry is a Registry implementation backed by sync.Map.
type registry struct {
	// mu guards write-side consistency, the counter and the interface set.
	mu sync.Mutex
	// m maps key to the registered apis.MemberInfo.
	m sync.Map // map[key]apis.MemberInfo
	// ifaces is the set of interface types with registrations, read lock-free on lookups.
	ifaces sync.Map // map[reflect.Type]int
	// count tracks the number of registered entries.
	count int
	// handlers receive the affected type after each change.
	handlers *components.Collection[func(reflect.Type)]
}

func normalize(t reflect.Type) (reflect.Type, error) {
	if t == nil {
		return nil, ErrNilType
	}
	return uref.Normalize(t)
}

// Register attaches member to t. It is idempotent for the same (type, member) pair.
func (r *registry) Register(t reflect.Type, member apis.MemberInfo) error {
	// Validate inputs early.
	if t == nil {
		return ErrNilType
	}
	if member == nil {
		return ErrNilMember
	}
	if member.Name() == "" {
		return ErrEmptyName
	}
	nt, err := normalize(t)
	if err != nil {
		return err
	}
	k := key{t: nt, name: member.Name(), memberType: member.MemberType()}

	// Fast read path: idempotency / conflict check without locking.
	if old, ok := r.m.Load(k); ok {
		if old.(apis.MemberInfo) == member {
			return nil
		}
		return ErrConflictingRegistration
	}

	r.mu.Lock()
	// Re-check under lock in case another goroutine stored meanwhile.
	if old, ok := r.m.Load(k); ok {
		r.mu.Unlock()
		if old.(apis.MemberInfo) == member {
			return nil
		}
		return ErrConflictingRegistration
	}
	r.m.Store(k, member)
	r.count++
	if nt.Kind() == reflect.Interface {
		n, _ := r.ifaces.Load(nt)
		c, _ := n.(int)
		r.ifaces.Store(nt, c+1)
	}
	r.mu.Unlock()

	r.notify(nt)
	return nil
}

// Unregister removes the members of t named name whose member type is in memberTypes.
func (r *registry) Unregister(t reflect.Type, name string, memberTypes apis.MemberType) bool {
	nt, err := normalize(t)
	if err != nil || name == "" {
		return false
	}
	removed := false
	r.mu.Lock()
	for _, mt := range []apis.MemberType{apis.Accessor, apis.Method, apis.Event} {
		if !memberTypes.Has(mt) {
			continue
		}
		k := key{t: nt, name: name, memberType: mt}
		if _, ok := r.m.LoadAndDelete(k); ok {
			r.count--
			removed = true
			if nt.Kind() == reflect.Interface {
				n, _ := r.ifaces.Load(nt)
				if c, _ := n.(int); c <= 1 {
					r.ifaces.Delete(nt)
				} else {
					r.ifaces.Store(nt, c-1)
				}
			}
		}
	}
	r.mu.Unlock()

	if removed {
		r.notify(nt)
	}
	return removed
}

// Lookup returns the members registered for t, followed by members registered
// for interfaces t implements.
func (r *registry) Lookup(t reflect.Type, name string, memberTypes apis.MemberType) []apis.MemberInfo {
	nt, err := normalize(t)
	if err != nil || name == "" {
		return nil
	}
	var out []apis.MemberInfo
	collect := func(kt reflect.Type) {
		for _, mt := range []apis.MemberType{apis.Accessor, apis.Method, apis.Event} {
			if !memberTypes.Has(mt) {
				continue
			}
			if v, ok := r.m.Load(key{t: kt, name: name, memberType: mt}); ok {
				out = append(out, v.(apis.MemberInfo))
			}
		}
	}
	collect(nt)
	r.ifaces.Range(func(k, _ any) bool {
		it := k.(reflect.Type)
		if it != nt && (t.Implements(it) || nt.Implements(it)) {
			collect(it)
		}
		return true
	})
	return out
}

// Entries returns a snapshot for diagnostics/docs (order is unspecified).
func (r *registry) Entries() []apis.Entry {
	entries := make([]apis.Entry, 0, r.Count())
	r.m.Range(func(k, value any) bool {
		entries = append(entries, apis.Entry{
			Type:   k.(key).t,
			Member: value.(apis.MemberInfo),
		})
		return true
	})
	return entries
}

// Count returns the number of registered entries.
func (r *registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset clears all registered entries and notifies handlers with a nil type.
func (r *registry) Reset() {
	r.mu.Lock()
	r.m.Clear()
	r.ifaces.Clear()
	r.count = 0
	r.mu.Unlock()
	r.notify(nil)
}

// OnChanged registers fn to be called with the affected type after every change.
// Interface types are reported as nil since their registrations affect every implementation.
func (r *registry) OnChanged(fn func(t reflect.Type)) apis.Token {
	return r.handlers.Add(fn, components.DefaultPriority)
}

func (r *registry) notify(t reflect.Type) {
	if t != nil && t.Kind() == reflect.Interface {
		t = nil
	}
	r.handlers.Each(func(fn func(reflect.Type)) bool {
		fn(t)
		return true
	})
}
