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

package strategy

import (
	"errors"
	"reflect"
	"sync"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/components"
	"dirpx.dev/bindx/members"
)

// ErrEmptyExtensionName is returned when an extension is added without a name.
var ErrEmptyExtensionName = errors.New("bindx(strategy): empty extension name")

// Extensions is an apis.MemberProvider serving extension methods: funcs
// invoked with the target as their first argument. An extension applies to
// every type assignable to its first parameter.
type Extensions struct {
	mu       sync.RWMutex
	byName   map[string][]*members.Method
	handlers *components.Collection[func(reflect.Type)]
}

// Ensure Extensions implements apis.MemberProvider.
var _ apis.MemberProvider = (*Extensions)(nil)

// NewExtensions returns an empty extension provider.
func NewExtensions() *Extensions {
	return &Extensions{
		byName:   make(map[string][]*members.Method),
		handlers: components.New[func(reflect.Type)](nil),
	}
}

// Add registers fn as extension method name. fn must take the target as first parameter.
func (e *Extensions) Add(name string, fn any) (apis.MethodMemberInfo, error) {
	if name == "" {
		return nil, ErrEmptyExtensionName
	}
	m, err := members.NewExtensionMethod(nil, name, fn, nil)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.byName[name] = append(e.byName[name], m)
	e.mu.Unlock()
	e.notify(nil)
	return m, nil
}

// Remove unregisters every extension named name.
func (e *Extensions) Remove(name string) bool {
	e.mu.Lock()
	_, ok := e.byName[name]
	delete(e.byName, name)
	e.mu.Unlock()
	if ok {
		e.notify(nil)
	}
	return ok
}

// OnChanged registers fn to be called after every change. The type argument is always nil.
func (e *Extensions) OnChanged(fn func(reflect.Type)) apis.Token {
	return e.handlers.Add(fn, components.DefaultPriority)
}

func (e *Extensions) notify(t reflect.Type) {
	e.handlers.Each(func(fn func(reflect.Type)) bool {
		fn(t)
		return true
	})
}

// TryGetMembers returns the extensions named name whose target parameter accepts t.
func (e *Extensions) TryGetMembers(_ apis.ResolveContext, t reflect.Type, name string, memberTypes apis.MemberType, _ apis.Metadata) []apis.MemberInfo {
	if t == nil || !memberTypes.Has(apis.Method) {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []apis.MemberInfo
	for _, m := range e.byName[name] {
		if t.AssignableTo(m.DeclaringType()) {
			out = append(out, m)
		}
	}
	return out
}
