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

package members

import (
	"fmt"
	"reflect"

	"dirpx.dev/bindx/apis"
	uref "dirpx.dev/bindx/utils/reflect"
)

// Event is a member exposing an apis.EventSource: a struct field holding one
// (by value or pointer) or a nullary method returning one.
type Event struct {
	base
	structType reflect.Type
	index      []int
	method     *reflect.Method
	addr       bool
}

// Ensure Event implements apis.EventMemberInfo.
var _ apis.EventMemberInfo = (*Event)(nil)

// IsEventSourceType reports whether values of t, or their address, implement apis.EventSource.
func IsEventSourceType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return t.Implements(eventSourceType) || (t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(eventSourceType))
}

// NewEventField returns the event member over field f of declaring.
// It returns nil when the field cannot hold an event source.
func NewEventField(declaring reflect.Type, f reflect.StructField, om apis.ObservationManager) *Event {
	if !f.IsExported() || !IsEventSourceType(f.Type) {
		return nil
	}
	st, _ := uref.Normalize(declaring)
	return &Event{
		base: base{
			name:       f.Name,
			declaring:  declaring,
			typ:        f.Type,
			underlying: f,
			memberType: apis.Event,
			flags:      apis.InstancePublic,
			om:         om,
		},
		structType: st,
		index:      f.Index,
		addr:       !f.Type.Implements(eventSourceType),
	}
}

// NewEventMethod returns the event member over a nullary method of declaring
// returning an event source. It returns nil for any other signature.
func NewEventMethod(declaring reflect.Type, m reflect.Method, om apis.ObservationManager) *Event {
	skip := 1
	if declaring.Kind() == reflect.Interface {
		skip = 0
	}
	if m.Type.NumIn() != skip || m.Type.NumOut() != 1 || !m.Type.Out(0).Implements(eventSourceType) {
		return nil
	}
	return &Event{
		base: base{
			name:       m.Name,
			declaring:  declaring,
			typ:        m.Type.Out(0),
			underlying: m,
			memberType: apis.Event,
			flags:      apis.InstancePublic,
			om:         om,
		},
		method: &m,
	}
}

// Source returns the event source of target.
func (e *Event) Source(target any) (apis.EventSource, error) {
	var src any
	if e.method != nil {
		fn, err := boundMethod(target, e.declaring, e.method.Index, e.method.Name)
		if err != nil {
			return nil, err
		}
		src = fn.Call(nil)[0].Interface()
	} else {
		v, ok := uref.Indirect(reflect.ValueOf(target))
		if !ok {
			return nil, ErrNilTarget
		}
		if v.Type() != e.structType {
			return nil, fmt.Errorf("%w: %v is not %v", ErrTargetType, v.Type(), e.structType)
		}
		fv, err := v.FieldByIndexErr(e.index)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNilTarget, err)
		}
		if e.addr {
			if !fv.CanAddr() {
				return nil, fmt.Errorf("%w: event %s needs an addressable target", ErrTargetType, e.name)
			}
			fv = fv.Addr()
		}
		src = fv.Interface()
	}
	if uref.IsNil(src) {
		return nil, ErrNilEventSource
	}
	return src.(apis.EventSource), nil
}

// TrySubscribe adds listener to the event source of target.
func (e *Event) TrySubscribe(target any, listener apis.EventListener, _ apis.Metadata) (apis.Token, error) {
	if listener == nil {
		return apis.EmptyToken, nil
	}
	src, err := e.Source(target)
	if err != nil {
		return nil, err
	}
	if t := src.Subscribe(listener); t != nil {
		return t, nil
	}
	return apis.EmptyToken, nil
}
