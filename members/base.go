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

// Package members implements the member info variants: reflected fields,
// getter/setter properties, methods, method-backed accessors, events, array
// elements, map indexers, constants, delegate-backed attached members and
// expression-computed members.
//
// Every variant is immutable after construction and safe for concurrent use.
// Change observation is delegated to the observation manager given at
// construction; the member observer is selected on first TryObserve.
package members

import (
	"errors"
	"reflect"
	"sync"

	"dirpx.dev/bindx/apis"
)

var (
	// ErrNilTarget is returned when an instance member is used without a target.
	ErrNilTarget = errors.New("bindx(members): nil target")
	// ErrTargetType is returned when the target does not have the declaring type.
	ErrTargetType = errors.New("bindx(members): target type mismatch")
	// ErrArgCount is returned when a method is invoked with the wrong number of arguments.
	ErrArgCount = errors.New("bindx(members): argument count mismatch")
	// ErrIndexOutOfRange is returned by array element members for indexes past the length.
	ErrIndexOutOfRange = errors.New("bindx(members): index out of range")
	// ErrNilEventSource is returned when an event member holds no event source.
	ErrNilEventSource = errors.New("bindx(members): nil event source")
	// ErrInvalidSignature is returned when a func cannot back the requested member.
	ErrInvalidSignature = errors.New("bindx(members): invalid signature")
)

var (
	errorType       = reflect.TypeFor[error]()
	eventSourceType = reflect.TypeFor[apis.EventSource]()
	anyType         = reflect.TypeFor[any]()
)

// base carries the descriptor data shared by every variant.
type base struct {
	name       string
	declaring  reflect.Type
	typ        reflect.Type
	underlying any
	memberType apis.MemberType
	flags      apis.MemberFlags

	om       apis.ObservationManager
	once     sync.Once
	observer apis.MemberObserver
}

func (b *base) Name() string                      { return b.name }
func (b *base) DeclaringType() reflect.Type       { return b.declaring }
func (b *base) Type() reflect.Type                { return b.typ }
func (b *base) Underlying() any                   { return b.underlying }
func (b *base) MemberType() apis.MemberType       { return b.memberType }
func (b *base) AccessModifiers() apis.MemberFlags { return b.flags }

// TryObserve subscribes listener through the member observer selected for this member.
func (b *base) TryObserve(target any, listener apis.EventListener, md apis.Metadata) apis.Token {
	if listener == nil {
		return apis.EmptyToken
	}
	return b.memberObserver(md).TryObserve(target, listener, md)
}

func (b *base) memberObserver(md apis.Metadata) apis.MemberObserver {
	b.once.Do(func() {
		if b.om != nil {
			b.observer = b.om.GetMemberObserver(b.declaring, b.name, md)
		}
	})
	return b.observer
}

func fieldFlags(exported bool) apis.MemberFlags {
	if exported {
		return apis.InstancePublic
	}
	return apis.Instance | apis.NonPublic
}

// receiver returns the value methods of declaring are called on.
func receiver(target any) (reflect.Value, error) {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() {
		return reflect.Value{}, ErrNilTarget
	}
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return reflect.Value{}, ErrNilTarget
	}
	return rv, nil
}

// boundMethod returns method name of target, using the precomputed index when
// target has exactly the declaring type.
func boundMethod(target any, declaring reflect.Type, index int, name string) (reflect.Value, error) {
	rv, err := receiver(target)
	if err != nil {
		return reflect.Value{}, err
	}
	if rv.Type() == declaring && declaring.Kind() != reflect.Interface {
		return rv.Method(index), nil
	}
	mv := rv.MethodByName(name)
	if !mv.IsValid() {
		return reflect.Value{}, ErrTargetType
	}
	return mv, nil
}

// unpack converts call results: (), (v), (err), (v, err).
func unpack(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}
	last := out[len(out)-1]
	if last.Type() == errorType {
		var err error
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		if len(out) == 1 {
			return nil, err
		}
		return out[0].Interface(), err
	}
	return out[0].Interface(), nil
}

// resultType returns the value result of ft, skipping a trailing error.
func resultType(ft reflect.Type) reflect.Type {
	switch {
	case ft.NumOut() == 0:
		return nil
	case ft.Out(0) == errorType && ft.NumOut() == 1:
		return nil
	default:
		return ft.Out(0)
	}
}

// validResults reports whether ft returns (), (v), (err) or (v, err).
func validResults(ft reflect.Type) bool {
	switch ft.NumOut() {
	case 0, 1:
		return true
	case 2:
		return ft.Out(1) == errorType
	default:
		return false
	}
}
