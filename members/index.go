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
	"strconv"

	"dirpx.dev/bindx/apis"
	uref "dirpx.dev/bindx/utils/reflect"
)

// ArrayElement is the "[i]" accessor over slices and arrays. The index is fixed at construction.
type ArrayElement struct {
	base
	index int
}

// Ensure ArrayElement implements apis.AccessorMemberInfo.
var _ apis.AccessorMemberInfo = (*ArrayElement)(nil)

// NewArrayElement returns the accessor for element index of declaring, a slice,
// array or pointer to one of those.
func NewArrayElement(declaring reflect.Type, index int, om apis.ObservationManager) (*ArrayElement, error) {
	ct, _ := uref.Normalize(declaring)
	if ct == nil || (ct.Kind() != reflect.Slice && ct.Kind() != reflect.Array) {
		return nil, fmt.Errorf("%w: %v is not a slice or array", ErrTargetType, declaring)
	}
	if index < 0 || (ct.Kind() == reflect.Array && index >= ct.Len()) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return &ArrayElement{
		base: base{
			name:       "[" + strconv.Itoa(index) + "]",
			declaring:  declaring,
			typ:        ct.Elem(),
			memberType: apis.Accessor,
			flags:      apis.InstancePublic,
			om:         om,
		},
		index: index,
	}, nil
}

// Index returns the element index.
func (a *ArrayElement) Index() int { return a.index }

func (a *ArrayElement) CanRead() bool { return true }

// CanWrite reports whether elements can be stored: always for slices, only through a pointer for arrays.
func (a *ArrayElement) CanWrite() bool {
	return a.declaring.Kind() == reflect.Slice || a.declaring.Kind() == reflect.Pointer
}

func (a *ArrayElement) element(target any) (reflect.Value, error) {
	v, ok := uref.Indirect(reflect.ValueOf(target))
	if !ok {
		return reflect.Value{}, ErrNilTarget
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return reflect.Value{}, fmt.Errorf("%w: %v is not a slice or array", ErrTargetType, v.Type())
	}
	if a.index >= v.Len() {
		return reflect.Value{}, fmt.Errorf("%w: %d with length %d", ErrIndexOutOfRange, a.index, v.Len())
	}
	return v.Index(a.index), nil
}

// GetValue returns the element of target.
func (a *ArrayElement) GetValue(target any, _ apis.Metadata) (any, error) {
	ev, err := a.element(target)
	if err != nil {
		return nil, err
	}
	return ev.Interface(), nil
}

// SetValue converts value to the element type and stores it.
func (a *ArrayElement) SetValue(target any, value any, _ apis.Metadata) error {
	if !a.CanWrite() {
		return apis.NewMemberAccessError(a, apis.MustBeWritable)
	}
	ev, err := a.element(target)
	if err != nil {
		return err
	}
	if !ev.CanSet() {
		return apis.NewMemberAccessError(a, apis.MustBeWritable)
	}
	cv, err := uref.Convert(value, a.typ)
	if err != nil {
		return err
	}
	ev.Set(cv)
	return nil
}

// MapIndexer is the "[key]" accessor over maps. The key is parsed and converted at construction.
type MapIndexer struct {
	base
	key reflect.Value
}

// Ensure MapIndexer implements apis.AccessorMemberInfo.
var _ apis.AccessorMemberInfo = (*MapIndexer)(nil)

// NewMapIndexer returns the accessor for key of declaring, a map or pointer to a map.
// key is the literal segment text, for example `name`, `"name"` or `3`.
func NewMapIndexer(declaring reflect.Type, key string, om apis.ObservationManager) (*MapIndexer, error) {
	mt, _ := uref.Normalize(declaring)
	if mt == nil || mt.Kind() != reflect.Map {
		return nil, fmt.Errorf("%w: %v is not a map", ErrTargetType, declaring)
	}
	kv, err := uref.ParseIndex(key, mt.Key())
	if err != nil {
		return nil, err
	}
	return &MapIndexer{
		base: base{
			name:       "[" + key + "]",
			declaring:  declaring,
			typ:        mt.Elem(),
			memberType: apis.Accessor,
			flags:      apis.InstancePublic,
			om:         om,
		},
		key: kv,
	}, nil
}

// Key returns the parsed key.
func (m *MapIndexer) Key() any { return m.key.Interface() }

func (m *MapIndexer) CanRead() bool  { return true }
func (m *MapIndexer) CanWrite() bool { return true }

func (m *MapIndexer) mapValue(target any) (reflect.Value, error) {
	v, ok := uref.Indirect(reflect.ValueOf(target))
	if !ok {
		return reflect.Value{}, ErrNilTarget
	}
	if v.Kind() != reflect.Map || v.Type().Key() != m.key.Type() {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrTargetType, v.Type())
	}
	return v, nil
}

// GetValue returns the entry of key, or the zero element value when the key is absent.
func (m *MapIndexer) GetValue(target any, _ apis.Metadata) (any, error) {
	v, err := m.mapValue(target)
	if err != nil {
		return nil, err
	}
	if ev := v.MapIndex(m.key); ev.IsValid() {
		return ev.Interface(), nil
	}
	return reflect.Zero(v.Type().Elem()).Interface(), nil
}

// SetValue stores value under key. Writing to a nil map fails with ErrNilTarget.
func (m *MapIndexer) SetValue(target any, value any, _ apis.Metadata) error {
	v, err := m.mapValue(target)
	if err != nil {
		return err
	}
	if v.IsNil() {
		return ErrNilTarget
	}
	cv, err := uref.Convert(value, v.Type().Elem())
	if err != nil {
		return err
	}
	v.SetMapIndex(m.key, cv)
	return nil
}

func parseIndexArg(key string, t reflect.Type) (any, error) {
	v, err := uref.ParseIndex(key, t)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}
