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

// Constant is an accessor returning a fixed value.
// Writes fail with MustBeWritable unless the constant ignores them.
type Constant struct {
	base
	value        any
	ignoreWrites bool
}

// Ensure Constant implements apis.AccessorMemberInfo.
var _ apis.AccessorMemberInfo = (*Constant)(nil)

// NewConstant returns a constant member named name on declaring.
// A zero flags value defaults to instance public.
func NewConstant(declaring reflect.Type, name string, value any, flags apis.MemberFlags, ignoreWrites bool) *Constant {
	if flags == 0 {
		flags = apis.InstancePublic
	}
	return &Constant{
		base: base{
			name:       name,
			declaring:  declaring,
			typ:        reflect.TypeOf(value),
			memberType: apis.Accessor,
			flags:      flags,
		},
		value:        value,
		ignoreWrites: ignoreWrites,
	}
}

func (c *Constant) CanRead() bool  { return true }
func (c *Constant) CanWrite() bool { return c.ignoreWrites }

// GetValue returns the constant.
func (c *Constant) GetValue(any, apis.Metadata) (any, error) { return c.value, nil }

// SetValue rejects the write, or drops it when the constant ignores writes.
func (c *Constant) SetValue(any, any, apis.Metadata) error {
	if c.ignoreWrites {
		return nil
	}
	return apis.NewMemberAccessError(c, apis.MustBeWritable)
}

// TryObserve returns the empty token: a constant never changes.
func (c *Constant) TryObserve(any, apis.EventListener, apis.Metadata) apis.Token {
	return apis.EmptyToken
}

// Length is the read-only "Len" accessor of slices, maps, strings and channels.
type Length struct {
	base
}

// Ensure Length implements apis.AccessorMemberInfo.
var _ apis.AccessorMemberInfo = (*Length)(nil)

// NewLength returns the length accessor for declaring.
func NewLength(declaring reflect.Type, name string) *Length {
	return &Length{base: base{
		name:       name,
		declaring:  declaring,
		typ:        reflect.TypeFor[int](),
		memberType: apis.Accessor,
		flags:      apis.InstancePublic,
	}}
}

func (l *Length) CanRead() bool  { return true }
func (l *Length) CanWrite() bool { return false }

// GetValue returns the length of target; a nil pointer has length 0.
func (l *Length) GetValue(target any, _ apis.Metadata) (any, error) {
	rv, ok := uref.Indirect(reflect.ValueOf(target))
	if !ok {
		return 0, nil
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.String, reflect.Chan, reflect.Array:
		return rv.Len(), nil
	}
	return nil, fmt.Errorf("%w: %v has no length", ErrTargetType, rv.Type())
}

// SetValue always fails.
func (l *Length) SetValue(any, any, apis.Metadata) error {
	return apis.NewMemberAccessError(l, apis.MustBeWritable)
}
