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

// Field is an accessor over a struct field, including fields promoted from embedded structs.
// It is writable only when resolved on a pointer type.
type Field struct {
	base
	structType reflect.Type
	index      []int
	exported   bool
	writable   bool
}

// Ensure Field implements apis.AccessorMemberInfo.
var _ apis.AccessorMemberInfo = (*Field)(nil)

// NewField returns the accessor for f resolved on declaring (a struct or pointer-to-struct type).
func NewField(declaring reflect.Type, f reflect.StructField, om apis.ObservationManager) *Field {
	st, _ := uref.Normalize(declaring)
	return &Field{
		base: base{
			name:       f.Name,
			declaring:  declaring,
			typ:        f.Type,
			underlying: f,
			memberType: apis.Accessor,
			flags:      fieldFlags(f.IsExported()),
			om:         om,
		},
		structType: st,
		index:      f.Index,
		exported:   f.IsExported(),
		writable:   f.IsExported() && declaring.Kind() == reflect.Pointer,
	}
}

func (f *Field) CanRead() bool  { return f.exported }
func (f *Field) CanWrite() bool { return f.writable }

func (f *Field) value(target any) (reflect.Value, error) {
	v, ok := uref.Indirect(reflect.ValueOf(target))
	if !ok {
		return reflect.Value{}, ErrNilTarget
	}
	if v.Type() != f.structType {
		return reflect.Value{}, fmt.Errorf("%w: %v is not %v", ErrTargetType, v.Type(), f.structType)
	}
	fv, err := v.FieldByIndexErr(f.index)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrNilTarget, err)
	}
	return fv, nil
}

// GetValue reads the field of target.
func (f *Field) GetValue(target any, _ apis.Metadata) (any, error) {
	if !f.exported {
		return nil, apis.NewMemberAccessError(f, apis.MustBeReadable)
	}
	fv, err := f.value(target)
	if err != nil {
		return nil, err
	}
	return fv.Interface(), nil
}

// SetValue converts value to the field type and stores it.
func (f *Field) SetValue(target any, value any, _ apis.Metadata) error {
	if !f.writable {
		return apis.NewMemberAccessError(f, apis.MustBeWritable)
	}
	fv, err := f.value(target)
	if err != nil {
		return err
	}
	if !fv.CanSet() {
		return apis.NewMemberAccessError(f, apis.MustBeWritable)
	}
	cv, err := uref.Convert(value, f.typ)
	if err != nil {
		return err
	}
	fv.Set(cv)
	return nil
}
