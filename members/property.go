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
	"reflect"

	"dirpx.dev/bindx/apis"
	uref "dirpx.dev/bindx/utils/reflect"
)

// Property is an accessor backed by getter and setter methods:
// Name() or GetName() returning (v) or (v, error), and SetName(v) returning nothing or an error.
type Property struct {
	base
	getter    *reflect.Method
	setter    *reflect.Method
	setterArg reflect.Type
}

// Ensure Property implements apis.AccessorMemberInfo.
var _ apis.AccessorMemberInfo = (*Property)(nil)

// LookupProperty finds the getter/setter pair of name in the method set of t.
// It returns nil when t has neither.
func LookupProperty(t reflect.Type, name string, om apis.ObservationManager) *Property {
	if t == nil || name == "" {
		return nil
	}
	skip := 1
	if t.Kind() == reflect.Interface {
		skip = 0
	}
	var getter, setter *reflect.Method
	for _, gn := range []string{name, "Get" + name} {
		if m, ok := t.MethodByName(gn); ok && isGetter(m.Type, skip) {
			getter = &m
			break
		}
	}
	if m, ok := t.MethodByName("Set" + name); ok && isSetter(m.Type, skip) {
		setter = &m
	}
	if getter == nil && setter == nil {
		return nil
	}
	if getter != nil && setter != nil && getter.Type.Out(0) != setter.Type.In(skip) {
		setter = nil
	}

	p := &Property{
		base: base{
			name:       name,
			declaring:  t,
			memberType: apis.Accessor,
			flags:      apis.InstancePublic,
			om:         om,
		},
		getter: getter,
		setter: setter,
	}
	if getter != nil {
		p.typ = getter.Type.Out(0)
		p.underlying = *getter
	}
	if setter != nil {
		p.setterArg = setter.Type.In(skip)
		if p.typ == nil {
			p.typ = p.setterArg
			p.underlying = *setter
		}
	}
	return p
}

func isGetter(ft reflect.Type, skip int) bool {
	if ft.NumIn() != skip {
		return false
	}
	switch ft.NumOut() {
	case 1:
		return ft.Out(0) != errorType
	case 2:
		return ft.Out(1) == errorType
	}
	return false
}

func isSetter(ft reflect.Type, skip int) bool {
	if ft.NumIn() != skip+1 || ft.IsVariadic() {
		return false
	}
	return ft.NumOut() == 0 || (ft.NumOut() == 1 && ft.Out(0) == errorType)
}

func (p *Property) CanRead() bool  { return p.getter != nil }
func (p *Property) CanWrite() bool { return p.setter != nil }

// GetValue calls the getter on target.
func (p *Property) GetValue(target any, _ apis.Metadata) (any, error) {
	if p.getter == nil {
		return nil, apis.NewMemberAccessError(p, apis.MustBeReadable)
	}
	fn, err := boundMethod(target, p.declaring, p.getter.Index, p.getter.Name)
	if err != nil {
		return nil, err
	}
	return unpack(fn.Call(nil))
}

// SetValue converts value to the setter argument type and calls the setter on target.
func (p *Property) SetValue(target any, value any, _ apis.Metadata) error {
	if p.setter == nil {
		return apis.NewMemberAccessError(p, apis.MustBeWritable)
	}
	fn, err := boundMethod(target, p.declaring, p.setter.Index, p.setter.Name)
	if err != nil {
		return err
	}
	cv, err := uref.Convert(value, p.setterArg)
	if err != nil {
		return err
	}
	_, err = unpack(fn.Call([]reflect.Value{cv}))
	return err
}
