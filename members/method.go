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

// Method is an invokable member: a method of the declaring type, or an
// extension func registered for it that receives the target as first argument.
type Method struct {
	base
	index     int
	fn        reflect.Value
	ftype     reflect.Type
	skip      int
	params    []apis.ParameterInfo
	variadic  bool
	extension bool
}

// Ensure Method implements apis.MethodMemberInfo.
var _ apis.MethodMemberInfo = (*Method)(nil)

// NewMethod returns the member for m, a method of declaring.
// It returns nil when the method results are not (), (v), (err) or (v, err).
func NewMethod(declaring reflect.Type, m reflect.Method, om apis.ObservationManager) *Method {
	skip := 1
	if declaring.Kind() == reflect.Interface {
		skip = 0
	}
	if !validResults(m.Type) {
		return nil
	}
	return newMethod(base{
		name:       m.Name,
		declaring:  declaring,
		typ:        resultType(m.Type),
		underlying: m,
		memberType: apis.Method,
		flags:      apis.InstancePublic,
		om:         om,
	}, m.Index, reflect.Value{}, m.Type, skip, false)
}

// NewExtensionMethod returns an extension method named name for declaring, backed by fn.
// fn must be a func whose first parameter accepts values of declaring.
func NewExtensionMethod(declaring reflect.Type, name string, fn any, om apis.ObservationManager) (*Method, error) {
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, fmt.Errorf("%w: extension %q is not a func", ErrInvalidSignature, name)
	}
	ft := fv.Type()
	if ft.NumIn() == 0 || (ft.NumIn() == 1 && ft.IsVariadic()) {
		return nil, fmt.Errorf("%w: extension %q has no target parameter", ErrInvalidSignature, name)
	}
	if declaring != nil && !declaring.AssignableTo(ft.In(0)) {
		return nil, fmt.Errorf("%w: extension %q target %v does not accept %v", ErrInvalidSignature, name, ft.In(0), declaring)
	}
	if !validResults(ft) {
		return nil, fmt.Errorf("%w: extension %q results", ErrInvalidSignature, name)
	}
	if declaring == nil {
		declaring = ft.In(0)
	}
	return newMethod(base{
		name:       name,
		declaring:  declaring,
		typ:        resultType(ft),
		underlying: fn,
		memberType: apis.Method,
		flags:      apis.InstancePublic | apis.Extension,
		om:         om,
	}, -1, fv, ft, 1, true), nil
}

func newMethod(b base, index int, fn reflect.Value, ft reflect.Type, skip int, extension bool) *Method {
	m := &Method{
		base:      b,
		index:     index,
		fn:        fn,
		ftype:     ft,
		skip:      skip,
		variadic:  ft.IsVariadic(),
		extension: extension,
	}
	for i := skip; i < ft.NumIn(); i++ {
		m.params = append(m.params, apis.ParameterInfo{
			Name:       fmt.Sprintf("arg%d", i-skip),
			Type:       ft.In(i),
			IsVariadic: m.variadic && i == ft.NumIn()-1,
		})
	}
	return m
}

// Parameters returns the declared parameters without the receiver or extension target.
func (m *Method) Parameters() []apis.ParameterInfo {
	out := make([]apis.ParameterInfo, len(m.params))
	copy(out, m.params)
	return out
}

// IsExtension reports whether the method is a registered extension func.
func (m *Method) IsExtension() bool { return m.extension }

// Invoke calls the method on target with args converted to the parameter types.
// A variadic method accepts its trailing arguments either spread or as one slice.
func (m *Method) Invoke(target any, args []any, _ apis.Metadata) (any, error) {
	in, spread, err := m.convertArgs(args)
	if err != nil {
		return nil, err
	}
	var fn reflect.Value
	if m.extension {
		recv, err := uref.Convert(target, m.ftype.In(0))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTargetType, err)
		}
		in = append([]reflect.Value{recv}, in...)
		fn = m.fn
	} else {
		fn, err = boundMethod(target, m.declaring, m.index, m.name)
		if err != nil {
			return nil, err
		}
	}
	if spread {
		return unpack(fn.CallSlice(in))
	}
	return unpack(fn.Call(in))
}

// convertArgs converts args to parameter values. spread reports that the last
// argument already is the variadic slice.
func (m *Method) convertArgs(args []any) (in []reflect.Value, spread bool, err error) {
	n := len(m.params)
	if !m.variadic {
		if len(args) != n {
			return nil, false, fmt.Errorf("%w: %s wants %d, got %d", ErrArgCount, m.name, n, len(args))
		}
		in = make([]reflect.Value, n)
		for i, a := range args {
			if in[i], err = uref.Convert(a, m.params[i].Type); err != nil {
				return nil, false, err
			}
		}
		return in, false, nil
	}

	fixed := n - 1
	if len(args) < fixed {
		return nil, false, fmt.Errorf("%w: %s wants at least %d, got %d", ErrArgCount, m.name, fixed, len(args))
	}
	sliceType := m.params[fixed].Type
	if len(args) == n && args[fixed] != nil && reflect.TypeOf(args[fixed]).AssignableTo(sliceType) {
		spread = true
	}
	in = make([]reflect.Value, len(args))
	for i, a := range args {
		t := sliceType.Elem()
		if i < fixed {
			t = m.params[i].Type
		} else if spread {
			t = sliceType
		}
		if in[i], err = uref.Convert(a, t); err != nil {
			return nil, false, err
		}
	}
	return in, spread, nil
}

// TryGetAccessor binds the method to args and exposes it as a read-only accessor.
// It returns nil when args do not fit the parameters or the method has no result.
func (m *Method) TryGetAccessor(args []any, _ apis.Metadata) apis.AccessorMemberInfo {
	if m.typ == nil {
		return nil
	}
	if _, _, err := m.convertArgs(args); err != nil {
		return nil
	}
	return NewMethodAccessor(m.name, m, nil, args, m.om)
}
