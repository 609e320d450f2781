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
	"slices"

	"dirpx.dev/bindx/apis"
)

// MethodAccessor exposes methods bound to constant arguments as an accessor:
// reads call getter(args...), writes call setter(args..., value).
// Indexers over Item(k)/SetItem(k, v) pairs are built on it.
type MethodAccessor struct {
	base
	getter apis.MethodMemberInfo
	setter apis.MethodMemberInfo
	args   []any
}

// Ensure MethodAccessor implements apis.AccessorMemberInfo.
var _ apis.AccessorMemberInfo = (*MethodAccessor)(nil)

// NewMethodAccessor binds getter and setter (either may be nil, not both) to args.
func NewMethodAccessor(name string, getter, setter apis.MethodMemberInfo, args []any, om apis.ObservationManager) *MethodAccessor {
	a := &MethodAccessor{
		base: base{
			name:       name,
			memberType: apis.Accessor,
			om:         om,
		},
		getter: getter,
		setter: setter,
		args:   slices.Clone(args),
	}
	switch {
	case getter != nil:
		a.declaring = getter.DeclaringType()
		a.typ = getter.Type()
		a.flags = getter.AccessModifiers()
		a.underlying = getter
	case setter != nil:
		a.declaring = setter.DeclaringType()
		if ps := setter.Parameters(); len(ps) > 0 {
			a.typ = ps[len(ps)-1].Type
		}
		a.flags = setter.AccessModifiers()
		a.underlying = setter
	}
	return a
}

// Args returns a copy of the bound arguments.
func (a *MethodAccessor) Args() []any { return slices.Clone(a.args) }

func (a *MethodAccessor) CanRead() bool  { return a.getter != nil }
func (a *MethodAccessor) CanWrite() bool { return a.setter != nil }

// GetValue invokes the getter with the bound arguments.
func (a *MethodAccessor) GetValue(target any, md apis.Metadata) (any, error) {
	if a.getter == nil {
		return nil, apis.NewMemberAccessError(a, apis.MustBeReadable)
	}
	return a.getter.Invoke(target, a.args, md)
}

// SetValue invokes the setter with the bound arguments followed by value.
func (a *MethodAccessor) SetValue(target any, value any, md apis.Metadata) error {
	if a.setter == nil {
		return apis.NewMemberAccessError(a, apis.MustBeWritable)
	}
	args := make([]any, 0, len(a.args)+1)
	args = append(args, a.args...)
	args = append(args, value)
	_, err := a.setter.Invoke(target, args, md)
	return err
}

// LookupItemIndexer builds the "[key]" accessor over Item(k)/SetItem(k, v) methods of t.
// key is parsed into the Item parameter type. It returns nil when t has no Item method.
func LookupItemIndexer(t reflect.Type, key string, om apis.ObservationManager) *MethodAccessor {
	skip := 1
	if t.Kind() == reflect.Interface {
		skip = 0
	}
	gm, ok := t.MethodByName("Item")
	if !ok || !isGetter(gm.Type, skip+1) {
		return nil
	}
	getter := NewMethod(t, gm, om)
	if getter == nil {
		return nil
	}
	k, err := parseIndexArg(key, gm.Type.In(skip))
	if err != nil {
		return nil
	}
	var setter apis.MethodMemberInfo
	if sm, ok := t.MethodByName("SetItem"); ok && sm.Type.NumIn() == skip+2 && sm.Type.In(skip) == gm.Type.In(skip) {
		if s := NewMethod(t, sm, om); s != nil {
			setter = s
		}
	}
	return NewMethodAccessor("["+key+"]", getter, setter, []any{k}, om)
}
