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
	"reflect"
	"strconv"
	"strings"
	"sync"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/members"
	uref "dirpx.dev/bindx/utils/reflect"
)

// LenMember is the name of the synthetic length accessor of arrays, slices, maps and strings.
const LenMember = "Len"

// NewReflectProvider creates an apis.MemberProvider discovering members via reflection.
// Members observe through om, which may be nil.
func NewReflectProvider(om apis.ObservationManager) apis.MemberProvider {
	return &reflectProvider{om: om}
}

// reflectProvider is the universal fallback resolving fields, getter/setter
// properties, methods, events, indexers and lengths of the target type.
type reflectProvider struct {
	om apis.ObservationManager
	// memo caches reflected members by (type, name, member types).
	memo sync.Map // key: cacheKey, val: []apis.MemberInfo
}

// Ensure reflectProvider implements apis.MemberProvider and apis.Invalidator.
var (
	_ apis.MemberProvider = (*reflectProvider)(nil)
	_ apis.Invalidator    = (*reflectProvider)(nil)
)

// cacheKey ensures memoization respects every input affecting resolution.
type cacheKey struct {
	t           reflect.Type
	name        string
	memberTypes apis.MemberType
}

// TryGetMembers reflects the members named name on t.
func (p *reflectProvider) TryGetMembers(_ apis.ResolveContext, t reflect.Type, name string, memberTypes apis.MemberType, _ apis.Metadata) []apis.MemberInfo {
	if t == nil || name == "" {
		return nil
	}
	key := cacheKey{t: t, name: name, memberTypes: memberTypes}
	if v, ok := p.memo.Load(key); ok {
		return v.([]apis.MemberInfo)
	}
	out := p.reflect(t, name, memberTypes)
	p.memo.Store(key, out)
	return out
}

// Invalidate drops memoized members of t, or all of them when t is nil.
func (p *reflectProvider) Invalidate(t reflect.Type, _ apis.Metadata) {
	if t == nil {
		p.memo.Clear()
		return
	}
	p.memo.Range(func(k, _ any) bool {
		if k.(cacheKey).t == t {
			p.memo.Delete(k)
		}
		return true
	})
}

func (p *reflectProvider) reflect(t reflect.Type, name string, memberTypes apis.MemberType) []apis.MemberInfo {
	var out []apis.MemberInfo
	base, _ := uref.Normalize(t)

	if memberTypes.Has(apis.Accessor) {
		if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
			if m := p.indexer(t, base, name[1:len(name)-1]); m != nil {
				out = append(out, m)
			}
		} else {
			if base.Kind() == reflect.Struct {
				if f, ok := base.FieldByName(name); ok && f.IsExported() {
					out = append(out, members.NewField(t, f, p.om))
				}
			}
			if prop := members.LookupProperty(t, name, p.om); prop != nil {
				out = append(out, prop)
			}
			if name == LenMember && len(out) == 0 {
				if m := lenMember(t, base); m != nil {
					out = append(out, m)
				}
			}
		}
	}

	if memberTypes.Has(apis.Method) {
		if m, ok := t.MethodByName(name); ok {
			if mm := members.NewMethod(t, m, p.om); mm != nil {
				out = append(out, mm)
			}
		}
	}

	if memberTypes.Has(apis.Event) {
		if base.Kind() == reflect.Struct {
			if f, ok := base.FieldByName(name); ok {
				if e := members.NewEventField(t, f, p.om); e != nil {
					out = append(out, e)
				}
			}
		}
		if m, ok := t.MethodByName(name); ok {
			if e := members.NewEventMethod(t, m, p.om); e != nil {
				out = append(out, e)
			}
		}
	}
	return out
}

// indexer resolves "[key]" on slices, arrays, maps and types with an Item method.
func (p *reflectProvider) indexer(t, base reflect.Type, key string) apis.MemberInfo {
	switch base.Kind() {
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil
		}
		el, err := members.NewArrayElement(t, i, p.om)
		if err != nil {
			return nil
		}
		return el
	case reflect.Map:
		m, err := members.NewMapIndexer(t, key, p.om)
		if err != nil {
			return nil
		}
		return m
	}
	if acc := members.LookupItemIndexer(t, strings.TrimSpace(key), p.om); acc != nil {
		return acc
	}
	return nil
}

// lenMember returns the length accessor of containers: a constant for arrays,
// a read-only accessor otherwise.
func lenMember(t, base reflect.Type) apis.MemberInfo {
	switch base.Kind() {
	case reflect.Array:
		return members.NewConstant(t, LenMember, base.Len(), apis.InstancePublic, false)
	case reflect.Slice, reflect.Map, reflect.String, reflect.Chan:
		return members.NewLength(t, LenMember)
	}
	return nil
}
