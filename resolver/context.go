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

package resolver

import (
	"reflect"

	"dirpx.dev/bindx/apis"
)

// resolveContext tracks the member names being resolved by one top-level
// lookup. It belongs to a single call chain and is never shared between
// goroutines.
type resolveContext struct {
	m        *Manager
	inFlight map[string]int
	depth    int
}

var _ apis.ResolveContext = (*resolveContext)(nil)

func newResolveContext(m *Manager) *resolveContext {
	return &resolveContext{m: m}
}

// Manager returns a view of the owning manager whose lookups run through this
// context, so re-entrant requests stay guarded.
func (rc *resolveContext) Manager() apis.MemberManager { return boundManager{rc: rc} }

func (rc *resolveContext) GetMembers(t reflect.Type, name string, memberTypes apis.MemberType, flags apis.MemberFlags, md apis.Metadata) []apis.MemberInfo {
	return rc.m.resolve(rc, t, name, memberTypes, flags, md)
}

func (rc *resolveContext) InFlight(name string) bool { return rc.inFlight[name] > 0 }

func (rc *resolveContext) enter(name string) {
	if rc.inFlight == nil {
		rc.inFlight = make(map[string]int, 2)
	}
	rc.inFlight[name]++
	rc.depth++
}

func (rc *resolveContext) leave(name string) {
	rc.depth--
	if n := rc.inFlight[name] - 1; n > 0 {
		rc.inFlight[name] = n
	} else {
		delete(rc.inFlight, name)
	}
}

type boundManager struct {
	rc *resolveContext
}

func (b boundManager) GetMember(t reflect.Type, name string, memberTypes apis.MemberType, flags apis.MemberFlags, md apis.Metadata) apis.MemberInfo {
	return first(b.rc.GetMembers(t, name, memberTypes, flags, md))
}

func (b boundManager) GetMembers(t reflect.Type, name string, memberTypes apis.MemberType, flags apis.MemberFlags, md apis.Metadata) []apis.MemberInfo {
	return b.rc.GetMembers(t, name, memberTypes, flags, md)
}

func (b boundManager) Invalidate(t reflect.Type, md apis.Metadata) { b.rc.m.Invalidate(t, md) }
