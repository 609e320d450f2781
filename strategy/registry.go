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

	"dirpx.dev/bindx/apis"
)

// NewAttachedProvider creates an apis.MemberProvider that serves members from an attached-member registry.
func NewAttachedProvider(reg apis.Registry) apis.MemberProvider {
	return &attachedProvider{reg: reg}
}

// attachedProvider consults a provided apis.Registry (reflection-free lookup).
// It runs first so attached members shadow reflected ones.
type attachedProvider struct {
	reg apis.Registry
}

// Ensure attachedProvider implements apis.MemberProvider.
var _ apis.MemberProvider = (*attachedProvider)(nil)

// TryGetMembers looks up t in the registry.
func (s *attachedProvider) TryGetMembers(_ apis.ResolveContext, t reflect.Type, name string, memberTypes apis.MemberType, _ apis.Metadata) []apis.MemberInfo {
	if t == nil || s.reg == nil {
		return nil
	}
	return s.reg.Lookup(t, name, memberTypes)
}
