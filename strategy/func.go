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

// Func adapts an ordinary function to apis.MemberProvider. Selectors producing
// members on demand (for example Dynamic members of map-like types) are plugged in through it.
type Func func(rc apis.ResolveContext, t reflect.Type, name string, memberTypes apis.MemberType, md apis.Metadata) []apis.MemberInfo

// Ensure Func implements apis.MemberProvider.
var _ apis.MemberProvider = Func(nil)

// TryGetMembers calls f.
func (f Func) TryGetMembers(rc apis.ResolveContext, t reflect.Type, name string, memberTypes apis.MemberType, md apis.Metadata) []apis.MemberInfo {
	if f == nil {
		return nil
	}
	return f(rc, t, name, memberTypes, md)
}
