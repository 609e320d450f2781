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

package apis

import (
	"reflect"
)

// MemberProvider is a pluggable resolution step. A MemberManager consults its
// providers in priority order; the first one producing matching members wins.
type MemberProvider interface {
	// TryGetMembers returns the members named name on t for the requested member types.
	// Flag filtering is applied by the manager. A nil or empty result falls through.
	TryGetMembers(rc ResolveContext, t reflect.Type, name string, memberTypes MemberType, md Metadata) []MemberInfo
}
