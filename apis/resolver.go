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

// MemberManager resolves (type, name, member types, flags) to members.
// Typical chain: attached registry -> extension methods -> reflection -> selectors.
type MemberManager interface {
	// GetMember returns the first matching member, or nil.
	GetMember(t reflect.Type, name string, memberTypes MemberType, flags MemberFlags, md Metadata) MemberInfo
	// GetMembers returns every matching member produced by the winning provider.
	GetMembers(t reflect.Type, name string, memberTypes MemberType, flags MemberFlags, md Metadata) []MemberInfo
	// Invalidate drops cached members of t, or all cached members when t is nil.
	Invalidate(t reflect.Type, md Metadata)
}

// ResolveContext carries one resolution call through the provider chain.
// Providers that need nested lookups go through it so that a request for a
// name already being resolved on the same context returns nil instead of recursing.
type ResolveContext interface {
	// Manager returns the member manager running the resolution.
	Manager() MemberManager
	// GetMembers performs a nested, guarded lookup.
	GetMembers(t reflect.Type, name string, memberTypes MemberType, flags MemberFlags, md Metadata) []MemberInfo
	// InFlight reports whether name is currently being resolved on this context.
	InFlight(name string) bool
}

// Invalidator is implemented by components holding per-type caches.
// Member managers cascade Invalidate calls to every component implementing it.
type Invalidator interface {
	Invalidate(t reflect.Type, md Metadata)
}
