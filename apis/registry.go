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

import "reflect"

// Registry stores attached members: members that do not exist on a type and are
// registered externally. Registrations for an interface type apply to every
// type implementing it.
type Registry interface {
	// Register adds member for t. Registering the same (t, name, member type) twice fails.
	Register(t reflect.Type, member MemberInfo) error
	// Unregister removes the member of t with the given name and member types.
	Unregister(t reflect.Type, name string, memberTypes MemberType) bool
	// Lookup returns the members registered for t (or for interfaces t implements).
	Lookup(t reflect.Type, name string, memberTypes MemberType) []MemberInfo
	// Entries returns a snapshot for diagnostics/docs (order is unspecified).
	Entries() []Entry
	// Count returns the number of registered entries.
	Count() int
	// Reset clears all registered entries.
	Reset()
	// OnChanged registers fn to be called with the affected type after every change.
	OnChanged(fn func(t reflect.Type)) Token
}

// Entry is a single (type, member) association in a Registry snapshot.
type Entry struct {
	// Type is the type the member is attached to.
	Type reflect.Type
	// Member is the attached member.
	Member MemberInfo
}
