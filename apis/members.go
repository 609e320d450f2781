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
	"strings"
)

// MemberType classifies members by the capability set they expose.
// It is a bitmask so requests can ask for several kinds at once.
type MemberType uint8

const (
	// Accessor members can be read and/or written (fields, properties, indexers, constants).
	Accessor MemberType = 1 << iota
	// Method members can be invoked.
	Method
	// Event members accept listener subscriptions.
	Event

	// AllMemberTypes matches every member kind.
	AllMemberTypes = Accessor | Method | Event
)

// Has reports whether every bit of k is set in t.
func (t MemberType) Has(k MemberType) bool { return t&k == k }

// Intersects reports whether t and k share at least one bit.
func (t MemberType) Intersects(k MemberType) bool { return t&k != 0 }

// String returns a "|" separated list of the set kinds.
func (t MemberType) String() string {
	if t == 0 {
		return "None"
	}
	var parts []string
	if t.Has(Accessor) {
		parts = append(parts, "Accessor")
	}
	if t.Has(Method) {
		parts = append(parts, "Method")
	}
	if t.Has(Event) {
		parts = append(parts, "Event")
	}
	return strings.Join(parts, "|")
}

// MemberFlags describes the access modifiers of a member, and doubles as the
// filter passed with a member request.
type MemberFlags uint16

const (
	// Static members do not need a target.
	Static MemberFlags = 1 << iota
	// Instance members operate on a target.
	Instance
	// Public members are exported.
	Public
	// NonPublic members are hidden from default lookups.
	NonPublic
	// Extension members are registered functions invoked with the target as first argument.
	Extension
	// Attached members do not exist on the type and are registered externally.
	Attached
	// Dynamic members are produced per request by a selector.
	Dynamic

	// InstancePublic is the default flag set for reflected members.
	InstancePublic = Instance | Public
	// StaticPublic matches exported static members.
	StaticPublic = Static | Public
	// InstancePublicAll matches exported instance members of any origin.
	InstancePublicAll = InstancePublic | Extension | Attached | Dynamic
	// InstanceAll matches every instance member regardless of visibility and origin.
	InstanceAll = Instance | Public | NonPublic | Extension | Attached | Dynamic
	// All matches every member.
	All = InstanceAll | Static
)

// Has reports whether every bit of f2 is set in f.
func (f MemberFlags) Has(f2 MemberFlags) bool { return f&f2 == f2 }

// Without clears the bits of f2.
func (f MemberFlags) Without(f2 MemberFlags) MemberFlags { return f &^ f2 }

// Matches reports whether a member with modifiers m satisfies the request flags f.
// The static/instance and public/non-public axes must intersect, while origin bits
// (extension, attached, dynamic) of the member must all be requested.
func (f MemberFlags) Matches(m MemberFlags) bool {
	const scope = Static | Instance
	const visibility = Public | NonPublic
	const origin = Extension | Attached | Dynamic
	if m&scope != 0 && f&scope&m == 0 {
		return false
	}
	if m&visibility != 0 && f&visibility&m == 0 {
		return false
	}
	return f&origin&m == m&origin
}

// String returns a "|" separated list of the set flags.
func (f MemberFlags) String() string {
	if f == 0 {
		return "None"
	}
	var parts []string
	for _, e := range memberFlagNames {
		if f.Has(e.flag) {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, "|")
}

var memberFlagNames = []struct {
	flag MemberFlags
	name string
}{
	{Static, "Static"},
	{Instance, "Instance"},
	{Public, "Public"},
	{NonPublic, "NonPublic"},
	{Extension, "Extension"},
	{Attached, "Attached"},
	{Dynamic, "Dynamic"},
}

// ParseMemberFlags parses a "|" or "," separated list of flag names
// (case-insensitive). Preset names "InstancePublic", "StaticPublic",
// "InstancePublicAll", "InstanceAll" and "All" are accepted too.
func ParseMemberFlags(s string) (MemberFlags, bool) {
	var out MemberFlags
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' || r == ' ' }) {
		switch strings.ToLower(tok) {
		case "instancepublic":
			out |= InstancePublic
			continue
		case "staticpublic":
			out |= StaticPublic
			continue
		case "instancepublicall":
			out |= InstancePublicAll
			continue
		case "instanceall":
			out |= InstanceAll
			continue
		case "all":
			out |= All
			continue
		}
		found := false
		for _, e := range memberFlagNames {
			if strings.EqualFold(e.name, tok) {
				out |= e.flag
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return out, out != 0
}

// MemberInfo is the uniform descriptor of a discoverable, possibly synthetic member.
// Member instances are not value-equal; they are cached per (type, name, flags) and shared.
type MemberInfo interface {
	// Name returns the member name as used in paths.
	Name() string
	// DeclaringType returns the type the member was resolved on.
	DeclaringType() reflect.Type
	// Type returns the member value type (the result type for methods).
	Type() reflect.Type
	// Underlying returns the reflected member (reflect.StructField, reflect.Method,
	// a registered func, ...) or nil for synthetic members.
	Underlying() any
	// MemberType returns the member kind.
	MemberType() MemberType
	// AccessModifiers returns the member modifiers.
	AccessModifiers() MemberFlags
	// TryObserve subscribes listener to changes of the member on target.
	// The returned token is never nil; it is a no-op when the member has no change notification.
	TryObserve(target any, listener EventListener, md Metadata) Token
}

// AccessorMemberInfo is a member that can be read and/or written.
type AccessorMemberInfo interface {
	MemberInfo
	CanRead() bool
	CanWrite() bool
	// GetValue reads the member. It fails with a MemberAccessError when the member is not readable.
	GetValue(target any, md Metadata) (any, error)
	// SetValue writes the member. It fails with a MemberAccessError when the member is not writable.
	SetValue(target any, value any, md Metadata) error
}

// ParameterInfo describes one method parameter.
type ParameterInfo struct {
	Name       string
	Type       reflect.Type
	IsVariadic bool
}

// MethodMemberInfo is an invokable member.
type MethodMemberInfo interface {
	MemberInfo
	// Parameters returns the declared parameters, without the implicit target of extension methods.
	Parameters() []ParameterInfo
	// Invoke calls the method. Extension methods receive target as their first argument.
	Invoke(target any, args []any, md Metadata) (any, error)
	// TryGetAccessor binds the method to constant args and returns it as an accessor,
	// or nil when args do not fit the signature.
	TryGetAccessor(args []any, md Metadata) AccessorMemberInfo
}

// EventMemberInfo is a member listeners can subscribe to.
type EventMemberInfo interface {
	MemberInfo
	// TrySubscribe adds listener to the event of target.
	TrySubscribe(target any, listener EventListener, md Metadata) (Token, error)
}
