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

package registry_test

import (
	"reflect"
	"testing"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/config"
	"dirpx.dev/bindx/members"
	"dirpx.dev/bindx/registry"
)

type Shape interface{ Area() float64 }

type Square struct{ Side float64 }

func (s *Square) Area() float64 { return s.Side * s.Side }

func constant(t reflect.Type, name string, v any) apis.MemberInfo {
	return members.NewConstant(t, name, v, apis.InstancePublic|apis.Attached, false)
}

func TestRegister_IdempotentAndLookup(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	m := constant(reflect.TypeOf(T1{}), "Kind", "t1")

	// pointer and value share registrations
	if err := reg.Register(reflect.TypeOf(&T1{}), m); err != nil {
		t.Fatalf("Register(&T1{}): unexpected error: %v", err)
	}
	// idempotent re-register with the same member
	if err := reg.Register(reflect.TypeOf(T1{}), m); err != nil {
		t.Fatalf("Register(T1{}) idempotent: unexpected error: %v", err)
	}

	got := reg.Lookup(reflect.TypeOf(T1{}), "Kind", apis.Accessor)
	if len(got) != 1 || got[0] != m {
		t.Fatalf("Lookup(T1{}): got %v, want [%v]", got, m)
	}
	if got := reg.Lookup(reflect.TypeOf(&T1{}), "Kind", apis.AllMemberTypes); len(got) != 1 {
		t.Fatalf("Lookup(&T1{}): got %d members, want 1", len(got))
	}
	if got := reg.Lookup(reflect.TypeOf(T1{}), "Kind", apis.Method); len(got) != 0 {
		t.Fatalf("Lookup(Method): got %v, want none", got)
	}
	if reg.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", reg.Count())
	}
}

func TestRegister_Conflict(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	if err := reg.Register(reflect.TypeOf(&T1{}), constant(nil, "Kind", 1)); err != nil {
		t.Fatalf("Register: unexpected error: %v", err)
	}
	err := reg.Register(reflect.TypeOf(T1{}), constant(nil, "Kind", 2))
	if err != registry.ErrConflictingRegistration {
		t.Fatalf("expected ErrConflictingRegistration, got: %v", err)
	}
}

func TestRegister_Errors(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	if err := reg.Register(nil, constant(nil, "x", 1)); err != registry.ErrNilType {
		t.Fatalf("nil type: want ErrNilType, got %v", err)
	}
	if err := reg.Register(reflect.TypeOf(T1{}), nil); err != registry.ErrNilMember {
		t.Fatalf("nil member: want ErrNilMember, got %v", err)
	}
	if err := reg.Register(reflect.TypeOf(T1{}), constant(nil, "", 1)); err != registry.ErrEmptyName {
		t.Fatalf("empty name: want ErrEmptyName, got %v", err)
	}
}

func TestInterfaceRegistrations(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	shapeType := reflect.TypeOf((*Shape)(nil)).Elem()
	own := constant(reflect.TypeOf(Square{}), "Name", "square")
	shared := constant(shapeType, "Name", "shape")

	_ = reg.Register(reflect.TypeOf(Square{}), own)
	_ = reg.Register(shapeType, shared)

	got := reg.Lookup(reflect.TypeOf(&Square{}), "Name", apis.Accessor)
	if len(got) != 2 || got[0] != own || got[1] != shared {
		t.Fatalf("Lookup(&Square{}): got %v, want [own shared]", got)
	}
	if got := reg.Lookup(reflect.TypeOf(T1{}), "Name", apis.Accessor); len(got) != 0 {
		t.Fatalf("Lookup(T1{}): got %v, want none", got)
	}

	if !reg.Unregister(shapeType, "Name", apis.AllMemberTypes) {
		t.Fatalf("Unregister(Shape): want true")
	}
	if got := reg.Lookup(reflect.TypeOf(&Square{}), "Name", apis.Accessor); len(got) != 1 {
		t.Fatalf("after Unregister: got %v, want [own]", got)
	}
}

func TestOnChanged(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	var seen []reflect.Type
	tok := reg.OnChanged(func(t reflect.Type) { seen = append(seen, t) })

	m := constant(nil, "Kind", 1)
	_ = reg.Register(reflect.TypeOf(&T1{}), m)
	_ = reg.Register(reflect.TypeOf(&T1{}), m) // idempotent, no event
	_ = reg.Register(reflect.TypeOf((*Shape)(nil)).Elem(), constant(nil, "Kind", 2))
	reg.Unregister(reflect.TypeOf(T1{}), "Kind", apis.Accessor)
	reg.Unregister(reflect.TypeOf(T1{}), "Kind", apis.Accessor) // nothing removed, no event
	reg.Reset()

	want := []reflect.Type{reflect.TypeOf(T1{}), nil, reflect.TypeOf(T1{}), nil}
	if len(seen) != len(want) {
		t.Fatalf("OnChanged calls = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("OnChanged[%d] = %v, want %v", i, seen[i], want[i])
		}
	}

	tok.Dispose()
	_ = reg.Register(reflect.TypeOf(T2{}), m)
	if len(seen) != len(want) {
		t.Fatalf("handler called after Dispose")
	}
}

func TestEntriesAndReset(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	_ = reg.Register(reflect.TypeOf(&T1{}), constant(nil, "A", 1))
	_ = reg.Register(reflect.TypeOf(&T2{}), constant(nil, "A", 2))

	entries := reg.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries len = %d, want 2", len(entries))
	}
	if reg.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", reg.Count())
	}

	reg.Reset()

	if reg.Count() != 0 {
		t.Fatalf("after Reset, Count() = %d, want 0", reg.Count())
	}
	if got := reg.Lookup(reflect.TypeOf(&T1{}), "A", apis.Accessor); len(got) != 0 {
		t.Fatalf("Lookup after Reset: got %v, want none", got)
	}
}

func TestLookupNilAndUnknown(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	if got := reg.Lookup(nil, "A", apis.Accessor); got != nil {
		t.Fatalf("Lookup(nil): got %v, want nil", got)
	}
	if got := reg.Lookup(reflect.TypeOf(&T1{}), "A", apis.Accessor); got != nil {
		t.Fatalf("Lookup(unknown): got %v, want nil", got)
	}
}
