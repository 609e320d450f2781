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

package bindx

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/builder"
	"dirpx.dev/bindx/config"
)

// init initializes the global bindx state.
func init() {
	s := &state{cfg: config.DefaultConfig(), bld: builder.New()}
	st.Store(s.rebuild())
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("bindx: builder returned nil registry")
	// ErrNilObservationManager is returned when a builder returns a nil observation manager.
	ErrNilObservationManager = errors.New("bindx: builder returned nil observation manager")
	// ErrNilMemberManager is returned when a builder returns a nil member manager.
	ErrNilMemberManager = errors.New("bindx: builder returned nil member manager")
	// ErrNoExtensions is returned by AddExtension when the member manager
	// was not built by the default builder.
	ErrNoExtensions = errors.New("bindx: member manager does not serve extension methods")
)

// GetMember returns the first member of t named name using the global member manager.
// Zero flags select the configured default member flags.
func GetMember(t reflect.Type, name string, memberTypes apis.MemberType, flags apis.MemberFlags, md apis.Metadata) apis.MemberInfo {
	return st.Load().mm.GetMember(t, name, memberTypes, flags, md)
}

// GetMembers returns every member of t named name using the global member manager.
func GetMembers(t reflect.Type, name string, memberTypes apis.MemberType, flags apis.MemberFlags, md apis.Metadata) []apis.MemberInfo {
	return st.Load().mm.GetMembers(t, name, memberTypes, flags, md)
}

// GetValue reads the accessor named name on target.
func GetValue(target any, name string, md apis.Metadata) (any, error) {
	if target == nil {
		return nil, &apis.InvalidPathMemberError{Path: name, Member: name}
	}
	t := reflect.TypeOf(target)
	acc, ok := GetMember(t, name, apis.Accessor, 0, md).(apis.AccessorMemberInfo)
	if !ok {
		return nil, &apis.InvalidPathMemberError{Type: t, Path: name, Member: name}
	}
	return acc.GetValue(target, md)
}

// Observe builds a path observer over target using the global observation manager.
// request is a path string, an apis.MemberPath or an apis.MemberPathObserverRequest.
// String and MemberPath requests take their flags from the global configuration.
func Observe(target any, request any, md apis.Metadata) (apis.MemberPathObserver, error) {
	return st.Load().om.GetMemberPathObserver(target, request, md)
}

// Invalidate drops cached members of t, or of every type when t is nil.
func Invalidate(t reflect.Type) {
	s := st.Load()
	s.mm.Invalidate(t, nil)
	if inv, ok := s.om.(apis.Invalidator); ok {
		inv.Invalidate(t, nil)
	}
}

// RegisterMember attaches member to t in the global registry.
func RegisterMember(t reflect.Type, member apis.MemberInfo) error {
	return st.Load().reg.Register(t, member)
}

// AddExtension registers fn as extension method name on the global member manager.
// fn takes the target as its first parameter.
func AddExtension(name string, fn any) (apis.MethodMemberInfo, error) {
	exts := builder.ExtensionsOf(st.Load().mm)
	if exts == nil {
		return nil, ErrNoExtensions
	}
	return exts.Add(name, fn)
}

// SetAll explicitly sets all global bindx state components.
//
// Non-nil layers (reg, om, mm) replace the current ones and are pinned; nil
// layers are unpinned and rebuilt by the builder. A nil cfg or bld keeps the
// current config or builder. ext is always replaced.
func SetAll(cfg *apis.Config, ext any, reg apis.Registry, om apis.ObservationManager, mm apis.MemberManager, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := &state{
		cfg: old.cfg,
		ext: ext,
		bld: old.bld,
		reg: reg, om: om, mm: mm,
		preg: reg != nil, pom: om != nil, pmm: mm != nil,
	}
	if cfg != nil {
		next.cfg = *cfg
	}
	if bld != nil {
		next.bld = bld
	}
	if reg == nil {
		next.reg = old.reg
	}
	if om == nil {
		next.om = old.om
	}
	if mm == nil {
		next.mm = old.mm
	}
	st.Store(next.rebuild())
}

// Config returns the global bindx configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global bindx configuration to cfg and rebuilds
// the layers that are not pinned.
func SetConfig(cfg apis.Config) {
	update(func(s *state) { s.cfg = cfg })
}

// Registry returns the global bindx registry.
func Registry() apis.Registry {
	return st.Load().reg
}

// SetRegistry replaces and pins the global registry. Layers that are not
// pinned are rebuilt over it.
func SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}
	update(func(s *state) { s.reg, s.preg = reg, true })
}

// ObservationManager returns the global bindx observation manager.
func ObservationManager() apis.ObservationManager {
	return st.Load().om
}

// SetObservationManager replaces and pins the global observation manager.
// Layers that are not pinned are rebuilt around it.
func SetObservationManager(om apis.ObservationManager) {
	if om == nil {
		return
	}
	update(func(s *state) { s.om, s.pom = om, true })
}

// MemberManager returns the global bindx member manager.
func MemberManager() apis.MemberManager {
	return st.Load().mm
}

// SetMemberManager replaces and pins the global member manager.
func SetMemberManager(mm apis.MemberManager) {
	if mm == nil {
		return
	}
	update(func(s *state) { s.mm, s.pmm = mm, true })
}

// Builder returns the global bindx builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder sets the global bindx builder to b and rebuilds the layers
// that are not pinned with it.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}
	update(func(s *state) { s.bld = b })
}

// SetExt replaces the extension payload and rebuilds non-pinned layers via the builder.
func SetExt[T any](ext T) {
	update(func(s *state) { s.ext = ext })
}

// ExtAs returns the global bindx extension payload as type T.
func ExtAs[T any]() (T, bool) {
	ext, ok := st.Load().ext.(T)
	return ext, ok
}

// IsRegistryPinned reports whether the global registry is pinned.
func IsRegistryPinned() bool { return st.Load().preg }

// PinRegistry stops rebuilding the global registry.
func PinRegistry() { pin(func(s *state) { s.preg = true }) }

// UnpinRegistry lets the next rebuild replace the global registry.
func UnpinRegistry() { pin(func(s *state) { s.preg = false }) }

// IsObservationManagerPinned reports whether the global observation manager is pinned.
func IsObservationManagerPinned() bool { return st.Load().pom }

// PinObservationManager stops rebuilding the global observation manager.
func PinObservationManager() { pin(func(s *state) { s.pom = true }) }

// UnpinObservationManager lets the next rebuild replace the global observation manager.
func UnpinObservationManager() { pin(func(s *state) { s.pom = false }) }

// IsMemberManagerPinned reports whether the global member manager is pinned.
func IsMemberManagerPinned() bool { return st.Load().pmm }

// PinMemberManager stops rebuilding the global member manager.
func PinMemberManager() { pin(func(s *state) { s.pmm = true }) }

// UnpinMemberManager lets the next rebuild replace the global member manager.
func UnpinMemberManager() { pin(func(s *state) { s.pmm = false }) }

// update copies the current state, applies fn and publishes the rebuilt copy.
func update(fn func(s *state)) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	fn(&next)
	st.Store(next.rebuild())
}

// pin publishes a copy with changed pins and no rebuild.
func pin(fn func(s *state)) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	fn(&next)
	st.Store(&next)
}

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots.
var buildMu sync.Mutex

// st is the global bindx state.
var st atomic.Pointer[state]

// state is the global bindx state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	cfg apis.Config
	ext any
	reg apis.Registry
	om  apis.ObservationManager
	mm  apis.MemberManager
	bld apis.Builder
	// preg, pom and pmm mark pinned layers, which rebuilds keep as they are.
	preg bool
	pom  bool
	pmm  bool
}

// rebuild rebuilds the layers of s that are not pinned, registry first,
// and returns s. It panics when the builder returns a nil layer.
func (s *state) rebuild() *state {
	if !s.preg {
		s.reg = s.bld.BuildRegistry(s.cfg, s.reg, s.ext)
	}
	if s.reg == nil {
		panic(ErrNilRegistry)
	}
	if !s.pom {
		s.om = s.bld.BuildObservationManager(s.cfg, s.om, s.ext)
	}
	if s.om == nil {
		panic(ErrNilObservationManager)
	}
	if !s.pmm {
		s.mm = s.bld.BuildMemberManager(s.cfg, s.reg, s.om, s.mm, s.ext)
	} else if b, ok := s.om.(apis.MemberManagerBinder); ok && !s.pom {
		// A rebuilt façade resolves path segments through the pinned manager.
		b.BindMemberManager(s.mm)
	}
	if s.mm == nil {
		panic(ErrNilMemberManager)
	}
	return s
}
