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

package members

import (
	"fmt"
	"reflect"
	"strconv"
	"sync/atomic"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/extdata"
	"dirpx.dev/bindx/listeners"
	"dirpx.dev/bindx/metadata"
)

var delegateSeq atomic.Uint64

// DelegateConfig describes an attached accessor backed by funcs.
// T is the target type, V the value type and S an arbitrary state payload.
type DelegateConfig[T, V, S any] struct {
	// Name is the member name.
	Name string
	// Flags are the access modifiers; zero means instance public attached.
	Flags apis.MemberFlags
	// State is handed to every func through the member.
	State S
	// Get reads the value; nil makes the member write-only.
	Get func(m *Delegate[T, V, S], target T, md apis.Metadata) (V, error)
	// Set writes the value; nil makes the member read-only.
	Set func(m *Delegate[T, V, S], target T, value V, md apis.Metadata) error
	// Observe subscribes to changes; nil means changes are not observable.
	Observe func(m *Delegate[T, V, S], target T, listener apis.EventListener, md apis.Metadata) apis.Token
	// Attached runs once per distinct target before its first access. Targets
	// the extra-data store cannot identify (zero-size pointees, funcs) never run it.
	Attached func(m *Delegate[T, V, S], target T, md apis.Metadata)
	// Store keeps the attached markers; nil uses extdata.Default.
	Store *extdata.Store
}

// Delegate is an attached accessor backed by funcs and a typed state payload.
type Delegate[T, V, S any] struct {
	base
	state    S
	get      func(m *Delegate[T, V, S], target T, md apis.Metadata) (V, error)
	set      func(m *Delegate[T, V, S], target T, value V, md apis.Metadata) error
	observe  func(m *Delegate[T, V, S], target T, listener apis.EventListener, md apis.Metadata) apis.Token
	attached func(m *Delegate[T, V, S], target T, md apis.Metadata)
	store    *extdata.Store
	marker   string
}

// NewDelegate builds the member described by cfg.
func NewDelegate[T, V, S any](cfg DelegateConfig[T, V, S]) *Delegate[T, V, S] {
	flags := cfg.Flags
	if flags == 0 {
		flags = apis.InstancePublic | apis.Attached
	}
	store := cfg.Store
	if store == nil {
		store = extdata.Default
	}
	d := &Delegate[T, V, S]{
		base: base{
			name:       cfg.Name,
			declaring:  reflect.TypeFor[T](),
			typ:        reflect.TypeFor[V](),
			memberType: apis.Accessor,
			flags:      flags,
		},
		state:    cfg.State,
		get:      cfg.Get,
		set:      cfg.Set,
		observe:  cfg.Observe,
		attached: cfg.Attached,
		store:    store,
		marker:   "bindx.attached:" + cfg.Name + ":" + strconv.FormatUint(delegateSeq.Add(1), 10),
	}
	return d
}

// Ensure Delegate implements apis.AccessorMemberInfo.
var _ apis.AccessorMemberInfo = (*Delegate[any, any, any])(nil)

// State returns the payload given at construction.
func (d *Delegate[T, V, S]) State() S { return d.state }

// Store returns the extra-data store of the member.
func (d *Delegate[T, V, S]) Store() *extdata.Store { return d.store }

func (d *Delegate[T, V, S]) CanRead() bool  { return d.get != nil }
func (d *Delegate[T, V, S]) CanWrite() bool { return d.set != nil }

func (d *Delegate[T, V, S]) target(target any) (T, error) {
	if target == nil {
		var zero T
		if d.flags.Has(apis.Static) {
			return zero, nil
		}
		return zero, ErrNilTarget
	}
	t, ok := target.(T)
	if !ok {
		return t, fmt.Errorf("%w: %T is not %v", ErrTargetType, target, d.declaring)
	}
	return t, nil
}

// raiseAttached runs the attached callback the first time target is seen.
// Targets without a stable identity never run it.
func (d *Delegate[T, V, S]) raiseAttached(raw any, t T, md apis.Metadata) {
	if d.attached == nil || raw == nil || metadata.SuppressAttachedCallback.Get(md) {
		return
	}
	_, added, err := d.store.GetOrAdd(raw, d.marker, func() any { return struct{}{} })
	if err == nil && added {
		d.attached(d, t, md)
	}
}

// GetValue reads the value of target through the getter.
func (d *Delegate[T, V, S]) GetValue(target any, md apis.Metadata) (any, error) {
	if d.get == nil {
		return nil, apis.NewMemberAccessError(d, apis.MustBeReadable)
	}
	t, err := d.target(target)
	if err != nil {
		return nil, err
	}
	d.raiseAttached(target, t, md)
	v, err := d.get(d, t, md)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// SetValue writes value to target through the setter.
func (d *Delegate[T, V, S]) SetValue(target any, value any, md apis.Metadata) error {
	if d.set == nil {
		return apis.NewMemberAccessError(d, apis.MustBeWritable)
	}
	t, err := d.target(target)
	if err != nil {
		return err
	}
	var v V
	if value != nil {
		var ok bool
		if v, ok = value.(V); !ok {
			return fmt.Errorf("%w: value %T is not %v", ErrTargetType, value, d.typ)
		}
	}
	d.raiseAttached(target, t, md)
	return d.set(d, t, v, md)
}

// TryObserve subscribes listener through the observe func.
func (d *Delegate[T, V, S]) TryObserve(target any, listener apis.EventListener, md apis.Metadata) apis.Token {
	if d.observe == nil || listener == nil {
		return apis.EmptyToken
	}
	t, err := d.target(target)
	if err != nil {
		return apis.EmptyToken
	}
	d.raiseAttached(target, t, md)
	if tok := d.observe(d, t, listener, md); tok != nil {
		return tok
	}
	return apis.EmptyToken
}

// AttachedPropertyConfig describes an observable attached property whose
// per-target values live in an extra-data store.
type AttachedPropertyConfig[T, V any] struct {
	// Name is the member name.
	Name string
	// Default is returned for targets without a stored value.
	Default V
	// Flags are the access modifiers; zero means instance public attached.
	Flags apis.MemberFlags
	// Attached runs once per distinct target before its first access. Targets
	// the extra-data store cannot identify (zero-size pointees, funcs) never run it.
	Attached func(target T, md apis.Metadata)
	// Changed runs after a stored value changed, before listeners are notified.
	Changed func(target T, oldValue, newValue V, md apis.Metadata)
	// Store keeps values and listeners; nil uses extdata.Default.
	Store *extdata.Store
}

// AttachedPropertyState is the state payload of attached properties.
type AttachedPropertyState[T, V any] struct {
	Default      V
	ValueKey     string
	ListenersKey string
	Changed      func(target T, oldValue, newValue V, md apis.Metadata)
}

// AttachedProperty is the delegate type built by NewAttachedProperty.
type AttachedProperty[T, V any] = Delegate[T, V, AttachedPropertyState[T, V]]

// NewAttachedProperty returns an attached property raising
// apis.PropertyChangedArgs{Name} to its observers whenever a set changes the value.
func NewAttachedProperty[T, V any](cfg AttachedPropertyConfig[T, V]) *AttachedProperty[T, V] {
	key := "bindx.property:" + cfg.Name + ":" + strconv.FormatUint(delegateSeq.Add(1), 10)
	var attached func(m *AttachedProperty[T, V], target T, md apis.Metadata)
	if cfg.Attached != nil {
		attached = func(_ *AttachedProperty[T, V], target T, md apis.Metadata) { cfg.Attached(target, md) }
	}
	return NewDelegate(DelegateConfig[T, V, AttachedPropertyState[T, V]]{
		Name:  cfg.Name,
		Flags: cfg.Flags,
		State: AttachedPropertyState[T, V]{
			Default:      cfg.Default,
			ValueKey:     key,
			ListenersKey: key + ":listeners",
			Changed:      cfg.Changed,
		},
		Get:      attachedGet[T, V],
		Set:      attachedSet[T, V],
		Observe:  attachedObserve[T, V],
		Attached: attached,
		Store:    cfg.Store,
	})
}

func attachedGet[T, V any](m *AttachedProperty[T, V], target T, _ apis.Metadata) (V, error) {
	if v, ok := m.store.Get(target, m.state.ValueKey); ok {
		if tv, ok := v.(V); ok {
			return tv, nil
		}
		// A nil stored for an interface V.
		var zero V
		return zero, nil
	}
	return m.state.Default, nil
}

func attachedSet[T, V any](m *AttachedProperty[T, V], target T, value V, md apis.Metadata) error {
	old, _ := attachedGet(m, target, md)
	if err := m.store.Set(target, m.state.ValueKey, value); err != nil {
		return err
	}
	if reflect.DeepEqual(old, value) {
		return nil
	}
	if m.state.Changed != nil {
		m.state.Changed(target, old, value, md)
	}
	if c, ok := m.store.Get(target, m.state.ListenersKey); ok {
		c.(*listeners.Collection).Raise(target, apis.PropertyChangedArgs{Name: m.name}, md)
	}
	return nil
}

func attachedObserve[T, V any](m *AttachedProperty[T, V], target T, l apis.EventListener, _ apis.Metadata) apis.Token {
	c, _, err := m.store.GetOrAdd(target, m.state.ListenersKey, func() any { return &listeners.Collection{} })
	if err != nil {
		return apis.EmptyToken
	}
	return c.(*listeners.Collection).AddWithToken(l)
}
