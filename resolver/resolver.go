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
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/components"
	"dirpx.dev/bindx/metadata"
	"dirpx.dev/bindx/metrics"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for invalidation records.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithMetrics sets the collectors updated on cache hits, misses and invalidations.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithCache replaces the cache chosen from the config.
func WithCache(c Cache) Option {
	return func(m *Manager) {
		if c != nil {
			m.cache = c
		}
	}
}

// WithProvider adds p with the given priority.
func WithProvider(p apis.MemberProvider, priority int) Option {
	return func(m *Manager) { m.providers.Add(p, priority) }
}

// Manager resolves members through a prioritized list of providers and caches
// every result, empty ones included.
//
// A Manager built from a config with Synchronized=false must not be used from
// several goroutines at once. Synchronized managers lock the cache and coalesce
// concurrent misses for the same key.
type Manager struct {
	providers      *components.Collection[apis.MemberProvider]
	cache          Cache
	flags          apis.MemberFlags
	ignoreAttached bool
	sf             *singleflight.Group
	log            zerolog.Logger
	metrics        *metrics.Metrics

	// gen counts invalidations. A lookup only stores its result when no
	// invalidation happened since it started; fence orders that check
	// against Invalidate.
	gen   atomic.Uint64
	fence sync.RWMutex
}

var _ apis.MemberManager = (*Manager)(nil)

// New constructs a Manager for cfg. Providers are added with WithProvider or
// through Providers().Add afterwards; changing the provider list clears the cache.
func New(cfg apis.Config, opts ...Option) *Manager {
	m := &Manager{
		cache:          NewCache(cfg.CacheStrategy, cfg.CacheCapacity),
		flags:          cfg.MemberFlags,
		ignoreAttached: cfg.IgnoreAttachedMembers,
		log:            zerolog.Nop(),
	}
	if m.flags == 0 {
		m.flags = apis.InstancePublicAll
	}
	m.providers = components.New[apis.MemberProvider](func() { m.Invalidate(nil, nil) })
	for _, opt := range opts {
		opt(m)
	}
	if cfg.Synchronized {
		m.cache = Locked(m.cache)
		m.sf = &singleflight.Group{}
	}
	return m
}

// Providers exposes the provider collection.
func (m *Manager) Providers() *components.Collection[apis.MemberProvider] { return m.providers }

// AddProvider is shorthand for Providers().Add.
func (m *Manager) AddProvider(p apis.MemberProvider, priority int) apis.Token {
	return m.providers.Add(p, priority)
}

// CacheLen reports the number of cached lookups.
func (m *Manager) CacheLen() int { return m.cache.Len() }

// GetMember returns the best member for the request or nil.
func (m *Manager) GetMember(t reflect.Type, name string, memberTypes apis.MemberType, flags apis.MemberFlags, md apis.Metadata) apis.MemberInfo {
	return first(m.GetMembers(t, name, memberTypes, flags, md))
}

// GetMembers returns every selected member for the request. The returned
// slice is shared with the cache and must not be modified.
func (m *Manager) GetMembers(t reflect.Type, name string, memberTypes apis.MemberType, flags apis.MemberFlags, md apis.Metadata) []apis.MemberInfo {
	return m.resolve(newResolveContext(m), t, name, memberTypes, flags, md)
}

// Invalidate drops cached lookups for t, or all of them when t is nil, and
// forwards the call to providers implementing apis.Invalidator.
func (m *Manager) Invalidate(t reflect.Type, md apis.Metadata) {
	m.fence.Lock()
	m.gen.Add(1)
	n := m.cache.Invalidate(t)
	m.fence.Unlock()
	m.metrics.Invalidated()
	m.providers.Each(func(p apis.MemberProvider) bool {
		if inv, ok := p.(apis.Invalidator); ok {
			inv.Invalidate(t, md)
		}
		return true
	})
	if e := m.log.Debug(); e.Enabled() {
		e.Str("type", typeName(t)).Int("dropped", n).Msg("member cache invalidated")
	}
}

func (m *Manager) effectiveFlags(flags apis.MemberFlags, md apis.Metadata) apis.MemberFlags {
	if flags == 0 {
		flags = m.flags
	}
	if m.ignoreAttached || metadata.IgnoreAttachedMembers.Get(md) {
		flags = flags.Without(apis.Attached)
	}
	return flags
}

func (m *Manager) resolve(rc *resolveContext, t reflect.Type, name string, memberTypes apis.MemberType, flags apis.MemberFlags, md apis.Metadata) []apis.MemberInfo {
	if t == nil || name == "" || memberTypes == 0 {
		return nil
	}
	k := Key{Type: t, Name: name, MemberTypes: memberTypes, Flags: m.effectiveFlags(flags, md)}
	if v, ok := m.cache.Get(k); ok {
		m.metrics.Hit()
		return v
	}
	// A nested request for a name already being resolved yields nothing and
	// leaves the cache alone.
	if rc.InFlight(name) {
		return nil
	}
	m.metrics.Miss()

	// Only top-level lookups are coalesced: nested ones run inside the
	// owner's flight and would deadlock on a cross-goroutine cycle.
	gen := m.gen.Load()
	if m.sf == nil || rc.depth > 0 {
		return m.compute(rc, k, gen, md)
	}
	// The generation is part of the flight key, so lookups started after an
	// invalidation never join a flight that began before it.
	v, _, _ := m.sf.Do(flightKey(k, gen), func() (any, error) {
		if v, ok := m.cache.Get(k); ok {
			return v, nil
		}
		return m.compute(rc, k, gen, md), nil
	})
	return v.([]apis.MemberInfo)
}

func (m *Manager) compute(rc *resolveContext, k Key, gen uint64, md apis.Metadata) []apis.MemberInfo {
	rc.enter(k.Name)
	defer rc.leave(k.Name)

	var found []apis.MemberInfo
	m.providers.Each(func(p apis.MemberProvider) bool {
		for _, mi := range p.TryGetMembers(rc, k.Type, k.Name, k.MemberTypes, md) {
			if mi == nil || !k.MemberTypes.Intersects(mi.MemberType()) || !k.Flags.Matches(mi.AccessModifiers()) {
				continue
			}
			found = append(found, mi)
		}
		return true
	})
	out := selectMembers(found)
	m.fence.RLock()
	if m.gen.Load() == gen {
		m.cache.Put(k, out)
	}
	m.fence.RUnlock()
	return out
}

// selectMembers keeps, in provider priority order, the first accessor, the
// first event and one method per distinct parameter signature.
func selectMembers(found []apis.MemberInfo) []apis.MemberInfo {
	if len(found) <= 1 {
		return found
	}
	var (
		out        = make([]apis.MemberInfo, 0, len(found))
		accessor   bool
		event      bool
		signatures map[string]struct{}
	)
	for _, mi := range found {
		switch mi.MemberType() {
		case apis.Accessor:
			if accessor {
				continue
			}
			accessor = true
		case apis.Event:
			if event {
				continue
			}
			event = true
		case apis.Method:
			sig := signature(mi)
			if signatures == nil {
				signatures = make(map[string]struct{})
			}
			if _, dup := signatures[sig]; dup {
				continue
			}
			signatures[sig] = struct{}{}
		}
		out = append(out, mi)
	}
	return out
}

func signature(mi apis.MemberInfo) string {
	mm, ok := mi.(apis.MethodMemberInfo)
	if !ok {
		return ""
	}
	ps := mm.Parameters()
	sig := make([]byte, 0, 16*len(ps))
	for _, p := range ps {
		if p.IsVariadic {
			sig = append(sig, "..."...)
		}
		sig = append(sig, p.Type.String()...)
		sig = append(sig, ',')
	}
	return string(sig)
}

func flightKey(k Key, gen uint64) string {
	return fmt.Sprintf("%d|%p|%s|%d|%d", gen, k.Type, k.Name, k.MemberTypes, k.Flags)
}

func first(ms []apis.MemberInfo) apis.MemberInfo {
	if len(ms) == 0 {
		return nil
	}
	return ms[0]
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<all>"
	}
	return t.String()
}
