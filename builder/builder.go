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

package builder

import (
	"reflect"
	"sync/atomic"
	"weak"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/components"
	"dirpx.dev/bindx/listeners"
	"dirpx.dev/bindx/metrics"
	"dirpx.dev/bindx/observers"
	"dirpx.dev/bindx/path"
	"dirpx.dev/bindx/pathobserver"
	"dirpx.dev/bindx/registry"
	"dirpx.dev/bindx/resolver"
	"dirpx.dev/bindx/strategy"
)

// Ext is the extension payload understood by the default builder.
// Both Ext and *Ext are accepted; any other payload is treated as empty.
type Ext struct {
	// Logger receives component logs. Nil means zerolog.Nop().
	Logger *zerolog.Logger
	// Registerer receives the member metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
	// Extensions overrides the extension method provider. When nil the
	// provider of the previous member manager is carried over, or a new one is made.
	Extensions *strategy.Extensions
}

func extOf(ext any) Ext {
	switch e := ext.(type) {
	case Ext:
		return e
	case *Ext:
		if e != nil {
			return *e
		}
	}
	return Ext{}
}

func (e Ext) logger() zerolog.Logger {
	if e.Logger == nil {
		return zerolog.Nop()
	}
	return *e.Logger
}

func (e Ext) metrics() *metrics.Metrics {
	m, err := metrics.New(e.Registerer)
	if err != nil {
		l := e.logger()
		l.Warn().Err(err).Msg("member metrics disabled")
		return nil
	}
	return m
}

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildRegistry builds and returns a new apis.Registry based on the provided configuration
// and pre-existing registry. If a pre-existing registry is provided, its entries are copied
// into the new registry.
func (b *builder) BuildRegistry(cfg apis.Config, prev apis.Registry, _ any) apis.Registry {
	nreg := registry.New(cfg)
	if prev != nil {
		for _, e := range prev.Entries() {
			_ = nreg.Register(e.Type, e.Member)
		}
	}
	return nreg
}

// BuildObservationManager builds the observation façade: property-changed and
// "<Name>Changed" event observers, the path parser and the path observer provider.
// Previous managers hold no state worth migrating.
func (b *builder) BuildObservationManager(cfg apis.Config, _ apis.ObservationManager, ext any) apis.ObservationManager {
	e := extOf(ext)
	log := e.logger()
	listeners.SetLogger(log)

	om := observers.NewManager(log)
	om.AddObserverProvider(observers.PropertyChanged{}, components.DefaultPriority)
	om.AddObserverProvider(observers.NewEventObserver(), components.SelectorPriority)
	om.AddPathProvider(path.NewProvider(log), components.DefaultPriority)
	om.AddPathObserverProvider(pathobserver.NewProvider(cfg,
		pathobserver.WithLogger(log),
		pathobserver.WithMetrics(e.metrics()),
	), components.DefaultPriority)
	return om
}

// BuildMemberManager builds a member manager resolving attached members from
// reg, extension methods and reflected members, in that priority order.
// Registry and extension changes invalidate the manager's cache.
func (b *builder) BuildMemberManager(cfg apis.Config, reg apis.Registry, om apis.ObservationManager, prev apis.MemberManager, ext any) apis.MemberManager {
	e := extOf(ext)
	exts := e.Extensions
	if exts == nil {
		exts = ExtensionsOf(prev)
	}
	if exts == nil {
		exts = strategy.NewExtensions()
	}

	opts := []resolver.Option{
		resolver.WithLogger(e.logger()),
		resolver.WithMetrics(e.metrics()),
	}
	if reg != nil {
		opts = append(opts, resolver.WithProvider(strategy.NewAttachedProvider(reg), components.AttachedPriority))
	}
	opts = append(opts,
		resolver.WithProvider(exts, components.ExtensionPriority),
		resolver.WithProvider(strategy.NewReflectProvider(om), components.DefaultPriority),
	)
	mm := resolver.New(cfg, opts...)

	if reg != nil {
		invalidateOn(reg.OnChanged, mm)
	}
	invalidateOn(exts.OnChanged, mm)
	if binder, ok := om.(apis.MemberManagerBinder); ok {
		binder.BindMemberManager(mm)
	}
	return mm
}

// ExtensionsOf returns the extension method provider of a member manager built
// by this package, or nil.
func ExtensionsOf(mm apis.MemberManager) *strategy.Extensions {
	m, ok := mm.(*resolver.Manager)
	if !ok || m == nil {
		return nil
	}
	if found := components.OfType[*strategy.Extensions](m.Providers()); len(found) > 0 {
		return found[0]
	}
	return nil
}

// invalidateOn subscribes mm to a change feed without keeping it alive. Once
// mm is collected the subscription removes itself on the next change.
func invalidateOn(subscribe func(func(reflect.Type)) apis.Token, mm *resolver.Manager) {
	wp := weak.Make(mm)
	var tok atomic.Pointer[apis.Token]
	h := subscribe(func(t reflect.Type) {
		if m := wp.Value(); m != nil {
			m.Invalidate(t, nil)
			return
		}
		if p := tok.Load(); p != nil {
			(*p).Dispose()
		}
	})
	tok.Store(&h)
}
