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

// Package metrics holds the Prometheus collectors exported by bindx.
//
// Collectors are created per Metrics value and registered on the supplied
// prometheus.Registerer. A nil Registerer leaves them unregistered, which is
// what tests and embedded uses usually want.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "bindx"
)

// Metrics groups the collectors updated by the member manager and path observers.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CacheInvalidations prometheus.Counter
	PathObservers      prometheus.Gauge
}

// New builds the collectors and registers them on reg when reg is not nil.
// Collectors already registered on reg by an earlier New are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "members",
			Name:      "cache_hits_total",
			Help:      "Total number of member lookups served from the cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "members",
			Name:      "cache_misses_total",
			Help:      "Total number of member lookups resolved through providers",
		}),
		CacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "members",
			Name:      "cache_invalidations_total",
			Help:      "Total number of member cache invalidations",
		}),
		PathObservers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "path_observers_active",
			Help:      "Path observers created and not yet disposed",
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	m.CacheHits, err = register(reg, m.CacheHits)
	if err != nil {
		return nil, err
	}
	m.CacheMisses, err = register(reg, m.CacheMisses)
	if err != nil {
		return nil, err
	}
	m.CacheInvalidations, err = register(reg, m.CacheInvalidations)
	if err != nil {
		return nil, err
	}
	m.PathObservers, err = register(reg, m.PathObservers)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// MustNew is like New but panics on registration errors.
func MustNew(reg prometheus.Registerer) *Metrics {
	m, err := New(reg)
	if err != nil {
		panic(err)
	}
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) Hit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) Miss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) Invalidated() {
	if m != nil {
		m.CacheInvalidations.Inc()
	}
}

// ObserverCreated and ObserverDisposed track the live path observer gauge.
func (m *Metrics) ObserverCreated() {
	if m != nil {
		m.PathObservers.Inc()
	}
}

func (m *Metrics) ObserverDisposed() {
	if m != nil {
		m.PathObservers.Dec()
	}
}
