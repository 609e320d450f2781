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

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/bindx/metrics"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	m.Hit()
	m.Hit()
	m.Miss()
	m.Invalidated()
	m.ObserverCreated()
	m.ObserverCreated()
	m.ObserverDisposed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheInvalidations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PathObservers))

	n, err := testutil.GatherAndCount(reg,
		"bindx_members_cache_hits_total",
		"bindx_members_cache_misses_total",
		"bindx_members_cache_invalidations_total",
		"bindx_path_observers_active",
	)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestMetrics_ReuseRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := metrics.MustNew(reg)
	b := metrics.MustNew(reg)

	a.Hit()
	b.Hit()
	assert.Equal(t, 2.0, testutil.ToFloat64(b.CacheHits))
	assert.Same(t, a.CacheHits, b.CacheHits)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Hit()
		m.Miss()
		m.Invalidated()
		m.ObserverCreated()
		m.ObserverDisposed()
	})

	unregistered, err := metrics.New(nil)
	require.NoError(t, err)
	unregistered.Hit()
	assert.Equal(t, 1.0, testutil.ToFloat64(unregistered.CacheHits))
}
