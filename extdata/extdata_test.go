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

package extdata_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/bindx/extdata"
)

type owner struct{ id int }

type empty struct{}

type holder struct{ bag extdata.Bag }

func (h *holder) ExtData() *extdata.Bag { return &h.bag }

func TestStore_IdentityScopesValues(t *testing.T) {
	s := extdata.New()
	a, b := &owner{1}, &owner{1}

	require.NoError(t, s.Set(a, "k", 10))
	v, ok := s.Get(a, "k")
	assert.True(t, ok)
	assert.Equal(t, 10, v)

	_, ok = s.Get(b, "k")
	assert.False(t, ok, "equal values with distinct identity must not share data")

	assert.True(t, s.Remove(a, "k"))
	assert.False(t, s.Remove(a, "k"))
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Clear(a))
	assert.Zero(t, s.Len())
}

func TestStore_UnsupportedOwners(t *testing.T) {
	s := extdata.New()
	for _, o := range []any{nil, 3, "str", owner{}, (*owner)(nil), &empty{}, &[0]int{}, func() {}} {
		assert.ErrorIs(t, s.Set(o, "k", 1), extdata.ErrUnsupportedOwner)
		_, ok := s.Get(o, "k")
		assert.False(t, ok)
	}
	m := map[string]int{}
	assert.NoError(t, s.Set(m, "k", 1))
}

func TestStore_HolderKeepsBagInline(t *testing.T) {
	s := extdata.New()
	h := &holder{}
	require.NoError(t, s.Set(h, "k", "v"))
	assert.Zero(t, s.Len())
	assert.Equal(t, 1, h.bag.Len())
	assert.True(t, s.Clear(h))
	assert.Zero(t, h.bag.Len())
}

func TestStore_GetOrAddRunsOncePerOwner(t *testing.T) {
	s := extdata.New()
	o := &owner{}
	var runs atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.GetOrAdd(o, "once", func() any {
				runs.Add(1)
				return struct{}{}
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), runs.Load())
}
