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

package strategy_test

import (
	"reflect"
	"runtime"
	"sync"
	"testing"

	apis "dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/strategy"
)

// Named types for stable members.
type Foo struct{ X int }
type Bar[T any] struct{ X T }

func (f *Foo) Double() int { return f.X * 2 }

// TestReflectProvider_ConcurrentResolve_NoRace verifies that TryGetMembers is
// race-free and returns stable members under heavy concurrency.
func TestReflectProvider_ConcurrentResolve_NoRace(t *testing.T) {
	p := strategy.NewReflectProvider(nil)

	type req struct {
		t    reflect.Type
		name string
		mt   apis.MemberType
	}
	reqs := []req{
		{reflect.TypeOf(&Foo{}), "X", apis.Accessor},
		{reflect.TypeOf(&Foo{}), "Double", apis.Method},
		{reflect.TypeOf(Bar[int]{}), "X", apis.Accessor},
		{reflect.TypeOf(&Bar[string]{}), "X", apis.Accessor},
		{reflect.TypeOf([]Foo{}), "[0]", apis.Accessor},
		{reflect.TypeOf(map[string]int{}), "Len", apis.Accessor},
	}

	// Single-thread sanity and baseline.
	base := make([]apis.MemberInfo, len(reqs))
	for i, r := range reqs {
		ms := p.TryGetMembers(nil, r.t, r.name, r.mt, nil)
		if len(ms) != 1 {
			t.Fatalf("TryGetMembers(%v, %q) = %v, want one member", r.t, r.name, ms)
		}
		base[i] = ms[0]
	}

	workers := runtime.GOMAXPROCS(0) * 4
	iters := 2000

	var wg sync.WaitGroup
	wg.Add(workers)
	errs := make(chan string, workers)

	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				j := (i + id) % len(reqs)
				r := reqs[j]
				ms := p.TryGetMembers(nil, r.t, r.name, r.mt, nil)
				if len(ms) != 1 || ms[0] != base[j] {
					errs <- "unstable member for " + r.t.String() + "." + r.name
					return
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatal(e)
	}
}
