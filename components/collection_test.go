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

package components_test

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"dirpx.dev/bindx/components"
)

type named interface{ Name() string }

type comp struct{ name string }

func (c *comp) Name() string { return c.name }

type other struct{}

func names(items []any) []string {
	var out []string
	for _, it := range items {
		if n, ok := it.(named); ok {
			out = append(out, n.Name())
		}
	}
	return out
}

func TestCollection_PriorityOrder(t *testing.T) {
	changes := 0
	c := components.New[any](func() { changes++ })

	c.Add(&comp{"default-1"}, components.DefaultPriority)
	c.Add(&comp{"selector"}, components.SelectorPriority)
	c.Add(&comp{"attached"}, components.AttachedPriority)
	c.Add(&comp{"default-2"}, components.DefaultPriority)
	c.Add(&other{}, components.ExtensionPriority)

	assert.Equal(t, []string{"attached", "default-1", "default-2", "selector"}, names(c.Items()))
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, 5, changes)
	assert.Len(t, components.OfType[named](c), 4)
}

func TestCollection_RemoveAndToken(t *testing.T) {
	c := components.New[any](nil)
	a, b := &comp{"a"}, &comp{"b"}
	tokA := c.Add(a, 0)
	c.Add(b, 0)

	assert.True(t, c.Remove(b))
	assert.False(t, c.Remove(b))
	tokA.Dispose()
	tokA.Dispose()
	assert.Zero(t, c.Len())
	assert.Nil(t, c.Items())
}

func TestCollection_IgnoresNil(t *testing.T) {
	c := components.New[any](nil)
	var p *comp
	c.Add(p, 0)
	c.Add(nil, 0)
	assert.Zero(t, c.Len())
}

func TestCollection_ConcurrentSnapshots(t *testing.T) {
	c := components.New[any](nil)
	workers := runtime.GOMAXPROCS(0) * 4
	var wg sync.WaitGroup
	wg.Add(workers * 2)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c.Add(&comp{"x"}, i%3).Dispose()
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c.Each(func(any) bool { return true })
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, c.Len())
}
