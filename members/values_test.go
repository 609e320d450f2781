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

package members_test

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/extdata"
	"dirpx.dev/bindx/listeners"
	"dirpx.dev/bindx/members"
	"dirpx.dev/bindx/metadata"
)

func TestArrayElement(t *testing.T) {
	s := []string{"a", "b"}
	el, err := members.NewArrayElement(reflect.TypeOf(s), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "[1]", el.Name())
	assert.True(t, el.CanWrite())

	v, err := el.GetValue(s, nil)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
	require.NoError(t, el.SetValue(s, "z", nil))
	assert.Equal(t, "z", s[1])

	_, err = el.GetValue([]string{"only"}, nil)
	assert.ErrorIs(t, err, members.ErrIndexOutOfRange)

	arr := [2]int{1, 2}
	byValue, err := members.NewArrayElement(reflect.TypeOf(arr), 0, nil)
	require.NoError(t, err)
	assert.False(t, byValue.CanWrite())
	assert.ErrorIs(t, byValue.SetValue(arr, 5, nil), apis.ErrMemberAccess)

	byPtr, err := members.NewArrayElement(reflect.TypeOf(&arr), 0, nil)
	require.NoError(t, err)
	require.NoError(t, byPtr.SetValue(&arr, "5", nil))
	assert.Equal(t, 5, arr[0])

	_, err = members.NewArrayElement(reflect.TypeOf(arr), 2, nil)
	assert.ErrorIs(t, err, members.ErrIndexOutOfRange)
	_, err = members.NewArrayElement(reflect.TypeOf(""), 0, nil)
	assert.ErrorIs(t, err, members.ErrTargetType)
}

func TestMapIndexer(t *testing.T) {
	m := map[int]string{1: "one"}
	idx, err := members.NewMapIndexer(reflect.TypeOf(m), "1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Key())

	v, err := idx.GetValue(m, nil)
	require.NoError(t, err)
	assert.Equal(t, "one", v)

	require.NoError(t, idx.SetValue(m, "uno", nil))
	assert.Equal(t, "uno", m[1])

	missing, err := members.NewMapIndexer(reflect.TypeOf(m), "2", nil)
	require.NoError(t, err)
	v, err = missing.GetValue(m, nil)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	var nilMap map[int]string
	assert.ErrorIs(t, idx.SetValue(nilMap, "x", nil), members.ErrNilTarget)

	_, err = members.NewMapIndexer(reflect.TypeOf(m), "x", nil)
	assert.Error(t, err)
}

func TestConstant(t *testing.T) {
	c := members.NewConstant(reflect.TypeOf([3]int{}), "Len", 3, 0, false)
	v, err := c.GetValue(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, reflect.TypeOf(0), c.Type())
	assert.False(t, c.CanWrite())
	assert.ErrorIs(t, c.SetValue(nil, 4, nil), apis.ErrMemberAccess)
	assert.Equal(t, apis.EmptyToken, c.TryObserve(nil, listeners.Func(func(any, any, apis.Metadata) {}), nil))

	ignoring := members.NewConstant(nil, "X", "x", apis.StaticPublic, true)
	assert.True(t, ignoring.CanWrite())
	assert.NoError(t, ignoring.SetValue(nil, "y", nil))
	assert.Equal(t, apis.StaticPublic, ignoring.AccessModifiers())
}

type counterState struct{ prefix string }

func TestDelegate_AttachedCallbackOncePerTarget(t *testing.T) {
	store := extdata.New()
	attached := map[*Person]int{}
	var mu sync.Mutex

	d := members.NewDelegate(members.DelegateConfig[*Person, string, counterState]{
		Name:  "Title",
		State: counterState{prefix: "Dr. "},
		Get: func(m *members.Delegate[*Person, string, counterState], p *Person, _ apis.Metadata) (string, error) {
			return m.State().prefix + p.Last, nil
		},
		Set: func(_ *members.Delegate[*Person, string, counterState], p *Person, v string, _ apis.Metadata) error {
			p.Last = v
			return nil
		},
		Observe: func(_ *members.Delegate[*Person, string, counterState], p *Person, l apis.EventListener, _ apis.Metadata) apis.Token {
			return p.PropertyChanged().Subscribe(l)
		},
		Attached: func(_ *members.Delegate[*Person, string, counterState], p *Person, _ apis.Metadata) {
			mu.Lock()
			attached[p]++
			mu.Unlock()
		},
		Store: store,
	})
	assert.Equal(t, personPtr, d.DeclaringType())
	assert.True(t, d.AccessModifiers().Has(apis.Attached))

	a, b := &Person{Last: "Who"}, &Person{}
	l := listeners.Func(func(any, any, apis.Metadata) {})
	for i := 0; i < 5; i++ {
		v, err := d.GetValue(a, nil)
		require.NoError(t, err)
		assert.Equal(t, "Dr. Who", v)
		require.NoError(t, d.SetValue(b, "No", nil))
		d.TryObserve(a, l, nil).Dispose()
		d.TryObserve(b, l, nil).Dispose()
	}
	assert.Equal(t, map[*Person]int{a: 1, b: 1}, attached)

	c := &Person{}
	_, err := d.GetValue(c, metadata.New(metadata.SuppressAttachedCallback.Value(true)))
	require.NoError(t, err)
	assert.NotContains(t, attached, c)

	_, err = d.GetValue(&Base{}, nil)
	assert.ErrorIs(t, err, members.ErrTargetType)
	_, err = d.GetValue(nil, nil)
	assert.ErrorIs(t, err, members.ErrNilTarget)
}

type marker struct{}

func TestDelegate_ZeroSizeTargetsSkipAttachedCallback(t *testing.T) {
	runs := 0
	d := members.NewDelegate(members.DelegateConfig[*marker, int, struct{}]{
		Name:     "N",
		Get:      func(*members.Delegate[*marker, int, struct{}], *marker, apis.Metadata) (int, error) { return 7, nil },
		Attached: func(*members.Delegate[*marker, int, struct{}], *marker, apis.Metadata) { runs++ },
		Store:    extdata.New(),
	})

	// Distinct zero-size values may share one address, so none of them is tracked.
	for _, m := range []*marker{{}, {}} {
		v, err := d.GetValue(m, nil)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	}
	assert.Zero(t, runs)
}

func TestDelegate_ConcurrentAttach(t *testing.T) {
	var calls sync.Map
	d := members.NewDelegate(members.DelegateConfig[*Person, int, struct{}]{
		Name: "N",
		Get:  func(*members.Delegate[*Person, int, struct{}], *Person, apis.Metadata) (int, error) { return 1, nil },
		Attached: func(_ *members.Delegate[*Person, int, struct{}], p *Person, _ apis.Metadata) {
			_, loaded := calls.LoadOrStore(p, true)
			assert.False(t, loaded, "attached twice")
		},
		Store: extdata.New(),
	})
	p := &Person{}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.GetValue(p, nil)
		}()
	}
	wg.Wait()
	_, ok := calls.Load(p)
	assert.True(t, ok)
}

func TestDelegate_Capabilities(t *testing.T) {
	ro := members.NewDelegate(members.DelegateConfig[*Person, int, struct{}]{Name: "RO",
		Get: func(*members.Delegate[*Person, int, struct{}], *Person, apis.Metadata) (int, error) { return 1, nil }})
	assert.ErrorIs(t, ro.SetValue(&Person{}, 1, nil), apis.ErrMemberAccess)
	assert.Equal(t, apis.EmptyToken, ro.TryObserve(&Person{}, listeners.Func(func(any, any, apis.Metadata) {}), nil))

	wo := members.NewDelegate(members.DelegateConfig[*Person, int, struct{}]{Name: "WO",
		Set: func(*members.Delegate[*Person, int, struct{}], *Person, int, apis.Metadata) error { return nil }})
	_, err := wo.GetValue(&Person{}, nil)
	assert.ErrorIs(t, err, apis.ErrMemberAccess)
	assert.ErrorIs(t, wo.SetValue(&Person{}, "text", nil), members.ErrTargetType)
}

func TestAttachedProperty(t *testing.T) {
	store := extdata.New()
	var changes [][2]int
	attachedTargets := 0
	prop := members.NewAttachedProperty(members.AttachedPropertyConfig[*Person, int]{
		Name:     "Rank",
		Default:  -1,
		Store:    store,
		Attached: func(*Person, apis.Metadata) { attachedTargets++ },
		Changed: func(_ *Person, o, n int, _ apis.Metadata) {
			changes = append(changes, [2]int{o, n})
		},
	})

	p := &Person{}
	v, err := prop.GetValue(p, nil)
	require.NoError(t, err)
	assert.Equal(t, -1, v)

	var raised []string
	tok := prop.TryObserve(p, listeners.Func(func(_ any, msg any, _ apis.Metadata) {
		raised = append(raised, msg.(apis.PropertyChangedArgs).Name)
	}), nil)

	require.NoError(t, prop.SetValue(p, 3, nil))
	require.NoError(t, prop.SetValue(p, 3, nil))
	require.NoError(t, prop.SetValue(p, 4, nil))
	v, _ = prop.GetValue(p, nil)
	assert.Equal(t, 4, v)
	assert.Equal(t, []string{"Rank", "Rank"}, raised)
	assert.Equal(t, [][2]int{{-1, 3}, {3, 4}}, changes)
	assert.Equal(t, 1, attachedTargets)

	tok.Dispose()
	require.NoError(t, prop.SetValue(p, 5, nil))
	assert.Len(t, raised, 2)

	other := &Person{}
	v, _ = prop.GetValue(other, nil)
	assert.Equal(t, -1, v)
	assert.Equal(t, 2, attachedTargets)

	assert.True(t, store.Clear(p))
	v, _ = prop.GetValue(p, nil)
	assert.Equal(t, -1, v)
}

func TestAttachedProperty_InterfaceValueSetToNil(t *testing.T) {
	prop := members.NewAttachedProperty(members.AttachedPropertyConfig[*Person, any]{
		Name:    "Tag",
		Default: "none",
		Store:   extdata.New(),
	})

	p := &Person{}
	require.NoError(t, prop.SetValue(p, "x", nil))
	require.NoError(t, prop.SetValue(p, nil, nil))

	var v any
	require.NotPanics(t, func() {
		var err error
		v, err = prop.GetValue(p, nil)
		require.NoError(t, err)
	})
	assert.Nil(t, v)
}

func TestExpression(t *testing.T) {
	om := &fakeObservation{}
	e, err := members.NewExpression(personPtr, members.ExpressionConfig{
		Name:      "Display",
		Source:    `this.First + sep + this.Last`,
		Vars:      map[string]any{"sep": " "},
		DependsOn: []string{"First", "Last"},
	}, om)
	require.NoError(t, err)
	assert.False(t, e.CanWrite())

	v, err := e.GetValue(&Person{First: "Ada", Last: "L"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada L", v)
	assert.ErrorIs(t, e.SetValue(&Person{}, "x", nil), apis.ErrMemberAccess)
	_, err = e.GetValue(nil, nil)
	assert.ErrorIs(t, err, members.ErrNilTarget)

	e.TryObserve(&Person{}, listeners.Func(func(any, any, apis.Metadata) {}), nil).Dispose()
	assert.Equal(t, []string{"First", "Last"}, om.requested)
	assert.Equal(t, 2, om.observed)

	typed, err := members.NewExpression(personPtr, members.ExpressionConfig{
		Name:       "Count",
		Source:     `len(this.Tags)`,
		ResultType: reflect.TypeOf(int64(0)),
	}, nil)
	require.NoError(t, err)
	v, err = typed.GetValue(&Person{Tags: []string{"a", "b"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = members.NewExpression(personPtr, members.ExpressionConfig{Name: "Bad", Source: `this.(`}, nil)
	assert.Error(t, err)
}
