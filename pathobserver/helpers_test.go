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

package pathobserver_test

import (
	"time"

	"github.com/rs/zerolog"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/components"
	"dirpx.dev/bindx/observable"
	"dirpx.dev/bindx/observers"
	"dirpx.dev/bindx/path"
	"dirpx.dev/bindx/pathobserver"
	"dirpx.dev/bindx/resolver"
	"dirpx.dev/bindx/strategy"
)

const (
	defaultWait = 2 * time.Second
	defaultTick = 10 * time.Millisecond
)

type Leaf struct {
	observable.Object
	value int
}

func (l *Leaf) Value() int     { return l.value }
func (l *Leaf) SetValue(v int) { observable.Set(&l.Object, l, &l.value, v, "Value") }

type Other struct {
	observable.Object
	Label string
}

type Root struct {
	observable.Object
	child *Leaf
	item  any
}

func (r *Root) Child() *Leaf      { return r.child }
func (r *Root) SetChild(c *Leaf)  { observable.Set(&r.Object, r, &r.child, c, "Child") }
func (r *Root) Item() any         { return r.item }
func (r *Root) SetItem(v any)     { r.item = v; r.RaisePropertyChanged(r, "Item") }
func (r *Root) Touch(name string) { r.RaisePropertyChanged(r, name) }

// stack wires a member manager and an observation manager the way the builder does.
type stack struct {
	mm apis.MemberManager
	om *observers.Manager
}

func newStack(cfg apis.Config) stack {
	om := observers.NewManager(zerolog.Nop())
	om.AddObserverProvider(observers.PropertyChanged{}, components.DefaultPriority)
	om.AddObserverProvider(observers.NewEventObserver(), components.SelectorPriority)
	om.AddPathProvider(path.NewProvider(zerolog.Nop()), components.DefaultPriority)
	om.AddPathObserverProvider(pathobserver.NewProvider(cfg), components.DefaultPriority)
	mm := resolver.New(cfg, resolver.WithProvider(strategy.NewReflectProvider(om), components.DefaultPriority))
	om.BindMemberManager(mm)
	return stack{mm: mm, om: om}
}

func (s stack) observe(source any, p string, opts pathobserver.Options) *pathobserver.Observer {
	o, err := pathobserver.New(s.mm, source, path.MustParse(p), opts)
	if err != nil {
		panic(err)
	}
	return o
}

type pathRecorder struct {
	members int
	last    int
	errs    []error
}

func (r *pathRecorder) OnPathMembersChanged(apis.MemberPathObserver) { r.members++ }
func (r *pathRecorder) OnLastMemberChanged(apis.MemberPathObserver)  { r.last++ }
func (r *pathRecorder) OnError(_ apis.MemberPathObserver, err error) { r.errs = append(r.errs, err) }

func lastValue(o apis.MemberPathObserver) (any, error) {
	lm, err := o.GetLastMember(nil)
	if err != nil {
		return nil, err
	}
	return lm.GetValue(nil)
}

func mustPath(p string) apis.MemberPath { return path.MustParse(p) }
