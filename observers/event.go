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

package observers

import (
	"reflect"
	"strings"
	"sync"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/members"
	uref "dirpx.dev/bindx/utils/reflect"
)

// ChangedSuffix is appended to a member name to find its change event.
const ChangedSuffix = "Changed"

// EventObserver observes a member X through an event member named XChanged:
// an exported apis.EventSource field or a nullary method returning one.
type EventObserver struct {
	events sync.Map // key: eventKey, val: *members.Event (nil when absent)
}

var (
	_ apis.MemberObserverProvider = (*EventObserver)(nil)
	_ apis.MemberObserverHandler  = (*EventObserver)(nil)
	_ apis.Invalidator            = (*EventObserver)(nil)
)

type eventKey struct {
	t    reflect.Type
	name string
}

// NewEventObserver returns an empty EventObserver.
func NewEventObserver() *EventObserver { return &EventObserver{} }

func (o *EventObserver) TryGetMemberObserver(t reflect.Type, member any, _ apis.Metadata) apis.MemberObserver {
	name := memberName(member)
	if t == nil || name == "" || strings.HasPrefix(name, "[") {
		return apis.MemberObserver{}
	}
	if ev := o.event(t, name+ChangedSuffix); ev != nil {
		return apis.MemberObserver{Handler: o, Member: ev}
	}
	return apis.MemberObserver{}
}

func (o *EventObserver) TryObserve(target any, member any, listener apis.EventListener, md apis.Metadata) apis.Token {
	ev, ok := member.(*members.Event)
	if !ok {
		return nil
	}
	tok, err := ev.TrySubscribe(target, listener, md)
	if err != nil {
		return nil
	}
	return tok
}

// Invalidate forgets looked up events of t, or all of them when t is nil.
func (o *EventObserver) Invalidate(t reflect.Type, _ apis.Metadata) {
	if t == nil {
		o.events.Clear()
		return
	}
	o.events.Range(func(k, _ any) bool {
		if k.(eventKey).t == t {
			o.events.Delete(k)
		}
		return true
	})
}

func (o *EventObserver) event(t reflect.Type, name string) *members.Event {
	k := eventKey{t: t, name: name}
	if v, ok := o.events.Load(k); ok {
		return v.(*members.Event)
	}
	var ev *members.Event
	if st, err := uref.Normalize(t); err == nil && st.Kind() == reflect.Struct {
		if f, ok := st.FieldByName(name); ok {
			ev = members.NewEventField(t, f, nil)
		}
	}
	if ev == nil {
		if m, ok := t.MethodByName(name); ok {
			ev = members.NewEventMethod(t, m, nil)
		}
	}
	v, _ := o.events.LoadOrStore(k, ev)
	return v.(*members.Event)
}
