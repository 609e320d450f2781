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

	"dirpx.dev/bindx/apis"
)

var notifierType = reflect.TypeFor[apis.PropertyChangedNotifier]()

// PropertyChanged observes members of types implementing
// apis.PropertyChangedNotifier, filtering notifications by member name.
//
// A notification matches a member when its name is empty (everything
// changed), equals the member name, or is "[]" for indexer members.
type PropertyChanged struct{}

var (
	_ apis.MemberObserverProvider = PropertyChanged{}
	_ apis.MemberObserverHandler  = PropertyChanged{}
)

func (PropertyChanged) TryGetMemberObserver(t reflect.Type, member any, _ apis.Metadata) apis.MemberObserver {
	name := memberName(member)
	if t == nil || name == "" || !implementsNotifier(t) {
		return apis.MemberObserver{}
	}
	return apis.MemberObserver{Handler: PropertyChanged{}, Member: name}
}

func (PropertyChanged) TryObserve(target any, member any, listener apis.EventListener, _ apis.Metadata) apis.Token {
	n, ok := target.(apis.PropertyChangedNotifier)
	if !ok || listener == nil {
		return nil
	}
	src := n.PropertyChanged()
	if src == nil {
		return nil
	}
	name, _ := member.(string)
	return src.Subscribe(&nameFilter{name: name, next: listener})
}

func implementsNotifier(t reflect.Type) bool {
	if t.Implements(notifierType) {
		return true
	}
	return t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(notifierType)
}

// Matches reports whether a change notification named changed concerns member.
func Matches(member, changed string) bool {
	if changed == "" || changed == member {
		return true
	}
	return changed == "[]" && strings.HasPrefix(member, "[")
}

// nameFilter forwards matching property notifications to next.
type nameFilter struct {
	name string
	next apis.EventListener
}

var _ apis.WeakEventListener = (*nameFilter)(nil)

func (f *nameFilter) TryHandle(sender any, message any, md apis.Metadata) bool {
	var changed string
	switch a := message.(type) {
	case apis.PropertyChangedArgs:
		changed = a.Name
	case *apis.PropertyChangedArgs:
		if a != nil {
			changed = a.Name
		}
	case string:
		changed = a
	default:
		return f.alive()
	}
	if !Matches(f.name, changed) {
		return f.alive()
	}
	return f.next.TryHandle(sender, message, md)
}

// Target reports the wrapped listener's liveness to the listener collection.
func (f *nameFilter) Target() any {
	if w, ok := f.next.(apis.WeakEventListener); ok {
		return w.Target()
	}
	return f
}

func (f *nameFilter) alive() bool { return f.Target() != nil }

func memberName(member any) string {
	switch m := member.(type) {
	case string:
		return m
	case apis.MemberInfo:
		return m.Name()
	}
	return ""
}
