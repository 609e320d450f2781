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

package pathobserver

import (
	"reflect"

	"dirpx.dev/bindx/apis"
)

// listenerSet stores path listeners without allocating for the common
// single-listener case. It is guarded by the owning observer's mutex.
type listenerSet struct {
	one  apis.MemberPathObserverListener
	many []apis.MemberPathObserverListener
}

func (s *listenerSet) len() int {
	switch {
	case s.many != nil:
		return len(s.many)
	case s.one != nil:
		return 1
	}
	return 0
}

func (s *listenerSet) add(l apis.MemberPathObserverListener) {
	switch {
	case s.many != nil:
		s.many = append(s.many, l)
	case s.one != nil:
		s.many = []apis.MemberPathObserverListener{s.one, l}
		s.one = nil
	default:
		s.one = l
	}
}

func (s *listenerSet) remove(l apis.MemberPathObserverListener) bool {
	if s.many == nil {
		if s.one != nil && sameListener(s.one, l) {
			s.one = nil
			return true
		}
		return false
	}
	for i, cur := range s.many {
		if !sameListener(cur, l) {
			continue
		}
		next := make([]apis.MemberPathObserverListener, 0, len(s.many)-1)
		next = append(next, s.many[:i]...)
		next = append(next, s.many[i+1:]...)
		switch len(next) {
		case 0:
			s.many = nil
		case 1:
			s.one, s.many = next[0], nil
		default:
			s.many = next
		}
		return true
	}
	return false
}

// snapshot returns the listeners in registration order. The result is never
// mutated by later add or remove calls.
func (s *listenerSet) snapshot() []apis.MemberPathObserverListener {
	switch {
	case s.many != nil:
		return s.many
	case s.one != nil:
		return []apis.MemberPathObserverListener{s.one}
	}
	return nil
}

func (s *listenerSet) clear() {
	s.one, s.many = nil, nil
}

// sameListener compares listeners by identity; listeners of non-comparable
// dynamic types never match.
func sameListener(a, b apis.MemberPathObserverListener) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
