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
	"errors"
	"fmt"
	"reflect"
	"strings"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/listeners"
	"dirpx.dev/bindx/observable"
)

type Base struct {
	ID int
}

type Person struct {
	Base
	observable.Object
	First  string
	Last   string
	Tags   []string
	Scores map[string]int
	hidden int

	Renamed listeners.Collection
	age     int
	items   map[string]string
}

func (p *Person) Age() int { return p.age }

func (p *Person) SetAge(v int) error {
	if v < 0 {
		return errors.New("negative age")
	}
	p.age = v
	p.RaisePropertyChanged(p, "Age")
	return nil
}

func (p *Person) GetNick() string { return strings.ToLower(p.First) }

func (p *Person) Greet(greeting string, times int) string {
	return strings.Repeat(greeting+" "+p.First+";", times)
}

func (p *Person) Join(sep string, parts ...string) string { return strings.Join(parts, sep) }

func (p *Person) Fail() error { return fmt.Errorf("failed for %s", p.First) }

func (p *Person) Item(key string) string { return p.items[key] }

func (p *Person) SetItem(key string, v string) {
	if p.items == nil {
		p.items = map[string]string{}
	}
	p.items[key] = v
}

func (p *Person) Saved() apis.EventSource { return &p.Renamed }

var personPtr = reflect.TypeOf(&Person{})
var personVal = reflect.TypeOf(Person{})

func field(t reflect.Type, name string) reflect.StructField {
	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	f, ok := st.FieldByName(name)
	if !ok {
		panic("no field " + name)
	}
	return f
}

func method(t reflect.Type, name string) reflect.Method {
	m, ok := t.MethodByName(name)
	if !ok {
		panic("no method " + name)
	}
	return m
}

// fakeObservation is an ObservationManager whose member observers hand out counted tokens.
type fakeObservation struct {
	requested []string
	observed  int
}

func (f *fakeObservation) GetMemberObserver(_ reflect.Type, member any, _ apis.Metadata) apis.MemberObserver {
	f.requested = append(f.requested, fmt.Sprint(member))
	return apis.MemberObserver{Handler: f, Member: member}
}

func (f *fakeObservation) TryObserve(any, any, apis.EventListener, apis.Metadata) apis.Token {
	f.observed++
	return apis.EmptyToken
}

func (f *fakeObservation) GetMemberPath(any, apis.Metadata) (apis.MemberPath, error) {
	return nil, nil
}

func (f *fakeObservation) GetMemberPathObserver(any, any, apis.Metadata) (apis.MemberPathObserver, error) {
	return nil, nil
}
