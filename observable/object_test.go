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

package observable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/listeners"
	"dirpx.dev/bindx/observable"
)

type person struct {
	observable.Object
	name string
}

func (p *person) Name() string { return p.name }

func (p *person) SetName(v string) { observable.Set(&p.Object, p, &p.name, v, "Name") }

func TestObject_RaisesOnChangeOnly(t *testing.T) {
	p := &person{}
	var got []string
	tok := p.PropertyChanged().Subscribe(listeners.Func(func(sender any, msg any, _ apis.Metadata) {
		assert.Same(t, p, sender)
		got = append(got, msg.(apis.PropertyChangedArgs).Name)
	}))

	p.SetName("ann")
	p.SetName("ann")
	p.SetName("bob")
	assert.Equal(t, []string{"Name", "Name"}, got)

	tok.Dispose()
	p.SetName("carl")
	assert.Len(t, got, 2)
	assert.Zero(t, p.PropertyChangedListeners().Count())
}
