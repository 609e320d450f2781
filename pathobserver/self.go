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

// self is the last member of an empty path: it reads the target itself.
type self struct{}

var _ apis.AccessorMemberInfo = self{}

func (self) Name() string                      { return "" }
func (self) DeclaringType() reflect.Type       { return nil }
func (self) Type() reflect.Type                { return reflect.TypeFor[any]() }
func (self) Underlying() any                   { return nil }
func (self) MemberType() apis.MemberType       { return apis.Accessor }
func (self) AccessModifiers() apis.MemberFlags { return apis.InstancePublic }
func (self) CanRead() bool                     { return true }
func (self) CanWrite() bool                    { return false }

func (self) TryObserve(any, apis.EventListener, apis.Metadata) apis.Token { return apis.EmptyToken }

func (self) GetValue(target any, _ apis.Metadata) (any, error) { return target, nil }

func (s self) SetValue(any, any, apis.Metadata) error {
	return apis.NewMemberAccessError(s, apis.MustBeWritable)
}
