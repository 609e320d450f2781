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

// Package observable provides an embeddable property-changed notifier for plain Go types.
package observable

import (
	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/listeners"
)

// Object announces member changes to subscribed listeners.
// Embed it by value in a struct that is always used through a pointer.
// The zero value is ready to use.
type Object struct {
	changed listeners.Collection
}

// Ensure *Object implements apis.PropertyChangedNotifier.
var _ apis.PropertyChangedNotifier = (*Object)(nil)

// PropertyChanged returns the event raised by RaisePropertyChanged.
func (o *Object) PropertyChanged() apis.EventSource { return &o.changed }

// PropertyChangedListeners exposes the underlying collection, mostly for tests and diagnostics.
func (o *Object) PropertyChangedListeners() *listeners.Collection { return &o.changed }

// RaisePropertyChanged notifies listeners that member name of sender changed.
// An empty name means every member may have changed.
func (o *Object) RaisePropertyChanged(sender any, name string) {
	o.changed.Raise(sender, apis.PropertyChangedArgs{Name: name}, nil)
}

// Set stores value into *field and raises the change for name when the value differs.
// It reports whether a change was raised.
func Set[T comparable](o *Object, sender any, field *T, value T, name string) bool {
	if *field == value {
		return false
	}
	*field = value
	o.RaisePropertyChanged(sender, name)
	return true
}
