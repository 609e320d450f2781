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

package apis

// Token represents one active subscription or registration.
// Dispose is idempotent and safe to call from any goroutine, including from
// within the callback it unsubscribes.
type Token interface {
	Dispose()
}

// EventListener receives event messages.
//
// TryHandle returns false when the listener is no longer interested; the owning
// collection then drops it on its next cleanup.
type EventListener interface {
	TryHandle(sender any, message any, md Metadata) bool
}

// WeakEventListener is a listener that refers to its owner weakly.
// Target returns nil once the owner has been collected, which marks the
// listener dead for the collections holding it.
type WeakEventListener interface {
	EventListener
	Target() any
}

// EventSource is anything listeners can subscribe to.
type EventSource interface {
	Subscribe(listener EventListener) Token
}

// WeakReference is a non-owning handle to an object.
// Target returns nil when the object is gone or the reference was released.
type WeakReference interface {
	Target() any
}

// PropertyChangedArgs is the message raised by property-changed notifiers.
// An empty Name means every member may have changed.
type PropertyChangedArgs struct {
	Name string
}

// PropertyChangedNotifier is implemented by objects that announce member changes.
type PropertyChangedNotifier interface {
	PropertyChanged() EventSource
}
