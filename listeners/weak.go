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

package listeners

import (
	"weak"

	"dirpx.dev/bindx/apis"
)

// Func adapts fn to an always-alive listener.
func Func(fn func(sender any, message any, md apis.Metadata)) apis.EventListener {
	return &funcListener{fn: fn}
}

type funcListener struct {
	fn func(sender any, message any, md apis.Metadata)
}

func (f *funcListener) TryHandle(sender any, message any, md apis.Metadata) bool {
	f.fn(sender, message, md)
	return true
}

// Weak returns a listener that refers to target weakly and forwards messages to fn.
// Once target is collected the listener reports itself dead. fn must not capture
// target, otherwise the listener keeps it alive.
func Weak[T any](target *T, fn func(target *T, sender any, message any, md apis.Metadata) bool) apis.WeakEventListener {
	return &weakListener[T]{p: weak.Make(target), fn: fn}
}

type weakListener[T any] struct {
	p  weak.Pointer[T]
	fn func(target *T, sender any, message any, md apis.Metadata) bool
}

func (w *weakListener[T]) Target() any {
	if v := w.p.Value(); v != nil {
		return v
	}
	return nil
}

func (w *weakListener[T]) TryHandle(sender any, message any, md apis.Metadata) bool {
	v := w.p.Value()
	if v == nil {
		return false
	}
	return w.fn(v, sender, message, md)
}

// WeakRef returns a non-owning reference to p.
func WeakRef[T any](p *T) apis.WeakReference {
	return &weakRef[T]{p: weak.Make(p)}
}

type weakRef[T any] struct {
	p weak.Pointer[T]
}

func (r *weakRef[T]) Target() any {
	if v := r.p.Value(); v != nil {
		return v
	}
	return nil
}

// StrongRef returns a reference that keeps v alive; it satisfies apis.WeakReference
// for callers that accept either.
func StrongRef(v any) apis.WeakReference {
	return strongRef{v: v}
}

type strongRef struct{ v any }

func (r strongRef) Target() any { return r.v }
