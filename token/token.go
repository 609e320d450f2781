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

// Package token provides subscription tokens whose disposal is idempotent.
package token

import (
	"sync/atomic"

	"dirpx.dev/bindx/apis"
)

// NoDo is the shared empty token.
var NoDo = apis.EmptyToken

// New returns a token running fn on its first Dispose. A nil fn yields NoDo.
func New(fn func()) apis.Token {
	if fn == nil {
		return NoDo
	}
	t := &ActionToken{}
	t.fn.Store(&fn)
	return t
}

// ActionToken runs an action exactly once on Dispose.
//
// The action is swapped out before it runs, so disposing from within the
// action itself, or from several goroutines at once, is safe.
type ActionToken struct {
	fn atomic.Pointer[func()]
}

// Dispose runs the action if it has not run yet.
func (t *ActionToken) Dispose() {
	if t == nil {
		return
	}
	if fn := t.fn.Swap(nil); fn != nil {
		(*fn)()
	}
}

// IsDisposed reports whether Dispose has been called.
func (t *ActionToken) IsDisposed() bool {
	return t == nil || t.fn.Load() == nil
}

// Join returns a token disposing every non-nil token in order.
func Join(tokens ...apis.Token) apis.Token {
	live := make([]apis.Token, 0, len(tokens))
	for _, t := range tokens {
		if t != nil && t != NoDo {
			live = append(live, t)
		}
	}
	switch len(live) {
	case 0:
		return NoDo
	case 1:
		return live[0]
	}
	return New(func() {
		for _, t := range live {
			t.Dispose()
		}
	})
}

// Dispose disposes t unless it is nil.
func Dispose(t apis.Token) {
	if t != nil {
		t.Dispose()
	}
}
