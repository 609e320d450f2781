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
	"sync/atomic"

	"github.com/rs/zerolog"
)

var zlog atomic.Pointer[zerolog.Logger]

// SetLogger installs the structured logger used for recovered listener panics.
// Until called, records are discarded.
func SetLogger(l zerolog.Logger) { zlog.Store(&l) }

func logger() *zerolog.Logger {
	if l := zlog.Load(); l != nil {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}
