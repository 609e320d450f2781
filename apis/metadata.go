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

// Metadata is the read-only key/value context accepted by every public operation.
// Implementations must be safe for concurrent reads. A nil Metadata is valid and empty.
type Metadata interface {
	// Get returns the value stored under key.
	Get(key any) (any, bool)
	// Len returns the number of entries.
	Len() int
}
