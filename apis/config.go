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

import (
	"fmt"

	cachestrategy "dirpx.dev/bindx/cache/strategy"
)

// Config carries read-only knobs that influence member resolution and observation.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Synchronized selects the member manager variant that guards its cache
	// with a mutex for concurrent callers. When false the caller serializes access.
	Synchronized bool `json:"synchronized" yaml:"synchronized" toml:"synchronized"`

	// CacheStrategy selects how resolved members are retained.
	CacheStrategy cachestrategy.Strategy `json:"cache_strategy" yaml:"cache_strategy" toml:"cache_strategy"`

	// CacheCapacity bounds the LRU cache. Ignored by other strategies.
	CacheCapacity int `json:"cache_capacity" yaml:"cache_capacity" toml:"cache_capacity"`

	// IgnoreAttachedMembers removes the Attached flag from path segment lookups.
	IgnoreAttachedMembers bool `json:"ignore_attached_members" yaml:"ignore_attached_members" toml:"ignore_attached_members"`

	// MemberFlags is the default flag set of path observer requests that do not set one.
	MemberFlags MemberFlags `json:"member_flags" yaml:"member_flags" toml:"member_flags"`

	// Observable makes path observers built through the root helpers observe their last member.
	Observable bool `json:"observable" yaml:"observable" toml:"observable"`

	// Optional makes path observers built through the root helpers tolerate missing members.
	Optional bool `json:"optional" yaml:"optional" toml:"optional"`
}

// MarshalText encodes flags as a "|" separated list.
func (f MemberFlags) MarshalText() ([]byte, error) {
	if f == 0 {
		return []byte{}, nil
	}
	return []byte(f.String()), nil
}

// UnmarshalText decodes a "|" or "," separated flag list. On failure *f is unchanged.
func (f *MemberFlags) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*f = 0
		return nil
	}
	v, ok := ParseMemberFlags(string(text))
	if !ok {
		return fmt.Errorf("bindx: invalid member flags %q", string(text))
	}
	*f = v
	return nil
}
