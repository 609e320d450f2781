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

package strategy

import (
	"fmt"
	"strings"
)

// Strategy controls how a member manager retains resolved members.
//
// # Overview
//
// Member resolution walks reflection data and provider chains, so managers
// memoize results per (type, name, member types, flags) key, including
// negative results. Strategy selects the retention policy of that memo.
//
// # Values
//
//   - Unbounded: every resolved key is kept until invalidated.
//   - LRU: at most a configured number of keys is kept; the least
//     recently used key is evicted first.
//   - None: caching disabled; every lookup consults providers.
//
// # Contract
//
//   - Adding values is allowed; existing values MUST NOT change meaning.
//   - Strategy values are plain integers and safe to share across goroutines.
type Strategy int

const (
	// Unbounded keeps every resolved key until Invalidate.
	//
	// This is the default: the set of (type, name) pairs a program binds to
	// is usually small and fixed, so the memo converges quickly.
	Unbounded Strategy = iota

	// LRU keeps at most CacheCapacity keys and evicts the least recently used.
	//
	// Reads (hits) and writes (stores) both count as use. Useful for
	// long-running processes binding to an open-ended set of dynamic types.
	LRU

	// None disables caching.
	//
	// Every lookup reaches the provider chain. Mainly useful for tests and
	// hot-reload scenarios where types change shape frequently.
	None
)

// String returns a stable token: "Unbounded", "LRU", "None" or "Unknown(<n>)".
// It never panics, so corrupted values can still be logged.
func (cs Strategy) String() string {
	switch cs {
	case Unbounded:
		return "Unbounded"
	case LRU:
		return "LRU"
	case None:
		return "None"
	default:
		return fmt.Sprintf("Unknown(%d)", cs)
	}
}

// Parse parses a textual Strategy, case-insensitive, ignoring surrounding whitespace.
// On failure it returns Unbounded and a non-nil error.
func Parse(s string) (Strategy, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Unbounded, fmt.Errorf("cache: empty strategy")
	}

	switch strings.ToUpper(trimmed) {
	case "UNBOUNDED":
		return Unbounded, nil
	case "LRU":
		return LRU, nil
	case "NONE":
		return None, nil
	default:
		return Unbounded, fmt.Errorf("cache: unknown strategy %q", s)
	}
}

// MustParse is like Parse but panics on invalid input.
func MustParse(s string) Strategy {
	strategy, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return strategy
}

// MarshalText encodes Strategy as text. Unknown values fail instead of
// persisting an "Unknown(...)" form.
func (cs Strategy) MarshalText() ([]byte, error) {
	switch cs {
	case Unbounded, LRU, None:
		return []byte(cs.String()), nil
	default:
		return nil, fmt.Errorf("cache: cannot marshal unknown strategy %d", cs)
	}
}

// UnmarshalText decodes a Strategy. On failure *cs is left unchanged.
func (cs *Strategy) UnmarshalText(text []byte) error {
	trimmed := strings.TrimSpace(string(text))
	if trimmed == "" {
		return fmt.Errorf("cache: empty strategy")
	}

	value, err := Parse(trimmed)
	if err != nil {
		return err
	}

	*cs = value
	return nil
}
