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

// Package path parses member paths such as "A.B[0].C" into their segments.
//
// A path is a dot separated chain of member names. Indexer segments are
// written in brackets and may follow a name directly ("Items[0]") or start
// the path ("[key]"). Bracket content is kept verbatim apart from surrounding
// whitespace; quoted keys may contain dots and brackets.
package path

import (
	"errors"
	"fmt"
	"strings"

	"dirpx.dev/bindx/apis"
)

var (
	// ErrEmptySegment is returned for paths like "A..B", ".A" or "A.".
	ErrEmptySegment = errors.New("bindx(path): empty segment")
	// ErrUnterminatedIndex is returned when a '[' (or a quote inside it) is not closed.
	ErrUnterminatedIndex = errors.New("bindx(path): unterminated index")
	// ErrUnexpectedBracket is returned for a ']' without a matching '['.
	ErrUnexpectedBracket = errors.New("bindx(path): unexpected ']'")
)

// Empty is the path of the source itself.
var Empty apis.MemberPath = emptyPath{}

type emptyPath struct{}

func (emptyPath) Path() string      { return "" }
func (emptyPath) Members() []string { return nil }
func (emptyPath) String() string    { return "" }

// Single is a path with one segment.
type Single struct {
	name string
}

// NewSingle returns a single segment path for name.
func NewSingle(name string) *Single { return &Single{name: name} }

func (p *Single) Path() string      { return p.name }
func (p *Single) Members() []string { return []string{p.name} }
func (p *Single) String() string    { return p.name }

// Multi is a path with two or more segments.
type Multi struct {
	path    string
	members []string
}

func (p *Multi) Path() string { return p.path }

// Members returns a copy of the segments.
func (p *Multi) Members() []string {
	out := make([]string, len(p.members))
	copy(out, p.members)
	return out
}

func (p *Multi) String() string { return p.path }

// Parse splits s into segments and returns the matching path kind.
// The returned path reports a normalized Path(): segments joined by '.',
// indexers attached to the preceding segment, whitespace trimmed.
func Parse(s string) (apis.MemberPath, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Empty, nil
	}
	segs, err := Split(s)
	if err != nil {
		return nil, err
	}
	return FromMembers(segs), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) apis.MemberPath {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// FromMembers builds a path from already split segments.
func FromMembers(segs []string) apis.MemberPath {
	switch len(segs) {
	case 0:
		return Empty
	case 1:
		return NewSingle(segs[0])
	}
	return &Multi{path: Join(segs), members: append([]string(nil), segs...)}
}

// Join renders segments in normalized form.
func Join(segs []string) string {
	var b strings.Builder
	for i, s := range segs {
		if i > 0 && !IsIndexer(s) {
			b.WriteByte('.')
		}
		b.WriteString(s)
	}
	return b.String()
}

// IsIndexer reports whether seg is a bracketed indexer segment.
func IsIndexer(seg string) bool {
	return len(seg) >= 2 && seg[0] == '[' && seg[len(seg)-1] == ']'
}

// Split returns the segments of s.
func Split(s string) ([]string, error) {
	var (
		segs []string
		name strings.Builder
		// afterIndex is set right after "]" so that "A[0].B" and "A[0][1]" are
		// accepted while "A[0]B" is not.
		afterIndex bool
		// pendingDot is set after '.' and cleared by the next segment.
		pendingDot bool
	)
	flush := func(pos int) error {
		n := strings.TrimSpace(name.String())
		name.Reset()
		if n == "" {
			return fmt.Errorf("%w at offset %d in %q", ErrEmptySegment, pos, s)
		}
		segs = append(segs, n)
		return nil
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '.':
			if afterIndex {
				afterIndex = false
			} else if err := flush(i); err != nil {
				return nil, err
			}
			pendingDot = true
		case '[':
			if strings.TrimSpace(name.String()) != "" {
				if err := flush(i); err != nil {
					return nil, err
				}
			} else if pendingDot {
				return nil, fmt.Errorf("%w at offset %d in %q", ErrEmptySegment, i, s)
			}
			end, err := indexEnd(s, i)
			if err != nil {
				return nil, err
			}
			inner := strings.TrimSpace(s[i+1 : end])
			if inner == "" {
				return nil, fmt.Errorf("%w: empty index at offset %d in %q", ErrEmptySegment, i, s)
			}
			segs = append(segs, "["+inner+"]")
			i = end
			afterIndex = true
			pendingDot = false
		case ']':
			return nil, fmt.Errorf("%w at offset %d in %q", ErrUnexpectedBracket, i, s)
		default:
			if afterIndex {
				if c == ' ' || c == '\t' {
					continue
				}
				return nil, fmt.Errorf("%w: missing '.' at offset %d in %q", ErrEmptySegment, i, s)
			}
			name.WriteByte(c)
			pendingDot = false
		}
	}
	if !afterIndex {
		if err := flush(len(s)); err != nil {
			return nil, err
		}
	}
	return segs, nil
}

// indexEnd returns the offset of the ']' closing the '[' at open.
func indexEnd(s string, open int) (int, error) {
	var quote byte
	escaped := false
	for i := open + 1; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ']':
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w at offset %d in %q", ErrUnterminatedIndex, open, s)
}
