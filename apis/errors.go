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
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrMemberAccess is matched by every MemberAccessError.
	ErrMemberAccess = errors.New("bindx: member access error")
	// ErrInvalidPathMember is matched by every InvalidPathMemberError.
	ErrInvalidPathMember = errors.New("bindx: invalid path member")
	// ErrNotSupported is matched by every NotSupportedError.
	ErrNotSupported = errors.New("bindx: not supported")
)

// AccessKind tells which capability a member was missing.
type AccessKind uint8

const (
	// MustBeReadable is reported by GetValue on a write-only member.
	MustBeReadable AccessKind = iota + 1
	// MustBeWritable is reported by SetValue on a read-only member.
	MustBeWritable
)

// String returns the kind name.
func (k AccessKind) String() string {
	switch k {
	case MustBeReadable:
		return "MustBeReadable"
	case MustBeWritable:
		return "MustBeWritable"
	default:
		return fmt.Sprintf("AccessKind(%d)", uint8(k))
	}
}

// MemberAccessError reports a read of a non-readable or a write of a non-writable member.
type MemberAccessError struct {
	Member string
	Type   reflect.Type
	Kind   AccessKind
}

func (e *MemberAccessError) Error() string {
	what := "readable"
	if e.Kind == MustBeWritable {
		what = "writable"
	}
	return fmt.Sprintf("bindx: member %q of %v must be %s", e.Member, e.Type, what)
}

// Is matches ErrMemberAccess.
func (e *MemberAccessError) Is(target error) bool { return target == ErrMemberAccess }

// NewMemberAccessError builds a MemberAccessError for member.
func NewMemberAccessError(member MemberInfo, kind AccessKind) *MemberAccessError {
	return &MemberAccessError{Member: member.Name(), Type: member.DeclaringType(), Kind: kind}
}

// InvalidPathMemberError reports a required path segment that could not be
// resolved on the runtime type of its holder.
type InvalidPathMemberError struct {
	Type   reflect.Type
	Path   string
	Member string
}

func (e *InvalidPathMemberError) Error() string {
	return fmt.Sprintf("bindx: cannot resolve member %q of path %q on %v", e.Member, e.Path, e.Type)
}

// Is matches ErrInvalidPathMember.
func (e *InvalidPathMemberError) Is(target error) bool { return target == ErrInvalidPathMember }

// NotSupportedError reports that no component could satisfy a request.
type NotSupportedError struct {
	Component string
	Request   any
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("bindx: %s does not support request %T(%v)", e.Component, e.Request, e.Request)
}

// Is matches ErrNotSupported.
func (e *NotSupportedError) Is(target error) bool { return target == ErrNotSupported }
