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

import "reflect"

// EmptyToken is the token returned when there is nothing to unsubscribe.
var EmptyToken Token = emptyToken{}

type emptyToken struct{}

func (emptyToken) Dispose() {}

// MemberObserverHandler performs the actual subscription against the native
// notification mechanism of a member.
type MemberObserverHandler interface {
	TryObserve(target any, member any, listener EventListener, md Metadata) Token
}

// MemberObserver pairs a handler with the member it observes.
// The zero value is empty and observing through it is a no-op.
type MemberObserver struct {
	Handler MemberObserverHandler
	Member  any
}

// IsEmpty reports whether the observer has no handler.
func (o MemberObserver) IsEmpty() bool { return o.Handler == nil }

// TryObserve subscribes listener through the handler; it returns EmptyToken when the observer is empty.
func (o MemberObserver) TryObserve(target any, listener EventListener, md Metadata) Token {
	if o.Handler == nil {
		return EmptyToken
	}
	if t := o.Handler.TryObserve(target, o.Member, listener, md); t != nil {
		return t
	}
	return EmptyToken
}

// MemberObserverProvider is an observation manager component that selects a
// handler for a member. Member is typically the reflected member or its name.
type MemberObserverProvider interface {
	TryGetMemberObserver(t reflect.Type, member any, md Metadata) MemberObserver
}

// MemberPathProvider turns a path request (usually a string) into a MemberPath, or returns nil.
type MemberPathProvider interface {
	TryGetMemberPath(path any, md Metadata) MemberPath
}

// MemberPathObserverProvider turns a (target, request) pair into a path observer.
// It returns (nil, nil) when it does not handle the request.
type MemberPathObserverProvider interface {
	TryGetMemberPathObserver(om ObservationManager, target any, request any, md Metadata) (MemberPathObserver, error)
}

// ObservationManager is the façade turning observation requests into observers.
type ObservationManager interface {
	// GetMemberObserver returns the observer for member on t; the result may be empty.
	GetMemberObserver(t reflect.Type, member any, md Metadata) MemberObserver
	// GetMemberPath parses or resolves a path request.
	GetMemberPath(path any, md Metadata) (MemberPath, error)
	// GetMemberPathObserver builds a path observer for target.
	GetMemberPathObserver(target any, request any, md Metadata) (MemberPathObserver, error)
}

// MemberPath is an immutable parsed member access path.
type MemberPath interface {
	// Path returns the original path string.
	Path() string
	// Members returns the ordered segment names; indexers appear as "[...]" segments.
	Members() []string
}

// MemberPathObserverRequest describes a path observer to build.
type MemberPathObserverRequest struct {
	// Path is a string or a MemberPath.
	Path any
	// MemberFlags filters segment member lookups.
	MemberFlags MemberFlags
	// Observable requests a subscription on the last member too.
	Observable bool
	// Optional turns missing members into an unavailable state instead of an error.
	Optional bool
	// HasStablePath asserts segment member types never change between updates.
	HasStablePath bool
}

// PathState is the state of a path observer.
type PathState uint8

const (
	Uninitialized PathState = iota
	Resolved
	Unavailable
	Faulted
	Disposed
)

// String returns the state name.
func (s PathState) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Resolved:
		return "Resolved"
	case Unavailable:
		return "Unavailable"
	case Faulted:
		return "Faulted"
	case Disposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

// UnavailableReason tells why a path is unavailable.
type UnavailableReason uint8

const (
	NotUnavailable UnavailableReason = iota
	SourceIsNil
	IntermediateIsNil
	MemberIsMissing
)

// MemberPathMembers is the resolved member chain of a path.
type MemberPathMembers struct {
	Source  any
	Members []MemberInfo
	State   PathState
	Reason  UnavailableReason
}

// IsAvailable reports whether every segment resolved.
func (m MemberPathMembers) IsAvailable() bool { return m.State == Resolved }

// MemberPathLastMember is the last member of a path plus the penultimate value holding it.
type MemberPathLastMember struct {
	Target any
	Member AccessorMemberInfo
	State  PathState
	Reason UnavailableReason
}

// IsAvailable reports whether the last member resolved.
func (m MemberPathLastMember) IsAvailable() bool { return m.State == Resolved && m.Member != nil }

// GetValue reads the last member from the penultimate value.
// It returns (nil, nil) when the member is not available.
func (m MemberPathLastMember) GetValue(md Metadata) (any, error) {
	if !m.IsAvailable() {
		return nil, nil
	}
	return m.Member.GetValue(m.Target, md)
}

// SetValue writes the last member; it is a no-op when the member is not available.
func (m MemberPathLastMember) SetValue(value any, md Metadata) error {
	if !m.IsAvailable() {
		return nil
	}
	return m.Member.SetValue(m.Target, value, md)
}

// MemberPathObserverListener receives path observer notifications.
// Listeners are compared with ==, so use pointer implementations.
type MemberPathObserverListener interface {
	OnPathMembersChanged(o MemberPathObserver)
	OnLastMemberChanged(o MemberPathObserver)
	OnError(o MemberPathObserver, err error)
}

// MemberPathObserver tracks a path against a live object graph.
type MemberPathObserver interface {
	// ID returns a unique observer id.
	ID() string
	// Source returns the root object, or nil once released.
	Source() any
	// Path returns the observed path.
	Path() MemberPath
	// IsAlive reports whether the observer still has a source and is not disposed.
	IsAlive() bool
	// State returns the current state without triggering initialization.
	State() PathState
	AddListener(l MemberPathObserverListener)
	RemoveListener(l MemberPathObserverListener) bool
	Listeners() []MemberPathObserverListener
	// GetMembers returns the resolved member chain, initializing the observer on first use.
	GetMembers(md Metadata) (MemberPathMembers, error)
	// GetLastMember returns the last member and penultimate value, initializing on first use.
	GetLastMember(md Metadata) (MemberPathLastMember, error)
	// Dispose releases the source and every subscription. It is idempotent.
	Dispose()
}
