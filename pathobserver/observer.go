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

package pathobserver

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/listeners"
	"dirpx.dev/bindx/metrics"
	"dirpx.dev/bindx/token"
	uref "dirpx.dev/bindx/utils/reflect"
)

var (
	// ErrNilMemberManager is returned when an observer has no member manager to resolve with.
	ErrNilMemberManager = errors.New("bindx(pathobserver): nil member manager")
	// ErrNilPath is returned for a nil path.
	ErrNilPath = errors.New("bindx(pathobserver): nil path")
)

// Options control how an Observer resolves and watches its path.
type Options struct {
	// MemberFlags used for every segment lookup; zero means apis.InstancePublicAll.
	MemberFlags apis.MemberFlags
	// Observable subscribes to the last member, not only to intermediates.
	Observable bool
	// Optional degrades missing members to apis.Unavailable instead of failing.
	Optional bool
	// HasStablePath reuses members resolved by the first walk on later walks.
	// Owners changing their dynamic type between walks are not detected.
	HasStablePath bool

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// Observer tracks a member path on a live object graph.
//
// Without listeners every read re-walks the path. Adding the first listener
// subscribes to each intermediate member (and to the last one when
// Observable); a change of the value at segment i re-walks the path and moves
// the subscriptions of the later segments to the new objects.
type Observer struct {
	id      string
	path    apis.MemberPath
	names   []string
	mm      apis.MemberManager
	opts    Options
	log     zerolog.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	source     apis.WeakReference
	ls         listenerSet
	state      apis.PathState
	reason     apis.UnavailableReason
	err        error
	members    []apis.AccessorMemberInfo
	resolved   int
	tokens     []apis.Token
	target     any
	subscribed bool
	disposed   bool

	// walking is set while a walk holds mu. Changes raised meanwhile, for
	// example by a lazy getter, only lower pending (first stale segment + 1)
	// and the walk repeats.
	walking atomic.Bool
	pending atomic.Int64
}

// maxRewalks bounds how often one walk repeats for changes raised by getters.
const maxRewalks = 16

var _ apis.MemberPathObserver = (*Observer)(nil)

// New returns an observer of path on source. A source implementing
// apis.WeakReference (see WeakSource) is dereferenced on each walk and is not
// kept alive; any other source is held until Dispose.
func New(mm apis.MemberManager, source any, path apis.MemberPath, opts Options) (*Observer, error) {
	if mm == nil {
		return nil, ErrNilMemberManager
	}
	if path == nil {
		return nil, ErrNilPath
	}
	ref, ok := source.(apis.WeakReference)
	if !ok {
		ref = listeners.StrongRef(source)
	}
	if opts.MemberFlags == 0 {
		opts.MemberFlags = apis.InstancePublicAll
	}
	names := path.Members()
	o := &Observer{
		id:      uuid.NewString(),
		path:    path,
		names:   names,
		mm:      mm,
		opts:    opts,
		metrics: opts.Metrics,
		source:  ref,
		members: make([]apis.AccessorMemberInfo, len(names)),
		tokens:  make([]apis.Token, len(names)),
	}
	o.log = opts.Logger.With().Str("observer", o.id).Str("path", path.Path()).Logger()
	o.metrics.ObserverCreated()
	return o, nil
}

// WeakSource wraps p so that an observer does not keep it alive.
func WeakSource[T any](p *T) apis.WeakReference { return listeners.WeakRef(p) }

func (o *Observer) ID() string            { return o.id }
func (o *Observer) Path() apis.MemberPath { return o.path }

// Source returns the current source, or nil once collected or disposed.
func (o *Observer) Source() any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sourceLocked()
}

func (o *Observer) sourceLocked() any {
	if o.source == nil {
		return nil
	}
	src := o.source.Target()
	if uref.IsNil(src) {
		return nil
	}
	return src
}

func (o *Observer) IsAlive() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.disposed && o.sourceLocked() != nil
}

func (o *Observer) State() apis.PathState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// AddListener registers l. The first listener initializes the observer and
// establishes its subscriptions.
func (o *Observer) AddListener(l apis.MemberPathObserverListener) {
	if l == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed {
		return
	}
	o.ls.add(l)
	if !o.subscribed {
		o.subscribed = true
		o.unsubscribeLocked(0)
		o.walkLocked(nil)
	}
}

// RemoveListener unregisters l. Removing the last listener drops every subscription.
func (o *Observer) RemoveListener(l apis.MemberPathObserverListener) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.ls.remove(l) {
		return false
	}
	if o.ls.len() == 0 && o.subscribed {
		o.subscribed = false
		o.unsubscribeLocked(0)
	}
	return true
}

func (o *Observer) Listeners() []apis.MemberPathObserverListener {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]apis.MemberPathObserverListener(nil), o.ls.snapshot()...)
}

// GetMembers returns the members resolved along the path. The error is the
// fault captured by the last walk, if any.
func (o *Observer) GetMembers(md apis.Metadata) (apis.MemberPathMembers, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed {
		return apis.MemberPathMembers{State: apis.Disposed}, nil
	}
	o.ensureLocked(md)
	out := apis.MemberPathMembers{
		Source: o.sourceLocked(),
		State:  o.state,
		Reason: o.reason,
	}
	if o.resolved > 0 {
		out.Members = make([]apis.MemberInfo, o.resolved)
		for i := range out.Members {
			out.Members[i] = o.members[i]
		}
	}
	return out, o.err
}

// GetLastMember returns the penultimate value and the last member of the path.
func (o *Observer) GetLastMember(md apis.Metadata) (apis.MemberPathLastMember, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed {
		return apis.MemberPathLastMember{State: apis.Disposed}, nil
	}
	o.ensureLocked(md)
	out := apis.MemberPathLastMember{State: o.state, Reason: o.reason}
	if o.state == apis.Resolved {
		out.Target = o.target
		if len(o.names) == 0 {
			out.Member = self{}
		} else {
			out.Member = o.members[len(o.names)-1]
		}
	}
	return out, o.err
}

// Dispose releases the source and every subscription. It is idempotent.
func (o *Observer) Dispose() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true
	o.subscribed = false
	o.unsubscribeLocked(0)
	clear(o.members)
	o.resolved = 0
	o.target = nil
	o.source = nil
	o.err = nil
	o.ls.clear()
	o.state = apis.Disposed
	o.mu.Unlock()

	o.metrics.ObserverDisposed()
	o.log.Debug().Msg("path observer disposed")
}

func (o *Observer) ensureLocked(md apis.Metadata) {
	if !o.subscribed || o.state == apis.Uninitialized {
		o.walkLocked(md)
	}
}

// unsubscribeLocked disposes the subscriptions of segments from and later.
func (o *Observer) unsubscribeLocked(from int) {
	for i := from; i < len(o.tokens); i++ {
		token.Dispose(o.tokens[i])
		o.tokens[i] = nil
	}
}

// walkLocked resolves the path on the current source and repeats while
// getters raise changes. Every walk starts at the source and re-reads the
// intermediate values before the changed segment; members are looked up again
// unless HasStablePath. Segments whose token is still set keep their
// subscription, so only later segments resubscribe.
func (o *Observer) walkLocked(md apis.Metadata) {
	o.walking.Store(true)
	for n := 0; ; n++ {
		o.walkOnceLocked(md)
		o.walking.Store(false)
		from := o.pending.Swap(0)
		if from == 0 {
			return
		}
		if n == maxRewalks {
			o.log.Warn().Int("rewalks", n).Msg("member path keeps changing while resolved")
			return
		}
		o.walking.Store(true)
		o.unsubscribeLocked(int(from))
	}
}

// markPending records that segments from and later are stale.
func (o *Observer) markPending(from int) {
	v := int64(from)
	for {
		cur := o.pending.Load()
		if cur != 0 && cur <= v {
			return
		}
		if o.pending.CompareAndSwap(cur, v) {
			return
		}
	}
}

func (o *Observer) walkOnceLocked(md apis.Metadata) {
	o.err = nil
	o.reason = apis.NotUnavailable
	o.target = nil
	o.resolved = 0

	src := o.sourceLocked()
	if src == nil {
		o.unavailableLocked(apis.SourceIsNil, 0)
		return
	}
	n := len(o.names)
	if n == 0 {
		o.target = src
		o.state = apis.Resolved
		return
	}

	owner := src
	for i := 0; i < n; i++ {
		m, err := o.memberLocked(i, owner, md)
		if err != nil {
			o.faultLocked(err, i)
			return
		}
		if m == nil {
			o.unavailableLocked(apis.MemberIsMissing, i)
			return
		}
		o.resolved = i + 1
		if o.subscribed && o.tokens[i] == nil && (i < n-1 || o.opts.Observable) {
			o.tokens[i] = m.TryObserve(owner, o.listener(i), md)
		}
		if i == n-1 {
			o.target = owner
			o.state = apis.Resolved
			return
		}
		v, err := m.GetValue(owner, md)
		if err != nil {
			o.faultLocked(err, i+1)
			return
		}
		if uref.IsNil(v) {
			o.unavailableLocked(apis.IntermediateIsNil, i+1)
			return
		}
		owner = v
	}
}

func (o *Observer) memberLocked(i int, owner any, md apis.Metadata) (apis.AccessorMemberInfo, error) {
	if o.opts.HasStablePath && o.members[i] != nil {
		return o.members[i], nil
	}
	t := reflect.TypeOf(owner)
	acc, _ := o.mm.GetMember(t, o.names[i], apis.Accessor, o.opts.MemberFlags, md).(apis.AccessorMemberInfo)
	if acc == nil {
		if o.opts.Optional {
			return nil, nil
		}
		return nil, &apis.InvalidPathMemberError{Type: t, Path: o.path.Path(), Member: o.names[i]}
	}
	o.members[i] = acc
	return acc, nil
}

// unavailableLocked and faultLocked stop a walk; segments from and later have
// no owner any more and lose their subscriptions.
func (o *Observer) unavailableLocked(reason apis.UnavailableReason, from int) {
	o.state = apis.Unavailable
	o.reason = reason
	o.unsubscribeLocked(from)
}

func (o *Observer) faultLocked(err error, from int) {
	o.state = apis.Faulted
	o.err = err
	o.unsubscribeLocked(from)
	o.log.Debug().Err(err).Msg("member path resolution failed")
}

// listener returns the internal listener of segment i. It refers to the
// observer weakly, so subscriptions alone do not keep the observer alive.
func (o *Observer) listener(i int) apis.EventListener {
	if i == len(o.names)-1 {
		return listeners.Weak(o, func(o *Observer, _ any, _ any, _ apis.Metadata) bool {
			o.onLastMemberChanged()
			return true
		})
	}
	return listeners.Weak(o, func(o *Observer, _ any, _ any, _ apis.Metadata) bool {
		o.onIntermediateChanged(i)
		return true
	})
}

func (o *Observer) onLastMemberChanged() {
	if o.walking.Load() {
		o.markPending(len(o.names))
		return
	}
	o.mu.Lock()
	if o.disposed || !o.subscribed {
		o.mu.Unlock()
		return
	}
	ls := o.ls.snapshot()
	o.mu.Unlock()

	for _, l := range ls {
		l.OnLastMemberChanged(o)
	}
}

func (o *Observer) onIntermediateChanged(i int) {
	o.markPending(i + 1)
	if o.walking.Load() {
		return
	}
	o.mu.Lock()
	if o.disposed || !o.subscribed {
		o.pending.Store(0)
		o.mu.Unlock()
		return
	}
	// A walk that ran while this goroutine waited for mu already covered it.
	from := o.pending.Swap(0)
	if from == 0 {
		o.mu.Unlock()
		return
	}
	o.unsubscribeLocked(int(from))
	o.walkLocked(nil)
	err := o.err
	ls := o.ls.snapshot()
	o.mu.Unlock()

	if err != nil {
		if len(ls) == 0 {
			o.log.Debug().Err(err).Msg("path observer error discarded")
		}
		for _, l := range ls {
			l.OnError(o, err)
		}
		return
	}
	for _, l := range ls {
		l.OnPathMembersChanged(o)
	}
	for _, l := range ls {
		l.OnLastMemberChanged(o)
	}
}
