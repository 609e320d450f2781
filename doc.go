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

// Package bindx provides process-wide member resolution and observation for
// data binding over plain Go values.
//
// bindx answers two questions about "some Go value":
//
//   - Which members does it have under a given name? Members are fields,
//     getter/setter properties, methods, events, indexers and attached
//     members registered at runtime (constants, delegates, expressions,
//     extension methods).
//
//   - How do I keep reading a path such as "Order.Lines[0].Total" while the
//     objects along it change? Path observers walk the path, subscribe to the
//     change notifications of every intermediate value and re-walk the suffix
//     when one of them changes.
//
// # Design
//
// The core of bindx is a read-mostly global snapshot (state). The snapshot
// holds:
//
//   - Config: cache policy, locking, default member flags and the default
//     observability of path observers (see package config).
//
//   - Registry: attached members keyed by (type, name, member type).
//     Registry changes invalidate the member cache.
//
//   - ObservationManager: the façade that hands out member observers, parses
//     member paths and builds path observers.
//
//   - MemberManager: a caching, re-entrancy-guarded chain of member providers.
//     The default chain is attached members, then extension methods, then
//     reflection.
//
//   - Builder: a pluggable factory that builds the three layers above for a
//     Config and an optional extension payload (builder.Ext carries a logger
//     and a prometheus.Registerer). The Builder receives the previous layers
//     so it can migrate their state.
//
// Readers load the current snapshot atomically and never take locks:
//
//	m := bindx.GetMember(reflect.TypeOf(v), "Name", apis.Accessor, 0, nil)
//	o, err := bindx.Observe(root, "Child.Value", nil)
//
// Writers (SetConfig, SetBuilder, SetExt, SetRegistry, SetObservationManager,
// SetMemberManager, SetAll) take a short build mutex, rebuild the layers that
// are not pinned and publish the new snapshot. A failing builder panics with
// ErrNil* and leaves the published snapshot untouched.
//
// # Pinning
//
// The Set* helpers for a layer pin it: later rebuilds keep that exact
// instance until the matching Unpin* call. A rebuilt observation manager is
// bound to a pinned member manager. A pinned member manager keeps resolving
// attached members from the registry it was built with.
//
// # Observers and lifetimes
//
// Path observers subscribe only while they have listeners and hold their
// internal subscriptions weakly, so callers must keep the observer reachable
// for as long as they want notifications. Sources wrapped with
// pathobserver.WeakSource are not kept alive by the observer.
package bindx
