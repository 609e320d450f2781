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

// Builder composes the attached-member registry, the observation manager and the
// member manager from a Config. Implementations may migrate state from previous
// instances (prev), or ignore them.
type Builder interface {
	// BuildRegistry constructs the attached-member registry for cfg.
	// If prev is non-nil its entries may be copied into the new registry.
	BuildRegistry(cfg Config, prev Registry, ext any) Registry
	// BuildObservationManager constructs the observation façade for cfg.
	// ext is an optional extension context. Its meaning is implementation-defined.
	BuildObservationManager(cfg Config, prev ObservationManager, ext any) ObservationManager
	// BuildMemberManager constructs a member manager resolving attached members
	// from reg whose members observe through om.
	// ext is an optional extension context. Its meaning is implementation-defined.
	BuildMemberManager(cfg Config, reg Registry, om ObservationManager, prev MemberManager, ext any) MemberManager
}

// MemberManagerBinder is implemented by observation managers whose components
// need the member manager (path observers resolve segments through it).
type MemberManagerBinder interface {
	BindMemberManager(mm MemberManager)
}
