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

package metadata

// Well-known keys read by bindx components.
var (
	// IgnoreAttachedMembers drops the Attached flag from member lookups.
	IgnoreAttachedMembers = NewKey("IgnoreAttachedMembers", false)
	// Observable overrides apis.MemberPathObserverRequest.Observable for root helpers.
	Observable = NewKey("Observable", false)
	// Optional overrides apis.MemberPathObserverRequest.Optional for root helpers.
	Optional = NewKey("Optional", false)
	// StablePath overrides apis.MemberPathObserverRequest.HasStablePath for root helpers.
	StablePath = NewKey("StablePath", false)
	// SuppressAttachedCallback skips the member-attached callback of delegate members.
	SuppressAttachedCallback = NewKey("SuppressAttachedCallback", false)
)
