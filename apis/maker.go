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

// Maker constructs an object of a target type from a raw specification.
// It is the capability a Manufacturer receives to route nested
// sub-requests; a Broker is the canonical implementation. Threading the
// handle through each call (instead of storing a back-reference) lets one
// Manufacturer participate in any number of Brokers.
type Maker interface {
	// Make resolves spec against the manufacturer registered for t and
	// returns the constructed object. spec is either a value already
	// conforming to t, or a raw ObjectSpec mapping.
	Make(t reflect.Type, spec any) (any, error)
}
