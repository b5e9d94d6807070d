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

// Param specifies one factory parameter: its name, expected value shape,
// and registration metadata. A signature is an ordered []Param matching the
// factory's positional parameters.
type Param struct {
	// Name identifies the parameter in raw specifications.
	Name string

	// Type is the expected shape of the raw value supplied for this
	// parameter.
	Type TypeSpec

	// Description is rendered in exported documentation.
	Description string

	// Default, when non-nil, is used verbatim (without shape resolution)
	// whenever the effective parameters carry no entry for Name. A
	// parameter with a nil Default is required unless it occupies the
	// factory's variadic tail.
	Default any

	// Forced marks the parameter required even when Default is set.
	Forced bool
}
