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

package manufacturer

// Option is a functional option that configures a factory registration.
type Option func(*options)

// options collects registration settings.
type options struct {
	// defaults are the registrant-level default parameters, overlaid by
	// call parameters in Make.
	defaults map[string]any
	// short and long are the factory descriptions for documentation.
	short, long string
	// extras marks the factory's final parameter as the sink for
	// undeclared keys.
	extras bool
}

// WithDefaults sets default parameters for the factory. Explicit Make
// parameters win over these entries.
func WithDefaults(params map[string]any) Option {
	return func(o *options) {
		o.defaults = params
	}
}

// WithDescriptions sets the short and long factory descriptions rendered
// in exported documentation.
func WithDescriptions(short, long string) Option {
	return func(o *options) {
		o.short = short
		o.long = long
	}
}

// WithExtras declares that the factory's final parameter, which must be a
// map[string]any not covered by the signature, absorbs every effective
// parameter that names no declared argument. Without this option such keys
// fail with UnknownArgumentError.
func WithExtras() Option {
	return func(o *options) {
		o.extras = true
	}
}
