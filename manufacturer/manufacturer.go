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

// Package manufacturer registers and invokes the named factories of a
// single target type. A Manufacturer owns an ordered bag of Registrants
// keyed by factory name, on top of a fixed static tier shared by every
// target, and turns a method name plus raw parameters into a constructed
// instance.
package manufacturer

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"dirpx.dev/afx/apis"
)

// ErrNilManufacturer indicates a merge with a nil source.
var ErrNilManufacturer = errors.New("afx(manufacturer): nil manufacturer")

// ErrTargetMismatch indicates a merge between manufacturers of different
// target types.
var ErrTargetMismatch = errors.New("afx(manufacturer): target type mismatch")

// Manufacturer holds every registered factory for one target type. The
// zero value is not usable; construct with New or For.
//
// A Manufacturer performs no internal locking. Registration and merging
// belong to a setup phase; once that phase ends, any number of
// goroutines may call Make concurrently.
type Manufacturer struct {
	target  reflect.Type
	dynamic map[string]*Registrant
	statics map[string]*staticEntry
	def     string
}

// New creates an empty Manufacturer for the given target type.
func New(target reflect.Type) *Manufacturer {
	return &Manufacturer{
		target:  target,
		dynamic: make(map[string]*Registrant),
		statics: staticEntries(target),
	}
}

// For creates an empty Manufacturer for the type parameter T.
func For[T any]() *Manufacturer {
	return New(reflect.TypeOf((*T)(nil)).Elem())
}

// Target returns the type this manufacturer constructs.
func (m *Manufacturer) Target() reflect.Type { return m.target }

// Default returns the name of the default factory, or "" when none is
// set.
func (m *Manufacturer) Default() string { return m.def }

// SetDefault nominates a registered factory as the one invoked when a
// request carries no method name.
func (m *Manufacturer) SetDefault(name string) error {
	if _, ok := m.dynamic[name]; !ok {
		return &apis.UnknownFactoryError{Target: m.target, Method: name}
	}
	m.def = name
	return nil
}

// Has reports whether name resolves to a factory, static or dynamic.
func (m *Manufacturer) Has(name string) bool {
	if _, ok := m.statics[name]; ok {
		return true
	}
	_, ok := m.dynamic[name]
	return ok
}

// Register adds a named factory. The factory must be a function whose
// positional parameters line up one-to-one with sig and whose result is
// assignable to the target type, optionally followed by an error. Static
// factory names are reserved and cannot be registered over.
func (m *Manufacturer) Register(name string, factory any, sig []apis.Param, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if _, taken := m.statics[name]; taken {
		return &apis.CollisionError{Target: m.target, Names: []string{name}}
	}
	if _, taken := m.dynamic[name]; taken {
		return &apis.CollisionError{Target: m.target, Names: []string{name}}
	}
	r, err := newRegistrant(m.target, name, factory, sig, o)
	if err != nil {
		return err
	}
	m.dynamic[name] = r
	return nil
}

// Get returns the named dynamic registrant, or nil when absent.
func (m *Manufacturer) Get(name string) *Registrant { return m.dynamic[name] }

// Registrants returns the dynamic registrants sorted by name.
func (m *Manufacturer) Registrants() []*Registrant {
	names := make([]string, 0, len(m.dynamic))
	for k := range m.dynamic {
		names = append(names, k)
	}
	sort.Strings(names)
	rs := make([]*Registrant, len(names))
	for i, k := range names {
		rs[i] = m.dynamic[k]
	}
	return rs
}

// Statics returns the static factory descriptors sorted by name. Static
// factories are shared plumbing, not per-registration state, so they are
// excluded from merging.
func (m *Manufacturer) Statics() []StaticInfo {
	names := make([]string, 0, len(m.statics))
	for k := range m.statics {
		names = append(names, k)
	}
	sort.Strings(names)
	infos := make([]StaticInfo, len(names))
	for i, k := range names {
		infos[i] = m.statics[k].info(k)
	}
	return infos
}

// Make invokes the factory named by method with the given raw
// parameters. An empty method falls back to the default factory, which
// exists only when SetDefault nominated one, and fails otherwise. The
// static tier is consulted before the dynamic one, so static names win
// over any registrant. mk is handed down to nested construction.
func (m *Manufacturer) Make(mk apis.Maker, method string, params map[string]any) (any, error) {
	if method == "" {
		if m.def == "" {
			return nil, &apis.UnknownFactoryError{Target: m.target, Method: ""}
		}
		method = m.def
	}
	if s, ok := m.statics[method]; ok {
		return s.run(mk, m.target, params)
	}
	r, ok := m.dynamic[method]
	if !ok {
		return nil, &apis.UnknownFactoryError{Target: m.target, Method: method}
	}
	return r.call(mk, m.target, r.effective(params))
}

// Collisions returns the sorted dynamic factory names present in both
// manufacturers.
func (m *Manufacturer) Collisions(other *Manufacturer) []string {
	if other == nil {
		return nil
	}
	var names []string
	for k := range other.dynamic {
		if _, ok := m.dynamic[k]; ok {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Merge copies every dynamic registrant of other into m. The merge is
// all-or-nothing: when any factory name collides, nothing is copied and
// a CollisionError lists every clash. When m has no default and other
// does, other's default is adopted.
func (m *Manufacturer) Merge(other *Manufacturer) error {
	if other == nil {
		return ErrNilManufacturer
	}
	if other.target != m.target {
		return fmt.Errorf("%w: %v vs %v", ErrTargetMismatch, m.target, other.target)
	}
	if names := m.Collisions(other); len(names) > 0 {
		return &apis.CollisionError{Target: m.target, Names: names}
	}
	for k, r := range other.dynamic {
		m.dynamic[k] = r
	}
	if m.def == "" {
		m.def = other.def
	}
	return nil
}
