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

package afx

import (
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/afx/apis"
	"dirpx.dev/afx/broker"
	"dirpx.dev/afx/manufacturer"
)

// init publishes the initial global broker.
func init() {
	st.Store(broker.New())
}

// buildMu serializes writers (registrations, merges, swaps) on the global
// broker so setup from multiple packages stays consistent.
var buildMu sync.Mutex

// st is the global afx broker.
var st atomic.Pointer[broker.Broker]

// Aliases for the types most callers touch, so simple integrations import
// only this package.
type (
	// TypeSpec describes the shape of a factory argument.
	TypeSpec = apis.TypeSpec
	// Param declares one named factory argument.
	Param = apis.Param
	// ObjectSpec is the parsed wire form of a construction request.
	ObjectSpec = apis.ObjectSpec
	// Maker is the capability threaded through nested construction.
	Maker = apis.Maker
	// Broker routes typed construction requests.
	Broker = broker.Broker
	// Manufacturer holds the named factories of one target type.
	Manufacturer = manufacturer.Manufacturer
	// Option adjusts a factory registration.
	Option = manufacturer.Option
)

// Shape constructors, re-exported from apis.
var (
	// Direct matches values of exactly the given type.
	Direct = apis.Direct
	// ListOf matches homogeneous sequences of the element shape.
	ListOf = apis.ListOf
	// MapOf matches mappings of the key and value shapes.
	MapOf = apis.MapOf
	// TupleOf matches fixed-arity heterogeneous sequences.
	TupleOf = apis.TupleOf
)

// Registration options, re-exported from manufacturer.
var (
	// WithDefaults attaches registration-level default parameters.
	WithDefaults = manufacturer.WithDefaults
	// WithDescriptions attaches short and long factory descriptions.
	WithDescriptions = manufacturer.WithDescriptions
	// WithExtras lets the factory absorb undeclared parameters.
	WithExtras = manufacturer.WithExtras
)

// Of returns the Direct shape for the type parameter T.
func Of[T any]() TypeSpec {
	return apis.Of[T]()
}

// NewBroker creates a standalone Broker preloaded with the builtins.
func NewBroker() *Broker {
	return broker.New()
}

// NewManufacturer creates an empty Manufacturer for the type parameter T.
func NewManufacturer[T any]() *Manufacturer {
	return manufacturer.For[T]()
}

// Default returns the global broker. Reads through it are safe for
// concurrent use once the setup phase is over.
func Default() *Broker {
	return st.Load()
}

// SetDefault replaces the global broker. A nil broker leaves the global
// state unchanged.
func SetDefault(b *Broker) {
	if b == nil {
		return
	}
	buildMu.Lock()
	defer buildMu.Unlock()
	st.Store(b)
}

// Reset swaps in a fresh global broker holding only the builtins. This is
// mainly used by tests to get a deterministic state between cases.
func Reset() {
	buildMu.Lock()
	defer buildMu.Unlock()
	st.Store(broker.New())
}

// Make constructs an instance of t from spec using the global broker.
// This is a convenience wrapper around the global broker.
func Make(t reflect.Type, spec any) (any, error) {
	return st.Load().Make(t, spec)
}

// MakeAs constructs an instance of the type parameter T from spec using
// the global broker.
func MakeAs[T any](spec any) (T, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()
	v, err := st.Load().Make(t, spec)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, &apis.TypeMismatchError{Spec: apis.Direct(t), Value: v}
	}
	return out, nil
}

// Get returns the Manufacturer routed for t in the global broker, or nil.
func Get(t reflect.Type) *Manufacturer {
	return st.Load().Get(t)
}

// GetOrCreate returns the Manufacturer for t in the global broker,
// creating and registering an empty one when absent.
func GetOrCreate(t reflect.Type) (*Manufacturer, error) {
	buildMu.Lock()
	defer buildMu.Unlock()
	return st.Load().GetOrCreate(t)
}

// Register adds a Manufacturer to the global broker.
func Register(m *Manufacturer) error {
	buildMu.Lock()
	defer buildMu.Unlock()
	return st.Load().Register(m)
}

// RegisterLazy adds a Manufacturer thunk for t to the global broker.
func RegisterLazy(t reflect.Type, thunk func() *Manufacturer) error {
	buildMu.Lock()
	defer buildMu.Unlock()
	return st.Load().RegisterLazy(t, thunk)
}

// AddFactory registers a named factory for t on the global broker,
// creating the Manufacturer on demand.
func AddFactory(t reflect.Type, name string, factory any, sig []Param, opts ...Option) error {
	buildMu.Lock()
	defer buildMu.Unlock()
	return st.Load().AddFactory(t, name, factory, sig, opts...)
}

// Merge folds other's routes into the global broker.
func Merge(other *Broker) error {
	buildMu.Lock()
	defer buildMu.Unlock()
	return st.Load().Merge(other)
}
