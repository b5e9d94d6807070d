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

// Package broker routes typed construction requests to the Manufacturer
// responsible for the target type. A Broker is the recursion hub: nested
// object specs re-enter it through the apis.Maker capability until the
// recursion terminates at the preloaded builtin types.
package broker

import (
	"errors"
	"reflect"
	"sort"
	"sync"

	"dirpx.dev/afx/apis"
	"dirpx.dev/afx/manufacturer"
	uref "dirpx.dev/afx/utils/reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("afx(broker): nil reflect.Type provided")
	// ErrNilManufacturer is returned when a nil Manufacturer or thunk
	// is registered.
	ErrNilManufacturer = errors.New("afx(broker): nil manufacturer provided")
	// ErrNilBroker is returned when merging with a nil Broker.
	ErrNilBroker = errors.New("afx(broker): nil broker provided")
)

// route holds one routing table entry: either a materialized Manufacturer
// or a thunk that produces it on first use.
type route struct {
	once  sync.Once
	thunk func() *manufacturer.Manufacturer
	mfr   *manufacturer.Manufacturer
}

// get materializes the route. Thunks run at most once per route.
func (r *route) get() *manufacturer.Manufacturer {
	r.once.Do(func() {
		if r.mfr == nil && r.thunk != nil {
			r.mfr = r.thunk()
			r.thunk = nil
		}
	})
	return r.mfr
}

// Broker is a routing table from target type to Manufacturer. It
// implements apis.Maker, so it can be threaded into nested resolution.
//
// A Broker performs no internal locking around its routing table:
// registration and merging belong to a single-threaded setup phase, after
// which any number of goroutines may call Make concurrently.
type Broker struct {
	routes   map[reflect.Type]*route
	builtins map[reflect.Type]bool
}

// New creates a Broker preloaded with the builtin Manufacturers for
// primitive scalar and container types. The builtins expose their
// pass-through factory through the static tier, so they start with no
// dynamic registrants and remain open for user factories.
func New() *Broker {
	b := &Broker{
		routes:   make(map[reflect.Type]*route),
		builtins: make(map[reflect.Type]bool),
	}
	for _, t := range manufacturer.BuiltinTypes() {
		b.routes[t] = &route{mfr: manufacturer.New(t)}
		b.builtins[t] = true
	}
	return b
}

// IsBuiltin reports whether t is one of the preloaded builtin types.
func (b *Broker) IsBuiltin(t reflect.Type) bool { return b.builtins[t] }

// Register adds a Manufacturer, indexed by its target type. Registering
// over an existing route fails; builtin routes are no exception, use
// Replace to override them deliberately.
func (b *Broker) Register(m *manufacturer.Manufacturer) error {
	if m == nil {
		return ErrNilManufacturer
	}
	t := m.Target()
	if t == nil {
		return ErrNilType
	}
	if _, ok := b.routes[t]; ok {
		return &apis.CollisionError{Target: t}
	}
	b.routes[t] = &route{mfr: m}
	return nil
}

// RegisterLazy adds a thunk producing the Manufacturer for t on first
// use. The thunk runs at most once per Broker.
func (b *Broker) RegisterLazy(t reflect.Type, thunk func() *manufacturer.Manufacturer) error {
	if t == nil {
		return ErrNilType
	}
	if thunk == nil {
		return ErrNilManufacturer
	}
	if _, ok := b.routes[t]; ok {
		return &apis.CollisionError{Target: t}
	}
	b.routes[t] = &route{thunk: thunk}
	return nil
}

// RegisterAll registers every given Manufacturer, stopping at the first
// failure.
func (b *Broker) RegisterAll(ms ...*manufacturer.Manufacturer) error {
	for _, m := range ms {
		if err := b.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Replace installs a Manufacturer over any existing route for its target
// type.
func (b *Broker) Replace(m *manufacturer.Manufacturer) error {
	if m == nil {
		return ErrNilManufacturer
	}
	if m.Target() == nil {
		return ErrNilType
	}
	b.routes[m.Target()] = &route{mfr: m}
	return nil
}

// Get returns the Manufacturer routed for t, materializing a lazy route,
// or nil when t is not routed.
func (b *Broker) Get(t reflect.Type) *manufacturer.Manufacturer {
	r, ok := b.routes[t]
	if !ok {
		return nil
	}
	return r.get()
}

// GetOrCreate returns the Manufacturer for t, creating and registering an
// empty one when t is not routed.
func (b *Broker) GetOrCreate(t reflect.Type) (*manufacturer.Manufacturer, error) {
	if t == nil {
		return nil, ErrNilType
	}
	if r, ok := b.routes[t]; ok {
		return r.get(), nil
	}
	m := manufacturer.New(t)
	b.routes[t] = &route{mfr: m}
	return m, nil
}

// AddFactory registers a named factory for t, creating the Manufacturer
// on demand.
func (b *Broker) AddFactory(t reflect.Type, name string, factory any, sig []apis.Param, opts ...manufacturer.Option) error {
	m, err := b.GetOrCreate(t)
	if err != nil {
		return err
	}
	return m.Register(name, factory, sig, opts...)
}

// Classes returns every routed target type, sorted by name. Lazy routes
// are reported without being materialized.
func (b *Broker) Classes() []reflect.Type {
	ts := make([]reflect.Type, 0, len(b.routes))
	for t := range b.routes {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return uref.TypeName(ts[i]) < uref.TypeName(ts[j]) })
	return ts
}

// Make constructs an instance of t from spec. A value already assignable
// to t is returned as-is; otherwise spec must be an object spec naming a
// factory of t's Manufacturer. A nil spec invokes the default factory
// with no parameters. Make implements apis.Maker.
//
// Construction recurses depth-first with no cycle detection; a
// specification that reaches itself exhausts the goroutine stack.
func (b *Broker) Make(t reflect.Type, spec any) (any, error) {
	if t == nil {
		return nil, ErrNilType
	}

	// A value that already is the target short-circuits construction.
	// Map-typed targets are the exception: a single-key mapping is
	// ambiguous between a literal and an object spec, so it goes
	// through spec parsing and falls back to the literal reading when
	// its key names no factory.
	direct := false
	if spec != nil {
		st := reflect.TypeOf(spec)
		switch {
		case st.AssignableTo(t):
			direct = true
			if t.Kind() == reflect.Map && apis.IsObjectSpec(spec) {
				direct = false
			}
		case st.ConvertibleTo(t) && isNumeric(st.Kind()) && isNumeric(t.Kind()):
			// The conversion must preserve the value exactly.
			cv := reflect.ValueOf(spec).Convert(t)
			if cv.Convert(st).Interface() != spec {
				return nil, &apis.TypeMismatchError{
					Spec:   apis.Direct(t),
					Value:  spec,
					Reason: "lossy numeric conversion",
				}
			}
			return cv.Interface(), nil
		}
		if direct {
			return spec, nil
		}
	}

	r, ok := b.routes[t]
	if !ok {
		// An unrouted map type keeps its literal reading.
		if spec != nil && reflect.TypeOf(spec).AssignableTo(t) {
			return spec, nil
		}
		return nil, &apis.MissingManufacturerError{Target: t}
	}
	m := r.get()
	if m == nil {
		return nil, &apis.MissingManufacturerError{Target: t}
	}

	if spec == nil {
		return m.Make(b, "", nil)
	}
	os, err := apis.ParseObjectSpec(t, spec)
	if err != nil {
		if t.Kind() == reflect.Map && reflect.TypeOf(spec).AssignableTo(t) {
			return spec, nil
		}
		return nil, err
	}
	// Resolve the map ambiguity: a single-key mapping whose key names no
	// factory is the literal value itself.
	if t.Kind() == reflect.Map && !m.Has(os.Key) {
		if reflect.TypeOf(spec).AssignableTo(t) {
			return spec, nil
		}
	}
	return m.Make(b, os.Key, os.Inputs)
}

// Collisions returns, per shared target type, the dynamic factory names
// present in both Brokers. Static factories (the builtin pass-throughs
// included) never collide.
func (b *Broker) Collisions(other *Broker) map[reflect.Type][]string {
	if other == nil {
		return nil
	}
	var out map[reflect.Type][]string
	for t, or := range other.routes {
		br, ok := b.routes[t]
		if !ok {
			continue
		}
		bm, om := br.get(), or.get()
		if bm == nil || om == nil {
			// A thunk that produced no Manufacturer left a dead route.
			// Dead routes hold no factories, so nothing can collide.
			continue
		}
		names := bm.Collisions(om)
		if len(names) > 0 {
			if out == nil {
				out = make(map[reflect.Type][]string)
			}
			out[t] = names
		}
	}
	return out
}

// Merge folds other's routes into b. Manufacturers for shared target
// types merge under the all-or-nothing name rule; routes present only in
// other are adopted as-is. The collision check covers every shared type
// before anything is mutated, so a failing merge reports the full set of
// collisions and leaves both Brokers untouched.
func (b *Broker) Merge(other *Broker) error {
	if other == nil {
		return ErrNilBroker
	}
	if collisions := b.Collisions(other); len(collisions) > 0 {
		return &apis.MergeError{Collisions: collisions}
	}
	for t, or := range other.routes {
		br, ok := b.routes[t]
		if !ok {
			b.routes[t] = or
			continue
		}
		om := or.get()
		if om == nil {
			continue
		}
		bm := br.get()
		if bm == nil {
			// A dead route on the receiver yields to other's live one.
			b.routes[t] = or
			continue
		}
		if err := bm.Merge(om); err != nil {
			return err
		}
	}
	return nil
}

// isNumeric reports whether k is an integer or floating point kind.
func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
