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

import (
	"reflect"
	"sort"
	"strconv"

	"dirpx.dev/afx/apis"
	"dirpx.dev/afx/resolve"
)

// errorType is the reflect.Type of the error interface.
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// extrasType is the required type of an extras sink parameter.
var extrasType = reflect.TypeOf(map[string]any(nil))

// Registrant bundles one registered factory with its introspected
// signature, per-argument shapes, defaults, and descriptions. All
// reflection over the factory's native signature happens once, here, at
// registration time. A Registrant is immutable after creation and owned by
// its Manufacturer.
type Registrant struct {
	name     string
	factory  reflect.Value
	ftype    reflect.Type
	params   []apis.Param
	index    map[string]int
	required []bool
	defaults map[string]any
	variadic bool
	extras   bool
	hasErr   bool
	short    string
	long     string
}

// newRegistrant validates name/factory/sig against each other and builds
// the immutable registrant.
func newRegistrant(target reflect.Type, name string, factory any, sig []apis.Param, o options) (*Registrant, error) {
	fail := func(reason string) error {
		return &apis.SignatureError{Target: target, Method: name, Reason: reason}
	}

	if name == "" {
		return nil, fail("empty factory name")
	}
	if factory == nil {
		return nil, fail("nil factory")
	}
	fv := reflect.ValueOf(factory)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return nil, fail("factory must be a function, got " + ft.String())
	}

	r := &Registrant{
		name:     name,
		factory:  fv,
		ftype:    ft,
		index:    make(map[string]int, len(sig)),
		defaults: o.defaults,
		variadic: ft.IsVariadic(),
		extras:   o.extras,
		short:    o.short,
		long:     o.long,
	}

	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, fail("second return value must be error")
		}
		r.hasErr = true
	default:
		return nil, fail("factory must return a value or (value, error)")
	}
	if out := ft.Out(0); !out.AssignableTo(target) && out.Kind() != reflect.Interface {
		return nil, fail("factory returns " + out.String() + ", not assignable to target")
	}

	declared := ft.NumIn()
	if r.extras {
		if r.variadic {
			return nil, fail("extras sink cannot combine with a variadic factory")
		}
		if declared == 0 || ft.In(declared-1) != extrasType {
			return nil, fail("extras sink requires a final map[string]any parameter")
		}
		declared--
	}
	if len(sig) != declared {
		return nil, fail("signature covers " + strconv.Itoa(len(sig)) +
			" parameters, factory declares " + strconv.Itoa(declared))
	}

	r.params = make([]apis.Param, len(sig))
	copy(r.params, sig)
	r.required = make([]bool, len(sig))
	for i, p := range r.params {
		if p.Name == "" {
			return nil, fail("unnamed parameter at position " + strconv.Itoa(i))
		}
		if _, dup := r.index[p.Name]; dup {
			return nil, fail("duplicate parameter name " + p.Name)
		}
		r.index[p.Name] = i

		expected := p.Type.GoType()
		if expected == nil {
			return nil, fail("parameter " + p.Name + " has an unrealizable type spec")
		}
		in := ft.In(i)
		if !expected.AssignableTo(in) && !expected.ConvertibleTo(in) {
			return nil, fail("parameter " + p.Name + " resolves to " + expected.String() +
				", factory wants " + in.String())
		}

		tail := r.variadic && i == len(sig)-1
		r.required[i] = p.Forced || (p.Default == nil && !tail)
	}
	for k := range r.defaults {
		if _, ok := r.index[k]; !ok && !r.extras {
			return nil, fail("default parameter " + k + " names no declared argument")
		}
	}
	return r, nil
}

// Name returns the registrant's factory name.
func (r *Registrant) Name() string { return r.name }

// Params returns a copy of the ordered parameter specifications.
func (r *Registrant) Params() []apis.Param {
	ps := make([]apis.Param, len(r.params))
	copy(ps, r.params)
	return ps
}

// Required reports whether the named parameter must be supplied.
func (r *Registrant) Required(name string) bool {
	i, ok := r.index[name]
	return ok && r.required[i]
}

// Defaults returns a copy of the registrant-level default parameters.
func (r *Registrant) Defaults() map[string]any {
	if r.defaults == nil {
		return nil
	}
	d := make(map[string]any, len(r.defaults))
	for k, v := range r.defaults {
		d[k] = v
	}
	return d
}

// Short returns the short description.
func (r *Registrant) Short() string { return r.short }

// Long returns the long description.
func (r *Registrant) Long() string { return r.long }

// effective overlays call params over the registrant defaults; explicit
// entries win.
func (r *Registrant) effective(params map[string]any) map[string]any {
	eff := make(map[string]any, len(r.defaults)+len(params))
	for k, v := range r.defaults {
		eff[k] = v
	}
	for k, v := range params {
		eff[k] = v
	}
	return eff
}

// undeclared returns the sorted effective keys that name no declared
// argument.
func (r *Registrant) undeclared(eff map[string]any) []string {
	var extra []string
	for k := range eff {
		if _, ok := r.index[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}

// call prepares every argument of the factory from the effective raw
// parameters and invokes it. mk is the capability used for nested
// construction.
func (r *Registrant) call(mk apis.Maker, target reflect.Type, eff map[string]any) (any, error) {
	extra := r.undeclared(eff)
	if len(extra) > 0 && !r.extras {
		return nil, &apis.UnknownArgumentError{Target: target, Method: r.name, Args: extra}
	}

	args := make([]reflect.Value, 0, r.ftype.NumIn())
	for i, p := range r.params {
		raw, present := eff[p.Name]
		tail := r.variadic && i == len(r.params)-1

		if !present {
			if r.required[i] {
				return nil, &apis.MissingArgumentError{Target: target, Method: r.name, Arg: p.Name}
			}
			if p.Default == nil {
				// Absent optional variadic tail: no arguments.
				continue
			}
			// The default is the factory's native fallback; it is
			// used verbatim, without shape resolution.
			raw = p.Default
		} else {
			resolved, err := resolve.Value(p.Type, raw, mk)
			if err != nil {
				return nil, &apis.FrameError{Target: target, Method: r.name, Arg: p.Name, Err: err}
			}
			raw = resolved
		}

		if tail {
			if raw == nil {
				continue
			}
			sv, err := resolve.Conform(p.Type, raw, r.ftype.In(i))
			if err != nil {
				return nil, &apis.FrameError{Target: target, Method: r.name, Arg: p.Name, Err: err}
			}
			for j := 0; j < sv.Len(); j++ {
				args = append(args, sv.Index(j))
			}
			continue
		}

		av, err := resolve.Conform(p.Type, raw, r.ftype.In(i))
		if err != nil {
			return nil, &apis.FrameError{Target: target, Method: r.name, Arg: p.Name, Err: err}
		}
		args = append(args, av)
	}

	if r.extras {
		sink := make(map[string]any, len(extra))
		for _, k := range extra {
			sink[k] = eff[k]
		}
		args = append(args, reflect.ValueOf(sink))
	}

	outs := r.factory.Call(args)
	if r.hasErr && !outs[1].IsNil() {
		return nil, outs[1].Interface().(error)
	}
	return outs[0].Interface(), nil
}
