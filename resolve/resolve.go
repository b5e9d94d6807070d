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

// Package resolve implements the TypeSpec matcher: the single total
// function that decides whether a raw specification value can serve an
// argument directly, must be constructed recursively through a Maker, or
// is invalid.
package resolve

import (
	"fmt"
	"reflect"

	"dirpx.dev/afx/apis"
)

// Value matches the raw value v against the shape ts and returns the
// resolved value.
//
// A nil v is accepted as-is for any shape (explicit absence). Whenever the
// match requires nested construction, mk is re-entered with the nested
// ObjectSpec; a nil mk makes every such requirement fail with
// MissingManufacturerError. Matching is purely structural: it never
// inspects context beyond the current TypeSpec node, and resolving an
// already-resolved value is the identity.
func Value(ts apis.TypeSpec, v any, mk apis.Maker) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch ts.Kind() {
	case apis.KindDirect:
		return direct(ts, v, mk)
	case apis.KindList:
		return list(ts, v, mk)
	case apis.KindMap:
		return mapping(ts, v, mk)
	case apis.KindTuple:
		return tuple(ts, v, mk)
	default:
		return nil, &apis.TypeMismatchError{Spec: ts, Value: v, Reason: "invalid type spec"}
	}
}

// direct accepts an assignable (or numerically convertible) value as-is;
// anything else must be a raw ObjectSpec for the target type.
func direct(ts apis.TypeSpec, v any, mk apis.Maker) (any, error) {
	t := ts.Type()
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return v, nil
	}
	if cv, ok := convertNumeric(rv, t); ok {
		return cv, nil
	}
	if !apis.IsObjectSpec(v) {
		return nil, &apis.TypeMismatchError{Spec: ts, Value: v}
	}
	if mk == nil {
		return nil, &apis.MissingManufacturerError{Target: t}
	}
	return mk.Make(t, v)
}

// list matches any sequence elementwise against the inner shape, producing
// a concretely-typed slice with order preserved.
func list(ts apis.TypeSpec, v any, mk apis.Maker) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &apis.TypeMismatchError{Spec: ts, Value: v}
	}
	et := ts.Elem()
	goElem := et.GoType()
	if goElem == nil {
		return nil, &apis.TypeMismatchError{Spec: ts, Value: v, Reason: "unrealizable element type"}
	}
	out := reflect.MakeSlice(reflect.SliceOf(goElem), 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		resolved, err := Value(et, rv.Index(i).Interface(), mk)
		if err != nil {
			return nil, err
		}
		ev, err := Conform(et, resolved, goElem)
		if err != nil {
			return nil, err
		}
		out = reflect.Append(out, ev)
	}
	return out.Interface(), nil
}

// mapping matches either a native mapping entrywise, or a sequence of
// two-element key/value pairs. The pair form exists because a key that must
// itself be expressed as an ObjectSpec cannot appear as a mapping key in
// the raw specification. Both forms produce the same map[K]V.
func mapping(ts apis.TypeSpec, v any, mk apis.Maker) (any, error) {
	kt, vt := ts.Key(), ts.Value()
	goMap := ts.GoType()
	if goMap == nil {
		return nil, &apis.TypeMismatchError{Spec: ts, Value: v, Reason: "key type is not comparable"}
	}
	goKey, goVal := goMap.Key(), goMap.Elem()

	rv := reflect.ValueOf(v)
	out := reflect.MakeMap(goMap)

	set := func(rawKey, rawVal any) error {
		rk, err := Value(kt, rawKey, mk)
		if err != nil {
			return err
		}
		kv, err := Conform(kt, rk, goKey)
		if err != nil {
			return err
		}
		rw, err := Value(vt, rawVal, mk)
		if err != nil {
			return err
		}
		vv, err := Conform(vt, rw, goVal)
		if err != nil {
			return err
		}
		out.SetMapIndex(kv, vv)
		return nil
	}

	switch rv.Kind() {
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if err := set(iter.Key().Interface(), iter.Value().Interface()); err != nil {
				return nil, err
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			rawKey, rawVal, err := pairEntry(ts, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			if err := set(rawKey, rawVal); err != nil {
				return nil, err
			}
		}
	default:
		return nil, &apis.TypeMismatchError{Spec: ts, Value: v}
	}
	return out.Interface(), nil
}

// pairEntry decodes one entry of the pair-list mapping form: either a
// two-element sequence [key, value] or an explicit {"key": k, "value": v}
// mapping.
func pairEntry(ts apis.TypeSpec, entry any) (any, any, error) {
	switch e := entry.(type) {
	case map[string]any:
		if len(e) == 2 {
			k, hasKey := e["key"]
			v, hasVal := e["value"]
			if hasKey && hasVal {
				return k, v, nil
			}
		}
	default:
		ev := reflect.ValueOf(entry)
		if (ev.Kind() == reflect.Slice || ev.Kind() == reflect.Array) && ev.Len() == 2 {
			return ev.Index(0).Interface(), ev.Index(1).Interface(), nil
		}
	}
	return nil, nil, &apis.TypeMismatchError{
		Spec:   ts,
		Value:  entry,
		Reason: "mapping pair entry must be [key, value] or {\"key\": ..., \"value\": ...}",
	}
}

// tuple matches a sequence of exactly the declared arity, position-wise.
// Go has no tuple type, so the resolved form is []any of that arity.
func tuple(ts apis.TypeSpec, v any, mk apis.Maker) (any, error) {
	es := ts.Elems()
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &apis.TypeMismatchError{Spec: ts, Value: v}
	}
	if rv.Len() != len(es) {
		return nil, &apis.TypeMismatchError{
			Spec:   ts,
			Value:  v,
			Reason: fmt.Sprintf("arity %d, got %d elements", len(es), rv.Len()),
		}
	}
	out := make([]any, len(es))
	for i, e := range es {
		resolved, err := Value(e, rv.Index(i).Interface(), mk)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

// Conform turns a resolved value into a reflect.Value of the concrete type
// t, with nil mapping to the zero value. ts is used only to annotate the
// mismatch error.
func Conform(ts apis.TypeSpec, v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if cv, ok := convertNumeric(rv, t); ok {
		return reflect.ValueOf(cv), nil
	}
	return reflect.Value{}, &apis.TypeMismatchError{Spec: ts, Value: v}
}

// convertNumeric converts between numeric kinds. Text-serialized
// specifications cannot distinguish 37 from 37.0 reliably, so a numeric
// raw value is accepted for any numeric target, provided the conversion
// preserves the value exactly. A round-trip back to the source type
// catches truncation (3.7 does not floor into an int slot) and overflow.
func convertNumeric(rv reflect.Value, t reflect.Type) (any, bool) {
	if !isNumeric(rv.Kind()) || !isNumeric(t.Kind()) {
		return nil, false
	}
	if !rv.Type().ConvertibleTo(t) {
		return nil, false
	}
	cv := rv.Convert(t)
	if cv.Convert(rv.Type()).Interface() != rv.Interface() {
		return nil, false
	}
	return cv.Interface(), true
}

// isNumeric reports whether k is an integer or float kind.
func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
