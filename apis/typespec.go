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

import (
	"reflect"
	"strings"
)

// Kind enumerates the variants of the TypeSpec union.
type Kind int

const (
	// KindInvalid is the zero Kind; a zero TypeSpec matches nothing.
	KindInvalid Kind = iota
	// KindDirect describes a concrete target type.
	KindDirect
	// KindList describes a homogeneous sequence of one inner shape.
	KindList
	// KindMap describes a homogeneous key-to-value mapping.
	KindMap
	// KindTuple describes a fixed-arity heterogeneous sequence.
	KindTuple
)

// String returns the lowercase variant name.
func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindTuple:
		return "tuple"
	default:
		return "invalid"
	}
}

// TypeSpec describes the expected shape of a factory argument.
//
// It is a closed tagged union with four variants:
//
//	Direct(T)      any concrete target type T
//	List(E)        homogeneous sequence of E
//	Map(K, V)      homogeneous mapping from K to V
//	Tuple(E0..En)  fixed-arity heterogeneous sequence
//
// List and Map carry exactly one shape per slot, and a Tuple's arity is
// fixed at definition. TypeSpec values are immutable and safe to share.
type TypeSpec struct {
	kind  Kind
	typ   reflect.Type
	inner []TypeSpec
}

// Direct constructs the TypeSpec for the concrete type t.
// A nil t yields the zero (invalid) TypeSpec.
func Direct(t reflect.Type) TypeSpec {
	if t == nil {
		return TypeSpec{}
	}
	return TypeSpec{kind: KindDirect, typ: t}
}

// Of is the generic shorthand for Direct on a compile-time known type.
func Of[T any]() TypeSpec {
	return Direct(reflect.TypeOf((*T)(nil)).Elem())
}

// ListOf constructs the TypeSpec for a homogeneous sequence of elem.
func ListOf(elem TypeSpec) TypeSpec {
	return TypeSpec{kind: KindList, inner: []TypeSpec{elem}}
}

// MapOf constructs the TypeSpec for a homogeneous key-to-value mapping.
func MapOf(key, value TypeSpec) TypeSpec {
	return TypeSpec{kind: KindMap, inner: []TypeSpec{key, value}}
}

// TupleOf constructs the TypeSpec for a fixed-arity sequence. The arity of
// the resulting spec equals len(elems) and never varies at use time.
func TupleOf(elems ...TypeSpec) TypeSpec {
	es := make([]TypeSpec, len(elems))
	copy(es, elems)
	return TypeSpec{kind: KindTuple, inner: es}
}

// Kind returns the variant tag of s.
func (s TypeSpec) Kind() Kind { return s.kind }

// Type returns the concrete type of a Direct spec, or nil for other kinds.
func (s TypeSpec) Type() reflect.Type { return s.typ }

// Elem returns the element shape of a List spec.
func (s TypeSpec) Elem() TypeSpec {
	if s.kind != KindList {
		return TypeSpec{}
	}
	return s.inner[0]
}

// Key returns the key shape of a Map spec.
func (s TypeSpec) Key() TypeSpec {
	if s.kind != KindMap {
		return TypeSpec{}
	}
	return s.inner[0]
}

// Value returns the value shape of a Map spec.
func (s TypeSpec) Value() TypeSpec {
	if s.kind != KindMap {
		return TypeSpec{}
	}
	return s.inner[1]
}

// Elems returns a copy of the element shapes of a Tuple spec.
func (s TypeSpec) Elems() []TypeSpec {
	if s.kind != KindTuple {
		return nil
	}
	es := make([]TypeSpec, len(s.inner))
	copy(es, s.inner)
	return es
}

// GoType returns the concrete Go type a resolved value of this shape has:
// T for Direct, []E for List, map[K]V for Map, and []any for Tuple (Go has
// no tuple type). It returns nil for an invalid spec or for a Map whose
// key shape resolves to a non-comparable type.
func (s TypeSpec) GoType() reflect.Type {
	switch s.kind {
	case KindDirect:
		return s.typ
	case KindList:
		et := s.inner[0].GoType()
		if et == nil {
			return nil
		}
		return reflect.SliceOf(et)
	case KindMap:
		kt := s.inner[0].GoType()
		vt := s.inner[1].GoType()
		if kt == nil || vt == nil || !kt.Comparable() {
			return nil
		}
		return reflect.MapOf(kt, vt)
	case KindTuple:
		return anySliceType
	default:
		return nil
	}
}

var anySliceType = reflect.TypeOf([]any(nil))

// String renders the spec in its grammar form, e.g. "[pkg.T]",
// "{string: pkg.T}", "(float64, [int])".
func (s TypeSpec) String() string {
	switch s.kind {
	case KindDirect:
		return s.typ.String()
	case KindList:
		return "[" + s.inner[0].String() + "]"
	case KindMap:
		return "{" + s.inner[0].String() + ": " + s.inner[1].String() + "}"
	case KindTuple:
		parts := make([]string, len(s.inner))
		for i, e := range s.inner {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "<invalid>"
	}
}
