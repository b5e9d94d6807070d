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
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// typeName renders a target type for error messages, tolerating nil.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// UnknownFactoryError indicates that a requested registrant name (or the
// default, when Method is empty) is not present in a Manufacturer.
type UnknownFactoryError struct {
	// Target is the Manufacturer's target type.
	Target reflect.Type
	// Method is the requested factory name; empty means the default
	// factory was requested but none is configured.
	Method string
}

// Error implements the error interface.
func (e *UnknownFactoryError) Error() string {
	if e.Method == "" {
		return "afx: no default factory configured for type " + typeName(e.Target)
	}
	return "afx: no factory " + strconv.Quote(e.Method) + " for type " + typeName(e.Target)
}

// MissingManufacturerError indicates that a Broker has no route for the
// requested (or recursively required) target type.
type MissingManufacturerError struct {
	// Target is the unrouted type.
	Target reflect.Type
}

// Error implements the error interface.
func (e *MissingManufacturerError) Error() string {
	return "afx: no manufacturer for type " + typeName(e.Target)
}

// MalformedSpecError indicates that a raw value expected to be an
// ObjectSpec is not a single-key mapping (nor the explicit key/inputs
// form).
type MalformedSpecError struct {
	// Target is the type the spec was addressed to.
	Target reflect.Type
	// Spec is the offending raw value.
	Spec any
}

// Error implements the error interface.
func (e *MalformedSpecError) Error() string {
	return fmt.Sprintf(
		"afx: malformed object spec for type %s: want a single-key mapping "+
			"{factory: params} or {%q: ..., %q: ...}, got %T",
		typeName(e.Target), SpecKey, SpecInputs, e.Spec)
}

// TypeMismatchError indicates that a raw value neither conforms to its
// argument's TypeSpec nor is a resolvable ObjectSpec.
type TypeMismatchError struct {
	// Spec is the expected shape.
	Spec TypeSpec
	// Value is the offending raw value.
	Value any
	// Reason optionally refines the mismatch (e.g. a tuple arity).
	Reason string
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	msg := fmt.Sprintf("afx: value of type %T does not conform to %s", e.Value, e.Spec)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// MissingArgumentError indicates that a required argument has no entry
// after defaulting.
type MissingArgumentError struct {
	// Target is the Manufacturer's target type.
	Target reflect.Type
	// Method is the factory name in play.
	Method string
	// Arg is the missing argument's name.
	Arg string
}

// Error implements the error interface.
func (e *MissingArgumentError) Error() string {
	return "afx: missing required argument " + strconv.Quote(e.Arg) +
		" for factory " + strconv.Quote(e.Method) + " of type " + typeName(e.Target)
}

// UnknownArgumentError indicates that the effective parameters include keys
// that name no declared argument and are not absorbed by an extras sink.
type UnknownArgumentError struct {
	// Target is the Manufacturer's target type.
	Target reflect.Type
	// Method is the factory name in play.
	Method string
	// Args lists every undeclared key, sorted.
	Args []string
}

// Error implements the error interface.
func (e *UnknownArgumentError) Error() string {
	return "afx: unknown arguments [" + strings.Join(e.Args, ", ") +
		"] for factory " + strconv.Quote(e.Method) + " of type " + typeName(e.Target)
}

// SignatureError indicates an invalid registration: the supplied signature
// does not line up with the factory's native signature.
type SignatureError struct {
	// Target is the Manufacturer's target type.
	Target reflect.Type
	// Method is the factory name being registered.
	Method string
	// Reason describes the mismatch.
	Reason string
}

// Error implements the error interface.
func (e *SignatureError) Error() string {
	return "afx: invalid signature for factory " + strconv.Quote(e.Method) +
		" of type " + typeName(e.Target) + ": " + e.Reason
}

// CollisionError indicates a registration collision: a factory name (or a
// set of names, for merges) already present in a Manufacturer, or a target
// type already routed by a Broker when Names is empty.
type CollisionError struct {
	// Target is the type whose registry collided.
	Target reflect.Type
	// Names lists every colliding factory name, sorted. Empty for a
	// Broker route collision.
	Names []string
}

// Error implements the error interface.
func (e *CollisionError) Error() string {
	if len(e.Names) == 0 {
		return "afx: type " + typeName(e.Target) + " is already registered"
	}
	return "afx: factory name collision for type " + typeName(e.Target) +
		": [" + strings.Join(e.Names, ", ") + "]"
}

// MergeError reports every collision found while merging two Brokers. The
// collision check runs over all shared target types before anything is
// mutated, so the caller sees the full set.
type MergeError struct {
	// Collisions maps each colliding target type to its colliding
	// factory names.
	Collisions map[reflect.Type][]string
}

// Error implements the error interface.
func (e *MergeError) Error() string {
	parts := make([]string, 0, len(e.Collisions))
	for t, names := range e.Collisions {
		parts = append(parts, typeName(t)+": ["+strings.Join(names, ", ")+"]")
	}
	sort.Strings(parts)
	return "afx: broker merge collisions: " + strings.Join(parts, "; ")
}

// FrameError annotates an error from the resolution recursion with the
// exact frame it was raised in: the Manufacturer's target type, the factory
// name, and the argument being prepared. Nested failures wrap into a chain
// of frames traceable with errors.Unwrap.
type FrameError struct {
	// Target is the Manufacturer's target type.
	Target reflect.Type
	// Method is the factory name in play.
	Method string
	// Arg is the argument being prepared.
	Arg string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *FrameError) Error() string {
	return "afx: [" + typeName(e.Target) + " " + strconv.Quote(e.Method) +
		" arg " + strconv.Quote(e.Arg) + "] " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *FrameError) Unwrap() error { return e.Err }
