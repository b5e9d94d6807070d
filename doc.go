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

// Package afx builds object graphs from declarative specifications.
//
// afx turns "a target Go type plus a nested mapping" into a constructed
// value. The mapping names a factory and its parameters; wherever a
// parameter itself needs an object, the engine recurses with the nested
// sub-mapping until it bottoms out at literals of primitive types. The
// same mechanism works whether the specification is written inline in Go
// or loaded from a YAML/JSON file.
//
// # Design
//
// The engine has four layers, each its own package:
//
//   - apis.TypeSpec: the shape language of factory arguments. A shape is
//     either Direct (a concrete Go type), List (homogeneous sequence),
//     Map (key/value pairs), or Tuple (fixed-arity heterogeneous
//     sequence). Shapes nest arbitrarily.
//
//   - manufacturer.Manufacturer: the named factories of one target type.
//     Registration introspects each factory function once, pairing its
//     positional parameters with declared apis.Param entries; Make then
//     resolves raw parameters against those shapes and invokes the
//     function. A static tier ("from_config", the builtin "literal")
//     sits in front of the registered factories.
//
//   - broker.Broker: the routing table from target type to Manufacturer,
//     preloaded with builtins for primitive scalar and container types.
//     The Broker is the recursion hub: it implements apis.Maker, and
//     every nested object spec re-enters it through that capability.
//
//   - Merging: Manufacturers of the same target type merge under an
//     all-or-nothing name-collision rule; Brokers merge per shared type,
//     accumulating every collision before touching anything.
//
// A minimal integration looks like:
//
//	type Engine struct{ Threads int }
//
//	afx.AddFactory(reflect.TypeOf(Engine{}), "create",
//		func(threads int) Engine { return Engine{Threads: threads} },
//		[]afx.Param{{Name: "threads", Type: afx.Of[int]()}})
//
//	e, err := afx.MakeAs[Engine](map[string]any{
//		"create": map[string]any{"threads": 4},
//	})
//
// The specification may just as well come from a file:
//
//	e, err := afx.MakeAs[Engine](map[string]any{
//		"from_config": map[string]any{"config": "engine.yaml"},
//	})
//
// # Global API
//
// The package-level functions wrap a process-wide Broker held behind an
// atomic pointer. Construction calls (Make, MakeAs, Get, Default) load
// the current broker without locking; setup calls (Register, AddFactory,
// GetOrCreate, Merge, SetDefault, Reset) serialize behind an internal
// mutex. Standalone Brokers created with NewBroker are independent of the
// global one and of each other.
//
// # Concurrency model
//
// Registries reach a stable state during single-threaded setup, then
// serve unsynchronized concurrent reads. Construction itself is fully
// synchronous: a Make call recurses depth-first through the nested
// specification and returns (or fails) in one call stack, with no
// caching of intermediate objects. The engine performs no cycle
// detection: a specification that reaches itself recurses until the
// goroutine stack is exhausted. Concurrent registration and
// construction is not supported; finish wiring before the first
// concurrent Make.
//
// # Scope
//
// afx is a construction engine, not a dependency-injection container. It
// has no notion of lifecycle, scoping, or interception: factories run
// every time they are named, results are returned as-is, and everything
// else belongs to the integrating binary.
package afx
