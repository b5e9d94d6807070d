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

package broker_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/afx/apis"
	"dirpx.dev/afx/broker"
	"dirpx.dev/afx/manufacturer"
)

type partA struct{ X float64 }

type partB struct {
	A partA
	Z float64
}

var (
	typeA = reflect.TypeOf(partA{})
	typeB = reflect.TypeOf(partB{})
)

// wiredBroker registers "create" factories for partA and partB.
func wiredBroker(t *testing.T) *broker.Broker {
	t.Helper()
	b := broker.New()
	require.NoError(t, b.AddFactory(typeA, "create",
		func(x float64) partA { return partA{X: x} },
		[]apis.Param{{Name: "x", Type: apis.Of[float64]()}}))
	require.NoError(t, b.AddFactory(typeB, "create",
		func(a partA, z float64) partB { return partB{A: a, Z: z} },
		[]apis.Param{
			{Name: "a", Type: apis.Of[partA]()},
			{Name: "z", Type: apis.Of[float64]()},
		}))
	return b
}

func TestMake_Nested(t *testing.T) {
	b := wiredBroker(t)
	v, err := b.Make(typeB, map[string]any{
		"create": map[string]any{
			"a": map[string]any{"create": map[string]any{"x": 37.0}},
			"z": -41.0,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, partB{A: partA{X: 37.0}, Z: -41.0}, v)
}

func TestMake_NoCaching(t *testing.T) {
	b := broker.New()
	ptrA := reflect.TypeOf(&partA{})
	calls := 0
	require.NoError(t, b.AddFactory(ptrA, "create",
		func(x float64) *partA { calls++; return &partA{X: x} },
		[]apis.Param{{Name: "x", Type: apis.Of[float64]()}}))

	spec := map[string]any{"create": map[string]any{"x": 1.0}}
	first, err := b.Make(ptrA, spec)
	require.NoError(t, err)
	second, err := b.Make(ptrA, spec)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NotSame(t, first, second)
}

func TestMake_EquivalentToGetThenMake(t *testing.T) {
	b := wiredBroker(t)
	spec := map[string]any{"x": 2.5}

	viaBroker, err := b.Make(typeA, map[string]any{"create": spec})
	require.NoError(t, err)
	m := b.Get(typeA)
	require.NotNil(t, m)
	viaMfr, err := m.Make(b, "create", spec)
	require.NoError(t, err)
	assert.Equal(t, viaBroker, viaMfr)
}

func TestMake_DirectInstance(t *testing.T) {
	b := wiredBroker(t)
	a := partA{X: 9}
	v, err := b.Make(typeA, a)
	require.NoError(t, err)
	assert.Equal(t, a, v)

	// Numeric literals convert to the requested numeric type.
	v, err = b.Make(reflect.TypeOf(0.0), 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestMake_LossyNumericRejected(t *testing.T) {
	b := broker.New()
	_, err := b.Make(reflect.TypeOf(0), 3.7)
	var tme *apis.TypeMismatchError
	require.True(t, errors.As(err, &tme))
	assert.Equal(t, 3.7, tme.Value)
}

func TestMake_NilSpecUsesDefault(t *testing.T) {
	b := broker.New()
	require.NoError(t, b.AddFactory(typeA, "zero",
		func() partA { return partA{} }, nil))
	require.NoError(t, b.Get(typeA).SetDefault("zero"))

	v, err := b.Make(typeA, nil)
	require.NoError(t, err)
	assert.Equal(t, partA{}, v)
}

func TestMake_NilSpecNoDefault(t *testing.T) {
	b := broker.New()
	require.NoError(t, b.AddFactory(typeA, "zero",
		func() partA { return partA{} }, nil))

	_, err := b.Make(typeA, nil)
	var ufe *apis.UnknownFactoryError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "", ufe.Method)
}

func TestMake_MissingManufacturer(t *testing.T) {
	b := broker.New()
	_, err := b.Make(typeA, map[string]any{"create": map[string]any{}})
	var mme *apis.MissingManufacturerError
	require.True(t, errors.As(err, &mme))
	assert.Equal(t, typeA, mme.Target)
}

func TestMake_NilType(t *testing.T) {
	b := broker.New()
	_, err := b.Make(nil, nil)
	assert.ErrorIs(t, err, broker.ErrNilType)
}

func TestMake_MalformedSpec(t *testing.T) {
	b := wiredBroker(t)
	_, err := b.Make(typeA, 42)
	var mse *apis.MalformedSpecError
	require.True(t, errors.As(err, &mse))
}

func TestMake_BuiltinLiteral(t *testing.T) {
	b := broker.New()
	v, err := b.Make(reflect.TypeOf(0), map[string]any{
		"literal": map[string]any{"value": 7},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = b.Make(reflect.TypeOf(""), map[string]any{
		"literal": map[string]any{"value": "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestMake_MapLiteralDisambiguation(t *testing.T) {
	b := broker.New()
	mapType := reflect.TypeOf(map[string]any(nil))

	// A single-key mapping whose key names no factory is the value
	// itself, not a construction request.
	raw := map[string]any{"threads": 4}
	v, err := b.Make(mapType, raw)
	require.NoError(t, err)
	assert.Equal(t, raw, v)

	// The same shape with a factory key is a construction request.
	v, err = b.Make(mapType, map[string]any{
		"literal": map[string]any{"value": map[string]any{"a": 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, v)

	// Multi-key mappings are never object specs.
	raw = map[string]any{"a": 1, "b": 2}
	v, err = b.Make(mapType, raw)
	require.NoError(t, err)
	assert.Equal(t, raw, v)
}

func TestMake_FromConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yaml")
	require.NoError(t, os.WriteFile(path, []byte("create:\n  x: 37.0\n"), 0o644))

	b := wiredBroker(t)
	v, err := b.Make(typeA, map[string]any{
		"from_config": map[string]any{"config": path},
	})
	require.NoError(t, err)
	assert.Equal(t, partA{X: 37.0}, v)
}

func TestMake_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threads: 4\nname: w\n"), 0o644))

	b := broker.New()
	v, err := b.Make(reflect.TypeOf(map[string]any(nil)), map[string]any{
		"load_config": map[string]any{"config": path},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"threads": 4, "name": "w"}, v)
}

func TestRegister_Collision(t *testing.T) {
	b := broker.New()
	require.NoError(t, b.Register(manufacturer.New(typeA)))

	err := b.Register(manufacturer.New(typeA))
	var ce *apis.CollisionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, typeA, ce.Target)
}

func TestReplace(t *testing.T) {
	b := broker.New()
	require.NoError(t, b.Register(manufacturer.New(typeA)))
	m := manufacturer.New(typeA)
	require.NoError(t, b.Replace(m))
	assert.Same(t, m, b.Get(typeA))
}

func TestRegisterLazy_MaterializesOnce(t *testing.T) {
	b := broker.New()
	built := 0
	require.NoError(t, b.RegisterLazy(typeA, func() *manufacturer.Manufacturer {
		built++
		m := manufacturer.New(typeA)
		_ = m.Register("zero", func() partA { return partA{} }, nil)
		return m
	}))
	assert.Equal(t, 0, built)

	v, err := b.Make(typeA, map[string]any{"zero": nil})
	require.NoError(t, err)
	assert.Equal(t, partA{}, v)
	_, err = b.Make(typeA, map[string]any{"zero": nil})
	require.NoError(t, err)
	assert.Equal(t, 1, built)
}

func TestGetOrCreate(t *testing.T) {
	b := broker.New()
	m, err := b.GetOrCreate(typeA)
	require.NoError(t, err)
	require.NotNil(t, m)

	again, err := b.GetOrCreate(typeA)
	require.NoError(t, err)
	assert.Same(t, m, again)

	_, err = b.GetOrCreate(nil)
	assert.ErrorIs(t, err, broker.ErrNilType)
}

func TestIsBuiltin(t *testing.T) {
	b := broker.New()
	assert.True(t, b.IsBuiltin(reflect.TypeOf(0)))
	assert.True(t, b.IsBuiltin(reflect.TypeOf("")))
	assert.True(t, b.IsBuiltin(reflect.TypeOf(map[string]any(nil))))
	assert.False(t, b.IsBuiltin(typeA))
}

func TestClasses(t *testing.T) {
	b := wiredBroker(t)
	classes := b.Classes()
	assert.Contains(t, classes, typeA)
	assert.Contains(t, classes, typeB)
	assert.Contains(t, classes, reflect.TypeOf(0))
}

func TestMerge(t *testing.T) {
	b1 := broker.New()
	require.NoError(t, b1.AddFactory(typeA, "a1",
		func() partA { return partA{X: 1} }, nil))

	b2 := broker.New()
	require.NoError(t, b2.AddFactory(typeA, "a2",
		func() partA { return partA{X: 2} }, nil))
	require.NoError(t, b2.AddFactory(typeB, "b2",
		func() partB { return partB{} }, nil))

	require.NoError(t, b1.Merge(b2))

	v, err := b1.Make(typeA, map[string]any{"a2": nil})
	require.NoError(t, err)
	assert.Equal(t, partA{X: 2}, v)
	v, err = b1.Make(typeB, map[string]any{"b2": nil})
	require.NoError(t, err)
	assert.Equal(t, partB{}, v)
}

func TestMerge_AccumulatesCollisions(t *testing.T) {
	b1 := broker.New()
	require.NoError(t, b1.AddFactory(typeA, "dup", func() partA { return partA{} }, nil))
	require.NoError(t, b1.AddFactory(typeB, "dup", func() partB { return partB{} }, nil))

	b2 := broker.New()
	require.NoError(t, b2.AddFactory(typeA, "dup", func() partA { return partA{} }, nil))
	require.NoError(t, b2.AddFactory(typeB, "dup", func() partB { return partB{} }, nil))
	require.NoError(t, b2.AddFactory(typeB, "fresh", func() partB { return partB{} }, nil))

	err := b1.Merge(b2)
	var me *apis.MergeError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, map[reflect.Type][]string{
		typeA: {"dup"},
		typeB: {"dup"},
	}, me.Collisions)

	// The failed merge moved nothing.
	assert.False(t, b1.Get(typeB).Has("fresh"))
}

func TestMerge_FreshBrokersShareBuiltinsCleanly(t *testing.T) {
	b1 := broker.New()
	b2 := broker.New()
	require.NoError(t, b2.AddFactory(reflect.TypeOf(0), "answer",
		func() int { return 42 }, nil))

	require.NoError(t, b1.Merge(b2))
	v, err := b1.Make(reflect.TypeOf(0), map[string]any{"answer": nil})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestMerge_Nil(t *testing.T) {
	b := broker.New()
	assert.ErrorIs(t, b.Merge(nil), broker.ErrNilBroker)
}

func TestMerge_DeadLazyRoutes(t *testing.T) {
	deadThunk := func() *manufacturer.Manufacturer { return nil }

	// A dead route on the source is skipped.
	b1 := broker.New()
	require.NoError(t, b1.AddFactory(typeA, "a1",
		func() partA { return partA{X: 1} }, nil))
	b2 := broker.New()
	require.NoError(t, b2.RegisterLazy(typeA, deadThunk))
	require.NoError(t, b1.Merge(b2))
	assert.True(t, b1.Get(typeA).Has("a1"))

	// A dead route on the receiver yields to the source's live one.
	b3 := broker.New()
	require.NoError(t, b3.RegisterLazy(typeB, deadThunk))
	b4 := broker.New()
	require.NoError(t, b4.AddFactory(typeB, "b4",
		func() partB { return partB{} }, nil))
	require.NoError(t, b3.Merge(b4))
	v, err := b3.Make(typeB, map[string]any{"b4": nil})
	require.NoError(t, err)
	assert.Equal(t, partB{}, v)

	// Dead routes on both sides never collide.
	b5 := broker.New()
	require.NoError(t, b5.RegisterLazy(typeA, deadThunk))
	b6 := broker.New()
	require.NoError(t, b6.RegisterLazy(typeA, deadThunk))
	assert.Empty(t, b5.Collisions(b6))
	require.NoError(t, b5.Merge(b6))
}
