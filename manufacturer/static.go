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

	"dirpx.dev/afx/apis"
	"dirpx.dev/afx/resolve"
	"dirpx.dev/afx/specfile"
)

// FromConfigName is the static factory that constructs the target from
// an on-disk spec file.
const FromConfigName = "from_config"

// LiteralName is the pass-through static factory of the builtin types.
const LiteralName = "literal"

// LoadConfigName is the static factory of map[string]any that loads a
// mapping from a spec file without re-entering construction.
const LoadConfigName = "load_config"

var (
	anySliceType  = reflect.TypeOf([]any(nil))
	stringMapType = reflect.TypeOf(map[string]any(nil))
)

// builtinTypes are the preloaded primitive and container types. Their
// manufacturers carry a pass-through "literal" static, which is what lets
// type spec leaves terminate the construction recursion without a
// user-supplied factory.
var builtinTypes = []reflect.Type{
	reflect.TypeOf(false),
	reflect.TypeOf(int(0)),
	reflect.TypeOf(int64(0)),
	reflect.TypeOf(float64(0)),
	reflect.TypeOf(""),
	anySliceType,
	stringMapType,
}

// BuiltinTypes returns the types whose manufacturers carry the builtin
// pass-through factory.
func BuiltinTypes() []reflect.Type {
	ts := make([]reflect.Type, len(builtinTypes))
	copy(ts, builtinTypes)
	return ts
}

// staticEntry is a built-in factory shared by every target type. Static
// entries sit in front of the dynamic registrants and never participate
// in merging.
type staticEntry struct {
	params []apis.Param
	short  string
	long   string
	run    func(mk apis.Maker, target reflect.Type, params map[string]any) (any, error)
}

// StaticInfo describes one static factory for documentation purposes.
type StaticInfo struct {
	Name   string
	Params []apis.Param
	Short  string
	Long   string
}

func (s *staticEntry) info(name string) StaticInfo {
	ps := make([]apis.Param, len(s.params))
	copy(ps, s.params)
	return StaticInfo{Name: name, Params: ps, Short: s.short, Long: s.long}
}

// staticEntries builds the static tier for a target type. Every target
// gets "from_config"; the builtin types additionally get their
// pass-through "literal", and map[string]any gets "load_config". Static
// entries never participate in merging.
func staticEntries(target reflect.Type) map[string]*staticEntry {
	entries := map[string]*staticEntry{
		FromConfigName: fromConfigEntry(),
	}
	for _, t := range builtinTypes {
		if t == target {
			entries[LiteralName] = literalEntry(target)
			break
		}
	}
	if target == stringMapType {
		entries[LoadConfigName] = loadConfigEntry()
	}
	return entries
}

func fromConfigEntry() *staticEntry {
	return &staticEntry{
		params: []apis.Param{{
			Name:        "config",
			Type:        apis.Of[string](),
			Description: "Path of the YAML or JSON file holding the object spec.",
		}},
		short: "Loads an object spec from a file and constructs the target from it.",
		long: "The named file is parsed by extension (.yaml, .yml or .json) and " +
			"its content is treated as an ordinary object spec for the target " +
			"type, so nested specs and factory references work the same as " +
			"inline ones.",
		run: fromConfig,
	}
}

func literalEntry(target reflect.Type) *staticEntry {
	ts := apis.Direct(target)
	return &staticEntry{
		params: []apis.Param{{
			Name:        "value",
			Type:        ts,
			Description: "Literal of the target type, passed through unchanged.",
		}},
		short: "Returns the given " + target.String() + " value as-is.",
		run: func(mk apis.Maker, target reflect.Type, params map[string]any) (any, error) {
			raw, ok := params["value"]
			if !ok {
				return nil, &apis.MissingArgumentError{Target: target, Method: LiteralName, Arg: "value"}
			}
			if extra := undeclaredKeys(params, "value"); len(extra) > 0 {
				return nil, &apis.UnknownArgumentError{Target: target, Method: LiteralName, Args: extra}
			}
			v, err := resolve.Value(ts, raw, mk)
			if err != nil {
				return nil, &apis.FrameError{Target: target, Method: LiteralName, Arg: "value", Err: err}
			}
			return v, nil
		},
	}
}

func loadConfigEntry() *staticEntry {
	return &staticEntry{
		params: []apis.Param{{
			Name:        "config",
			Type:        apis.Of[string](),
			Description: "Path of the YAML or JSON file holding the mapping.",
		}},
		short: "Loads a mapping from a YAML or JSON file.",
		long: "Unlike \"from_config\", the parsed mapping is returned as data: " +
			"its entries are not treated as an object spec.",
		run: func(mk apis.Maker, target reflect.Type, params map[string]any) (any, error) {
			raw, ok := params["config"]
			if !ok {
				return nil, &apis.MissingArgumentError{Target: target, Method: LoadConfigName, Arg: "config"}
			}
			if extra := undeclaredKeys(params, "config"); len(extra) > 0 {
				return nil, &apis.UnknownArgumentError{Target: target, Method: LoadConfigName, Args: extra}
			}
			v, err := resolve.Value(apis.Of[string](), raw, mk)
			if err != nil {
				return nil, &apis.FrameError{Target: target, Method: LoadConfigName, Arg: "config", Err: err}
			}
			path, ok := v.(string)
			if !ok {
				return nil, &apis.TypeMismatchError{Spec: apis.Of[string](), Value: v, Reason: "config path must be a string"}
			}
			return specfile.LoadMapping(path)
		},
	}
}

func fromConfig(mk apis.Maker, target reflect.Type, params map[string]any) (any, error) {
	raw, ok := params["config"]
	if !ok {
		return nil, &apis.MissingArgumentError{Target: target, Method: FromConfigName, Arg: "config"}
	}
	if extra := undeclaredKeys(params, "config"); len(extra) > 0 {
		return nil, &apis.UnknownArgumentError{Target: target, Method: FromConfigName, Args: extra}
	}
	v, err := resolve.Value(apis.Of[string](), raw, mk)
	if err != nil {
		return nil, &apis.FrameError{Target: target, Method: FromConfigName, Arg: "config", Err: err}
	}
	path, ok := v.(string)
	if !ok {
		return nil, &apis.TypeMismatchError{Spec: apis.Of[string](), Value: v, Reason: "config path must be a string"}
	}
	loaded, err := specfile.Load(path)
	if err != nil {
		return nil, err
	}
	if mk == nil {
		return nil, &apis.MissingManufacturerError{Target: target}
	}
	return mk.Make(target, loaded)
}

func undeclaredKeys(params map[string]any, declared ...string) []string {
	var extra []string
outer:
	for k := range params {
		for _, d := range declared {
			if k == d {
				continue outer
			}
		}
		extra = append(extra, k)
	}
	sort.Strings(extra)
	return extra
}
