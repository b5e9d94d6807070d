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

import "reflect"

// Raw ObjectSpec key names for the explicit two-entry form.
const (
	SpecKey    = "key"
	SpecInputs = "inputs"
)

// ObjectSpec is a parsed construction request: a factory key plus the raw
// inputs for that factory. Its wire shape is either a singleton mapping
//
//	{"some_factory": {"arg1": v1, "arg2": v2}}
//
// or the explicit two-entry form
//
//	{"key": "some_factory", "inputs": {"arg1": v1, "arg2": v2}}
//
// Input values may themselves be ObjectSpec mappings, resolved recursively
// during argument preparation.
type ObjectSpec struct {
	// Key is the factory name. Empty means the target manufacturer's
	// default factory.
	Key string

	// Inputs maps parameter names to raw values.
	Inputs map[string]any
}

// IsObjectSpec reports whether v has the shallow shape of a raw ObjectSpec.
// It checks format only; the key is not verified against any registry.
func IsObjectSpec(v any) bool {
	switch s := v.(type) {
	case ObjectSpec:
		return true
	case map[string]any:
		switch len(s) {
		case 1:
			return true
		case 2:
			_, hasKey := s[SpecKey]
			_, hasInputs := s[SpecInputs]
			return hasKey && hasInputs
		default:
			return false
		}
	default:
		return false
	}
}

// ParseObjectSpec parses a raw value into an ObjectSpec. The target type is
// used only to annotate the error on malformed input.
func ParseObjectSpec(target reflect.Type, v any) (ObjectSpec, error) {
	switch s := v.(type) {
	case ObjectSpec:
		return s, nil
	case map[string]any:
		switch len(s) {
		case 1:
			for k, inputs := range s {
				in, err := specInputs(target, v, inputs)
				if err != nil {
					return ObjectSpec{}, err
				}
				return ObjectSpec{Key: k, Inputs: in}, nil
			}
		case 2:
			key, ok := s[SpecKey].(string)
			if !ok {
				break
			}
			rawInputs, ok := s[SpecInputs]
			if !ok {
				break
			}
			in, err := specInputs(target, v, rawInputs)
			if err != nil {
				return ObjectSpec{}, err
			}
			return ObjectSpec{Key: key, Inputs: in}, nil
		}
	}
	return ObjectSpec{}, &MalformedSpecError{Target: target, Spec: v}
}

// specInputs coerces the inputs half of a raw spec to map[string]any.
// A nil inputs value is allowed and means "no parameters".
func specInputs(target reflect.Type, spec, inputs any) (map[string]any, error) {
	if inputs == nil {
		return nil, nil
	}
	in, ok := inputs.(map[string]any)
	if !ok {
		return nil, &MalformedSpecError{Target: target, Spec: spec}
	}
	return in, nil
}
