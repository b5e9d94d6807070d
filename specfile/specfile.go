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

// Package specfile loads raw object specifications from configuration
// files. It is a convenience collaborator of the resolution engine: it
// produces the nested mapping handed to a Broker, performing no resolution
// itself.
package specfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// ErrUnsupportedFormat is returned for file extensions other than
// .yaml/.yml/.json.
var ErrUnsupportedFormat = errors.New("afx(specfile): unsupported file format")

// Load reads a specification from path. The format is determined by the
// file extension:
//
//	.yaml, .yml -> YAML
//	.json       -> JSON
//
// Mapping keys are normalized to strings recursively, so the result is
// composed of map[string]any, []any, and scalars regardless of format.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var v any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("afx(specfile): %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("afx(specfile): %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return Normalize(v), nil
}

// LoadMapping is Load restricted to a top-level mapping, the shape an
// object specification file must have.
func LoadMapping(path string) (map[string]any, error) {
	v, err := Load(path)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("afx(specfile): %s: top-level value must be a mapping, got %T", path, v)
	}
	return m, nil
}

// Normalize rewrites the map[interface{}]interface{} trees produced by
// YAML decoding into map[string]any trees, recursively. Non-string keys
// are rendered with fmt. Values that need no rewriting are returned as-is.
func Normalize(v any) any {
	switch x := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[stringKey(k)] = Normalize(val)
		}
		return m
	case map[string]any:
		for k, val := range x {
			x[k] = Normalize(val)
		}
		return x
	case []any:
		for i, val := range x {
			x[i] = Normalize(val)
		}
		return x
	default:
		return v
	}
}

// stringKey renders a decoded mapping key as a string.
func stringKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", k)
}
