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

package reflect

import (
	"path"
	"reflect"
	"strings"
	"sync"
)

// maxUnwrap bounds pointer unwrapping against pathological nesting.
const maxUnwrap = 8

// typeNameCache caches resolved type names by type.
var typeNameCache sync.Map // key: reflect.Type, val: string

// TypeName computes a stable "pkg.Type" identifier for t, unwrapping
// pointers to the nearest named type and stripping generic instantiation
// parameters. Builtin types yield their bare name ("int", "string").
// Unnamed types fall back to reflect's own rendering.
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if v, ok := typeNameCache.Load(t); ok {
		return v.(string)
	}

	base := t
	for i := 0; base.Kind() == reflect.Ptr && i < maxUnwrap; i++ {
		base = base.Elem()
	}

	name := stripTypeParams(base.Name())
	if name == "" {
		// Unnamed (slice, map, anonymous struct, ...): reflect's
		// rendering is the most useful identifier available.
		name = base.String()
	} else if p := base.PkgPath(); p != "" {
		name = path.Base(p) + "." + name
	}

	typeNameCache.Store(t, name)
	return name
}

// FileName derives a filesystem-safe variant of TypeName for per-type
// artifacts (documentation files).
func FileName(t reflect.Type) string {
	name := TypeName(t)
	repl := strings.NewReplacer(
		"/", "_", "*", "", "[", "(", "]", ")", "{", "(", "}", ")", " ", "", ":", "",
	)
	return repl.Replace(name)
}

// stripTypeParams removes generic type instantiation suffix: "T[int,string]" -> "T".
func stripTypeParams(s string) string {
	if i := strings.IndexByte(s, '['); i >= 0 {
		return s[:i]
	}
	return s
}
