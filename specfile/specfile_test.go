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

package specfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/afx/specfile"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "spec.yaml", `
create:
  threads: 4
  name: worker
  ratios: [0.5, 0.5]
`)
	v, err := specfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"create": map[string]any{
			"threads": 4,
			"name":    "worker",
			"ratios":  []any{0.5, 0.5},
		},
	}, v)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "spec.json", `{"create": {"name": "worker", "ratio": 0.5}}`)
	v, err := specfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"create": map[string]any{"name": "worker", "ratio": 0.5},
	}, v)
}

func TestLoad_YMLExtension(t *testing.T) {
	path := write(t, "spec.yml", "a: 1\n")
	v, err := specfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, v)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := write(t, "spec.toml", "a = 1\n")
	_, err := specfile.Load(path)
	assert.ErrorIs(t, err, specfile.ErrUnsupportedFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := specfile.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMapping(t *testing.T) {
	path := write(t, "spec.yaml", "create:\n  x: 1\n")
	m, err := specfile.LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"create": map[string]any{"x": 1}}, m)
}

func TestLoadMapping_NotAMapping(t *testing.T) {
	path := write(t, "spec.yaml", "- 1\n- 2\n")
	_, err := specfile.LoadMapping(path)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	// yaml.v2 decodes nested mappings with any-typed keys.
	in := map[any]any{
		"a": map[any]any{1: "one"},
		"b": []any{map[any]any{"c": true}},
	}
	got := specfile.Normalize(in)
	assert.Equal(t, map[string]any{
		"a": map[string]any{"1": "one"},
		"b": []any{map[string]any{"c": true}},
	}, got)
}
