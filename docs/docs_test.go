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

package docs_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/afx/apis"
	"dirpx.dev/afx/broker"
	"dirpx.dev/afx/docs"
	uref "dirpx.dev/afx/utils/reflect"
)

type pump struct {
	Rate float64
	Name string
}

func catalogBroker(t *testing.T) *broker.Broker {
	t.Helper()
	b := broker.New()
	require.NoError(t, b.AddFactory(reflect.TypeOf(pump{}), "create",
		func(rate float64, name string) pump { return pump{Rate: rate, Name: name} },
		[]apis.Param{
			{Name: "rate", Type: apis.Of[float64](), Description: "Flow rate in l/s."},
			{Name: "name", Type: apis.Of[string](), Default: "unnamed"},
		}))
	return b
}

func TestExportMarkdown(t *testing.T) {
	dir := t.TempDir()
	b := catalogBroker(t)
	require.NoError(t, docs.ExportMarkdown(b, dir))

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "docs_test.pump")

	pumpType := reflect.TypeOf(pump{})
	page, err := os.ReadFile(filepath.Join(dir, uref.FileName(pumpType)+".md"))
	require.NoError(t, err)
	body := string(page)
	assert.Contains(t, body, "# docs_test.pump")
	assert.Contains(t, body, "## `create`")
	assert.Contains(t, body, "`rate`")
	assert.Contains(t, body, "Flow rate in l/s.")
	// "name" has a default, so it is optional.
	assert.Contains(t, body, "| `name` | `string` | no |")
	// The static tier is documented too.
	assert.Contains(t, body, "## `from_config`")
}

func TestExportMarkdown_Builtins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, docs.ExportMarkdown(broker.New(), dir))

	page, err := os.ReadFile(filepath.Join(dir, "int.md"))
	require.NoError(t, err)
	body := string(page)
	assert.Contains(t, body, "(builtin)")
	assert.Contains(t, body, "## `literal`")
}

func TestExportHTML(t *testing.T) {
	dir := t.TempDir()
	b := catalogBroker(t)
	require.NoError(t, docs.ExportHTML(b, dir))

	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "<a href=")

	pumpType := reflect.TypeOf(pump{})
	page, err := os.ReadFile(filepath.Join(dir, uref.FileName(pumpType)+".html"))
	require.NoError(t, err)
	body := string(page)
	assert.Contains(t, body, "<h1>")
	assert.Contains(t, body, "create")
}
