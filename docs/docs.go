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

// Package docs renders the factory catalog of a Broker as Markdown or
// HTML files, one page per target type plus an index. It reads the
// registries only; nothing here feeds back into construction.
package docs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/russross/blackfriday/v2"

	"dirpx.dev/afx/apis"
	"dirpx.dev/afx/broker"
	"dirpx.dev/afx/manufacturer"
	uref "dirpx.dev/afx/utils/reflect"
)

// dirPerm and filePerm are the modes of the exported tree.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// defaultsPrinter renders factory default values compactly for tables.
var defaultsPrinter = &spew.ConfigState{
	Indent:                  " ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// ExportMarkdown writes one Markdown page per routed target type of b
// into dir, plus an index.md linking them. Lazy routes materialize as a
// side effect of being documented.
func ExportMarkdown(b *broker.Broker, dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}
	var index bytes.Buffer
	index.WriteString("# Factory catalog\n\n")
	for _, t := range b.Classes() {
		name := uref.FileName(t)
		var page bytes.Buffer
		renderManufacturer(&page, t, b.Get(t), b.IsBuiltin(t))
		if err := os.WriteFile(filepath.Join(dir, name+".md"), page.Bytes(), filePerm); err != nil {
			return err
		}
		fmt.Fprintf(&index, "- [%s](%s.md)\n", uref.TypeName(t), name)
	}
	return os.WriteFile(filepath.Join(dir, "index.md"), index.Bytes(), filePerm)
}

// ExportHTML renders the same catalog as ExportMarkdown, converted to
// HTML pages.
func ExportHTML(b *broker.Broker, dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}
	var index bytes.Buffer
	index.WriteString("# Factory catalog\n\n")
	for _, t := range b.Classes() {
		name := uref.FileName(t)
		var page bytes.Buffer
		renderManufacturer(&page, t, b.Get(t), b.IsBuiltin(t))
		out := blackfriday.Run(page.Bytes())
		if err := os.WriteFile(filepath.Join(dir, name+".html"), out, filePerm); err != nil {
			return err
		}
		fmt.Fprintf(&index, "- [%s](%s.html)\n", uref.TypeName(t), name)
	}
	return os.WriteFile(filepath.Join(dir, "index.html"), blackfriday.Run(index.Bytes()), filePerm)
}

func renderManufacturer(w *bytes.Buffer, t reflect.Type, m *manufacturer.Manufacturer, builtin bool) {
	fmt.Fprintf(w, "# %s\n\n", uref.TypeName(t))
	fmt.Fprintf(w, "Go type: `%s`", t.String())
	if builtin {
		w.WriteString(" (builtin)")
	}
	w.WriteString("\n\n")
	if m == nil {
		return
	}
	if def := m.Default(); def != "" {
		fmt.Fprintf(w, "Default factory: `%s`\n\n", def)
	}

	for _, r := range m.Registrants() {
		renderFactory(w, r.Name(), r.Short(), r.Long(), r.Params(), r)
	}
	for _, s := range m.Statics() {
		renderFactory(w, s.Name, s.Short, s.Long, s.Params, nil)
	}
}

func renderFactory(w *bytes.Buffer, name, short, long string, params []apis.Param, r *manufacturer.Registrant) {
	fmt.Fprintf(w, "## `%s`\n\n", name)
	if short != "" {
		w.WriteString(short + "\n\n")
	}
	if long != "" {
		w.WriteString(long + "\n\n")
	}
	if len(params) == 0 {
		w.WriteString("No parameters.\n\n")
		return
	}

	var defaults map[string]any
	if r != nil {
		defaults = r.Defaults()
	}
	w.WriteString("| Parameter | Type | Required | Default | Description |\n")
	w.WriteString("|---|---|---|---|---|\n")
	for _, p := range params {
		required := r == nil || r.Required(p.Name)
		def := p.Default
		if d, ok := defaults[p.Name]; ok {
			def = d
		}
		fmt.Fprintf(w, "| `%s` | `%s` | %s | %s | %s |\n",
			p.Name, p.Type, yesNo(required), renderDefault(def), cell(p.Description))
	}
	w.WriteString("\n")
}

// renderDefault prints a default value on a single line, or "-" when
// there is none.
func renderDefault(v any) string {
	if v == nil {
		return "-"
	}
	s := defaultsPrinter.Sprintf("%#v", v)
	s = strings.Join(strings.Fields(s), " ")
	return "`" + s + "`"
}

// cell strips newlines and pipes so free-form text stays inside its
// table cell.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
