// Package manifest parses `.mutlib` extern-manifest files (spec.md §6):
// the file a native library ships so Bismut programs can `import` it
// without a matching `.mut` source file. A manifest describes the
// library's extern types, functions, constants and build flags; loading
// one yields the same *ast.ExternDecl shapes an inline `extern`
// declaration in source would, so the import resolver and checker treat file-sourced
// and inline externs identically.
package manifest

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/parser"
)

// ExternType is one `[types]` entry: an opaque C type surfaced to Bismut
// under Name, used as a parameter/field/return type in the manifest's own
// function lines and in the importing program.
type ExternType struct {
	Name  string
	CName string
	P     ast.Pos
}

// ExternConstant is one `[constants]` entry, parsed with the same
// `name: Type = value` grammar a top-level `const` declaration uses, so a
// manifest constant reads exactly like its `extern`-block-adjacent
// `const` cousin would.
type ExternConstant struct {
	Decl *ast.GlobalVarDecl
}

// Flags holds the compiler/linker flags a library's manifest contributes
// to the build (spec.md §6): a platform-independent base plus whatever
// this host's `cflags_<goos>`/`ldflags_<goos>` keys add on top.
type Flags struct {
	CFlags  []string
	LDFlags []string
}

// Manifest is one parsed `.mutlib` file.
type Manifest struct {
	Lib       string
	Types     []ExternType
	Functions []*ast.ExternDecl
	Constants []ExternConstant
	Flags     Flags
}

// Load reads and parses the `.mutlib` file at path. Flags referencing
// `{LIB_DIR}` resolve it to path's own directory, letting a manifest
// point at headers/archives shipped alongside it without a hardcoded
// install path (spec.md §6).
func Load(path string, sink *diag.Sink) (*Manifest, error) {
	raw, err := ini.LoadSources(ini.LoadOptions{
		UnparseableSections: []string{"types", "functions", "constants"},
	}, path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", path, err)
	}

	libName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	libDir := filepath.Dir(path)

	m := &Manifest{Lib: libName}

	if err := m.parseTypes(raw, path); err != nil {
		return nil, err
	}
	m.parseFunctions(raw, path, sink)
	m.parseConstants(raw, path, sink)
	m.parseFlags(raw, libDir)

	return m, nil
}

func (m *Manifest) parseTypes(raw *ini.File, path string) error {
	sec, err := raw.GetSection("types")
	if err != nil {
		return nil // [types] is optional
	}
	for i, line := range rawLines(sec.Body()) {
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("manifest: %s: [types] line %q: expected `Name = CName`", path, line)
		}
		name := strings.TrimSpace(parts[0])
		cname := strings.TrimSpace(parts[1])
		if name == "" || cname == "" {
			return fmt.Errorf("manifest: %s: [types] line %q: empty name or C type", path, line)
		}
		m.Types = append(m.Types, ExternType{
			Name:  name,
			CName: cname,
			P:     ast.Pos{File: path, Line: i + 1, Col: 1},
		})
	}
	return nil
}

// parseFunctions parses `[functions]` as a sequence of inline-`extern`
// style lines (`name(params) -> Ret = c_name`), reusing
// parser.ParseExternLine so the grammar never drifts from what an inline
// `extern` declaration accepts. A trailing `[dtor]` marks the extern as the
// release function for a reference-kind extern type (spec.md §6), mapped
// onto ast.ExternDecl.IsDtor.
func (m *Manifest) parseFunctions(raw *ini.File, path string, sink *diag.Sink) {
	sec, err := raw.GetSection("functions")
	if err != nil {
		return
	}
	for i, line := range rawLines(sec.Body()) {
		isDtor := false
		if trimmed := strings.TrimSuffix(strings.TrimSpace(line), "[dtor]"); trimmed != line {
			line = strings.TrimSpace(trimmed)
			isDtor = true
		}
		decl := parser.ParseExternLine(line, path, i+1, sink)
		decl.Lib = m.Lib
		decl.IsDtor = isDtor
		m.Functions = append(m.Functions, decl)
	}
}

// parseConstants parses `[constants]` as a sequence of `name: Type =
// c_name` lines, the same shape a top-level `const` declares minus the
// leading `const` keyword.
func (m *Manifest) parseConstants(raw *ini.File, path string, sink *diag.Sink) {
	sec, err := raw.GetSection("constants")
	if err != nil {
		return
	}
	for i, line := range rawLines(sec.Body()) {
		decl := parser.ParseConstLine(line, path, i+1, sink)
		m.Constants = append(m.Constants, ExternConstant{Decl: decl})
	}
}

// platformSuffix maps Go's runtime.GOOS to the platform suffix spec.md §6
// uses for manifest flag keys (`cflags_linux`, `ldflags_macos`, ...). Go
// spells Darwin's GOOS "darwin"; the manifest format spells it "macos".
func platformSuffix(goos string) string {
	if goos == "darwin" {
		return "macos"
	}
	return goos
}

// parseFlags reads `[flags]`, expanding `{LIB_DIR}` and folding in
// whichever `*_<platform>` suffixed keys match this host, on top of the
// platform-independent `cflags`/`ldflags` base (spec.md §6).
func (m *Manifest) parseFlags(raw *ini.File, libDir string) {
	sec, err := raw.GetSection("flags")
	if err != nil {
		return
	}
	plat := platformSuffix(runtime.GOOS)

	collect := func(baseKey string) []string {
		var out []string
		if k, err := sec.GetKey(baseKey); err == nil {
			out = append(out, strings.Fields(k.String())...)
		}
		if k, err := sec.GetKey(baseKey + "_" + plat); err == nil {
			out = append(out, strings.Fields(k.String())...)
		}
		for i, f := range out {
			out[i] = strings.ReplaceAll(f, "{LIB_DIR}", libDir)
		}
		return out
	}

	m.Flags.CFlags = collect("cflags")
	m.Flags.LDFlags = collect("ldflags")
}

// rawLines splits an ini raw section body into its non-blank,
// non-comment statement lines.
func rawLines(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		out = append(out, line)
	}
	return out
}
