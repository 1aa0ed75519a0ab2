package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/diag"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveMergesImportedFunction(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mathutils.mut", "def add(a: i32, b: i32) -> i32\n  return a + b\nend\n")
	entry := writeFile(t, dir, "main.mut", "import mathutils\ndef main() -> i32\n  return mathutils.add(1, 2)\nend\n")

	sink := diag.NewSink(false)
	r := New(dir, sink, nil)
	merged := r.Resolve(entry)
	if sink.HasErrors() {
		for _, d := range sink.Sorted() {
			t.Logf("diag: %s", d)
		}
		t.Fatalf("unexpected resolve errors")
	}
	if len(merged.Decls) != 2 {
		t.Fatalf("expected 2 merged decls, got %d", len(merged.Decls))
	}
	addFn, ok := merged.Decls[0].(*ast.FuncDecl)
	if !ok || addFn.Name != "mathutils__add" {
		t.Fatalf("expected mangled mathutils__add first, got %+v", merged.Decls[0])
	}
	mainFn, ok := merged.Decls[1].(*ast.FuncDecl)
	if !ok || mainFn.Name != "main" {
		t.Fatalf("expected main second, got %+v", merged.Decls[1])
	}
	ret := mainFn.Body[0].(*ast.ReturnStmt)
	call, ok := ret.Value.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", ret.Value)
	}
	fnIdent, ok := call.Fn.(*ast.Ident)
	if !ok || fnIdent.Name != "mathutils__add" {
		t.Fatalf("expected call to mathutils__add, got %+v", call.Fn)
	}
}

func TestResolveDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.mut", "import b\ndef fa() -> i32\n  return 1\nend\n")
	entry := writeFile(t, dir, "b.mut", "import a\ndef fb() -> i32\n  return 1\nend\n")

	sink := diag.NewSink(false)
	r := New(dir, sink, nil)
	r.Resolve(entry)
	found := false
	for _, d := range sink.Sorted() {
		if d.Code == "RES002" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected RES002 circular import diagnostic")
	}
}

func TestResolveMissingModule(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.mut", "import nope\ndef main() -> i32\n  return 1\nend\n")

	sink := diag.NewSink(false)
	r := New(dir, sink, nil)
	r.Resolve(entry)
	found := false
	for _, d := range sink.Sorted() {
		if d.Code == "RES001" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected RES001 for missing module")
	}
}

func TestResolveEnumVariantQualifiedAccess(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "colors.mut", "enum Color\n  Red\n  Green\n  Blue\nend\n")
	entry := writeFile(t, dir, "main.mut", "import colors\ndef main() -> i32\n  c := colors.Color.Red\n  return 0\nend\n")

	sink := diag.NewSink(false)
	r := New(dir, sink, nil)
	merged := r.Resolve(entry)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Sorted())
	}
	mainFn := merged.Decls[1].(*ast.FuncDecl)
	v := mainFn.Body[0].(*ast.VarDecl)
	ident, ok := v.Init.(*ast.Ident)
	if !ok || ident.Name != "colors__Color__Red" {
		t.Fatalf("expected mangled enum variant ident, got %+v", v.Init)
	}
}

func TestResolveFallsBackToStdlibRoot(t *testing.T) {
	projectDir := t.TempDir()
	stdlibDir := t.TempDir()
	writeFile(t, stdlibDir, "strutil.mut", "def shout(s: str) -> str\n  return s\nend\n")
	entry := writeFile(t, projectDir, "main.mut", "import strutil\ndef main() -> i32\n  s := strutil.shout(\"hi\")\n  return 0\nend\n")

	sink := diag.NewSink(false)
	r := New(stdlibDir, sink, nil)
	r.Resolve(entry)
	if sink.HasErrors() {
		for _, d := range sink.Sorted() {
			t.Logf("diag: %s", d)
		}
		t.Fatalf("expected strutil to resolve via the stdlib root")
	}
}

func TestResolveLocalModuleShadowsStdlibRoot(t *testing.T) {
	projectDir := t.TempDir()
	stdlibDir := t.TempDir()
	writeFile(t, stdlibDir, "strutil.mut", "def shout(s: str) -> str\n  return \"stdlib\"\nend\n")
	writeFile(t, projectDir, "strutil.mut", "def shout(s: str) -> str\n  return \"local\"\nend\n")
	entry := writeFile(t, projectDir, "main.mut", "import strutil\ndef main() -> i32\n  s := strutil.shout(\"hi\")\n  return 0\nend\n")

	sink := diag.NewSink(false)
	r := New(stdlibDir, sink, nil)
	merged := r.Resolve(entry)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Sorted())
	}
	fn, ok := merged.Decls[0].(*ast.FuncDecl)
	if !ok || fn.Name != "strutil__shout" {
		t.Fatalf("expected strutil__shout, got %+v", merged.Decls[0])
	}
	ret := fn.Body[0].(*ast.ReturnStmt)
	lit, ok := ret.Value.(*ast.StringLit)
	if !ok || lit.Value != "local" {
		t.Fatalf("expected the project-local module to shadow the stdlib one, got %+v", ret.Value)
	}
}

func TestResolveDoesNotReloadSharedDependency(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.mut", "def helper() -> i32\n  return 1\nend\n")
	writeFile(t, dir, "mid1.mut", "import base\ndef use1() -> i32\n  return base.helper()\nend\n")
	writeFile(t, dir, "mid2.mut", "import base\ndef use2() -> i32\n  return base.helper()\nend\n")
	entry := writeFile(t, dir, "main.mut", "import mid1\nimport mid2\ndef main() -> i32\n  return mid1.use1() + mid2.use2()\nend\n")

	sink := diag.NewSink(false)
	r := New(dir, sink, nil)
	merged := r.Resolve(entry)
	if sink.HasErrors() {
		for _, d := range sink.Sorted() {
			t.Logf("diag: %s", d)
		}
		t.Fatalf("unexpected resolve errors")
	}
	count := 0
	for _, d := range merged.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok && fn.Name == "base__helper" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected base__helper to appear exactly once, got %d", count)
	}
}
