package parser

import (
	"testing"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/lexer"
)

func parse(t *testing.T, src string) (*ast.File, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink(false)
	l := lexer.New(src, "t.mut", sink)
	p := New(l, "t.mut", sink)
	return p.Parse(), sink
}

func requireNoErrors(t *testing.T, sink *diag.Sink) {
	t.Helper()
	if sink.HasErrors() {
		for _, d := range sink.Sorted() {
			t.Logf("diag: %s", d)
		}
		t.Fatalf("unexpected parse errors")
	}
}

func TestParseSimpleFunc(t *testing.T) {
	src := "def add(a: i32, b: i32) -> i32\n  return a + b\nend\n"
	f, sink := parse(t, src)
	requireNoErrors(t, sink)
	if len(f.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(f.Decls))
	}
	fn, ok := f.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %T", f.Decls[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("unexpected func shape: %+v", fn)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(fn.Body))
	}
	ret, ok := fn.Body[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected ReturnStmt, got %T", fn.Body[0])
	}
	bin, ok := ret.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.BinAdd {
		t.Fatalf("expected a + b, got %+v", ret.Value)
	}
}

func TestParseImportsMustPrecedeDecls(t *testing.T) {
	src := "def f() -> i32\n  return 1\nend\nimport foo.bar\n"
	_, sink := parse(t, src)
	found := false
	for _, d := range sink.Sorted() {
		if d.Code == "RES004" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected RES004 for late import")
	}
}

func TestParseImportWithAlias(t *testing.T) {
	src := "import a.b.c as X\ndef f() -> i32\n  return 1\nend\n"
	f, sink := parse(t, src)
	requireNoErrors(t, sink)
	if len(f.Imports) != 1 || f.Imports[0].Alias != "X" || f.Imports[0].Path != "a.b.c" {
		t.Fatalf("unexpected import: %+v", f.Imports)
	}
}

func TestParseClassWithFieldsAndMethod(t *testing.T) {
	src := "class Point : Shape\n  x: i32\n  y: i32\n  def sum() -> i32\n    return x + y\n  end\nend\n"
	f, sink := parse(t, src)
	requireNoErrors(t, sink)
	cls, ok := f.Decls[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected ClassDecl, got %T", f.Decls[0])
	}
	if len(cls.Fields) != 2 || len(cls.Methods) != 1 {
		t.Fatalf("unexpected class shape: %+v", cls)
	}
	if len(cls.Interfaces) != 1 || cls.Interfaces[0] != "Shape" {
		t.Fatalf("expected interface Shape, got %v", cls.Interfaces)
	}
	if !cls.Methods[0].IsMethod || cls.Methods[0].Receiver != "Point" {
		t.Fatalf("expected method receiver Point, got %+v", cls.Methods[0])
	}
}

func TestParseEnumAutoIncrementAndExplicit(t *testing.T) {
	src := "enum Color\n  Red\n  Green\n  Blue = 10\n  Cyan\nend\n"
	f, sink := parse(t, src)
	requireNoErrors(t, sink)
	en, ok := f.Decls[0].(*ast.EnumDecl)
	if !ok {
		t.Fatalf("expected EnumDecl, got %T", f.Decls[0])
	}
	if len(en.Variants) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(en.Variants))
	}
	if en.Variants[2].Name != "Blue" || !en.Variants[2].HasValue || en.Variants[2].Value != 10 {
		t.Fatalf("unexpected variant: %+v", en.Variants[2])
	}
	if en.Variants[3].HasValue {
		t.Fatalf("Cyan should not carry an explicit value, resolved later")
	}
}

func TestParseGenericCallVsSubscript(t *testing.T) {
	src := "def f() -> i32\n  a := identity[i32](1)\n  b := arr[0]\n  return a\nend\n"
	f, sink := parse(t, src)
	requireNoErrors(t, sink)
	fn := f.Decls[0].(*ast.FuncDecl)
	v1 := fn.Body[0].(*ast.VarDecl)
	call, ok := v1.Init.(*ast.GenericCallExpr)
	if !ok {
		t.Fatalf("expected GenericCallExpr, got %T", v1.Init)
	}
	if call.Name != "identity" || len(call.TypeArgs) != 1 {
		t.Fatalf("unexpected generic call: %+v", call)
	}

	v2 := fn.Body[1].(*ast.VarDecl)
	idx, ok := v2.Init.(*ast.IndexExpr)
	if !ok {
		t.Fatalf("expected IndexExpr, got %T", v2.Init)
	}
	if idx.X.(*ast.Ident).Name != "arr" {
		t.Fatalf("unexpected subscript base: %+v", idx.X)
	}
}

func TestParseListAndDictLiterals(t *testing.T) {
	src := "def f() -> i32\n  xs := List[i32]() { 1, 2, 3 }\n  ds := Dict[str, i32]() { \"a\": 1, \"b\": 2 }\n  return 0\nend\n"
	f, sink := parse(t, src)
	requireNoErrors(t, sink)
	fn := f.Decls[0].(*ast.FuncDecl)
	xs := fn.Body[0].(*ast.VarDecl)
	list, ok := xs.Init.(*ast.ListLitExpr)
	if !ok || len(list.Elements) != 3 {
		t.Fatalf("unexpected list literal: %+v", xs.Init)
	}
	ds := fn.Body[1].(*ast.VarDecl)
	dict, ok := ds.Init.(*ast.DictLitExpr)
	if !ok || len(dict.Entries) != 2 {
		t.Fatalf("unexpected dict literal: %+v", ds.Init)
	}
}

func TestParseIfElifElse(t *testing.T) {
	src := "def f(x: i32) -> i32\n  if x > 0\n    return 1\n  elif x < 0\n    return -1\n  else\n    return 0\n  end\nend\n"
	f, sink := parse(t, src)
	requireNoErrors(t, sink)
	fn := f.Decls[0].(*ast.FuncDecl)
	ifs, ok := fn.Body[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", fn.Body[0])
	}
	if len(ifs.Elifs) != 1 || ifs.Else == nil {
		t.Fatalf("unexpected if shape: %+v", ifs)
	}
}

func TestParseForRange(t *testing.T) {
	src := "def f() -> i32\n  for i: i64 in 0..10\n    return i\n  end\n  return 0\nend\n"
	f, sink := parse(t, src)
	requireNoErrors(t, sink)
	fn := f.Decls[0].(*ast.FuncDecl)
	forStmt, ok := fn.Body[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("expected ForStmt, got %T", fn.Body[0])
	}
	if forStmt.Kind != ast.ForRange || forStmt.RangeLo == nil || forStmt.RangeHi == nil {
		t.Fatalf("unexpected for shape: %+v", forStmt)
	}
}

func TestBreakContinueOutsideLoopIsError(t *testing.T) {
	src := "def f() -> i32\n  break\n  return 0\nend\n"
	_, sink := parse(t, src)
	found := false
	for _, d := range sink.Sorted() {
		if d.Code == "PAR004" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected PAR004 for break outside loop")
	}
}

func TestDestructureAssign(t *testing.T) {
	src := "def f() -> i32\n  a, b := pair()\n  return a\nend\n"
	f, sink := parse(t, src)
	requireNoErrors(t, sink)
	fn := f.Decls[0].(*ast.FuncDecl)
	v, ok := fn.Body[0].(*ast.VarDecl)
	if !ok || len(v.Names) != 2 {
		t.Fatalf("unexpected destructure decl: %+v", fn.Body[0])
	}
}

func TestDestructureWrongArityIsError(t *testing.T) {
	src := "def f() -> i32\n  a, b, c := triple()\n  return a\nend\n"
	_, sink := parse(t, src)
	found := false
	for _, d := range sink.Sorted() {
		if d.Code == "PAR005" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected PAR005 for wrong destructure arity")
	}
}

func TestParseCompoundAssign(t *testing.T) {
	src := "def f() -> i32\n  x := 1\n  x += 2\n  return x\nend\n"
	f, sink := parse(t, src)
	requireNoErrors(t, sink)
	fn := f.Decls[0].(*ast.FuncDecl)
	as, ok := fn.Body[1].(*ast.AssignStmt)
	if !ok || as.Op != ast.AssignAdd {
		t.Fatalf("unexpected assign stmt: %+v", fn.Body[1])
	}
}

func TestParseTupleTypeAndValue(t *testing.T) {
	src := "def pair() -> (i32, i32)\n  return (1, 2)\nend\n"
	f, sink := parse(t, src)
	requireNoErrors(t, sink)
	fn := f.Decls[0].(*ast.FuncDecl)
	tup, ok := fn.Ret.(*ast.TupleType)
	if !ok || len(tup.Elems) != 2 {
		t.Fatalf("unexpected return type: %+v", fn.Ret)
	}
	ret := fn.Body[0].(*ast.ReturnStmt)
	tv, ok := ret.Value.(*ast.TupleExpr)
	if !ok || len(tv.Elems) != 2 {
		t.Fatalf("unexpected tuple value: %+v", ret.Value)
	}
}

func TestParseExternDecl(t *testing.T) {
	src := "extern c_sqrt(x: f64) -> f64 = sqrt\ndef f() -> f64\n  return c_sqrt(2.0)\nend\n"
	f, sink := parse(t, src)
	requireNoErrors(t, sink)
	ext, ok := f.Decls[0].(*ast.ExternDecl)
	if !ok || ext.Name != "c_sqrt" || ext.CName != "sqrt" {
		t.Fatalf("unexpected extern decl: %+v", f.Decls[0])
	}
}

func TestParseMissingEndReportsOnce(t *testing.T) {
	src := "def f() -> i32\n  return 1\n"
	_, sink := parse(t, src)
	count := 0
	for _, d := range sink.Sorted() {
		if d.Code == "PAR002" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 PAR002, got %d", count)
	}
}
