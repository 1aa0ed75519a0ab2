package check

import (
	"testing"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/lexer"
	"github.com/bismut-lang/bismut/internal/parser"
)

func parseFile(t *testing.T, src string) (*ast.File, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink(false)
	l := lexer.New(src, "t.mut", sink)
	p := parser.New(l, "t.mut", sink)
	f := p.Parse()
	if sink.HasErrors() {
		for _, d := range sink.Sorted() {
			t.Logf("parse diag: %s", d)
		}
		t.Fatalf("unexpected parse errors")
	}
	return f, sink
}

func checkSrc(t *testing.T, src string) *diag.Sink {
	t.Helper()
	f, _ := parseFile(t, src)
	sink := diag.NewSink(false)
	c := New(sink)
	c.Check(f)
	return sink
}

func requireNoCheckErrors(t *testing.T, sink *diag.Sink) {
	t.Helper()
	if sink.HasErrors() {
		for _, d := range sink.Sorted() {
			t.Logf("check diag: %s", d)
		}
		t.Fatalf("unexpected check errors")
	}
}

func requireErrorCode(t *testing.T, sink *diag.Sink, code string) {
	t.Helper()
	for _, d := range sink.Sorted() {
		if d.Code == code {
			return
		}
	}
	for _, d := range sink.Sorted() {
		t.Logf("diag: %s", d)
	}
	t.Fatalf("expected a %s diagnostic, got none", code)
}

func TestCheckSimpleFuncOK(t *testing.T) {
	src := "def add(a: i32, b: i32) -> i32\n  return a + b\nend\n"
	sink := checkSrc(t, src)
	requireNoCheckErrors(t, sink)
}

func TestCheckReturnTypeMismatch(t *testing.T) {
	src := "def f() -> i32\n  return \"hi\"\nend\n"
	sink := checkSrc(t, src)
	requireErrorCode(t, sink, diag.TC001)
}

func TestCheckMixedWidthArithmetic(t *testing.T) {
	src := "def f(a: i32, b: i64) -> i32\n  return a + b\nend\n"
	sink := checkSrc(t, src)
	requireErrorCode(t, sink, diag.TC002)
}

func TestCheckTruthinessRequiresBool(t *testing.T) {
	src := "def f(a: i32)\n  if a\n    return\n  end\nend\n"
	sink := checkSrc(t, src)
	requireErrorCode(t, sink, diag.TC004)
}

func TestCheckConstReassignIsError(t *testing.T) {
	src := "def f()\n  const x := 1\n  x = 2\nend\n"
	sink := checkSrc(t, src)
	requireErrorCode(t, sink, diag.TC008)
}

func TestCheckUnknownIdentifier(t *testing.T) {
	src := "def f() -> i32\n  return y\nend\n"
	sink := checkSrc(t, src)
	requireErrorCode(t, sink, diag.TC009)
}

func TestCheckDestructureTwoTuple(t *testing.T) {
	src := "def pair() -> (i32, i32)\n  return (1, 2)\nend\n" +
		"def f()\n  a, b := pair()\nend\n"
	sink := checkSrc(t, src)
	requireNoCheckErrors(t, sink)
}

func TestCheckStructFieldMustBeValueKind(t *testing.T) {
	src := "struct Point\n  x: i32\n  y: i32\nend\n"
	sink := checkSrc(t, src)
	requireNoCheckErrors(t, sink)
}

func TestCheckStructFieldReferenceKindIsError(t *testing.T) {
	src := "struct Box\n  s: str\nend\n"
	sink := checkSrc(t, src)
	requireErrorCode(t, sink, diag.TC007)
}

func TestCheckClassMustImplementInterfaceMethods(t *testing.T) {
	src := "interface Shape\n  def area() -> f64\nend\n" +
		"class Circle : Shape\n  r: f64\nend\n"
	sink := checkSrc(t, src)
	requireErrorCode(t, sink, diag.TC005)
}

func TestCheckClassSatisfiesInterface(t *testing.T) {
	src := "interface Shape\n  def area() -> f64\nend\n" +
		"class Circle : Shape\n  r: f64\n\n  def area() -> f64\n    return self.r\n  end\nend\n"
	sink := checkSrc(t, src)
	requireNoCheckErrors(t, sink)
}

func TestCheckDictKeyMustBePrimitiveOrStr(t *testing.T) {
	src := "struct Point\n  x: i32\n  y: i32\nend\n" +
		"def f()\n  d := Dict[Point, i32]() { }\nend\n"
	sink := checkSrc(t, src)
	requireErrorCode(t, sink, diag.TC003)
}

func TestCheckForRangeBoundsMustBeInteger(t *testing.T) {
	src := "def f(lo: f64, hi: f64)\n  for i: i64 in lo..hi\n  end\nend\n"
	sink := checkSrc(t, src)
	requireErrorCode(t, sink, diag.TC001)
}

func TestCheckNoneAssignableToReferenceKind(t *testing.T) {
	src := "def f()\n  s: str = None\nend\n"
	sink := checkSrc(t, src)
	requireNoCheckErrors(t, sink)
}

func TestCheckDuplicateDeclNameIsError(t *testing.T) {
	src := "def f()\nend\ndef f()\nend\n"
	sink := checkSrc(t, src)
	requireErrorCode(t, sink, diag.RES003)
}
