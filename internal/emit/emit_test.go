package emit

import (
	"strings"
	"testing"

	"github.com/bismut-lang/bismut/internal/check"
	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/lexer"
	"github.com/bismut-lang/bismut/internal/parser"
)

func emitSrc(t *testing.T, src string) (string, *diag.Sink) {
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
	c := check.New(sink)
	c.Check(f)
	if sink.HasErrors() {
		for _, d := range sink.Sorted() {
			t.Logf("check diag: %s", d)
		}
		t.Fatalf("unexpected check errors")
	}
	return Emit(f, c, sink), sink
}

func TestEmitIncludesRuntimeAndMain(t *testing.T) {
	out, sink := emitSrc(t, "def main() -> i32\n  return 0\nend\n")
	if sink.HasErrors() {
		t.Fatalf("unexpected emit errors: %v", sink.Diagnostics())
	}
	if !strings.Contains(out, runtimeHeader[:32]) {
		t.Errorf("expected embedded runtime header in output")
	}
	if !strings.Contains(out, "int main(int argc, char **argv) {") {
		t.Errorf("expected a C main() wrapper, got:\n%s", out)
	}
	if !strings.Contains(out, "static int32_t bismut_main(void) {") {
		t.Errorf("expected static int32_t bismut_main(void), got:\n%s", out)
	}
}

func TestEmitFunctionSignature(t *testing.T) {
	out, sink := emitSrc(t, "def add(a: i32, b: i32) -> i32\n  return a + b\nend\ndef main() -> i32\n  return add(1, 2)\nend\n")
	if sink.HasErrors() {
		t.Fatalf("unexpected emit errors: %v", sink.Diagnostics())
	}
	if !strings.Contains(out, "static int32_t bismut_add(int32_t a, int32_t b) {") {
		t.Errorf("expected mangled add signature, got:\n%s", out)
	}
}

func TestEmitVoidFunctionUsesVoidParamList(t *testing.T) {
	out, sink := emitSrc(t, "def tick()\nend\ndef main() -> i32\n  tick()\n  return 0\nend\n")
	if sink.HasErrors() {
		t.Fatalf("unexpected emit errors: %v", sink.Diagnostics())
	}
	if !strings.Contains(out, "static void bismut_tick(void) {") {
		t.Errorf("expected static void bismut_tick(void), got:\n%s", out)
	}
}

func TestEmitClassMethodAndDtor(t *testing.T) {
	src := "class Counter\n  n: i32\n  def bump() -> i32\n    return self.n + 1\n  end\nend\ndef main() -> i32\n  return 0\nend\n"
	out, sink := emitSrc(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected emit errors: %v", sink.Diagnostics())
	}
	if !strings.Contains(out, "struct bismut_Counter") {
		t.Errorf("expected a generated Counter struct, got:\n%s", out)
	}
	if !strings.Contains(out, "bismut_Counter_bump") {
		t.Errorf("expected a mangled Counter_bump method, got:\n%s", out)
	}
	if !strings.Contains(out, "static void bismut_Counter_dtor(void *p) {") {
		t.Errorf("expected a Counter destructor, got:\n%s", out)
	}
}

func TestEmitPrimitiveCTypes(t *testing.T) {
	tests := []struct {
		bismutType string
		want       string
	}{
		{"i8", "int8_t"},
		{"i32", "int32_t"},
		{"i64", "int64_t"},
		{"u8", "uint8_t"},
		{"u32", "uint32_t"},
		{"f32", "float"},
		{"f64", "double"},
		{"bool", "bool"},
	}
	for _, tt := range tests {
		t.Run(tt.bismutType, func(t *testing.T) {
			src := "def pick(x: " + tt.bismutType + ") -> " + tt.bismutType + "\n  return x\nend\ndef main() -> i32\n  return 0\nend\n"
			out, sink := emitSrc(t, src)
			if sink.HasErrors() {
				t.Fatalf("unexpected emit errors: %v", sink.Diagnostics())
			}
			want := "static " + tt.want + " bismut_pick(" + tt.want + " x) {"
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got:\n%s", want, out)
			}
		})
	}
}

func TestEmitGlobalsInitAndExit(t *testing.T) {
	out, sink := emitSrc(t, "count: i32 = 0\ndef main() -> i32\n  return count\nend\n")
	if sink.HasErrors() {
		t.Fatalf("unexpected emit errors: %v", sink.Diagnostics())
	}
	if !strings.Contains(out, "static void bismut_init_globals(void) {") {
		t.Errorf("expected bismut_init_globals, got:\n%s", out)
	}
	if !strings.Contains(out, "static void bismut_exit_globals(void) {") {
		t.Errorf("expected bismut_exit_globals, got:\n%s", out)
	}
	if !strings.Contains(out, "bismut_g_count") {
		t.Errorf("expected mangled global bismut_g_count, got:\n%s", out)
	}
}

func TestEmitDoesNotPanicOnEmptyFile(t *testing.T) {
	out, sink := emitSrc(t, "def main() -> i32\n  return 0\nend\n")
	if sink.HasErrors() {
		t.Fatalf("unexpected emit errors: %v", sink.Diagnostics())
	}
	if out == "" {
		t.Fatalf("expected non-empty emitted output")
	}
}
