package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bismut-lang/bismut/internal/schema"
)

func writeSource(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestAnalyzeCleanProgramHasNoDiagnostics(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t, dir, "main.mut", "def main() -> i32\n  return 0\nend\n")

	p := Analyze(file, nil, false)
	if p.File == nil {
		t.Fatalf("expected a resolved file")
	}
	if p.Sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", p.Sink.Diagnostics())
	}
}

func TestAnalyzeReportsTypeError(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t, dir, "main.mut", "def main() -> i32\n  return \"nope\"\nend\n")

	p := Analyze(file, nil, false)
	if !p.Sink.HasErrors() {
		t.Fatalf("expected a type error")
	}
}

func TestAnalyzeDiagnosticShapeIsStable(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t, dir, "main.mut", "def main() -> i32\n  return \"nope\"\nend\n")

	first := Analyze(file, nil, false).Sink.ToSchema()
	second := Analyze(file, nil, false).Sink.ToSchema()

	// Zero out Message since it may legitimately vary in wording between
	// check passes if the checker's error text changes; the shape
	// (severity/file/line/col/span) must stay put across repeated runs.
	strip := func(diags []schema.Diagnostic) []schema.Diagnostic {
		out := make([]schema.Diagnostic, len(diags))
		for i, d := range diags {
			d.Message = ""
			out[i] = d
		}
		return out
	}
	if diff := cmp.Diff(strip(first), strip(second)); diff != "" {
		t.Errorf("diagnostic shape differs across identical runs (-first +second):\n%s", diff)
	}
}

func TestAnalyzeMissingEntryFileIsAnError(t *testing.T) {
	p := Analyze(filepath.Join(t.TempDir(), "missing.mut"), nil, false)
	if !p.Sink.HasErrors() {
		t.Fatalf("expected an error for a missing entry file")
	}
}
