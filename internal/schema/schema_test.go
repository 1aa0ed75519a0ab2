package schema

import (
	"strings"
	"testing"
)

func TestNewAnalyzeReportCountsAndSuccess(t *testing.T) {
	diags := []Diagnostic{
		{Severity: SeverityError, File: "a.mut", Line: 3, Col: 5, Span: 1, Message: "boom"},
		{Severity: SeverityWarning, File: "a.mut", Line: 7, Col: 1, Span: 4, Message: "cycle"},
		{Severity: SeverityNote, File: "a.mut", Line: 7, Col: 1, Span: 4, Message: "see here"},
	}
	r := NewAnalyzeReport("a.mut", diags)
	if r.ErrorCount != 1 || r.WarningCount != 1 {
		t.Fatalf("got error=%d warning=%d", r.ErrorCount, r.WarningCount)
	}
	if r.Success {
		t.Fatalf("expected success=false when errors present")
	}
	if r.Schema != DiagnosticsV1 {
		t.Fatalf("schema = %q", r.Schema)
	}
}

func TestNewAnalyzeReportSuccessWithNoErrors(t *testing.T) {
	r := NewAnalyzeReport("a.mut", nil)
	if !r.Success {
		t.Fatalf("expected success=true for empty diagnostics")
	}
}

func TestMarshalIsDeterministicAndUnescaped(t *testing.T) {
	r := NewAnalyzeReport("a.mut", []Diagnostic{
		{Severity: SeverityError, File: "a.mut", Line: 1, Col: 1, Span: 1, Message: "a < b && c"},
	})
	out1, err := Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	out2, err := Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(out1) != string(out2) {
		t.Fatalf("marshal not deterministic")
	}
	if strings.Contains(string(out1), "\\u003c") {
		t.Fatalf("expected unescaped HTML, got %s", out1)
	}
}
