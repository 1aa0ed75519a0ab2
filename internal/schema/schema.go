// Package schema defines the versioned JSON envelopes Bismut emits for
// machine consumption, principally the `analyze` subcommand's diagnostics
// report (spec.md §6).
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Schema version constants. Bump the suffix when the shape changes in a
// way that breaks existing consumers.
const (
	DiagnosticsV1 = "bismut.diagnostics/v1"
)

// Accepts reports whether a schema string got is exactly wantPrefix
// (e.g. "bismut.diagnostics/v1"); no prefix or version-range matching is
// done.
func Accepts(got, wantPrefix string) bool {
	return got == wantPrefix
}

// Marshal renders v as indented, deterministic JSON (sorted map keys,
// no HTML escaping) so `analyze` output is byte-identical across runs
// for identical input, per spec.md §8's determinism property.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("schema: marshal failed: %w", err)
	}
	out := buf.Bytes()
	if len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}
	return out, nil
}

// Severity is a diagnostic's severity level.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Diagnostic is one entry in an AnalyzeReport, matching spec.md §6's
// analyze JSON shape exactly.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Col      int      `json:"col"`
	Span     int      `json:"span"`
	Message  string   `json:"message"`
}

// AnalyzeReport is the top-level object the `analyze` subcommand prints
// to stdout.
type AnalyzeReport struct {
	Schema        string       `json:"schema"`
	Success       bool         `json:"success"`
	File          string       `json:"file"`
	ErrorCount    int          `json:"error_count"`
	WarningCount  int          `json:"warning_count"`
	Diagnostics   []Diagnostic `json:"diagnostics"`
}

// NewAnalyzeReport builds a report from a flat diagnostic list, tallying
// error/warning counts and setting Success when error_count is zero.
func NewAnalyzeReport(file string, diags []Diagnostic) AnalyzeReport {
	r := AnalyzeReport{
		Schema:      DiagnosticsV1,
		File:        file,
		Diagnostics: diags,
	}
	for _, d := range diags {
		switch d.Severity {
		case SeverityError:
			r.ErrorCount++
		case SeverityWarning:
			r.WarningCount++
		}
	}
	r.Success = r.ErrorCount == 0
	return r
}
