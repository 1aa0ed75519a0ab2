package diag

import (
	"fmt"
	"sort"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/schema"
)

// Severity mirrors schema.Severity so callers in stages that don't import
// schema directly (lexer, parser) can still report without a cycle.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Note    Severity = "note"
)

// Diagnostic is one compiler message: a code, a position, a span length
// and human text. Span is in bytes/runes of source text starting at Pos.
type Diagnostic struct {
	Severity Severity
	Code     string
	Pos      ast.Pos
	Span     int
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Pos.File, d.Pos.Line, d.Pos.Col, d.Severity, d.Message)
}

// Sink aggregates diagnostics across a compile, tracking whether a fatal
// error has been seen. Per spec.md §7, the compiler collects diagnostics
// and continues within a stage where it is safe to do so; any error at or
// beyond type-checking aborts emission, which callers enforce by checking
// HasErrors after each stage that can unsoundly feed the next.
type Sink struct {
	diags []Diagnostic
	quiet bool // when true, Warning/Note entries are dropped on Add
}

// NewSink creates an empty diagnostic sink. quiet suppresses warnings and
// notes, matching the driver's `-q/--quiet` flag (spec.md §6, §7).
func NewSink(quiet bool) *Sink {
	return &Sink{quiet: quiet}
}

// Add records a diagnostic unless it is a non-error and the sink is quiet.
func (s *Sink) Add(d Diagnostic) {
	if s.quiet && d.Severity != Error {
		return
	}
	s.diags = append(s.diags, d)
}

// Errorf is a convenience wrapper for the common case of a single error
// diagnostic with a span of 1.
func (s *Sink) Errorf(code string, pos ast.Pos, format string, args ...any) {
	s.Add(Diagnostic{Severity: Error, Code: code, Pos: pos, Span: 1, Message: fmt.Sprintf(format, args...)})
}

// Warnf is Errorf's Warning counterpart.
func (s *Sink) Warnf(code string, pos ast.Pos, format string, args ...any) {
	s.Add(Diagnostic{Severity: Warning, Code: code, Pos: pos, Span: 1, Message: fmt.Sprintf(format, args...)})
}

// Diagnostics returns all recorded diagnostics in the order they were
// added; callers that need a stable cross-run order for display sort by
// position first (see Sorted).
func (s *Sink) Diagnostics() []Diagnostic {
	return s.diags
}

// Len reports how many diagnostics have been recorded so far, letting a
// speculative parse snapshot the count before a tentative sub-parse and
// Truncate back to it on backtrack.
func (s *Sink) Len() int { return len(s.diags) }

// Truncate discards diagnostics recorded after position n, used by the
// parser's generic-call-vs-subscript backtracking.
func (s *Sink) Truncate(n int) {
	s.diags = s.diags[:n]
}

// Sorted returns diagnostics ordered by (file, line, col), the order the
// `build` subcommand prints them in and the order `analyze` emits them in,
// satisfying the deterministic-emission property of spec.md §8 for the
// diagnostic stream itself.
func (s *Sink) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Pos, out[j].Pos
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
	return out
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// ErrorCount and WarningCount are used by the driver's summary line and
// by schema.NewAnalyzeReport's counters.
func (s *Sink) ErrorCount() int {
	n := 0
	for _, d := range s.diags {
		if d.Severity == Error {
			n++
		}
	}
	return n
}

func (s *Sink) WarningCount() int {
	n := 0
	for _, d := range s.diags {
		if d.Severity == Warning {
			n++
		}
	}
	return n
}

// ToSchema converts every recorded diagnostic into the JSON-facing shape
// used by the `analyze` subcommand.
func (s *Sink) ToSchema() []schema.Diagnostic {
	sorted := s.Sorted()
	out := make([]schema.Diagnostic, 0, len(sorted))
	for _, d := range sorted {
		out = append(out, schema.Diagnostic{
			Severity: schema.Severity(d.Severity),
			File:     d.Pos.File,
			Line:     d.Pos.Line,
			Col:      d.Pos.Col,
			Span:     d.Span,
			Message:  d.Message,
		})
	}
	return out
}
