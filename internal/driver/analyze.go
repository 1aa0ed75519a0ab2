package driver

import (
	"fmt"
	"io"

	"github.com/bismut-lang/bismut/internal/schema"
)

// RunAnalyze runs the front end over entryFile and writes its JSON
// diagnostics report to w (spec.md §6). It returns the process exit code
// the `analyze` subcommand should use: 0 when the report's Success is
// true, 1 otherwise.
func RunAnalyze(entryFile string, extraDefines []string, quiet bool, compilerDir string, w io.Writer) (int, error) {
	p := analyze(entryFile, extraDefines, quiet, compilerDir)
	report := schema.NewAnalyzeReport(entryFile, p.Sink.ToSchema())

	out, err := schema.Marshal(report)
	if err != nil {
		return 1, fmt.Errorf("driver: marshal analyze report: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(out)); err != nil {
		return 1, err
	}

	if report.Success {
		return 0, nil
	}
	return 1, nil
}
