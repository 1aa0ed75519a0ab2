package driver

import (
	"path/filepath"
	"runtime"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/check"
	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/preprocess"
	"github.com/bismut-lang/bismut/internal/resolve"
)

// baseDefines seeds the preprocessor symbol table with the single
// predefined platform symbol for the host (spec.md §4.1), plus whatever
// `-D`/`--define` symbols the caller passed on the command line.
func baseDefines(extra []string) map[string]bool {
	defines := map[string]bool{
		preprocess.HostPlatform(runtime.GOOS): true,
	}
	for _, sym := range extra {
		defines[sym] = true
	}
	return defines
}

// Pipeline is the result of running every stage through type checking:
// everything `analyze` needs, and everything `build` needs before emit.
type Pipeline struct {
	File    *ast.File
	Checker *check.Checker
	Sink    *diag.Sink
}

// stdlibRoot turns a `--compiler-dir` value into the standard-module
// search path a bare `import` falls back to when no project-local module
// matches (spec.md §6): `<compilerDir>/std`. Empty when no compiler
// directory was configured, disabling the fallback entirely.
func stdlibRoot(compilerDir string) string {
	if compilerDir == "" {
		return ""
	}
	return filepath.Join(compilerDir, "std")
}

// Analyze runs preprocess -> lex -> parse -> resolve -> check over
// entryFile and stops there (spec.md §4.7): it never calls emit, so it
// is safe to run on a program with compile errors.
func Analyze(entryFile string, extraDefines []string, quiet bool) *Pipeline {
	return analyze(entryFile, extraDefines, quiet, "")
}

func analyze(entryFile string, extraDefines []string, quiet bool, compilerDir string) *Pipeline {
	sink := diag.NewSink(quiet)
	defines := baseDefines(extraDefines)

	r := resolve.New(stdlibRoot(compilerDir), sink, defines)
	file := r.Resolve(entryFile)
	if file == nil {
		return &Pipeline{Sink: sink}
	}

	chk := check.New(sink)
	chk.Check(file)

	return &Pipeline{File: file, Checker: chk, Sink: sink}
}
