package driver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/emit"
)

// BuildResult is what `build` produced: the emitted C source, the linked
// binary, and the diagnostics collected along the way.
type BuildResult struct {
	COutPath   string
	BinaryPath string
	Sink       *diag.Sink
}

// Build runs the full pipeline (spec.md §4.7) — preprocess, lex, parse,
// resolve, check, emit — then invokes a host C compiler over the emitted
// translation unit, writing both beside entryFile. It stops after check
// and returns a BuildResult with no COutPath if the sink has any error,
// since emit must not run over an unsound program (spec.md §7).
func Build(entryFile string, opts BuildOptions, cfg *Config) (*BuildResult, error) {
	return buildInto(entryFile, opts, cfg, filepath.Dir(entryFile))
}

// buildInto runs the pipeline and places the emitted .c and linked
// binary under dir, used directly by Build (dir = the entry file's own
// directory) and by Run (dir = a scratch temp directory).
func buildInto(entryFile string, opts BuildOptions, cfg *Config, dir string) (*BuildResult, error) {
	p := analyze(entryFile, mergeDefines(opts.Defines, cfg.Defines), opts.Quiet, opts.CompilerDir)
	if p.File == nil || p.Sink.HasErrors() {
		return &BuildResult{Sink: p.Sink}, nil
	}

	src := emit.Emit(p.File, p.Checker, p.Sink)
	if p.Sink.HasErrors() {
		return &BuildResult{Sink: p.Sink}, nil
	}

	stem := outputStem(entryFile, opts.Output)
	cPath := filepath.Join(dir, filepath.Base(stem)+".c")
	if err := os.WriteFile(cPath, []byte(src), 0644); err != nil {
		return nil, fmt.Errorf("driver: write %s: %w", cPath, err)
	}

	binPath := filepath.Join(dir, filepath.Base(stem))
	if err := compile(cPath, binPath, opts, cfg); err != nil {
		return &BuildResult{COutPath: cPath, Sink: p.Sink}, err
	}

	return &BuildResult{COutPath: cPath, BinaryPath: binPath, Sink: p.Sink}, nil
}

// outputStem picks the binary/C-file base name: the explicit -o value,
// or the entry file's own name with its extension stripped.
func outputStem(entryFile, output string) string {
	if output != "" {
		return output
	}
	base := filepath.Base(entryFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// mergeDefines combines CLI -D symbols with bismut.yaml's `defines` list,
// CLI flags taking no particular precedence since both just add symbols
// to the same preprocessor table.
func mergeDefines(cli, cfg []string) []string {
	if len(cfg) == 0 {
		return cli
	}
	return append(append([]string{}, cfg...), cli...)
}

// compile invokes the resolved C compiler over cPath, producing binPath.
// Compiler stderr is wrapped into the returned error so the caller can
// print it verbatim the way `cc` itself would.
func compile(cPath, binPath string, opts BuildOptions, cfg *Config) error {
	cc := opts.resolveCC(cfg)
	args := append(opts.compilerFlags(cfg), cPath, "-o", binPath)

	cmd := exec.Command(cc, args...)
	cmd.Stdout = os.Stdout
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w\n%s", cc, err, stderr.String())
	}
	return nil
}
