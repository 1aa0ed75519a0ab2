// Command bismut is the Bismut compiler driver (spec.md §4.7, §6):
// build/run/analyze subcommands over the preprocess -> lex -> parse ->
// resolve -> check -> emit pipeline in internal/driver.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/driver"
)

// Version is overwritten by -ldflags at release build time; "dev" is
// what a `go build` run with no linker flags reports.
var Version = "dev"

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// sharedFlags are the CLI knobs build/run/analyze all forward into a
// driver.BuildOptions or driver.Analyze call (spec.md §6).
type sharedFlags struct {
	cc          string
	tcc         bool
	defines     []string
	compilerDir string
	quiet       bool
}

func (f sharedFlags) buildOptions(output string, release, noDebugLeaks bool) driver.BuildOptions {
	return driver.BuildOptions{
		Output:       output,
		Release:      release,
		NoDebugLeaks: noDebugLeaks,
		Quiet:        f.quiet,
		CC:           f.cc,
		UseTCC:       f.tcc,
		Defines:      f.defines,
		CompilerDir:  f.compilerDir,
	}
}

func main() {
	flags := &sharedFlags{}
	showVersion := false

	root := &cobra.Command{
		Use:           "bismut",
		Short:         "Bismut: a statically-typed language compiling to C99",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&flags.cc, "cc", "", "path to the C compiler to invoke")
	root.PersistentFlags().BoolVar(&flags.tcc, "tcc", false, "use tcc as the C compiler")
	root.PersistentFlags().StringArrayVarP(&flags.defines, "define", "D", nil, "predefine a preprocessor symbol (repeatable)")
	root.PersistentFlags().StringVar(&flags.compilerDir, "compiler-dir", "", "directory holding bismut.yaml and standard modules")
	root.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress warning and note diagnostics")
	root.Flags().BoolVarP(&showVersion, "version", "V", false, "print version information")

	root.AddCommand(
		newBuildCmd(flags),
		newRunCmd(flags),
		newAnalyzeCmd(flags),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("%s %s\n", bold("bismut"), bold(Version))
	fmt.Println("A statically-typed, block-structured language compiling to C99")
}

func loadConfig(entryFile string, flags *sharedFlags) *driver.Config {
	cfg, err := driver.LoadConfigForFile(entryFile, flags.compilerDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", yellow("Warning"), err)
		return &driver.Config{}
	}
	return cfg
}

func newBuildCmd(flags *sharedFlags) *cobra.Command {
	var output string
	var release, noDebugLeaks bool

	cmd := &cobra.Command{
		Use:   "build <file.mut>",
		Short: "Compile a Bismut program to a native binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			cfg := loadConfig(file, flags)
			opts := flags.buildOptions(output, release, noDebugLeaks)

			if !flags.quiet {
				fmt.Printf("%s Compiling %s\n", cyan("→"), file)
			}
			res, err := driver.Build(file, opts, cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
				os.Exit(1)
			}
			printDiagnostics(res.Sink)
			if res.BinaryPath == "" {
				os.Exit(1)
			}
			if !flags.quiet {
				fmt.Printf("%s Wrote %s\n", green("✓"), res.BinaryPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output binary name (defaults to the entry file's base name)")
	cmd.Flags().BoolVarP(&release, "release", "r", false, "build with release optimization flags")
	cmd.Flags().BoolVar(&noDebugLeaks, "no-debug-leaks", false, "suppress the debug allocator's leak report")
	return cmd
}

func newRunCmd(flags *sharedFlags) *cobra.Command {
	var release, noDebugLeaks bool

	cmd := &cobra.Command{
		Use:   "run <file.mut> [-- program-args]",
		Short: "Build a Bismut program into a temp directory and run it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			progArgs := args[1:]
			cfg := loadConfig(file, flags)
			opts := flags.buildOptions("", release, noDebugLeaks)

			code, res, err := driver.Run(file, opts, cfg, progArgs)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
				os.Exit(1)
			}
			if res != nil {
				printDiagnostics(res.Sink)
			}
			os.Exit(code)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&release, "release", "r", false, "build with release optimization flags")
	cmd.Flags().BoolVar(&noDebugLeaks, "no-debug-leaks", false, "suppress the debug allocator's leak report")
	return cmd
}

func newAnalyzeCmd(flags *sharedFlags) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "analyze <file.mut>",
		Short: "Run preprocess/lex/parse/resolve/check and print diagnostics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			if watch {
				return driver.Watch(file, flags.defines, flags.quiet, flags.compilerDir, os.Stdout)
			}
			code, err := driver.RunAnalyze(file, flags.defines, flags.quiet, flags.compilerDir, os.Stdout)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
				os.Exit(1)
			}
			os.Exit(code)
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "re-run analyze interactively on keypress")
	return cmd
}

// printDiagnostics prints a build's collected diagnostics to stderr in
// the compiler's own "file:line:col: severity: message" form, colored by
// severity the way the teacher colors parser errors.
func printDiagnostics(sink *diag.Sink) {
	if sink == nil {
		return
	}
	for _, d := range sink.Sorted() {
		label := string(d.Severity)
		switch d.Severity {
		case diag.Error:
			label = red(label)
		case diag.Warning:
			label = yellow(label)
		default:
			label = cyan(label)
		}
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s: %s\n", d.Pos.File, d.Pos.Line, d.Pos.Col, label, d.Message)
	}
}
