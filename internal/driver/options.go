package driver

// BuildOptions collects the flags shared by `build` and `run` (spec.md
// §6): where to write the binary, which C compiler to invoke and with
// what extra flags, and which preprocessor symbols to predefine.
type BuildOptions struct {
	Output       string   // -o/--output; defaults to the entry file's base name
	Release      bool     // -r/--release; selects Config.ReleaseFlags over DebugFlags
	NoDebugLeaks bool     // --no-debug-leaks; suppresses the runtime's debug allocator leak report
	Quiet        bool     // -q/--quiet; suppresses warning/note diagnostics
	CC           string   // --cc PATH; overrides the compiler chosen from Config/--tcc
	UseTCC       bool     // --tcc; shorthand for --cc tcc
	Defines      []string // -D/--define SYM, repeatable
	CompilerDir  string   // --compiler-dir DIR; where bismut.yaml and standard modules live
}

// resolveCC picks the C compiler to invoke, in order of precedence:
// explicit --cc, --tcc shorthand, bismut.yaml's `cc`, then the
// toolchain-agnostic default "cc".
func (o BuildOptions) resolveCC(cfg *Config) string {
	if o.CC != "" {
		return o.CC
	}
	if o.UseTCC {
		return "tcc"
	}
	if cfg.CC != "" {
		return cfg.CC
	}
	return "cc"
}

// compilerFlags merges bismut.yaml's release/debug flag list (selected
// by o.Release) with the standard C99 flags every build needs.
func (o BuildOptions) compilerFlags(cfg *Config) []string {
	flags := []string{"-std=c99", "-w"}
	if o.Release {
		flags = append(flags, cfg.ReleaseFlags...)
		if len(cfg.ReleaseFlags) == 0 {
			flags = append(flags, "-O2", "-DNDEBUG")
		}
	} else {
		flags = append(flags, cfg.DebugFlags...)
		if len(cfg.DebugFlags) == 0 {
			flags = append(flags, "-g")
		}
	}
	if o.NoDebugLeaks {
		flags = append(flags, "-DBISMUT_NO_DEBUG_LEAKS")
	}
	return flags
}
