package driver

import "testing"

func TestResolveCCPrecedence(t *testing.T) {
	tests := []struct {
		name string
		opts BuildOptions
		cfg  Config
		want string
	}{
		{"explicit cc wins", BuildOptions{CC: "clang-17"}, Config{CC: "gcc"}, "clang-17"},
		{"tcc shorthand", BuildOptions{UseTCC: true}, Config{CC: "gcc"}, "tcc"},
		{"config fallback", BuildOptions{}, Config{CC: "gcc"}, "gcc"},
		{"default", BuildOptions{}, Config{}, "cc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.resolveCC(&tt.cfg); got != tt.want {
				t.Errorf("resolveCC() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompilerFlagsSelectsReleaseOrDebug(t *testing.T) {
	cfg := &Config{}

	debug := BuildOptions{}.compilerFlags(cfg)
	if !contains(debug, "-g") {
		t.Errorf("expected default debug flags to include -g, got %v", debug)
	}

	release := BuildOptions{Release: true}.compilerFlags(cfg)
	if !contains(release, "-O2") {
		t.Errorf("expected default release flags to include -O2, got %v", release)
	}
}

func TestCompilerFlagsHonorsConfigOverride(t *testing.T) {
	cfg := &Config{ReleaseFlags: []string{"-O3", "-flto"}}
	flags := BuildOptions{Release: true}.compilerFlags(cfg)
	if !contains(flags, "-O3") || !contains(flags, "-flto") {
		t.Errorf("expected config release flags honored, got %v", flags)
	}
	if contains(flags, "-O2") {
		t.Errorf("expected default -O2 suppressed when config supplies release flags, got %v", flags)
	}
}

func TestCompilerFlagsNoDebugLeaks(t *testing.T) {
	flags := BuildOptions{NoDebugLeaks: true}.compilerFlags(&Config{})
	if !contains(flags, "-DBISMUT_NO_DEBUG_LEAKS") {
		t.Errorf("expected -DBISMUT_NO_DEBUG_LEAKS, got %v", flags)
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
