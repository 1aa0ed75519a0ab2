package driver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileYieldsZeroConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CC != "" || len(cfg.ModulePaths) != 0 {
		t.Fatalf("expected zero Config, got %+v", cfg)
	}
}

func TestLoadConfigParsesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bismut.yaml")
	body := `cc: clang
compiler_dir: /opt/bismut
module_paths:
  - /opt/bismut/std
defines:
  - FEATURE_X
release_flags:
  - -O3
debug_flags:
  - -g
  - -fsanitize=address
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CC != "clang" {
		t.Errorf("cc = %q, want clang", cfg.CC)
	}
	if len(cfg.ModulePaths) != 1 || cfg.ModulePaths[0] != "/opt/bismut/std" {
		t.Errorf("module_paths = %v", cfg.ModulePaths)
	}
	if len(cfg.Defines) != 1 || cfg.Defines[0] != "FEATURE_X" {
		t.Errorf("defines = %v", cfg.Defines)
	}
	if len(cfg.DebugFlags) != 2 || cfg.DebugFlags[1] != "-fsanitize=address" {
		t.Errorf("debug_flags = %v", cfg.DebugFlags)
	}
}

func TestLoadConfigForFilePrefersCompilerDir(t *testing.T) {
	srcDir := t.TempDir()
	compilerDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(srcDir, defaultConfigName), []byte("cc: gcc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(compilerDir, defaultConfigName), []byte("cc: clang\n"), 0644); err != nil {
		t.Fatal(err)
	}

	entryFile := filepath.Join(srcDir, "main.mut")
	cfg, err := LoadConfigForFile(entryFile, compilerDir)
	if err != nil {
		t.Fatalf("LoadConfigForFile: %v", err)
	}
	if cfg.CC != "clang" {
		t.Errorf("expected compiler-dir config to win, got cc=%q", cfg.CC)
	}
}
