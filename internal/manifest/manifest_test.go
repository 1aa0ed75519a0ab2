package manifest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/bismut-lang/bismut/internal/diag"
)

func writeManifest(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadParsesFunctionsTypesAndConstants(t *testing.T) {
	dir := t.TempDir()
	body := `[types]
FileHandle = FILE*

[functions]
bismut_file_open(path: str) -> FileHandle = fopen
bismut_file_close(f: FileHandle) -> void = fclose [dtor]

[constants]
SEEK_SET: i32 = SEEK_SET

[flags]
cflags = -I{LIB_DIR}/include
ldflags = -lm
`
	path := writeManifest(t, dir, "stdio.mutlib", body)
	sink := diag.NewSink(false)

	m, err := Load(path, sink)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sink.HasErrors() {
		for _, d := range sink.Sorted() {
			t.Logf("diag: %s", d)
		}
		t.Fatalf("unexpected diagnostics parsing manifest")
	}

	if m.Lib != "stdio" {
		t.Fatalf("expected lib name stdio, got %q", m.Lib)
	}

	if len(m.Types) != 1 || m.Types[0].Name != "FileHandle" || m.Types[0].CName != "FILE*" {
		t.Fatalf("unexpected types: %+v", m.Types)
	}

	if len(m.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(m.Functions))
	}
	open := m.Functions[0]
	if open.Name != "bismut_file_open" || open.CName != "fopen" || open.IsDtor {
		t.Fatalf("unexpected open extern: %+v", open)
	}
	if open.Lib != "stdio" {
		t.Fatalf("expected extern lib to be stamped, got %q", open.Lib)
	}
	if len(open.Params) != 1 || open.Params[0].Name != "path" {
		t.Fatalf("unexpected open params: %+v", open.Params)
	}

	closeFn := m.Functions[1]
	if closeFn.Name != "bismut_file_close" || closeFn.CName != "fclose" || !closeFn.IsDtor {
		t.Fatalf("expected close to be tagged [dtor]: %+v", closeFn)
	}

	if len(m.Constants) != 1 {
		t.Fatalf("expected 1 constant, got %d", len(m.Constants))
	}
	c := m.Constants[0].Decl
	if c.Name != "SEEK_SET" || !c.IsConst {
		t.Fatalf("unexpected constant decl: %+v", c)
	}

	wantCflag := "-I" + dir + "/include"
	if len(m.Flags.CFlags) != 1 || m.Flags.CFlags[0] != wantCflag {
		t.Fatalf("expected LIB_DIR-expanded cflags %q, got %v", wantCflag, m.Flags.CFlags)
	}
	if len(m.Flags.LDFlags) != 1 || m.Flags.LDFlags[0] != "-lm" {
		t.Fatalf("unexpected ldflags: %v", m.Flags.LDFlags)
	}
}

func TestLoadMergesPlatformSpecificFlags(t *testing.T) {
	dir := t.TempDir()
	body := `[flags]
ldflags = -lbase
ldflags_` + platformSuffix(runtime.GOOS) + ` = -lhostspecific
`
	path := writeManifest(t, dir, "plat.mutlib", body)
	sink := diag.NewSink(false)

	m, err := Load(path, sink)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Flags.LDFlags) != 2 || m.Flags.LDFlags[0] != "-lbase" || m.Flags.LDFlags[1] != "-lhostspecific" {
		t.Fatalf("expected base flags followed by host-specific flags, got %v", m.Flags.LDFlags)
	}
}

func TestPlatformSuffixMapsDarwinToMacos(t *testing.T) {
	cases := map[string]string{
		"darwin":  "macos",
		"linux":   "linux",
		"windows": "windows",
	}
	for goos, want := range cases {
		if got := platformSuffix(goos); got != want {
			t.Errorf("platformSuffix(%q) = %q, want %q", goos, got, want)
		}
	}
}

func TestLoadWithoutOptionalSections(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "bare.mutlib", "[functions]\nbismut_noop() -> void = noop\n")
	sink := diag.NewSink(false)

	m, err := Load(path, sink)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Types) != 0 || len(m.Constants) != 0 {
		t.Fatalf("expected no types/constants, got %+v / %+v", m.Types, m.Constants)
	}
	if len(m.Functions) != 1 || m.Functions[0].Name != "bismut_noop" {
		t.Fatalf("unexpected functions: %+v", m.Functions)
	}
}

func TestLoadMalformedTypeLine(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "bad.mutlib", "[types]\nNotAnAssignment\n")
	sink := diag.NewSink(false)

	if _, err := Load(path, sink); err == nil {
		t.Fatalf("expected error for malformed [types] line")
	}
}
