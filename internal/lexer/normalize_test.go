package lexer

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/unicode/norm"
)

func TestNormalizeStripsBOM(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{"with_bom", []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, []byte("hi")},
		{"without_bom", []byte("hi"), []byte("hi")},
		{"empty_with_bom", []byte{0xEF, 0xBB, 0xBF}, []byte{}},
		{"partial_bom_not_stripped", []byte{0xEF, 0xBB, 'h', 'i'}, []byte{0xEF, 0xBB, 'h', 'i'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeRewritesCRLF(t *testing.T) {
	input := []byte("def f()\r\n  return 1\r\nend\r\n")
	want := []byte("def f()\n  return 1\nend\n")
	got := Normalize(input)
	if !bytes.Equal(got, want) {
		t.Errorf("Normalize did not rewrite CRLF: got %q, want %q", got, want)
	}
}

func TestNormalizeAppliesNFC(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"already_nfc", "café"},        // e-acute precomposed
		{"nfd_to_nfc", "café"},        // e + combining acute accent
		{"ascii_unchanged", "hello world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(Normalize([]byte(tt.input)))
			if !norm.NFC.IsNormalString(got) {
				t.Errorf("Normalize(%q) = %q, not in NFC form", tt.input, got)
			}
		})
	}
}

func TestNormalizeNFDBecomesNFC(t *testing.T) {
	nfd := "café"
	nfc := "café"
	got := string(Normalize([]byte(nfd)))
	if got != nfc {
		t.Errorf("Normalize(%q) = %q, want %q", nfd, got, nfc)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"hello", "café", "café", "﻿hello", "a\r\nb\r\n"}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first := Normalize([]byte(input))
			second := Normalize(first)
			if !bytes.Equal(first, second) {
				t.Errorf("Normalize not idempotent: first=%q, second=%q", first, second)
			}
		})
	}
}

// TestEncodingVariantsLexIdentically is the canary test that encoding
// differences alone (CRLF vs LF, NFD vs NFC, BOM present or absent) never
// change a source file's token stream.
func TestEncodingVariantsLexIdentically(t *testing.T) {
	base := "def f() -> i32\n  return 1\nend\n"

	variants := map[string]string{
		"lf":       base,
		"crlf":     toCRLF(base),
		"bom_lf":   "﻿" + base,
		"bom_crlf": "﻿" + toCRLF(base),
	}

	var baseline []Token
	var baselineName string
	for name, src := range variants {
		toks, sink := lexAll(t, string(Normalize([]byte(src))))
		if sink.HasErrors() {
			t.Fatalf("variant %s: unexpected lex errors: %v", name, sink.Diagnostics())
		}
		if baseline == nil {
			baseline, baselineName = toks, name
			continue
		}
		if diff := cmp.Diff(stripPositions(baseline), stripPositions(toks)); diff != "" {
			t.Errorf("variant %s token stream differs from %s (-want +got):\n%s", name, baselineName, diff)
		}
	}
}

func toCRLF(s string) string {
	return string(bytes.ReplaceAll([]byte(s), []byte("\n"), []byte("\r\n")))
}

// stripPositions drops line/col/file so token streams compare equal
// across variants that legitimately shift those (a BOM or CRLF rewrite
// doesn't change token identity, only byte offsets).
func stripPositions(toks []Token) []Token {
	out := make([]Token, len(toks))
	for i, tok := range toks {
		tok.Line, tok.Col, tok.File = 0, 0, ""
		out[i] = tok
	}
	return out
}
