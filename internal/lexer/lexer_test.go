package lexer

import (
	"testing"

	"github.com/bismut-lang/bismut/internal/diag"
)

func lexAll(t *testing.T, src string) ([]Token, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink(false)
	l := New(src, "t.mut", sink)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks, sink
}

func TestNextTokenBasicDecl(t *testing.T) {
	src := "def add(a:i32, b:i32) -> i32\n  return a + b\nend\n"
	toks, sink := lexAll(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected lex errors: %v", sink.Diagnostics())
	}
	want := []TokenType{DEF, IDENT, LPAREN, IDENT, COLON, I32, COMMA, IDENT, COLON, I32, RPAREN, ARROW, I32, NEWLINE,
		RETURN, IDENT, PLUS, IDENT, NEWLINE, END, NEWLINE, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestNewlineSuppressedInsideParens(t *testing.T) {
	src := "f(1,\n2)\n"
	toks, _ := lexAll(t, src)
	for _, tok := range toks[:len(toks)-2] {
		if tok.Type == NEWLINE {
			t.Fatalf("newline should be suppressed inside parens: %v", toks)
		}
	}
}

func TestHexAndBinaryLiterals(t *testing.T) {
	toks, sink := lexAll(t, "0xFF 0b101 42\n")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	if toks[0].IntValue != 255 || toks[0].Radix != RadixHex {
		t.Errorf("hex literal: %+v", toks[0])
	}
	if toks[1].IntValue != 5 || toks[1].Radix != RadixBinary {
		t.Errorf("binary literal: %+v", toks[1])
	}
	if toks[2].IntValue != 42 || toks[2].Radix != RadixDecimal {
		t.Errorf("decimal literal: %+v", toks[2])
	}
}

func TestLeadingMinusIsUnary(t *testing.T) {
	toks, _ := lexAll(t, "-5\n")
	if toks[0].Type != MINUS {
		t.Fatalf("expected MINUS then INT, got %v", toks)
	}
	if toks[1].Type != INT || toks[1].IntValue != 5 {
		t.Fatalf("expected INT(5), got %v", toks[1])
	}
}

func TestCharLiteralSingleCharacter(t *testing.T) {
	toks, sink := lexAll(t, "'a' '\\n'\n")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	if toks[0].Type != CHAR || toks[0].CharValue != 'a' {
		t.Errorf("got %+v", toks[0])
	}
	if toks[1].Type != CHAR || toks[1].CharValue != '\n' {
		t.Errorf("got %+v", toks[1])
	}
}

func TestSingleQuotedMultiCharIsString(t *testing.T) {
	toks, _ := lexAll(t, "'ab'\n")
	if toks[0].Type != STRING || toks[0].Lit != "ab" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestTripleQuotedStringPreservesNewlines(t *testing.T) {
	toks, sink := lexAll(t, "\"\"\"line1\nline2\"\"\"\n")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	if toks[0].Type != STRING || toks[0].Lit != "line1\nline2" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestUnterminatedStringIsLexError(t *testing.T) {
	_, sink := lexAll(t, "\"abc\n")
	if !sink.HasErrors() {
		t.Fatalf("expected a lex error for unterminated string")
	}
}

func TestKeywordVsIdentifier(t *testing.T) {
	toks, _ := lexAll(t, "class Foo\n")
	if toks[0].Type != CLASS {
		t.Fatalf("expected CLASS, got %v", toks[0])
	}
	if toks[1].Type != IDENT {
		t.Fatalf("expected IDENT, got %v", toks[1])
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	toks, _ := lexAll(t, "x := 1 # a comment\ny := 2\n")
	var types []TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	want := []TokenType{IDENT, COLONEQ, INT, NEWLINE, IDENT, COLONEQ, INT, NEWLINE, EOF}
	if len(types) != len(want) {
		t.Fatalf("got %v", types)
	}
}
