// Package parser implements Bismut's recursive-descent parser (spec.md
// §4.3): top-level declarations, statement dispatch, and a
// precedence-climbing expression grammar.
package parser

import (
	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/lexer"
)

// Precedence levels, listed from lowest to highest binding. Binary
// operators are all left-associative.
const (
	_ int = iota
	LOWEST
	OR_PREC     // or
	AND_PREC    // and
	EQUALS      // == !=
	COMPARE     // < <= > >= is as
	SHIFT       // << >>
	SUM         // + -
	PRODUCT     // * / %
	BITAND      // &
	BITXOR      // ^
	BITOR       // |
	UNARY       // not - ~ (unary)
	CALLPREC    // f(x) x[i] x.field
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:       OR_PREC,
	lexer.AND:      AND_PREC,
	lexer.EQ:       EQUALS,
	lexer.NE:       EQUALS,
	lexer.LT:       COMPARE,
	lexer.LE:       COMPARE,
	lexer.GT:       COMPARE,
	lexer.GE:       COMPARE,
	lexer.IS:       COMPARE,
	lexer.AS:       COMPARE,
	lexer.SHL:      SHIFT,
	lexer.SHR:      SHIFT,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.STAR:     PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.AMP:      BITAND,
	lexer.CARET:    BITXOR,
	lexer.PIPE:     BITOR,
	lexer.LPAREN:   CALLPREC,
	lexer.LBRACKET: CALLPREC,
	lexer.DOT:      CALLPREC,
}

// Parser walks a token stream from lexer.Lexer and builds an *ast.File.
// It reports malformed input to sink and keeps going where it safely can,
// matching spec.md §7's recoverable-errors-within-a-stage policy.
type Parser struct {
	l    *lexer.Lexer
	sink *diag.Sink
	file string

	cur  lexer.Token
	peek lexer.Token

	loopDepth int

	prefixFns map[lexer.TokenType]func() ast.Expr
}

// New creates a Parser over l, reporting to sink.
func New(l *lexer.Lexer, file string, sink *diag.Sink) *Parser {
	p := &Parser{l: l, sink: sink, file: file}
	p.next()
	p.next()

	p.prefixFns = map[lexer.TokenType]func() ast.Expr{
		lexer.IDENT:    p.parseIdentOrCall,
		lexer.INT:      p.parseIntLit,
		lexer.FLOAT:    p.parseFloatLit,
		lexer.STRING:   p.parseStringLit,
		lexer.CHAR:     p.parseCharLit,
		lexer.TRUE:     p.parseBoolLit,
		lexer.FALSE:    p.parseBoolLit,
		lexer.NONE:     p.parseNoneLit,
		lexer.LPAREN:   p.parseParenOrTuple,
		lexer.MINUS:    p.parseUnary,
		lexer.NOT:      p.parseUnary,
		lexer.TILDE:    p.parseUnary,
	}
	for _, tt := range []lexer.TokenType{
		lexer.I8, lexer.I16, lexer.I32, lexer.I64,
		lexer.U8, lexer.U16, lexer.U32, lexer.U64,
		lexer.F32, lexer.F64, lexer.BOOL, lexer.STR,
	} {
		p.prefixFns[tt] = p.parsePrimitiveCtorOrCast
	}
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(tt lexer.TokenType) bool  { return p.cur.Type == tt }
func (p *Parser) peekIs(tt lexer.TokenType) bool { return p.peek.Type == tt }

func (p *Parser) pos() ast.Pos {
	return ast.Pos{File: p.cur.File, Line: p.cur.Line, Col: p.cur.Col}
}

// expect advances past the current token if it has type tt, else reports
// PAR001 and advances anyway so the parser can keep making progress.
func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	tok := p.cur
	if !p.curIs(tt) {
		p.sink.Errorf("PAR001", p.pos(), "unexpected token %s %q, expected %s", p.cur.Type, p.cur.Lit, tt)
	}
	p.next()
	return tok
}

// skipNewlines consumes any run of statement-terminator newlines (blank
// lines between statements are legal).
func (p *Parser) skipNewlines() {
	for p.curIs(lexer.NEWLINE) {
		p.next()
	}
}

// Parse consumes the whole token stream and returns the parsed file.
// Imports (spec.md §4.4) must precede all other top-level forms; imports
// seen afterward are reported as RES004 but still collected so downstream
// stages see a best-effort tree.
func (p *Parser) Parse() *ast.File {
	file := &ast.File{Path: p.file, P: p.pos()}
	p.skipNewlines()

	seenNonImport := false
	for !p.curIs(lexer.EOF) {
		p.skipNewlines()
		if p.curIs(lexer.EOF) {
			break
		}
		if p.curIs(lexer.IMPORT) {
			imp := p.parseImport()
			if seenNonImport {
				p.sink.Errorf("RES004", imp.P, "import must precede all other top-level declarations")
			}
			file.Imports = append(file.Imports, imp)
			p.skipNewlines()
			continue
		}
		seenNonImport = true
		decl := p.parseTopLevelDecl()
		if decl != nil {
			file.Decls = append(file.Decls, decl)
		}
		p.skipNewlines()
	}
	return file
}

func (p *Parser) parseTopLevelDecl() ast.Decl {
	switch p.cur.Type {
	case lexer.DEF:
		return p.parseFuncDecl()
	case lexer.CLASS:
		return p.parseClassDecl()
	case lexer.STRUCT:
		return p.parseStructDecl()
	case lexer.ENUM:
		return p.parseEnumDecl()
	case lexer.INTERFACE:
		return p.parseInterfaceDecl()
	case lexer.EXTERN:
		return p.parseExternDecl()
	case lexer.CONST:
		return p.parseGlobalVarDecl(true)
	case lexer.IDENT:
		return p.parseGlobalVarDecl(false)
	default:
		p.sink.Errorf("PAR003", p.pos(), "unexpected token %s at top level", p.cur.Type)
		p.next()
		return nil
	}
}
