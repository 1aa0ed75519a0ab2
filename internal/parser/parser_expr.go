package parser

import (
	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/lexer"
)

// parseExpr is the precedence-climbing entry point: a prefix parse
// followed by a loop of infix operators whose precedence exceeds prec.
func (p *Parser) parseExpr(prec int) ast.Expr {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		p.sink.Errorf("PAR003", p.pos(), "unexpected token %s %q in expression", p.cur.Type, p.cur.Lit)
		p.next()
		return &ast.Ident{Name: "<error>", P: p.pos()}
	}
	left := prefix()

	for !p.curIs(lexer.NEWLINE) && prec < p.curPrecedence() {
		left = p.parseInfix(left)
	}
	return left
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parseInfix(left ast.Expr) ast.Expr {
	switch p.cur.Type {
	case lexer.LPAREN:
		return p.parseCallExpr(left)
	case lexer.LBRACKET:
		return p.parseIndexExpr(left)
	case lexer.DOT:
		return p.parseMemberExpr(left)
	case lexer.IS:
		return p.parseIsExpr(left)
	case lexer.AS:
		return p.parseAsExpr(left)
	default:
		return p.parseBinaryExpr(left)
	}
}

func (p *Parser) parseCallArgs() []ast.Expr {
	p.expect(lexer.LPAREN)
	var args []ast.Expr
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		args = append(args, p.parseExpr(LOWEST))
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

func (p *Parser) parseCallExpr(fn ast.Expr) ast.Expr {
	pos := fn.Position()
	args := p.parseCallArgs()
	return &ast.CallExpr{Fn: fn, Args: args, P: pos}
}

func (p *Parser) parseIndexExpr(x ast.Expr) ast.Expr {
	pos := x.Position()
	p.expect(lexer.LBRACKET)
	idx := p.parseExpr(LOWEST)
	p.expect(lexer.RBRACKET)
	return &ast.IndexExpr{X: x, Index: idx, P: pos}
}

func (p *Parser) parseMemberExpr(x ast.Expr) ast.Expr {
	pos := x.Position()
	p.expect(lexer.DOT)
	name := p.expect(lexer.IDENT).Lit
	return &ast.MemberExpr{X: x, Name: name, P: pos}
}

func (p *Parser) parseIsExpr(x ast.Expr) ast.Expr {
	pos := x.Position()
	p.expect(lexer.IS)
	ty := p.parseType()
	return &ast.IsExpr{X: x, Type: ty, P: pos}
}

func (p *Parser) parseAsExpr(x ast.Expr) ast.Expr {
	pos := x.Position()
	p.expect(lexer.AS)
	ty := p.parseType()
	return &ast.AsExpr{X: x, Type: ty, P: pos}
}

var binaryOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.STAR:    ast.BinMul,
	lexer.SLASH:   ast.BinDiv,
	lexer.PERCENT: ast.BinMod,
	lexer.PLUS:    ast.BinAdd,
	lexer.MINUS:   ast.BinSub,
	lexer.SHL:     ast.BinShl,
	lexer.SHR:     ast.BinShr,
	lexer.LT:      ast.BinLt,
	lexer.LE:      ast.BinLe,
	lexer.GT:      ast.BinGt,
	lexer.GE:      ast.BinGe,
	lexer.EQ:      ast.BinEq,
	lexer.NE:      ast.BinNe,
	lexer.AMP:     ast.BinBitAnd,
	lexer.CARET:   ast.BinBitXor,
	lexer.PIPE:    ast.BinBitOr,
	lexer.AND:     ast.BinAnd,
	lexer.OR:      ast.BinOr,
}

func (p *Parser) parseBinaryExpr(left ast.Expr) ast.Expr {
	pos := left.Position()
	tt := p.cur.Type
	prec := p.curPrecedence()
	op, ok := binaryOps[tt]
	if !ok {
		p.sink.Errorf("PAR003", p.pos(), "unexpected token %s in expression", tt)
		p.next()
		return left
	}
	p.next()
	right := p.parseExpr(prec)
	return &ast.BinaryExpr{Op: op, Left: left, Right: right, P: pos}
}

// parseIdentOrCall parses a bare identifier (a following `(args)` is then
// parsed as an infix call), a generic call `f[T1,...](args)`, or a
// collection literal constructor
// `List[T]() { ... }` / `Dict[K,V]() { ... }` (spec.md §3, §4.3).
// `name[...]` is ambiguous with a subscript of a variable named `name`;
// disambiguation tries a type-argument-list parse and falls back to
// treating `[` as an ordinary infix subscript when that fails.
func (p *Parser) parseIdentOrCall() ast.Expr {
	pos := p.pos()
	name := p.cur.Lit
	p.next()

	if name == "List" && p.curIs(lexer.LBRACKET) {
		return p.parseListLit(pos)
	}
	if name == "Dict" && p.curIs(lexer.LBRACKET) {
		return p.parseDictLit(pos)
	}

	if p.curIs(lexer.LBRACKET) {
		if typeArgs, args, ok := p.tryParseGenericCall(); ok {
			return &ast.GenericCallExpr{Name: name, TypeArgs: typeArgs, Args: args, P: pos}
		}
	}
	return &ast.Ident{Name: name, P: pos}
}

// parserMark snapshots enough parser state to backtrack a failed
// speculative parse: the lexer (a plain value type, safe to copy) and the
// two-token lookahead buffer.
type parserMark struct {
	lex       lexer.Lexer
	cur, peek lexer.Token
	diagsLen  int
}

func (p *Parser) mark() parserMark {
	return parserMark{lex: *p.l, cur: p.cur, peek: p.peek, diagsLen: p.sink.Len()}
}

func (p *Parser) reset(m parserMark) {
	*p.l = m.lex
	p.cur = m.cur
	p.peek = m.peek
	p.sink.Truncate(m.diagsLen)
}

// tryParseGenericCall speculatively parses `[T1, ...](args)` following an
// identifier already consumed. On any mismatch (not a `]` after the type
// list, or no `(` immediately after), it rolls back entirely so the
// caller can fall back to ordinary subscript parsing.
func (p *Parser) tryParseGenericCall() ([]ast.TypeExpr, []ast.Expr, bool) {
	m := p.mark()

	p.next() // consume '['
	var typeArgs []ast.TypeExpr
	ok := true
	for !p.curIs(lexer.RBRACKET) {
		if p.curIs(lexer.EOF) || p.curIs(lexer.NEWLINE) {
			ok = false
			break
		}
		typeArgs = append(typeArgs, p.parseType())
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	if ok && p.curIs(lexer.RBRACKET) {
		p.next()
	} else {
		ok = false
	}
	if ok && p.curIs(lexer.LPAREN) {
		args := p.parseCallArgs()
		return typeArgs, args, true
	}

	p.reset(m)
	return nil, nil, false
}

// parseListLit parses `List[T]() { e1, e2, ... }` — a constructor call
// with no positional arguments followed by a brace-delimited element list
// (spec.md §3).
func (p *Parser) parseListLit(pos ast.Pos) ast.Expr {
	p.expect(lexer.LBRACKET)
	elem := p.parseType()
	p.expect(lexer.RBRACKET)
	p.expect(lexer.LPAREN)
	p.expect(lexer.RPAREN)

	lit := &ast.ListLitExpr{Elem: elem, P: pos}
	if !p.curIs(lexer.LBRACE) {
		return lit
	}
	p.next()
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		lit.Elements = append(lit.Elements, p.parseExpr(LOWEST))
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACE)
	return lit
}

// parseDictLit parses `Dict[K,V]() { k: v, ... }`.
func (p *Parser) parseDictLit(pos ast.Pos) ast.Expr {
	p.expect(lexer.LBRACKET)
	key := p.parseType()
	p.expect(lexer.COMMA)
	val := p.parseType()
	p.expect(lexer.RBRACKET)
	p.expect(lexer.LPAREN)
	p.expect(lexer.RPAREN)

	lit := &ast.DictLitExpr{Key: key, Val: val, P: pos}
	if !p.curIs(lexer.LBRACE) {
		return lit
	}
	p.next()
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		k := p.parseExpr(LOWEST)
		p.expect(lexer.COLON)
		v := p.parseExpr(LOWEST)
		lit.Entries = append(lit.Entries, ast.DictEntry{Key: k, Value: v})
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACE)
	return lit
}

func (p *Parser) parseIntLit() ast.Expr {
	tok := p.cur
	pos := p.pos()
	p.next()
	return &ast.IntLit{Value: tok.IntValue, Radix: int(tok.Radix), P: pos}
}

func (p *Parser) parseFloatLit() ast.Expr {
	tok := p.cur
	pos := p.pos()
	p.next()
	return &ast.FloatLit{Value: tok.FloatValue, P: pos}
}

func (p *Parser) parseStringLit() ast.Expr {
	tok := p.cur
	pos := p.pos()
	p.next()
	return &ast.StringLit{Value: tok.Lit, Triple: tok.StrKind == lexer.StringTriple, P: pos}
}

func (p *Parser) parseCharLit() ast.Expr {
	tok := p.cur
	pos := p.pos()
	p.next()
	return &ast.CharLit{Value: tok.CharValue, P: pos}
}

func (p *Parser) parseBoolLit() ast.Expr {
	pos := p.pos()
	val := p.curIs(lexer.TRUE)
	p.next()
	return &ast.BoolLit{Value: val, P: pos}
}

func (p *Parser) parseNoneLit() ast.Expr {
	pos := p.pos()
	p.next()
	return &ast.NoneLit{P: pos}
}

// parseParenOrTuple parses `(e)` (a parenthesized expression) or
// `(e1, e2, ...)` (a tuple literal, n >= 2 — spec.md §3).
func (p *Parser) parseParenOrTuple() ast.Expr {
	pos := p.pos()
	p.expect(lexer.LPAREN)
	first := p.parseExpr(LOWEST)
	if !p.curIs(lexer.COMMA) {
		p.expect(lexer.RPAREN)
		return &ast.ParenExpr{X: first, P: pos}
	}
	elems := []ast.Expr{first}
	for p.curIs(lexer.COMMA) {
		p.next()
		if p.curIs(lexer.RPAREN) {
			break
		}
		elems = append(elems, p.parseExpr(LOWEST))
	}
	p.expect(lexer.RPAREN)
	return &ast.TupleExpr{Elems: elems, P: pos}
}

func (p *Parser) parseUnary() ast.Expr {
	pos := p.pos()
	var op ast.UnaryOp
	switch p.cur.Type {
	case lexer.NOT:
		op = ast.UnaryNot
	case lexer.MINUS:
		op = ast.UnaryNeg
	case lexer.TILDE:
		op = ast.UnaryBitNot
	}
	p.next()
	x := p.parseExpr(UNARY)
	return &ast.UnaryExpr{Op: op, X: x, P: pos}
}

// parsePrimitiveCtorOrCast parses a primitive-type keyword used as an
// explicit width cast, `i32(x)` (spec.md §4.5). It is the sole prefix use
// of a primitive keyword; primitive keywords elsewhere only begin a type
// expression, handled by parseType.
func (p *Parser) parsePrimitiveCtorOrCast() ast.Expr {
	pos := p.pos()
	name := p.cur.Lit
	p.next()
	args := p.parseCallArgs()
	var x ast.Expr
	if len(args) > 0 {
		x = args[0]
	}
	return &ast.CastExpr{Type: &ast.NamedType{Name: name, P: pos}, X: x, P: pos}
}
