package parser

import (
	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/lexer"
)

// parseStmt parses one statement and consumes its trailing NEWLINE (or
// leaves EOF/END for the caller to notice). Returns nil for a stray
// terminator line.
func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Type {
	case lexer.NEWLINE:
		p.next()
		return nil
	case lexer.CONST:
		return p.parseVarDeclStmt(true)
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.BREAK:
		return p.parseBreakStmt()
	case lexer.CONTINUE:
		return p.parseContinueStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.IDENT:
		return p.parseIdentLedStmt()
	default:
		return p.parseExprStmt()
	}
}

// parseIdentLedStmt disambiguates `name := expr`, `name, name2 := expr`,
// `name : Type = expr`, `lvalue op= expr`, and a bare expression
// statement — all of which start with an identifier.
func (p *Parser) parseIdentLedStmt() ast.Stmt {
	pos := p.pos()

	if p.peekIs(lexer.COMMA) {
		return p.parseDestructureDecl(pos)
	}
	if p.peekIs(lexer.COLONEQ) {
		return p.parseVarDeclStmt(false)
	}
	if p.peekIs(lexer.COLON) {
		return p.parseVarDeclStmt(false)
	}

	expr := p.parseExpr(LOWEST)
	if op, ok := assignOpFor(p.cur.Type); ok {
		p.next()
		value := p.parseExpr(LOWEST)
		p.expect(lexer.NEWLINE)
		return &ast.AssignStmt{Target: expr, Op: op, Value: value, P: pos}
	}
	p.expect(lexer.NEWLINE)
	return &ast.ExprStmt{X: expr, P: pos}
}

func assignOpFor(tt lexer.TokenType) (ast.AssignOp, bool) {
	switch tt {
	case lexer.ASSIGN:
		return ast.AssignSet, true
	case lexer.PLUSEQ:
		return ast.AssignAdd, true
	case lexer.MINUSEQ:
		return ast.AssignSub, true
	case lexer.STAREQ:
		return ast.AssignMul, true
	case lexer.SLASHEQ:
		return ast.AssignDiv, true
	case lexer.PERCENTEQ:
		return ast.AssignMod, true
	default:
		return 0, false
	}
}

// parseDestructureDecl parses the two-name tuple-destructuring form
// `a, b := expr` (spec.md §4.3: exactly two bindings, arity-2 tuple RHS).
func (p *Parser) parseDestructureDecl(pos ast.Pos) *ast.VarDecl {
	names := []string{p.expect(lexer.IDENT).Lit}
	for p.curIs(lexer.COMMA) {
		p.next()
		names = append(names, p.expect(lexer.IDENT).Lit)
	}
	p.expect(lexer.COLONEQ)
	init := p.parseExpr(LOWEST)
	p.expect(lexer.NEWLINE)
	if len(names) != 2 {
		p.sink.Errorf("PAR005", pos, "destructuring assignment requires exactly two names, got %d", len(names))
	}
	return &ast.VarDecl{Names: names, Init: init, P: pos}
}

// parseVarDeclStmt parses `name := expr`, `name : Type = expr`, and
// `const name := expr` / `const name : Type = expr`.
func (p *Parser) parseVarDeclStmt(isConst bool) *ast.VarDecl {
	pos := p.pos()
	if isConst {
		p.expect(lexer.CONST)
	}
	name := p.expect(lexer.IDENT).Lit

	decl := &ast.VarDecl{Names: []string{name}, IsConst: isConst, P: pos}
	switch {
	case p.curIs(lexer.COLONEQ):
		p.next()
		decl.Init = p.parseExpr(LOWEST)
	case p.curIs(lexer.COLON):
		p.next()
		decl.Type = p.parseType()
		p.expect(lexer.ASSIGN)
		decl.Init = p.parseExpr(LOWEST)
	default:
		p.sink.Errorf("PAR003", pos, "expected `:=` or `:` after identifier %q in declaration", name)
	}
	p.expect(lexer.NEWLINE)
	return decl
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	pos := p.pos()
	p.expect(lexer.IF)
	cond := p.parseExpr(LOWEST)
	p.expect(lexer.NEWLINE)

	stmt := &ast.IfStmt{Cond: cond, P: pos}
	stmt.Body = p.parseBlockUntilEndOrElse()

	for p.curIs(lexer.ELIF) {
		p.next()
		econd := p.parseExpr(LOWEST)
		p.expect(lexer.NEWLINE)
		ebody := p.parseBlockUntilEndOrElse()
		stmt.Elifs = append(stmt.Elifs, ast.ElifClause{Cond: econd, Body: ebody})
	}
	if p.curIs(lexer.ELSE) {
		p.next()
		p.expect(lexer.NEWLINE)
		stmt.Else = p.parseBlockUntilEnd()
		return stmt
	}
	// parseBlockUntilEndOrElse already consumed `end` if that's what closed
	// the last clause; nothing further to do.
	return stmt
}

// parseBlockUntilEndOrElse parses statements until `end`, `elif`, or
// `else`. It consumes a closing `end` but leaves `elif`/`else` for the
// caller.
func (p *Parser) parseBlockUntilEndOrElse() []ast.Stmt {
	var stmts []ast.Stmt
	p.skipNewlines()
	for !p.curIs(lexer.END) && !p.curIs(lexer.ELIF) && !p.curIs(lexer.ELSE) && !p.curIs(lexer.EOF) {
		if s := p.parseStmt(); s != nil {
			stmts = append(stmts, s)
		}
		p.skipNewlines()
	}
	if p.curIs(lexer.END) {
		p.next()
	} else if p.curIs(lexer.EOF) {
		p.sink.Errorf("PAR002", p.pos(), "missing `end` to close if statement")
	}
	return stmts
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	pos := p.pos()
	p.expect(lexer.WHILE)
	cond := p.parseExpr(LOWEST)
	p.expect(lexer.NEWLINE)
	p.loopDepth++
	body := p.parseBlockUntilEnd()
	p.loopDepth--
	return &ast.WhileStmt{Cond: cond, Body: body, P: pos}
}

// parseForStmt parses the three `for` forms (spec.md §3): a `lo..hi`
// range, a `List[T]` iterable, or a `Dict[K,V]` keys iterable. The kind
// is disambiguated by downstream type checking; the parser only
// distinguishes the range-literal shorthand from a general iterable
// expression.
func (p *Parser) parseForStmt() *ast.ForStmt {
	pos := p.pos()
	p.expect(lexer.FOR)
	varName := p.expect(lexer.IDENT).Lit
	p.expect(lexer.COLON)
	varType := p.parseType()
	p.expect(lexer.IN)

	stmt := &ast.ForStmt{VarName: varName, VarType: varType, P: pos}

	lo := p.parseExpr(LOWEST)
	if p.curIs(lexer.DOT) && p.peekIs(lexer.DOT) {
		p.next()
		p.next()
		hi := p.parseExpr(LOWEST)
		stmt.Kind = ast.ForRange
		stmt.RangeLo = lo
		stmt.RangeHi = hi
	} else {
		// List vs Dict-keys iteration can't be told apart syntactically;
		// the type checker refines Kind once the iterable's type is known.
		stmt.Kind = ast.ForList
		stmt.Iterable = lo
	}
	p.expect(lexer.NEWLINE)

	p.loopDepth++
	stmt.Body = p.parseBlockUntilEnd()
	p.loopDepth--
	return stmt
}

func (p *Parser) parseBreakStmt() *ast.BreakStmt {
	pos := p.pos()
	p.expect(lexer.BREAK)
	if p.loopDepth == 0 {
		p.sink.Errorf("PAR004", pos, "break outside of loop")
	}
	p.expect(lexer.NEWLINE)
	return &ast.BreakStmt{P: pos}
}

func (p *Parser) parseContinueStmt() *ast.ContinueStmt {
	pos := p.pos()
	p.expect(lexer.CONTINUE)
	if p.loopDepth == 0 {
		p.sink.Errorf("PAR004", pos, "continue outside of loop")
	}
	p.expect(lexer.NEWLINE)
	return &ast.ContinueStmt{P: pos}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	pos := p.pos()
	p.expect(lexer.RETURN)
	stmt := &ast.ReturnStmt{P: pos}
	if !p.curIs(lexer.NEWLINE) && !p.curIs(lexer.EOF) && !p.curIs(lexer.END) {
		stmt.Value = p.parseExpr(LOWEST)
	}
	p.expect(lexer.NEWLINE)
	return stmt
}

func (p *Parser) parseExprStmt() ast.Stmt {
	pos := p.pos()
	if p.curIs(lexer.END) || p.curIs(lexer.EOF) {
		return nil
	}
	expr := p.parseExpr(LOWEST)
	p.expect(lexer.NEWLINE)
	return &ast.ExprStmt{X: expr, P: pos}
}
