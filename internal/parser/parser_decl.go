package parser

import (
	"strings"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/lexer"
)

// parseParamList parses `(name: Type, ...)`.
func (p *Parser) parseParamList() []*ast.Param {
	p.expect(lexer.LPAREN)
	var params []*ast.Param
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		pos := p.pos()
		name := p.expect(lexer.IDENT).Lit
		p.expect(lexer.COLON)
		ty := p.parseType()
		params = append(params, &ast.Param{Name: name, Type: ty, P: pos})
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return params
}

// parseGenericParams parses the optional `[T, U, ...]` generic type
// parameter list following `def name`.
func (p *Parser) parseGenericParams() []string {
	if !p.curIs(lexer.LBRACKET) {
		return nil
	}
	p.next()
	var names []string
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		names = append(names, p.expect(lexer.IDENT).Lit)
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	return names
}

// parseFuncDecl parses `def name[Generics](params) -> Ret ... end`.
func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	pos := p.pos()
	p.expect(lexer.DEF)
	name := p.expect(lexer.IDENT).Lit
	generics := p.parseGenericParams()
	params := p.parseParamList()

	var ret ast.TypeExpr
	if p.curIs(lexer.ARROW) {
		p.next()
		ret = p.parseType()
	}

	p.expect(lexer.NEWLINE)
	body := p.parseBlockUntilEnd()
	return &ast.FuncDecl{Name: name, Generics: generics, Params: params, Ret: ret, Body: body, P: pos}
}

// parseBlockUntilEnd parses statements until a top-level `end` keyword,
// which it consumes. Missing `end` is reported once at EOF (spec.md
// §4.3).
func (p *Parser) parseBlockUntilEnd() []ast.Stmt {
	var stmts []ast.Stmt
	p.skipNewlines()
	for !p.curIs(lexer.END) && !p.curIs(lexer.EOF) {
		if s := p.parseStmt(); s != nil {
			stmts = append(stmts, s)
		}
		p.skipNewlines()
	}
	if p.curIs(lexer.EOF) {
		p.sink.Errorf("PAR002", p.pos(), "missing `end` to close block")
		return stmts
	}
	p.next() // consume `end`
	return stmts
}

func (p *Parser) parseClassDecl() *ast.ClassDecl {
	pos := p.pos()
	p.expect(lexer.CLASS)
	name := p.expect(lexer.IDENT).Lit

	var ifaces []string
	if p.curIs(lexer.COLON) {
		p.next()
		ifaces = append(ifaces, p.expect(lexer.IDENT).Lit)
		for p.curIs(lexer.COMMA) {
			p.next()
			ifaces = append(ifaces, p.expect(lexer.IDENT).Lit)
		}
	}
	p.expect(lexer.NEWLINE)

	decl := &ast.ClassDecl{Name: name, Interfaces: ifaces, P: pos}
	p.skipNewlines()
	for !p.curIs(lexer.END) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.DEF) {
			m := p.parseFuncDecl()
			m.IsMethod = true
			m.Receiver = name
			decl.Methods = append(decl.Methods, m)
		} else if p.curIs(lexer.IDENT) {
			fpos := p.pos()
			fname := p.expect(lexer.IDENT).Lit
			p.expect(lexer.COLON)
			ty := p.parseType()
			decl.Fields = append(decl.Fields, &ast.FieldDecl{Name: fname, Type: ty, P: fpos})
			p.expect(lexer.NEWLINE)
		} else {
			p.sink.Errorf("PAR003", p.pos(), "unexpected token %s in class body", p.cur.Type)
			p.next()
		}
		p.skipNewlines()
	}
	if p.curIs(lexer.EOF) {
		p.sink.Errorf("PAR002", p.pos(), "missing `end` to close class %s", name)
	} else {
		p.next()
	}
	return decl
}

func (p *Parser) parseStructDecl() *ast.StructDecl {
	pos := p.pos()
	p.expect(lexer.STRUCT)
	name := p.expect(lexer.IDENT).Lit
	p.expect(lexer.NEWLINE)

	decl := &ast.StructDecl{Name: name, P: pos}
	p.skipNewlines()
	for !p.curIs(lexer.END) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.DEF) {
			m := p.parseFuncDecl()
			m.IsMethod = true
			m.Receiver = name
			decl.Methods = append(decl.Methods, m)
		} else if p.curIs(lexer.IDENT) {
			fpos := p.pos()
			fname := p.expect(lexer.IDENT).Lit
			p.expect(lexer.COLON)
			ty := p.parseType()
			decl.Fields = append(decl.Fields, &ast.FieldDecl{Name: fname, Type: ty, P: fpos})
			p.expect(lexer.NEWLINE)
		} else {
			p.sink.Errorf("PAR003", p.pos(), "unexpected token %s in struct body", p.cur.Type)
			p.next()
		}
		p.skipNewlines()
	}
	if p.curIs(lexer.EOF) {
		p.sink.Errorf("PAR002", p.pos(), "missing `end` to close struct %s", name)
	} else {
		p.next()
	}
	return decl
}

func (p *Parser) parseEnumDecl() *ast.EnumDecl {
	pos := p.pos()
	p.expect(lexer.ENUM)
	name := p.expect(lexer.IDENT).Lit
	p.expect(lexer.NEWLINE)

	decl := &ast.EnumDecl{Name: name, P: pos}
	p.skipNewlines()
	for !p.curIs(lexer.END) && !p.curIs(lexer.EOF) {
		vpos := p.pos()
		vname := p.expect(lexer.IDENT).Lit
		v := &ast.EnumVariant{Name: vname, P: vpos}
		if p.curIs(lexer.ASSIGN) {
			p.next()
			tok := p.expect(lexer.INT)
			v.HasValue = true
			v.Value = tok.IntValue
		}
		decl.Variants = append(decl.Variants, v)
		if p.curIs(lexer.COMMA) {
			p.next()
		}
		p.skipNewlines()
	}
	if p.curIs(lexer.EOF) {
		p.sink.Errorf("PAR002", p.pos(), "missing `end` to close enum %s", name)
	} else {
		p.next()
	}
	return decl
}

func (p *Parser) parseInterfaceDecl() *ast.InterfaceDecl {
	pos := p.pos()
	p.expect(lexer.INTERFACE)
	name := p.expect(lexer.IDENT).Lit
	p.expect(lexer.NEWLINE)

	decl := &ast.InterfaceDecl{Name: name, P: pos}
	p.skipNewlines()
	for !p.curIs(lexer.END) && !p.curIs(lexer.EOF) {
		mpos := p.pos()
		p.expect(lexer.DEF)
		mname := p.expect(lexer.IDENT).Lit
		params := p.parseParamList()
		var ret ast.TypeExpr
		if p.curIs(lexer.ARROW) {
			p.next()
			ret = p.parseType()
		}
		decl.Methods = append(decl.Methods, &ast.InterfaceMethod{Name: mname, Params: params, Ret: ret, P: mpos})
		p.expect(lexer.NEWLINE)
		p.skipNewlines()
	}
	if p.curIs(lexer.EOF) {
		p.sink.Errorf("PAR002", p.pos(), "missing `end` to close interface %s", name)
	} else {
		p.next()
	}
	return decl
}

// parseExternDecl parses one inline `extern name(params) -> Ret = c_name`
// declaration. After the `extern` keyword it has the same shape as a
// `.mutlib` manifest's function line (spec.md §6), so internal/manifest
// reuses this grammar for file-sourced externs too.
func (p *Parser) parseExternDecl() *ast.ExternDecl {
	pos := p.pos()
	p.expect(lexer.EXTERN)
	name := p.expect(lexer.IDENT).Lit
	params := p.parseParamList()
	var ret ast.TypeExpr
	if p.curIs(lexer.ARROW) {
		p.next()
		ret = p.parseType()
	}
	p.expect(lexer.ASSIGN)
	cname := p.expect(lexer.IDENT).Lit
	return &ast.ExternDecl{Name: name, Params: params, Ret: ret, CName: cname, P: pos}
}

// ParseExternLine parses one `name(params) -> Ret = c_name` function line
// from a `.mutlib` manifest's [functions] section (spec.md §6), reusing
// the exact grammar an inline `extern` declaration uses so the two
// stay in lockstep. file/line are carried into reported positions so a
// malformed manifest entry still points at a sensible location.
func ParseExternLine(src, file string, line int, sink *diag.Sink) *ast.ExternDecl {
	l := lexer.New("extern "+src, file, sink)
	p := New(l, file, sink)
	decl := p.parseExternDecl()
	decl.P.Line = line
	decl.P.Col = 1
	return decl
}

// ParseConstLine parses one `name: Type = c_name` line from a `.mutlib`
// manifest's [constants] section (spec.md §6) — the same grammar a
// top-level `const` declares, minus the `const` keyword, so a manifest
// constant and a source-level one resolve identically downstream.
func ParseConstLine(src, file string, line int, sink *diag.Sink) *ast.GlobalVarDecl {
	l := lexer.New(src+"\n", file, sink)
	p := New(l, file, sink)
	decl := p.parseGlobalVarDecl(false)
	decl.IsConst = true
	decl.P.Line = line
	decl.P.Col = 1
	return decl
}

func (p *Parser) parseGlobalVarDecl(isConst bool) *ast.GlobalVarDecl {
	pos := p.pos()
	if isConst {
		p.expect(lexer.CONST)
	}
	name := p.expect(lexer.IDENT).Lit

	decl := &ast.GlobalVarDecl{Name: name, IsConst: isConst, P: pos}
	if p.curIs(lexer.COLON) {
		p.next()
		decl.Type = p.parseType()
		p.expect(lexer.ASSIGN)
		decl.Init = p.parseExpr(LOWEST)
	} else if p.curIs(lexer.COLONEQ) {
		p.next()
		decl.Init = p.parseExpr(LOWEST)
	} else {
		p.sink.Errorf("PAR003", pos, "expected `:` or `:=` in variable declaration")
	}
	p.expect(lexer.NEWLINE)
	return decl
}

// parseImport parses `import a.b.c` or `import a.b.c as X` (spec.md §4.4).
func (p *Parser) parseImport() *ast.ImportDecl {
	pos := p.pos()
	p.expect(lexer.IMPORT)
	var segs []string
	segs = append(segs, p.expect(lexer.IDENT).Lit)
	for p.curIs(lexer.DOT) {
		p.next()
		segs = append(segs, p.expect(lexer.IDENT).Lit)
	}
	path := strings.Join(segs, ".")
	alias := segs[len(segs)-1]
	if p.curIs(lexer.AS) {
		p.next()
		alias = p.expect(lexer.IDENT).Lit
	}
	p.expect(lexer.NEWLINE)
	return &ast.ImportDecl{Path: path, Alias: alias, P: pos}
}
