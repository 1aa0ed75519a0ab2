package parser

import (
	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/lexer"
)

// parseType parses a type expression: a primitive keyword, a bare name
// (class/struct/enum/interface/generic parameter), `List[T]`, `Dict[K,V]`,
// a tuple type `(T1, T2, ...)`, or a function-pointer type
// `(params) -> Ret`.
func (p *Parser) parseType() ast.TypeExpr {
	pos := p.pos()

	if lexer.IsPrimitiveType(p.cur.Type) {
		name := p.cur.Lit
		p.next()
		return &ast.NamedType{Name: name, P: pos}
	}

	if p.curIs(lexer.IDENT) {
		name := p.cur.Lit
		p.next()
		// A dotted name (`alias.ClassName`) references a declaration from
		// an imported module; resolve mangles it to `alias__ClassName`
		// once the import graph is known (spec.md §4.4).
		if p.curIs(lexer.DOT) && p.peekIs(lexer.IDENT) {
			p.next()
			name = name + "." + p.cur.Lit
			p.next()
		}
		if name == "List" && p.curIs(lexer.LBRACKET) {
			p.next()
			elem := p.parseType()
			p.expect(lexer.RBRACKET)
			return &ast.ListType{Elem: elem, P: pos}
		}
		if name == "Dict" && p.curIs(lexer.LBRACKET) {
			p.next()
			key := p.parseType()
			p.expect(lexer.COMMA)
			val := p.parseType()
			p.expect(lexer.RBRACKET)
			return &ast.DictType{Key: key, Val: val, P: pos}
		}
		if p.curIs(lexer.LBRACKET) {
			p.next()
			var args []ast.TypeExpr
			for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
				args = append(args, p.parseType())
				if p.curIs(lexer.COMMA) {
					p.next()
				} else {
					break
				}
			}
			p.expect(lexer.RBRACKET)
			return &ast.GenericInstType{Name: name, Args: args, P: pos}
		}
		return &ast.NamedType{Name: name, P: pos}
	}

	if p.curIs(lexer.LPAREN) {
		p.next()
		var elems []ast.TypeExpr
		for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
			elems = append(elems, p.parseType())
			if p.curIs(lexer.COMMA) {
				p.next()
			} else {
				break
			}
		}
		p.expect(lexer.RPAREN)
		if p.curIs(lexer.ARROW) {
			p.next()
			ret := p.parseType()
			return &ast.FnPtrType{Params: elems, Ret: ret, P: pos}
		}
		if len(elems) < 2 {
			p.sink.Errorf("PAR003", pos, "tuple type requires at least two elements")
		}
		return &ast.TupleType{Elems: elems, P: pos}
	}

	p.sink.Errorf("PAR003", pos, "expected a type, found %s %q", p.cur.Type, p.cur.Lit)
	p.next()
	return &ast.NamedType{Name: "<error>", P: pos}
}
