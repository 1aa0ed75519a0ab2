package resolve

import (
	"strings"

	"github.com/bismut-lang/bismut/internal/ast"
)

// rewriteDecl rewrites every type annotation and expression inside d so
// references to another module's declarations (`alias.Name`,
// `alias.EnumName.VARIANT`) become the single mangled identifier the
// merge step already renamed the target declaration to.
func rewriteDecl(d ast.Decl, alias string, mangled map[string]string) {
	switch dd := d.(type) {
	case *ast.FuncDecl:
		rewriteParams(dd.Params, mangled)
		dd.Ret = rewriteType(dd.Ret, mangled)
		rewriteStmts(dd.Body, mangled)
	case *ast.ClassDecl:
		for _, f := range dd.Fields {
			f.Type = rewriteType(f.Type, mangled)
		}
		for _, m := range dd.Methods {
			rewriteDecl(m, alias, mangled)
		}
	case *ast.StructDecl:
		for _, f := range dd.Fields {
			f.Type = rewriteType(f.Type, mangled)
		}
		for _, m := range dd.Methods {
			rewriteDecl(m, alias, mangled)
		}
	case *ast.InterfaceDecl:
		for _, m := range dd.Methods {
			rewriteParams(m.Params, mangled)
			m.Ret = rewriteType(m.Ret, mangled)
		}
	case *ast.GlobalVarDecl:
		dd.Type = rewriteType(dd.Type, mangled)
		dd.Init = rewriteExpr(dd.Init, mangled)
	case *ast.ExternDecl:
		rewriteParams(dd.Params, mangled)
		dd.Ret = rewriteType(dd.Ret, mangled)
	}
}

func rewriteParams(params []*ast.Param, mangled map[string]string) {
	for _, p := range params {
		p.Type = rewriteType(p.Type, mangled)
	}
}

// rewriteType rewrites a dotted NamedType (`alias.ClassName`) to its
// mangled form and recurses into compound type shapes. Returns t
// unchanged (including nil) otherwise.
func rewriteType(t ast.TypeExpr, mangled map[string]string) ast.TypeExpr {
	switch tt := t.(type) {
	case nil:
		return nil
	case *ast.NamedType:
		if m, ok := mangled[tt.Name]; ok {
			return &ast.NamedType{Name: m, P: tt.P}
		}
		return tt
	case *ast.ListType:
		tt.Elem = rewriteType(tt.Elem, mangled)
		return tt
	case *ast.DictType:
		tt.Key = rewriteType(tt.Key, mangled)
		tt.Val = rewriteType(tt.Val, mangled)
		return tt
	case *ast.TupleType:
		for i := range tt.Elems {
			tt.Elems[i] = rewriteType(tt.Elems[i], mangled)
		}
		return tt
	case *ast.FnPtrType:
		for i := range tt.Params {
			tt.Params[i] = rewriteType(tt.Params[i], mangled)
		}
		tt.Ret = rewriteType(tt.Ret, mangled)
		return tt
	case *ast.GenericInstType:
		for i := range tt.Args {
			tt.Args[i] = rewriteType(tt.Args[i], mangled)
		}
		return tt
	default:
		return t
	}
}

func rewriteStmts(stmts []ast.Stmt, mangled map[string]string) {
	for _, s := range stmts {
		rewriteStmt(s, mangled)
	}
}

func rewriteStmt(s ast.Stmt, mangled map[string]string) {
	switch ss := s.(type) {
	case *ast.VarDecl:
		ss.Type = rewriteType(ss.Type, mangled)
		ss.Init = rewriteExpr(ss.Init, mangled)
	case *ast.AssignStmt:
		ss.Target = rewriteExpr(ss.Target, mangled)
		ss.Value = rewriteExpr(ss.Value, mangled)
	case *ast.IfStmt:
		ss.Cond = rewriteExpr(ss.Cond, mangled)
		rewriteStmts(ss.Body, mangled)
		for i := range ss.Elifs {
			ss.Elifs[i].Cond = rewriteExpr(ss.Elifs[i].Cond, mangled)
			rewriteStmts(ss.Elifs[i].Body, mangled)
		}
		rewriteStmts(ss.Else, mangled)
	case *ast.WhileStmt:
		ss.Cond = rewriteExpr(ss.Cond, mangled)
		rewriteStmts(ss.Body, mangled)
	case *ast.ForStmt:
		ss.VarType = rewriteType(ss.VarType, mangled)
		ss.Iterable = rewriteExpr(ss.Iterable, mangled)
		ss.RangeLo = rewriteExpr(ss.RangeLo, mangled)
		ss.RangeHi = rewriteExpr(ss.RangeHi, mangled)
		rewriteStmts(ss.Body, mangled)
	case *ast.ReturnStmt:
		ss.Value = rewriteExpr(ss.Value, mangled)
	case *ast.ExprStmt:
		ss.X = rewriteExpr(ss.X, mangled)
	}
}

// rewriteExpr rewrites e in place (returning the possibly-replaced root)
// so a fully-qualified `alias.Name[.Variant]` chain collapses to the
// single mangled Ident the merge step assigned the target declaration,
// and otherwise recurses into every sub-expression position.
func rewriteExpr(e ast.Expr, mangled map[string]string) ast.Expr {
	if e == nil {
		return nil
	}
	if chain, ok := flattenChain(e); ok {
		if replaced, ok := rewriteChain(chain, mangled); ok {
			return replaced
		}
	}

	switch ee := e.(type) {
	case *ast.MemberExpr:
		ee.X = rewriteExpr(ee.X, mangled)
		return ee
	case *ast.IndexExpr:
		ee.X = rewriteExpr(ee.X, mangled)
		ee.Index = rewriteExpr(ee.Index, mangled)
		return ee
	case *ast.CallExpr:
		ee.Fn = rewriteExpr(ee.Fn, mangled)
		for i := range ee.Args {
			ee.Args[i] = rewriteExpr(ee.Args[i], mangled)
		}
		return ee
	case *ast.GenericCallExpr:
		for i := range ee.TypeArgs {
			ee.TypeArgs[i] = rewriteType(ee.TypeArgs[i], mangled)
		}
		for i := range ee.Args {
			ee.Args[i] = rewriteExpr(ee.Args[i], mangled)
		}
		return ee
	case *ast.UnaryExpr:
		ee.X = rewriteExpr(ee.X, mangled)
		return ee
	case *ast.BinaryExpr:
		ee.Left = rewriteExpr(ee.Left, mangled)
		ee.Right = rewriteExpr(ee.Right, mangled)
		return ee
	case *ast.IsExpr:
		ee.X = rewriteExpr(ee.X, mangled)
		ee.Type = rewriteType(ee.Type, mangled)
		return ee
	case *ast.AsExpr:
		ee.X = rewriteExpr(ee.X, mangled)
		ee.Type = rewriteType(ee.Type, mangled)
		return ee
	case *ast.CastExpr:
		ee.Type = rewriteType(ee.Type, mangled)
		ee.X = rewriteExpr(ee.X, mangled)
		return ee
	case *ast.TupleExpr:
		for i := range ee.Elems {
			ee.Elems[i] = rewriteExpr(ee.Elems[i], mangled)
		}
		return ee
	case *ast.ListLitExpr:
		ee.Elem = rewriteType(ee.Elem, mangled)
		for i := range ee.Elements {
			ee.Elements[i] = rewriteExpr(ee.Elements[i], mangled)
		}
		return ee
	case *ast.DictLitExpr:
		ee.Key = rewriteType(ee.Key, mangled)
		ee.Val = rewriteType(ee.Val, mangled)
		for i := range ee.Entries {
			ee.Entries[i].Key = rewriteExpr(ee.Entries[i].Key, mangled)
			ee.Entries[i].Value = rewriteExpr(ee.Entries[i].Value, mangled)
		}
		return ee
	case *ast.ParenExpr:
		ee.X = rewriteExpr(ee.X, mangled)
		return ee
	default:
		// Ident and the literal kinds carry no sub-expressions to rewrite.
		return e
	}
}

// flattenChain walks a left-nested MemberExpr chain down to its base
// Ident, returning the dotted segment list in source order
// (["alias", "Name", "VARIANT"]) when every link is a plain field-style
// MemberExpr; ok is false for anything else (a call, index, or other
// expression kind anywhere in the chain).
func flattenChain(e ast.Expr) ([]string, bool) {
	var segs []string
	for {
		switch ee := e.(type) {
		case *ast.Ident:
			segs = append([]string{ee.Name}, segs...)
			return segs, true
		case *ast.MemberExpr:
			segs = append([]string{ee.Name}, segs...)
			e = ee.X
		default:
			return nil, false
		}
	}
}

// rewriteChain tries progressively shorter prefixes of chain against
// mangled, rebuilding any unmatched suffix as MemberExprs on top of the
// replacement Ident.
func rewriteChain(chain []string, mangled map[string]string) (ast.Expr, bool) {
	for length := len(chain); length >= 2; length-- {
		key := strings.Join(chain[:length], ".")
		if name, ok := mangled[key]; ok {
			var result ast.Expr = &ast.Ident{Name: name}
			for _, seg := range chain[length:] {
				result = &ast.MemberExpr{X: result, Name: seg}
			}
			return result, true
		}
	}
	return nil, false
}
