package emit

import (
	"fmt"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/types"
)

// writeBody emits fn's statement list as a top-level function/method/init
// body: a fresh root scope frame tracks every reference-kind local
// declared directly in it, released at the closing brace (spec.md §4.6).
func (fw *funcWriter) writeBody(body []ast.Stmt) {
	fw.pushScope(false)
	fw.writeStmts(body)
	fw.popScope()
}

func (fw *funcWriter) writeStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		fw.writeStmt(s)
	}
}

func (fw *funcWriter) writeStmt(s ast.Stmt) {
	switch ss := s.(type) {
	case *ast.VarDecl:
		fw.writeVarDecl(ss)
	case *ast.AssignStmt:
		fw.writeAssignStmt(ss)
	case *ast.IfStmt:
		fw.writeIfStmt(ss)
	case *ast.WhileStmt:
		fw.writeWhileStmt(ss)
	case *ast.ForStmt:
		fw.writeForStmt(ss)
	case *ast.BreakStmt:
		fw.releaseUpTo(fw.nearestLoopFrame())
		fw.w.line("break;")
	case *ast.ContinueStmt:
		fw.releaseUpTo(fw.nearestLoopFrame())
		fw.w.line("continue;")
	case *ast.ReturnStmt:
		fw.writeReturnStmt(ss)
	case *ast.ExprStmt:
		fw.w.linef("(void)(%s);", fw.emitExpr(ss.X))
	}
}

// writeVarDecl binds one or two names (the destructuring `a, b := tuple`
// form) to freshly evaluated values. A reference-kind binding is retained
// unless its initializer already produced a fresh, uniquely-owned value
// (a constructor call or a container literal) — see isFreshValue.
func (fw *funcWriter) writeVarDecl(d *ast.VarDecl) {
	init := fw.emitExpr(d.Init)
	if len(d.Names) > 1 {
		tt, ok := fw.e.chk.ExprType(d.Init, fw.env).(*types.Tuple)
		if !ok {
			return
		}
		fw.e.useTuple(tt)
		tmp := fw.newTemp()
		fw.w.linef("%s %s = %s;", tupleType(tupleTag(tt)), tmp, init)
		for i, name := range d.Names {
			et := tt.Elems[i]
			cname := sanitizeCIdent(name)
			fw.w.linef("%s %s = %s.f%d;", fw.e.cType(et), cname, tmp, i)
			if isRefKind(et) {
				fw.w.linef("bismut_retain((void*)%s);", cname)
			}
			fw.env.Define(name, et, false)
			fw.declareLocal(cname, et)
		}
		return
	}

	name := d.Names[0]
	var t types.Type
	if d.Type != nil {
		t = fw.e.chk.ResolveType(d.Type)
	} else {
		t = fw.e.chk.ExprType(d.Init, fw.env)
	}
	cname := sanitizeCIdent(name)
	fw.w.linef("%s %s = %s;", fw.e.cType(t), cname, init)
	if isRefKind(t) && !fw.isFreshValue(d.Init) {
		fw.w.linef("bismut_retain((void*)%s);", cname)
	}
	fw.env.Define(name, t, d.IsConst)
	fw.declareLocal(cname, t)
}

// writeAssignStmt implements spec.md §4.6's alias-safe reference-kind
// assignment: compute the new value, retain it (unless freshly
// constructed), release the old value, then store — so an assignment
// that aliases its own current value (`x = x`) never drops to zero
// between the release and the store.
func (fw *funcWriter) writeAssignStmt(a *ast.AssignStmt) {
	targetType := fw.e.chk.ExprType(a.Target, fw.env)
	targetC := fw.emitExpr(a.Target)

	var rhs string
	if a.Op == ast.AssignSet {
		rhs = fw.emitExpr(a.Value)
	} else {
		sym, _ := cBinOp(compoundToBinary(a.Op))
		if _, isStr := targetType.(*types.Str); isStr && compoundToBinary(a.Op) == ast.BinAdd {
			rhs = fmt.Sprintf("bismut_str_concat(%s, %s)", targetC, fw.emitExpr(a.Value))
		} else {
			rhs = fmt.Sprintf("(%s %s (%s))", targetC, sym, fw.emitExpr(a.Value))
		}
	}

	if !isRefKind(targetType) {
		fw.writeLvalueStore(a.Target, rhs)
		return
	}

	tmp := fw.newTemp()
	fw.w.linef("%s %s = %s;", fw.e.cType(targetType), tmp, rhs)
	// Compound ref-kind assignment only applies to str += str, whose
	// bismut_str_concat result is already a fresh rc=1 allocation.
	if a.Op == ast.AssignSet && !fw.isFreshValue(a.Value) {
		fw.w.linef("bismut_retain((void*)%s);", tmp)
	}
	fw.w.linef("bismut_release((void*)%s, bismut_%s_dtor);", targetC, refDtorName(targetType))
	fw.writeLvalueStore(a.Target, tmp)
}

func compoundToBinary(op ast.AssignOp) ast.BinaryOp {
	switch op {
	case ast.AssignAdd:
		return ast.BinAdd
	case ast.AssignSub:
		return ast.BinSub
	case ast.AssignMul:
		return ast.BinMul
	case ast.AssignDiv:
		return ast.BinDiv
	case ast.AssignMod:
		return ast.BinMod
	}
	return ast.BinAdd
}

func (fw *funcWriter) writeLvalueStore(target ast.Expr, valueC string) {
	switch t := target.(type) {
	case *ast.Ident:
		fw.w.linef("%s = %s;", fw.emitIdent(t), valueC)
	case *ast.MemberExpr:
		fw.w.linef("%s = %s;", fw.emitMemberExpr(t), valueC)
	case *ast.IndexExpr:
		xt := fw.e.chk.ExprType(t.X, fw.env)
		x := fw.emitExpr(t.X)
		idx := fw.emitExpr(t.Index)
		switch ct := xt.(type) {
		case *types.List:
			fw.w.linef("bismut_List_%s_set(%s, %s, %s);", tag(ct.Elem), x, idx, valueC)
		case *types.Dict:
			fw.w.linef("bismut_Dict_%s_%s_set(%s, %s, %s);", tag(ct.Key), tag(ct.Val), x, idx, valueC)
		}
	}
}

func (fw *funcWriter) writeIfStmt(s *ast.IfStmt) {
	fw.w.linef("if (%s) {", fw.emitExpr(s.Cond))
	fw.w.in()
	fw.pushScope(false)
	fw.writeStmts(s.Body)
	fw.popScope()
	fw.w.out()
	for _, el := range s.Elifs {
		fw.w.linef("} else if (%s) {", fw.emitExpr(el.Cond))
		fw.w.in()
		fw.pushScope(false)
		fw.writeStmts(el.Body)
		fw.popScope()
		fw.w.out()
	}
	if s.Else != nil {
		fw.w.line("} else {")
		fw.w.in()
		fw.pushScope(false)
		fw.writeStmts(s.Else)
		fw.popScope()
		fw.w.out()
	}
	fw.w.line("}")
}

func (fw *funcWriter) writeWhileStmt(s *ast.WhileStmt) {
	fw.w.linef("while (%s) {", fw.emitExpr(s.Cond))
	fw.w.in()
	fw.pushScope(true)
	fw.writeStmts(s.Body)
	fw.popScope()
	fw.w.out()
	fw.w.line("}")
}

// writeForStmt lowers all three `for` forms (spec.md §3) to a C `for`
// loop over an index, a list, or a dict's occupied slots.
func (fw *funcWriter) writeForStmt(s *ast.ForStmt) {
	varType := fw.e.chk.ResolveType(s.VarType)
	cvar := sanitizeCIdent(s.VarName)

	switch s.Kind {
	case ast.ForRange:
		lo := fw.emitExpr(s.RangeLo)
		hi := fw.emitExpr(s.RangeHi)
		fw.w.linef("for (%s %s = %s; %s < %s; %s++) {", fw.e.cType(varType), cvar, lo, cvar, hi, cvar)
		fw.w.in()
		fw.pushScope(true)
		fw.env.Define(s.VarName, varType, false)
		fw.writeStmts(s.Body)
		fw.popScope()
		fw.w.out()
		fw.w.line("}")

	case ast.ForList:
		it := fw.e.chk.ExprType(s.Iterable, fw.env).(*types.List)
		lst := fw.emitExpr(s.Iterable)
		idx := fw.newTemp()
		fw.w.linef("for (size_t %s = 0; %s < %s->len; %s++) {", idx, idx, lst, idx)
		fw.w.in()
		fw.w.linef("%s %s = %s->data[%s];", fw.e.cType(it.Elem), cvar, lst, idx)
		fw.pushScope(true)
		fw.env.Define(s.VarName, it.Elem, false)
		fw.writeStmts(s.Body)
		fw.popScope()
		fw.w.out()
		fw.w.line("}")

	case ast.ForDictKeys:
		dt := fw.e.chk.ExprType(s.Iterable, fw.env).(*types.Dict)
		dct := fw.emitExpr(s.Iterable)
		idx := fw.newTemp()
		fw.w.linef("for (size_t %s = 0; %s < %s->cap; %s++) {", idx, idx, dct, idx)
		fw.w.in()
		fw.w.linef("if (!%s->used[%s]) continue;", dct, idx)
		fw.w.linef("%s %s = %s->keys[%s];", fw.e.cType(dt.Key), cvar, dct, idx)
		fw.pushScope(true)
		fw.env.Define(s.VarName, dt.Key, false)
		fw.writeStmts(s.Body)
		fw.popScope()
		fw.w.out()
		fw.w.line("}")
	}
}

// writeReturnStmt materializes the return value to a temporary (retaining
// it first, if reference-kind, so releasing the enclosing scopes can
// never drop it to zero before it's handed back), releases every
// enclosing scope's locals, then returns the temporary (spec.md §4.6).
func (fw *funcWriter) writeReturnStmt(s *ast.ReturnStmt) {
	if s.Value == nil {
		fw.releaseUpTo(0)
		fw.w.line("return;")
		return
	}
	t := fw.e.chk.ExprType(s.Value, fw.env)
	val := fw.emitExpr(s.Value)
	tmp := fw.newTemp()
	fw.w.linef("%s %s = %s;", fw.e.cType(t), tmp, val)
	if isRefKind(t) && !fw.isFreshValue(s.Value) {
		fw.w.linef("bismut_retain((void*)%s);", tmp)
	}
	fw.releaseUpTo(0)
	fw.w.linef("return %s;", tmp)
}
