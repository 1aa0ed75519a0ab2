package check

import (
	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/types"
)

// checkStmts checks a statement list in a fresh child scope. ret is the
// enclosing function's declared return type (nil for void); inLoop lets
// break/continue legality stay a pure parser concern (already enforced
// there) while for/while bodies still need to recurse with inLoop=true
// for any future loop-only rule.
func (c *Checker) checkStmts(body []ast.Stmt, parent *env, ret types.Type, inLoop bool) {
	scope := parent.child()
	for _, s := range body {
		c.checkStmt(s, scope, ret, inLoop)
	}
}

func (c *Checker) checkStmt(s ast.Stmt, env *env, ret types.Type, inLoop bool) {
	switch ss := s.(type) {
	case *ast.VarDecl:
		c.checkVarDecl(ss, env)
	case *ast.AssignStmt:
		c.checkAssignStmt(ss, env)
	case *ast.IfStmt:
		c.checkCond(ss.Cond, env)
		c.checkStmts(ss.Body, env, ret, inLoop)
		for _, elif := range ss.Elifs {
			c.checkCond(elif.Cond, env)
			c.checkStmts(elif.Body, env, ret, inLoop)
		}
		if ss.Else != nil {
			c.checkStmts(ss.Else, env, ret, inLoop)
		}
	case *ast.WhileStmt:
		c.checkCond(ss.Cond, env)
		c.checkStmts(ss.Body, env, ret, true)
	case *ast.ForStmt:
		c.checkForStmt(ss, env, ret)
	case *ast.ReturnStmt:
		c.checkReturnStmt(ss, env, ret)
	case *ast.ExprStmt:
		c.checkExpr(ss.X, env)
	case *ast.BreakStmt, *ast.ContinueStmt:
		// legality already enforced by the parser (PAR004)
	}
}

// checkCond enforces spec.md §4.5's truthiness-context rule: conditions
// in if/elif/while must be exactly `bool`, never an implicit numeric or
// pointer truthiness conversion.
func (c *Checker) checkCond(cond ast.Expr, env *env) {
	t := c.checkExpr(cond, env)
	if t == nil {
		return
	}
	if b, ok := t.(*types.Primitive); !ok || b.Kind != types.Bool {
		c.sink.Errorf(diag.TC004, cond.Position(), "condition must be bool, got %s", t)
	}
}

func (c *Checker) checkVarDecl(d *ast.VarDecl, env *env) {
	initType := c.checkExpr(d.Init, env)

	if len(d.Names) == 2 {
		tup, ok := initType.(*types.Tuple)
		if !ok || len(tup.Elems) != 2 {
			c.sink.Errorf(diag.TC010, d.P, "destructuring assignment requires a 2-tuple, got %v", initType)
			env.define(d.Names[0], nil, d.IsConst)
			env.define(d.Names[1], nil, d.IsConst)
			return
		}
		env.define(d.Names[0], tup.Elems[0], d.IsConst)
		env.define(d.Names[1], tup.Elems[1], d.IsConst)
		return
	}

	declared := c.resolveType(d.Type)
	if declared != nil && initType != nil && !assignable(declared, initType) {
		c.sink.Errorf(diag.TC001, d.P, "cannot initialize %q of type %s with value of type %s", d.Names[0], declared, initType)
	}
	if declared == nil {
		declared = initType
	}
	env.define(d.Names[0], declared, d.IsConst)
}

func (c *Checker) checkAssignStmt(s *ast.AssignStmt, env *env) {
	if id, ok := s.Target.(*ast.Ident); ok {
		if b, found := env.lookup(id.Name); found && b.isConst {
			c.sink.Errorf(diag.TC008, s.P, "cannot assign to const %q", id.Name)
		}
	}
	targetType := c.checkExpr(s.Target, env)
	valueType := c.checkExpr(s.Value, env)
	if targetType == nil || valueType == nil {
		return
	}
	if s.Op == ast.AssignSet {
		if !assignable(targetType, valueType) {
			c.sink.Errorf(diag.TC001, s.P, "cannot assign value of type %s to target of type %s", valueType, targetType)
		}
		return
	}
	// Compound ops (+=, -=, *=, /=, %=) require the same numeric-width
	// rule as the corresponding binary operator, with the string `+=`
	// exception (spec.md §4.5).
	if isStr(targetType) && isStr(valueType) && s.Op == ast.AssignAdd {
		return
	}
	if !sameNumericWidth(targetType, valueType) {
		c.sink.Errorf(diag.TC002, s.P, "compound assignment requires matching numeric types, got %s and %s", targetType, valueType)
	}
}

func (c *Checker) checkForStmt(s *ast.ForStmt, env *env, ret types.Type) {
	scope := env.child()
	varType := c.resolveType(s.VarType)

	switch {
	case s.RangeLo != nil:
		lo := c.checkExpr(s.RangeLo, env)
		hi := c.checkExpr(s.RangeHi, env)
		if lo != nil && !isInteger(lo) {
			c.sink.Errorf(diag.TC001, s.P, "for-range bounds must be integer, got %s", lo)
		}
		if hi != nil && !isInteger(hi) {
			c.sink.Errorf(diag.TC001, s.P, "for-range bounds must be integer, got %s", hi)
		}
	case s.Iterable != nil:
		it := c.checkExpr(s.Iterable, env)
		switch itt := it.(type) {
		case *types.List:
			if varType != nil && !assignable(varType, itt.Elem) {
				c.sink.Errorf(diag.TC001, s.P, "loop variable type %s does not match list element type %s", varType, itt.Elem)
			}
		case *types.Dict:
			if varType != nil && !assignable(varType, itt.Key) {
				c.sink.Errorf(diag.TC001, s.P, "loop variable type %s does not match dict key type %s", varType, itt.Key)
			}
		case nil:
		default:
			c.sink.Errorf(diag.TC001, s.P, "for loop requires a List or Dict iterable, got %s", it)
		}
	}

	scope.define(s.VarName, varType, false)
	for _, stmt := range s.Body {
		c.checkStmt(stmt, scope, ret, true)
	}
}

func (c *Checker) checkReturnStmt(s *ast.ReturnStmt, env *env, ret types.Type) {
	if s.Value == nil {
		if ret != nil {
			if _, isVoid := ret.(*types.Void); !isVoid {
				c.sink.Errorf(diag.TC001, s.P, "missing return value, function returns %s", ret)
			}
		}
		return
	}
	got := c.checkExpr(s.Value, env)
	if ret == nil || got == nil {
		return
	}
	if !assignable(ret, got) {
		c.sink.Errorf(diag.TC001, s.P, "return type mismatch: function returns %s, got %s", ret, got)
	}
}
