package check

import (
	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/types"
)

func isInteger(t types.Type) bool { p, ok := t.(*types.Primitive); return ok && p.IsInteger() }
func isFloat(t types.Type) bool   { p, ok := t.(*types.Primitive); return ok && p.IsFloat() }
func isNumeric(t types.Type) bool { return isInteger(t) || isFloat(t) }
func isStr(t types.Type) bool     { _, ok := t.(*types.Str); return ok }
func isBool(t types.Type) bool    { p, ok := t.(*types.Primitive); return ok && p.Kind == types.Bool }

// sameNumericWidth is spec.md §4.5's rule for binary arithmetic: both
// operands must be the identical primitive type — Bismut never inserts
// an implicit widening conversion between e.g. i32 and i64.
func sameNumericWidth(a, b types.Type) bool {
	return isNumeric(a) && isNumeric(b) && a.Equals(b)
}

// checkExpr type-checks e and returns its resolved type, or nil once a
// diagnostic has already been reported for it (so callers don't cascade
// a second error off the same bad expression).
func (c *Checker) checkExpr(e ast.Expr, env *env) types.Type {
	if e == nil {
		return nil
	}
	switch ee := e.(type) {
	case *ast.IntLit:
		return c.interner.Intern(&types.Primitive{Kind: types.I64})
	case *ast.FloatLit:
		return c.interner.Intern(&types.Primitive{Kind: types.F64})
	case *ast.StringLit:
		c.stringLiterals[ee.Value] = true
		return c.interner.Intern(&types.Str{})
	case *ast.CharLit:
		return c.interner.Intern(&types.Primitive{Kind: types.I64})
	case *ast.BoolLit:
		return c.interner.Intern(&types.Primitive{Kind: types.Bool})
	case *ast.NoneLit:
		return &types.NoneType{}
	case *ast.Ident:
		return c.checkIdent(ee, env)
	case *ast.MemberExpr:
		return c.checkMemberExpr(ee, env)
	case *ast.IndexExpr:
		return c.checkIndexExpr(ee, env)
	case *ast.CallExpr:
		return c.checkCallExpr(ee, env)
	case *ast.GenericCallExpr:
		return c.checkGenericCallExpr(ee, env)
	case *ast.UnaryExpr:
		return c.checkUnaryExpr(ee, env)
	case *ast.BinaryExpr:
		return c.checkBinaryExpr(ee, env)
	case *ast.IsExpr:
		c.checkExpr(ee.X, env)
		c.resolveType(ee.Type)
		return c.interner.Intern(&types.Primitive{Kind: types.Bool})
	case *ast.AsExpr:
		return c.checkAsExpr(ee, env)
	case *ast.CastExpr:
		return c.checkCastExpr(ee, env)
	case *ast.TupleExpr:
		elems := make([]types.Type, len(ee.Elems))
		for i, el := range ee.Elems {
			elems[i] = c.checkExpr(el, env)
		}
		return &types.Tuple{Elems: elems}
	case *ast.ListLitExpr:
		return c.checkListLit(ee, env)
	case *ast.DictLitExpr:
		return c.checkDictLit(ee, env)
	case *ast.ParenExpr:
		return c.checkExpr(ee.X, env)
	default:
		return nil
	}
}

func (c *Checker) checkIdent(id *ast.Ident, env *env) types.Type {
	if b, ok := env.lookup(id.Name); ok {
		return b.typ
	}
	if g, ok := c.globals[id.Name]; ok {
		if g.Type != nil {
			return c.resolveType(g.Type)
		}
		return c.checkExpr(g.Init, newEnv(nil))
	}
	if fn, ok := c.funcs[id.Name]; ok {
		return c.funcTypeOf(fn)
	}
	if ex, ok := c.externs[id.Name]; ok {
		return c.externTypeOf(ex)
	}
	c.sink.Errorf(diag.TC009, id.P, "unknown identifier %q", id.Name)
	return nil
}

func (c *Checker) funcTypeOf(fn *ast.FuncDecl) types.Type {
	params := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = c.resolveType(p.Type)
	}
	var ret types.Type = &types.Void{}
	if fn.Ret != nil {
		ret = c.resolveType(fn.Ret)
	}
	return &types.FnPtr{Params: params, Ret: ret}
}

func (c *Checker) externTypeOf(ex *ast.ExternDecl) types.Type {
	params := make([]types.Type, len(ex.Params))
	for i, p := range ex.Params {
		params[i] = c.resolveType(p.Type)
	}
	var ret types.Type = &types.Void{}
	if ex.Ret != nil {
		ret = c.resolveType(ex.Ret)
	}
	return &types.FnPtr{Params: params, Ret: ret}
}

// checkMemberExpr handles field access on a class/struct instance and
// `EnumName.VARIANT` variant access, the two shapes MemberExpr covers
// once import mangling has already collapsed module-qualified chains.
func (c *Checker) checkMemberExpr(m *ast.MemberExpr, env *env) types.Type {
	if id, ok := m.X.(*ast.Ident); ok {
		if _, isLocal := env.lookup(id.Name); !isLocal {
			if _, isGlobal := c.globals[id.Name]; !isGlobal {
				if enum, ok := c.enums[id.Name]; ok {
					for _, v := range enum.Variants {
						if v.Name == m.Name {
							return &types.Enum{Name: enum.Name}
						}
					}
					c.sink.Errorf(diag.TC009, m.P, "enum %q has no variant %q", enum.Name, m.Name)
					return nil
				}
			}
		}
	}

	xt := c.checkExpr(m.X, env)
	if xt == nil {
		return nil
	}
	switch xtt := xt.(type) {
	case *types.Class:
		if cl, ok := c.classes[xtt.Name]; ok {
			for _, f := range cl.Fields {
				if f.Name == m.Name {
					return c.resolveType(f.Type)
				}
			}
			for _, mm := range cl.Methods {
				if mm.Name == m.Name {
					return c.funcTypeOf(mm)
				}
			}
		}
	case *types.Struct:
		if st, ok := c.structs[xtt.Name]; ok {
			for _, f := range st.Fields {
				if f.Name == m.Name {
					return c.resolveType(f.Type)
				}
			}
			for _, mm := range st.Methods {
				if mm.Name == m.Name {
					return c.funcTypeOf(mm)
				}
			}
		}
	}
	c.sink.Errorf(diag.TC009, m.P, "%s has no member %q", xt, m.Name)
	return nil
}

func (c *Checker) checkIndexExpr(i *ast.IndexExpr, env *env) types.Type {
	xt := c.checkExpr(i.X, env)
	idxt := c.checkExpr(i.Index, env)
	switch xtt := xt.(type) {
	case *types.List:
		if idxt != nil && !isInteger(idxt) {
			c.sink.Errorf(diag.TC001, i.P, "list index must be integer, got %s", idxt)
		}
		return xtt.Elem
	case *types.Dict:
		if idxt != nil && !assignable(xtt.Key, idxt) {
			c.sink.Errorf(diag.TC001, i.P, "dict key type mismatch: expected %s, got %s", xtt.Key, idxt)
		}
		return xtt.Val
	case nil:
		return nil
	default:
		c.sink.Errorf(diag.TC001, i.P, "cannot index into %s", xt)
		return nil
	}
}

func (c *Checker) checkCallExpr(call *ast.CallExpr, env *env) types.Type {
	for _, a := range call.Args {
		c.checkExpr(a, env)
	}
	fnType := c.checkExpr(call.Fn, env)
	fp, ok := fnType.(*types.FnPtr)
	if !ok {
		if fnType != nil {
			c.sink.Errorf(diag.TC001, call.P, "cannot call a value of type %s", fnType)
		}
		return nil
	}
	if len(call.Args) != len(fp.Params) {
		c.sink.Errorf(diag.TC001, call.P, "expected %d arguments, got %d", len(fp.Params), len(call.Args))
	}
	return fp.Ret
}

// checkGenericCallExpr checks a call to a generic function instantiated
// with explicit type arguments, substituting the generic's parameter
// types before checking arity (spec.md §4.5 monomorphization).
func (c *Checker) checkGenericCallExpr(call *ast.GenericCallExpr, env *env) types.Type {
	for _, a := range call.Args {
		c.checkExpr(a, env)
	}
	fn, ok := c.funcs[call.Name]
	if !ok || len(fn.Generics) == 0 {
		c.sink.Errorf(diag.TC009, call.P, "%q is not a generic function", call.Name)
		return nil
	}
	if len(call.TypeArgs) != len(fn.Generics) {
		c.sink.Errorf(diag.TC012, call.P, "expected %d type arguments, got %d", len(fn.Generics), len(call.TypeArgs))
		return nil
	}
	subs := make(map[string]types.Type, len(fn.Generics))
	for i, g := range fn.Generics {
		subs[g] = c.resolveType(call.TypeArgs[i])
	}

	savedGenerics := c.genericParams
	c.genericParams = make(map[string]bool, len(fn.Generics))
	for _, g := range fn.Generics {
		c.genericParams[g] = true
	}
	var ret types.Type = &types.Void{}
	if fn.Ret != nil {
		ret = c.resolveType(fn.Ret)
	}
	c.genericParams = savedGenerics

	return types.Substitute(ret, subs)
}

func (c *Checker) checkUnaryExpr(u *ast.UnaryExpr, env *env) types.Type {
	xt := c.checkExpr(u.X, env)
	if xt == nil {
		return nil
	}
	switch u.Op {
	case ast.UnaryNot:
		if !isBool(xt) {
			c.sink.Errorf(diag.TC004, u.P, "`not` requires bool, got %s", xt)
		}
		return c.interner.Intern(&types.Primitive{Kind: types.Bool})
	case ast.UnaryNeg:
		if !isNumeric(xt) {
			c.sink.Errorf(diag.TC001, u.P, "unary `-` requires a numeric operand, got %s", xt)
		}
		return xt
	case ast.UnaryBitNot:
		if !isInteger(xt) {
			c.sink.Errorf(diag.TC001, u.P, "unary `~` requires an integer operand, got %s", xt)
		}
		return xt
	}
	return xt
}

func (c *Checker) checkBinaryExpr(b *ast.BinaryExpr, env *env) types.Type {
	lt := c.checkExpr(b.Left, env)
	rt := c.checkExpr(b.Right, env)
	if lt == nil || rt == nil {
		return nil
	}

	switch b.Op {
	case ast.BinAnd, ast.BinOr:
		if !isBool(lt) || !isBool(rt) {
			c.sink.Errorf(diag.TC004, b.P, "`and`/`or` require bool operands, got %s and %s", lt, rt)
		}
		return c.interner.Intern(&types.Primitive{Kind: types.Bool})
	case ast.BinEq, ast.BinNe:
		if !lt.Equals(rt) {
			c.sink.Errorf(diag.TC001, b.P, "cannot compare %s with %s", lt, rt)
		}
		return c.interner.Intern(&types.Primitive{Kind: types.Bool})
	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		if !sameNumericWidth(lt, rt) {
			c.sink.Errorf(diag.TC002, b.P, "comparison requires matching numeric types, got %s and %s", lt, rt)
		}
		return c.interner.Intern(&types.Primitive{Kind: types.Bool})
	case ast.BinAdd:
		if isStr(lt) && isStr(rt) {
			return c.interner.Intern(&types.Str{})
		}
		fallthrough
	case ast.BinSub, ast.BinMul, ast.BinDiv, ast.BinMod, ast.BinShl, ast.BinShr, ast.BinBitAnd, ast.BinBitXor, ast.BinBitOr:
		if !sameNumericWidth(lt, rt) {
			c.sink.Errorf(diag.TC002, b.P, "binary operator requires matching numeric types, got %s and %s", lt, rt)
			return lt
		}
		return lt
	}
	return nil
}

// checkAsExpr enforces spec.md §4.5: `as` downcasts an interface-typed
// value to one of the concrete class types implementing it; the target
// must be a class, and the checker can't verify the class actually
// implements the source interface without a full vtable cross-reference,
// so it only rejects an obviously-wrong (non-class) target here and
// leaves the runtime check to the emitted cast's panic-on-mismatch path.
func (c *Checker) checkAsExpr(a *ast.AsExpr, env *env) types.Type {
	xt := c.checkExpr(a.X, env)
	target := c.resolveType(a.Type)
	if _, ok := xt.(*types.Interface); !ok {
		c.sink.Errorf(diag.TC011, a.P, "`as` requires an interface-typed operand, got %s", xt)
	}
	if target != nil {
		if _, ok := target.(*types.Class); !ok {
			c.sink.Errorf(diag.TC011, a.P, "`as` target must be a class implementing the interface, got %s", target)
		}
	}
	return target
}

func (c *Checker) checkCastExpr(ce *ast.CastExpr, env *env) types.Type {
	xt := c.checkExpr(ce.X, env)
	target := c.resolveType(ce.Type)
	if xt != nil && !isNumeric(xt) {
		c.sink.Errorf(diag.TC001, ce.P, "explicit cast requires a numeric operand, got %s", xt)
	}
	if target != nil && !isNumeric(target) {
		c.sink.Errorf(diag.TC001, ce.P, "explicit cast target must be numeric, got %s", target)
	}
	return target
}

func (c *Checker) checkListLit(l *ast.ListLitExpr, env *env) types.Type {
	elem := c.resolveType(l.Elem)
	for _, e := range l.Elements {
		et := c.checkExpr(e, env)
		if elem != nil && et != nil && !assignable(elem, et) {
			c.sink.Errorf(diag.TC001, l.P, "list element type mismatch: expected %s, got %s", elem, et)
		}
	}
	return &types.List{Elem: elem}
}

func (c *Checker) checkDictLit(d *ast.DictLitExpr, env *env) types.Type {
	key := c.resolveType(d.Key)
	val := c.resolveType(d.Val)
	if key != nil {
		if _, ok := key.(*types.Str); !ok {
			if p, ok := key.(*types.Primitive); !ok || !p.IsInteger() {
				c.sink.Errorf(diag.TC003, d.P, "dict key type must be str or an integer primitive, got %s", key)
			}
		}
	}
	for _, e := range d.Entries {
		kt := c.checkExpr(e.Key, env)
		vt := c.checkExpr(e.Value, env)
		if key != nil && kt != nil && !assignable(key, kt) {
			c.sink.Errorf(diag.TC001, d.P, "dict key literal type mismatch: expected %s, got %s", key, kt)
		}
		if val != nil && vt != nil && !assignable(val, vt) {
			c.sink.Errorf(diag.TC001, d.P, "dict value literal type mismatch: expected %s, got %s", val, vt)
		}
	}
	return &types.Dict{Key: key, Val: val}
}
