package emit

import (
	"fmt"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/check"
	"github.com/bismut-lang/bismut/internal/types"
)

// funcWriter emits one function/method body: it tracks the C-identifier
// environment (for type lookups via the checker's ExprType) and the
// stack of lexical scopes whose reference-kind locals must be released
// on normal exit, break/continue, or return (spec.md §4.6 ARC
// insertion).
type funcWriter struct {
	e       *Emitter
	w       *cWriter
	env     *check.Env
	retType types.Type
	tmp     int
	scopes  []*scopeFrame
}

type localVar struct {
	name string
	t    types.Type
}

type scopeFrame struct {
	locals     []localVar
	isLoopBody bool
}

func (fw *funcWriter) newTemp() string {
	fw.tmp++
	return fmt.Sprintf("__t%d", fw.tmp)
}

func (fw *funcWriter) pushScope(isLoopBody bool) {
	fw.scopes = append(fw.scopes, &scopeFrame{isLoopBody: isLoopBody})
}

func (fw *funcWriter) popScope() {
	top := fw.scopes[len(fw.scopes)-1]
	fw.releaseLocals(top.locals)
	fw.scopes = fw.scopes[:len(fw.scopes)-1]
}

func (fw *funcWriter) declareLocal(name string, t types.Type) {
	top := fw.scopes[len(fw.scopes)-1]
	top.locals = append(top.locals, localVar{name: name, t: t})
}

func (fw *funcWriter) releaseLocals(locals []localVar) {
	for i := len(locals) - 1; i >= 0; i-- {
		l := locals[i]
		if isRefKind(l.t) {
			fw.w.linef("bismut_release((void*)%s, bismut_%s_dtor);", l.name, refDtorName(l.t))
		}
	}
}

// releaseUpTo releases every frame from the top of the stack down to and
// including index boundary, then clears each released frame's local list
// so the matching popScope (reached later in source order, even though
// unreachable after a jump) doesn't release the same locals twice.
func (fw *funcWriter) releaseUpTo(boundary int) {
	for i := len(fw.scopes) - 1; i >= boundary; i-- {
		fw.releaseLocals(fw.scopes[i].locals)
		fw.scopes[i].locals = nil
	}
}

func (fw *funcWriter) nearestLoopFrame() int {
	for i := len(fw.scopes) - 1; i >= 0; i-- {
		if fw.scopes[i].isLoopBody {
			return i
		}
	}
	return 0
}

// isFreshValue reports whether e's reference-kind result is already an
// owned, rc=1 value with no other owner — a class constructor call or a
// collection literal — so binding it into a local or global needs no
// additional retain (spec.md §4.6's alias-safe pattern only applies when
// the bound expression aliases an existing owner).
func (fw *funcWriter) isFreshValue(e ast.Expr) bool {
	switch ee := e.(type) {
	case *ast.ListLitExpr, *ast.DictLitExpr:
		return true
	case *ast.CallExpr:
		if id, ok := ee.Fn.(*ast.Ident); ok {
			if _, isClass := fw.e.chk.Classes()[id.Name]; isClass {
				return true
			}
		}
	}
	return false
}

// emitExpr translates e to a C expression, writing any statements it
// needs (e.g. constructing a list/dict literal) directly to fw.w ahead
// of the returned expression text.
func (fw *funcWriter) emitExpr(e ast.Expr) string {
	switch ee := e.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("%d", ee.Value)
	case *ast.FloatLit:
		return fmt.Sprintf("%g", ee.Value)
	case *ast.StringLit:
		return fw.e.litRef(ee.Value)
	case *ast.CharLit:
		return cCharLiteral(ee.Value)
	case *ast.BoolLit:
		if ee.Value {
			return "true"
		}
		return "false"
	case *ast.NoneLit:
		return "NULL"
	case *ast.Ident:
		return fw.emitIdent(ee)
	case *ast.MemberExpr:
		return fw.emitMemberExpr(ee)
	case *ast.IndexExpr:
		return fw.emitIndexExpr(ee)
	case *ast.CallExpr:
		return fw.emitCallExpr(ee)
	case *ast.GenericCallExpr:
		return fw.emitGenericCallExpr(ee)
	case *ast.UnaryExpr:
		return fw.emitUnaryExpr(ee)
	case *ast.BinaryExpr:
		return fw.emitBinaryExpr(ee)
	case *ast.IsExpr:
		return fw.emitIsExpr(ee)
	case *ast.AsExpr:
		return fw.emitAsExpr(ee)
	case *ast.CastExpr:
		t := fw.e.chk.ResolveType(ee.Type)
		return fmt.Sprintf("((%s)(%s))", fw.e.cType(t), fw.emitExpr(ee.X))
	case *ast.TupleExpr:
		return fw.emitTupleExpr(ee)
	case *ast.ListLitExpr:
		return fw.emitListLit(ee)
	case *ast.DictLitExpr:
		return fw.emitDictLit(ee)
	case *ast.ParenExpr:
		return "(" + fw.emitExpr(ee.X) + ")"
	default:
		return "/* unsupported expr */ NULL"
	}
}

func (fw *funcWriter) emitIdent(id *ast.Ident) string {
	if _, ok := fw.env.Lookup(id.Name); ok {
		return sanitizeCIdent(id.Name)
	}
	if _, ok := fw.e.chk.Globals()[id.Name]; ok {
		return "bismut_g_" + sanitizeCIdent(id.Name)
	}
	if _, ok := fw.e.chk.Funcs()[id.Name]; ok {
		return funcName(id.Name)
	}
	if _, ok := fw.e.chk.Externs()[id.Name]; ok {
		return funcName(id.Name)
	}
	return sanitizeCIdent(id.Name)
}

// emitMemberExpr handles both field/method access and same-unit enum
// variant access (Color.RED), distinguishing them by whether the base
// identifier names a known value rather than an enum type.
func (fw *funcWriter) emitMemberExpr(m *ast.MemberExpr) string {
	if id, ok := m.X.(*ast.Ident); ok {
		if _, isLocal := fw.env.Lookup(id.Name); !isLocal {
			if _, isGlobal := fw.e.chk.Globals()[id.Name]; !isGlobal {
				if _, isEnum := fw.e.chk.Enums()[id.Name]; isEnum {
					return fmt.Sprintf("bismut_%s_%s", sanitizeCIdent(id.Name), sanitizeCIdent(m.Name))
				}
			}
		}
	}
	return fw.emitExpr(m.X) + "->" + sanitizeCIdent(m.Name)
}

func (fw *funcWriter) emitIndexExpr(ix *ast.IndexExpr) string {
	xt := fw.e.chk.ExprType(ix.X, fw.env)
	x := fw.emitExpr(ix.X)
	idx := fw.emitExpr(ix.Index)
	switch t := xt.(type) {
	case *types.List:
		return fmt.Sprintf("bismut_List_%s_get(%s, %s)", tag(t.Elem), x, idx)
	case *types.Dict:
		return fmt.Sprintf("bismut_Dict_%s_%s_get(%s, %s)", tag(t.Key), tag(t.Val), x, idx)
	default:
		return "/* bad index */ NULL"
	}
}

// lookupMethodOwner resolves which class or struct declares method name
// on a value of type t, for dispatching a call to its mangled C name.
func lookupMethodOwner(chk *check.Checker, t types.Type, name string) (owner string, isIface bool) {
	switch tt := t.(type) {
	case *types.Class:
		return tt.Name, false
	case *types.Struct:
		return tt.Name, false
	case *types.Interface:
		return tt.Name, true
	}
	return "", false
}

func (fw *funcWriter) emitCallExpr(call *ast.CallExpr) string {
	// Constructor call: `ClassName(args...)`.
	if id, ok := call.Fn.(*ast.Ident); ok {
		if _, isClass := fw.e.chk.Classes()[id.Name]; isClass {
			if _, shadowed := fw.env.Lookup(id.Name); !shadowed {
				args := make([]string, len(call.Args))
				for i, a := range call.Args {
					args[i] = fw.emitExpr(a)
				}
				return fmt.Sprintf("bismut_%s_new(%s)", sanitizeCIdent(id.Name), joinCommas(args))
			}
		}
	}

	// Method call: `recv.method(args...)`.
	if mem, ok := call.Fn.(*ast.MemberExpr); ok {
		if !fw.isEnumAccess(mem) {
			recvType := fw.e.chk.ExprType(mem.X, fw.env)
			recv := fw.emitExpr(mem.X)
			args := make([]string, len(call.Args))
			for i, a := range call.Args {
				args[i] = fw.emitExpr(a)
			}
			owner, isIface := lookupMethodOwner(fw.e.chk, recvType, mem.Name)
			if isIface {
				callArgs := append([]string{recv + "->obj"}, args...)
				return fmt.Sprintf("%s->vtbl->%s(%s)", recv, sanitizeCIdent(mem.Name), joinCommas(callArgs))
			}
			if owner != "" {
				callArgs := append([]string{recv}, args...)
				return fmt.Sprintf("bismut_%s_%s(%s)", sanitizeCIdent(owner), sanitizeCIdent(mem.Name), joinCommas(callArgs))
			}
		}
	}

	fn := fw.emitExpr(call.Fn)
	args := make([]string, len(call.Args))
	for i, a := range call.Args {
		args[i] = fw.emitExpr(a)
	}
	return fmt.Sprintf("%s(%s)", fn, joinCommas(args))
}

func (fw *funcWriter) isEnumAccess(m *ast.MemberExpr) bool {
	id, ok := m.X.(*ast.Ident)
	if !ok {
		return false
	}
	if _, isLocal := fw.env.Lookup(id.Name); isLocal {
		return false
	}
	if _, isGlobal := fw.e.chk.Globals()[id.Name]; isGlobal {
		return false
	}
	_, isEnum := fw.e.chk.Enums()[id.Name]
	return isEnum
}

// emitGenericCallExpr instantiates a monomorphized copy of a generic
// function specialized to call.TypeArgs, emitting its definition once
// per distinct (name, type-args) pair and returning a call to the
// resulting C function (spec.md §4.5 monomorphization).
func (fw *funcWriter) emitGenericCallExpr(call *ast.GenericCallExpr) string {
	fn, ok := fw.e.chk.Funcs()[call.Name]
	if !ok {
		return "/* unknown generic */ NULL"
	}
	subs := make(map[string]types.Type, len(fn.Generics))
	resolvedArgs := make([]types.Type, len(call.TypeArgs))
	for i, ta := range call.TypeArgs {
		resolvedArgs[i] = fw.e.chk.ResolveType(ta)
		if i < len(fn.Generics) {
			subs[fn.Generics[i]] = resolvedArgs[i]
		}
	}
	instName := funcName(call.Name) + "__" + types.Mangle(resolvedArgs)
	fw.e.ensureGenericInstance(fn, subs, instName)

	args := make([]string, len(call.Args))
	for i, a := range call.Args {
		args[i] = fw.emitExpr(a)
	}
	return fmt.Sprintf("%s(%s)", instName, joinCommas(args))
}

func cBinOp(op ast.BinaryOp) (string, bool) {
	switch op {
	case ast.BinAdd:
		return "+", true
	case ast.BinSub:
		return "-", true
	case ast.BinMul:
		return "*", true
	case ast.BinDiv:
		return "/", true
	case ast.BinMod:
		return "%", true
	case ast.BinShl:
		return "<<", true
	case ast.BinShr:
		return ">>", true
	case ast.BinLt:
		return "<", true
	case ast.BinLe:
		return "<=", true
	case ast.BinGt:
		return ">", true
	case ast.BinGe:
		return ">=", true
	case ast.BinEq:
		return "==", true
	case ast.BinNe:
		return "!=", true
	case ast.BinBitAnd:
		return "&", true
	case ast.BinBitXor:
		return "^", true
	case ast.BinBitOr:
		return "|", true
	case ast.BinAnd:
		return "&&", true
	case ast.BinOr:
		return "||", true
	}
	return "", false
}

func (fw *funcWriter) emitBinaryExpr(b *ast.BinaryExpr) string {
	lt := fw.e.chk.ExprType(b.Left, fw.env)
	if b.Op == ast.BinAdd {
		if _, isStr := lt.(*types.Str); isStr {
			return fmt.Sprintf("bismut_str_concat(%s, %s)", fw.emitExpr(b.Left), fw.emitExpr(b.Right))
		}
	}
	if b.Op == ast.BinEq || b.Op == ast.BinNe {
		if _, isStr := lt.(*types.Str); isStr {
			eq := fmt.Sprintf("bismut_str_eq(%s, %s)", fw.emitExpr(b.Left), fw.emitExpr(b.Right))
			if b.Op == ast.BinNe {
				return "!" + eq
			}
			return eq
		}
	}
	sym, ok := cBinOp(b.Op)
	if !ok {
		sym = "/* ? */"
	}
	return fmt.Sprintf("(%s %s %s)", fw.emitExpr(b.Left), sym, fw.emitExpr(b.Right))
}

func (fw *funcWriter) emitUnaryExpr(u *ast.UnaryExpr) string {
	switch u.Op {
	case ast.UnaryNot:
		return "(!" + fw.emitExpr(u.X) + ")"
	case ast.UnaryNeg:
		return "(-" + fw.emitExpr(u.X) + ")"
	case ast.UnaryBitNot:
		return "(~" + fw.emitExpr(u.X) + ")"
	}
	return fw.emitExpr(u.X)
}

// emitIsExpr implements `x is TypeName` as an interface fat-pointer
// vtable-identity check: the static per-(class,interface) vtable address
// is compared against the value's runtime vtbl pointer.
func (fw *funcWriter) emitIsExpr(is *ast.IsExpr) string {
	target := fw.e.chk.ResolveType(is.Type)
	x := fw.emitExpr(is.X)
	cl, ok := target.(*types.Class)
	if !ok {
		return "true"
	}
	srcType := fw.e.chk.ExprType(is.X, fw.env)
	iface, ok := srcType.(*types.Interface)
	if !ok {
		return fmt.Sprintf("(%s != NULL)", x)
	}
	return fmt.Sprintf("(%s != NULL && %s->vtbl == &bismut_%s_as_%s_vtbl)",
		x, x, sanitizeCIdent(cl.Name), sanitizeCIdent(iface.Name))
}

// emitAsExpr downcasts an interface fat pointer to its concrete class,
// comparing the runtime vtbl pointer against the static per-(class,
// interface) vtable address and panicking on mismatch (spec.md §4.6).
func (fw *funcWriter) emitAsExpr(as *ast.AsExpr) string {
	target := fw.e.chk.ResolveType(as.Type)
	x := fw.emitExpr(as.X)
	cl, ok := target.(*types.Class)
	if !ok {
		return x
	}
	srcType := fw.e.chk.ExprType(as.X, fw.env)
	iface, ok := srcType.(*types.Interface)
	if !ok {
		return x
	}
	ct := classType(cl.Name) + "*"
	return fmt.Sprintf("((%s != NULL && %s->vtbl == &bismut_%s_as_%s_vtbl) ? (%s)%s->obj : ((%s)(bismut_panic_type(__FILE__, __LINE__, 0), (void*)0)))",
		x, x, sanitizeCIdent(cl.Name), sanitizeCIdent(iface.Name), ct, x, ct)
}

func (fw *funcWriter) emitTupleExpr(t *ast.TupleExpr) string {
	tt := fw.e.chk.ExprType(t, fw.env).(*types.Tuple)
	fw.e.useTuple(tt)
	tmp := fw.newTemp()
	fw.w.linef("%s %s;", tupleType(tupleTag(tt)), tmp)
	for i, el := range t.Elems {
		fw.w.linef("%s.f%d = %s;", tmp, i, fw.emitExpr(el))
	}
	return tmp
}

func (fw *funcWriter) emitListLit(l *ast.ListLitExpr) string {
	elem := fw.e.chk.ResolveType(l.Elem)
	fw.e.useList(&types.List{Elem: elem})
	tg := tag(elem)
	tmp := fw.newTemp()
	fw.w.linef("%s *%s = bismut_List_%s_new();", listType(tg), tmp, tg)
	for _, el := range l.Elements {
		fw.w.linef("bismut_List_%s_push(%s, %s);", tg, tmp, fw.emitExpr(el))
	}
	return tmp
}

func (fw *funcWriter) emitDictLit(d *ast.DictLitExpr) string {
	key := fw.e.chk.ResolveType(d.Key)
	val := fw.e.chk.ResolveType(d.Val)
	dt := &types.Dict{Key: key, Val: val}
	fw.e.useDict(dt)
	kt, vt := tag(key), tag(val)
	tmp := fw.newTemp()
	fw.w.linef("%s *%s = bismut_Dict_%s_%s_new();", dictType(kt, vt), tmp, kt, vt)
	for _, entry := range d.Entries {
		fw.w.linef("bismut_Dict_%s_%s_set(%s, %s, %s);", kt, vt, tmp, fw.emitExpr(entry.Key), fw.emitExpr(entry.Value))
	}
	return tmp
}
