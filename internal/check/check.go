// Package check implements Bismut's two-pass type checker (spec.md
// §4.5): a declaration-collection pass that populates every top-level
// symbol before any body is inspected (so forward references and mutual
// recursion within one compilation unit just work), followed by a
// body-checking pass that walks every function, method and global
// initializer.
package check

import (
	"fmt"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/types"
)

// Checker holds the symbol tables built during declaration collection and
// the diagnostic sink every rule in spec.md §4.5 reports through.
type Checker struct {
	sink     *diag.Sink
	interner *types.Interner

	classes    map[string]*ast.ClassDecl
	structs    map[string]*ast.StructDecl
	enums      map[string]*ast.EnumDecl
	interfaces map[string]*ast.InterfaceDecl
	funcs      map[string]*ast.FuncDecl
	externs    map[string]*ast.ExternDecl
	globals    map[string]*ast.GlobalVarDecl

	// genericParams is non-nil only while checking the body of a generic
	// function/method/class, mapping its own type parameter names to a
	// placeholder types.Generic so uses of T inside the body resolve
	// instead of reporting "unknown type".
	genericParams map[string]bool

	// stringLiterals interns every distinct StringLit value seen so the
	// emitter can share one immortal C global per literal (spec.md §4.6);
	// populated during body checking.
	stringLiterals map[string]bool
}

// New creates a Checker reporting to sink.
func New(sink *diag.Sink) *Checker {
	return &Checker{
		sink:           sink,
		interner:       types.NewInterner(),
		classes:        make(map[string]*ast.ClassDecl),
		structs:        make(map[string]*ast.StructDecl),
		enums:          make(map[string]*ast.EnumDecl),
		interfaces:     make(map[string]*ast.InterfaceDecl),
		funcs:          make(map[string]*ast.FuncDecl),
		externs:        make(map[string]*ast.ExternDecl),
		globals:        make(map[string]*ast.GlobalVarDecl),
		stringLiterals: make(map[string]bool),
	}
}

// StringLiterals returns every distinct string literal value the checked
// file contains, for the emitter's interned-literal table.
func (c *Checker) StringLiterals() []string {
	out := make([]string, 0, len(c.stringLiterals))
	for s := range c.stringLiterals {
		out = append(out, s)
	}
	return out
}

// The accessors below expose the symbol tables collectDecls populates so
// internal/emit can walk the same declarations the checker validated
// without rebuilding them. Check must have already run and reported no
// errors before a caller relies on these.
func (c *Checker) Classes() map[string]*ast.ClassDecl         { return c.classes }
func (c *Checker) Structs() map[string]*ast.StructDecl        { return c.structs }
func (c *Checker) Enums() map[string]*ast.EnumDecl            { return c.enums }
func (c *Checker) Interfaces() map[string]*ast.InterfaceDecl  { return c.interfaces }
func (c *Checker) Funcs() map[string]*ast.FuncDecl            { return c.funcs }
func (c *Checker) Externs() map[string]*ast.ExternDecl        { return c.externs }
func (c *Checker) Globals() map[string]*ast.GlobalVarDecl     { return c.globals }

// ExprType recomputes the type of an already-checked expression, letting
// the emitter reuse the checker's inference instead of duplicating it.
// scope must already contain every local/parameter binding in effect at
// e's position, built the same way checkMethod builds one.
func (c *Checker) ExprType(e ast.Expr, scope *Env) types.Type {
	return c.checkExpr(e, scope)
}

// ResolveType resolves a parsed type expression the same way the checker
// does, for the emitter's declaration-signature walk.
func (c *Checker) ResolveType(t ast.TypeExpr) types.Type {
	return c.resolveType(t)
}

// Check runs both passes over a merged, single-file compilation unit
// (the output of internal/resolve) and reports every violation of
// spec.md §4.5 to the sink. Callers must check sink.HasErrors() after
// Check returns; per spec.md §7 no C emission is attempted once the
// checker has reported any error.
func (c *Checker) Check(file *ast.File) {
	c.collectDecls(file)
	c.checkBodies(file)
}

// collectDecls is pass 1: populate every symbol table, reporting RES003
// for any name collision. Declarations forward-reference each other
// freely; nothing here inspects a function/method body.
func (c *Checker) collectDecls(file *ast.File) {
	for _, d := range file.Decls {
		switch dd := d.(type) {
		case *ast.ClassDecl:
			c.declare(dd.Name, dd.P, func() bool { _, ok := c.classes[dd.Name]; return ok })
			c.classes[dd.Name] = dd
		case *ast.StructDecl:
			c.declare(dd.Name, dd.P, func() bool { _, ok := c.structs[dd.Name]; return ok })
			c.structs[dd.Name] = dd
		case *ast.EnumDecl:
			c.declare(dd.Name, dd.P, func() bool { _, ok := c.enums[dd.Name]; return ok })
			c.enums[dd.Name] = dd
		case *ast.InterfaceDecl:
			c.declare(dd.Name, dd.P, func() bool { _, ok := c.interfaces[dd.Name]; return ok })
			c.interfaces[dd.Name] = dd
		case *ast.FuncDecl:
			c.declare(dd.Name, dd.P, func() bool { _, ok := c.funcs[dd.Name]; return ok })
			c.funcs[dd.Name] = dd
		case *ast.ExternDecl:
			c.declare(dd.Name, dd.P, func() bool { _, ok := c.externs[dd.Name]; return ok })
			c.externs[dd.Name] = dd
		case *ast.GlobalVarDecl:
			c.declare(dd.Name, dd.P, func() bool { _, ok := c.globals[dd.Name]; return ok })
			c.globals[dd.Name] = dd
		}
	}
}

func (c *Checker) declare(name string, pos ast.Pos, exists func() bool) {
	if exists() {
		c.sink.Errorf(diag.RES003, pos, "name clash: %q declared more than once after import mangling", name)
	}
}

// checkBodies is pass 2: check every function/method body, class/struct
// field and interface-satisfaction rule, and every global initializer.
func (c *Checker) checkBodies(file *ast.File) {
	for _, d := range file.Decls {
		switch dd := d.(type) {
		case *ast.FuncDecl:
			c.checkFunc(dd)
		case *ast.ClassDecl:
			c.checkClass(dd)
		case *ast.StructDecl:
			c.checkStruct(dd)
		case *ast.GlobalVarDecl:
			c.checkGlobal(dd)
		}
	}
}

func (c *Checker) checkGlobal(d *ast.GlobalVarDecl) {
	env := newEnv(nil)
	var declared types.Type
	if d.Type != nil {
		declared = c.resolveType(d.Type)
	}
	var init types.Type
	if d.Init != nil {
		init = c.checkExpr(d.Init, env)
	}
	if declared != nil && init != nil && !assignable(declared, init) {
		c.sink.Errorf(diag.TC001, d.P, "cannot initialize %q of type %s with value of type %s", d.Name, declared, init)
	}
	if declared == nil {
		declared = init
	}
	env.define(d.Name, declared, d.IsConst)
}

// checkClass checks a class's methods (with an implicit `self` of class
// type in scope) and that it satisfies every interface it claims to
// (spec.md §4.5: every interface method must have a matching class
// method, same name/arity).
func (c *Checker) checkClass(d *ast.ClassDecl) {
	self := &types.Class{Name: d.Name}
	for _, m := range d.Methods {
		c.checkMethod(m, self)
	}
	for _, ifaceName := range d.Interfaces {
		iface, ok := c.interfaces[ifaceName]
		if !ok {
			c.sink.Errorf(diag.TC005, d.P, "class %q claims unknown interface %q", d.Name, ifaceName)
			continue
		}
		for _, im := range iface.Methods {
			if !classHasMethod(d, im) {
				c.sink.Errorf(diag.TC005, d.P, "class %q does not implement %s.%s", d.Name, ifaceName, im.Name)
			}
		}
	}
}

func classHasMethod(d *ast.ClassDecl, im *ast.InterfaceMethod) bool {
	for _, m := range d.Methods {
		if m.Name == im.Name && len(m.Params) == len(im.Params) {
			return true
		}
	}
	return false
}

// checkStruct enforces spec.md §4.5's struct rules: every field must be
// value-kind, fields may not carry an initializer in the declaration
// (struct has no `init`/constructor of its own — zero-value/positional
// construction is the emitter's concern), and methods receive `self` by
// value rather than by reference.
func (c *Checker) checkStruct(d *ast.StructDecl) {
	for _, f := range d.Fields {
		ft := c.resolveType(f.Type)
		if ft != nil && !ft.IsValueKind() {
			c.sink.Errorf(diag.TC007, f.P, "struct field %q has reference-kind type %s; struct fields must be value-kind", f.Name, ft)
		}
	}
	self := &types.Struct{Name: d.Name}
	for _, m := range d.Methods {
		c.checkMethod(m, self)
	}
}

func (c *Checker) checkFunc(d *ast.FuncDecl) {
	c.checkMethod(d, nil)
}

func (c *Checker) checkMethod(d *ast.FuncDecl, self types.Type) {
	if len(d.Generics) > 0 {
		c.genericParams = make(map[string]bool, len(d.Generics))
		for _, g := range d.Generics {
			c.genericParams[g] = true
		}
		defer func() { c.genericParams = nil }()
	}

	env := newEnv(nil)
	if self != nil {
		env.define("self", self, false)
	}
	for _, p := range d.Params {
		env.define(p.Name, c.resolveType(p.Type), false)
	}

	var ret types.Type
	if d.Ret != nil {
		ret = c.resolveType(d.Ret)
	}
	c.checkStmts(d.Body, env, ret, false)
}

// resolveType turns a parsed ast.TypeExpr into a checked types.Type,
// reporting TC001 (reused as "unknown type") for any name that resolves
// to nothing declared, merged-in, or currently in scope as a generic
// parameter.
func (c *Checker) resolveType(t ast.TypeExpr) types.Type {
	if t == nil {
		return nil
	}
	switch tt := t.(type) {
	case *ast.NamedType:
		return c.resolveNamedType(tt)
	case *ast.ListType:
		return c.interner.Intern(&types.List{Elem: c.resolveType(tt.Elem)})
	case *ast.DictType:
		return c.interner.Intern(&types.Dict{Key: c.resolveType(tt.Key), Val: c.resolveType(tt.Val)})
	case *ast.TupleType:
		elems := make([]types.Type, len(tt.Elems))
		for i, e := range tt.Elems {
			elems[i] = c.resolveType(e)
		}
		return &types.Tuple{Elems: elems}
	case *ast.FnPtrType:
		params := make([]types.Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = c.resolveType(p)
		}
		return &types.FnPtr{Params: params, Ret: c.resolveType(tt.Ret)}
	case *ast.GenericInstType:
		// Monomorphization target; the checker validates arity/body once
		// here in the abstract and leaves per-instantiation substitution
		// to the emitter's instance cache (spec.md §4.5).
		args := make([]types.Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = c.resolveType(a)
		}
		return &types.Class{Name: fmt.Sprintf("%s[%s]", tt.Name, types.Mangle(args))}
	default:
		return nil
	}
}

func (c *Checker) resolveNamedType(t *ast.NamedType) types.Type {
	if k, ok := types.LookupPrimitive(t.Name); ok {
		return c.interner.Intern(&types.Primitive{Kind: k})
	}
	switch t.Name {
	case "void":
		return c.interner.Intern(&types.Void{})
	case "str":
		return c.interner.Intern(&types.Str{})
	}
	if c.genericParams[t.Name] {
		return &types.Generic{Param: t.Name}
	}
	if _, ok := c.classes[t.Name]; ok {
		return &types.Class{Name: t.Name}
	}
	if _, ok := c.structs[t.Name]; ok {
		return &types.Struct{Name: t.Name}
	}
	if _, ok := c.enums[t.Name]; ok {
		return &types.Enum{Name: t.Name}
	}
	if _, ok := c.interfaces[t.Name]; ok {
		return &types.Interface{Name: t.Name}
	}
	c.sink.Errorf(diag.TC001, t.P, "unknown type %q", t.Name)
	return nil
}
