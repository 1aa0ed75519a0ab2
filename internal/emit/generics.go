package emit

import (
	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/check"
	"github.com/bismut-lang/bismut/internal/types"
)

// ensureGenericInstance monomorphizes fn for one concrete set of type
// arguments (spec.md §4.5), emitting exactly one C definition per distinct
// instName the whole translation unit calls. The first emission pass
// over every function body discovers every instantiation a program
// actually uses (see Emit's warm-up pass); this just memoizes by name so
// a second occurrence of the same instantiation is a no-op.
func (e *Emitter) ensureGenericInstance(fn *ast.FuncDecl, subs map[string]types.Type, instName string) {
	if e.generics[instName] {
		return
	}
	e.generics[instName] = true

	buf := newCWriter()
	ret := "void"
	if fn.Ret != nil {
		ret = e.cType(types.Substitute(e.chk.ResolveType(fn.Ret), subs))
	}

	env := check.NewEnv()
	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		pt := types.Substitute(e.chk.ResolveType(p.Type), subs)
		env.Define(p.Name, pt, false)
		params = append(params, e.cType(pt)+" "+sanitizeCIdent(p.Name))
	}
	if len(params) == 0 {
		params = []string{"void"}
	}

	buf.linef("static %s %s(%s) {", ret, instName, joinCommas(params))
	buf.in()
	var retType types.Type
	if fn.Ret != nil {
		retType = types.Substitute(e.chk.ResolveType(fn.Ret), subs)
	}
	fw := &funcWriter{e: e, w: buf, env: env, retType: retType}
	fw.writeBody(fn.Body)
	buf.out()
	buf.line("}")
	buf.blank()

	e.genOrder = append(e.genOrder, instName)
	e.genSrc[instName] = buf.String()
}

// writeGenerics emits every monomorphized instantiation discovered while
// walking the program's bodies, in first-seen order (spec.md §8).
func (e *Emitter) writeGenerics(w *cWriter) {
	for _, name := range e.genOrder {
		w.raw(e.genSrc[name])
	}
}
