package emit

import (
	"sort"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/check"
	"github.com/bismut-lang/bismut/internal/types"
)

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// enumValues computes each variant's i64 value: auto-incrementing from
// 0, with an explicit `= N` resetting the running counter (spec.md
// §4.5).
func enumValues(d *ast.EnumDecl) []int64 {
	out := make([]int64, len(d.Variants))
	var running int64
	for i, v := range d.Variants {
		if v.HasValue {
			running = v.Value
		}
		out[i] = running
		running++
	}
	return out
}

func (e *Emitter) writeEnums(w *cWriter) {
	for _, name := range sortedKeys(e.chk.Enums()) {
		d := e.chk.Enums()[name]
		vals := enumValues(d)
		w.linef("typedef enum {")
		w.in()
		for i, v := range d.Variants {
			w.linef("bismut_%s_%s = %d,", sanitizeCIdent(d.Name), sanitizeCIdent(v.Name), vals[i])
		}
		w.out()
		w.linef("} %s;", enumType(d.Name))
		w.blank()
	}
}

// writeForwardDecls predeclares every class/struct/interface type and every
// non-generic top-level function so mutually-recursive declarations (a
// class method returning another class, two functions calling each other)
// compile regardless of source order. Methods are not predeclared.
func (e *Emitter) writeForwardDecls(w *cWriter) {
	for _, name := range sortedKeys(e.chk.Classes()) {
		w.linef("%s;", classType(name))
	}
	for _, name := range sortedKeys(e.chk.Structs()) {
		w.linef("%s;", structType(name))
	}
	for _, name := range sortedKeys(e.chk.Interfaces()) {
		w.linef("%s;", ifaceType(name))
	}
	for _, name := range sortedKeys(e.chk.Funcs()) {
		d := e.chk.Funcs()[name]
		if len(d.Generics) > 0 {
			continue
		}
		ret, params := "void", []string{}
		if d.Ret != nil {
			ret = e.cType(e.chk.ResolveType(d.Ret))
		}
		for _, p := range d.Params {
			params = append(params, e.cType(e.chk.ResolveType(p.Type)))
		}
		if len(params) == 0 {
			params = []string{"void"}
		}
		w.linef("static %s %s(%s);", ret, funcName(d.Name), joinCommas(params))
	}
	if len(e.chk.Classes())+len(e.chk.Structs())+len(e.chk.Interfaces()) > 0 {
		w.blank()
	}
}

func (e *Emitter) writeStructs(w *cWriter) {
	for _, name := range sortedKeys(e.chk.Structs()) {
		d := e.chk.Structs()[name]
		w.linef("%s {", structType(name))
		w.in()
		for _, f := range d.Fields {
			w.linef("%s %s;", e.cType(e.chk.ResolveType(f.Type)), sanitizeCIdent(f.Name))
		}
		w.out()
		w.line("};")
		w.blank()
		for _, m := range d.Methods {
			e.writeFuncDef(w, m, &types.Struct{Name: name})
		}
	}
}

func (e *Emitter) writeClasses(w *cWriter) {
	for _, name := range sortedKeys(e.chk.Classes()) {
		d := e.chk.Classes()[name]
		w.linef("%s {", classType(name))
		w.in()
		w.line("bismut_Rc rc;")
		for _, f := range d.Fields {
			w.linef("%s %s;", e.cType(e.chk.ResolveType(f.Type)), sanitizeCIdent(f.Name))
		}
		w.out()
		w.line("};")
		w.blank()

		e.writeClassDtor(w, d)
		e.writeClassCtor(w, d)
		for _, m := range d.Methods {
			if m.Name == "init" {
				continue
			}
			e.writeFuncDef(w, m, &types.Class{Name: name})
		}
	}
}

func (e *Emitter) writeClassDtor(w *cWriter, d *ast.ClassDecl) {
	w.linef("static void bismut_%s_dtor(void *p) {", sanitizeCIdent(d.Name))
	w.in()
	w.linef("%s *self = (%s*)p;", classType(d.Name), classType(d.Name))
	for _, f := range d.Fields {
		ft := e.chk.ResolveType(f.Type)
		if isRefKind(ft) {
			w.linef("bismut_release((void*)self->%s, bismut_%s_dtor);", sanitizeCIdent(f.Name), refDtorName(ft))
		}
	}
	w.out()
	w.line("}")
	w.blank()
}

// writeClassCtor emits the allocator that zero-initializes rc=1 and runs
// the class's `init` method body, if it declares one (spec.md §4.6).
func (e *Emitter) writeClassCtor(w *cWriter, d *ast.ClassDecl) {
	var initMethod *ast.FuncDecl
	for _, m := range d.Methods {
		if m.Name == "init" {
			initMethod = m
			break
		}
	}

	params := []*ast.Param{}
	if initMethod != nil {
		params = initMethod.Params
	}
	sig := make([]string, len(params))
	for i, p := range params {
		sig[i] = e.cType(e.chk.ResolveType(p.Type)) + " " + sanitizeCIdent(p.Name)
	}
	if len(sig) == 0 {
		sig = []string{"void"}
	}

	w.linef("static %s *bismut_%s_new(%s) {", classType(d.Name), sanitizeCIdent(d.Name), joinCommas(sig))
	w.in()
	w.linef("%s *self = bismut_alloc(sizeof(%s));", classType(d.Name), classType(d.Name))
	w.line("bismut_rc_init(&self->rc);")
	if initMethod != nil {
		env := check.NewEnv()
		env.Define("self", &types.Class{Name: d.Name}, false)
		for _, p := range initMethod.Params {
			env.Define(p.Name, e.chk.ResolveType(p.Type), false)
		}
		fw := &funcWriter{e: e, w: w, env: env, retType: nil}
		fw.writeBody(initMethod.Body)
	}
	w.line("return self;")
	w.out()
	w.line("}")
	w.blank()
}

func (e *Emitter) writeInterfaces(w *cWriter) {
	for _, name := range sortedKeys(e.chk.Interfaces()) {
		d := e.chk.Interfaces()[name]
		vt := "bismut_" + sanitizeCIdent(name) + "_Vtbl"
		w.linef("typedef struct %s {", vt)
		w.in()
		for _, m := range d.Methods {
			ret := "void"
			if m.Ret != nil {
				ret = e.cType(e.chk.ResolveType(m.Ret))
			}
			params := make([]string, 0, len(m.Params)+1)
			params = append(params, "void*")
			for _, p := range m.Params {
				params = append(params, e.cType(e.chk.ResolveType(p.Type)))
			}
			w.linef("%s (*%s)(%s);", ret, sanitizeCIdent(m.Name), joinCommas(params))
		}
		w.line("void (*dtor)(void*);")
		w.out()
		w.linef("} %s;", vt)
		w.blank()

		w.linef("%s {", ifaceType(name))
		w.in()
		w.line("bismut_Rc rc;")
		w.line("void *obj;")
		w.linef("const %s *vtbl;", vt)
		w.out()
		w.line("};")
		w.blank()

		w.linef("static void bismut_%s_dtor(void *p) {", sanitizeCIdent(name))
		w.in()
		w.linef("%s *self = (%s*)p;", ifaceType(name), ifaceType(name))
		w.line("if (self->obj) self->vtbl->dtor(self->obj);")
		w.out()
		w.line("}")
		w.blank()
	}

	// One static vtable per (class, interface) implementing pair, built
	// from the class's matching-name methods (spec.md §4.6).
	for _, cname := range sortedKeys(e.chk.Classes()) {
		cd := e.chk.Classes()[cname]
		for _, iname := range cd.Interfaces {
			id, ok := e.chk.Interfaces()[iname]
			if !ok {
				continue
			}
			vt := "bismut_" + sanitizeCIdent(iname) + "_Vtbl"
			w.linef("static const %s bismut_%s_as_%s_vtbl = {", vt, sanitizeCIdent(cname), sanitizeCIdent(iname))
			w.in()
			for _, m := range id.Methods {
				w.linef(".%s = (void*)bismut_%s_%s,", sanitizeCIdent(m.Name), sanitizeCIdent(cname), sanitizeCIdent(m.Name))
			}
			w.linef(".dtor = (void*)bismut_%s_dtor,", sanitizeCIdent(cname))
			w.out()
			w.line("};")
			w.blank()
		}
	}
}

func (e *Emitter) writeExterns(w *cWriter) {
	for _, name := range sortedKeys(e.chk.Externs()) {
		d := e.chk.Externs()[name]
		ret := "void"
		if d.Ret != nil {
			ret = e.cType(e.chk.ResolveType(d.Ret))
		}
		params := make([]string, len(d.Params))
		for i, p := range d.Params {
			params[i] = e.cType(e.chk.ResolveType(p.Type))
		}
		if len(params) == 0 {
			params = []string{"void"}
		}
		cname := d.CName
		if cname == "" {
			cname = sanitizeCIdent(d.Name)
		}
		w.linef("extern %s %s(%s);", ret, cname, joinCommas(params))
		if cname != funcName(d.Name) {
			w.linef("#define %s %s", funcName(d.Name), cname)
		}
	}
	if len(e.chk.Externs()) > 0 {
		w.blank()
	}
}

func (e *Emitter) writeGlobals(w *cWriter) {
	for _, name := range sortedKeys(e.chk.Globals()) {
		d := e.chk.Globals()[name]
		var t types.Type
		if d.Type != nil {
			t = e.chk.ResolveType(d.Type)
		} else {
			t = e.chk.ExprType(d.Init, check.NewEnv())
		}
		w.linef("static %s bismut_g_%s;", e.cType(t), sanitizeCIdent(name))
	}
	if len(e.chk.Globals()) > 0 {
		w.blank()
	}
}

func (e *Emitter) writeFuncs(w *cWriter) {
	for _, name := range sortedKeys(e.chk.Funcs()) {
		d := e.chk.Funcs()[name]
		if len(d.Generics) > 0 {
			// Monomorphized on demand at each call site; nothing to emit
			// for the abstract declaration itself.
			continue
		}
		e.writeFuncDef(w, d, nil)
	}
}

func (e *Emitter) writeFuncDef(w *cWriter, fn *ast.FuncDecl, self types.Type) {
	ret := "void"
	if fn.Ret != nil {
		ret = e.cType(e.chk.ResolveType(fn.Ret))
	}
	params := make([]string, 0, len(fn.Params)+1)
	env := check.NewEnv()
	if self != nil {
		params = append(params, e.cType(self)+" self")
		env.Define("self", self, false)
	}
	for _, p := range fn.Params {
		pt := e.chk.ResolveType(p.Type)
		env.Define(p.Name, pt, false)
		params = append(params, e.cType(pt)+" "+sanitizeCIdent(p.Name))
	}
	if len(params) == 0 {
		params = []string{"void"}
	}

	cfname := funcName(fn.Name)
	if self != nil {
		recv := ""
		switch st := self.(type) {
		case *types.Class:
			recv = st.Name
		case *types.Struct:
			recv = st.Name
		}
		cfname = "bismut_" + sanitizeCIdent(recv) + "_" + sanitizeCIdent(fn.Name)
	}

	w.linef("static %s %s(%s) {", ret, cfname, joinCommas(params))
	w.in()
	var retType types.Type
	if fn.Ret != nil {
		retType = e.chk.ResolveType(fn.Ret)
	}
	fw := &funcWriter{e: e, w: w, env: env, retType: retType}
	fw.writeBody(fn.Body)
	w.out()
	w.line("}")
	w.blank()
}
