package emit

import (
	"github.com/bismut-lang/bismut/internal/check"
	"github.com/bismut-lang/bismut/internal/types"
)

// writeInitGlobals assigns every global's initializer in declaration
// order inside a dedicated function, since a C static initializer can't
// call a constructor or another global's value (spec.md §4.6). Globals
// are zero-declared at file scope by writeGlobals and only take their
// real value once bismut_init_globals runs, at the very start of main.
func (e *Emitter) writeInitGlobals(w *cWriter) {
	w.line("static void bismut_init_globals(void) {")
	w.in()
	for _, name := range sortedKeys(e.chk.Globals()) {
		d := e.chk.Globals()[name]
		env := check.NewEnv()
		fw := &funcWriter{e: e, w: w, env: env}
		var t types.Type
		if d.Type != nil {
			t = e.chk.ResolveType(d.Type)
		} else {
			t = e.chk.ExprType(d.Init, env)
		}
		val := fw.emitExpr(d.Init)
		cname := "bismut_g_" + sanitizeCIdent(name)
		w.linef("%s = %s;", cname, val)
		if isRefKind(t) && !fw.isFreshValue(d.Init) {
			w.linef("bismut_retain((void*)%s);", cname)
		}
	}
	w.out()
	w.line("}")
	w.blank()
}

// writeExitGlobals releases every reference-kind global in reverse
// declaration order, run once at process exit (spec.md §4.6: static
// locals and globals are never released mid-program, only here).
func (e *Emitter) writeExitGlobals(w *cWriter) {
	w.line("static void bismut_exit_globals(void) {")
	w.in()
	names := sortedKeys(e.chk.Globals())
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		d := e.chk.Globals()[name]
		var t types.Type
		if d.Type != nil {
			t = e.chk.ResolveType(d.Type)
		} else {
			t = e.chk.ExprType(d.Init, check.NewEnv())
		}
		if isRefKind(t) {
			cname := "bismut_g_" + sanitizeCIdent(name)
			w.linef("bismut_release((void*)%s, bismut_%s_dtor);", cname, refDtorName(t))
		}
	}
	w.out()
	w.line("}")
	w.blank()
}

// writeMain emits the process entry point: stash argc/argv for the os
// extern family, initialize globals, run the user's `main`, release
// globals, and translate main's return value (if any) into the process
// exit code.
func (e *Emitter) writeMain(w *cWriter) {
	userMain, hasMain := e.chk.Funcs()["main"]

	w.line("int main(int argc, char **argv) {")
	w.in()
	w.line("bismut_argc = argc;")
	w.line("bismut_argv = argv;")
	w.line("bismut_init_globals();")
	if hasMain {
		if userMain.Ret != nil {
			w.linef("int64_t __rc = (int64_t)%s();", funcName("main"))
			w.line("bismut_exit_globals();")
			w.line("return (int)__rc;")
		} else {
			w.linef("%s();", funcName("main"))
			w.line("bismut_exit_globals();")
			w.line("return 0;")
		}
	} else {
		w.line("bismut_exit_globals();")
		w.line("return 0;")
	}
	w.out()
	w.line("}")
	w.blank()
}
