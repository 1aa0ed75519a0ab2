// Package emit is Bismut's C99 code generator (spec.md §4.6): it walks a
// checked, import-merged compilation unit and produces a single
// translation unit text, embedding the runtime ABI and instantiating one
// template per distinct container/tuple/function-pointer shape the
// program actually uses.
package emit

import (
	_ "embed"
	"sort"
	"strconv"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/check"
	"github.com/bismut-lang/bismut/internal/diag"
)

//go:embed runtime/runtime.h
var runtimeHeader string

//go:embed runtime/runtime.c
var runtimeSource string

// Emit produces the full C99 translation unit text for file, whose
// declarations have already been collected and body-checked by chk with
// no reported errors. Callers must not call Emit after chk.Check found
// any error (spec.md §7).
func Emit(file *ast.File, chk *check.Checker, sink *diag.Sink) string {
	e := newEmitter(sink, chk)
	w := newCWriter()

	w.line("/* Generated by the Bismut compiler. Do not edit. */")
	w.blank()
	w.raw(runtimeHeader)
	w.blank()
	w.raw(runtimeSource)
	w.blank()

	// Declaration bodies reference container/tuple/fnptr/generic-instance C
	// types and definitions as a side effect of cType/ensureGenericInstance,
	// so run a throwaway warm-up pass over every body first (mirroring the
	// checker's own declare-then-check two-pass structure) to populate
	// those instantiation tables before writing anything out for real.
	e.collectSignatures(file)
	warm := newCWriter()
	e.writeStructs(warm)
	e.writeClasses(warm)
	e.writeFuncs(warm)
	e.writeInitGlobals(warm)

	fwd := newCWriter()
	e.writeContainers(fwd)
	e.writeStringLiterals(fwd)
	e.writeEnums(fwd)
	e.writeForwardDecls(fwd)
	e.writeGenerics(fwd)
	e.writeStructs(fwd)
	e.writeClasses(fwd)
	e.writeInterfaces(fwd)
	e.writeExterns(fwd)
	e.writeGlobals(fwd)
	e.writeFuncs(fwd)
	e.writeInitGlobals(fwd)
	e.writeExitGlobals(fwd)
	e.writeMain(fwd)

	w.raw(fwd.String())
	return w.String()
}

// collectSignatures walks every declaration's signature (parameter
// types, return type, field types, global types) purely to force cType
// to discover and register every container/tuple/fnptr instantiation the
// program's declared surface requires, before any of those signatures
// are actually printed.
func (e *Emitter) collectSignatures(file *ast.File) {
	for _, d := range file.Decls {
		switch dd := d.(type) {
		case *ast.FuncDecl:
			e.touchFuncSig(dd)
		case *ast.ClassDecl:
			for _, f := range dd.Fields {
				e.cType(e.chk.ResolveType(f.Type))
			}
			for _, m := range dd.Methods {
				e.touchFuncSig(m)
			}
		case *ast.StructDecl:
			for _, f := range dd.Fields {
				e.cType(e.chk.ResolveType(f.Type))
			}
			for _, m := range dd.Methods {
				e.touchFuncSig(m)
			}
		case *ast.InterfaceDecl:
			for _, m := range dd.Methods {
				for _, p := range m.Params {
					e.cType(e.chk.ResolveType(p.Type))
				}
				if m.Ret != nil {
					e.cType(e.chk.ResolveType(m.Ret))
				}
			}
		case *ast.ExternDecl:
			for _, p := range dd.Params {
				e.cType(e.chk.ResolveType(p.Type))
			}
			if dd.Ret != nil {
				e.cType(e.chk.ResolveType(dd.Ret))
			}
		case *ast.GlobalVarDecl:
			if dd.Type != nil {
				e.cType(e.chk.ResolveType(dd.Type))
			}
		}
	}
}

func (e *Emitter) touchFuncSig(fn *ast.FuncDecl) {
	if len(fn.Generics) > 0 {
		// Generic signatures are only meaningful once substituted at a
		// call site; the emitter instantiates them lazily when walking a
		// GenericCallExpr rather than from the abstract declaration.
		return
	}
	for _, p := range fn.Params {
		e.cType(e.chk.ResolveType(p.Type))
	}
	if fn.Ret != nil {
		e.cType(e.chk.ResolveType(fn.Ret))
	}
}

// writeStringLiterals emits one immortal static Str per distinct literal
// text in the translation unit (spec.md §4.6).
func (e *Emitter) writeStringLiterals(w *cWriter) {
	lits := e.chk.StringLiterals()
	sort.Strings(lits)
	e.literals = lits
	if len(lits) == 0 {
		return
	}
	w.line("/* interned string literals */")
	for i, s := range lits {
		w.linef("static char bismut_lit_%d_data[] = %s;", i, cStringLiteral(s))
		w.linef("static bismut_Str bismut_lit_%d_obj = { .rc = { .count = BISMUT_RC_IMMORTAL }, .len = %d, .data = bismut_lit_%d_data };", i, len(s), i)
	}
	w.blank()
}

// litRef returns the C expression referencing string literal s's
// pre-built immortal Str object.
func (e *Emitter) litRef(s string) string {
	for i, lit := range e.literals {
		if lit == s {
			return sprintfAddr(i)
		}
	}
	return "NULL"
}

func sprintfAddr(i int) string {
	return "(&bismut_lit_" + strconv.Itoa(i) + "_obj)"
}
