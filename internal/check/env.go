package check

import "github.com/bismut-lang/bismut/internal/types"

// env is a lexical scope chain mapping a local/parameter name to its
// checked type and const-ness (spec.md §4.5: `const` bindings reject any
// later assignment).
type env struct {
	parent *env
	vars   map[string]binding
}

type binding struct {
	typ     types.Type
	isConst bool
}

func newEnv(parent *env) *env {
	return &env{parent: parent, vars: make(map[string]binding)}
}

func (e *env) child() *env { return newEnv(e) }

func (e *env) define(name string, t types.Type, isConst bool) {
	e.vars[name] = binding{typ: t, isConst: isConst}
}

func (e *env) lookup(name string) (binding, bool) {
	for s := e; s != nil; s = s.parent {
		if b, ok := s.vars[name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

// Env is env's exported alias: the emitter builds a root scope and
// threads it through ExprType to recompute the type of an already-checked
// expression without duplicating the checker's inference rules.
type Env = env

// NewEnv creates an empty root scope.
func NewEnv() *Env { return newEnv(nil) }

// Child opens a nested scope.
func (e *Env) Child() *Env { return e.child() }

// Define binds name in scope e.
func (e *Env) Define(name string, t types.Type, isConst bool) { e.define(name, t, isConst) }

// Lookup resolves name up the scope chain, as the checker itself would.
func (e *Env) Lookup(name string) (types.Type, bool) {
	b, ok := e.lookup(name)
	if !ok {
		return nil, false
	}
	return b.typ, true
}
