package ast

import (
	"fmt"
	"strings"
)

// TypeExpr is a type as written in source, before the checker resolves it
// to a types.Type. Mirrors the tagged variant in spec.md §3.
type TypeExpr interface {
	Node
	typeExprNode()
	String() string
}

// NamedType is a primitive, class, struct, enum, interface or generic
// parameter name (`i32`, `Circle`, `T`), distinguished later by the
// resolver/checker via symbol lookup.
type NamedType struct {
	Name string
	P    Pos
}

func (t *NamedType) Position() Pos { return t.P }
func (t *NamedType) typeExprNode() {}
func (t *NamedType) String() string { return t.Name }

// ListType is `List[Elem]`.
type ListType struct {
	Elem TypeExpr
	P    Pos
}

func (t *ListType) Position() Pos { return t.P }
func (t *ListType) typeExprNode() {}
func (t *ListType) String() string { return fmt.Sprintf("List[%s]", t.Elem) }

// DictType is `Dict[Key, Val]`.
type DictType struct {
	Key, Val TypeExpr
	P        Pos
}

func (t *DictType) Position() Pos { return t.P }
func (t *DictType) typeExprNode() {}
func (t *DictType) String() string { return fmt.Sprintf("Dict[%s, %s]", t.Key, t.Val) }

// TupleType is `(T1, T2, ...)`, n>=2.
type TupleType struct {
	Elems []TypeExpr
	P     Pos
}

func (t *TupleType) Position() Pos { return t.P }
func (t *TupleType) typeExprNode() {}
func (t *TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FnPtrType is `fn(params) -> ret`, spelled in source via a parameter
// list type position (function-pointer valued parameters/fields).
type FnPtrType struct {
	Params []TypeExpr
	Ret    TypeExpr
	P      Pos
}

func (t *FnPtrType) Position() Pos { return t.P }
func (t *FnPtrType) typeExprNode() {}
func (t *FnPtrType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.Ret)
}

// GenericInstType is `Name[Arg1, Arg2, ...]` applied to a user generic
// function/type, distinct from the built-in ListType/DictType shapes.
type GenericInstType struct {
	Name string
	Args []TypeExpr
	P    Pos
}

func (t *GenericInstType) Position() Pos { return t.P }
func (t *GenericInstType) typeExprNode() {}
func (t *GenericInstType) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", t.Name, strings.Join(parts, ", "))
}
