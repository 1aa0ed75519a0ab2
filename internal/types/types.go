// Package types implements Bismut's semantic type representation: the
// nominal type lattice the checker resolves ast.TypeExpr into, plus the
// value-kind/reference-kind partition that drives both assignment
// semantics (spec.md §4.5) and ARC insertion in the emitter (spec.md
// §4.6).
package types

import (
	"fmt"
	"strings"
)

// Type is any resolved Bismut type. Unlike ast.TypeExpr, a Type is fully
// resolved: a Class/Struct/Enum/Interface/ExternOpaque name has already
// been checked to refer to a real declaration, and a Generic's type
// parameter has either been left abstract (inside the generic's own body)
// or substituted with a concrete argument (after monomorphization,
// spec.md §4.5).
type Type interface {
	String() string
	Equals(Type) bool
	// IsValueKind reports whether values of this type are copied by value
	// (primitives, enums, structs, tuples, fnptr) rather than by
	// reference-counted pointer (str, List, Dict, class, interface,
	// externopaque) — spec.md §3's central ARC-eligibility split.
	IsValueKind() bool
}

// Primitive is one of the fixed-width integer/float/bool kinds.
type Primitive struct {
	Kind PrimKind
}

// PrimKind enumerates the primitive kinds in the same order spec.md §3
// lists them.
type PrimKind int

const (
	I8 PrimKind = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	Bool
)

var primNames = map[PrimKind]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	F32: "f32", F64: "f64", Bool: "bool",
}

// primKindsByName supports resolving a primitive keyword's spelling back
// to its PrimKind, used by the checker when it sees an ast.NamedType.
var primKindsByName = func() map[string]PrimKind {
	m := make(map[string]PrimKind, len(primNames))
	for k, v := range primNames {
		m[v] = k
	}
	return m
}()

// LookupPrimitive resolves a primitive type keyword's spelling, reporting
// ok=false for any non-primitive name.
func LookupPrimitive(name string) (PrimKind, bool) {
	k, ok := primKindsByName[name]
	return k, ok
}

func (t *Primitive) String() string { return primNames[t.Kind] }
func (t *Primitive) Equals(o Type) bool {
	op, ok := o.(*Primitive)
	return ok && op.Kind == t.Kind
}
func (t *Primitive) IsValueKind() bool { return true }

// IsInteger reports whether the primitive is one of the eight integer
// widths (as opposed to f32/f64/bool).
func (t *Primitive) IsInteger() bool {
	return t.Kind >= I8 && t.Kind <= U64
}

// IsFloat reports whether the primitive is f32 or f64.
func (t *Primitive) IsFloat() bool { return t.Kind == F32 || t.Kind == F64 }

// IsUnsigned reports whether the primitive is one of the four unsigned
// integer widths.
func (t *Primitive) IsUnsigned() bool { return t.Kind >= U8 && t.Kind <= U64 }

// BitWidth returns the storage width in bits for an integer or float
// primitive; 1 for bool (spec.md §4.6 stores bool as a C `bool`, not
// necessarily 1 bit wide, but width comparisons only matter for
// numerics).
func (t *Primitive) BitWidth() int {
	switch t.Kind {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32, F32:
		return 32
	case I64, U64, F64:
		return 64
	case Bool:
		return 1
	default:
		return 0
	}
}

// Void is the no-value return type; only legal as a function's Ret.
type Void struct{}

func (t *Void) String() string     { return "void" }
func (t *Void) Equals(o Type) bool { _, ok := o.(*Void); return ok }
func (t *Void) IsValueKind() bool  { return true }

// Str is Bismut's reference-counted, immutable string type.
type Str struct{}

func (t *Str) String() string     { return "str" }
func (t *Str) Equals(o Type) bool { _, ok := o.(*Str); return ok }
func (t *Str) IsValueKind() bool  { return false }

// NoneType is the bottom type of `None`, assignable to any reference-kind
// type (spec.md §4.5).
type NoneType struct{}

func (t *NoneType) String() string     { return "None" }
func (t *NoneType) Equals(o Type) bool { _, ok := o.(*NoneType); return ok }
func (t *NoneType) IsValueKind() bool  { return false }

// List is a reference-counted growable array of Elem.
type List struct{ Elem Type }

func (t *List) String() string     { return fmt.Sprintf("List[%s]", t.Elem.String()) }
func (t *List) IsValueKind() bool  { return false }
func (t *List) Equals(o Type) bool {
	ol, ok := o.(*List)
	return ok && t.Elem.Equals(ol.Elem)
}

// Dict is a reference-counted hash map from Key to Val. The checker
// accepts only str or an integer primitive as a dict literal's Key and
// rejects bool, float and enum keys with TC003; this type just carries
// whatever Key was given.
type Dict struct{ Key, Val Type }

func (t *Dict) String() string { return fmt.Sprintf("Dict[%s, %s]", t.Key.String(), t.Val.String()) }
func (t *Dict) IsValueKind() bool { return false }
func (t *Dict) Equals(o Type) bool {
	od, ok := o.(*Dict)
	return ok && t.Key.Equals(od.Key) && t.Val.Equals(od.Val)
}

// Tuple is a fixed-arity (n >= 2), value-kind product type copied by
// memcpy (spec.md §4.6).
type Tuple struct{ Elems []Type }

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *Tuple) IsValueKind() bool { return true }
func (t *Tuple) Equals(o Type) bool {
	ot, ok := o.(*Tuple)
	if !ok || len(ot.Elems) != len(t.Elems) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].Equals(ot.Elems[i]) {
			return false
		}
	}
	return true
}

// FnPtr is a value-kind function pointer type.
type FnPtr struct {
	Params []Type
	Ret    Type
}

func (t *FnPtr) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	ret := "void"
	if t.Ret != nil {
		ret = t.Ret.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), ret)
}
func (t *FnPtr) IsValueKind() bool { return true }
func (t *FnPtr) Equals(o Type) bool {
	of, ok := o.(*FnPtr)
	if !ok || len(of.Params) != len(t.Params) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equals(of.Params[i]) {
			return false
		}
	}
	if (t.Ret == nil) != (of.Ret == nil) {
		return false
	}
	return t.Ret == nil || t.Ret.Equals(of.Ret)
}

// Class is a nominal, reference-counted heap type (spec.md §3).
type Class struct{ Name string }

func (t *Class) String() string     { return t.Name }
func (t *Class) Equals(o Type) bool { oc, ok := o.(*Class); return ok && oc.Name == t.Name }
func (t *Class) IsValueKind() bool  { return false }

// Struct is a nominal, value-kind composite copied by memcpy.
type Struct struct{ Name string }

func (t *Struct) String() string     { return t.Name }
func (t *Struct) Equals(o Type) bool { os, ok := o.(*Struct); return ok && os.Name == t.Name }
func (t *Struct) IsValueKind() bool  { return true }

// Enum is a nominal, value-kind (underlying i32) type.
type Enum struct{ Name string }

func (t *Enum) String() string     { return t.Name }
func (t *Enum) Equals(o Type) bool { oe, ok := o.(*Enum); return ok && oe.Name == t.Name }
func (t *Enum) IsValueKind() bool  { return true }

// Interface is a reference-kind fat-pointer (vtable + data) type.
type Interface struct{ Name string }

func (t *Interface) String() string     { return t.Name }
func (t *Interface) Equals(o Type) bool { oi, ok := o.(*Interface); return ok && oi.Name == t.Name }
func (t *Interface) IsValueKind() bool  { return false }

// ExternOpaque is a reference-kind handle to a type owned by an extern C
// library (spec.md §6); Bismut never sees its layout.
type ExternOpaque struct{ Lib, Name string }

func (t *ExternOpaque) String() string { return fmt.Sprintf("%s.%s", t.Lib, t.Name) }
func (t *ExternOpaque) Equals(o Type) bool {
	oe, ok := o.(*ExternOpaque)
	return ok && oe.Lib == t.Lib && oe.Name == t.Name
}
func (t *ExternOpaque) IsValueKind() bool { return false }

// Generic is an as-yet-unsubstituted type parameter, legal only while
// checking the body of its own generic declaration; monomorphization
// (spec.md §4.5) replaces every Generic with a concrete Type per
// instantiation before emission.
type Generic struct{ Param string }

func (t *Generic) String() string     { return t.Param }
func (t *Generic) Equals(o Type) bool { og, ok := o.(*Generic); return ok && og.Param == t.Param }
func (t *Generic) IsValueKind() bool  { return true }

// Substitute recursively replaces every Generic whose Param is a key of
// subs with its bound concrete Type, leaving unbound generics untouched.
// Used during monomorphization to specialize a generic function/class
// body for one set of type arguments.
func Substitute(t Type, subs map[string]Type) Type {
	switch tt := t.(type) {
	case *Generic:
		if sub, ok := subs[tt.Param]; ok {
			return sub
		}
		return tt
	case *List:
		return &List{Elem: Substitute(tt.Elem, subs)}
	case *Dict:
		return &Dict{Key: Substitute(tt.Key, subs), Val: Substitute(tt.Val, subs)}
	case *Tuple:
		elems := make([]Type, len(tt.Elems))
		for i, e := range tt.Elems {
			elems[i] = Substitute(e, subs)
		}
		return &Tuple{Elems: elems}
	case *FnPtr:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = Substitute(p, subs)
		}
		var ret Type
		if tt.Ret != nil {
			ret = Substitute(tt.Ret, subs)
		}
		return &FnPtr{Params: params, Ret: ret}
	default:
		return t
	}
}

// Mangle produces the deterministic, collision-resistant suffix
// monomorphization appends to a generic function/class's mangled C name
// per instantiation (spec.md §4.5): one segment per type argument, in
// declaration order, joined by "_".
func Mangle(args []Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = mangleOne(a)
	}
	return strings.Join(parts, "_")
}

func mangleOne(t Type) string {
	switch tt := t.(type) {
	case *Primitive:
		return tt.String()
	case *Str:
		return "str"
	case *List:
		return "List_" + mangleOne(tt.Elem)
	case *Dict:
		return "Dict_" + mangleOne(tt.Key) + "_" + mangleOne(tt.Val)
	case *Tuple:
		parts := make([]string, len(tt.Elems))
		for i, e := range tt.Elems {
			parts[i] = mangleOne(e)
		}
		return "Tuple_" + strings.Join(parts, "_")
	case *Class:
		return tt.Name
	case *Struct:
		return tt.Name
	case *Enum:
		return tt.Name
	case *Interface:
		return tt.Name
	case *ExternOpaque:
		return tt.Lib + "_" + tt.Name
	default:
		return t.String()
	}
}
