package emit

import "github.com/bismut-lang/bismut/internal/types"

// cPrimitive maps a primitive kind to its C99/stdint.h spelling.
func cPrimitive(k types.PrimKind) string {
	switch k {
	case types.I8:
		return "int8_t"
	case types.I16:
		return "int16_t"
	case types.I32:
		return "int32_t"
	case types.I64:
		return "int64_t"
	case types.U8:
		return "uint8_t"
	case types.U16:
		return "uint16_t"
	case types.U32:
		return "uint32_t"
	case types.U64:
		return "uint64_t"
	case types.F32:
		return "float"
	case types.F64:
		return "double"
	case types.Bool:
		return "bool"
	default:
		return "int64_t"
	}
}

// cType returns the C spelling of a resolved Bismut type, as it appears
// in a variable declaration, field, parameter or return position. Every
// reference-kind type is a pointer; every value-kind type is a plain
// struct/scalar copied by value (spec.md §4.6).
func (e *Emitter) cType(t types.Type) string {
	switch tt := t.(type) {
	case *types.Primitive:
		return cPrimitive(tt.Kind)
	case *types.Void:
		return "void"
	case *types.Str:
		return "bismut_Str*"
	case *types.NoneType:
		return "void*"
	case *types.List:
		e.useList(tt)
		return listType(tag(tt.Elem)) + "*"
	case *types.Dict:
		e.useDict(tt)
		return dictType(tag(tt.Key), tag(tt.Val)) + "*"
	case *types.Tuple:
		e.useTuple(tt)
		return tupleType(tupleTag(tt))
	case *types.FnPtr:
		return e.fnPtrTypedef(tt)
	case *types.Class:
		return classType(tt.Name) + "*"
	case *types.Struct:
		return structType(tt.Name)
	case *types.Enum:
		return enumType(tt.Name)
	case *types.Interface:
		return ifaceType(tt.Name) + "*"
	case *types.ExternOpaque:
		return "bismut_" + sanitizeCIdent(tt.Lib) + "_" + sanitizeCIdent(tt.Name) + "*"
	case *types.Generic:
		// Should never reach the emitter: monomorphization substitutes
		// every Generic before a function body is emitted.
		return "void*"
	default:
		return "void*"
	}
}

func tupleTag(t *types.Tuple) string {
	parts := make([]types.Type, len(t.Elems))
	copy(parts, t.Elems)
	return types.Mangle(parts)
}

// isRefKind is the ARC-eligibility test the emitter runs before
// inserting a retain/release pair for an lvalue of this type.
func isRefKind(t types.Type) bool {
	return t != nil && !t.IsValueKind()
}
