package check

import "github.com/bismut-lang/bismut/internal/types"

// assignable reports whether a value of type src may initialize or be
// assigned into a binding of type dst (spec.md §4.5). The only exception
// to exact-type equality is that `None` may initialize any reference-kind
// type. Integer and char literals are always typed i64 and are not
// adapted to a narrower declared integer type, so `x: i32 = 0` is a
// type mismatch.
func assignable(dst, src types.Type) bool {
	if dst == nil || src == nil {
		return true // already reported as unknown; don't cascade
	}
	if dst.Equals(src) {
		return true
	}
	if _, isNone := src.(*types.NoneType); isNone && !dst.IsValueKind() {
		return true
	}
	return false
}
