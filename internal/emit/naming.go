package emit

import (
	"strings"
	"unicode"

	"github.com/bismut-lang/bismut/internal/types"
)

// sanitizeCIdent rewrites an arbitrary name into a legal C identifier,
// the same rule langlang's C backend applies to rule names before they
// become function names.
func sanitizeCIdent(s string) string {
	if s == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// tag produces the deterministic suffix spec.md §4.6 wants for one
// instantiated container element/key/value type, reusing the checker's
// canonical mangling so a List[i32] and a Dict[str,i32] referenced from
// two different call sites collapse onto the same generated template.
func tag(t types.Type) string {
	return types.Mangle([]types.Type{t})
}

func funcName(name string) string  { return "bismut_" + sanitizeCIdent(name) }
func classType(name string) string { return "struct bismut_" + sanitizeCIdent(name) }
func structType(name string) string { return "struct bismut_" + sanitizeCIdent(name) }
func enumType(name string) string  { return "bismut_" + sanitizeCIdent(name) + "_t" }
func ifaceType(name string) string { return "struct bismut_" + sanitizeCIdent(name) }
func listType(elemTag string) string { return "struct bismut_List_" + elemTag }
func dictType(keyTag, valTag string) string {
	return "struct bismut_Dict_" + keyTag + "_" + valTag
}
func tupleType(tag string) string { return "struct bismut_Tuple_" + tag }
