package emit

import (
	"fmt"
	"strings"
)

// cStringLiteral renders s as a C string literal array initializer,
// escaping every byte that isn't a safe printable ASCII character so the
// emitted source never depends on the host's source encoding.
func cStringLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, `\x%02x`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// cCharLiteral renders an i64 code point as a C integer constant; char
// literals are i64-valued (spec.md §3), not a C `char`.
func cCharLiteral(code int64) string {
	return fmt.Sprintf("%d", code)
}
