package lexer

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

// bomUTF8 is the UTF-8 Byte Order Mark.
var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Normalize prepares raw source bytes for lexing, per spec.md §6's source
// file layout rule (UTF-8 text, byte `\n` terminates a logical line):
//  1. strips a leading UTF-8 BOM
//  2. rewrites CRLF to LF, so a file edited on Windows lexes identically
//     to the same file with Unix line endings
//  3. applies Unicode NFC normalization, so identifiers/strings spelled
//     with combining marks compare equal regardless of the source
//     encoding's composition choice
//
// Run once per file at lexer construction rather than per-rune during
// scanning.
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))

	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}

	return src
}
