// Package preprocess implements Bismut's text-level conditional
// compilation pass (spec.md §4.1): `@define`/`@if`/`@elif`/`@else`/`@end`
// directives in column-leading position, evaluated before lexing.
package preprocess

import (
	"bufio"
	"strings"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/diag"
)

// HostPlatform returns the single predefined platform symbol for goos,
// one of __LINUX__, __MACOS__ or __WIN__ (spec.md §4.1).
func HostPlatform(goos string) string {
	switch goos {
	case "darwin":
		return "__MACOS__"
	case "windows":
		return "__WIN__"
	default:
		return "__LINUX__"
	}
}

// frame tracks one nested @if/@elif/@else/@end block during the scan.
type frame struct {
	// taken is true once some branch of this conditional has already
	// been emitted; once true, later @elif/@else branches stay dead even
	// if their own condition is true.
	taken bool
	// active is true when the current branch (between the last directive
	// seen in this frame and the next one) should be emitted, given both
	// this frame's own condition and every enclosing frame's activity.
	active bool
	// parentActive records whether the enclosing context was active when
	// this frame was opened, so a dead branch's nested @if evaluates to
	// "always dead" regardless of its own condition (spec.md §4.1: a
	// nested @define inside a dead branch is NOT evaluated, and by the
	// same rule neither is a nested @if's condition).
	parentActive bool
	sawElse      bool
}

// Run filters source text, replacing every line inside a false branch
// with a blank line so downstream (line, col) positions stay stable
// (spec.md §4.1). defines is mutated by `@define` directives encountered
// in a live branch. Files containing no `@` character at all pass through
// unchanged, byte for byte; any other file is returned with its lines
// joined by "\n" and without a trailing newline.
func Run(source string, file string, defines map[string]bool, sink *diag.Sink) string {
	if !strings.Contains(source, "@") {
		return source
	}

	lines := splitKeepCount(source)
	out := make([]string, len(lines))
	var stack []*frame
	currentActive := func() bool {
		if len(stack) == 0 {
			return true
		}
		return stack[len(stack)-1].active
	}

	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		lineNo := i + 1

		if !strings.HasPrefix(trimmed, "@") {
			if currentActive() {
				out[i] = line
			}
			continue
		}

		directive, arg := splitDirective(trimmed)
		pos := ast.Pos{File: file, Line: lineNo, Col: 1}

		switch directive {
		case "@define":
			if currentActive() {
				defines[arg] = true
			}
		case "@if":
			parentActive := currentActive()
			cond := parentActive && defines[arg]
			stack = append(stack, &frame{active: cond, taken: cond, parentActive: parentActive})
		case "@elif":
			if len(stack) == 0 {
				sink.Errorf("PRE003", pos, "@elif without matching @if")
				break
			}
			f := stack[len(stack)-1]
			if f.sawElse {
				sink.Errorf("PRE003", pos, "@elif after @else")
			}
			if f.taken || !f.parentActive {
				f.active = false
			} else {
				f.active = defines[arg]
				f.taken = f.active
			}
		case "@else":
			if len(stack) == 0 {
				sink.Errorf("PRE003", pos, "@else without matching @if")
				break
			}
			f := stack[len(stack)-1]
			if f.sawElse {
				sink.Errorf("PRE003", pos, "duplicate @else")
			}
			f.sawElse = true
			if f.taken || !f.parentActive {
				f.active = false
			} else {
				f.active = true
				f.taken = true
			}
		case "@end":
			if len(stack) == 0 {
				sink.Errorf("PRE001", pos, "unmatched @end")
				break
			}
			stack = stack[:len(stack)-1]
		default:
			if currentActive() {
				out[i] = line
			}
			continue
		}
		// directive lines themselves are always blanked
	}

	if len(stack) > 0 {
		sink.Errorf("PRE002", ast.Pos{File: file, Line: len(lines), Col: 1}, "unterminated @if/@elif conditional")
	}

	return strings.Join(out, "\n")
}

// splitKeepCount splits source into lines without their newline bytes. A
// trailing newline yields no final empty element, so joining the result
// drops it; an empty source yields a single empty line.
func splitKeepCount(source string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// splitDirective splits a directive line's leading `@word` from its
// trailing argument symbol.
func splitDirective(trimmed string) (directive, arg string) {
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return "", ""
	}
	directive = fields[0]
	if len(fields) > 1 {
		arg = fields[1]
	}
	return directive, arg
}
