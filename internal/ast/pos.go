// Package ast defines Bismut's parse tree: declarations, statements,
// expressions and the type syntax that appears in source, plus the
// source-position plumbing every node and downstream diagnostic carries.
package ast

import "fmt"

// Pos is a source position. File paths are interned by the lexer/parser
// so equal files compare with ==; line/col are 1-based.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Span is a half-open source range, (start inclusive, length in bytes)
// used for diagnostic underlines and for schema.Diagnostic.Span.
type Span struct {
	Start Pos
	Len   int
}

// Node is implemented by every AST node.
type Node interface {
	Position() Pos
}
