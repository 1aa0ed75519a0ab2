// Package diag provides centralized diagnostic code definitions and the
// aggregating sink every compiler stage reports through (spec.md §7).
package diag

// Error/warning codes, organized by the stage that raises them. Codes are
// stable identifiers referenced by tests; they appear neither as a
// separate JSON field (the analyze shape in spec.md §6 carries only
// severity/position/message) nor inside the message text, but keeping them as named constants avoids typo'd duplicate messages
// across call sites, the way the teacher's errors.codes.go does for its
// own phases.
const (
	// Preprocessor (PRE###)
	PRE001 = "PRE001" // unmatched @end
	PRE002 = "PRE002" // unterminated @if/@elif
	PRE003 = "PRE003" // @elif/@else without matching @if

	// Lexer (LEX###)
	LEX001 = "LEX001" // unterminated string literal
	LEX002 = "LEX002" // bad escape sequence
	LEX003 = "LEX003" // invalid character
	LEX004 = "LEX004" // unterminated char literal

	// Parser (PAR###)
	PAR001 = "PAR001" // unexpected token
	PAR002 = "PAR002" // missing block terminator `end`
	PAR003 = "PAR003" // malformed declaration header
	PAR004 = "PAR004" // break/continue outside loop
	PAR005 = "PAR005" // malformed multi-assign destructuring
	PAR006 = "PAR006" // malformed generic argument list

	// Import resolver (RES###)
	RES001 = "RES001" // module file not found
	RES002 = "RES002" // circular import
	RES003 = "RES003" // name clash after mangling
	RES004 = "RES004" // import not at top of file

	// Type checker (TC###)
	TC001 = "TC001" // type mismatch
	TC002 = "TC002" // mixed integer/float width
	TC003 = "TC003" // disallowed dict key type
	TC004 = "TC004" // illegal truthiness operand
	TC005 = "TC005" // interface not fully implemented
	TC006 = "TC006" // missing init method
	TC007 = "TC007" // illegal struct field (reference kind)
	TC008 = "TC008" // assignment to const
	TC009 = "TC009" // unknown identifier
	TC010 = "TC010" // tuple arity mismatch in destructuring
	TC011 = "TC011" // `as` target not a class implementing the interface
	TC012 = "TC012" // unresolved generic type parameter

	// Warnings (WARN###)
	WARN001 = "WARN001" // reference cycle reachable through class fields

	// Runtime panics reported by emitted programs, not the compiler itself;
	// listed here because the emitter embeds these kinds into generated
	// panic calls (spec.md §6 Runtime ABI, §7).
	RuntimeKindPanic  = "panic"
	RuntimeKindType   = "type"
	RuntimeKindOOB    = "oob"
	RuntimeKindKey    = "key"
	RuntimeKindAlloc  = "alloc"
	RuntimeKindIO     = "io"
	RuntimeKindAssert = "assert"
)
