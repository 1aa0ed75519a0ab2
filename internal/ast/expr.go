package ast

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// IntLit is a polymorphic integer literal; Radix is kept for diagnostics.
type IntLit struct {
	Value int64
	Radix int
	P     Pos
}

func (e *IntLit) Position() Pos { return e.P }
func (e *IntLit) exprNode()     {}

// FloatLit is a float64-valued literal.
type FloatLit struct {
	Value float64
	P     Pos
}

func (e *FloatLit) Position() Pos { return e.P }
func (e *FloatLit) exprNode()     {}

// StringLit carries decoded text and the spelling kind for the emitter's
// literal interning (spec.md §4.5, §4.6).
type StringLit struct {
	Value  string
	Triple bool
	P      Pos
}

func (e *StringLit) Position() Pos { return e.P }
func (e *StringLit) exprNode()     {}

// CharLit is an i64-valued character literal.
type CharLit struct {
	Value int64
	P     Pos
}

func (e *CharLit) Position() Pos { return e.P }
func (e *CharLit) exprNode()     {}

// BoolLit is `True` / `False`.
type BoolLit struct {
	Value bool
	P     Pos
}

func (e *BoolLit) Position() Pos { return e.P }
func (e *BoolLit) exprNode()     {}

// NoneLit is the bottom literal for reference-kind types.
type NoneLit struct{ P Pos }

func (e *NoneLit) Position() Pos { return e.P }
func (e *NoneLit) exprNode()     {}

// Ident is a bare identifier reference.
type Ident struct {
	Name string
	P    Pos
}

func (e *Ident) Position() Pos { return e.P }
func (e *Ident) exprNode()     {}

// MemberExpr is `x.field` (field access or zero-arg method reference).
type MemberExpr struct {
	X    Expr
	Name string
	P    Pos
}

func (e *MemberExpr) Position() Pos { return e.P }
func (e *MemberExpr) exprNode()     {}

// IndexExpr is `x[i]` (list/dict subscript).
type IndexExpr struct {
	X     Expr
	Index Expr
	P     Pos
}

func (e *IndexExpr) Position() Pos { return e.P }
func (e *IndexExpr) exprNode()     {}

// CallExpr is `f(args...)`, a plain call or a method call when Fn is a
// MemberExpr.
type CallExpr struct {
	Fn   Expr
	Args []Expr
	P    Pos
}

func (e *CallExpr) Position() Pos { return e.P }
func (e *CallExpr) exprNode()     {}

// GenericCallExpr is `name[T1,...](args...)`, distinguished from a
// subscript by the following `(` (spec.md §4.3).
type GenericCallExpr struct {
	Name     string
	TypeArgs []TypeExpr
	Args     []Expr
	P        Pos
}

func (e *GenericCallExpr) Position() Pos { return e.P }
func (e *GenericCallExpr) exprNode()     {}

// UnaryOp enumerates the unary operators.
type UnaryOp int

const (
	UnaryNot UnaryOp = iota
	UnaryNeg
	UnaryBitNot
)

type UnaryExpr struct {
	Op UnaryOp
	X  Expr
	P  Pos
}

func (e *UnaryExpr) Position() Pos { return e.P }
func (e *UnaryExpr) exprNode()     {}

// BinaryOp enumerates binary operators, ordered roughly by the precedence
// table in spec.md §4.3 (not itself load-bearing; precedence lives in the
// parser).
type BinaryOp int

const (
	BinMul BinaryOp = iota
	BinDiv
	BinMod
	BinAdd
	BinSub
	BinShl
	BinShr
	BinLt
	BinLe
	BinGt
	BinGe
	BinEq
	BinNe
	BinBitAnd
	BinBitXor
	BinBitOr
	BinAnd
	BinOr
)

// BinaryExpr is a left-associative binary operator application. `is`/`as`
// are modeled as their own node kinds below since their RHS is a type
// name, not an arbitrary expression (spec.md §4.3).
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
	P     Pos
}

func (e *BinaryExpr) Position() Pos { return e.P }
func (e *BinaryExpr) exprNode()     {}

// IsExpr is `x is TypeName`.
type IsExpr struct {
	X    Expr
	Type TypeExpr
	P    Pos
}

func (e *IsExpr) Position() Pos { return e.P }
func (e *IsExpr) exprNode()     {}

// AsExpr is `x as TypeName`.
type AsExpr struct {
	X    Expr
	Type TypeExpr
	P    Pos
}

func (e *AsExpr) Position() Pos { return e.P }
func (e *AsExpr) exprNode()     {}

// CastExpr is an explicit primitive width cast `i32(x)`.
type CastExpr struct {
	Type TypeExpr
	X    Expr
	P    Pos
}

func (e *CastExpr) Position() Pos { return e.P }
func (e *CastExpr) exprNode()     {}

// TupleExpr is `(e1, e2, ...)`, n>=2.
type TupleExpr struct {
	Elems []Expr
	P     Pos
}

func (e *TupleExpr) Position() Pos { return e.P }
func (e *TupleExpr) exprNode()     {}

// ListLitExpr is `List[T]() { e, e, ... }`.
type ListLitExpr struct {
	Elem     TypeExpr
	Elements []Expr
	P        Pos
}

func (e *ListLitExpr) Position() Pos { return e.P }
func (e *ListLitExpr) exprNode()     {}

// DictEntry is one `k: v` pair inside a dict literal.
type DictEntry struct {
	Key, Value Expr
}

// DictLitExpr is `Dict[K,V]() { k: v, ... }`.
type DictLitExpr struct {
	Key, Val TypeExpr
	Entries  []DictEntry
	P        Pos
}

func (e *DictLitExpr) Position() Pos { return e.P }
func (e *DictLitExpr) exprNode()     {}

// ParenExpr preserves explicit parenthesization where it matters for
// diagnostics; otherwise transparent to the checker/emitter.
type ParenExpr struct {
	X Expr
	P Pos
}

func (e *ParenExpr) Position() Pos { return e.P }
func (e *ParenExpr) exprNode()     {}
