package ast

// File is one parsed, not-yet-resolved source file (spec.md §3).
type File struct {
	Path    string
	Imports []*ImportDecl
	Decls   []Decl
	P       Pos
}

func (f *File) Position() Pos { return f.P }

// Decl is any top-level declaration.
type Decl interface {
	Node
	declNode()
}

// Param is one function/method parameter.
type Param struct {
	Name string
	Type TypeExpr
	P    Pos
}

func (p *Param) Position() Pos { return p.P }

// FuncDecl is `def name[Generics](params) -> Ret ... end`.
type FuncDecl struct {
	Name     string
	Generics []string // generic type parameter names, empty if non-generic
	Params   []*Param
	Ret      TypeExpr // nil means void
	Body     []Stmt
	P        Pos

	// IsMethod/Receiver are set when this FuncDecl was parsed as a class
	// or struct method; Receiver names the owning type.
	IsMethod bool
	Receiver string
}

func (d *FuncDecl) Position() Pos { return d.P }
func (d *FuncDecl) declNode()     {}

// FieldDecl is one class/struct field.
type FieldDecl struct {
	Name string
	Type TypeExpr
	P    Pos
}

func (f *FieldDecl) Position() Pos { return f.P }

// ClassDecl is `class Name : I1, I2 ... end` with fields and methods.
type ClassDecl struct {
	Name       string
	Interfaces []string
	Fields     []*FieldDecl
	Methods    []*FuncDecl
	P          Pos
}

func (d *ClassDecl) Position() Pos { return d.P }
func (d *ClassDecl) declNode()     {}

// StructDecl is `struct Name ... end`: value-kind fields only, no init,
// methods receive self by value (spec.md §4.5).
type StructDecl struct {
	Name    string
	Fields  []*FieldDecl
	Methods []*FuncDecl
	P       Pos
}

func (d *StructDecl) Position() Pos { return d.P }
func (d *StructDecl) declNode()     {}

// InterfaceMethod is one method signature inside an interface body.
type InterfaceMethod struct {
	Name   string
	Params []*Param
	Ret    TypeExpr
	P      Pos
}

// InterfaceDecl is `interface Name ... end`.
type InterfaceDecl struct {
	Name    string
	Methods []*InterfaceMethod
	P       Pos
}

func (d *InterfaceDecl) Position() Pos { return d.P }
func (d *InterfaceDecl) declNode()     {}

// EnumVariant is one `Name` or `Name = N` inside an enum body.
type EnumVariant struct {
	Name     string
	HasValue bool
	Value    int64 // only meaningful when HasValue
	P        Pos
}

// EnumDecl is `enum Name ... end`. Variant values auto-increment from 0;
// an explicit `= N` resets the running counter (spec.md §4.5).
type EnumDecl struct {
	Name     string
	Variants []*EnumVariant
	P        Pos
}

func (d *EnumDecl) Position() Pos { return d.P }
func (d *EnumDecl) declNode()     {}

// GlobalVarDecl is a top-level `name : Type = expr` or `const name : Type = expr`.
type GlobalVarDecl struct {
	Name    string
	Type    TypeExpr // nil triggers `:=` style inference
	Init    Expr
	IsConst bool
	P       Pos
}

func (d *GlobalVarDecl) Position() Pos { return d.P }
func (d *GlobalVarDecl) declNode()     {}

// ExternDecl is one `bismut_name(p: T, ...) -> R = c_function_name` entry
// parsed from a `.mutlib` manifest and merged into the compilation unit as
// a declaration (spec.md §6); kept alongside user externs declared inline
// via one-line `extern` declarations.
type ExternDecl struct {
	Lib     string // library name this extern came from, "" for inline
	Name    string
	Params  []*Param
	Ret     TypeExpr
	CName   string // underlying C function name
	IsDtor  bool
	P       Pos
}

func (d *ExternDecl) Position() Pos { return d.P }
func (d *ExternDecl) declNode()     {}

// ImportDecl is `import a.b.c` or `import a.b.c as X`.
type ImportDecl struct {
	Path  string // dotted path, e.g. "a.b.c"
	Alias string // resolved alias: last segment, or explicit `as X`
	P     Pos
}

func (d *ImportDecl) Position() Pos { return d.P }
func (d *ImportDecl) declNode()     {}
