package types

import "testing"

func TestPrimitiveValueKind(t *testing.T) {
	p := &Primitive{Kind: I32}
	if !p.IsValueKind() {
		t.Fatalf("i32 should be value-kind")
	}
	if p.String() != "i32" {
		t.Fatalf("unexpected string: %s", p.String())
	}
}

func TestReferenceKindTypes(t *testing.T) {
	refs := []Type{
		&Str{},
		&List{Elem: &Primitive{Kind: I32}},
		&Dict{Key: &Str{}, Val: &Primitive{Kind: I32}},
		&Class{Name: "Widget"},
		&Interface{Name: "Shape"},
		&ExternOpaque{Lib: "sdl2", Name: "Window"},
	}
	for _, r := range refs {
		if r.IsValueKind() {
			t.Fatalf("%s should be reference-kind", r.String())
		}
	}
}

func TestValueKindTypes(t *testing.T) {
	vals := []Type{
		&Primitive{Kind: F64},
		&Void{},
		&Tuple{Elems: []Type{&Primitive{Kind: I32}, &Primitive{Kind: I32}}},
		&FnPtr{Params: []Type{&Primitive{Kind: I32}}, Ret: &Primitive{Kind: Bool}},
		&Struct{Name: "Point"},
		&Enum{Name: "Color"},
	}
	for _, v := range vals {
		if !v.IsValueKind() {
			t.Fatalf("%s should be value-kind", v.String())
		}
	}
}

func TestLookupPrimitive(t *testing.T) {
	k, ok := LookupPrimitive("u64")
	if !ok || k != U64 {
		t.Fatalf("expected u64 to resolve, got %v %v", k, ok)
	}
	if _, ok := LookupPrimitive("Widget"); ok {
		t.Fatalf("Widget should not resolve as a primitive")
	}
}

func TestTypeEquals(t *testing.T) {
	a := &List{Elem: &Primitive{Kind: I32}}
	b := &List{Elem: &Primitive{Kind: I32}}
	c := &List{Elem: &Primitive{Kind: I64}}
	if !a.Equals(b) {
		t.Fatalf("expected equal List[i32] types")
	}
	if a.Equals(c) {
		t.Fatalf("expected List[i32] != List[i64]")
	}
}

func TestSubstituteGeneric(t *testing.T) {
	generic := &List{Elem: &Generic{Param: "T"}}
	subs := map[string]Type{"T": &Primitive{Kind: I32}}
	got := Substitute(generic, subs)
	want := &List{Elem: &Primitive{Kind: I32}}
	if !got.Equals(want) {
		t.Fatalf("substitute failed: got %s, want %s", got, want)
	}
}

func TestMangleDeterministic(t *testing.T) {
	args := []Type{&Primitive{Kind: I32}, &Str{}}
	m1 := Mangle(args)
	m2 := Mangle(args)
	if m1 != m2 {
		t.Fatalf("mangling should be deterministic: %s != %s", m1, m2)
	}
	if m1 != "i32_str" {
		t.Fatalf("unexpected mangled name: %s", m1)
	}
}

func TestInternerDedupes(t *testing.T) {
	in := NewInterner()
	a := in.Intern(&Class{Name: "Widget"})
	b := in.Intern(&Class{Name: "Widget"})
	if a != b {
		t.Fatalf("expected interner to return the same instance")
	}
	prim, ok := in.Lookup("i32")
	if !ok {
		t.Fatalf("expected i32 preloaded into interner")
	}
	if !prim.IsValueKind() {
		t.Fatalf("interned i32 should be value-kind")
	}
}

func TestBitWidthAndSignedness(t *testing.T) {
	u8 := &Primitive{Kind: U8}
	if !u8.IsUnsigned() || u8.BitWidth() != 8 {
		t.Fatalf("unexpected u8 properties: unsigned=%v width=%d", u8.IsUnsigned(), u8.BitWidth())
	}
	f64 := &Primitive{Kind: F64}
	if !f64.IsFloat() || f64.BitWidth() != 64 {
		t.Fatalf("unexpected f64 properties")
	}
}
