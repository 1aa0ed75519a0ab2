package types

// Interner deduplicates Type values by their canonical String() form so
// the checker can compare resolved types with a cheap pointer/string
// comparison instead of a structural Equals() walk at every use site —
// the same canonical-key registry shape as the teacher's type-name
// normalization, adapted from a display-name cache into an identity
// cache.
type Interner struct {
	byKey map[string]Type
}

// NewInterner creates an empty Interner preloaded with the primitive and
// void/str/none singletons, which are looked up far more often than any
// other type.
func NewInterner() *Interner {
	in := &Interner{byKey: make(map[string]Type)}
	for kind := range primNames {
		in.Intern(&Primitive{Kind: kind})
	}
	in.Intern(&Void{})
	in.Intern(&Str{})
	in.Intern(&NoneType{})
	return in
}

// Intern returns the canonical instance for t, registering t itself the
// first time its canonical key is seen.
func (in *Interner) Intern(t Type) Type {
	key := t.String()
	if existing, ok := in.byKey[key]; ok {
		return existing
	}
	in.byKey[key] = t
	return t
}

// Lookup returns the interned instance for a canonical key, if any has
// been interned yet.
func (in *Interner) Lookup(key string) (Type, bool) {
	t, ok := in.byKey[key]
	return t, ok
}
