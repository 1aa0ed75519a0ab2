package emit

import (
	"github.com/bismut-lang/bismut/internal/check"
	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/types"
)

// dictEntry remembers a Dict[K,V] instantiation's key/value tags
// alongside the resolved type, so emission never has to re-derive the
// tags by splitting a joined map key.
type dictEntry struct {
	keyTag, valTag string
	t              *types.Dict
}

// Emitter walks a checked, merged compilation unit and produces one C99
// translation unit (spec.md §4.6). Container/tuple/fnptr instantiations
// are discovered lazily as cType is asked to spell a type, then emitted
// once, in first-seen order, ahead of every class/function definition
// that might reference them.
type Emitter struct {
	sink *diag.Sink
	chk  *check.Checker

	lists      map[string]*types.List
	listOrder  []string
	dicts      map[string]dictEntry
	dictOrder  []string
	tuples     map[string]*types.Tuple
	tupleOrder []string
	fnPtrs     map[string]*types.FnPtr
	fnPtrOrder []string

	generics map[string]bool
	genOrder []string
	genSrc   map[string]string

	literals []string
}

func newEmitter(sink *diag.Sink, chk *check.Checker) *Emitter {
	return &Emitter{
		sink:   sink,
		chk:    chk,
		lists:  make(map[string]*types.List),
		dicts:  make(map[string]dictEntry),
		tuples:   make(map[string]*types.Tuple),
		fnPtrs:   make(map[string]*types.FnPtr),
		generics: make(map[string]bool),
		genSrc:   make(map[string]string),
	}
}

func (e *Emitter) useList(t *types.List) {
	key := tag(t.Elem)
	if _, ok := e.lists[key]; ok {
		return
	}
	e.lists[key] = t
	e.listOrder = append(e.listOrder, key)
}

func (e *Emitter) useDict(t *types.Dict) {
	kt, vt := tag(t.Key), tag(t.Val)
	key := kt + "#" + vt
	if _, ok := e.dicts[key]; ok {
		return
	}
	e.dicts[key] = dictEntry{keyTag: kt, valTag: vt, t: t}
	e.dictOrder = append(e.dictOrder, key)
	// keys() returns a List[K]; make sure that template exists too.
	e.useList(&types.List{Elem: t.Key})
}

func (e *Emitter) useTuple(t *types.Tuple) {
	key := tupleTag(t)
	if _, ok := e.tuples[key]; ok {
		return
	}
	e.tuples[key] = t
	e.tupleOrder = append(e.tupleOrder, key)
}

func (e *Emitter) fnPtrTypedef(t *types.FnPtr) string {
	parts := make([]types.Type, 0, len(t.Params)+1)
	parts = append(parts, t.Params...)
	if t.Ret != nil {
		parts = append(parts, t.Ret)
	}
	key := types.Mangle(parts)
	if _, ok := e.fnPtrs[key]; !ok {
		e.fnPtrs[key] = t
		e.fnPtrOrder = append(e.fnPtrOrder, key)
	}
	return "bismut_Fn_" + key
}

// dictIsStringKeyed reports whether t.Key is str, selecting the
// string-keyed hash-table template over the integer-keyed one (spec.md
// §4.6: enums and other value-kind keys always take the integer form).
func dictIsStringKeyed(t *types.Dict) bool {
	_, ok := t.Key.(*types.Str)
	return ok
}

// writeListTemplate emits one List[T] instantiation: struct, constructor,
// push/get/set/len, and a destructor that releases every reference-kind
// element before freeing the backing array.
func (e *Emitter) writeListTemplate(w *cWriter, elemTag string, elem types.Type) {
	st := listType(elemTag)
	ct := e.cType(elem)
	w.linef("%s {", st)
	w.in()
	w.line("bismut_Rc rc;")
	w.linef("%s *data;", ct)
	w.line("size_t len, cap;")
	w.out()
	w.linef("};")
	w.blank()

	w.linef("static void bismut_List_%s_dtor(void *p) {", elemTag)
	w.in()
	w.linef("%s *l = (%s*)p;", st, st)
	if isRefKind(elem) {
		w.line("for (size_t i = 0; i < l->len; i++) {")
		w.in()
		w.linef("bismut_release((void*)l->data[i], bismut_%s_dtor);", refDtorName(elem))
		w.out()
		w.line("}")
	}
	w.line("free(l->data);")
	w.out()
	w.line("}")
	w.blank()

	w.linef("static %s *bismut_List_%s_new(void) {", st, elemTag)
	w.in()
	w.linef("%s *l = bismut_alloc(sizeof(%s));", st, st)
	w.line("bismut_rc_init(&l->rc);")
	w.line("l->data = NULL; l->len = 0; l->cap = 0;")
	w.line("return l;")
	w.out()
	w.line("}")
	w.blank()

	w.linef("static void bismut_List_%s_push(%s *l, %s v) {", elemTag, st, ct)
	w.in()
	w.line("if (l->len == l->cap) {")
	w.in()
	w.line("l->cap = l->cap ? l->cap * 2 : 4;")
	w.linef("l->data = bismut_realloc(l->data, l->cap * sizeof(%s));", ct)
	w.out()
	w.line("}")
	if isRefKind(elem) {
		w.linef("bismut_retain((void*)v);")
	}
	w.line("l->data[l->len++] = v;")
	w.out()
	w.line("}")
	w.blank()

	w.linef("static %s bismut_List_%s_get(%s *l, int64_t i) {", ct, elemTag, st)
	w.in()
	w.line("if (i < 0 || (size_t)i >= l->len) bismut_panic_oob(__FILE__, __LINE__, 0);")
	w.line("return l->data[i];")
	w.out()
	w.line("}")
	w.blank()

	w.linef("static void bismut_List_%s_set(%s *l, int64_t i, %s v) {", elemTag, st, ct)
	w.in()
	w.line("if (i < 0 || (size_t)i >= l->len) bismut_panic_oob(__FILE__, __LINE__, 0);")
	if isRefKind(elem) {
		w.linef("bismut_retain((void*)v);")
		w.linef("bismut_release((void*)l->data[i], bismut_%s_dtor);", refDtorName(elem))
	}
	w.line("l->data[i] = v;")
	w.out()
	w.line("}")
	w.blank()

	w.linef("static int64_t bismut_List_%s_len(%s *l) { return (int64_t)l->len; }", elemTag, st)
	w.blank()
}

// writeDictTemplate emits one Dict[K,V] instantiation as an open-addressed
// hash table, with separate probing for the string-keyed and
// integer/enum-keyed forms (spec.md §4.6).
func (e *Emitter) writeDictTemplate(w *cWriter, keyTag, valTag string, d *types.Dict) {
	st := dictType(keyTag, valTag)
	kt := e.cType(d.Key)
	vt := e.cType(d.Val)
	stringKeyed := dictIsStringKeyed(d)

	w.linef("%s {", st)
	w.in()
	w.line("bismut_Rc rc;")
	w.linef("%s *keys;", kt)
	w.linef("%s *vals;", vt)
	w.line("bool *used;")
	w.line("size_t len, cap;")
	w.out()
	w.line("};")
	w.blank()

	w.linef("static void bismut_Dict_%s_%s_dtor(void *p) {", keyTag, valTag)
	w.in()
	w.linef("%s *d = (%s*)p;", st, st)
	w.line("for (size_t i = 0; i < d->cap; i++) {")
	w.in()
	w.line("if (!d->used[i]) continue;")
	if stringKeyed {
		w.line("bismut_release((void*)d->keys[i], bismut_Str_dtor);")
	}
	if isRefKind(d.Val) {
		w.linef("bismut_release((void*)d->vals[i], bismut_%s_dtor);", refDtorName(d.Val))
	}
	w.out()
	w.line("}")
	w.line("free(d->keys); free(d->vals); free(d->used);")
	w.out()
	w.line("}")
	w.blank()

	w.linef("static %s *bismut_Dict_%s_%s_new(void) {", st, keyTag, valTag)
	w.in()
	w.linef("%s *d = bismut_alloc(sizeof(%s));", st, st)
	w.line("bismut_rc_init(&d->rc);")
	w.line("d->keys = NULL; d->vals = NULL; d->used = NULL; d->len = 0; d->cap = 0;")
	w.line("return d;")
	w.out()
	w.line("}")
	w.blank()

	keyEq := "a == b"
	keyHash := "(size_t)a"
	if stringKeyed {
		keyEq = "bismut_str_eq(a, b)"
		keyHash = "bismut_str_hash(a)"
	}
	w.linef("static void bismut_Dict_%s_%s_grow(%s *d) {", keyTag, valTag, st)
	w.in()
	w.line("size_t newcap = d->cap ? d->cap * 2 : 8;")
	w.linef("%s *nk = bismut_alloc(newcap * sizeof(%s));", kt, kt)
	w.linef("%s *nv = bismut_alloc(newcap * sizeof(%s));", vt, vt)
	w.line("bool *nu = bismut_alloc(newcap * sizeof(bool));")
	w.line("memset(nu, 0, newcap * sizeof(bool));")
	w.line("for (size_t i = 0; i < d->cap; i++) {")
	w.in()
	w.line("if (!d->used[i]) continue;")
	w.linef("%s a = d->keys[i];", kt)
	w.linef("size_t h = (%s) %% newcap;", keyHash)
	w.line("while (nu[h]) h = (h + 1) % newcap;")
	w.line("nk[h] = d->keys[i]; nv[h] = d->vals[i]; nu[h] = true;")
	w.out()
	w.line("}")
	w.line("free(d->keys); free(d->vals); free(d->used);")
	w.line("d->keys = nk; d->vals = nv; d->used = nu; d->cap = newcap;")
	w.out()
	w.line("}")
	w.blank()

	w.linef("static void bismut_Dict_%s_%s_set(%s *d, %s k, %s v) {", keyTag, valTag, st, kt, vt)
	w.in()
	w.line("if (d->len * 2 >= d->cap) {")
	w.in()
	w.linef("bismut_Dict_%s_%s_grow(d);", keyTag, valTag)
	w.out()
	w.line("}")
	w.linef("size_t h = (%s) %% d->cap;", keyHash)
	w.line("while (d->used[h]) {")
	w.in()
	w.linef("%s a = d->keys[h], b = k;", kt)
	w.linef("if (%s) break;", keyEq)
	w.line("h = (h + 1) % d->cap;")
	w.out()
	w.line("}")
	w.line("if (!d->used[h]) { d->used[h] = true; d->len++; }")
	if stringKeyed {
		w.line("bismut_retain((void*)k);")
	}
	if isRefKind(d.Val) {
		w.linef("bismut_retain((void*)v);")
	}
	w.line("d->keys[h] = k; d->vals[h] = v;")
	w.out()
	w.line("}")
	w.blank()

	w.linef("static %s bismut_Dict_%s_%s_get(%s *d, %s k) {", vt, keyTag, valTag, st, kt)
	w.in()
	w.line("if (d->cap == 0) bismut_panic_key(__FILE__, __LINE__, 0);")
	w.linef("size_t h = (%s) %% d->cap;", keyHash)
	w.line("size_t start = h;")
	w.line("while (d->used[h]) {")
	w.in()
	w.linef("%s a = d->keys[h], b = k;", kt)
	w.linef("if (%s) return d->vals[h];", keyEq)
	w.line("h = (h + 1) % d->cap;")
	w.line("if (h == start) break;")
	w.out()
	w.line("}")
	w.line("bismut_panic_key(__FILE__, __LINE__, 0);")
	w.blank()
	w.out()
	w.line("}")
	w.blank()

	w.linef("static int64_t bismut_Dict_%s_%s_len(%s *d) { return (int64_t)d->len; }", keyTag, valTag, st)
	w.blank()

	w.linef("static %s *bismut_Dict_%s_%s_keys(%s *d) {", listType(keyTag), keyTag, valTag, st)
	w.in()
	w.linef("%s *out = bismut_List_%s_new();", listType(keyTag), keyTag)
	w.line("for (size_t i = 0; i < d->cap; i++) {")
	w.in()
	w.linef("if (d->used[i]) bismut_List_%s_push(out, d->keys[i]);", keyTag)
	w.out()
	w.line("}")
	w.line("return out;")
	w.out()
	w.line("}")
	w.blank()
}

func (e *Emitter) writeTupleTemplate(w *cWriter, tg string, t *types.Tuple) {
	w.linef("%s {", tupleType(tg))
	w.in()
	for i, el := range t.Elems {
		w.linef("%s f%d;", e.cType(el), i)
	}
	w.out()
	w.line("};")
	w.blank()
}

func (e *Emitter) writeFnPtrTypedef(w *cWriter, key string, t *types.FnPtr) {
	ret := "void"
	if t.Ret != nil {
		ret = e.cType(t.Ret)
	}
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = e.cType(p)
	}
	if len(params) == 0 {
		params = []string{"void"}
	}
	w.linef("typedef %s (*bismut_Fn_%s)(%s);", ret, key, joinCommas(params))
}

// refDtorName names the destructor function bismut_<X>_dtor that releasing
// a reference-kind value of this type must invoke.
func refDtorName(t types.Type) string {
	switch tt := t.(type) {
	case *types.Str:
		return "Str"
	case *types.List:
		return "List_" + tag(tt.Elem)
	case *types.Dict:
		return "Dict_" + tag(tt.Key) + "_" + tag(tt.Val)
	case *types.Class:
		return sanitizeCIdent(tt.Name)
	case *types.Interface:
		return sanitizeCIdent(tt.Name)
	case *types.ExternOpaque:
		return sanitizeCIdent(tt.Lib) + "_" + sanitizeCIdent(tt.Name)
	default:
		return "opaque"
	}
}

func joinCommas(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// writeContainers emits every instantiated List/Dict/Tuple/FnPtr template
// collected while resolving declaration signatures, in deterministic
// first-seen order (spec.md §8's deterministic-emission property).
func (e *Emitter) writeContainers(w *cWriter) {
	for _, k := range e.fnPtrOrder {
		e.writeFnPtrTypedef(w, k, e.fnPtrs[k])
	}
	if len(e.fnPtrOrder) > 0 {
		w.blank()
	}
	for _, k := range e.tupleOrder {
		e.writeTupleTemplate(w, k, e.tuples[k])
	}
	for _, k := range e.listOrder {
		e.writeListTemplate(w, k, e.lists[k].Elem)
	}
	for _, k := range e.dictOrder {
		d := e.dicts[k]
		e.writeDictTemplate(w, d.keyTag, d.valTag, d.t)
	}
}
