// Package resolve implements Bismut's import resolution stage (spec.md
// §4.4): turning a dotted `import a.b.c [as alias]` graph rooted at an
// entry file into one flat, name-mangled compilation unit the checker and
// emitter see as a single ast.File.
package resolve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bismut-lang/bismut/internal/ast"
	"github.com/bismut-lang/bismut/internal/diag"
	"github.com/bismut-lang/bismut/internal/lexer"
	"github.com/bismut-lang/bismut/internal/parser"
	"github.com/bismut-lang/bismut/internal/preprocess"
)

// loadedModule is one parsed source file plus the alias other files used
// to import it, kept so the merge step knows which mangling prefix to
// apply to its top-level names.
type loadedModule struct {
	path  string // absolute file path
	alias string // "" for the entry module, which keeps unmangled names
	file  *ast.File
}

// Resolver walks the import graph from an entry file, parsing each module
// exactly once and detecting cycles via an in-progress path stack, the
// same loadStack/cache shape the teacher's Loader uses.
type Resolver struct {
	root    string // directory dotted import paths are resolved relative to
	sink    *diag.Sink
	defines map[string]bool // preprocessor symbols, shared and mutated across every module in the graph

	cache      map[string]*loadedModule
	inProgress map[string]bool
	stack      []string // ordered in-progress path, for cycle error messages
}

// New creates a Resolver rooted at root (the standard-module search
// directory that imports fall back to when the importing file's own
// directory has no match; see locate), reporting to sink. defines
// seeds the preprocessor symbol table (spec.md §4.1) applied to every
// module file before it is lexed; a nil map starts empty. `@define`
// directives encountered while loading any module in the graph add to
// this same table, so a symbol defined in an imported module is visible
// to modules loaded afterward, matching the single-pass, left-to-right
// evaluation order the preprocessor itself uses within one file.
func New(root string, sink *diag.Sink, defines map[string]bool) *Resolver {
	if defines == nil {
		defines = make(map[string]bool)
	}
	return &Resolver{
		root:       root,
		sink:       sink,
		defines:    defines,
		cache:      make(map[string]*loadedModule),
		inProgress: make(map[string]bool),
	}
}

// Resolve parses entryPath and every module it (transitively) imports,
// then merges them into a single flat ast.File in dependency-first order
// (spec.md §4.4): a module's declarations always precede anything that
// imports it, so the checker never sees a forward reference across
// files. Returns nil if any module failed to load or a cycle was found;
// the caller should check sink.HasErrors() either way.
func (r *Resolver) Resolve(entryPath string) *ast.File {
	abs, err := filepath.Abs(entryPath)
	if err != nil {
		r.sink.Errorf(diag.RES001, ast.Pos{File: entryPath}, "cannot resolve entry file %q: %v", entryPath, err)
		return nil
	}

	var order []*loadedModule
	if !r.load(abs, "", &order) {
		return nil
	}
	return merge(order)
}

// load parses path (if not already cached) and recursively loads its
// imports before appending it to order, giving a post-order (dependencies
// first) traversal. alias is the name the importer used for this module;
// "" for the entry file.
func (r *Resolver) load(path, alias string, order *[]*loadedModule) bool {
	if mod, ok := r.cache[path]; ok {
		// Re-use the already-parsed module but don't re-append it to
		// order; it was already placed on its first load.
		_ = mod
		return true
	}
	if r.inProgress[path] {
		r.reportCycle(path)
		return false
	}

	r.inProgress[path] = true
	r.stack = append(r.stack, path)
	defer func() {
		delete(r.inProgress, path)
		r.stack = r.stack[:len(r.stack)-1]
	}()

	src, err := os.ReadFile(path)
	if err != nil {
		r.sink.Errorf(diag.RES001, ast.Pos{File: path}, "module file not found: %s", path)
		return false
	}

	text := preprocess.Run(string(src), path, r.defines, r.sink)
	l := lexer.New(text, path, r.sink)
	p := parser.New(l, path, r.sink)
	file := p.Parse()

	mod := &loadedModule{path: path, alias: alias, file: file}
	r.cache[path] = mod

	ok := true
	dir := filepath.Dir(path)
	for _, imp := range file.Imports {
		depPath := r.locate(dir, imp.Path)
		if !r.load(depPath, imp.Alias, order) {
			ok = false
		}
	}
	if !ok {
		return false
	}

	*order = append(*order, mod)
	return true
}

// pathForImport maps a dotted import path to a source file relative to
// dir: `a.b.c` -> dir/a/b/c.mut (spec.md §4.4).
func pathForImport(dir, dotted string) string {
	segs := strings.Split(dotted, ".")
	segs[len(segs)-1] += ".mut"
	return filepath.Join(append([]string{dir}, segs...)...)
}

// locate resolves a dotted import first relative to the importing
// file's own directory, then relative to r.root, the resolver's
// configured standard-module search path (spec.md §6). The importer's
// own directory always wins, so a project-local module can shadow a
// standard one of the same dotted path.
func (r *Resolver) locate(dir, dotted string) string {
	local := pathForImport(dir, dotted)
	if _, err := os.Stat(local); err == nil {
		return local
	}
	if r.root != "" && r.root != dir {
		if std := pathForImport(r.root, dotted); std != local {
			if _, err := os.Stat(std); err == nil {
				return std
			}
		}
	}
	return local
}

func (r *Resolver) reportCycle(path string) {
	chain := append(append([]string{}, r.stack...), path)
	r.sink.Errorf(diag.RES002, ast.Pos{File: path}, "circular import: %s", strings.Join(chain, " -> "))
}
