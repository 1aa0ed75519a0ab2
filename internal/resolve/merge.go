package resolve

import (
	"github.com/bismut-lang/bismut/internal/ast"
)

// merge flattens a dependency-ordered list of loaded modules into one
// ast.File. Every non-entry module's top-level declarations are renamed
// `alias__Name` (and, for enum variants, `alias__EnumName__VARIANT`);
// references to them elsewhere — `alias.Name` parsed as a MemberExpr on a
// bare Ident — are rewritten to the same mangled Ident (spec.md §4.4).
func merge(order []*loadedModule) *ast.File {
	out := &ast.File{Path: "<merged>"}

	// mangled maps "alias.OriginalName" -> "alias__OriginalName" so
	// every module's expressions can be rewritten in a second pass once
	// every module's declared names are known.
	mangled := make(map[string]string)

	for _, mod := range order {
		for _, d := range mod.file.Decls {
			name, ok := declName(d)
			if !ok {
				continue
			}
			if mod.alias != "" {
				newName := mod.alias + "__" + name
				mangled[mod.alias+"."+name] = newName
				renameDecl(d, newName)
				if enum, ok := d.(*ast.EnumDecl); ok {
					for _, v := range enum.Variants {
						mangled[mod.alias+"."+name+"."+v.Name] = mod.alias + "__" + name + "__" + v.Name
					}
				}
			}
		}
	}

	for _, mod := range order {
		for _, d := range mod.file.Decls {
			rewriteDecl(d, mod.alias, mangled)
			out.Decls = append(out.Decls, d)
		}
	}
	return out
}

func declName(d ast.Decl) (string, bool) {
	switch dd := d.(type) {
	case *ast.FuncDecl:
		return dd.Name, true
	case *ast.ClassDecl:
		return dd.Name, true
	case *ast.StructDecl:
		return dd.Name, true
	case *ast.EnumDecl:
		return dd.Name, true
	case *ast.InterfaceDecl:
		return dd.Name, true
	case *ast.GlobalVarDecl:
		return dd.Name, true
	case *ast.ExternDecl:
		return dd.Name, true
	default:
		return "", false
	}
}

func renameDecl(d ast.Decl, newName string) {
	switch dd := d.(type) {
	case *ast.FuncDecl:
		dd.Name = newName
	case *ast.ClassDecl:
		dd.Name = newName
	case *ast.StructDecl:
		dd.Name = newName
	case *ast.EnumDecl:
		dd.Name = newName
	case *ast.InterfaceDecl:
		dd.Name = newName
	case *ast.GlobalVarDecl:
		dd.Name = newName
	case *ast.ExternDecl:
		dd.Name = newName
	}
}
