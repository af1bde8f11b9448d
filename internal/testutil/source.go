// Package testutil parses and type-checks in-memory Go packages for tests.
package testutil

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"path"
	"sort"
	"testing"

	"golang.org/x/tools/go/packages"
)

// Dir is the directory in-memory packages pretend to live in.
const Dir = "/src/example"

// Source is a parsed and type-checked in-memory package.
type Source struct {
	Path  string
	Dir   string
	Fset  *token.FileSet
	Names []string
	Files []*ast.File
	Info  *types.Info
	Pkg   *types.Package
	// Errors holds the type errors; parse errors fail the test.
	Errors []error
}

// Parse parses files, keyed by base name, as package pkgPath and type-checks it.
func Parse(tb testing.TB, pkgPath string, files map[string]string) *Source {
	tb.Helper()
	src := &Source{
		Path: pkgPath,
		Dir:  Dir,
		Fset: token.NewFileSet(),
		Info: &types.Info{
			Types:     make(map[ast.Expr]types.TypeAndValue),
			Defs:      make(map[*ast.Ident]types.Object),
			Uses:      make(map[*ast.Ident]types.Object),
			Implicits: make(map[ast.Node]types.Object),
		},
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		filename := path.Join(Dir, name)
		f, err := parser.ParseFile(src.Fset, filename, files[name], parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			tb.Fatalf("parse %s: %v", name, err)
		}
		src.Names = append(src.Names, filename)
		src.Files = append(src.Files, f)
	}
	conf := types.Config{
		Importer: importer.ForCompiler(src.Fset, "source", nil),
		Error:    func(err error) { src.Errors = append(src.Errors, err) },
	}
	src.Pkg, _ = conf.Check(pkgPath, src.Fset, src.Files, src.Info)
	return src
}

// TypeErrors type-checks files and returns the type errors found.
func TypeErrors(tb testing.TB, pkgPath string, files map[string]string) []error {
	tb.Helper()
	return Parse(tb, pkgPath, files).Errors
}

// Package returns src in the shape go/packages loads it.
func (src *Source) Package() *packages.Package {
	pkg := &packages.Package{
		ID:        src.Path,
		PkgPath:   src.Path,
		Fset:      src.Fset,
		GoFiles:   append([]string(nil), src.Names...),
		Syntax:    src.Files,
		TypesInfo: src.Info,
		Types:     src.Pkg,
		Imports:   make(map[string]*packages.Package),
	}
	if len(src.Files) > 0 {
		pkg.Name = src.Files[0].Name.Name
	}
	if src.Pkg != nil {
		for _, imp := range src.Pkg.Imports() {
			pkg.Imports[imp.Path()] = &packages.Package{ID: imp.Path(), PkgPath: imp.Path(), Name: imp.Name()}
		}
	}
	return pkg
}
