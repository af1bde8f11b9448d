// Package model defines the descriptors and plans shared by the analysis,
// planning and generation phases.
package model

import (
	"go/ast"
	"go/token"
	"go/types"
)

// Struct describes one struct declaration selected for builder generation.
type Struct struct {
	// Name is the declared type name.
	Name string
	// TypeParams holds the type parameter list, empty for non-generic types.
	TypeParams []*TypeParam
	// Fields holds the named fields in declaration order.
	Fields []*Field
	// Global holds the directives attached to the declaration itself.
	Global GlobalDirectives
	// Methods contains the names of methods already declared on the type
	// outside of generated files.
	Methods map[string]bool
	// Imports maps the import names visible in the declaring file to their paths.
	Imports map[string]string
	// Aliases holds the import names given explicitly in the declaring file.
	Aliases map[string]bool
	// Filename is the file declaring the struct.
	Filename string
	Pos      token.Position
	// PkgPath is the import path of the declaring package.
	PkgPath string
	// Info is the type information of the declaring package, nil when unavailable.
	Info *types.Info
}

// ImportPath resolves the package referenced by a qualifier identifier,
// e.g. "opt" in opt.Option[T]. Type information wins over the file imports.
func (s *Struct) ImportPath(ident *ast.Ident) string {
	if s.Info != nil {
		if pn, ok := s.Info.Uses[ident].(*types.PkgName); ok {
			return pn.Imported().Path()
		}
	}
	return s.Imports[ident.Name]
}

// ObjectPath returns the package path of the object an unqualified identifier
// refers to when it is declared outside the struct's package (dot imports).
func (s *Struct) ObjectPath(ident *ast.Ident) string {
	if s.Info == nil {
		return ""
	}
	obj := s.Info.Uses[ident]
	if obj == nil || obj.Pkg() == nil || obj.Pkg().Path() == s.PkgPath {
		return ""
	}
	return obj.Pkg().Path()
}

// TypeParam is a single type parameter of a generic struct.
type TypeParam struct {
	Name       string
	Constraint ast.Expr
}

// TypeArgs returns the type parameter names in declaration order.
func (s *Struct) TypeArgs() []string {
	names := make([]string, 0, len(s.TypeParams))
	for _, tp := range s.TypeParams {
		names = append(names, tp.Name)
	}
	return names
}

// HasField reports whether the struct declares a field with the given name.
func (s *Struct) HasField(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Field describes a single struct field.
type Field struct {
	// Name is the field name; for embedded fields it is the type name.
	Name string
	// Type is the declared type expression.
	Type ast.Expr
	// TypeOf is the checked type of the field, nil when type information is unavailable.
	TypeOf types.Type
	// Exported mirrors the field visibility. Generation ignores it.
	Exported bool
	// Embedded is set for embedded fields.
	Embedded bool
	// Docs holds the raw doc comment lines, directives excluded.
	Docs []string
	// Directives holds the parsed `buildit` struct tag.
	Directives Directives
	// LegacySkip is set when the field carries the bare //buildit:skip marker.
	LegacySkip bool
	// DirectiveErr is the error produced while parsing the struct tag, if any.
	DirectiveErr error

	Pos    token.Position
	TagPos token.Position
}

// Skipped reports whether no builder method must be generated for the field.
func (f *Field) Skipped() bool {
	return f.LegacySkip || f.Directives.Skip
}

// Directives holds the field level options.
type Directives struct {
	Skip   bool
	Into   bool
	Rename *string
}

// GlobalDirectives holds the struct level options.
type GlobalDirectives struct {
	Into bool
}

// Package is the result of analysing one Go package.
type Package struct {
	Name string
	Path string
	Dir  string
	// Structs holds the selected struct declarations ordered by file and position.
	Structs []*Struct
	// Diagnostics holds the errors found while walking declarations.
	Diagnostics Diagnostics
}
