// Package generator renders builder methods and drives the generation pipeline.
package generator

import (
	"bytes"
	"fmt"
	"go/ast"
	"log/slog"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/origadmin/buildit/internal/model"
)

// Generator renders package plans with jennifer.
type Generator struct {
	header string
}

var _ model.CodeGenerator = (*Generator)(nil)

// NewGenerator creates a generator writing header, which may span several
// lines, at the top of every file.
func NewGenerator(header string) *Generator {
	return &Generator{header: header}
}

// Generate renders the builder methods of every struct of a plan into one
// Go file. Structs appear in plan order; methods in field order.
func (g *Generator) Generate(plan *model.PackagePlan) ([]byte, error) {
	f := jen.NewFilePathName(plan.Path, plan.Name)
	for _, line := range strings.Split(strings.TrimRight(g.header, "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			f.HeaderComment("// " + strings.TrimPrefix(strings.TrimPrefix(line, "//"), " "))
		}
	}
	registerImports(f, plan)

	for _, sp := range plan.Structs {
		slog.Debug("Rendering struct", "struct", sp.Struct.Name, "methods", len(sp.Methods))
		for _, m := range sp.Methods {
			renderMethod(f, sp, m)
			f.Line()
		}
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", plan.Path, err)
	}
	return buf.Bytes(), nil
}

// registerImports makes the generated file use the import names of the
// declaring files. Every import is registered, used or not: jennifer only
// emits the ones the rendered code references and resolves name clashes
// between files.
func registerImports(f *jen.File, plan *model.PackagePlan) {
	for _, sp := range plan.Structs {
		s := sp.Struct
		names := make([]string, 0, len(s.Imports))
		for name := range s.Imports {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			path := s.Imports[name]
			if s.Aliases[name] {
				f.ImportAlias(path, name)
			} else {
				f.ImportName(path, name)
			}
		}
	}
}

// renderMethod emits
//
//	func (r T[P...]) Method(param Type) T[P...] {
//		r.field = wrap(param)
//		return r
//	}
func renderMethod(f *jen.File, sp *model.StructPlan, m *model.MethodPlan) {
	for _, line := range m.Docs {
		f.Comment(line)
	}
	exprs := exprRenderer{s: sp.Struct}

	var paramType, value jen.Code
	if m.Source != nil {
		paramType = typeRenderer{}.render(m.Source)
		conv := exprs.render(m.Inner)
		if !isNamedType(m.Inner) {
			conv = jen.Parens(conv)
		}
		value = jen.Add(conv).Call(jen.Id(m.Param))
	} else {
		paramType = exprs.render(m.Inner)
		value = jen.Id(m.Param)
	}

	var wrap *jen.Statement
	if m.Wrapper.Path == "" {
		wrap = jen.Id(m.Wrapper.Func)
	} else {
		wrap = jen.Qual(m.Wrapper.Path, m.Wrapper.Func)
	}

	f.Func().
		Params(jen.Id(sp.Receiver).Add(selfType(sp.Struct))).
		Id(m.Name).
		Params(jen.Id(m.Param).Add(paramType)).
		Add(selfType(sp.Struct)).
		Block(
			jen.Id(sp.Receiver).Dot(m.Field.Name).Op("=").Add(wrap).Call(value),
			jen.Return(jen.Id(sp.Receiver)),
		)
}

// isNamedType reports whether expr names a type and can be used as a
// conversion without parentheses.
func isNamedType(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.Ident, *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr, *ast.ParenExpr:
		return true
	}
	return false
}

// selfType renders the struct type instantiated with its own type parameters.
func selfType(s *model.Struct) *jen.Statement {
	t := jen.Id(s.Name)
	if args := s.TypeArgs(); len(args) > 0 {
		codes := make([]jen.Code, 0, len(args))
		for _, a := range args {
			codes = append(codes, jen.Id(a))
		}
		t.Types(codes...)
	}
	return t
}
