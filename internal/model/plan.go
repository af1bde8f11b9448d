package model

import (
	"go/ast"
	"go/types"
)

// WrapperRef identifies the constructor used to wrap a value in the optional type.
type WrapperRef struct {
	// Path is the import path of the package declaring the constructor.
	// It is empty when the constructor is declared in the generated package.
	Path string
	// Func is the constructor name, e.g. "Some".
	Func string
}

// MethodPlan describes one generated builder method.
type MethodPlan struct {
	// Name is the method name.
	Name string
	// Field is the field the method sets.
	Field *Field
	// Param is the name of the single method parameter.
	Param string
	// Inner is the type argument of the wrapper as declared.
	Inner ast.Expr
	// Wrapper is the constructor wrapping the stored value.
	Wrapper WrapperRef
	// Convert is set when the argument is converted to the inner type.
	Convert bool
	// Source is the parameter type in conversion mode. A nil Source means
	// the parameter is declared with the inner type itself.
	Source types.Type
	// Docs holds the doc comment lines carried over from the field.
	Docs []string
}

// StructPlan groups the methods generated for a struct.
type StructPlan struct {
	Struct   *Struct
	Receiver string
	Methods  []*MethodPlan
}

// PackagePlan is the full generation plan of a package.
type PackagePlan struct {
	Name        string
	Path        string
	Dir         string
	Structs     []*StructPlan
	Diagnostics Diagnostics
}

// MethodCount returns the number of planned methods.
func (p *PackagePlan) MethodCount() int {
	n := 0
	for _, s := range p.Structs {
		n += len(s.Methods)
	}
	return n
}
