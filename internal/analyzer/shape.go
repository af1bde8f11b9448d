package analyzer

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/origadmin/buildit/internal/model"
)

// InnerType matches the optional wrapper shape `Wrapper[T]` or `pkg.Wrapper[T]`
// and returns the type argument T. The match is purely syntactic: pointers to
// the wrapper, several type arguments, parenthesised or aliased wrappers are
// not recognised.
func InnerType(expr ast.Expr, wrapper string) (ast.Expr, bool) {
	idx, ok := expr.(*ast.IndexExpr)
	if !ok {
		return nil, false
	}
	if wrapperName(idx.X) != wrapper {
		return nil, false
	}
	if !isTypeExpr(idx.Index) {
		return nil, false
	}
	return idx.Index, true
}

func wrapperName(x ast.Expr) string {
	switch t := x.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		if _, ok := t.X.(*ast.Ident); ok {
			return t.Sel.Name
		}
	}
	return ""
}

// isTypeExpr reports whether e can syntactically denote a type.
func isTypeExpr(e ast.Expr) bool {
	switch t := e.(type) {
	case *ast.Ident, *ast.SelectorExpr, *ast.StarExpr, *ast.ArrayType, *ast.MapType,
		*ast.ChanType, *ast.FuncType, *ast.InterfaceType, *ast.StructType,
		*ast.IndexExpr, *ast.IndexListExpr:
		return true
	case *ast.ParenExpr:
		return isTypeExpr(t.X)
	}
	return false
}

// InnerTypeOf returns the checked type argument of a wrapper instance.
func InnerTypeOf(t types.Type) types.Type {
	if t == nil {
		return nil
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return nil
	}
	args := named.TypeArgs()
	if args == nil || args.Len() != 1 {
		return nil
	}
	return args.At(0)
}

// ResolveWrapper returns the constructor reference for a matched wrapper type
// expression. fn is the constructor name, e.g. "Some".
func ResolveWrapper(expr ast.Expr, s *model.Struct, fn string) model.WrapperRef {
	ref := model.WrapperRef{Func: fn}
	idx, ok := expr.(*ast.IndexExpr)
	if !ok {
		return ref
	}
	switch base := idx.X.(type) {
	case *ast.SelectorExpr:
		if id, ok := base.X.(*ast.Ident); ok {
			ref.Path = s.ImportPath(id)
		}
	case *ast.Ident:
		ref.Path = s.ObjectPath(base)
	}
	return ref
}

// ConversionSource returns the type a value must have to be converted into
// inner with a plain Go conversion. It is the underlying type of a defined
// type whose underlying type is a basic, slice, array, map, pointer, channel
// or function type. For every other type nil is returned and the inner type
// is accepted as is. from is the path of the package the conversion is
// written in; underlying types that cannot be named there are rejected.
func ConversionSource(inner types.Type, from string) types.Type {
	if inner == nil {
		return nil
	}
	named, ok := types.Unalias(inner).(*types.Named)
	if !ok {
		return nil
	}
	var src types.Type
	switch u := named.Underlying().(type) {
	case *types.Basic:
		if u.Kind() == types.Invalid || u.Kind() == types.UnsafePointer {
			return nil
		}
		src = u
	case *types.Slice, *types.Array, *types.Map, *types.Pointer, *types.Chan, *types.Signature:
		src = u
	default:
		return nil
	}
	if !nameable(src, from, 0) {
		return nil
	}
	return src
}

// nameable reports whether t can be spelled in package from.
func nameable(t types.Type, from string, depth int) bool {
	if depth > 16 {
		return false
	}
	depth++
	switch t := t.(type) {
	case *types.Basic:
		return t.Kind() != types.Invalid && t.Kind() != types.UntypedNil
	case *types.Alias:
		return nameable(types.Unalias(t), from, depth)
	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() != from && !obj.Exported() {
			return false
		}
		if args := t.TypeArgs(); args != nil {
			for i := 0; i < args.Len(); i++ {
				if !nameable(args.At(i), from, depth) {
					return false
				}
			}
		}
		return true
	case *types.TypeParam:
		return false
	case *types.Slice:
		return nameable(t.Elem(), from, depth)
	case *types.Array:
		return nameable(t.Elem(), from, depth)
	case *types.Pointer:
		return nameable(t.Elem(), from, depth)
	case *types.Chan:
		return nameable(t.Elem(), from, depth)
	case *types.Map:
		return nameable(t.Key(), from, depth) && nameable(t.Elem(), from, depth)
	case *types.Signature:
		if t.TypeParams() != nil {
			return false
		}
		return tupleNameable(t.Params(), from, depth) && tupleNameable(t.Results(), from, depth)
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			f := t.Field(i)
			if !f.Exported() && f.Pkg() != nil && f.Pkg().Path() != from {
				return false
			}
			if !nameable(f.Type(), from, depth) {
				return false
			}
		}
		return true
	case *types.Interface:
		return t.Empty()
	}
	return false
}

func tupleNameable(tuple *types.Tuple, from string, depth int) bool {
	for i := 0; i < tuple.Len(); i++ {
		if !nameable(tuple.At(i).Type(), from, depth) {
			return false
		}
	}
	return true
}

// ShapeOf names the shape of a non-struct type declaration.
func ShapeOf(ts *ast.TypeSpec) string {
	if ts.Assign != token.NoPos {
		return "type aliases"
	}
	switch t := ts.Type.(type) {
	case *ast.StructType:
		return ""
	case *ast.InterfaceType:
		return "interface types"
	case *ast.FuncType:
		return "function types"
	case *ast.MapType:
		return "map types"
	case *ast.ChanType:
		return "channel types"
	case *ast.StarExpr:
		return "pointer types"
	case *ast.ArrayType:
		if t.Len == nil {
			return "slice types"
		}
		return "array types"
	}
	return "defined non-struct types"
}
