package generator

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/dave/jennifer/jen"

	"github.com/origadmin/buildit/internal/model"
)

// exprRenderer renders declared type expressions of a struct, qualifying
// package selectors with the import paths of the declaring file.
type exprRenderer struct {
	s *model.Struct
}

func (r exprRenderer) render(expr ast.Expr) jen.Code {
	switch t := expr.(type) {
	case *ast.Ident:
		if p := r.s.ObjectPath(t); p != "" {
			return jen.Qual(p, t.Name)
		}
		return jen.Id(t.Name)
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			if p := r.s.ImportPath(x); p != "" {
				return jen.Qual(p, t.Sel.Name)
			}
		}
	case *ast.StarExpr:
		return jen.Op("*").Add(r.render(t.X))
	case *ast.ParenExpr:
		return jen.Parens(r.render(t.X))
	case *ast.ArrayType:
		if t.Len == nil {
			return jen.Index().Add(r.render(t.Elt))
		}
		return jen.Index(r.value(t.Len)).Add(r.render(t.Elt))
	case *ast.MapType:
		return jen.Map(r.render(t.Key)).Add(r.render(t.Value))
	case *ast.ChanType:
		switch t.Dir {
		case ast.SEND:
			return jen.Chan().Op("<-").Add(r.render(t.Value))
		case ast.RECV:
			return jen.Op("<-").Chan().Add(r.render(t.Value))
		}
		return jen.Chan().Add(r.render(t.Value))
	case *ast.Ellipsis:
		return jen.Op("...").Add(r.render(t.Elt))
	case *ast.FuncType:
		return jen.Func().Add(r.signature(t))
	case *ast.IndexExpr:
		return jen.Add(r.render(t.X)).Types(r.render(t.Index))
	case *ast.IndexListExpr:
		args := make([]jen.Code, 0, len(t.Indices))
		for _, idx := range t.Indices {
			args = append(args, r.render(idx))
		}
		return jen.Add(r.render(t.X)).Types(args...)
	case *ast.StructType:
		return jen.Struct(r.fields(t.Fields)...)
	case *ast.InterfaceType:
		var elems []jen.Code
		for _, m := range t.Methods.List {
			if ft, ok := m.Type.(*ast.FuncType); ok && len(m.Names) > 0 {
				for _, n := range m.Names {
					elems = append(elems, jen.Id(n.Name).Add(r.signature(ft)))
				}
				continue
			}
			elems = append(elems, r.render(m.Type))
		}
		return jen.Interface(elems...)
	case *ast.BinaryExpr:
		return jen.Add(r.render(t.X)).Op(t.Op.String()).Add(r.render(t.Y))
	case *ast.UnaryExpr:
		return jen.Op(t.Op.String()).Add(r.render(t.X))
	}
	return jen.Id(types.ExprString(expr))
}

// value renders constant expressions such as array lengths.
func (r exprRenderer) value(expr ast.Expr) jen.Code {
	if lit, ok := expr.(*ast.BasicLit); ok {
		return jen.Id(lit.Value)
	}
	return r.render(expr)
}

func (r exprRenderer) signature(ft *ast.FuncType) jen.Code {
	params := r.params(ft.Params)
	if ft.Results == nil || len(ft.Results.List) == 0 {
		return jen.Params(params...)
	}
	if len(ft.Results.List) == 1 && len(ft.Results.List[0].Names) == 0 {
		return jen.Params(params...).Add(r.render(ft.Results.List[0].Type))
	}
	return jen.Params(params...).Params(r.params(ft.Results)...)
}

func (r exprRenderer) params(list *ast.FieldList) []jen.Code {
	if list == nil {
		return nil
	}
	var out []jen.Code
	for _, f := range list.List {
		typ := r.render(f.Type)
		if len(f.Names) == 0 {
			out = append(out, typ)
			continue
		}
		for _, n := range f.Names {
			out = append(out, jen.Id(n.Name).Add(typ))
		}
	}
	return out
}

func (r exprRenderer) fields(list *ast.FieldList) []jen.Code {
	var out []jen.Code
	for _, f := range list.List {
		var field *jen.Statement
		if len(f.Names) == 0 {
			field = jen.Add(r.render(f.Type))
		} else {
			for i, n := range f.Names {
				if i == 0 {
					field = jen.Id(n.Name)
				} else {
					field.Op(",").Id(n.Name)
				}
			}
			field.Add(r.render(f.Type))
		}
		if f.Tag != nil {
			field.Id(f.Tag.Value)
		}
		out = append(out, field)
	}
	return out
}

// typeRenderer renders checked types, used for conversion sources that do
// not appear in the declaring file.
type typeRenderer struct{}

func (r typeRenderer) render(typ types.Type) jen.Code {
	switch t := typ.(type) {
	case *types.Basic:
		if t.Kind() == types.UnsafePointer {
			return jen.Qual("unsafe", "Pointer")
		}
		return jen.Id(t.Name())
	case *types.Alias:
		return r.render(types.Unalias(t))
	case *types.Named:
		obj := t.Obj()
		var name *jen.Statement
		if obj.Pkg() == nil {
			name = jen.Id(obj.Name())
		} else {
			name = jen.Qual(obj.Pkg().Path(), obj.Name())
		}
		if args := t.TypeArgs(); args != nil && args.Len() > 0 {
			codes := make([]jen.Code, 0, args.Len())
			for i := 0; i < args.Len(); i++ {
				codes = append(codes, r.render(args.At(i)))
			}
			name.Types(codes...)
		}
		return name
	case *types.TypeParam:
		return jen.Id(t.Obj().Name())
	case *types.Pointer:
		return jen.Op("*").Add(r.render(t.Elem()))
	case *types.Slice:
		return jen.Index().Add(r.render(t.Elem()))
	case *types.Array:
		return jen.Index(jen.Lit(int(t.Len()))).Add(r.render(t.Elem()))
	case *types.Map:
		return jen.Map(r.render(t.Key())).Add(r.render(t.Elem()))
	case *types.Chan:
		switch t.Dir() {
		case types.SendOnly:
			return jen.Chan().Op("<-").Add(r.render(t.Elem()))
		case types.RecvOnly:
			return jen.Op("<-").Chan().Add(r.render(t.Elem()))
		}
		return jen.Chan().Add(r.render(t.Elem()))
	case *types.Signature:
		return jen.Func().Add(r.signature(t))
	case *types.Struct:
		fields := make([]jen.Code, 0, t.NumFields())
		for i := 0; i < t.NumFields(); i++ {
			f := t.Field(i)
			var field *jen.Statement
			if f.Embedded() {
				field = jen.Add(r.render(f.Type()))
			} else {
				field = jen.Id(f.Name()).Add(r.render(f.Type()))
			}
			if tag := t.Tag(i); tag != "" {
				field.Id("`" + tag + "`")
			}
			fields = append(fields, field)
		}
		return jen.Struct(fields...)
	case *types.Interface:
		if t.Empty() {
			return jen.Id("any")
		}
		elems := make([]jen.Code, 0, t.NumExplicitMethods()+t.NumEmbeddeds())
		for i := 0; i < t.NumEmbeddeds(); i++ {
			elems = append(elems, r.render(t.EmbeddedType(i)))
		}
		for i := 0; i < t.NumExplicitMethods(); i++ {
			m := t.ExplicitMethod(i)
			elems = append(elems, jen.Id(m.Name()).Add(r.signature(m.Type().(*types.Signature))))
		}
		return jen.Interface(elems...)
	}
	return jen.Id(typ.String())
}

func (r typeRenderer) signature(sig *types.Signature) jen.Code {
	params := r.tuple(sig.Params(), sig.Variadic())
	results := sig.Results()
	switch results.Len() {
	case 0:
		return jen.Params(params...)
	case 1:
		if results.At(0).Name() == "" {
			return jen.Params(params...).Add(r.render(results.At(0).Type()))
		}
	}
	return jen.Params(params...).Params(r.tuple(results, false)...)
}

func (r typeRenderer) tuple(tuple *types.Tuple, variadic bool) []jen.Code {
	out := make([]jen.Code, 0, tuple.Len())
	for i := 0; i < tuple.Len(); i++ {
		v := tuple.At(i)
		var typ jen.Code
		if variadic && i == tuple.Len()-1 {
			if s, ok := v.Type().(*types.Slice); ok {
				typ = jen.Op("...").Add(r.render(s.Elem()))
			}
		}
		if typ == nil {
			typ = r.render(v.Type())
		}
		if v.Name() != "" && token.IsIdentifier(v.Name()) {
			out = append(out, jen.Id(v.Name()).Add(typ))
		} else {
			out = append(out, typ)
		}
	}
	return out
}
