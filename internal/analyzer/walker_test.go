package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/origadmin/buildit/internal/model"
	"github.com/origadmin/buildit/internal/testutil"
)

const optionSrc = `package app

type Option[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Option[T] { return Option[T]{value: v, ok: true} }
`

func walk(t *testing.T, opts Options, files map[string]string) *model.Package {
	t.Helper()
	src := testutil.Parse(t, "example.com/app", files)
	in := WalkInput{
		Name: src.Files[0].Name.Name,
		Path: src.Path,
		Dir:  src.Dir,
		Fset: src.Fset,
		Info: src.Info,
	}
	for i, f := range src.Files {
		in.Files = append(in.Files, SourceFile{Name: src.Names[i], File: f})
	}
	return NewWalker(opts).WalkFiles(in)
}

func fieldNames(s *model.Struct) []string {
	var names []string
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

func structNames(pkg *model.Package) []string {
	var names []string
	for _, s := range pkg.Structs {
		names = append(names, s.Name)
	}
	return names
}

const personSrc = `package app

// Person is a person.
//
//buildit:builder
type Person struct {
	// Name of the person.
	name Option[string]
	a, b Option[int]
	address string ` + "`buildit:\"skip\"`" + `
	//buildit:skip
	legacy int
	bad Option[int] ` + "`buildit:\"rename=x\"`" + `
	Exported Option[string] ` + "`json:\"e\" buildit:\"into\"`" + `
}

type Unmarked struct{ x Option[int] }

//buildit:builder into
type Pair[K comparable, V any] struct {
	key   Option[K]
	value Option[V]
}

//buildit:builder
type Shape interface{ Area() float64 }

//buildit:builder into=yes
type Broken struct{}

func (p Person) String() string { return "" }

func (p *Pair[K, V]) Reset() {}
`

func TestWalkFiles(t *testing.T) {
	pkg := walk(t, Options{}, map[string]string{
		"option.go": optionSrc,
		"person.go": personSrc,
	})

	assert.Equal(t, "app", pkg.Name)
	assert.Equal(t, "example.com/app", pkg.Path)
	require.Equal(t, []string{"Person", "Pair"}, structNames(pkg))

	person := pkg.Structs[0]
	assert.Equal(t, []string{"name", "a", "b", "address", "legacy", "bad", "Exported"}, fieldNames(person))
	assert.Equal(t, "/src/example/person.go", person.Filename)
	assert.Equal(t, 6, person.Pos.Line)
	assert.False(t, person.Global.Into)
	assert.True(t, person.Methods["String"])
	assert.Empty(t, person.TypeParams)

	name := person.Fields[0]
	assert.Equal(t, []string{"// Name of the person."}, name.Docs)
	require.NotNil(t, name.TypeOf)
	assert.Equal(t, "example.com/app.Option[string]", name.TypeOf.String())
	assert.False(t, name.Exported)

	a, b := person.Fields[1], person.Fields[2]
	assert.Same(t, a.Type, b.Type)
	assert.Equal(t, "example.com/app.Option[int]", b.TypeOf.String())

	assert.True(t, person.Fields[3].Skipped())
	assert.False(t, person.Fields[3].LegacySkip)
	assert.True(t, person.Fields[4].LegacySkip)
	assert.True(t, person.Fields[4].Skipped())
	assert.Nil(t, person.Fields[4].Docs)

	bad := person.Fields[5]
	assert.ErrorIs(t, bad.DirectiveErr, model.ErrMalformedDirective)
	assert.Equal(t, 13, bad.TagPos.Line)

	exported := person.Fields[6]
	assert.True(t, exported.Exported)
	assert.True(t, exported.Directives.Into)

	pair := pkg.Structs[1]
	assert.Equal(t, []string{"K", "V"}, pair.TypeArgs())
	assert.True(t, pair.Global.Into)
	assert.True(t, pair.Methods["Reset"])
	assert.Equal(t, []string{"key", "value"}, fieldNames(pair))

	require.Len(t, pkg.Diagnostics, 2)
	assert.Equal(t, model.UnsupportedShape, pkg.Diagnostics[0].Kind)
	assert.Contains(t, pkg.Diagnostics[0].Message, "Shape: builder generation does not work on interface types")
	assert.Equal(t, model.MalformedDirective, pkg.Diagnostics[1].Kind)
	assert.Contains(t, pkg.Diagnostics[1].Message, "Broken")
	assert.Equal(t, 28, pkg.Diagnostics[1].Pos.Line)
}

func TestWalkFilesSelection(t *testing.T) {
	files := map[string]string{
		"option.go": optionSrc,
		"a.go": `package app

type Plain struct {
	v Option[int]
}

//buildit:builder
type Marked struct{}

type (
	// G groups declarations.
	//
	//buildit:builder
	Grouped struct{}
	Other   struct{}
)
`,
		"z_test_helpers.go": `package app

//buildit:builder
type Excluded struct{}
`,
		"gen.go": `// Code generated by stringer. DO NOT EDIT.

package app

//buildit:builder
type Generated struct{}

func (Plain) String() string { return "" }
`,
		"builder.gen.go": `package app

func (Plain) WithV() {}
`,
	}

	pkg := walk(t, Options{Exclude: []string{"z_*.go"}}, files)
	assert.Equal(t, []string{"Marked", "Grouped"}, structNames(pkg))
	assert.Empty(t, pkg.Diagnostics)

	pkg = walk(t, Options{Types: []string{"Plain"}}, files)
	require.Equal(t, []string{"Plain", "Marked", "Grouped", "Excluded"}, structNames(pkg))
	plain := pkg.Structs[0]
	assert.Equal(t, "Plain", plain.Name)
	// generated files count for collisions, the output file does not
	assert.True(t, plain.Methods["String"])
	assert.False(t, plain.Methods["WithV"])
}

func TestWalkFilesShapes(t *testing.T) {
	pkg := walk(t, Options{}, map[string]string{
		"option.go": optionSrc,
		"shapes.go": `package app

//buildit:builder
type ID string

//buildit:builder
type List []int

//buildit:builder
type Alias = Plain

//buildit:builder
type Fn func()

type Plain struct{}
`,
	})
	assert.Empty(t, pkg.Structs)
	require.Len(t, pkg.Diagnostics, 4)
	for _, d := range pkg.Diagnostics {
		assert.Equal(t, model.UnsupportedShape, d.Kind)
		assert.ErrorIs(t, d, model.ErrUnsupportedShape)
	}
	assert.Contains(t, pkg.Diagnostics[0].Message, "defined non-struct types")
	assert.Contains(t, pkg.Diagnostics[1].Message, "slice types")
	assert.Contains(t, pkg.Diagnostics[2].Message, "type aliases")
	assert.Contains(t, pkg.Diagnostics[3].Message, "function types")
}

func TestWalkFilesEmbedded(t *testing.T) {
	pkg := walk(t, Options{}, map[string]string{
		"option.go": optionSrc,
		"e.go": `package app

type Base struct{}

//buildit:builder
type Derived struct {
	Base
	*Option[int] ` + "`buildit:\"skip\"`" + `
}
`,
	})
	require.Len(t, pkg.Structs, 1)
	fields := pkg.Structs[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "Base", fields[0].Name)
	assert.True(t, fields[0].Embedded)
	assert.True(t, fields[0].Exported)
	assert.Equal(t, "Option", fields[1].Name)
	assert.True(t, fields[1].Skipped())
}

func TestGuessPackageName(t *testing.T) {
	tests := map[string]string{
		"time":                           "time",
		"github.com/foo/bar":             "bar",
		"gopkg.in/yaml.v3":               "yaml",
		"github.com/knadh/koanf/v2":      "koanf",
		"github.com/caarlos0/go-version": "version",
		"github.com/x/my-lib":            "my_lib",
	}
	for in, want := range tests {
		assert.Equal(t, want, guessPackageName(in), in)
	}
}
