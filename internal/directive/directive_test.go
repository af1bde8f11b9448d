package directive

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/origadmin/buildit/internal/model"
)

func ptr(s string) *string { return &s }

func TestParseStructDirective(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    model.GlobalDirectives
		wantOK  bool
		wantErr bool
	}{
		{name: "plain", line: "//buildit:builder", wantOK: true},
		{name: "into", line: "//buildit:builder into", want: model.GlobalDirectives{Into: true}, wantOK: true},
		{name: "comma list", line: "//buildit:builder future,into", want: model.GlobalDirectives{Into: true}, wantOK: true},
		{name: "unknown ignored", line: "//buildit:builder rename='X'", wantOK: true},
		{name: "into with value", line: "//buildit:builder into=false", wantOK: true, wantErr: true},
		{name: "other directive", line: "//go:generate buildit gen", wantOK: false},
		{name: "longer name", line: "//buildit:builders", wantOK: false},
		{name: "doc text", line: "// Person is a person.", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseStructDirective(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrMalformedDirective)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFieldTag(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		want    model.Directives
		wantErr string
	}{
		{name: "empty", tag: ""},
		{name: "no buildit key", tag: "`json:\"name\"`"},
		{name: "skip", tag: "`buildit:\"skip\"`", want: model.Directives{Skip: true}},
		{name: "dash", tag: "`json:\"-\" buildit:\"-\"`", want: model.Directives{Skip: true}},
		{name: "into", tag: "`buildit:\"into\"`", want: model.Directives{Into: true}},
		{name: "rename", tag: "`buildit:\"rename='SetName'\"`", want: model.Directives{Rename: ptr("SetName")}},
		{
			name: "rename and into",
			tag:  "`json:\"name,omitempty\" buildit:\"rename='SetName',into\"`",
			want: model.Directives{Into: true, Rename: ptr("SetName")},
		},
		{name: "unknown ignored", tag: "`buildit:\"into,default=5\"`", want: model.Directives{Into: true}},
		{name: "rename without value", tag: "`buildit:\"rename\"`", wantErr: "requires a value"},
		{name: "rename unquoted", tag: "`buildit:\"rename=SetName\"`", wantErr: "quoted string literal"},
		{name: "rename empty", tag: "`buildit:\"rename=''\"`", wantErr: "must not be empty"},
		{name: "rename not identifier", tag: "`buildit:\"rename='set-name'\"`", wantErr: "not a valid Go identifier"},
		{name: "flag with value", tag: "`buildit:\"skip=true\"`", wantErr: "does not take a value"},
		{name: "broken tag", tag: "`buildit:skip`", wantErr: "invalid struct tag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFieldTag(tt.tag)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrMalformedDirective)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseFieldTag(%q) mismatch (-want +got):\n%s", tt.tag, diff)
			}
		})
	}
}

const fieldSource = `package p

// Person is documented.
//
//buildit:builder into
type Person struct {
	// Name of the person
	// spans two lines
	//go:embed nothing
	Name string

	//buildit:skip
	Legacy string

	Trailing string //buildit:skip

	/* Block comment */
	Block string
}
`

func parseFields(t *testing.T) (*ast.GenDecl, []*ast.Field) {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "p.go", fieldSource, parser.ParseComments)
	require.NoError(t, err)
	gd := f.Decls[0].(*ast.GenDecl)
	st := gd.Specs[0].(*ast.TypeSpec).Type.(*ast.StructType)
	return gd, st.Fields.List
}

func TestFindStructDirective(t *testing.T) {
	gd, _ := parseFields(t)
	global, pos, ok, err := FindStructDirective(gd.Doc)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, pos.IsValid())
	assert.True(t, global.Into)

	_, _, ok, err = FindStructDirective(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocLinesAndLegacySkip(t *testing.T) {
	_, fields := parseFields(t)

	assert.Equal(t, []string{"// Name of the person", "// spans two lines"}, DocLines(fields[0].Doc))
	assert.False(t, HasLegacySkip(fields[0].Doc, fields[0].Comment))

	assert.Nil(t, DocLines(fields[1].Doc))
	assert.True(t, HasLegacySkip(fields[1].Doc, fields[1].Comment))
	assert.True(t, HasLegacySkip(fields[2].Doc, fields[2].Comment))

	assert.Equal(t, []string{"/* Block comment */"}, DocLines(fields[3].Doc))
}

func TestIsDirective(t *testing.T) {
	assert.True(t, IsDirective("//buildit:skip"))
	assert.True(t, IsDirective("//go:generate go run ."))
	assert.True(t, IsDirective("//nolint:lll"))
	assert.False(t, IsDirective("// Note: this is prose"))
	assert.False(t, IsDirective("//see http://example.com"))
	assert.False(t, IsDirective("/* block */"))
	assert.False(t, IsDirective("//"))
}
