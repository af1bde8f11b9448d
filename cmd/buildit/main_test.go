package main

import (
	"bytes"
	"context"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/origadmin/buildit/internal/generator"
	"github.com/origadmin/buildit/internal/model"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("buildit"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	err = kctx.Run(&cli.Globals, &Context{Context: context.Background(), Stdout: &stdout, Stderr: &stderr})
	return stdout.String(), err
}

func TestConfigShow(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "buildit.yaml"), []byte("naming:\n  prefix: Set\n"), 0o644))

	out, err := run(t, "-C", dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "prefix: Set")
	assert.Contains(t, out, "file: builder.gen.go")

	out, err = run(t, "-C", dir, "--log-level", "debug", "config", "show", "--sources")
	require.NoError(t, err)
	assert.Contains(t, out, "naming.prefix\tfile\n")
	assert.Contains(t, out, "log.level\tflag\n")
	assert.Contains(t, out, "output.file\tdefault\n")
	assert.Contains(t, out, "# file: "+filepath.Join(dir, "buildit.yaml"))
}

func TestConfigShowInvalid(t *testing.T) {
	_, err := run(t, "-C", t.TempDir(), "--log-level", "loud", "config", "show")
	assert.ErrorContains(t, err, "configuration validation failed")
}

func TestConfigSchema(t *testing.T) {
	out, err := run(t, "config", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "buildit configuration"`)
	assert.Contains(t, out, `"build_tags"`)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
	assert.Contains(t, out, "buildit")
}

func TestGenFlags(t *testing.T) {
	cli := &CLI{}
	parser, err := kong.New(cli)
	require.NoError(t, err)
	_, err = parser.Parse([]string{"gen", "-t", "Person", "--type", "Pair", "-o", "opts.gen.go", "--tags", "a,b", "./..."})
	require.NoError(t, err)

	assert.Equal(t, []string{"./..."}, cli.Gen.Patterns)
	assert.Equal(t, []string{"Person", "Pair"}, cli.Gen.Type)
	assert.Equal(t, map[string]any{
		"output.file": "opts.gen.go",
		"build_tags":  []string{"a", "b"},
	}, cli.Gen.overrides(&cli.Globals))
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, printReport(&buf, &generator.Report{}))
	assert.Empty(t, buf.String())

	pos := token.Position{Filename: "person.go", Line: 7, Column: 2}
	report := &generator.Report{Diagnostics: model.Diagnostics{
		model.NewDiagnostic(model.InvalidFieldType, pos, "Person.age: bad"),
	}}
	err := printReport(&buf, report)
	assert.EqualError(t, err, "generation failed with 1 diagnostics")
	assert.Equal(t, "person.go:7:2: Person.age: bad\n", buf.String())
}
