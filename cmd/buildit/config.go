package main

import (
	"fmt"
	"sort"

	"github.com/spf13/afero"

	"github.com/origadmin/buildit/internal/config"
)

// ConfigCmd groups the configuration commands.
type ConfigCmd struct {
	Show   ConfigShowCmd   `cmd:"" help:"Print the effective configuration as YAML."`
	Schema ConfigSchemaCmd `cmd:"" help:"Print the JSON schema of the configuration file."`
}

// ConfigShowCmd prints the effective configuration.
type ConfigShowCmd struct {
	Sources bool `help:"Print where every value comes from instead."`
}

func (c *ConfigShowCmd) Run(g *Globals, ctx *Context) error {
	l := config.NewLoader(afero.NewOsFs())
	cfg, err := l.Load(g.Dir, g.Config, (&SourceFlags{}).overrides(g))
	if err != nil {
		return err
	}
	if c.Sources {
		sources := l.Sources()
		keys := make([]string, 0, len(sources))
		for k := range sources {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(ctx.Stdout, "%s\t%s\n", k, sources[k]); err != nil {
				return err
			}
		}
		if file := l.File(); file != "" {
			_, err = fmt.Fprintf(ctx.Stdout, "# file: %s\n", file)
		}
		return err
	}
	out, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = ctx.Stdout.Write(out)
	return err
}

// ConfigSchemaCmd prints the configuration schema.
type ConfigSchemaCmd struct{}

func (c *ConfigSchemaCmd) Run(ctx *Context) error {
	out, err := config.Schema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.Stdout, string(out))
	return err
}
