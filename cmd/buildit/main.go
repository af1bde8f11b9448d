package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/origadmin/buildit/internal/types"
)

var (
	version   = "0.1.0"
	commit    = ""
	treeState = ""
	date      = ""
	builtBy   = ""
)

// Globals are the flags shared by every command.
type Globals struct {
	LogLevel string `help:"Log level (debug, info, warn, error). Overrides the configuration." name:"log-level" placeholder:"LEVEL"`
	LogJSON  bool   `help:"Log as JSON." name:"log-json"`
	Config   string `help:"Configuration file. Defaults to buildit.yaml in the working directory." short:"c" type:"path"`
	Dir      string `help:"Working directory." short:"C" default:"." type:"existingdir"`
}

// CLI is the command line of buildit.
type CLI struct {
	Globals

	Gen     GenCmd     `cmd:"" default:"withargs" help:"Generate builder methods."`
	Check   CheckCmd   `cmd:"" help:"Report diagnostics and out of date files without writing."`
	Config  ConfigCmd  `cmd:"" help:"Inspect the configuration."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

// Context is passed to every command.
type Context struct {
	context.Context
	Stdout io.Writer
	Stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name(types.Application),
		kong.Description(types.Description),
		kong.UsageOnError(),
	)
	err := kctx.Run(&cli.Globals, &Context{Context: ctx, Stdout: os.Stdout, Stderr: os.Stderr})
	kctx.FatalIfErrorf(err)
}
