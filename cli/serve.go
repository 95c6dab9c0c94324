package cli

import (
	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ratebook/web"
)

type ServeCmd struct {
	Source string `arg:"" help:"Rate table source (.db, .sqlite, .sqlite3, .yaml or .yml)." type:"existingfile"`

	Port  int  `short:"p" default:"8179" help:"Port to listen on (binds to 127.0.0.1)."`
	Watch bool `short:"w" help:"Reload the table when the source file changes."`
}

func (cmd *ServeCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, report := runContext(globals, "serve")
	defer report(ctx.Stderr)

	server := web.NewWithVersion(cmd.Port, cmd.Source, Version, CommitSHA)
	server.WatchEnabled = cmd.Watch

	printInfof(ctx.Stdout, "serving %s on http://127.0.0.1:%d", cmd.Source, cmd.Port)

	return server.Start(runCtx)
}
