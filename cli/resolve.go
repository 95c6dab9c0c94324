package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
)

type ResolveCmd struct {
	Source string `arg:"" help:"Rate table source (.db, .sqlite, .sqlite3, .yaml or .yml)." type:"existingfile"`
	Record int64  `arg:"" help:"ID of the record to start from."`

	Time string `short:"t" default:"now" help:"Instant to resolve for, e.g. 2024-01-01 or \"now\"."`
}

func (cmd *ResolveCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, report := runContext(globals, fmt.Sprintf("resolve %d", cmd.Record))
	defer report(ctx.Stderr)

	at, err := parseTime(cmd.Time)
	if err != nil {
		return err
	}

	book, closer, err := openBook(runCtx, cmd.Source)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	resolved, ok, err := book.At(cmd.Record, at)
	if err != nil {
		return err
	}
	if !ok {
		printInfof(ctx.Stdout, "record %d does not resolve at %s", cmd.Record, at.Format("2006-01-02"))
		return NewCommandError(1)
	}

	fmt.Fprintln(ctx.Stdout, resolved.String())
	return nil
}
