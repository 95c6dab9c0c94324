package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
)

type ChangesCmd struct {
	Source string `arg:"" help:"Rate table source (.db, .sqlite, .sqlite3, .yaml or .yml)." type:"existingfile"`
	Record int64  `arg:"" help:"ID of the record whose transitions to list."`

	Until string `short:"u" default:"now" help:"Horizon instant, e.g. 2030-01-01 or \"now\"."`
}

func (cmd *ChangesCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, report := runContext(globals, fmt.Sprintf("changes %d", cmd.Record))
	defer report(ctx.Stderr)

	until, err := parseTime(cmd.Until)
	if err != nil {
		return err
	}

	book, closer, err := openBook(runCtx, cmd.Source)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	changes, err := book.ChangesUntil(cmd.Record, until)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		printInfof(ctx.Stdout, "record %d has no transitions before %s", cmd.Record, until.Format("2006-01-02"))
		return nil
	}

	for _, change := range changes {
		if change == nil {
			fmt.Fprintln(ctx.Stdout, "expires without replacement")
			continue
		}
		fmt.Fprintln(ctx.Stdout, change.String())
	}
	return nil
}
