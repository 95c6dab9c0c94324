package cli

import (
	stdErrors "errors"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ratebook/record"
)

type CheckCmd struct {
	Source string `arg:"" help:"Rate table source (.db, .sqlite, .sqlite3, .yaml or .yml)." type:"existingfile"`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, report := runContext(globals, fmt.Sprintf("check %s", cmd.Source))
	defer report(ctx.Stderr)

	book, closer, err := openBook(runCtx, cmd.Source)
	if err != nil {
		var verr *record.ValidationErrors
		if stdErrors.As(err, &verr) {
			for _, e := range verr.Errors {
				printError(ctx.Stderr, e.Error())
			}
			_, _ = fmt.Fprintln(ctx.Stderr)
			printError(ctx.Stderr, fmt.Sprintf("%d validation error(s) found", len(verr.Errors)))

			report(ctx.Stderr)
			return NewCommandError(1)
		}
		return err
	}
	defer func() { _ = closer() }()

	printSuccess(ctx.Stdout, fmt.Sprintf("Check passed (%d records)", len(book.All())))

	return nil
}
