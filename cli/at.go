package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ratebook/output"
)

type AtCmd struct {
	Source string `arg:"" help:"Rate table source (.db, .sqlite, .sqlite3, .yaml or .yml)." type:"existingfile"`

	Time    string `short:"t" default:"now" help:"Instant to query, e.g. 2024-01-01 or \"now\"."`
	During  string `help:"Query a window instead of an instant, as \"FROM,TO\"."`
	Default bool   `help:"Print only the default record at the instant."`
}

func (cmd *AtCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, report := runContext(globals, fmt.Sprintf("at %s", cmd.Source))
	defer report(ctx.Stderr)

	book, closer, err := openBook(runCtx, cmd.Source)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	styles := output.NewStyles(ctx.Stdout)

	if cmd.During != "" {
		notBefore, notAfter, err := parseWindow(cmd.During)
		if err != nil {
			return err
		}

		records, err := book.ValidDuring(notBefore, notAfter)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			printInfof(ctx.Stdout, "no records usable during [%s, %s)",
				notBefore.Format("2006-01-02"), notAfter.Format("2006-01-02"))
			return nil
		}
		renderRecords(ctx.Stdout, records, styles)
		return nil
	}

	at, err := parseTime(cmd.Time)
	if err != nil {
		return err
	}

	if cmd.Default {
		rec, ok := book.DefaultAt(at)
		if !ok {
			printInfof(ctx.Stdout, "no default record at %s", at.Format("2006-01-02"))
			return NewCommandError(1)
		}
		fmt.Fprintln(ctx.Stdout, rec.String())
		return nil
	}

	records := book.ValidAt(at)
	if len(records) == 0 {
		printInfof(ctx.Stdout, "no records valid at %s", at.Format("2006-01-02"))
		return nil
	}
	renderRecords(ctx.Stdout, records, styles)
	return nil
}

// parseWindow splits a "FROM,TO" flag value into its two instants.
func parseWindow(value string) (time.Time, time.Time, error) {
	parts := strings.SplitN(value, ",", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid window %q (expected \"FROM,TO\")", value)
	}
	notBefore, err := parseTime(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	notAfter, err := parseTime(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return notBefore, notAfter, nil
}
