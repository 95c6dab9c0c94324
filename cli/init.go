package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ratebook/record"
	"github.com/robinvdvleuten/ratebook/source"
	"github.com/robinvdvleuten/ratebook/source/sqlitesource"
	"github.com/robinvdvleuten/ratebook/source/yamlsource"
)

type InitCmd struct {
	Path string `arg:"" help:"Destination file; the extension selects the format (.db, .sqlite, .sqlite3, .yaml or .yml)."`

	Force bool `short:"f" help:"Overwrite an existing file without asking."`
}

func (cmd *InitCmd) Run(ctx *kong.Context, globals *Globals) error {
	if _, err := os.Stat(cmd.Path); err == nil && !cmd.Force {
		confirm, err := promptYesNo(fmt.Sprintf("%s already exists. Overwrite it?", cmd.Path))
		if err != nil {
			return err
		}
		if !confirm {
			printInfof(ctx.Stdout, "keeping %s", cmd.Path)
			return nil
		}
	}

	switch strings.ToLower(filepath.Ext(cmd.Path)) {
	case ".db", ".sqlite", ".sqlite3":
		if err := writeSQLiteExample(cmd.Path); err != nil {
			return err
		}
	case ".yaml", ".yml":
		if err := writeYAMLExample(cmd.Path); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot detect source type of %s (expected .db, .sqlite, .sqlite3, .yaml or .yml)", cmd.Path)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Wrote example rate table to %s", cmd.Path))
	printInfof(ctx.Stdout, "try: ratebook at %s --time 2009-07-01", cmd.Path)
	return nil
}

// exampleRecords is a small but complete chain: a replaced standard
// rate, its successor and a reduced rate with no end date.
func exampleRecords() []record.Record {
	return []record.Record{
		record.New(1, "2008-01-01",
			record.Until("2009-01-01"),
			record.ReplacedBy(2),
			record.Value("0.175"),
			record.Default()),
		record.New(2, "2009-01-01",
			record.Value("0.15"),
			record.Default()),
		record.New(3, "2008-01-01",
			record.Value("0.05")),
	}
}

func writeSQLiteExample(path string) error {
	// Recreate from scratch; CreateTable is IF NOT EXISTS and an old
	// table would otherwise shine through.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	db, err := sqlitesource.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	writeCtx := context.Background()
	fm := record.DefaultFieldMap()
	if err := db.CreateTable(writeCtx, fm); err != nil {
		return err
	}
	return db.InsertRecords(writeCtx, fm, exampleRecords())
}

func writeYAMLExample(path string) error {
	fm := record.DefaultFieldMap()

	rows := make([]source.Row, 0, len(exampleRecords()))
	for _, r := range exampleRecords() {
		row := source.Row{
			fm.ID:        r.ID,
			fm.ValidFrom: r.ValidFrom.Format("2006-01-02"),
			fm.Value:     r.Value,
		}
		if r.ValidUntil != nil {
			row[fm.ValidUntil] = r.ValidUntil.Format("2006-01-02")
		}
		if r.ReplacedBy != nil {
			row[fm.ReplacedBy] = *r.ReplacedBy
		}
		if r.IsDefault {
			row[fm.IsDefault] = true
		}
		rows = append(rows, row)
	}

	data, err := yamlsource.Marshal(rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
