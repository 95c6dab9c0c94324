package cli

import (
	"io"
	"strconv"

	"github.com/robinvdvleuten/ratebook/output"
	"github.com/robinvdvleuten/ratebook/record"
)

// renderRecords writes records as an aligned table.
func renderRecords(w io.Writer, records []record.Record, styles *output.Styles) {
	table := output.NewTable("ID", "VALID FROM", "VALID UNTIL", "REPLACED BY", "VALUE", "DEFAULT")
	for _, r := range records {
		until := ""
		if r.ValidUntil != nil {
			until = r.ValidUntil.Format("2006-01-02")
		}
		succ := ""
		if r.ReplacedBy != nil {
			succ = strconv.FormatInt(*r.ReplacedBy, 10)
		}
		def := ""
		if r.IsDefault {
			def = "yes"
		}

		table.AddRow(
			strconv.FormatInt(r.ID, 10),
			r.ValidFrom.Format("2006-01-02"),
			until,
			succ,
			r.Value,
			def,
		)
	}
	table.Render(w, styles)
}
