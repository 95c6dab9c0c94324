package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table renders rows of cells with columns padded to their widest
// entry. Widths are measured with runewidth so double-width runes do
// not break alignment.
type Table struct {
	header []string
	rows   [][]string
}

// NewTable creates a table with the given header cells.
func NewTable(header ...string) *Table {
	return &Table{header: header}
}

// AddRow appends a row. Short rows are padded with empty cells.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the table. With a non-nil Styles the header is dimmed.
func (t *Table) Render(w io.Writer, styles *Styles) {
	widths := make([]int, len(t.header))
	for i, cell := range t.header {
		widths[i] = runewidth.StringWidth(cell)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && runewidth.StringWidth(cell) > widths[i] {
				widths[i] = runewidth.StringWidth(cell)
			}
		}
	}

	writeRow := func(cells []string, style func(string) string) {
		parts := make([]string, 0, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			padded := cell + strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell))
			if style != nil {
				padded = style(padded)
			}
			parts = append(parts, padded)
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	headerStyle := func(s string) string { return s }
	if styles != nil {
		headerStyle = styles.Dim
	}
	writeRow(t.header, headerStyle)
	for _, row := range t.rows {
		writeRow(row, nil)
	}
}
