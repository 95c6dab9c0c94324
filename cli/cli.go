// Package cli implements the ratebook command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/robinvdvleuten/ratebook"
	"github.com/robinvdvleuten/ratebook/output"
	"github.com/robinvdvleuten/ratebook/telemetry"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		successStyle.Render(successSymbol),
		message,
	)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		errorStyle.Render(errorSymbol),
		errorStyle.Render(message),
	)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		infoStyle.Render(infoSymbol),
		formatted,
	)
}

// promptYesNo prompts the user with a yes/no question.
// Returns false by default if stdin is not a terminal.
func promptYesNo(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, nil
	}

	var confirm bool

	form := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	return confirm, nil
}

// openBook detects the source type from the path, loads it fully and
// returns a ready book plus a closer for the underlying store.
func openBook(ctx context.Context, path string) (*ratebook.Book, func() error, error) {
	src, closer, err := ratebook.DetectSource(path)
	if err != nil {
		return nil, nil, err
	}

	book, err := ratebook.Open(ctx, src)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	return book, closer, nil
}

// timeLayouts accepted by the --time style flags.
var timeLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTime parses a flag value; "now" and the empty string mean the
// current instant.
func parseTime(value string) (time.Time, error) {
	if value == "" || value == "now" {
		return time.Now(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (expected YYYY-MM-DD or RFC 3339)", value)
}

// runContext builds the command context, attaching a timing collector
// when --telemetry is set. The returned report function renders the
// collected timings once; calling it multiple times is safe.
func runContext(globals *Globals, name string) (context.Context, func(w io.Writer)) {
	ctx := context.Background()
	if !globals.Telemetry {
		return ctx, func(io.Writer) {}
	}

	collector := telemetry.NewTimingCollector()
	ctx = telemetry.WithCollector(ctx, collector)
	timer := collector.Start(name)

	var once sync.Once
	report := func(w io.Writer) {
		once.Do(func() {
			timer.End()
			_, _ = fmt.Fprintln(w)
			collector.Report(w, output.NewStyles(w))
		})
	}
	return ctx, report
}
