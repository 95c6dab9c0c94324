// Package yamlsource implements the backing-store contract over a YAML
// file holding a list of row maps. It suits small hand-maintained rate
// tables kept under version control:
//
//	- id: 1
//	  valid_from: 2008-01-01
//	  valid_until: 2009-01-01
//	  replaced_by_id: 2
//	  value: "0.175"
//	- id: 2
//	  valid_from: 2009-01-01
//	  value: "0.15"
//	  is_default: true
package yamlsource

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/robinvdvleuten/ratebook/source"
)

// File reads rows from a YAML file on every AllRows call, so a reload
// picks up edits without reopening anything.
type File struct {
	Path string
}

// New creates a File source for the given path.
func New(path string) *File {
	return &File{Path: path}
}

// AllRows reads and parses the whole file.
func (f *File) AllRows(_ context.Context) ([]source.Row, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	return Parse(data)
}

var _ source.Source = (*File)(nil)

// Parse decodes YAML bytes into rows. The document must be a sequence
// of mappings; anything else is rejected.
func Parse(data []byte) ([]source.Row, error) {
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rows: %w", err)
	}

	// Dates may arrive as time.Time (yaml resolves timestamp-shaped
	// scalars) or as plain strings; the record decoder accepts both.
	rows := make([]source.Row, len(raw))
	for i, m := range raw {
		rows[i] = source.Row(m)
	}
	return rows, nil
}

// Marshal renders records' rows back to YAML, used by the init command
// to write example files.
func Marshal(rows []source.Row) ([]byte, error) {
	out, err := yaml.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rows: %w", err)
	}
	return out, nil
}
