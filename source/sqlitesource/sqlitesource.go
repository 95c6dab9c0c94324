// Package sqlitesource implements the backing-store contract on top of
// a SQLite database file. The cache only ever performs full-table
// reads; the write helpers exist solely for fixtures and the init
// command.
package sqlitesource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/robinvdvleuten/ratebook/record"
	"github.com/robinvdvleuten/ratebook/source"
)

// DefaultTable is the table read when WithTable is not given.
const DefaultTable = "rates"

// DB reads effective-dated rows from a single SQLite table.
type DB struct {
	db    *sql.DB
	table string
}

// Option configures a DB.
type Option func(*DB)

// WithTable overrides the table name. The name is interpolated into
// SQL, so it is restricted to identifier characters.
func WithTable(name string) Option {
	return func(d *DB) {
		d.table = name
	}
}

// Open opens (or creates) a SQLite database at path.
func Open(path string, opts ...Option) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY during fixture writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	d := &DB{db: db, table: DefaultTable}
	for _, opt := range opts {
		opt(d)
	}

	if !validIdentifier(d.table) {
		_ = db.Close()
		return nil, fmt.Errorf("invalid table name %q", d.table)
	}

	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// AllRows reads every row of the table.
func (d *DB) AllRows(ctx context.Context) ([]source.Row, error) {
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", d.table))
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", d.table, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", d.table, err)
	}

	var out []source.Row
	for rows.Next() {
		values := make([]any, len(columns))
		scans := make([]any, len(columns))
		for i := range values {
			scans[i] = &values[i]
		}
		if err := rows.Scan(scans...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", d.table, err)
		}

		row := make(source.Row, len(columns))
		for i, col := range columns {
			// The sqlite3 driver hands TEXT back as []byte; normalize so
			// the decoder sees strings.
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", d.table, err)
	}

	return out, nil
}

var _ source.Source = (*DB)(nil)

// CreateTable creates the rate table with the given field mapping.
// Fixture helper; the core never issues DDL.
func (d *DB) CreateTable(ctx context.Context, fm record.FieldMap) error {
	for _, col := range fm.Columns() {
		if !validIdentifier(col) {
			return fmt.Errorf("invalid column name %q", col)
		}
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		%s INTEGER PRIMARY KEY,
		%s TEXT NOT NULL,
		%s TEXT,
		%s INTEGER REFERENCES %s(%s),
		%s TEXT,
		%s INTEGER NOT NULL DEFAULT 0
	)`, d.table, fm.ID, fm.ValidFrom, fm.ValidUntil, fm.ReplacedBy, d.table, fm.ID, fm.Value, fm.IsDefault)

	if _, err := d.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", d.table, err)
	}
	return nil
}

// InsertRecords writes records into the table. Fixture helper.
func (d *DB) InsertRecords(ctx context.Context, fm record.FieldMap, records []record.Record) error {
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?)",
		d.table, strings.Join(fm.Columns(), ", "))

	for _, r := range records {
		var until, succ any
		if r.ValidUntil != nil {
			until = r.ValidUntil.UTC().Format("2006-01-02 15:04:05")
		}
		if r.ReplacedBy != nil {
			succ = *r.ReplacedBy
		}

		from := r.ValidFrom.UTC().Format("2006-01-02 15:04:05")
		isDefault := 0
		if r.IsDefault {
			isDefault = 1
		}

		if _, err := d.db.ExecContext(ctx, stmt, r.ID, from, until, succ, r.Value, isDefault); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", r.ID, err)
		}
	}
	return nil
}

// validIdentifier restricts interpolated names to plain identifiers.
func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
