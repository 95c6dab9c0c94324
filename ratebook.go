// Package ratebook resolves effective-dated values such as tax rates.
// Every record is valid over a half-open time interval and may be
// linked to the record replacing it, so "the rate that applies at time
// T" stays answerable as rates change over the years without ever
// rewriting history.
//
// The package is a facade over two layers: an identity cache holding
// the full backing table in memory as an atomically-swapped snapshot,
// and a chain resolver answering time-based queries against it.
//
// Example usage:
//
//	src := yamlsource.New("rates.yaml")
//	book, err := ratebook.Open(ctx, src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rate, ok := book.DefaultAt(time.Now())
package ratebook

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/robinvdvleuten/ratebook/cache"
	"github.com/robinvdvleuten/ratebook/chain"
	"github.com/robinvdvleuten/ratebook/record"
	"github.com/robinvdvleuten/ratebook/source"
	"github.com/robinvdvleuten/ratebook/source/sqlitesource"
	"github.com/robinvdvleuten/ratebook/source/yamlsource"
)

// Book combines the identity cache and the chain resolver behind one
// handle. All query methods are safe for concurrent use; Reload may
// run concurrently with queries but not with itself.
type Book struct {
	cache    *cache.Cache
	resolver *chain.Resolver
}

// Option configures a Book.
type Option func(*options)

type options struct {
	cacheOpts []cache.Option
}

// WithFieldMap overrides the logical-to-physical column mapping.
func WithFieldMap(fm record.FieldMap) Option {
	return func(o *options) {
		o.cacheOpts = append(o.cacheOpts, cache.WithFieldMap(fm))
	}
}

// Open loads the full record set from src and returns a ready Book.
func Open(ctx context.Context, src source.Source, opts ...Option) (*Book, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := cache.New(src, o.cacheOpts...)
	if err := c.Load(ctx); err != nil {
		return nil, err
	}

	return &Book{cache: c, resolver: chain.NewResolver(c)}, nil
}

// Reload re-reads the backing table. On failure the previous snapshot
// stays in effect and keeps serving queries.
func (b *Book) Reload(ctx context.Context) error {
	return b.cache.Reload(ctx)
}

// FindOne returns the record with the given id.
func (b *Book) FindOne(id int64) (record.Record, error) {
	return b.cache.FindOne(id)
}

// FindMany returns the records for ids, preserving order and
// duplicates. All-or-nothing: any missing id fails the call.
func (b *Book) FindMany(ids []int64) ([]record.Record, error) {
	return b.cache.FindMany(ids)
}

// All returns every record.
func (b *Book) All() []record.Record {
	return b.cache.All()
}

// ValidAt returns the records valid at instant t.
func (b *Book) ValidAt(t time.Time) []record.Record {
	return b.resolver.ValidAt(t)
}

// ValidDuring returns the usable records for the window
// [notBefore, notAfter); see chain.Resolver.ValidDuring.
func (b *Book) ValidDuring(notBefore, notAfter time.Time) ([]record.Record, error) {
	return b.resolver.ValidDuring(notBefore, notAfter)
}

// DefaultAt returns the default record at instant t.
func (b *Book) DefaultAt(t time.Time) (record.Record, bool) {
	return b.resolver.DefaultAt(t)
}

// At resolves the record applying at instant t starting from the record
// with the given id, walking its replacement chain in either direction.
func (b *Book) At(id int64, t time.Time) (record.Record, bool, error) {
	rec, err := b.cache.FindOne(id)
	if err != nil {
		return record.Record{}, false, err
	}
	resolved, ok := b.resolver.At(rec, t)
	return resolved, ok, nil
}

// ChangesUntil lists the future transitions of the record with the
// given id strictly before t; a nil element marks expiry without
// replacement.
func (b *Book) ChangesUntil(id int64, t time.Time) ([]chain.Change, error) {
	rec, err := b.cache.FindOne(id)
	if err != nil {
		return nil, err
	}
	return b.resolver.ChangesUntil(rec, t), nil
}

// DetectSource opens a backing store based on the path's extension:
// .db, .sqlite and .sqlite3 open a SQLite database, .yaml and .yml a
// YAML file. The returned closer is a no-op for file-based sources.
func DetectSource(path string) (source.Source, func() error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		db, err := sqlitesource.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case ".yaml", ".yml":
		return yamlsource.New(path), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("cannot detect source type of %s (expected .db, .sqlite, .sqlite3, .yaml or .yml)", path)
}
