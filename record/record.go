// Package record defines the effective-dated record model shared by the
// cache and chain packages. A record carries a value that applies over a
// half-open time interval [ValidFrom, ValidUntil) and may name the record
// that replaces it when the interval ends, forming replacement chains
// such as successive versions of a tax rate.
//
// Records are append-only: once written to the backing table they are
// never mutated or deleted. New periods are expressed by inserting a
// successor and pointing the expiring record's replaced_by column at it.
package record

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a single effective-dated row.
type Record struct {
	// ID is the backing table's primary key, unique per table.
	ID int64

	// ValidFrom is the first instant the record applies. Required.
	ValidFrom time.Time

	// ValidUntil is the first instant the record no longer applies.
	// Nil means "valid until further notice".
	ValidUntil *time.Time

	// ReplacedBy names the successor record, or nil if there is none.
	// It must be nil whenever ValidUntil is nil.
	ReplacedBy *int64

	// Value is the opaque payload, typically a rate or price. The core
	// never interprets it; use Rate for decimal arithmetic.
	Value string

	// IsDefault marks the record callers should pick when they have no
	// other preference. At most one record should be default among all
	// records valid at the same instant.
	IsDefault bool
}

// ValidAt reports whether the record applies at instant t, i.e. whether
// t falls inside [ValidFrom, ValidUntil).
func (r Record) ValidAt(t time.Time) bool {
	if t.Before(r.ValidFrom) {
		return false
	}
	return r.ValidUntil == nil || r.ValidUntil.After(t)
}

// Overlaps reports whether the record's interval intersects the half-open
// window [notBefore, notAfter).
func (r Record) Overlaps(notBefore, notAfter time.Time) bool {
	if !r.ValidFrom.Before(notAfter) {
		return false
	}
	return r.ValidUntil == nil || r.ValidUntil.After(notBefore)
}

// Expired reports whether the record's interval has ended at or before t.
func (r Record) Expired(t time.Time) bool {
	return r.ValidUntil != nil && !r.ValidUntil.After(t)
}

// Rate parses the record's value as a decimal.
func (r Record) Rate() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(r.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid value %q for record %d: %w", r.Value, r.ID, err)
	}
	return d, nil
}

// MustRate parses the record's value as a decimal and panics on error.
// Use only in tests or when the value is known to be valid.
func (r Record) MustRate() decimal.Decimal {
	d, err := r.Rate()
	if err != nil {
		panic(err)
	}
	return d
}

// String renders the record in a compact single-line form for logs and
// error messages.
func (r Record) String() string {
	until := "..."
	if r.ValidUntil != nil {
		until = r.ValidUntil.Format("2006-01-02")
	}
	s := fmt.Sprintf("record %d [%s, %s)", r.ID, r.ValidFrom.Format("2006-01-02"), until)
	if r.ReplacedBy != nil {
		s += fmt.Sprintf(" -> %d", *r.ReplacedBy)
	}
	if r.IsDefault {
		s += " (default)"
	}
	return s
}
