package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValidationErrors wraps the validation errors collected for one row set.
// All chain problems are reported together rather than one at a time.
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors occurred", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping.
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}

// DecodeError is returned when a backing-store row cannot be converted
// into a Record.
type DecodeError struct {
	Field  string
	Value  any
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode field %q from %v (%T): %s", e.Field, e.Value, e.Value, e.Reason)
}

// IntervalError is returned when a record's validity interval is
// malformed: a missing valid-from, or valid-until not after valid-from.
type IntervalError struct {
	ID         int64
	ValidFrom  time.Time
	ValidUntil *time.Time
}

func (e *IntervalError) Error() string {
	if e.ValidFrom.IsZero() {
		return fmt.Sprintf("record %d has no valid-from date", e.ID)
	}
	return fmt.Sprintf("record %d has valid-until %s not after valid-from %s",
		e.ID, e.ValidUntil.Format("2006-01-02"), e.ValidFrom.Format("2006-01-02"))
}

// DuplicateIDError is returned when two rows share an id.
type DuplicateIDError struct {
	ID int64
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate record id %d", e.ID)
}

// TerminalLinkError is returned when an open-ended record (nil
// valid-until) names a replacement. A record valid until further notice
// cannot already know what follows it.
type TerminalLinkError struct {
	ID         int64
	ReplacedBy int64
}

func (e *TerminalLinkError) Error() string {
	return fmt.Sprintf("record %d is valid until further notice but is replaced by %d", e.ID, e.ReplacedBy)
}

// DanglingLinkError is returned when replaced-by names an id that does
// not exist in the row set.
type DanglingLinkError struct {
	ID         int64
	ReplacedBy int64
}

func (e *DanglingLinkError) Error() string {
	return fmt.Sprintf("record %d is replaced by unknown record %d", e.ID, e.ReplacedBy)
}

// SpliceError is returned when a record's valid-until does not line up
// exactly with its successor's valid-from, leaving a gap or an overlap
// at the splice point.
type SpliceError struct {
	ID            int64
	ReplacedBy    int64
	ValidUntil    time.Time
	SuccessorFrom time.Time
}

func (e *SpliceError) Error() string {
	return fmt.Sprintf("record %d ends %s but its replacement %d starts %s",
		e.ID, e.ValidUntil.Format("2006-01-02"), e.ReplacedBy, e.SuccessorFrom.Format("2006-01-02"))
}

// ChainCycleError is returned when the replacement graph contains a
// cycle. Cyclic data would make chain traversal loop forever, so it is
// rejected when the row set is loaded rather than discovered mid-query.
type ChainCycleError struct {
	// Path lists the ids along the cycle, ending where it re-enters.
	Path []int64
}

func (e *ChainCycleError) Error() string {
	ids := make([]string, len(e.Path))
	for i, id := range e.Path {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("replacement chain contains a cycle: %s", strings.Join(ids, " -> "))
}
