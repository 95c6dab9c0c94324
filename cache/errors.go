package cache

import "fmt"

// NotFoundError is returned when a requested id is absent from the
// cache. The cache is authoritative between reloads, so callers must
// not fall back to the backing store on this error.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %d not found in cache", e.ID)
}

// StoreError wraps a backing-store read failure during Load or Reload.
// The previous snapshot stays in effect when it is returned.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("backing store read failed: %v", e.Err)
}

// Unwrap returns the underlying store error.
func (e *StoreError) Unwrap() error {
	return e.Err
}
