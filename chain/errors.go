package chain

import (
	"fmt"
	"time"
)

// InvalidRangeError is returned when ValidDuring is called with an
// empty or inverted window. A zero-length window is not meaningful for
// a half-open interval query.
type InvalidRangeError struct {
	NotBefore time.Time
	NotAfter  time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: not-after %s must be later than not-before %s",
		e.NotAfter.Format(time.RFC3339), e.NotBefore.Format(time.RFC3339))
}
