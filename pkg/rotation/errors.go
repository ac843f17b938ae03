package rotation

import (
	"errors"
	"fmt"
	"time"
)

// ErrProviderNotRegistered is returned when no key pool exists for the
// requested provider. It indicates a configuration problem and is never
// retried.
var ErrProviderNotRegistered = errors.New("rotation: provider not registered")

// QuotaExceededError reports that a provider's daily call ceiling has been
// reached. It is raised before any work is attempted and is never retried;
// the caller can decide from NextReset whether to wait or abort.
type QuotaExceededError struct {
	Provider   string
	Limit      int
	CallsToday int
	NextReset  time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("rotation: daily quota exceeded for %q (%d/%d calls, resets %s)",
		e.Provider, e.CallsToday, e.Limit, e.NextReset.Format(time.RFC3339))
}

// ExhaustedError reports that every attempt within the attempt budget
// failed. It wraps the most recent underlying failure for diagnostics.
type ExhaustedError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("rotation: all %d attempts failed for %q: %v", e.Attempts, e.Provider, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }
