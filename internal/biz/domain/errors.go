package domain

import (
	"errors"
	"fmt"
	"time"
)

// Platform failures that outbound actions swallow at the call site.
var (
	ErrNotFound         = errors.New("target not found")
	ErrPermissionDenied = errors.New("permission denied")
)

// RateLimitedError carries the server-advised delay after which the action
// may be retried.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %v", e.RetryAfter)
}

// IsIgnorable reports whether err is one of the best-effort failures
// (missing target, refused permission) that must never propagate.
func IsIgnorable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrPermissionDenied)
}
