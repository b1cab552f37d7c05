package checker

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// RetryAfterError carries the wait an endpoint asked for before the next
// request, parsed from its rate-limit response headers. Clients wrap it into
// rate-limited errors so the retry layer can honor the server-advised pause.
type RetryAfterError struct {
	// After is the server-advised wait.
	After time.Duration
}

// Error implements the error interface.
func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("endpoint asked to retry after %s", e.After)
}

// RetryAfter extracts a server-advised wait from an error chain. ok is false
// when the chain carries no advisory.
func RetryAfter(err error) (time.Duration, bool) {
	var re *RetryAfterError
	if errors.As(err, &re) {
		return re.After, true
	}

	return 0, false
}

// ParseRetryAfter reads the ratelimit-reset header both endpoints send with
// 429 responses. The value is a whole number of seconds. ok is false when the
// header is absent or unparseable.
func ParseRetryAfter(h http.Header) (time.Duration, bool) {
	v := h.Get("Ratelimit-Reset")
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}

	return time.Duration(secs) * time.Second, true
}
