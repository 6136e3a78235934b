package viaggiatreno

import "fmt"

// StatusError reports a non-2xx response. The rate-limit status (403) is
// handled by the retry loop; every other status is fatal for the call.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
}

// RateLimitError reports that a call kept hitting the rate limiter until
// the retry budget ran out. Distinct from StatusError so callers can tell
// throttling collapse from ordinary breakage.
type RateLimitError struct {
	Endpoint string
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: service would not let us through after %d attempts", e.Endpoint, e.Attempts)
}
