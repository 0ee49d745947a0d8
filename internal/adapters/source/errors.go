package source

import "errors"

// Sentinel kinds for fetch outcomes.
var (
	// ErrPageNotFound is terminal: the page does not exist upstream.
	// Open-ended pagination treats it as the end-of-collection signal.
	ErrPageNotFound = errors.New("page not found")

	// ErrPageUnavailable means retries were exhausted. Callers treat the
	// page as a gap, not a fatal condition.
	ErrPageUnavailable = errors.New("page unavailable after retries")

	// ErrBadShape means the response root was neither a JSON array nor
	// an object with an items array.
	ErrBadShape = errors.New("unexpected page root shape")
)
