package app

import "errors"

// Sentinel kinds surfaced by the query methods. ErrNotReady is distinct
// from ErrNotFound so callers never mistake "still loading" for "no
// such data".
var (
	ErrNotReady        = errors.New("data is still loading")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoFetcher means the service was built without a page fetcher
	// and cannot harvest.
	ErrNoFetcher = errors.New("no fetcher configured")
)
