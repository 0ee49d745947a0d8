package harvest

import "errors"

// Sentinel kinds for harvest outcomes.
var (
	// ErrNoPages means not a single page of the collection could be
	// fetched. Fatal only on a first harvest with no usable cache.
	ErrNoPages = errors.New("no pages fetched")
)
