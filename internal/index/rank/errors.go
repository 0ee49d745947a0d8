package rank

import "errors"

// Sentinel kinds for rank lookups.
var (
	ErrNotFound = errors.New("no ranks found")
)
