package harvest

import (
	"time"

	"github.com/wcanexus/nexus/pkg/logger"
)

// Option applies a configuration option to the Harvester.
type Option func(*Harvester)

// WithWorkers sets the number of concurrent page fetches.
func WithWorkers(n int) Option {
	return func(h *Harvester) {
		if n > 0 {
			h.workers = n
		}
	}
}

// WithSequentialJitter sets the upper bound of the random pause between
// pages in open-ended sequential mode. Zero disables the pause.
func WithSequentialJitter(d time.Duration) Option {
	return func(h *Harvester) {
		if d >= 0 {
			h.jitter = d
		}
	}
}

// WithMaxOpenEndedPages caps how far an open-ended walk may go before
// giving up on seeing a terminal page-not-found.
func WithMaxOpenEndedPages(n int) Option {
	return func(h *Harvester) {
		if n > 0 {
			h.maxOpenEnded = n
		}
	}
}

// WithLogger sets a custom logger for the harvester.
func WithLogger(l logger.Logger) Option {
	return func(h *Harvester) {
		if l != nil {
			h.log = l
		}
	}
}
