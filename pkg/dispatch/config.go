package dispatch

import "time"

// Config holds dispatcher settings.
type Config struct {
	// ResponderURL is the base URL of the remote responder
	// (e.g., "http://localhost:8000").
	ResponderURL string

	// Timeout bounds each completion attempt end to end. Defaults to 120s.
	Timeout time.Duration

	// AuxTimeout bounds auxiliary calls (health, models, config).
	// Defaults to 10s.
	AuxTimeout time.Duration

	// RetryAttempts is the total attempt budget per Send call, including
	// the first attempt. Defaults to 3.
	RetryAttempts int

	// BackoffUnit scales the exponential backoff: attempt i (0-indexed)
	// waits 2^i units before the next attempt. Defaults to 1s; tests use
	// a small unit to keep runs fast.
	BackoffUnit time.Duration
}

// defaults applies default values for unset configuration fields.
func (c *Config) defaults() {
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.AuxTimeout == 0 {
		c.AuxTimeout = 10 * time.Second
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.BackoffUnit == 0 {
		c.BackoffUnit = time.Second
	}
}
