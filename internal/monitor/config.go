package monitor

import "time"

// Config is the monitoring configuration. It is captured once when the
// monitor starts and shared read-only with the worker; there is no runtime
// reconfiguration.
type Config struct {
	// MinContentLength and MaxContentLength bound accepted content size in
	// bytes. Content shorter than min or longer than max is dropped.
	MinContentLength int
	MaxContentLength int

	// IgnoreDuplicates drops content equal to the previous accepted content.
	IgnoreDuplicates bool

	// IgnoreShortContent drops content whose trimmed length is one byte or
	// less.
	IgnoreShortContent bool

	// Debounce is the minimum spacing between successive clipboard reads.
	// Pulses arriving inside the window collapse into one read.
	Debounce time.Duration

	// RetryMax and RetryInitialDelay shape the read-retry policy: on a
	// transient failure the worker sleeps RetryInitialDelay, doubling up to
	// a 200ms ceiling, for at most RetryMax attempts.
	RetryMax          int
	RetryInitialDelay time.Duration

	// BusCapacity is the per-subscriber event buffer. A subscriber that
	// falls further behind observes a lag report instead of blocking the
	// pipeline.
	BusCapacity int
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		MinContentLength:   1,
		MaxContentLength:   100_000,
		IgnoreDuplicates:   true,
		IgnoreShortContent: false,
		Debounce:           60 * time.Millisecond,
		RetryMax:           8,
		RetryInitialDelay:  10 * time.Millisecond,
		BusCapacity:        1000,
	}
}
