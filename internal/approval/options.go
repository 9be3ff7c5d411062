package approval

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBatchSize      = 500
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
)

// driverConfig defines how the driver pages, retries, and reports.
type driverConfig struct {
	BatchSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
	Clock          Clock
	Logger         zerolog.Logger
	OnProgress     func(Progress)
	IsTransient    func(error) bool
}

// newDriverConfig seeds the defaults; options are applied on top and
// explicit invalid values are rejected by validate.
func newDriverConfig() driverConfig {
	return driverConfig{
		BatchSize:      defaultBatchSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
		Clock:          SystemClock{},
		Logger:         zerolog.Nop(),
		IsTransient:    defaultTransientClassifier,
	}
}

func (c driverConfig) withDefaults() driverConfig {
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.IsTransient == nil {
		c.IsTransient = defaultTransientClassifier
	}
	return c
}

func (c driverConfig) validate() error {
	if c.BatchSize < 1 {
		return ErrInvalidBatchSize
	}
	if c.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.RetryBaseDelay <= 0 {
		return ErrInvalidRetryDelay
	}
	return nil
}

// defaultTransientClassifier retries everything except context errors. The
// CLI swaps in the API client's status-code-aware classifier.
func defaultTransientClassifier(err error) bool {
	return err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// Option configures driver behavior.
type Option func(*driverConfig)

// WithBatchSize sets the number of identifiers requested per page and
// submitted per bulk transition.
func WithBatchSize(size int) Option {
	return func(c *driverConfig) {
		c.BatchSize = size
	}
}

// WithMaxAttempts bounds transition attempts per batch, including the first.
func WithMaxAttempts(attempts int) Option {
	return func(c *driverConfig) {
		c.MaxAttempts = attempts
	}
}

// WithRetryBaseDelay sets the base backoff delay between transition
// attempts; attempt n waits base << (n-1).
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(c *driverConfig) {
		c.RetryBaseDelay = delay
	}
}

// WithClock sets the driver clock.
func WithClock(clock Clock) Option {
	return func(c *driverConfig) {
		c.Clock = clock
	}
}

// WithLogger sets the driver logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *driverConfig) {
		c.Logger = logger
	}
}

// WithOnProgress registers a callback invoked after every batch attempt
// with a snapshot of the running tally.
func WithOnProgress(fn func(Progress)) Option {
	return func(c *driverConfig) {
		c.OnProgress = fn
	}
}

// WithTransientClassifier sets the predicate deciding whether a failed
// transition attempt is worth retrying.
func WithTransientClassifier(fn func(error) bool) Option {
	return func(c *driverConfig) {
		c.IsTransient = fn
	}
}
