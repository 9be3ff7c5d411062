// Package approval drains the pending_approval order population to
// completed using bounded-size status-guarded bulk transitions. One run is
// strictly sequential — fetch a page, transition it, fold the outcome into
// a tally, report — and terminates when the tally reaches the starting
// pending count or a page fetch comes back empty. Other actors may mutate
// the pending set concurrently; the final remaining re-count surfaces the
// drift when they do.
package approval

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/rafflehq/orderops/internal/orders"
)

// Store is the slice of the data service the driver needs.
type Store interface {
	// CountOrders returns the exact count of orders with the given status.
	CountOrders(ctx context.Context, status orders.Status) (int, error)
	// PendingOrderIDs returns up to limit identifiers currently pending
	// approval.
	PendingOrderIDs(ctx context.Context, limit int) ([]orders.ID, error)
	// CompleteOrders transitions the given orders to completed, returning
	// how many rows the backend actually matched.
	CompleteOrders(ctx context.Context, ids []orders.ID) (int, error)
}

// Driver owns one end-to-end approval run.
type Driver struct {
	store Store
	cfg   driverConfig
}

// New constructs a Driver with defaults and optional settings.
func New(store Store, opts ...Option) (*Driver, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	cfg := newDriverConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Driver{store: store, cfg: cfg}, nil
}

// Run executes one full approval run. The returned Result is meaningful
// even when err is non-nil: fatal mid-run conditions (page fetch failure,
// cancellation) leave the counts accumulated so far in place so the caller
// can report partial work.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	runID := ulid.Make().String()
	logger := d.cfg.Logger.With().Str("run_id", runID).Logger()

	result := Result{RunID: runID, Remaining: -1}

	total, err := d.store.CountOrders(ctx, orders.StatusPendingApproval)
	if err != nil {
		return result, fmt.Errorf("counting pending orders: %w", err)
	}

	tally := Tally{
		TotalPendingAtStart: total,
		StartedAt:           d.cfg.Clock.Now(),
	}
	result.TotalPendingAtStart = total

	if total == 0 {
		logger.Info().Msg("no orders pending approval")
		result.Remaining = 0
		return result, nil
	}

	logger.Info().
		Int("pending", total).
		Int("batch_size", d.cfg.BatchSize).
		Msg("starting approval run")

	var runErr error
	for tally.Processed() < total {
		done, err := d.ProcessOnce(ctx, &tally)
		if err != nil {
			runErr = err
			break
		}
		if done {
			break
		}
	}

	d.finalize(ctx, &tally, &result, logger)
	return result, runErr
}

// ProcessOnce executes exactly one loop iteration: check cancellation,
// fetch a page, attempt the transition with retry, fold the outcome into
// the tally, and emit progress. done is true when an empty page signals
// that no more work is discoverable. Errors are fatal to the run: fetch
// failures and cancellation; an ultimately failed transition is folded
// into the tally instead.
func (d *Driver) ProcessOnce(ctx context.Context, tally *Tally) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	page, err := d.store.PendingOrderIDs(ctx, d.cfg.BatchSize)
	if err != nil {
		return false, fmt.Errorf("fetching pending page: %w", err)
	}
	if len(page) == 0 {
		return true, nil
	}

	accepted, err := d.completeWithRetry(ctx, page)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		// Failures count the actual page size, never the configured
		// batch size: a short last page must not over-count.
		tally.Failed += len(page)
		tally.Batches++
		d.cfg.Logger.Warn().
			Err(err).
			Int("page_size", len(page)).
			Msg("batch transition failed, continuing")
	} else {
		tally.Approved += accepted
		tally.Skipped += len(page) - accepted
		tally.Batches++
	}

	if d.cfg.OnProgress != nil {
		d.cfg.OnProgress(tally.progress())
	}

	return false, nil
}

// completeWithRetry attempts one bulk transition with bounded retry on
// transient failures. Attempt n waits base << (n-1) first; the context
// bounds the total retry time.
func (d *Driver) completeWithRetry(ctx context.Context, page []orders.ID) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			backoff := d.cfg.RetryBaseDelay << (attempt - 2)
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-d.cfg.Clock.After(backoff):
			}
		}

		accepted, err := d.store.CompleteOrders(ctx, page)
		if err == nil {
			return accepted, nil
		}
		lastErr = err

		if !d.cfg.IsTransient(err) {
			return 0, err
		}

		d.cfg.Logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("page_size", len(page)).
			Msg("transient transition failure")
	}
	return 0, lastErr
}

// finalize computes duration and throughput and re-queries the pending
// count as a consistency check. A failed re-count is reported as
// remaining-unknown, not as a run failure — the work is already done.
func (d *Driver) finalize(ctx context.Context, tally *Tally, result *Result, logger zerolog.Logger) {
	result.Approved = tally.Approved
	result.Failed = tally.Failed
	result.Skipped = tally.Skipped
	result.Batches = tally.Batches
	result.Duration = d.cfg.Clock.Now().Sub(tally.StartedAt)
	if secs := result.Duration.Seconds(); secs > 0 {
		result.Throughput = float64(result.Approved) / secs
	}

	remaining, err := d.store.CountOrders(context.WithoutCancel(ctx), orders.StatusPendingApproval)
	if err != nil {
		logger.Warn().Err(err).Msg("final pending re-count failed")
		result.Remaining = -1
	} else {
		result.Remaining = remaining
	}

	logger.Info().
		Int("approved", result.Approved).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Int("batches", result.Batches).
		Int("remaining", result.Remaining).
		Dur("duration", result.Duration).
		Float64("throughput", result.Throughput).
		Msg("approval run finished")
}
