package labelapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"

	"github.com/laveleven/labelai-backend/internal/config"
	"github.com/laveleven/labelai-backend/internal/domain"
)

// ErrBulkheadFull is returned when the concurrency cap is reached and
// queueing is disabled.
var ErrBulkheadFull = errors.New("labelapi: concurrency limit reached")

// guard wraps a remote call with the resilience policy, outermost to
// innermost: circuit breaker, retry, bulkhead. The caller applies the
// fallback (conversion to domain.ErrDependencyUnavailable) on top.
type guard struct {
	breaker       *gobreaker.CircuitBreaker[[]byte]
	sem           *semaphore.Weighted
	retryAttempts int
	retryBackoff  time.Duration
	queueWhenFull bool
	log           *slog.Logger
}

func newGuard(cfg config.LabelAPIConfig, logger *slog.Logger) *guard {
	window := cfg.BreakerWindow
	rate := cfg.BreakerRate
	// Enough consecutive failures to exceed the rate within one full
	// window trips the breaker even before the window fills.
	consecutiveTrip := uint32(float64(window)*rate) + 1

	settings := gobreaker.Settings{
		Name:        "labelapi",
		MaxRequests: 1,
		// Clear closed-state counts periodically, otherwise the failure
		// rate is computed against every call since startup and a long
		// success history can keep the breaker closed through a real
		// outage.
		Interval: cfg.BreakerInterval,
		Timeout:  cfg.BreakerWait,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= consecutiveTrip {
				return true
			}
			return counts.Requests >= window &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= rate
		},
		// Client errors are the caller's fault, not the dependency's:
		// they must not push the breaker toward open.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrValidation)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &guard{
		breaker:       gobreaker.NewCircuitBreaker[[]byte](settings),
		sem:           semaphore.NewWeighted(cfg.MaxConcurrent),
		retryAttempts: cfg.RetryAttempts,
		retryBackoff:  cfg.RetryBackoff,
		queueWhenFull: cfg.QueueWhenFull,
		log:           logger,
	}
}

// Do executes op under the full policy. A validation error (remote 4xx)
// is surfaced once, unretried. Any other failure is retried with a fixed
// backoff up to the configured attempt count, and every failed attempt
// counts toward the breaker statistics.
func (g *guard) Do(ctx context.Context, op func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	body, err := g.breaker.Execute(func() ([]byte, error) {
		return g.retry(ctx, op)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("labelapi: circuit open: %w", err)
	}
	return body, err
}

func (g *guard) retry(ctx context.Context, op func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	attempt := 0
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(g.retryBackoff), uint64(g.retryAttempts-1)),
		ctx,
	)

	return backoff.RetryWithData(func() ([]byte, error) {
		attempt++
		body, err := g.limited(ctx, op)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, backoff.Permanent(err)
		}
		g.log.WarnContext(ctx, "remote call failed, will retry",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		return nil, err
	}, bo)
}

// limited runs op under the bulkhead semaphore.
func (g *guard) limited(ctx context.Context, op func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if g.queueWhenFull {
		if err := g.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("labelapi: acquire slot: %w", err)
		}
	} else if !g.sem.TryAcquire(1) {
		return nil, ErrBulkheadFull
	}
	defer g.sem.Release(1)

	return op(ctx)
}

// State reports the current breaker state, for health reporting.
func (g *guard) State() gobreaker.State {
	return g.breaker.State()
}
