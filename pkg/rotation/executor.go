package rotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KAFKA2306/2510youtuber-sub001/pkg/metrics"
)

// Work is a caller-supplied unit of work parameterized by one credential.
// Results are captured by the closure. The executor imposes no timeout of
// its own; deadlines belong on ctx.
type Work func(ctx context.Context, credential string) error

// backoffCeiling caps the exponential retry delay.
const backoffCeiling = 10 * time.Second

// Execute runs work with rotation across provider's key pool, retrying
// failed attempts with a different key. maxAttempts <= 0 defaults to the
// pool size.
//
// Quota and configuration failures are never retried. Rate-limit failures
// (per the manager's Classifier) park the failing key and move straight to
// the next one; other failures back off min(2^attempt, 10) seconds first.
// The first success wins. When the budget runs out the last underlying
// failure is returned wrapped in *ExhaustedError.
func (m *Manager) Execute(ctx context.Context, provider string, maxAttempts int, work Work) error {
	m.mu.Lock()
	pool, ok := m.pools[provider]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrProviderNotRegistered, provider)
	}
	now := m.now()
	if q := m.quotas[provider]; q != nil && q.wouldExceed(now) {
		qErr := &QuotaExceededError{
			Provider:   provider,
			Limit:      q.dailyLimit,
			CallsToday: q.callsToday,
			NextReset:  q.nextReset(now),
		}
		m.mu.Unlock()
		m.log.WithField("provider", provider).Warn(qErr.Error())
		return qErr
	}
	poolSize := len(pool.keys)
	m.mu.Unlock()

	if poolSize == 0 {
		return &ExhaustedError{Provider: provider, Err: errors.New("rotation: empty key pool")}
	}
	if maxAttempts <= 0 {
		maxAttempts = poolSize
	}

	attempted := make(map[string]struct{}, poolSize)
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		m.mu.Lock()
		// Once every credential has been tried, start a fresh cycle: a
		// transient failure may have cleared, so the same key can be
		// retried later in a long budget.
		if len(attempted) >= poolSize {
			attempted = make(map[string]struct{}, poolSize)
		}
		key := m.selectLocked(provider)
		m.mu.Unlock()

		if key == nil {
			metrics.ExhaustedTotal.WithLabelValues(provider).Inc()
			if lastErr == nil {
				lastErr = errors.New("rotation: empty key pool")
			}
			return &ExhaustedError{Provider: provider, Attempts: attempt, Err: lastErr}
		}
		attempted[key.credential] = struct{}{}

		err := work(ctx, key.credential)
		if err == nil {
			m.recordSuccess(provider, key, attempt)
			return nil
		}

		rateLimited := m.classify(err)
		m.recordFailure(provider, key, attempt, err, rateLimited)
		lastErr = err

		// Rate-limited keys are already parked for five minutes, so the
		// next attempt should try a different key immediately. Everything
		// else backs off before retrying.
		if rateLimited || attempt == maxAttempts-1 {
			continue
		}
		delay := backoffDelay(attempt)
		metrics.BackoffSecondsTotal.WithLabelValues(provider).Add(delay.Seconds())
		if serr := m.sleep(ctx, delay); serr != nil {
			return fmt.Errorf("rotation: cancelled during backoff: %w", serr)
		}
	}

	metrics.ExhaustedTotal.WithLabelValues(provider).Inc()
	return &ExhaustedError{Provider: provider, Attempts: maxAttempts, Err: lastErr}
}

// backoffDelay is min(2^attempt, 10) seconds.
func backoffDelay(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d > backoffCeiling || d <= 0 {
		d = backoffCeiling
	}
	return d
}
