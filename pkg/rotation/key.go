// Package rotation implements credential pooling with per-key health
// tracking, fair selection, daily quota enforcement, and retry across the
// pool with exponential backoff.
package rotation

import "time"

const (
	// failureThreshold is the consecutive-failure count that parks a key.
	failureThreshold = 5
	// failureCooldown is how long a key sits out after hitting the threshold.
	failureCooldown = 10 * time.Minute
	// rateLimitWindow is the provider-side backoff applied to a key after a
	// rate-limit failure. Shorter than failureCooldown: rate limits are
	// assumed to be precisely timed by the provider.
	rateLimitWindow = 5 * time.Minute
)

// apiKey tracks health and usage for a single credential. All access goes
// through the owning Manager's mutex.
type apiKey struct {
	credential string
	provider   string
	label      string

	consecutiveFailures int
	lastFailureAt       time.Time
	lastSuccessAt       time.Time
	rateLimitedUntil    time.Time

	totalCalls     int64
	totalSuccesses int64
}

// successRate is 1.0 for a key that has never been called, so the selector
// does not penalize fresh keys.
func (k *apiKey) successRate() float64 {
	if k.totalCalls == 0 {
		return 1.0
	}
	return float64(k.totalSuccesses) / float64(k.totalCalls)
}

// usableAt reports availability without mutating the key. Used by stats.
func (k *apiKey) usableAt(now time.Time) bool {
	if !k.rateLimitedUntil.IsZero() && now.Before(k.rateLimitedUntil) {
		return false
	}
	if k.consecutiveFailures >= failureThreshold && now.Sub(k.lastFailureAt) < failureCooldown {
		return false
	}
	return true
}

// availableAt is the selection-path availability check. A key whose
// consecutive-failure cooldown has elapsed is reactivated here; expiry is
// recomputed lazily on every selection, never by a timer.
func (k *apiKey) availableAt(now time.Time) bool {
	if !k.usableAt(now) {
		return false
	}
	if k.consecutiveFailures >= failureThreshold {
		k.consecutiveFailures = 0
	}
	return true
}

func (k *apiKey) markSuccess(now time.Time) {
	k.lastSuccessAt = now
	k.totalCalls++
	k.totalSuccesses++
	k.consecutiveFailures = 0
}

// markFailure records one failed call. Rate-limit failures additionally
// park the key for rateLimitWindow.
func (k *apiKey) markFailure(now time.Time, rateLimited bool) {
	k.lastFailureAt = now
	k.totalCalls++
	k.consecutiveFailures++
	if rateLimited {
		k.rateLimitedUntil = now.Add(rateLimitWindow)
	}
}
