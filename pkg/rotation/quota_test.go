package rotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuotaUnlimitedByDefault(t *testing.T) {
	now := time.Now()
	q := newQuotaTracker(0, now)
	for i := 0; i < 100; i++ {
		q.recordCall(now)
	}
	assert.False(t, q.wouldExceed(now))
}

func TestQuotaWouldExceed(t *testing.T) {
	now := time.Now()
	q := newQuotaTracker(2, now)

	assert.False(t, q.wouldExceed(now))
	q.recordCall(now)
	assert.False(t, q.wouldExceed(now))
	q.recordCall(now)
	assert.True(t, q.wouldExceed(now))
}

func TestQuotaLazyDailyReset(t *testing.T) {
	now := time.Now()
	q := newQuotaTracker(3, now.AddDate(0, 0, -1))
	q.callsToday = 3

	// First check after the date advances zeroes the counter.
	assert.False(t, q.wouldExceed(now))
	assert.Equal(t, 0, q.callsToday)
	assert.Equal(t, dayStart(now), q.lastReset)

	// Idempotent within the same day.
	q.recordCall(now)
	q.checkAndReset(now)
	assert.Equal(t, 1, q.callsToday)
}

func TestQuotaNextReset(t *testing.T) {
	now := time.Date(2026, 8, 26, 15, 4, 5, 0, time.UTC)
	q := newQuotaTracker(10, now)
	assert.Equal(t, time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), q.nextReset(now))
}
