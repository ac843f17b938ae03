package rotation

import "time"

// quotaTracker enforces a provider-wide daily call ceiling. A limit of 0
// means unlimited. The counter resets lazily the first time it is checked
// after the calendar day advances; there is no background timer.
type quotaTracker struct {
	dailyLimit int
	callsToday int
	lastReset  time.Time // start of the day the counter belongs to
}

func newQuotaTracker(limit int, now time.Time) *quotaTracker {
	return &quotaTracker{dailyLimit: limit, lastReset: dayStart(now)}
}

// checkAndReset zeroes the counter once per calendar day. Idempotent and
// cheap; called defensively before every quota decision.
func (q *quotaTracker) checkAndReset(now time.Time) {
	if day := dayStart(now); day.After(q.lastReset) {
		q.callsToday = 0
		q.lastReset = day
	}
}

// recordCall counts one successful call against today's quota.
func (q *quotaTracker) recordCall(now time.Time) {
	q.checkAndReset(now)
	q.callsToday++
}

func (q *quotaTracker) wouldExceed(now time.Time) bool {
	q.checkAndReset(now)
	return q.dailyLimit > 0 && q.callsToday >= q.dailyLimit
}

// nextReset is the moment the daily counter becomes zero again.
func (q *quotaTracker) nextReset(now time.Time) time.Time {
	return dayStart(now).AddDate(0, 0, 1)
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
