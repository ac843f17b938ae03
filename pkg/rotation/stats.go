package rotation

// KeyStats is a read-only snapshot of one key's health. Credentials are
// never included; keys are identified by label.
type KeyStats struct {
	Label        string  `json:"label"`
	SuccessRate  float64 `json:"success_rate"`
	TotalCalls   int64   `json:"total_calls"`
	FailureCount int     `json:"failure_count"`
	Available    bool    `json:"is_available"`
}

// ProviderStats aggregates pool and quota health for one provider.
type ProviderStats struct {
	Provider       string     `json:"provider"`
	TotalKeys      int        `json:"total_keys"`
	AvailableKeys  int        `json:"available_keys"`
	TotalCalls     int64      `json:"total_calls"`
	TotalSuccesses int64      `json:"total_successes"`
	AvgSuccessRate float64    `json:"avg_success_rate"`
	QuotaLimit     int        `json:"quota_limit,omitempty"`
	QuotaUsedToday int        `json:"quota_used_today,omitempty"`
	Keys           []KeyStats `json:"keys"`
}

// Stats returns a snapshot for every registered provider. Read-only: pool
// state is not advanced.
func (m *Manager) Stats() map[string]ProviderStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]ProviderStats, len(m.pools))
	for name := range m.pools {
		out[name] = m.statsLocked(name)
	}
	return out
}

// StatsFor returns the snapshot for one provider.
func (m *Manager) StatsFor(provider string) (ProviderStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pools[provider]; !ok {
		return ProviderStats{}, ErrProviderNotRegistered
	}
	return m.statsLocked(provider), nil
}

func (m *Manager) statsLocked(provider string) ProviderStats {
	pool := m.pools[provider]
	now := m.now()

	ps := ProviderStats{
		Provider:  provider,
		TotalKeys: len(pool.keys),
		Keys:      make([]KeyStats, 0, len(pool.keys)),
	}
	var rateSum float64
	for _, k := range pool.keys {
		usable := k.usableAt(now)
		if usable {
			ps.AvailableKeys++
		}
		ps.TotalCalls += k.totalCalls
		ps.TotalSuccesses += k.totalSuccesses
		rateSum += k.successRate()
		ps.Keys = append(ps.Keys, KeyStats{
			Label:        k.label,
			SuccessRate:  k.successRate(),
			TotalCalls:   k.totalCalls,
			FailureCount: k.consecutiveFailures,
			Available:    usable,
		})
	}
	if len(pool.keys) > 0 {
		ps.AvgSuccessRate = rateSum / float64(len(pool.keys))
	}
	if q := m.quotas[provider]; q != nil {
		q.checkAndReset(now)
		ps.QuotaLimit = q.dailyLimit
		ps.QuotaUsedToday = q.callsToday
	}
	return ps
}
