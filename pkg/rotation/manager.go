package rotation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/KAFKA2306/2510youtuber-sub001/pkg/metrics"
	"github.com/KAFKA2306/2510youtuber-sub001/pkg/usagelog"
)

// KeyConfig is one credential handed to RegisterKeys. Label is an optional
// human-readable name used in logs and stats; it never leaves the process.
type KeyConfig struct {
	Label  string
	Secret string
}

// Config holds Manager construction options. The zero value is usable.
type Config struct {
	// PrimaryProvider names the provider that carries the bulk of the
	// traffic. It gets strict round-robin selection for fairness; every
	// other provider uses success-weighted random selection.
	PrimaryProvider string

	Logger     *logrus.Logger
	Classifier Classifier
	Sink       usagelog.Sink

	// Test hooks. Nil means real time, context-aware sleep, and a
	// time-seeded rand source.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
	Rand  *rand.Rand
}

// Manager owns the per-provider key pools and quota counters. One mutex
// guards cursors, per-key counters, and quota counters: Execute may be
// called concurrently against the same provider without lost updates or
// double-counted quota. The caller's work runs outside the lock.
//
// State is process-local. Independent processes each keep their own pools
// and quota counters; there is no cross-process coordination.
type Manager struct {
	mu     sync.Mutex
	pools  map[string]*keyPool
	quotas map[string]*quotaTracker

	primary  string
	log      *logrus.Logger
	classify Classifier
	sink     usagelog.Sink
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	rng      *rand.Rand
}

// NewManager creates an empty manager. Pools are installed per provider
// with RegisterKeys.
func NewManager(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Classifier == nil {
		cfg.Classifier = DefaultClassifier
	}
	if cfg.Sink == nil {
		cfg.Sink = usagelog.NopSink{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = ctxSleep
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		pools:    make(map[string]*keyPool),
		quotas:   make(map[string]*quotaTracker),
		primary:  cfg.PrimaryProvider,
		log:      cfg.Logger,
		classify: cfg.Classifier,
		sink:     cfg.Sink,
		now:      cfg.Now,
		sleep:    cfg.Sleep,
		rng:      cfg.Rand,
	}
}

// ctxSleep blocks for d or until the context is cancelled, suspending only
// the calling goroutine.
func ctxSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// RegisterKeys installs the key pool for a provider. Insertion order is the
// rotation order. Re-registering a provider replaces its pool and resets
// the rotation cursor to 0. Entries with an empty label get a numbered one.
func (m *Manager) RegisterKeys(provider string, keys []KeyConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pool := &keyPool{provider: provider, keys: make([]*apiKey, 0, len(keys))}
	for i, kc := range keys {
		label := kc.Label
		if label == "" {
			label = fmt.Sprintf("%s-%d", provider, i+1)
		}
		pool.keys = append(pool.keys, &apiKey{
			credential: kc.Secret,
			provider:   provider,
			label:      label,
		})
	}
	m.pools[provider] = pool

	metrics.AvailableKeys.WithLabelValues(provider).Set(float64(len(pool.keys)))
	m.log.WithFields(logrus.Fields{
		"provider": provider,
		"keys":     len(pool.keys),
	}).Info("registered key pool")
}

// SetDailyQuotaLimit configures the provider-wide daily call ceiling.
// A limit of 0 disables enforcement.
func (m *Manager) SetDailyQuotaLimit(provider string, limit int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if q, ok := m.quotas[provider]; ok {
		q.dailyLimit = limit
	} else {
		m.quotas[provider] = newQuotaTracker(limit, m.now())
	}
	m.log.WithFields(logrus.Fields{
		"provider": provider,
		"limit":    limit,
	}).Info("daily quota configured")
}

// SelectKey runs one selection round and returns the chosen key. It
// advances the same selection state Execute uses, so interleaving the two
// shares the rotation cursor.
func (m *Manager) SelectKey(provider string) (KeyConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pools[provider]; !ok {
		return KeyConfig{}, fmt.Errorf("%w: %q", ErrProviderNotRegistered, provider)
	}
	k := m.selectLocked(provider)
	if k == nil {
		return KeyConfig{}, fmt.Errorf("rotation: no keys registered for %q", provider)
	}
	return KeyConfig{Label: k.label, Secret: k.credential}, nil
}

// selectLocked picks the next key for provider. Caller holds m.mu.
func (m *Manager) selectLocked(provider string) *apiKey {
	pool := m.pools[provider]
	if pool == nil || len(pool.keys) == 0 {
		return nil
	}
	now := m.now()

	var k *apiKey
	if provider == m.primary {
		k = pool.nextRoundRobin(now)
	} else {
		k = pool.nextWeighted(now, m.rng)
	}
	if k != nil {
		metrics.KeySelectionsTotal.WithLabelValues(provider).Inc()
		m.log.WithFields(logrus.Fields{
			"provider": provider,
			"key":      k.label,
		}).Debug("key selected")
	}
	return k
}

// recordSuccess updates key health and quota state after a successful call.
func (m *Manager) recordSuccess(provider string, key *apiKey, attempt int) {
	m.mu.Lock()
	now := m.now()
	key.markSuccess(now)
	if q := m.quotas[provider]; q != nil {
		q.recordCall(now)
		metrics.QuotaUsed.WithLabelValues(provider).Set(float64(q.callsToday))
	}
	if pool := m.pools[provider]; pool != nil {
		metrics.AvailableKeys.WithLabelValues(provider).Set(float64(pool.availableCount(now)))
	}
	m.mu.Unlock()

	metrics.CallOutcomesTotal.WithLabelValues(provider, "success").Inc()
	m.emit(provider, key.label, attempt, true, false, nil)
}

// recordFailure updates key health after a failed call. Health reflects the
// true recent failure rate even when the execution ultimately succeeds with
// another key.
func (m *Manager) recordFailure(provider string, key *apiKey, attempt int, err error, rateLimited bool) {
	m.mu.Lock()
	now := m.now()
	key.markFailure(now, rateLimited)
	failures := key.consecutiveFailures
	if pool := m.pools[provider]; pool != nil {
		metrics.AvailableKeys.WithLabelValues(provider).Set(float64(pool.availableCount(now)))
	}
	m.mu.Unlock()

	outcome := "failure"
	if rateLimited {
		outcome = "rate_limited"
	}
	metrics.CallOutcomesTotal.WithLabelValues(provider, outcome).Inc()
	m.log.WithFields(logrus.Fields{
		"provider":     provider,
		"key":          key.label,
		"failures":     failures,
		"rate_limited": rateLimited,
	}).WithError(err).Warn("call attempt failed")
	m.emit(provider, key.label, attempt, false, rateLimited, err)
}

// emit writes a usage record off the hot path. Sink failures are logged at
// debug level and never surface to the caller.
func (m *Manager) emit(provider, label string, attempt int, success, rateLimited bool, err error) {
	rec := usagelog.Record{
		ID:          newRecordID(),
		Provider:    provider,
		KeyLabel:    label,
		Attempt:     attempt,
		Success:     success,
		RateLimited: rateLimited,
		At:          m.now(),
	}
	if err != nil {
		rec.Err = err.Error()
	}
	go func() {
		if werr := m.sink.Write(context.Background(), rec); werr != nil {
			m.log.WithError(werr).Debug("usage log write failed")
		}
	}()
}

func newRecordID() string { return uuid.NewString() }
