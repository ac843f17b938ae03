package rotation

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(provider string, n int) *keyPool {
	p := &keyPool{provider: provider}
	for i := 0; i < n; i++ {
		p.keys = append(p.keys, &apiKey{
			credential: fmt.Sprintf("sk-%d", i),
			provider:   provider,
			label:      fmt.Sprintf("%s-%d", provider, i+1),
		})
	}
	return p
}

func TestRoundRobinFairness(t *testing.T) {
	p := newTestPool("gemini", 3)
	now := time.Now()

	var got []string
	for i := 0; i < 6; i++ {
		got = append(got, p.nextRoundRobin(now).label)
	}
	assert.Equal(t, []string{"gemini-1", "gemini-2", "gemini-3", "gemini-1", "gemini-2", "gemini-3"}, got)
}

func TestRoundRobinScansPastUnavailable(t *testing.T) {
	p := newTestPool("gemini", 3)
	now := time.Now()
	p.keys[0].markFailure(now, true) // rate-limited under the cursor

	k := p.nextRoundRobin(now)
	assert.Equal(t, "gemini-2", k.label)
	// The cursor advances by exactly one even though the scan jumped ahead.
	assert.Equal(t, 1, p.cursor)
	assert.Equal(t, "gemini-2", p.nextRoundRobin(now).label)
}

func TestRoundRobinDegradesWhenAllUnavailable(t *testing.T) {
	p := newTestPool("gemini", 3)
	now := time.Now()
	for _, k := range p.keys {
		k.markFailure(now, true)
	}

	// Never blocks: the original candidate is returned and rotation
	// continues.
	k := p.nextRoundRobin(now)
	require.NotNil(t, k)
	assert.Equal(t, "gemini-1", k.label)
	assert.Equal(t, 1, p.cursor)
	assert.Equal(t, "gemini-2", p.nextRoundRobin(now).label)
}

func TestRoundRobinEmptyPool(t *testing.T) {
	p := &keyPool{provider: "gemini"}
	assert.Nil(t, p.nextRoundRobin(time.Now()))
}

func TestWeightedReturnsSingleAvailableKey(t *testing.T) {
	p := newTestPool("perplexity", 3)
	now := time.Now()
	rng := rand.New(rand.NewSource(1))
	p.keys[0].markFailure(now, true)
	p.keys[2].markFailure(now, true)

	for i := 0; i < 10; i++ {
		assert.Equal(t, "perplexity-2", p.nextWeighted(now, rng).label)
	}
}

func TestWeightedExcludesLeastSuccessfulKey(t *testing.T) {
	p := newTestPool("perplexity", 5)
	now := time.Now()
	rng := rand.New(rand.NewSource(1))

	// One key with a 0% success rate, but not enough consecutive failures
	// to be parked. With five candidates the top ceil(0.8*5)=4 are
	// eligible, so the worst key is never chosen.
	bad := p.keys[3]
	bad.totalCalls = 10
	bad.consecutiveFailures = 2

	for i := 0; i < 200; i++ {
		assert.NotEqual(t, bad.label, p.nextWeighted(now, rng).label)
	}
}

func TestWeightedFallsBackWhenNoneAvailable(t *testing.T) {
	p := newTestPool("perplexity", 5)
	now := time.Now()
	rng := rand.New(rand.NewSource(1))

	for _, k := range p.keys {
		k.markFailure(now, true)
		k.totalCalls = 10
		k.totalSuccesses = 9
	}
	worst := p.keys[1]
	worst.totalSuccesses = 0

	// All keys rate-limited: selection degrades to the full pool instead
	// of failing, still biased away from the worst key.
	for i := 0; i < 200; i++ {
		k := p.nextWeighted(now, rng)
		require.NotNil(t, k)
		assert.NotEqual(t, worst.label, k.label)
	}
}

func TestAvailableCount(t *testing.T) {
	p := newTestPool("perplexity", 4)
	now := time.Now()
	p.keys[0].markFailure(now, true)
	for i := 0; i < failureThreshold; i++ {
		p.keys[1].markFailure(now, false)
	}
	assert.Equal(t, 2, p.availableCount(now))
}
