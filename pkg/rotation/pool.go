package rotation

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

// keyPool holds the ordered keys for one provider plus the rotation cursor
// used by the round-robin selector. Insertion order is preserved; it is the
// rotation order.
type keyPool struct {
	provider string
	keys     []*apiKey
	cursor   int
}

// nextRoundRobin implements strict rotation with failover, used for the
// primary provider where fairness and predictable load distribution matter.
// When the key under the cursor is unavailable it scans forward, wrapping,
// for an available one; when every key is unavailable it degrades to the
// original candidate instead of blocking the whole operation. The cursor
// advances by exactly one position per call regardless of how far the scan
// went, so the next call starts one slot further.
func (p *keyPool) nextRoundRobin(now time.Time) *apiKey {
	n := len(p.keys)
	if n == 0 {
		return nil
	}
	selected := p.keys[p.cursor]
	if !selected.availableAt(now) {
		for i := 1; i < n; i++ {
			if k := p.keys[(p.cursor+i)%n]; k.availableAt(now) {
				selected = k
				break
			}
		}
	}
	p.cursor = (p.cursor + 1) % n
	return selected
}

// nextWeighted biases traffic toward healthy keys, used for secondary
// providers. It picks uniformly at random among the top 80% of candidates
// by success rate, which still explores the pool and avoids permanently
// starving a key that had one bad sample. When no key is available the full
// pool, ordered by least-recent failure, becomes the candidate set (never-
// failed keys order first via the zero timestamp).
func (p *keyPool) nextWeighted(now time.Time, rng *rand.Rand) *apiKey {
	if len(p.keys) == 0 {
		return nil
	}
	candidates := make([]*apiKey, 0, len(p.keys))
	for _, k := range p.keys {
		if k.availableAt(now) {
			candidates = append(candidates, k)
		}
	}
	if len(candidates) == 0 {
		candidates = append(candidates, p.keys...)
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].lastFailureAt.Before(candidates[j].lastFailureAt)
		})
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].successRate() > candidates[j].successRate()
	})
	top := int(math.Ceil(0.8 * float64(len(candidates))))
	if top < 1 {
		top = 1
	}
	return candidates[rng.Intn(top)]
}

// availableCount is a non-mutating census for stats and gauges.
func (p *keyPool) availableCount(now time.Time) int {
	n := 0
	for _, k := range p.keys {
		if k.usableAt(now) {
			n++
		}
	}
	return n
}
