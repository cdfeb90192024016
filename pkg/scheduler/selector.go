package scheduler

import (
	"math/rand"
	"sort"
)

// Selector draws one name uniformly from everyone whose TTR is among the K
// lowest distinct values of the pool.
type Selector struct {
	rng *rand.Rand
	k   int
}

// NewSelector creates a selector over the k lowest TTR tiers
func NewSelector(rng *rand.Rand, k int) *Selector {
	if k < 1 {
		k = 1
	}
	return &Selector{rng: rng, k: k}
}

// Pick returns a name from the pool, or false when the pool is empty. The
// result depends only on the pool contents, its order and the random source.
func (s *Selector) Pick(pool []Candidate) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}
	tiers := distinctTTRs(pool)
	if len(tiers) > s.k {
		tiers = tiers[:s.k]
	}
	ceiling := tiers[len(tiers)-1]

	shortlist := make([]string, 0, len(pool))
	for _, c := range pool {
		if c.TTR <= ceiling {
			shortlist = append(shortlist, c.Name)
		}
	}
	return shortlist[s.rng.Intn(len(shortlist))], true
}

func distinctTTRs(pool []Candidate) []int {
	seen := make(map[int]struct{}, len(pool))
	var values []int
	for _, c := range pool {
		if _, ok := seen[c.TTR]; ok {
			continue
		}
		seen[c.TTR] = struct{}{}
		values = append(values, c.TTR)
	}
	sort.Ints(values)
	return values
}
