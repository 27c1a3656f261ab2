package pipeline

import (
	"math/rand"
	"sort"

	"taxipulse/pkg/contracts/domain"
)

// Sample draws a uniform random subsample of n rows without replacement.
// The draw is fully deterministic for a given input, n and seed, so every
// session over the same month produces the identical subset.
//
// If n is at least the row count the whole table is returned; n <= 0 yields
// an empty sample. Selected rows keep their original input order, which
// downstream aggregations rely on for stable first-seen tie-breaking.
func Sample(enriched EnrichedTrips, n int, seed int64) SampledTrips {
	rows := enriched.Rows()
	if n <= 0 {
		return SampledTrips{trips: []domain.EnrichedTrip{}}
	}
	if n >= len(rows) {
		out := make([]domain.EnrichedTrip, len(rows))
		copy(out, rows)
		return SampledTrips{trips: out}
	}

	// Partial Fisher-Yates over the index space: after k swaps the first k
	// positions hold a uniform k-subset.
	rng := rand.New(rand.NewSource(seed))
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	picked := idx[:n]
	sort.Ints(picked)

	out := make([]domain.EnrichedTrip, n)
	for i, j := range picked {
		out[i] = rows[j]
	}
	return SampledTrips{trips: out}
}
