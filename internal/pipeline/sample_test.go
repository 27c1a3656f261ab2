package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxipulse/pkg/contracts/domain"
)

// enrichedFixture builds n distinct enriched rows via the real stages so the
// sampler is exercised on the type it receives in production.
func enrichedFixture(t *testing.T, n int) EnrichedTrips {
	t.Helper()
	raw := make([]domain.RawTrip, 0, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		pickup := base.Add(time.Duration(i) * time.Minute)
		dropoff := pickup.Add(10 * time.Minute)
		r := validRaw()
		r.PickupTime = &pickup
		r.DropoffTime = &dropoff
		raw = append(raw, r)
	}
	cleaned := Clean(raw)
	require.Equal(t, n, cleaned.Len())
	return Enrich(cleaned, testZones())
}

func TestSample_Deterministic(t *testing.T) {
	enriched := enrichedFixture(t, 500)

	first := Sample(enriched, 50, DefaultSampleSeed)
	second := Sample(enriched, 50, DefaultSampleSeed)

	require.Equal(t, 50, first.Len())
	assert.Equal(t, first.Rows(), second.Rows())
}

func TestSample_SeedChangesSelection(t *testing.T) {
	enriched := enrichedFixture(t, 500)

	a := Sample(enriched, 50, 42)
	b := Sample(enriched, 50, 43)

	assert.NotEqual(t, a.Rows(), b.Rows())
}

func TestSample_WithoutReplacement(t *testing.T) {
	enriched := enrichedFixture(t, 200)
	sampled := Sample(enriched, 120, DefaultSampleSeed)

	seen := make(map[string]bool, sampled.Len())
	for _, row := range sampled.Rows() {
		key := fmt.Sprintf("%d", row.PickupTime.UnixNano())
		assert.False(t, seen[key], "row drawn twice")
		seen[key] = true
	}
}

func TestSample_PreservesInputOrder(t *testing.T) {
	enriched := enrichedFixture(t, 300)
	sampled := Sample(enriched, 100, DefaultSampleSeed)

	for i := 1; i < sampled.Len(); i++ {
		prev := sampled.Rows()[i-1].PickupTime
		cur := sampled.Rows()[i].PickupTime
		assert.True(t, prev.Before(cur), "sampled rows must keep input order")
	}
}

func TestSample_SizeEdgeCases(t *testing.T) {
	enriched := enrichedFixture(t, 10)

	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "n larger than table caps at row count", n: 100, want: 10},
		{name: "n equal to table returns everything", n: 10, want: 10},
		{name: "zero n yields empty sample", n: 0, want: 0},
		{name: "negative n yields empty sample", n: -5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampled := Sample(enriched, tt.n, DefaultSampleSeed)
			assert.Equal(t, tt.want, sampled.Len())
		})
	}
}

func TestSample_EmptyTable(t *testing.T) {
	sampled := Sample(Enrich(Clean(nil), testZones()), DefaultSampleSize, DefaultSampleSeed)
	assert.Equal(t, 0, sampled.Len())
}
