package pipeline

import (
	"taxipulse/pkg/contracts/domain"
)

// Cleaning bounds and sampling defaults for the monthly yellow-taxi dataset.
const (
	MaxTripDistanceMiles = 50.0
	MaxFareAmount        = 500.0

	DefaultSampleSize = 10000
	DefaultSampleSeed = 42
)

// CleanedTrips is the output of Clean. It can only be produced by Clean,
// which guarantees the row invariants documented on domain.Trip.
type CleanedTrips struct {
	trips []domain.Trip
}

// Rows returns the cleaned rows. Callers must not modify the slice.
func (c CleanedTrips) Rows() []domain.Trip { return c.trips }

// Len returns the row count.
func (c CleanedTrips) Len() int { return len(c.trips) }

// EnrichedTrips is the output of Enrich: cleaned trips carrying the derived
// columns and joined zone/payment labels.
type EnrichedTrips struct {
	trips []domain.EnrichedTrip
}

// Rows returns the enriched rows. Callers must not modify the slice.
func (e EnrichedTrips) Rows() []domain.EnrichedTrip { return e.trips }

// Len returns the row count.
func (e EnrichedTrips) Len() int { return len(e.trips) }

// SampledTrips is the output of Sample: the fixed-size deterministic
// subsample served to interactive filters.
type SampledTrips struct {
	trips []domain.EnrichedTrip
}

// Rows returns the sampled rows. Callers must not modify the slice.
func (s SampledTrips) Rows() []domain.EnrichedTrip { return s.trips }

// Len returns the row count.
func (s SampledTrips) Len() int { return len(s.trips) }

// ZoneIndex maps a TLC location ID to its zone row for the enrichment joins.
type ZoneIndex map[int32]domain.Zone

// NewZoneIndex builds the join index from the zone lookup table. Later
// duplicates of a LocationID overwrite earlier ones; the TLC table keys are
// unique in practice.
func NewZoneIndex(zones []domain.Zone) ZoneIndex {
	idx := make(ZoneIndex, len(zones))
	for _, z := range zones {
		idx[z.LocationID] = z
	}
	return idx
}
