package analytics

import (
	"sort"
	"time"

	"taxipulse/pkg/contracts/domain"
)

// Options describes the filter ranges the loaded sample actually covers.
// The UI seeds its controls from these instead of hard-coding a month.
type Options struct {
	MinDate  time.Time `json:"min_date"`
	MaxDate  time.Time `json:"max_date"`
	MinHour  int       `json:"min_hour"`
	MaxHour  int       `json:"max_hour"`
	Payments []string  `json:"payments"`
}

// FilterOptions derives the selectable ranges from the sample: the pickup
// date span, the full hour range, and the distinct payment descriptions
// present, sorted alphabetically. An empty sample yields zero dates and an
// empty payment list.
func FilterOptions(sample []domain.EnrichedTrip) Options {
	opts := Options{MinHour: 0, MaxHour: 23, Payments: []string{}}
	if len(sample) == 0 {
		return opts
	}

	opts.MinDate = sample[0].PickupDate()
	opts.MaxDate = opts.MinDate
	seen := make(map[string]struct{})
	for i := range sample {
		d := sample[i].PickupDate()
		if d.Before(opts.MinDate) {
			opts.MinDate = d
		}
		if d.After(opts.MaxDate) {
			opts.MaxDate = d
		}
		if p := sample[i].PaymentDescription; p != nil {
			seen[*p] = struct{}{}
		}
	}

	for p := range seen {
		opts.Payments = append(opts.Payments, p)
	}
	sort.Strings(opts.Payments)
	return opts
}
