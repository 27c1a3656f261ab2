package analytics

import (
	"time"

	"taxipulse/pkg/contracts/domain"
)

// Filter is the user-selected restriction applied to the sampled trips.
// Dates compare against the date portion of the pickup timestamp, hours
// against the derived pickup hour; both intervals are inclusive on both
// ends. An empty Payments set fails open and keeps all rows, so a cleared
// multiselect never blanks the dashboard.
type Filter struct {
	StartDate time.Time
	EndDate   time.Time
	StartHour int
	EndHour   int
	Payments  []string
}

// View is the filtered working subset the aggregations run over.
type View struct {
	rows []domain.EnrichedTrip
}

// Rows returns the rows of the view. Callers must not modify the slice.
func (v View) Rows() []domain.EnrichedTrip { return v.rows }

// Len returns the row count of the view.
func (v View) Len() int { return len(v.rows) }

// ApplyFilter evaluates the three predicates (AND) over the sample and
// materializes the view for the current interaction. It runs over the
// sampled subset only, so it is cheap enough to recompute on every filter
// change.
func ApplyFilter(sample []domain.EnrichedTrip, f Filter) View {
	start := truncateToDate(f.StartDate)
	end := truncateToDate(f.EndDate)

	var payments map[string]bool
	if len(f.Payments) > 0 {
		payments = make(map[string]bool, len(f.Payments))
		for _, p := range f.Payments {
			payments[p] = true
		}
	}

	rows := make([]domain.EnrichedTrip, 0, len(sample))
	for i := range sample {
		row := &sample[i]

		date := row.PickupDate()
		if date.Before(start) || date.After(end) {
			continue
		}
		if row.PickupHour < f.StartHour || row.PickupHour > f.EndHour {
			continue
		}
		if payments != nil {
			// A row whose payment description is absent is not a member of
			// any selected set.
			if row.PaymentDescription == nil || !payments[*row.PaymentDescription] {
				continue
			}
		}

		rows = append(rows, *row)
	}
	return View{rows: rows}
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
