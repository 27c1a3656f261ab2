package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxipulse/pkg/contracts/domain"
)

func strPtr(s string) *string { return &s }

// trip builds one enriched row with the derived columns consistent with the
// pickup time, which is what the filter predicates actually read.
func trip(pickup time.Time, fare, distance float64, payment *string, zone *string) domain.EnrichedTrip {
	dropoff := pickup.Add(15 * time.Minute)
	e := domain.EnrichedTrip{
		Trip: domain.Trip{
			PickupTime:   pickup,
			DropoffTime:  dropoff,
			PULocationID: 132,
			DOLocationID: 236,
			TripDistance: distance,
			FareAmount:   fare,
			PaymentType:  1,
		},
		DurationMinutes:    15,
		PickupHour:         pickup.Hour(),
		PickupWeekday:      pickup.Weekday().String(),
		PaymentDescription: payment,
		PickupZone:         zone,
	}
	if e.DurationMinutes > 0 {
		e.SpeedMPH = distance / e.DurationMinutes
	}
	return e
}

func janSample() []domain.EnrichedTrip {
	day := func(d, hour int) time.Time {
		return time.Date(2024, 1, d, hour, 30, 0, 0, time.UTC)
	}
	return []domain.EnrichedTrip{
		trip(day(1, 8), 14.5, 3.0, strPtr("Cash"), strPtr("JFK Airport")),
		trip(day(5, 9), 20.0, 5.0, strPtr("Credit Card"), strPtr("JFK Airport")),
		trip(day(10, 17), 8.0, 1.5, strPtr("Credit Card"), strPtr("Upper East Side North")),
		trip(day(20, 23), 32.0, 12.0, strPtr("Dispute"), nil),
		trip(day(31, 0), 11.0, 2.0, nil, strPtr("Upper East Side North")),
	}
}

func fullRange() Filter {
	return Filter{
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		StartHour: 0,
		EndHour:   23,
	}
}

func TestApplyFilter_FullRangeKeepsSample(t *testing.T) {
	sample := janSample()

	view := ApplyFilter(sample, fullRange())

	assert.Equal(t, sample, view.Rows())
}

func TestApplyFilter_DateBoundsInclusive(t *testing.T) {
	sample := janSample()

	f := fullRange()
	f.StartDate = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	f.EndDate = time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	view := ApplyFilter(sample, f)

	require.Equal(t, 3, view.Len())
	assert.Equal(t, 5, view.Rows()[0].PickupTime.Day())
	assert.Equal(t, 20, view.Rows()[2].PickupTime.Day())
}

func TestApplyFilter_DateCompareIgnoresTimeOfDay(t *testing.T) {
	sample := janSample()

	// End date carries a time earlier than the last matching pickup; the
	// comparison is on the calendar date, so the 20th at 23:30 stays in.
	f := fullRange()
	f.EndDate = time.Date(2024, 1, 20, 6, 0, 0, 0, time.UTC)

	view := ApplyFilter(sample, f)

	require.Equal(t, 4, view.Len())
	assert.Equal(t, 23, view.Rows()[3].PickupHour)
}

func TestApplyFilter_HourBoundsInclusive(t *testing.T) {
	sample := janSample()

	f := fullRange()
	f.StartHour = 8
	f.EndHour = 17

	view := ApplyFilter(sample, f)

	require.Equal(t, 3, view.Len())
	for _, row := range view.Rows() {
		assert.GreaterOrEqual(t, row.PickupHour, 8)
		assert.LessOrEqual(t, row.PickupHour, 17)
	}
}

func TestApplyFilter_PaymentSet(t *testing.T) {
	sample := janSample()

	f := fullRange()
	f.Payments = []string{"Credit Card", "Dispute"}

	view := ApplyFilter(sample, f)

	require.Equal(t, 3, view.Len())
	for _, row := range view.Rows() {
		require.NotNil(t, row.PaymentDescription)
		assert.Contains(t, f.Payments, *row.PaymentDescription)
	}
}

func TestApplyFilter_EmptyPaymentSetFailsOpen(t *testing.T) {
	sample := janSample()

	withEmpty := ApplyFilter(sample, Filter{
		StartDate: fullRange().StartDate,
		EndDate:   fullRange().EndDate,
		EndHour:   23,
		Payments:  []string{},
	})
	without := ApplyFilter(sample, fullRange())

	assert.Equal(t, without.Rows(), withEmpty.Rows())
}

func TestApplyFilter_NilPaymentExcludedWhenSetActive(t *testing.T) {
	sample := janSample()

	f := fullRange()
	f.Payments = []string{"Cash", "Credit Card", "Dispute", "No Charge", "Unknown"}

	view := ApplyFilter(sample, f)

	// The 31st's trip has no payment description and cannot satisfy any
	// selected set, even one listing every known label.
	assert.Equal(t, 4, view.Len())
}

func TestApplyFilter_Monotonic(t *testing.T) {
	sample := janSample()

	wide := ApplyFilter(sample, fullRange())

	narrow := fullRange()
	narrow.StartHour = 9
	narrow.EndHour = 17
	narrow.Payments = []string{"Credit Card"}

	narrowed := ApplyFilter(sample, narrow)

	assert.LessOrEqual(t, narrowed.Len(), wide.Len())
	for _, row := range narrowed.Rows() {
		assert.Contains(t, wide.Rows(), row)
	}
}

func TestApplyFilter_EmptySample(t *testing.T) {
	view := ApplyFilter(nil, fullRange())

	assert.Equal(t, 0, view.Len())
}
