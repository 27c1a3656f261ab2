package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxipulse/pkg/contracts/domain"
)

func ts(s string) *time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func f64(v float64) *float64 { return &v }
func i32(v int32) *int32     { return &v }

// validRaw returns a raw row that passes every cleaning predicate.
func validRaw() domain.RawTrip {
	return domain.RawTrip{
		PickupTime:   ts("2024-01-01T08:00:00"),
		DropoffTime:  ts("2024-01-01T08:15:00"),
		PULocationID: i32(132),
		DOLocationID: i32(236),
		TripDistance: f64(3.0),
		FareAmount:   f64(14.5),
		PaymentType:  i32(1),
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.RawTrip)
		kept   bool
	}{
		{name: "valid row survives", mutate: func(r *domain.RawTrip) {}, kept: true},
		{name: "nil pickup time", mutate: func(r *domain.RawTrip) { r.PickupTime = nil }, kept: false},
		{name: "nil dropoff time", mutate: func(r *domain.RawTrip) { r.DropoffTime = nil }, kept: false},
		{name: "nil pickup location", mutate: func(r *domain.RawTrip) { r.PULocationID = nil }, kept: false},
		{name: "nil dropoff location", mutate: func(r *domain.RawTrip) { r.DOLocationID = nil }, kept: false},
		{name: "nil fare", mutate: func(r *domain.RawTrip) { r.FareAmount = nil }, kept: false},
		{name: "nil distance", mutate: func(r *domain.RawTrip) { r.TripDistance = nil }, kept: false},
		{name: "zero distance", mutate: func(r *domain.RawTrip) { r.TripDistance = f64(0) }, kept: false},
		{name: "negative distance", mutate: func(r *domain.RawTrip) { r.TripDistance = f64(-1.2) }, kept: false},
		{name: "distance above cap", mutate: func(r *domain.RawTrip) { r.TripDistance = f64(50.01) }, kept: false},
		{name: "distance at cap", mutate: func(r *domain.RawTrip) { r.TripDistance = f64(50) }, kept: true},
		{name: "zero fare", mutate: func(r *domain.RawTrip) { r.FareAmount = f64(0) }, kept: false},
		{name: "fare above cap", mutate: func(r *domain.RawTrip) { r.FareAmount = f64(500.5) }, kept: false},
		{name: "fare at cap", mutate: func(r *domain.RawTrip) { r.FareAmount = f64(500) }, kept: true},
		{
			name: "pickup equals dropoff",
			mutate: func(r *domain.RawTrip) {
				r.DropoffTime = ts("2024-01-01T08:00:00")
			},
			kept: false,
		},
		{
			name: "pickup after dropoff",
			mutate: func(r *domain.RawTrip) {
				r.DropoffTime = ts("2024-01-01T07:59:00")
			},
			kept: false,
		},
		{
			name:   "nil payment type survives with sentinel code",
			mutate: func(r *domain.RawTrip) { r.PaymentType = nil },
			kept:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)

			cleaned := Clean([]domain.RawTrip{raw})
			if tt.kept {
				assert.Equal(t, 1, cleaned.Len())
			} else {
				assert.Equal(t, 0, cleaned.Len())
			}
		})
	}
}

func TestClean_Invariants(t *testing.T) {
	rows := []domain.RawTrip{
		validRaw(),
		{PickupTime: ts("2024-01-02T10:00:00")}, // mostly null
		func() domain.RawTrip {
			r := validRaw()
			r.TripDistance = f64(80)
			return r
		}(),
		func() domain.RawTrip {
			r := validRaw()
			r.PaymentType = i32(9)
			return r
		}(),
	}

	cleaned := Clean(rows)
	require.Equal(t, 2, cleaned.Len())

	for _, trip := range cleaned.Rows() {
		assert.True(t, trip.PickupTime.Before(trip.DropoffTime))
		assert.Greater(t, trip.TripDistance, 0.0)
		assert.LessOrEqual(t, trip.TripDistance, MaxTripDistanceMiles)
		assert.Greater(t, trip.FareAmount, 0.0)
		assert.LessOrEqual(t, trip.FareAmount, MaxFareAmount)
	}
}

func TestClean_EmptyInput(t *testing.T) {
	cleaned := Clean(nil)
	assert.Equal(t, 0, cleaned.Len())
	assert.NotNil(t, cleaned.Rows())
}

func TestClean_NullPaymentGetsSentinel(t *testing.T) {
	raw := validRaw()
	raw.PaymentType = nil

	cleaned := Clean([]domain.RawTrip{raw})
	require.Equal(t, 1, cleaned.Len())

	_, known := domain.PaymentDescription(cleaned.Rows()[0].PaymentType)
	assert.False(t, known, "sentinel payment code must not resolve to a label")
}
