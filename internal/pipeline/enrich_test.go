package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxipulse/pkg/contracts/domain"
)

func testZones() ZoneIndex {
	return NewZoneIndex([]domain.Zone{
		{LocationID: 132, Borough: "Queens", Zone: "JFK Airport"},
		{LocationID: 236, Borough: "Manhattan", Zone: "Upper East Side North"},
	})
}

func cleanedSingle(t *testing.T, raw domain.RawTrip) CleanedTrips {
	t.Helper()
	cleaned := Clean([]domain.RawTrip{raw})
	require.Equal(t, 1, cleaned.Len())
	return cleaned
}

func TestEnrich_DerivedColumns(t *testing.T) {
	// Monday 2024-01-01, 15 minute trip of 3 miles: the worked example.
	enriched := Enrich(cleanedSingle(t, validRaw()), testZones())
	require.Equal(t, 1, enriched.Len())
	e := enriched.Rows()[0]

	assert.InDelta(t, 15.0, e.DurationMinutes, 1e-9)
	assert.InDelta(t, 0.2, e.SpeedMPH, 1e-9)
	assert.Equal(t, 8, e.PickupHour)
	assert.Equal(t, "Monday", e.PickupWeekday)
}

func TestEnrich_FractionalDuration(t *testing.T) {
	raw := validRaw()
	raw.DropoffTime = ts("2024-01-01T08:00:30")

	enriched := Enrich(cleanedSingle(t, raw), testZones())
	assert.InDelta(t, 0.5, enriched.Rows()[0].DurationMinutes, 1e-9)
}

func TestEnrich_ZoneJoins(t *testing.T) {
	tests := []struct {
		name        string
		pu, do      int32
		wantPickup  *string
		wantDropoff *string
	}{
		{
			name: "both sides match",
			pu:   132, do: 236,
			wantPickup:  strPtr("JFK Airport"),
			wantDropoff: strPtr("Upper East Side North"),
		},
		{
			name: "unmatched pickup keeps row with nil zone",
			pu:   999, do: 236,
			wantPickup:  nil,
			wantDropoff: strPtr("Upper East Side North"),
		},
		{
			name: "unmatched dropoff keeps row with nil zone",
			pu:   132, do: 999,
			wantPickup:  strPtr("JFK Airport"),
			wantDropoff: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			raw.PULocationID = i32(tt.pu)
			raw.DOLocationID = i32(tt.do)

			enriched := Enrich(cleanedSingle(t, raw), testZones())
			require.Equal(t, 1, enriched.Len(), "left join must retain the row")
			e := enriched.Rows()[0]

			assertOptional(t, tt.wantPickup, e.PickupZone)
			assertOptional(t, tt.wantDropoff, e.DropoffZone)
			if tt.wantPickup != nil {
				assert.NotNil(t, e.PickupBorough)
			} else {
				assert.Nil(t, e.PickupBorough)
			}
		})
	}
}

func TestEnrich_PaymentJoin(t *testing.T) {
	tests := []struct {
		name     string
		code     *int32
		wantDesc *string
	}{
		{name: "credit card", code: i32(0), wantDesc: strPtr("Credit Card")},
		{name: "cash", code: i32(1), wantDesc: strPtr("Cash")},
		{name: "code outside lookup stays absent", code: i32(7), wantDesc: nil},
		{name: "null code stays absent", code: nil, wantDesc: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			raw.PaymentType = tt.code

			enriched := Enrich(cleanedSingle(t, raw), testZones())
			require.Equal(t, 1, enriched.Len())
			assertOptional(t, tt.wantDesc, enriched.Rows()[0].PaymentDescription)
		})
	}
}

func TestEnrich_EmptyInput(t *testing.T) {
	enriched := Enrich(Clean(nil), testZones())
	assert.Equal(t, 0, enriched.Len())
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	cleaned := Clean([]domain.RawTrip{validRaw()})
	before := cleaned.Rows()[0]

	_ = Enrich(cleaned, testZones())

	assert.Equal(t, before, cleaned.Rows()[0])
}

func TestEnrich_WeekdayNamesAreIndexable(t *testing.T) {
	// Seven consecutive days cover every weekday name exactly once.
	seen := make(map[string]bool)
	for day := 1; day <= 7; day++ {
		raw := validRaw()
		pickup := time.Date(2024, 1, day, 9, 0, 0, 0, time.UTC)
		dropoff := pickup.Add(10 * time.Minute)
		raw.PickupTime = &pickup
		raw.DropoffTime = &dropoff

		enriched := Enrich(cleanedSingle(t, raw), testZones())
		name := enriched.Rows()[0].PickupWeekday
		assert.GreaterOrEqual(t, domain.WeekdayIndex(name), 0, "weekday %q must be orderable", name)
		seen[name] = true
	}
	assert.Len(t, seen, 7)
}

func strPtr(s string) *string { return &s }

func assertOptional(t *testing.T, want, got *string) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	assert.Equal(t, *want, *got)
}
