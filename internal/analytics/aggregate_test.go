package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxipulse/pkg/contracts/domain"
)

func viewOf(rows ...domain.EnrichedTrip) View {
	return View{rows: rows}
}

func at(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

func TestSummarize(t *testing.T) {
	view := viewOf(
		trip(at(1, 8), 10.0, 2.0, strPtr("Cash"), strPtr("JFK Airport")),
		trip(at(2, 9), 20.0, 4.0, strPtr("Cash"), strPtr("JFK Airport")),
	)

	s := Summarize(view)

	require.True(t, s.HasData)
	assert.Equal(t, 2, s.TripCount)
	assert.InDelta(t, 15.0, *s.AvgFare, 1e-9)
	assert.InDelta(t, 30.0, *s.TotalFare, 1e-9)
	assert.InDelta(t, 3.0, *s.AvgDistance, 1e-9)
	assert.InDelta(t, 15.0, *s.AvgDurationMins, 1e-9)
}

func TestSummarize_EmptyViewHasNoAverages(t *testing.T) {
	s := Summarize(viewOf())

	assert.False(t, s.HasData)
	assert.Equal(t, 0, s.TripCount)
	assert.Nil(t, s.AvgFare)
	assert.Nil(t, s.TotalFare)
	assert.Nil(t, s.AvgDistance)
	assert.Nil(t, s.AvgDurationMins)
}

func TestTopPickupZones_OrderAndLimit(t *testing.T) {
	rows := make([]domain.EnrichedTrip, 0, 6)
	for i := 0; i < 3; i++ {
		rows = append(rows, trip(at(1, 8), 10, 2, nil, strPtr("Midtown Center")))
	}
	for i := 0; i < 2; i++ {
		rows = append(rows, trip(at(1, 9), 10, 2, nil, strPtr("JFK Airport")))
	}
	rows = append(rows, trip(at(1, 10), 10, 2, nil, strPtr("Astoria")))

	top := TopPickupZones(View{rows: rows}, 2)

	require.Len(t, top, 2)
	assert.Equal(t, ZonePickups{PickupZone: "Midtown Center", ZonePickups: 3}, top[0])
	assert.Equal(t, ZonePickups{PickupZone: "JFK Airport", ZonePickups: 2}, top[1])
}

func TestTopPickupZones_TiesKeepFirstSeenOrder(t *testing.T) {
	view := viewOf(
		trip(at(1, 8), 10, 2, nil, strPtr("Astoria")),
		trip(at(1, 9), 10, 2, nil, strPtr("JFK Airport")),
		trip(at(1, 10), 10, 2, nil, strPtr("Astoria")),
		trip(at(1, 11), 10, 2, nil, strPtr("JFK Airport")),
	)

	top := TopPickupZones(view, 10)

	require.Len(t, top, 2)
	assert.Equal(t, "Astoria", top[0].PickupZone)
	assert.Equal(t, "JFK Airport", top[1].PickupZone)
}

func TestTopPickupZones_SkipsUnmatchedZones(t *testing.T) {
	view := viewOf(
		trip(at(1, 8), 10, 2, nil, nil),
		trip(at(1, 9), 10, 2, nil, strPtr("JFK Airport")),
	)

	top := TopPickupZones(view, 10)

	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].ZonePickups)
}

func TestAvgFareByHour(t *testing.T) {
	view := viewOf(
		trip(at(1, 8), 10.0, 2, nil, nil),
		trip(at(2, 8), 11.0, 2, nil, nil),
		trip(at(1, 23), 7.333, 2, nil, nil),
	)

	fares := AvgFareByHour(view)

	require.Len(t, fares, 2)
	assert.Equal(t, HourlyFare{PickupHour: 8, AvgFare: 10.5}, fares[0])
	assert.Equal(t, HourlyFare{PickupHour: 23, AvgFare: 7.33}, fares[1])
}

func TestAvgFareByHour_NoZeroFill(t *testing.T) {
	view := viewOf(trip(at(1, 12), 10, 2, nil, nil))

	fares := AvgFareByHour(view)

	require.Len(t, fares, 1)
	assert.Equal(t, 12, fares[0].PickupHour)
}

func TestDistanceHistogram_EdgesSpanFilteredRange(t *testing.T) {
	view := viewOf(
		trip(at(1, 8), 10, 0.0, nil, nil),
		trip(at(1, 9), 10, 25.0, nil, nil),
		trip(at(1, 10), 10, 50.0, nil, nil),
	)

	bins := DistanceHistogram(view, 50)

	require.Len(t, bins, 50)
	assert.Equal(t, 0.0, bins[0].BinStart)
	assert.Equal(t, 50.0, bins[49].BinEnd)

	total := 0
	for _, b := range bins {
		total += b.Trips
	}
	assert.Equal(t, view.Len(), total)

	// The max value lands in the last bin, not past it.
	assert.Equal(t, 1, bins[49].Trips)
}

func TestDistanceHistogram_SingleValueCollapses(t *testing.T) {
	view := viewOf(
		trip(at(1, 8), 10, 3.0, nil, nil),
		trip(at(1, 9), 10, 3.0, nil, nil),
	)

	bins := DistanceHistogram(view, 50)

	require.Len(t, bins, 1)
	assert.Equal(t, DistanceBin{BinStart: 3.0, BinEnd: 3.0, Trips: 2}, bins[0])
}

func TestDistanceHistogram_EmptyView(t *testing.T) {
	assert.Empty(t, DistanceHistogram(viewOf(), 50))
}

func TestPaymentBreakdown_PercentagesSumTo100(t *testing.T) {
	view := viewOf(
		trip(at(1, 8), 10, 2, strPtr("Credit Card"), nil),
		trip(at(1, 9), 10, 2, strPtr("Credit Card"), nil),
		trip(at(1, 10), 10, 2, strPtr("Cash"), nil),
		trip(at(1, 11), 10, 2, strPtr("Dispute"), nil),
		trip(at(1, 12), 10, 2, nil, nil),
	)

	shares := PaymentBreakdown(view)

	require.Len(t, shares, 3)
	assert.Equal(t, "Credit Card", shares[0].PaymentDescription)
	assert.Equal(t, 2, shares[0].Count)
	assert.InDelta(t, 50.0, shares[0].Percentage, 1e-9)

	var sum float64
	for _, s := range shares {
		sum += s.Percentage
	}
	// Nil-payment rows are outside the chart's total, so the shown shares
	// still account for the whole chart.
	assert.InDelta(t, 100.0, sum, 0.02)
}

func TestPaymentBreakdown_SortedDescending(t *testing.T) {
	view := viewOf(
		trip(at(1, 8), 10, 2, strPtr("Cash"), nil),
		trip(at(1, 9), 10, 2, strPtr("Credit Card"), nil),
		trip(at(1, 10), 10, 2, strPtr("Credit Card"), nil),
	)

	shares := PaymentBreakdown(view)

	require.Len(t, shares, 2)
	assert.Greater(t, shares[0].Percentage, shares[1].Percentage)
	assert.Equal(t, "Credit Card", shares[0].PaymentDescription)
}

func TestPaymentBreakdown_EmptyView(t *testing.T) {
	assert.Empty(t, PaymentBreakdown(viewOf()))
}

func TestHourWeekdayDensity_FullGridZeroFilled(t *testing.T) {
	// 2024-01-01 is a Monday.
	view := viewOf(
		trip(at(1, 8), 10, 2, nil, nil),
		trip(at(1, 8), 10, 2, nil, nil),
		trip(at(2, 17), 10, 2, nil, nil),
	)

	cells := HourWeekdayDensity(view)

	require.Len(t, cells, 7*24)

	byCell := make(map[string]map[int]int, 7)
	for _, c := range cells {
		if byCell[c.PickupWeekday] == nil {
			byCell[c.PickupWeekday] = make(map[int]int, 24)
		}
		byCell[c.PickupWeekday][c.PickupHour] = c.Trips
	}

	assert.Equal(t, 2, byCell["Monday"][8])
	assert.Equal(t, 1, byCell["Tuesday"][17])
	assert.Equal(t, 0, byCell["Sunday"][3])
}

func TestHourWeekdayDensity_WeekdayAxisOrder(t *testing.T) {
	view := viewOf(trip(at(7, 12), 10, 2, nil, nil)) // a Sunday

	cells := HourWeekdayDensity(view)

	require.Len(t, cells, 7*24)
	assert.Equal(t, "Monday", cells[0].PickupWeekday)
	assert.Equal(t, "Sunday", cells[len(cells)-1].PickupWeekday)
}

func TestHourWeekdayDensity_EmptyView(t *testing.T) {
	assert.Empty(t, HourWeekdayDensity(viewOf()))
}

func TestFilterOptions(t *testing.T) {
	sample := janSample()

	opts := FilterOptions(sample)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), opts.MinDate)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), opts.MaxDate)
	assert.Equal(t, 0, opts.MinHour)
	assert.Equal(t, 23, opts.MaxHour)
	assert.Equal(t, []string{"Cash", "Credit Card", "Dispute"}, opts.Payments)
}

func TestFilterOptions_EmptySample(t *testing.T) {
	opts := FilterOptions(nil)

	assert.True(t, opts.MinDate.IsZero())
	assert.True(t, opts.MaxDate.IsZero())
	assert.Empty(t, opts.Payments)
}
