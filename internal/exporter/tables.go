package exporter

import (
	"fmt"

	"taxipulse/internal/analytics"
)

// Table is the common export form of one chart: a sheet/file name, a
// header row and pre-formatted string cells.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// SummaryTable converts the KPI summary into a two-column table. An
// empty summary exports the trip count row alone.
func SummaryTable(s analytics.Summary) Table {
	rows := [][]string{
		{"trip_count", formatInt(s.TripCount)},
	}
	if s.AvgFare != nil {
		rows = append(rows, []string{"avg_fare", formatFloat(*s.AvgFare)})
	}
	if s.TotalFare != nil {
		rows = append(rows, []string{"total_fare", formatFloat(*s.TotalFare)})
	}
	if s.AvgDistance != nil {
		rows = append(rows, []string{"avg_distance", formatFloat(*s.AvgDistance)})
	}
	if s.AvgDurationMins != nil {
		rows = append(rows, []string{"avg_duration_minutes", formatFloat(*s.AvgDurationMins)})
	}
	return Table{
		Name:    "summary",
		Headers: []string{"metric", "value"},
		Rows:    rows,
	}
}

// ChartTable converts a chart payload into its export table. The headers
// match the chart's JSON keys, so a CSV opens with the same columns the
// API serves.
func ChartTable(name string, payload interface{}) (Table, error) {
	switch rows := payload.(type) {
	case []analytics.ZonePickups:
		t := Table{Name: name, Headers: []string{"pickup_zone", "zone_pickups"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{r.PickupZone, formatInt(r.ZonePickups)})
		}
		return t, nil

	case []analytics.HourlyFare:
		t := Table{Name: name, Headers: []string{"pickup_hour", "avg_fare"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{formatInt(r.PickupHour), formatFloat(r.AvgFare)})
		}
		return t, nil

	case []analytics.DistanceBin:
		t := Table{Name: name, Headers: []string{"bin_start", "bin_end", "trips"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{formatFloat(r.BinStart), formatFloat(r.BinEnd), formatInt(r.Trips)})
		}
		return t, nil

	case []analytics.PaymentShare:
		t := Table{Name: name, Headers: []string{"payment_description", "count", "percentage"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{r.PaymentDescription, formatInt(r.Count), formatFloat(r.Percentage)})
		}
		return t, nil

	case []analytics.DensityCell:
		t := Table{Name: name, Headers: []string{"pickup_hour", "pickup_weekday", "trips"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{formatInt(r.PickupHour), r.PickupWeekday, formatInt(r.Trips)})
		}
		return t, nil

	default:
		return Table{}, fmt.Errorf("no export table for chart %s (%T)", name, payload)
	}
}
