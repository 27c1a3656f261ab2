package analytics

import (
	"math"
	"sort"

	"taxipulse/pkg/contracts/domain"
)

// Summary holds the five headline metrics of the filtered view. For an
// empty view HasData is false and the averages are omitted entirely; the
// mean of nothing is undefined and must render as a "no data" state, not as
// NaN or an error.
type Summary struct {
	TripCount       int      `json:"trip_count"`
	HasData         bool     `json:"has_data"`
	AvgFare         *float64 `json:"avg_fare,omitempty"`
	TotalFare       *float64 `json:"total_fare,omitempty"`
	AvgDistance     *float64 `json:"avg_distance,omitempty"`
	AvgDurationMins *float64 `json:"avg_duration_minutes,omitempty"`
}

// ZonePickups is one bar of the top-pickup-zones chart.
type ZonePickups struct {
	PickupZone  string `json:"pickup_zone"`
	ZonePickups int    `json:"zone_pickups"`
}

// HourlyFare is one point of the average-fare-by-hour line.
type HourlyFare struct {
	PickupHour int     `json:"pickup_hour"`
	AvgFare    float64 `json:"avg_fare"`
}

// DistanceBin is one bucket of the trip-distance histogram.
type DistanceBin struct {
	BinStart float64 `json:"bin_start"`
	BinEnd   float64 `json:"bin_end"`
	Trips    int     `json:"trips"`
}

// PaymentShare is one bar of the payment-type percentage breakdown.
type PaymentShare struct {
	PaymentDescription string  `json:"payment_description"`
	Count              int     `json:"count"`
	Percentage         float64 `json:"percentage"`
}

// DensityCell is one cell of the hour-by-weekday heatmap.
type DensityCell struct {
	PickupHour    int    `json:"pickup_hour"`
	PickupWeekday string `json:"pickup_weekday"`
	Trips         int    `json:"trips"`
}

// DistanceHistogramBins is the fixed bucket count of the distance chart.
const DistanceHistogramBins = 50

// Summarize computes the headline metrics over the view.
func Summarize(view View) Summary {
	rows := view.Rows()
	s := Summary{TripCount: len(rows)}
	if len(rows) == 0 {
		return s
	}

	var fare, distance, duration float64
	for i := range rows {
		fare += rows[i].FareAmount
		distance += rows[i].TripDistance
		duration += rows[i].DurationMinutes
	}
	n := float64(len(rows))

	s.HasData = true
	s.AvgFare = ptr(fare / n)
	s.TotalFare = ptr(fare)
	s.AvgDistance = ptr(distance / n)
	s.AvgDurationMins = ptr(duration / n)
	return s
}

// TopPickupZones counts trips per pickup zone and returns the top `limit`
// zones by count. Ties keep first-seen order, so the result is stable for a
// given view. Rows whose zone join found no match carry no group key and
// are left out of this chart.
func TopPickupZones(view View, limit int) []ZonePickups {
	type group struct {
		zone  string
		count int
		seen  int
	}
	counts := make(map[string]*group)
	var order []*group

	for _, row := range view.Rows() {
		if row.PickupZone == nil {
			continue
		}
		g, ok := counts[*row.PickupZone]
		if !ok {
			g = &group{zone: *row.PickupZone, seen: len(order)}
			counts[*row.PickupZone] = g
			order = append(order, g)
		}
		g.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].seen < order[j].seen
	})

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	out := make([]ZonePickups, len(order))
	for i, g := range order {
		out[i] = ZonePickups{PickupZone: g.zone, ZonePickups: g.count}
	}
	return out
}

// AvgFareByHour computes the mean fare per pickup hour, rounded to two
// decimals, sorted by hour. Hours without trips are absent from the result,
// not zero-filled.
func AvgFareByHour(view View) []HourlyFare {
	var sums, counts [24]float64
	for _, row := range view.Rows() {
		sums[row.PickupHour] += row.FareAmount
		counts[row.PickupHour]++
	}

	out := make([]HourlyFare, 0, 24)
	for hour := 0; hour < 24; hour++ {
		if counts[hour] == 0 {
			continue
		}
		out = append(out, HourlyFare{
			PickupHour: hour,
			AvgFare:    round2(sums[hour] / counts[hour]),
		})
	}
	return out
}

// DistanceHistogram buckets trip distances into `bins` equal-width bins
// spanning the filtered view's own [min, max]. Edges are recomputed per
// view, so the histogram reshapes as filters change. A single-valued view
// collapses to one bin; an empty view yields no bins.
func DistanceHistogram(view View, bins int) []DistanceBin {
	rows := view.Rows()
	if len(rows) == 0 || bins <= 0 {
		return []DistanceBin{}
	}

	min, max := rows[0].TripDistance, rows[0].TripDistance
	for i := range rows {
		d := rows[i].TripDistance
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}

	if min == max {
		return []DistanceBin{{BinStart: min, BinEnd: max, Trips: len(rows)}}
	}

	width := (max - min) / float64(bins)
	out := make([]DistanceBin, bins)
	for i := range out {
		out[i].BinStart = min + float64(i)*width
		out[i].BinEnd = min + float64(i+1)*width
	}
	// Close the last edge exactly despite float accumulation.
	out[bins-1].BinEnd = max

	for i := range rows {
		idx := int((rows[i].TripDistance - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Trips++
	}
	return out
}

// PaymentBreakdown computes each payment type's share of the view, sorted
// by percentage descending with first-seen tie-breaking. Rows with an
// absent payment description are excluded from both the groups and the
// total, so the returned percentages sum to 100 (within rounding) whenever
// any group exists.
func PaymentBreakdown(view View) []PaymentShare {
	type group struct {
		desc  string
		count int
		seen  int
	}
	counts := make(map[string]*group)
	var order []*group
	total := 0

	for _, row := range view.Rows() {
		if row.PaymentDescription == nil {
			continue
		}
		g, ok := counts[*row.PaymentDescription]
		if !ok {
			g = &group{desc: *row.PaymentDescription, seen: len(order)}
			counts[*row.PaymentDescription] = g
			order = append(order, g)
		}
		g.count++
		total++
	}

	out := make([]PaymentShare, len(order))
	for i, g := range order {
		out[i] = PaymentShare{
			PaymentDescription: g.desc,
			Count:              g.count,
			Percentage:         round2(100 * float64(g.count) / float64(total)),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percentage > out[j].Percentage
	})
	return out
}

// HourWeekdayDensity counts trips per (hour, weekday) cell over the full
// 7x24 grid, weekdays ordered Monday through Sunday regardless of data
// order. The grid is zero-filled: the heatmap needs complete axes even when
// a cell has no trips. An empty view yields no cells.
func HourWeekdayDensity(view View) []DensityCell {
	if view.Len() == 0 {
		return []DensityCell{}
	}

	var grid [7][24]int
	for _, row := range view.Rows() {
		day := domain.WeekdayIndex(row.PickupWeekday)
		if day < 0 {
			continue
		}
		grid[day][row.PickupHour]++
	}

	out := make([]DensityCell, 0, 7*24)
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			out = append(out, DensityCell{
				PickupHour:    hour,
				PickupWeekday: domain.Weekdays[day],
				Trips:         grid[day][hour],
			})
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr(v float64) *float64 { return &v }
