package domain

import (
	"time"
)

// Trip represents a single yellow-taxi trip after cleaning. All fields are
// guaranteed non-null and in range once a trip has passed the cleaning stage:
// pickup strictly before dropoff, distance in (0, 50] miles and fare in
// (0, 500].
type Trip struct {
	PickupTime   time.Time `json:"tpep_pickup_datetime"`
	DropoffTime  time.Time `json:"tpep_dropoff_datetime"`
	PULocationID int32     `json:"pu_location_id"`
	DOLocationID int32     `json:"do_location_id"`
	TripDistance float64   `json:"trip_distance"`
	FareAmount   float64   `json:"fare_amount"`
	PaymentType  int32     `json:"payment_type"`
}

// RawTrip is a trip row as read from the monthly Parquet file. Required
// columns are nullable at the source, so they surface here as pointers;
// the cleaning stage drops rows with any nil required field.
type RawTrip struct {
	PickupTime   *time.Time
	DropoffTime  *time.Time
	PULocationID *int32
	DOLocationID *int32
	TripDistance *float64
	FareAmount   *float64
	PaymentType  *int32
}

// EnrichedTrip is a cleaned trip plus the derived columns and the joined
// zone and payment descriptions. The joined fields are optional by design:
// a nil pointer means the left join found no match for that side, which is
// a retained row, not an error.
type EnrichedTrip struct {
	Trip

	DurationMinutes float64 `json:"trip_duration_minutes"`
	SpeedMPH        float64 `json:"trip_speed_mph"`
	PickupHour      int     `json:"pickup_hour"`
	PickupWeekday   string  `json:"pickup_day_of_week"`

	PickupZone         *string `json:"pickup_zone"`
	PickupBorough      *string `json:"pickup_borough"`
	DropoffZone        *string `json:"dropoff_zone"`
	DropoffBorough     *string `json:"dropoff_borough"`
	PaymentDescription *string `json:"payment_description"`
}

// PickupDate returns the date portion of the pickup timestamp, midnight in
// the timestamp's own location. Date-range filtering compares dates only.
func (t *Trip) PickupDate() time.Time {
	y, m, d := t.PickupTime.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.PickupTime.Location())
}

// Weekdays lists English weekday names Monday-first. Chart axes that depend
// on weekday ordering use this fixed ordering, never data order.
var Weekdays = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// WeekdayIndex returns the Monday-first position of a weekday name, or -1
// for an unrecognized name.
func WeekdayIndex(name string) int {
	for i, w := range Weekdays {
		if w == name {
			return i
		}
	}
	return -1
}
