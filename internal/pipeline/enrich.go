package pipeline

import (
	"taxipulse/pkg/contracts/domain"
)

// Enrich derives the computed columns and performs the three left joins:
// zone lookup on the pickup side, zone lookup on the dropoff side, and the
// static payment-type lookup. Rows whose join key has no match keep nil for
// the joined fields and are retained.
//
// Speed is distance divided by duration in minutes, with a zero-duration
// guard yielding exactly 0 rather than an error or infinity. Cleaning
// guarantees duration is positive, but the guard stands on its own.
func Enrich(cleaned CleanedTrips, zones ZoneIndex) EnrichedTrips {
	out := make([]domain.EnrichedTrip, 0, cleaned.Len())
	for _, t := range cleaned.Rows() {
		e := domain.EnrichedTrip{Trip: t}

		e.DurationMinutes = t.DropoffTime.Sub(t.PickupTime).Seconds() / 60
		if e.DurationMinutes > 0 {
			e.SpeedMPH = t.TripDistance / e.DurationMinutes
		}
		e.PickupHour = t.PickupTime.Hour()
		e.PickupWeekday = t.PickupTime.Weekday().String()

		if z, ok := zones[t.PULocationID]; ok {
			zone, borough := z.Zone, z.Borough
			e.PickupZone = &zone
			e.PickupBorough = &borough
		}
		if z, ok := zones[t.DOLocationID]; ok {
			zone, borough := z.Zone, z.Borough
			e.DropoffZone = &zone
			e.DropoffBorough = &borough
		}
		if desc, ok := domain.PaymentDescription(t.PaymentType); ok {
			e.PaymentDescription = &desc
		}

		out = append(out, e)
	}
	return EnrichedTrips{trips: out}
}
