package pipeline

import (
	"taxipulse/pkg/contracts/domain"
)

// unknownPaymentCode marks a trip whose payment_type column was null at the
// source. It is outside the payment lookup, so the enrichment join leaves
// the description absent, matching the null-propagation of the raw column.
const unknownPaymentCode int32 = -1

// Clean drops raw rows that fail any of the validity predicates:
//
//   - any of pickup time, dropoff time, pickup/dropoff location or fare null
//   - trip_distance outside (0, 50]
//   - fare_amount outside (0, 500]
//   - pickup not strictly before dropoff
//
// The predicates are independent and combine with AND, so their order does
// not change the result. A zero-row output is a valid result, not an error.
func Clean(raw []domain.RawTrip) CleanedTrips {
	trips := make([]domain.Trip, 0, len(raw))
	for i := range raw {
		r := &raw[i]
		if r.PickupTime == nil || r.DropoffTime == nil ||
			r.PULocationID == nil || r.DOLocationID == nil || r.FareAmount == nil {
			continue
		}
		// A null distance cannot satisfy the range predicate either.
		if r.TripDistance == nil || *r.TripDistance <= 0 || *r.TripDistance > MaxTripDistanceMiles {
			continue
		}
		if *r.FareAmount <= 0 || *r.FareAmount > MaxFareAmount {
			continue
		}
		if !r.PickupTime.Before(*r.DropoffTime) {
			continue
		}

		payment := unknownPaymentCode
		if r.PaymentType != nil {
			payment = *r.PaymentType
		}

		trips = append(trips, domain.Trip{
			PickupTime:   *r.PickupTime,
			DropoffTime:  *r.DropoffTime,
			PULocationID: *r.PULocationID,
			DOLocationID: *r.DOLocationID,
			TripDistance: *r.TripDistance,
			FareAmount:   *r.FareAmount,
			PaymentType:  payment,
		})
	}
	return CleanedTrips{trips: trips}
}
