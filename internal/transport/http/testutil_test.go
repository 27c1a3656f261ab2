package http

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taxipulse/internal/config"
	apierrors "taxipulse/internal/errors"
	"taxipulse/internal/services"
	"taxipulse/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger(), false)
}

// fixtureSource serves three cleaned January 2024 trips.
type fixtureSource struct{}

func (fixtureSource) LoadTrips(ctx context.Context) ([]domain.RawTrip, error) {
	return []domain.RawTrip{
		rawTrip(time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), 15, 132, 236, 3.0, 14.5, 1),
		rawTrip(time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC), 20, 132, 236, 5.0, 22.0, 2),
		rawTrip(time.Date(2024, 1, 20, 18, 0, 0, 0, time.UTC), 10, 236, 132, 1.5, 9.0, 1),
	}, nil
}

func (fixtureSource) LoadZones(ctx context.Context) ([]domain.Zone, error) {
	return []domain.Zone{
		{LocationID: 132, Borough: "Queens", Zone: "JFK Airport"},
		{LocationID: 236, Borough: "Manhattan", Zone: "Upper East Side North"},
	}, nil
}

func rawTrip(pickup time.Time, minutes int, pu, do int32, distance, fare float64, payment int32) domain.RawTrip {
	dropoff := pickup.Add(time.Duration(minutes) * time.Minute)
	return domain.RawTrip{
		PickupTime:   &pickup,
		DropoffTime:  &dropoff,
		PULocationID: &pu,
		DOLocationID: &do,
		TripDistance: &distance,
		FareAmount:   &fare,
		PaymentType:  &payment,
	}
}

func newDashboardService(t *testing.T, warm bool) *services.DashboardService {
	t.Helper()
	cfg := config.Default()
	cfg.Dataset.SampleSize = 100
	svc := services.NewDashboardService(cfg, fixtureSource{}, nil, nil, testLogger())
	if warm {
		require.NoError(t, svc.Warm(context.Background()))
	}
	return svc
}
