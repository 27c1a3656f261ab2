package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"taxipulse/internal/analytics"
	"taxipulse/internal/config"
	"taxipulse/internal/infrastructure"
	"taxipulse/internal/pipeline"
	"taxipulse/pkg/contracts/domain"
)

// Chart names served by the dashboard. These are the URL path values and
// the export file stems.
const (
	ChartTopZones          = "top-zones"
	ChartAvgFare           = "avg-fare"
	ChartDistanceHistogram = "distance-histogram"
	ChartPaymentBreakdown  = "payment-breakdown"
	ChartHourWeekday       = "hour-weekday"
)

// ChartNames lists every chart in display order.
var ChartNames = []string{
	ChartTopZones,
	ChartAvgFare,
	ChartDistanceHistogram,
	ChartPaymentBreakdown,
	ChartHourWeekday,
}

// DatasetSource abstracts the dataset loader for testability.
type DatasetSource interface {
	LoadTrips(ctx context.Context) ([]domain.RawTrip, error)
	LoadZones(ctx context.Context) ([]domain.Zone, error)
}

// WebSocketHub is the hub surface the services need.
type WebSocketHub interface {
	Broadcast(messageType string, data interface{})
	ClientCount() int
}

// Snapshot is the full dashboard payload for one filter: the summary row
// plus all five chart tables.
type Snapshot struct {
	Summary            analytics.Summary        `json:"summary"`
	TopZones           []analytics.ZonePickups  `json:"top_zones"`
	AvgFareByHour      []analytics.HourlyFare   `json:"avg_fare_by_hour"`
	DistanceHistogram  []analytics.DistanceBin  `json:"distance_histogram"`
	PaymentBreakdown   []analytics.PaymentShare `json:"payment_breakdown"`
	HourWeekdayDensity []analytics.DensityCell  `json:"hour_weekday"`
	FilteredRows       int                      `json:"filtered_rows"`
}

// DashboardService owns the warmed dataset session and answers every
// dashboard query from the retained sample.
type DashboardService struct {
	cfg     *config.Config
	source  DatasetSource
	hub     WebSocketHub
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	mu       sync.RWMutex
	ready    bool
	warming  bool
	warmErr  error
	sample   pipeline.SampledTrips
	zones    pipeline.ZoneIndex
	options  analytics.Options
	warmedAt time.Time
}

// NewDashboardService creates a dashboard service. hub and metrics may be
// nil; warmup then runs without broadcasting or instrumentation.
func NewDashboardService(cfg *config.Config, source DatasetSource, hub WebSocketHub, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		cfg:     cfg,
		source:  source,
		hub:     hub,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dashboard_service")),
	}
}

// Warm runs the load-clean-enrich-sample pipeline once and retains the
// result. A second call after success is a no-op; a concurrent call while
// warmup is in flight reports ErrDatasetNotReady.
func (s *DashboardService) Warm(ctx context.Context) error {
	s.mu.Lock()
	if s.ready {
		s.mu.Unlock()
		return nil
	}
	if s.warming {
		s.mu.Unlock()
		return ErrDatasetNotReady
	}
	s.warming = true
	s.mu.Unlock()

	sample, zones, err := s.warm(ctx)

	s.mu.Lock()
	s.warming = false
	s.warmErr = err
	if err == nil {
		s.ready = true
		s.sample = sample
		s.zones = zones
		s.options = analytics.FilterOptions(sample.Rows())
		s.warmedAt = time.Now()
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.Broadcast("dataset:ready", map[string]interface{}{
			"month": s.cfg.Dataset.Month,
			"rows":  sample.Len(),
		})
	}
	return nil
}

func (s *DashboardService) warm(ctx context.Context) (pipeline.SampledTrips, pipeline.ZoneIndex, error) {
	start := time.Now()

	s.logger.InfoContext(ctx, "warming dataset",
		slog.String("month", s.cfg.Dataset.Month),
		slog.String("trip_file", s.cfg.TripFileName()))

	raw, err := s.source.LoadTrips(ctx)
	if err != nil {
		return pipeline.SampledTrips{}, nil, fmt.Errorf("load trips: %w", err)
	}

	zoneRows, err := s.source.LoadZones(ctx)
	if err != nil {
		return pipeline.SampledTrips{}, nil, fmt.Errorf("load zones: %w", err)
	}

	cleaned := pipeline.Clean(raw)
	zones := pipeline.NewZoneIndex(zoneRows)
	enriched := pipeline.Enrich(cleaned, zones)
	sample := pipeline.Sample(enriched, s.cfg.Dataset.SampleSize, s.cfg.Dataset.SampleSeed)

	dropped := len(raw) - cleaned.Len()
	s.metrics.RecordWarmup(ctx, time.Since(start), cleaned.Len(), dropped)

	s.logger.InfoContext(ctx, "dataset warmed",
		slog.Int("raw_rows", len(raw)),
		slog.Int("cleaned_rows", cleaned.Len()),
		slog.Int("dropped_rows", dropped),
		slog.Int("sample_rows", sample.Len()),
		slog.Int("zones", len(zones)),
		slog.Duration("duration", time.Since(start)))

	return sample, zones, nil
}

// Ready reports whether warmup has completed successfully.
func (s *DashboardService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// WarmError returns the last warmup failure, nil once warmup succeeds.
func (s *DashboardService) WarmError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.warmErr
}

// SampleSize returns the number of retained sample rows.
func (s *DashboardService) SampleSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sample.Len()
}

// Options returns the filter bounds derived from the warmed sample.
func (s *DashboardService) Options(ctx context.Context) (analytics.Options, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return analytics.Options{}, ErrDatasetNotReady
	}
	return s.options, nil
}

// Summary filters the sample and returns the KPI row alone.
func (s *DashboardService) Summary(ctx context.Context, f analytics.Filter) (analytics.Summary, error) {
	view, err := s.view(f)
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(view), nil
}

// Snapshot filters the sample and computes the summary plus every chart.
func (s *DashboardService) Snapshot(ctx context.Context, f analytics.Filter) (*Snapshot, error) {
	start := time.Now()

	view, err := s.view(f)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Summary:            analytics.Summarize(view),
		TopZones:           analytics.TopPickupZones(view, 10),
		AvgFareByHour:      analytics.AvgFareByHour(view),
		DistanceHistogram:  analytics.DistanceHistogram(view, analytics.DistanceHistogramBins),
		PaymentBreakdown:   analytics.PaymentBreakdown(view),
		HourWeekdayDensity: analytics.HourWeekdayDensity(view),
		FilteredRows:       view.Len(),
	}

	s.metrics.RecordSnapshot(ctx, time.Since(start), view.Len())

	s.logger.DebugContext(ctx, "snapshot computed",
		slog.Int("filtered_rows", view.Len()),
		slog.Duration("duration", time.Since(start)))

	return snap, nil
}

// Chart filters the sample and computes a single named chart table.
func (s *DashboardService) Chart(ctx context.Context, name string, f analytics.Filter) (interface{}, error) {
	view, err := s.view(f)
	if err != nil {
		return nil, err
	}

	switch name {
	case ChartTopZones:
		return analytics.TopPickupZones(view, 10), nil
	case ChartAvgFare:
		return analytics.AvgFareByHour(view), nil
	case ChartDistanceHistogram:
		return analytics.DistanceHistogram(view, analytics.DistanceHistogramBins), nil
	case ChartPaymentBreakdown:
		return analytics.PaymentBreakdown(view), nil
	case ChartHourWeekday:
		return analytics.HourWeekdayDensity(view), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrChartNotFound, name)
	}
}

// view applies a filter to the warmed sample under the read lock.
func (s *DashboardService) view(f analytics.Filter) (analytics.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return analytics.View{}, ErrDatasetNotReady
	}
	return analytics.ApplyFilter(s.sample.Rows(), f), nil
}
