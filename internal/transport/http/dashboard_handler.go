package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"taxipulse/internal/analytics"
	apierrors "taxipulse/internal/errors"
	"taxipulse/internal/exporter"
	custommw "taxipulse/internal/middleware"
	"taxipulse/internal/services"
)

// DashboardHandler serves the dashboard API: filter options, the full
// snapshot, single charts, and file exports.
type DashboardHandler struct {
	service      *services.DashboardService
	csv          *exporter.CSVWriter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler with RFC 7807 error handling
func NewDashboardHandler(service *services.DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		csv:          exporter.NewCSVWriter(logger),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes with proper Chi patterns
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/options", h.GetOptions)
	r.Get("/snapshot", h.GetSnapshot)
	r.Get("/summary", h.GetSummary)

	r.Route("/charts/{chart}", func(r chi.Router) {
		r.Use(h.ChartCtx)
		r.Get("/", h.GetChart)
	})

	r.Route("/export", func(r chi.Router) {
		r.Route("/csv/{chart}", func(r chi.Router) {
			r.Use(h.ChartCtx)
			r.Get("/", h.ExportCSV)
		})
		r.Get("/xlsx", h.ExportWorkbook)
	})

	return r
}

// ChartCtx validates the chart name parameter
func (h *DashboardHandler) ChartCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chart := chi.URLParam(r, "chart")

		valid := false
		for _, name := range services.ChartNames {
			if chart == name {
				valid = true
				break
			}
		}
		if !valid {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("chart",
				fmt.Sprintf("Unknown chart %q. Valid charts: top-zones, avg-fare, distance-histogram, payment-breakdown, hour-weekday", chart)))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetOptions handles GET /api/dashboard/options
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Options(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, opts)
}

// GetSnapshot handles GET /api/dashboard/snapshot with the shared filter params
func (h *DashboardHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	f, err := h.filterFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	snapshot, err := h.service.Snapshot(r.Context(), f)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "snapshot failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, snapshot)
}

// GetSummary handles GET /api/dashboard/summary with the shared filter params
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), f)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, summary)
}

// GetChart handles GET /api/dashboard/charts/{chart}
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	chart := chi.URLParam(r, "chart")

	f, err := h.filterFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	payload, err := h.service.Chart(r.Context(), chart, f)
	if err != nil {
		if errors.Is(err, services.ErrChartNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError("chart"))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"chart": chart,
		"data":  payload,
	})
}

// ExportCSV handles GET /api/dashboard/export/csv/{chart}
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	chart := chi.URLParam(r, "chart")
	reqID := middleware.GetReqID(r.Context())

	f, err := h.filterFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	payload, err := h.service.Chart(r.Context(), chart, f)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	table, err := exporter.ChartTable(chart, payload)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	custommw.RecordExportMetrics(r.Context(), "csv", chart)
	h.logger.InfoContext(r.Context(), "exporting chart csv",
		slog.String("chart", chart),
		slog.Int("rows", len(table.Rows)),
		slog.String("request_id", reqID),
	)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.FileName(chart)))

	if err := h.csv.WriteTable(w, table, exporter.WriteOptions{BOMPrefix: true}); err != nil {
		// Headers are gone; all we can do is log.
		h.logger.ErrorContext(r.Context(), "csv export write failed",
			slog.String("chart", chart),
			slog.String("error", err.Error()),
		)
	}
}

// ExportWorkbook handles GET /api/dashboard/export/xlsx. The workbook
// carries the filtered summary plus all five chart tables, one sheet each.
func (h *DashboardHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	snapshot, err := h.service.Snapshot(r.Context(), f)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	tables := []exporter.Table{exporter.SummaryTable(snapshot.Summary)}
	charts := []struct {
		name    string
		payload interface{}
	}{
		{services.ChartTopZones, snapshot.TopZones},
		{services.ChartAvgFare, snapshot.AvgFareByHour},
		{services.ChartDistanceHistogram, snapshot.DistanceHistogram},
		{services.ChartPaymentBreakdown, snapshot.PaymentBreakdown},
		{services.ChartHourWeekday, snapshot.HourWeekdayDensity},
	}
	for _, c := range charts {
		table, err := exporter.ChartTable(c.name, c.payload)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		tables = append(tables, table)
	}

	custommw.RecordExportMetrics(r.Context(), "xlsx", "dashboard")
	h.logger.InfoContext(r.Context(), "exporting dashboard workbook",
		slog.Int("filtered_rows", snapshot.FilteredRows),
	)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.WorkbookFileName))

	if err := exporter.WriteWorkbook(w, tables); err != nil {
		h.logger.ErrorContext(r.Context(), "xlsx export write failed",
			slog.String("error", err.Error()),
		)
	}
}

// filterFromRequest resolves the sample's option ranges and overlays the
// request's query parameters. Before warmup this surfaces the dataset
// loading error so clients get the 503 problem instead of empty defaults.
func (h *DashboardHandler) filterFromRequest(r *http.Request) (analytics.Filter, error) {
	opts, err := h.service.Options(r.Context())
	if err != nil {
		return analytics.Filter{}, err
	}
	return parseFilter(r, opts)
}
