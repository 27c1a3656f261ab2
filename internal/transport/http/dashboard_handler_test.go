package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newDashboardRouter(t *testing.T, warm bool) chi.Router {
	t.Helper()
	handler := NewDashboardHandler(newDashboardService(t, warm), testLogger(), testErrorHandler())
	r := chi.NewRouter()
	r.Mount("/api/dashboard", handler.Routes())
	return r
}

func doRequest(t *testing.T, router chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetOptions(t *testing.T) {
	router := newDashboardRouter(t, true)

	rec := doRequest(t, router, "/api/dashboard/options")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Contains(t, body["min_date"], "2024-01-02")
	assert.Contains(t, body["max_date"], "2024-01-20")
	assert.Equal(t, []interface{}{"Cash", "Credit Card"}, body["payments"])
}

func TestGetOptions_BeforeWarmup(t *testing.T) {
	router := newDashboardRouter(t, false)

	rec := doRequest(t, router, "/api/dashboard/options")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(http.StatusServiceUnavailable), body["status"])
	assert.Equal(t, "Dataset Loading", body["title"])
	assert.Equal(t, float64(5), body["retry_after"])
}

func TestGetSnapshot(t *testing.T) {
	router := newDashboardRouter(t, true)

	rec := doRequest(t, router, "/api/dashboard/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(3), body["filtered_rows"])

	summary, ok := body["summary"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), summary["trip_count"])
	assert.Equal(t, true, summary["has_data"])

	topZones, ok := body["top_zones"].([]interface{})
	require.True(t, ok)
	require.Len(t, topZones, 2)
	first := topZones[0].(map[string]interface{})
	assert.Equal(t, "JFK Airport", first["pickup_zone"])
	assert.Equal(t, float64(2), first["zone_pickups"])
}

func TestGetSnapshot_Filtered(t *testing.T) {
	router := newDashboardRouter(t, true)

	rec := doRequest(t, router, "/api/dashboard/snapshot?start_hour=8&end_hour=9")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["filtered_rows"])
}

func TestGetSnapshot_EmptyResult(t *testing.T) {
	router := newDashboardRouter(t, true)

	rec := doRequest(t, router, "/api/dashboard/snapshot?payments=Dispute")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["filtered_rows"])
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, false, summary["has_data"])
}

func TestGetSnapshot_InvalidFilter(t *testing.T) {
	router := newDashboardRouter(t, true)

	rec := doRequest(t, router, "/api/dashboard/snapshot?start_date=bogus")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])
}

func TestGetSummary(t *testing.T) {
	router := newDashboardRouter(t, true)

	rec := doRequest(t, router, "/api/dashboard/summary?payments=Cash")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["trip_count"])
	assert.Equal(t, 22.0, body["avg_fare"])
}

func TestGetChart(t *testing.T) {
	router := newDashboardRouter(t, true)

	for _, chart := range []string{"top-zones", "avg-fare", "distance-histogram", "payment-breakdown", "hour-weekday"} {
		t.Run(chart, func(t *testing.T) {
			rec := doRequest(t, router, "/api/dashboard/charts/"+chart)
			require.Equal(t, http.StatusOK, rec.Code)

			body := decodeBody(t, rec)
			assert.Equal(t, chart, body["chart"])
			assert.NotNil(t, body["data"])
		})
	}
}

func TestGetChart_Unknown(t *testing.T) {
	router := newDashboardRouter(t, true)

	rec := doRequest(t, router, "/api/dashboard/charts/pie-of-everything")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCSV(t *testing.T) {
	router := newDashboardRouter(t, true)

	rec := doRequest(t, router, "/api/dashboard/export/csv/top-zones")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `"top-zones.csv"`)

	out := rec.Body.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(out), "pickup_zone,zone_pickups")
	assert.Contains(t, string(out), "JFK Airport,2")
}

func TestExportCSV_UnknownChart(t *testing.T) {
	router := newDashboardRouter(t, true)

	rec := doRequest(t, router, "/api/dashboard/export/csv/everything")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportWorkbook(t *testing.T) {
	router := newDashboardRouter(t, true)

	rec := doRequest(t, router, "/api/dashboard/export/xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `"taxi-dashboard.xlsx"`)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"summary", "top-zones", "avg-fare", "distance-histogram",
		"payment-breakdown", "hour-weekday",
	}, f.GetSheetList())

	count, err := f.GetCellValue("summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "3", count)
}
