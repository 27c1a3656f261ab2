package errors

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(includeStack bool) *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), includeStack)
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var problem map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	return problem
}

func TestHandleError_APIError(t *testing.T) {
	h := newTestHandler(false)
	r := httptest.NewRequest("GET", "/api/dashboard/charts/nope", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, ErrChartNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	problem := decodeProblem(t, w)
	assert.Equal(t, TypeChartNotFound, problem["type"])
	assert.Equal(t, "CHART_NOT_FOUND", problem["error_code"])
	assert.Equal(t, "/api/dashboard/charts/nope", problem["instance"])
}

func TestHandleError_ContextCancellation(t *testing.T) {
	h := newTestHandler(false)
	r := httptest.NewRequest("GET", "/api/dashboard/snapshot", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, context.DeadlineExceeded)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	problem := decodeProblem(t, w)
	assert.Equal(t, TypeTimeout, problem["type"])
}

func TestErrorToProblem_StringMatching(t *testing.T) {
	h := newTestHandler(false)
	r := httptest.NewRequest("GET", "/api/test", nil)

	tests := []struct {
		err        error
		wantStatus int
		wantType   string
	}{
		{errors.New("dataset: trip file schema violation: missing column fare_amount"), http.StatusInternalServerError, TypeDatasetSchema},
		{errors.New("trips.parquet not found"), http.StatusNotFound, TypeNotFound},
		{errors.New("dataset is still loading"), http.StatusServiceUnavailable, TypeDatasetWarming},
		{errors.New("rate limit exceeded for client"), http.StatusTooManyRequests, TypeRateLimit},
		{errors.New("something exploded"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		problem := h.ErrorToProblem(tt.err, r)
		assert.Equal(t, tt.wantStatus, problem.Status, "error %q", tt.err)
		assert.Equal(t, tt.wantType, problem.Type, "error %q", tt.err)
	}
}

func TestHandleError_IncludesStackInDevelopment(t *testing.T) {
	h := newTestHandler(true)
	r := httptest.NewRequest("GET", "/api/test", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, errors.New("boom"))

	problem := decodeProblem(t, w)
	assert.Contains(t, problem, "stack")
}

func TestHandlePanic(t *testing.T) {
	h := newTestHandler(false)
	r := httptest.NewRequest("GET", "/api/test", nil)
	w := httptest.NewRecorder()

	h.HandlePanic(w, r, "something broke")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	problem := decodeProblem(t, w)
	assert.Equal(t, TypeInternal, problem["type"])
	assert.NotContains(t, problem, "panic")
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler(false)

	r := httptest.NewRequest("GET", "/nope", nil)
	w := httptest.NewRecorder()
	h.NotFound(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)

	r = httptest.NewRequest("DELETE", "/api/health", nil)
	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := newTestHandler(false)
	mw := RecoveryMiddleware(h)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}))

	r := httptest.NewRequest("GET", "/api/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
