package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadtime/adapters/jira"
	"leadtime/adapters/postgres"
	"leadtime/app"
	"leadtime/domain/core"
	"leadtime/internal/analysis"
	"leadtime/internal/errors"
	"leadtime/internal/testkit"
	"leadtime/internal/workdays"
)

func newTestServer(source string) *Server {
	gin.SetMode(gin.TestMode)
	pipeline := app.NewPipelineService(jira.NewParser(), workdays.NewCounter())
	forecaster := analysis.NewForecaster(core.NewHalflife(45))
	forecast := app.NewForecastService(pipeline, forecaster)
	return NewServer(pipeline, forecast, nil, source)
}

func testFeed(t *testing.T) string {
	return testkit.WriteFeed(t,
		testkit.Item("PROJ-1", "alice", "small",
			testkit.Day(2013, time.October, 14),
			testkit.Day(2013, time.October, 16),
			testkit.Day(2013, time.October, 18)),
	)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer("")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer("")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats?feed="+testFeed(t), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Contains(t, doc, "alice")
	require.Contains(t, doc["alice"], "small")
}

func TestStatsEndpointUsesDefaultSource(t *testing.T) {
	s := newTestServer(testFeed(t))
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) (message, code string) {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error, body.Code
}

func TestStatsEndpointWithoutSource(t *testing.T) {
	s := newTestServer("")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	_, code := errorBody(t, w)
	assert.Equal(t, errors.CodeFeedInvalid, code)
}

func TestStatsEndpointBadFeed(t *testing.T) {
	s := newTestServer("")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats?feed=/nonexistent.xml", nil))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	_, code := errorBody(t, w)
	assert.Equal(t, errors.CodeFeedInvalid, code)
}

func TestStatsEndpointDerivationFailureCode(t *testing.T) {
	feed := testkit.WriteFeed(t,
		// Inverted dev range fails derivation
		testkit.Item("PROJ-1", "alice", "small",
			testkit.Day(2013, time.October, 18),
			testkit.Day(2013, time.October, 17),
			testkit.Day(2013, time.October, 20)),
	)

	s := newTestServer("")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats?feed="+feed, nil))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	_, code := errorBody(t, w)
	assert.Equal(t, errors.CodeDerivation, code)
}

func TestEstimatesEndpointWithoutStore(t *testing.T) {
	s := newTestServer("")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/estimates", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSummaryEndpointWithoutStore(t *testing.T) {
	s := newTestServer("")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/summary?assignee=alice&estimate=small", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSummaryEndpointRequiresGroupKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pipeline := app.NewPipelineService(jira.NewParser(), workdays.NewCounter())
	forecaster := analysis.NewForecaster(core.NewHalflife(45))
	forecast := app.NewForecastService(pipeline, forecaster)
	s := NewServer(pipeline, forecast, postgres.NewStore(nil), "")

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/summary?assignee=alice", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportEndpoint(t *testing.T) {
	s := newTestServer("")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report?feed="+testFeed(t), nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "<h1")
	assert.Contains(t, body, "alice")
}
