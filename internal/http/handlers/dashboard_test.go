package handlers_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dialboard/server/internal/http/handlers"
	"github.com/dialboard/server/pkg/client"
	"github.com/dialboard/server/pkg/gauge"
	"github.com/dialboard/server/pkg/gauge/aggregates"
	"github.com/dialboard/server/pkg/history"
	"github.com/labstack/echo/v4"
	er "github.com/mcorbin/corbierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T) *handlers.Builder {
	t.Helper()
	logger := slog.Default()
	gaugeService := gauge.New(logger)
	asOf := time.Now().UTC().Add(-10 * time.Minute)
	applied := gaugeService.Apply(&asOf, []aggregates.RawRecord{
		{Key: "vix", Title: "VOLATILITY (VIX)", Status: "GOOD", Value: 18.2, Min: 10.0, Max: 40.0},
		{Key: "hy_oas", Title: "HIGH YIELD SPREAD (OAS)", Status: "WARN", Pct: 72.0, ValueText: "480 bp"},
	})
	require.True(t, applied)

	historyService := history.New(logger)
	historyService.Apply([]byte(`{"week":"2026-01-05","vix":18.2}
{"week":"2026-01-12","vix":19.0}`))

	return handlers.NewBuilder(gaugeService, historyService, handlers.NewHub(logger))
}

func request(t *testing.T, builder *handlers.Builder, handler func(echo.Context) error, path string, paramValue string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	if paramValue != "" {
		c.SetParamNames("key")
		c.SetParamValues(paramValue)
	}
	return rec, handler(c)
}

func TestGetDashboard(t *testing.T) {
	builder := newTestBuilder(t)
	rec, err := request(t, builder, builder.GetDashboard, "/api/v1/dashboard", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var dashboard client.DashboardOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dashboard))
	require.Len(t, dashboard.Gauges, 2)
	assert.Equal(t, "vix", dashboard.Gauges[0].Key)
	assert.True(t, dashboard.Gauges[0].HasSparkline)
	assert.False(t, dashboard.Gauges[1].HasSparkline)
	assert.InDelta(t, 52.8, dashboard.Gauges[1].Angle, 0.001)
	assert.Equal(t, "10m ago", dashboard.Gauges[0].Freshness)
}

func TestListGauges(t *testing.T) {
	builder := newTestBuilder(t)
	rec, err := request(t, builder, builder.ListGauges, "/api/v1/gauges", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var output client.ListGaugesOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &output))
	require.Len(t, output.Result, 2)
	assert.Equal(t, "WARN", output.Result[1].Status)
	assert.Equal(t, "480 bp", output.Result[1].ValueText)
}

func TestGetGauge(t *testing.T) {
	builder := newTestBuilder(t)
	rec, err := request(t, builder, builder.GetGauge, "/api/v1/gauges/:key", "vix")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var view client.GaugeView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "vix", view.Key)
	assert.True(t, view.HasSparkline)
}

func TestGetGaugeNotFound(t *testing.T) {
	builder := newTestBuilder(t)
	_, err := request(t, builder, builder.GetGauge, "/api/v1/gauges/:key", "unknown")
	require.Error(t, err)
	corbiError, ok := err.(*er.Error)
	require.True(t, ok)
	assert.Equal(t, er.NotFound, corbiError.Type)
}

func TestGetGaugeHistory(t *testing.T) {
	builder := newTestBuilder(t)
	rec, err := request(t, builder, builder.GetGaugeHistory, "/api/v1/gauges/:key/history", "vix")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var output client.GetHistoryOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &output))
	require.Len(t, output.Result, 2)
	assert.Equal(t, "2026-01-05", output.Result[0].Week)

	// unknown keys answer an empty series, not an error
	rec, err = request(t, builder, builder.GetGaugeHistory, "/api/v1/gauges/:key/history", "unknown")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &output))
	assert.Empty(t, output.Result)
}

func TestDashboardPage(t *testing.T) {
	builder := newTestBuilder(t)
	rec, err := request(t, builder, builder.DashboardPage, "/", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	page := rec.Body.String()
	assert.True(t, strings.Contains(page, "VOLATILITY (VIX)"))
	assert.True(t, strings.Contains(page, "<svg"))
	assert.True(t, strings.Contains(page, "polyline"))
	assert.True(t, strings.Contains(page, "rotate(52.8 100 100)"))
}
