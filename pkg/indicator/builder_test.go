package indicator_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dialboard/server/pkg/gauge/aggregates"
	"github.com/dialboard/server/pkg/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fredHandler(t *testing.T, values map[string]float64) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		seriesID := r.URL.Query().Get("series_id")
		value, ok := values[seriesID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"observations":[{"date":"2026-08-21","value":"%f"},{"date":"2026-08-24","value":"."}]}`, value)
	}
}

func stooqHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		b.WriteString("Date,Open,High,Low,Close,Volume\n")
		for day := 1; day <= 30; day++ {
			close := 100.0
			if day == 30 {
				close = 95.0
			}
			fmt.Fprintf(&b, "2026-06-%02d,0,0,0,%f,0\n", day, close)
		}
		fmt.Fprint(w, b.String())
	}
}

func TestBuilderRun(t *testing.T) {
	fred := httptest.NewServer(fredHandler(t, map[string]float64{
		"VIXCLS": 17.5,
		"T10Y2Y": 0.45,
	}))
	defer fred.Close()
	stooq := httptest.NewServer(stooqHandler(t))
	defer stooq.Close()

	dir := t.TempDir()
	output := filepath.Join(dir, "indicators.json")
	historyFile := filepath.Join(dir, "history.ndjson")
	builder, err := indicator.NewBuilder(slog.Default(), indicator.Configuration{
		Output:   output,
		History:  historyFile,
		FREDURL:  fred.URL,
		StooqURL: stooq.URL,
	})
	require.NoError(t, err)

	err = builder.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var document struct {
		AsOf  string                 `json:"asOf"`
		Cards []aggregates.RawRecord `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(data, &document))
	assert.NotEmpty(t, document.AsOf)
	require.Len(t, document.Cards, 8)

	cards := map[string]aggregates.RawRecord{}
	for _, card := range document.Cards {
		cards[card.ID] = card
	}

	vix := cards["vix"]
	assert.Equal(t, "GOOD", vix.Status)
	assert.Equal(t, 17.5, vix.Value)

	curve := cards["curve_10y2y"]
	assert.Equal(t, "GOOD", curve.Status)
	assert.Equal(t, 45.0, curve.Value)

	// 5% drawdown from the window peak
	spy := cards["spy_dd_1m"]
	assert.Equal(t, "GOOD", spy.Status)
	assert.Equal(t, -5.0, spy.Value)

	// series missing upstream degrade to DELAYED placeholders
	hy := cards["hy_oas"]
	assert.Equal(t, "DELAYED", hy.Status)
	assert.Equal(t, "—", hy.ValueText)
	assert.Equal(t, 50.0, hy.Pct)

	historyData, err := os.ReadFile(historyFile)
	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal(historyData, &line))
	assert.NotEmpty(t, line["week"])
	assert.Equal(t, 17.5, line["vix"])
}
