package history_test

import (
	"log/slog"
	"testing"

	"github.com/dialboard/server/pkg/history"
	"github.com/dialboard/server/pkg/history/aggregates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinesSkipsMalformedLines(t *testing.T) {
	data := []byte(`{"week":"2026-01-05","vix":18.2}
this is not json
{"week":"2026-01-12","vix":19.0}
`)
	lines := history.ParseLines(data)
	require.Len(t, lines, 2)
	assert.Equal(t, "2026-01-05", lines[0].Week)
	assert.Equal(t, "2026-01-12", lines[1].Week)
}

func TestParseLinesSkipsMissingWeek(t *testing.T) {
	data := []byte(`{"vix":18.2}
{"week":"","vix":18.2}
{"week":"2026-01-05","vix":18.2}`)
	lines := history.ParseLines(data)
	require.Len(t, lines, 1)
	assert.Equal(t, 18.2, lines[0].Values["vix"])
}

func TestParseLinesIgnoresNonNumericFields(t *testing.T) {
	data := []byte(`{"week":"2026-01-05","vix":18.2,"note":"quiet week","flag":true}`)
	lines := history.ParseLines(data)
	require.Len(t, lines, 1)
	assert.Equal(t, map[string]float64{"vix": 18.2}, lines[0].Values)
}

func TestAggregateSortsByWeek(t *testing.T) {
	lines := []aggregates.Line{
		{Week: "2026-01-12", Values: map[string]float64{"vix": 19.0}},
		{Week: "2026-01-05", Values: map[string]float64{"vix": 18.2, "hy_oas": 320}},
	}
	series := history.Aggregate(lines)
	require.Len(t, series["vix"], 2)
	assert.Equal(t, aggregates.Point{Week: "2026-01-05", Value: 18.2}, series["vix"][0])
	assert.Equal(t, aggregates.Point{Week: "2026-01-12", Value: 19.0}, series["vix"][1])
	require.Len(t, series["hy_oas"], 1)
}

func TestAggregateStableOnDuplicateWeeks(t *testing.T) {
	lines := []aggregates.Line{
		{Week: "2026-01-05", Values: map[string]float64{"vix": 1}},
		{Week: "2026-01-05", Values: map[string]float64{"vix": 2}},
		{Week: "2026-01-01", Values: map[string]float64{"vix": 3}},
	}
	series := history.Aggregate(lines)
	require.Len(t, series["vix"], 3)
	assert.Equal(t, 3.0, series["vix"][0].Value)
	// duplicate labels keep their original encounter order
	assert.Equal(t, 1.0, series["vix"][1].Value)
	assert.Equal(t, 2.0, series["vix"][2].Value)
}

func TestServiceApply(t *testing.T) {
	service := history.New(slog.Default())
	assert.Empty(t, service.Series("vix"))

	service.Apply([]byte(`{"week":"2026-01-05","vix":18.2}
{"week":"2026-01-12","vix":19.0,"credit_stress":40.0}`))

	require.Len(t, service.Series("vix"), 2)
	assert.Len(t, service.Series("credit_stress"), 1)
	assert.Empty(t, service.Series("unknown"))
	assert.Len(t, service.All(), 2)
}
