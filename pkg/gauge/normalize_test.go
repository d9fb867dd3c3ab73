package gauge_test

import (
	"testing"

	"github.com/dialboard/server/pkg/gauge"
	"github.com/dialboard/server/pkg/gauge/aggregates"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeDirectPath(t *testing.T) {
	record, ok := gauge.Normalize(aggregates.RawRecord{
		ID:        "hy_oas",
		Title:     "HIGH YIELD SPREAD (OAS)",
		Status:    "WARN",
		Pct:       72.0,
		ValueText: "142 bp",
	})
	assert.True(t, ok)
	assert.Equal(t, "hy_oas", record.Key)
	assert.Equal(t, aggregates.StatusWarn, record.Status)
	assert.Equal(t, 72.0, record.Pct)
	assert.Equal(t, "142 bp", record.ValueText)
}

func TestNormalizeDerivedPath(t *testing.T) {
	cases := []struct {
		name     string
		record   aggregates.RawRecord
		expected float64
		text     string
	}{
		{
			name:     "mid range",
			record:   aggregates.RawRecord{Key: "vix", Value: 25.0, Min: 0.0, Max: 50.0},
			expected: 50,
			text:     "25",
		},
		{
			name:     "with unit",
			record:   aggregates.RawRecord{Key: "dd", Value: -6.2, Min: -20.0, Max: 0.0, Unit: "%"},
			expected: 69,
			text:     "-6.2%",
		},
		{
			name:     "degenerate range falls back to midpoint",
			record:   aggregates.RawRecord{Key: "x", Value: 0.0, Min: 10.0, Max: 10.0},
			expected: 50,
			text:     "0",
		},
		{
			name:     "missing value falls back to midpoint and placeholder",
			record:   aggregates.RawRecord{Key: "x"},
			expected: 50,
			text:     "—",
		},
		{
			name:     "value above range clamps to 100",
			record:   aggregates.RawRecord{Key: "x", Value: 500.0, Min: 0.0, Max: 100.0},
			expected: 100,
			text:     "500",
		},
		{
			name:     "value below range clamps to 0",
			record:   aggregates.RawRecord{Key: "x", Value: -500.0, Min: 0.0, Max: 100.0},
			expected: 0,
			text:     "-500",
		},
		{
			name:     "defaults to 0-100 bounds",
			record:   aggregates.RawRecord{Key: "x", Value: 30.0},
			expected: 30,
			text:     "30",
		},
		{
			name:     "malformed numeric treated as absent",
			record:   aggregates.RawRecord{Key: "x", Value: "not a number"},
			expected: 50,
			text:     "—",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			record, ok := gauge.Normalize(c.record)
			assert.True(t, ok)
			assert.InDelta(t, c.expected, record.Pct, 0.001)
			assert.Equal(t, c.text, record.ValueText)
		})
	}
}

func TestNormalizePctAlwaysInRange(t *testing.T) {
	for _, pct := range []float64{-1000, -0.1, 0, 50, 100, 100.1, 1e9} {
		record, ok := gauge.Normalize(aggregates.RawRecord{Key: "x", Pct: pct, ValueText: "v"})
		assert.True(t, ok)
		assert.GreaterOrEqual(t, record.Pct, 0.0)
		assert.LessOrEqual(t, record.Pct, 100.0)
	}
}

func TestNormalizeIdentity(t *testing.T) {
	_, ok := gauge.Normalize(aggregates.RawRecord{Title: "no identity"})
	assert.False(t, ok)

	_, ok = gauge.Normalize(aggregates.RawRecord{Key: "   ", ID: " "})
	assert.False(t, ok)

	record, ok := gauge.Normalize(aggregates.RawRecord{ID: "fallback"})
	assert.True(t, ok)
	assert.Equal(t, "fallback", record.Key)

	record, ok = gauge.Normalize(aggregates.RawRecord{Key: "primary", ID: "fallback"})
	assert.True(t, ok)
	assert.Equal(t, "primary", record.Key)
}

func TestNormalizeStatusDefaultsToDelayed(t *testing.T) {
	cases := map[string]aggregates.Status{
		"GOOD":    aggregates.StatusGood,
		"WARN":    aggregates.StatusWarn,
		"DELAYED": aggregates.StatusDelayed,
		"":        aggregates.StatusDelayed,
		"BROKEN":  aggregates.StatusDelayed,
		"good":    aggregates.StatusDelayed,
	}
	for input, expected := range cases {
		record, ok := gauge.Normalize(aggregates.RawRecord{Key: "x", Status: input})
		assert.True(t, ok)
		assert.Equal(t, expected, record.Status, "status %q", input)
	}
}

func TestNormalizeLabels(t *testing.T) {
	record, ok := gauge.Normalize(aggregates.RawRecord{Key: "x", Min: 10.0, Max: 40.0})
	assert.True(t, ok)
	assert.Equal(t, "10", record.MinLabel)
	assert.Equal(t, "", record.MidLabel)
	assert.Equal(t, "40", record.MaxLabel)

	record, ok = gauge.Normalize(aggregates.RawRecord{Key: "x", MinLabel: "Low", MidLabel: "Mid", MaxLabel: "High"})
	assert.True(t, ok)
	assert.Equal(t, "Low", record.MinLabel)
	assert.Equal(t, "Mid", record.MidLabel)
	assert.Equal(t, "High", record.MaxLabel)
}

func TestNormalizeUpdatedAt(t *testing.T) {
	record, ok := gauge.Normalize(aggregates.RawRecord{Key: "x", UpdatedAt: "2026-08-24T10:00:00Z"})
	assert.True(t, ok)
	if assert.NotNil(t, record.UpdatedAt) {
		assert.Equal(t, 2026, record.UpdatedAt.Year())
	}

	record, ok = gauge.Normalize(aggregates.RawRecord{Key: "x", UpdatedAt: "yesterday-ish"})
	assert.True(t, ok)
	assert.Nil(t, record.UpdatedAt)
}

func TestNormalizeBatch(t *testing.T) {
	raws := []aggregates.RawRecord{
		{Key: "a", Value: 1.0},
		{Title: "rejected"},
		{Key: "b", Value: 2.0},
		{Key: "a", Value: 3.0},
	}
	gauges := gauge.NormalizeBatch(raws)
	assert.Len(t, gauges, 2)
	assert.Equal(t, "a", gauges[0].Key)
	assert.Equal(t, "b", gauges[1].Key)
}
