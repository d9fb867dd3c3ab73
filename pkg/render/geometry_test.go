package render_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/dialboard/server/pkg/gauge/aggregates"
	histaggregates "github.com/dialboard/server/pkg/history/aggregates"
	"github.com/dialboard/server/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedleAngle(t *testing.T) {
	cases := []struct {
		pct      float64
		expected float64
	}{
		{pct: 0, expected: -120},
		{pct: 50, expected: 0},
		{pct: 100, expected: 120},
		{pct: 72, expected: 52.8},
		{pct: -40, expected: -120},
		{pct: 400, expected: 120},
	}
	for _, c := range cases {
		assert.InDelta(t, c.expected, render.NeedleAngle(c.pct), 0.001, "pct %f", c.pct)
	}
}

func TestNeedleAngleAlwaysInRange(t *testing.T) {
	for _, pct := range []float64{math.Inf(-1), -1e12, 0, 99.999, 1e12, math.Inf(1), math.NaN()} {
		angle := render.NeedleAngle(pct)
		assert.GreaterOrEqual(t, angle, -120.0)
		assert.LessOrEqual(t, angle, 120.0)
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		elapsed  time.Duration
		expected string
	}{
		{elapsed: 0, expected: "Just now"},
		{elapsed: 10 * time.Second, expected: "Just now"},
		{elapsed: 90 * time.Second, expected: "1m ago"},
		{elapsed: 59 * time.Minute, expected: "59m ago"},
		{elapsed: 7500 * time.Second, expected: "2h 5m ago"},
		{elapsed: 100000 * time.Second, expected: "1d 3h ago"},
		// future timestamps clamp to zero elapsed
		{elapsed: -time.Hour, expected: "Just now"},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, render.TimeAgo(now.Add(-c.elapsed), now), "elapsed %s", c.elapsed)
	}
}

func TestFreshnessPriority(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	updatedAt := now.Add(-2 * time.Minute)
	asOf := now.Add(-3 * time.Hour)

	g := aggregates.Gauge{UpdatedAt: &updatedAt, UpdatedText: "a while ago"}
	assert.Equal(t, "2m ago", render.Freshness(&g, &asOf, now))

	g = aggregates.Gauge{UpdatedText: "a while ago"}
	assert.Equal(t, "3h 0m ago", render.Freshness(&g, &asOf, now))

	g = aggregates.Gauge{UpdatedText: "a while ago"}
	assert.Equal(t, "a while ago", render.Freshness(&g, nil, now))

	g = aggregates.Gauge{}
	assert.Equal(t, "—", render.Freshness(&g, nil, now))
}

func TestSparklinePoints(t *testing.T) {
	series := histaggregates.Series{
		{Week: "2026-01-05", Value: 10},
		{Week: "2026-01-12", Value: 20},
		{Week: "2026-01-19", Value: 15},
	}
	points, ok := render.SparklinePoints(series)
	require.True(t, ok)
	parts := strings.Split(points, " ")
	assert.Len(t, parts, 3)
	// lowest value sits at the bottom of the viewport, highest at the top
	assert.Equal(t, "2.0,34.0", parts[0])
	assert.Equal(t, "60.0,2.0", parts[1])
}

func TestSparklineTooShort(t *testing.T) {
	_, ok := render.SparklinePoints(nil)
	assert.False(t, ok)

	_, ok = render.SparklinePoints(histaggregates.Series{{Week: "2026-01-05", Value: 10}})
	assert.False(t, ok)
}

func TestSparklineFlatSeries(t *testing.T) {
	series := histaggregates.Series{
		{Week: "2026-01-05", Value: 7},
		{Week: "2026-01-12", Value: 7},
	}
	points, ok := render.SparklinePoints(series)
	require.True(t, ok)
	// a flat series draws at mid height instead of dividing by zero
	assert.Equal(t, "2.0,18.0", strings.Split(points, " ")[0])
	assert.Equal(t, "118.0,18.0", strings.Split(points, " ")[1])
}

func TestSparklineCapsAtSixtyPoints(t *testing.T) {
	series := histaggregates.Series{}
	for i := 0; i < 100; i++ {
		series = append(series, histaggregates.Point{Week: "2026-01-05", Value: float64(i)})
	}
	points, ok := render.SparklinePoints(series)
	require.True(t, ok)
	assert.Len(t, strings.Split(points, " "), 60)
}
