// Package render maps canonical gauge records onto drawable primitives.
// Everything here is pure: no state, no clock other than the one passed
// in.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/dialboard/server/pkg/gauge"
	"github.com/dialboard/server/pkg/gauge/aggregates"
	histaggregates "github.com/dialboard/server/pkg/history/aggregates"
)

const (
	// needle sweep: pct 0 -> -120°, pct 100 -> +120°
	angleMin = -120.0
	angleMax = 120.0

	// sparkline viewport in pixels
	SparklineWidth  = 120.0
	SparklineHeight = 36.0
	sparklinePad    = 2.0

	// only the most recent points are plotted to keep the line readable
	sparklineMaxPoints = 60
)

const placeholder = "—"

// NeedleAngle maps a 0-100 position onto the gauge's 240 degree sweep.
// The output is always within [-120, 120] whatever the input.
func NeedleAngle(pct float64) float64 {
	return angleMin + (angleMax-angleMin)/100*gauge.Clamp(pct, 0, 100)
}

// TimeAgo renders an elapsed duration as a coarse relative string.
// Timestamps in the future clamp to zero elapsed seconds.
func TimeAgo(t time.Time, now time.Time) string {
	elapsed := now.Sub(t)
	if elapsed < 0 {
		elapsed = 0
	}
	seconds := int64(elapsed.Seconds())
	switch {
	case seconds < 15:
		return "Just now"
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh %dm ago", seconds/3600, (seconds%3600)/60)
	default:
		return fmt.Sprintf("%dd %dh ago", seconds/86400, (seconds%86400)/3600)
	}
}

// Freshness picks the text shown under a gauge: the record's own
// timestamp wins over the feed-level one, which wins over pre-formatted
// text from the source.
func Freshness(g *aggregates.Gauge, asOf *time.Time, now time.Time) string {
	if g.UpdatedAt != nil {
		return TimeAgo(*g.UpdatedAt, now)
	}
	if asOf != nil {
		return TimeAgo(*asOf, now)
	}
	if g.UpdatedText != "" {
		return g.UpdatedText
	}
	return placeholder
}

// SparklinePoints converts a series into an SVG polyline "x,y ..."
// string. A series with fewer than two points has nothing to draw and
// returns false; a flat series draws a horizontal line at mid height.
func SparklinePoints(series histaggregates.Series) (string, bool) {
	if len(series) < 2 {
		return "", false
	}
	if len(series) > sparklineMaxPoints {
		series = series[len(series)-sparklineMaxPoints:]
	}
	lo := series[0].Value
	hi := series[0].Value
	for _, point := range series[1:] {
		if point.Value < lo {
			lo = point.Value
		}
		if point.Value > hi {
			hi = point.Value
		}
	}
	plotWidth := SparklineWidth - 2*sparklinePad
	plotHeight := SparklineHeight - 2*sparklinePad
	step := plotWidth / float64(len(series)-1)

	points := make([]string, 0, len(series))
	for i, point := range series {
		x := sparklinePad + float64(i)*step
		y := sparklinePad + plotHeight/2
		if hi != lo {
			y = sparklinePad + (1-(point.Value-lo)/(hi-lo))*plotHeight
		}
		points = append(points, fmt.Sprintf("%.1f,%.1f", x, y))
	}
	return strings.Join(points, " "), true
}
