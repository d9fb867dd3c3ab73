package render

import (
	"time"

	"github.com/dialboard/server/pkg/client"
	"github.com/dialboard/server/pkg/gauge/aggregates"
	histaggregates "github.com/dialboard/server/pkg/history/aggregates"
)

// ToGauge converts a canonical gauge into its API payload form.
func ToGauge(g aggregates.Gauge) client.Gauge {
	return client.Gauge{
		Key:         g.Key,
		Title:       g.Title,
		Status:      string(g.Status),
		ValueText:   g.ValueText,
		Pct:         g.Pct,
		MinLabel:    g.MinLabel,
		MidLabel:    g.MidLabel,
		MaxLabel:    g.MaxLabel,
		Tooltip:     g.Tooltip,
		UpdatedAt:   g.UpdatedAt,
		UpdatedText: g.UpdatedText,
	}
}

// BuildGaugeView computes the drawable form of one gauge.
func BuildGaugeView(g aggregates.Gauge, series histaggregates.Series, asOf *time.Time, now time.Time) client.GaugeView {
	view := client.GaugeView{
		Gauge:     ToGauge(g),
		Angle:     NeedleAngle(g.Pct),
		Freshness: Freshness(&g, asOf, now),
	}
	view.Sparkline, view.HasSparkline = SparklinePoints(series)
	return view
}

// BuildDashboard assembles the full view model served to dashboard
// clients.
func BuildDashboard(snapshot *aggregates.Snapshot, series map[string]histaggregates.Series, now time.Time) client.DashboardOutput {
	views := make([]client.GaugeView, 0, len(snapshot.Gauges))
	for _, g := range snapshot.Gauges {
		views = append(views, BuildGaugeView(g, series[g.Key], snapshot.AsOf, now))
	}
	return client.DashboardOutput{
		AsOf:        snapshot.AsOf,
		GeneratedAt: now,
		Gauges:      views,
	}
}
