// Package client contains the payload types exposed by the dialboard
// HTTP API.
package client

import "time"

type Response struct {
	Messages []string `json:"messages"`
}

type Gauge struct {
	Key         string     `json:"key"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	ValueText   string     `json:"valueText"`
	Pct         float64    `json:"pct"`
	MinLabel    string     `json:"minLabel"`
	MidLabel    string     `json:"midLabel,omitempty"`
	MaxLabel    string     `json:"maxLabel"`
	Tooltip     string     `json:"tooltip,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	UpdatedText string     `json:"updatedText,omitempty"`
}

type ListGaugesOutput struct {
	AsOf   *time.Time `json:"asOf,omitempty"`
	Result []Gauge    `json:"result"`
}

type HistoryPoint struct {
	Week  string  `json:"week"`
	Value float64 `json:"value"`
}

type GetHistoryOutput struct {
	Key    string         `json:"key"`
	Result []HistoryPoint `json:"result"`
}

// GaugeView is one render-ready gauge: the canonical record plus the
// geometry computed from it.
type GaugeView struct {
	Gauge
	Angle        float64 `json:"angle"`
	Freshness    string  `json:"freshness"`
	Sparkline    string  `json:"sparkline,omitempty"`
	HasSparkline bool    `json:"hasSparkline"`
}

type DashboardOutput struct {
	AsOf        *time.Time  `json:"asOf,omitempty"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Gauges      []GaugeView `json:"gauges"`
}
