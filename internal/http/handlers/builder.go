package handlers

import (
	"github.com/dialboard/server/pkg/gauge/aggregates"
	histaggregates "github.com/dialboard/server/pkg/history/aggregates"
)

type GaugeService interface {
	Snapshot() *aggregates.Snapshot
	ListGauges() []aggregates.Gauge
	GetGauge(key string) (*aggregates.Gauge, error)
}

type HistoryService interface {
	Series(key string) histaggregates.Series
	All() map[string]histaggregates.Series
}

type Builder struct {
	gauges  GaugeService
	history HistoryService
	hub     *Hub
}

func NewBuilder(gauges GaugeService, history HistoryService, hub *Hub) *Builder {
	return &Builder{
		gauges:  gauges,
		history: history,
		hub:     hub,
	}
}
