package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dialboard/server/pkg/gauge"
	"github.com/dialboard/server/pkg/history"
	"github.com/prometheus/client_golang/prometheus"
)

// Poller runs the two periodic feed polls on independent tickers.
// Failures are logged and otherwise ignored: the previous state stays
// authoritative and the next scheduled tick is the retry.
type Poller struct {
	logger           *slog.Logger
	client           *Client
	gauges           *gauge.Service
	history          *history.Service
	snapshotInterval time.Duration
	historyInterval  time.Duration
	onApply          func()
	stop             chan struct{}
	wg               sync.WaitGroup
	polls            *prometheus.CounterVec
	snapshotGauges   prometheus.Gauge
}

// NewPoller builds a poller. onApply may be nil; when set it is invoked
// after every snapshot that actually replaced the state.
func NewPoller(logger *slog.Logger, client *Client, gauges *gauge.Service, historyService *history.Service, config Configuration, registry *prometheus.Registry, onApply func()) (*Poller, error) {
	snapshotInterval, err := time.ParseDuration(config.SnapshotInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot poll interval: %w", err)
	}
	historyInterval := time.Duration(0)
	if config.HistoryURL != "" {
		historyInterval, err = time.ParseDuration(config.HistoryInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid history poll interval: %w", err)
		}
	}
	polls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_polls_total",
			Help: "Count feed poll cycles by outcome.",
		},
		[]string{"feed", "status"})
	if err := registry.Register(polls); err != nil {
		return nil, err
	}
	snapshotGauges := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_snapshot_gauges",
			Help: "Number of gauges in the current snapshot.",
		})
	if err := registry.Register(snapshotGauges); err != nil {
		return nil, err
	}
	return &Poller{
		logger:           logger,
		client:           client,
		gauges:           gauges,
		history:          historyService,
		snapshotInterval: snapshotInterval,
		historyInterval:  historyInterval,
		onApply:          onApply,
		stop:             make(chan struct{}),
		polls:            polls,
		snapshotGauges:   snapshotGauges,
	}, nil
}

func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.loop(ctx, "snapshot", p.snapshotInterval, p.pollSnapshot)
	if p.historyInterval > 0 {
		p.wg.Add(1)
		go p.loop(ctx, "history", p.historyInterval, p.pollHistory)
	}
}

func (p *Poller) Stop() {
	close(p.stop)
	p.wg.Wait()
	p.logger.Info("feed pollers stopped")
}

func (p *Poller) loop(ctx context.Context, name string, interval time.Duration, poll func(ctx context.Context)) {
	defer p.wg.Done()
	p.logger.Info(fmt.Sprintf("starting %s feed poller with interval %s", name, interval))
	poll(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			poll(ctx)
		}
	}
}

// cancelled reports whether the poller was torn down while a fetch was
// in flight. A superseded poll must discard its result instead of
// overwriting newer state.
func (p *Poller) cancelled(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	select {
	case <-p.stop:
		return true
	default:
		return false
	}
}

func (p *Poller) pollSnapshot(ctx context.Context) {
	document, err := p.client.FetchSnapshot(ctx)
	if err != nil {
		p.logger.Warn(fmt.Sprintf("snapshot poll failed: %s", err.Error()))
		p.polls.With(prometheus.Labels{"feed": "snapshot", "status": "error"}).Inc()
		return
	}
	if p.cancelled(ctx) {
		return
	}
	if !p.gauges.Apply(document.AsOfTime(), document.Cards) {
		p.polls.With(prometheus.Labels{"feed": "snapshot", "status": "empty"}).Inc()
		return
	}
	p.polls.With(prometheus.Labels{"feed": "snapshot", "status": "success"}).Inc()
	p.snapshotGauges.Set(float64(len(p.gauges.ListGauges())))
	if p.onApply != nil {
		p.onApply()
	}
}

func (p *Poller) pollHistory(ctx context.Context) {
	body, err := p.client.FetchHistory(ctx)
	if err != nil {
		p.logger.Warn(fmt.Sprintf("history poll failed: %s", err.Error()))
		p.polls.With(prometheus.Labels{"feed": "history", "status": "error"}).Inc()
		return
	}
	if p.cancelled(ctx) {
		return
	}
	if body == nil {
		p.polls.With(prometheus.Labels{"feed": "history", "status": "missing"}).Inc()
		return
	}
	p.history.Apply(body)
	p.polls.With(prometheus.Labels{"feed": "history", "status": "success"}).Inc()
}
