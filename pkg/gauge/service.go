package gauge

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dialboard/server/pkg/gauge/aggregates"
	er "github.com/mcorbin/corbierror"
)

// Service owns the current gauge snapshot. The snapshot is replaced as a
// whole on each successful ingestion cycle; readers always see a
// consistent set.
type Service struct {
	logger *slog.Logger
	state  atomic.Pointer[aggregates.Snapshot]
}

func New(logger *slog.Logger) *Service {
	service := &Service{
		logger: logger,
	}
	service.state.Store(&aggregates.Snapshot{})
	return service
}

// Apply normalizes a snapshot batch and installs it as the current
// state. An empty batch, or a batch whose every record is rejected,
// leaves the previous state untouched and returns false.
func (s *Service) Apply(asOf *time.Time, raws []aggregates.RawRecord) bool {
	if len(raws) == 0 {
		s.logger.Warn("snapshot feed returned no records, keeping previous state")
		return false
	}
	gauges := NormalizeBatch(raws)
	if len(gauges) == 0 {
		s.logger.Warn(fmt.Sprintf("all %d snapshot records were rejected, keeping previous state", len(raws)))
		return false
	}
	if len(gauges) < len(raws) {
		s.logger.Warn(fmt.Sprintf("dropped %d invalid snapshot records", len(raws)-len(gauges)))
	}
	s.state.Store(&aggregates.Snapshot{
		AsOf:       asOf,
		Gauges:     gauges,
		ReceivedAt: time.Now().UTC(),
	})
	s.logger.Debug(fmt.Sprintf("applied snapshot with %d gauges", len(gauges)))
	return true
}

// Snapshot returns the current state. The returned value is shared and
// must not be mutated.
func (s *Service) Snapshot() *aggregates.Snapshot {
	return s.state.Load()
}

func (s *Service) ListGauges() []aggregates.Gauge {
	return s.state.Load().Gauges
}

func (s *Service) GetGauge(key string) (*aggregates.Gauge, error) {
	gauge := s.state.Load().Get(key)
	if gauge == nil {
		return nil, er.New(fmt.Sprintf("gauge %s not found", key), er.NotFound, true)
	}
	return gauge, nil
}
