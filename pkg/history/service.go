package history

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dialboard/server/pkg/history/aggregates"
)

// Service owns the per-key history series. Like the gauge snapshot, the
// whole mapping is swapped on each successful poll.
type Service struct {
	logger *slog.Logger
	state  atomic.Pointer[map[string]aggregates.Series]
}

func New(logger *slog.Logger) *Service {
	service := &Service{
		logger: logger,
	}
	empty := map[string]aggregates.Series{}
	service.state.Store(&empty)
	return service
}

// Apply parses and aggregates a history document and installs it as the
// current state.
func (s *Service) Apply(data []byte) {
	lines := ParseLines(data)
	series := Aggregate(lines)
	s.state.Store(&series)
	s.logger.Debug(fmt.Sprintf("applied history with %d lines and %d series", len(lines), len(series)))
}

func (s *Service) Series(key string) aggregates.Series {
	return (*s.state.Load())[key]
}

func (s *Service) All() map[string]aggregates.Series {
	return *s.state.Load()
}
