package aggregates

import "time"

type Status string

const (
	StatusGood    Status = "GOOD"
	StatusWarn    Status = "WARN"
	StatusDelayed Status = "DELAYED"
)

// RawRecord is one untrusted card from the snapshot feed. Numeric fields
// are declared as any because sources sometimes send them as strings;
// malformed values are treated as absent during normalization.
type RawRecord struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Value       any    `json:"value"`
	Unit        string `json:"unit"`
	Min         any    `json:"min"`
	Max         any    `json:"max"`
	Pct         any    `json:"pct"`
	ValueText   string `json:"valueText"`
	MinLabel    string `json:"minLabel"`
	MidLabel    string `json:"midLabel"`
	MaxLabel    string `json:"maxLabel"`
	Tooltip     string `json:"tooltip"`
	UpdatedAt   string `json:"updatedAt"`
	UpdatedText string `json:"updatedText"`
}

type Gauge struct {
	Key         string
	Title       string
	Status      Status
	ValueText   string
	Pct         float64
	MinLabel    string
	MidLabel    string
	MaxLabel    string
	Tooltip     string
	UpdatedAt   *time.Time
	UpdatedText string
}

// Snapshot is the whole presentation state for one successful ingestion
// cycle. It is replaced wholesale, never mutated.
type Snapshot struct {
	AsOf       *time.Time
	Gauges     []Gauge
	ReceivedAt time.Time
}

func (s *Snapshot) Get(key string) *Gauge {
	for i := range s.Gauges {
		if s.Gauges[i].Key == key {
			return &s.Gauges[i]
		}
	}
	return nil
}
