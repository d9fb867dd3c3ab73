package feed

// Configuration for the two feed pollers. History is optional: an empty
// URL disables that poller entirely.
type Configuration struct {
	SnapshotURL      string `yaml:"snapshot-url" validate:"required"`
	SnapshotInterval string `yaml:"snapshot-interval" validate:"required"`
	HistoryURL       string `yaml:"history-url"`
	HistoryInterval  string `yaml:"history-interval"`
	Timeout          string `yaml:"timeout"`
}
