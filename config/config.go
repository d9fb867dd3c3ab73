package config

import (
	"github.com/dialboard/server/internal/feed"
	"github.com/dialboard/server/internal/http"
	"github.com/dialboard/server/pkg/indicator"
)

type Tracing struct {
	Enabled  bool
	Endpoint string
}

type Configuration struct {
	HTTP    http.Configuration
	Feeds   feed.Configuration
	Tracing Tracing
	Builder indicator.Configuration
}
