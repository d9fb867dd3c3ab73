package http

// Configuration the HTTP server configuration
type Configuration struct {
	Host string `validate:"required"`
	Port uint32 `validate:"required"`
}
