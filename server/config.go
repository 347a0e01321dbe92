package server

import "github.com/prometheus/client_golang/prometheus"

// Config is the web server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// Gatherer backs the /metrics endpoint. Defaults to the global registry.
	Gatherer prometheus.Gatherer
}
