// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields exported with koanf tags so both file and env layers bind.
// - Provide New(ctx) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration for the aggregator server.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// ListenAddr is the TCP address the server accepts client connections on.
	ListenAddr string `koanf:"listen_addr"`

	// AdminAddr is the HTTP address serving /healthz, /stats, /ranking.
	AdminAddr string `koanf:"admin_addr"`

	// ReaderPoolSize is p_r, the number of concurrently-served reader goroutines.
	ReaderPoolSize int `koanf:"reader_pool_size"`

	// WriterPoolSize is p_w, the number of aggregation workers.
	WriterPoolSize int `koanf:"writer_pool_size"`

	// DeltaTMillis is the ranking cache validity window, in milliseconds.
	DeltaTMillis int `koanf:"delta_t_millis"`

	// QueueCapacity bounds the ingestion queue.
	QueueCapacity int `koanf:"queue_capacity"`

	// PushTimeoutMillis bounds how long a record push waits for queue room.
	PushTimeoutMillis int `koanf:"push_timeout_millis"`

	// PopPollMillis is loaded with the rest of the configuration but is not
	// passed to the aggregation workers, which wait a fixed 100ms per
	// try_pop.
	PopPollMillis int `koanf:"pop_poll_millis"`

	// LogFile is the append-mode server log path.
	LogFile string `koanf:"log_file"`

	// FinalCompetitorsFile and FinalCountriesFile are the finalizer outputs.
	FinalCompetitorsFile string `koanf:"final_competitors_file"`
	FinalCountriesFile   string `koanf:"final_countries_file"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		ListenAddr:            ":12345",
		AdminAddr:             ":9090",
		ReaderPoolSize:        runtime.NumCPU() * 4,
		WriterPoolSize:        runtime.NumCPU() * 2,
		DeltaTMillis:          1000,
		QueueCapacity:         10000,
		PushTimeoutMillis:     100,
		PopPollMillis:         100,
		LogFile:               "server_log.txt",
		FinalCompetitorsFile:  "final_competitors.txt",
		FinalCountriesFile:    "final_countries.txt",
	}
}
