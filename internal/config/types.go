// Package config provides layered configuration for the memstore binary.
//
// Values are resolved from defaults, an optional YAML file, MEMSTORE_*
// environment variables and explicitly set command-line flags, in that order
// of increasing priority.
package config

import (
	"time"

	"github.com/leengari/memstore/internal/query/indexing"
)

// Config holds all runtime options.
type Config struct {
	SnapshotPath string        `koanf:"snapshot_path"`
	LoadOnStart  bool          `koanf:"load_on_start"`
	SaveOnExit   bool          `koanf:"save_on_exit"`
	HTTP         HTTPConfig    `koanf:"http"`
	Log          LogConfig     `koanf:"log"`
	Indexes      indexing.Spec `koanf:"indexes"`
}

// HTTPConfig holds options for the HTTP API server.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level  string `koanf:"level"`
	SeqURL string `koanf:"seq_url"`
}

// Default configuration values
const (
	DefaultConfigFile      = "memstore.yaml"
	DefaultSnapshotPath    = "memstore.json"
	DefaultHTTPAddr        = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	EnvPrefix              = "MEMSTORE_"
)
