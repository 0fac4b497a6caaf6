package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// flagKeys maps CLI flag names onto config keys where the two differ
var flagKeys = map[string]string{
	"snapshot":         "snapshot_path",
	"addr":             "http.addr",
	"shutdown-timeout": "http.shutdown_timeout",
	"log-level":        "log.level",
	"seq-url":          "log.seq_url",
}

// findConfigFile returns the file to read: the explicit path, or
// memstore.yaml in the working directory when it exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// Load resolves the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"snapshot_path":         DefaultSnapshotPath,
		"load_on_start":         false,
		"save_on_exit":          false,
		"http.addr":             DefaultHTTPAddr,
		"http.shutdown_timeout": DefaultShutdownTimeout.String(),
		"log.level":             DefaultLogLevel,
		"log.seq_url":           "",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment: MEMSTORE_HTTP__ADDR -> http.addr
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only the ones set explicitly
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that cannot work together
func (c *Config) Validate() error {
	if c.HTTP.ShutdownTimeout < 0 {
		return fmt.Errorf("http.shutdown_timeout must not be negative")
	}
	if (c.LoadOnStart || c.SaveOnExit) && c.SnapshotPath == "" {
		return fmt.Errorf("load_on_start and save_on_exit need a snapshot_path")
	}
	for db, tables := range c.Indexes {
		for table, cols := range tables {
			if len(cols) == 0 {
				return fmt.Errorf("indexes.%s.%s lists no columns", db, table)
			}
		}
	}
	return nil
}
