package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/memstore/internal/query/indexing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("snapshot", "", "")
	flags.String("addr", "", "")
	flags.String("log-level", "", "")
	flags.Bool("save-on-exit", false, "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultSnapshotPath, cfg.SnapshotPath)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTP.Addr)
	assert.Equal(t, DefaultShutdownTimeout, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.False(t, cfg.LoadOnStart)
	assert.Empty(t, cfg.Indexes)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `snapshot_path: /var/lib/memstore/store.json
load_on_start: true
http:
  addr: 127.0.0.1:9000
  shutdown_timeout: 3s
log:
  level: debug
indexes:
  app:
    users: [name, age]
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/memstore/store.json", cfg.SnapshotPath)
	assert.True(t, cfg.LoadOnStart)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, indexing.Spec{"app": {"users": {"name", "age"}}}, cfg.Indexes)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "http:\n  addr: from-file:1\n")
	t.Setenv("MEMSTORE_HTTP__ADDR", "from-env:2")
	t.Setenv("MEMSTORE_LOG__LEVEL", "warn")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "from-env:2", cfg.HTTP.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("MEMSTORE_SNAPSHOT_PATH", "env.json")
	t.Setenv("MEMSTORE_HTTP__ADDR", "from-env:2")

	flags := testFlags(t, "--snapshot", "flag.json", "--save-on-exit")
	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "flag.json", cfg.SnapshotPath)
	assert.True(t, cfg.SaveOnExit)
	// --addr was not set, so the env value stands
	assert.Equal(t, "from-env:2", cfg.HTTP.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	t.Run("save without path", func(t *testing.T) {
		cfg := &Config{SaveOnExit: true}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "snapshot_path")
	})

	t.Run("empty index list", func(t *testing.T) {
		cfg := &Config{Indexes: indexing.Spec{"app": {"users": nil}}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "indexes.app.users")
	})

	t.Run("negative timeout", func(t *testing.T) {
		cfg := &Config{HTTP: HTTPConfig{ShutdownTimeout: -time.Second}}
		assert.Error(t, cfg.Validate())
	})
}
