package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(values map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", envFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, DefaultDriver, cfg.Database.Driver)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Server.PlaygroundEnabled())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "school.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
  playground: false
database:
  driver: sqlite3
  seed: true
logging:
  level: debug
`), 0o600))

	cfg, err := load(path, envFrom(map[string]string{
		"PORT":           "7070",
		"DATABASE_DEBUG": "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.False(t, cfg.Server.PlaygroundEnabled())
	assert.True(t, cfg.Database.Seed)
	assert.True(t, cfg.Database.Debug)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout, "defaults fill fields missing from the file")
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "school.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 6060\n"), 0o600))

	cfg, err := load("", envFrom(map[string]string{"CONFIG_FILE": path}))
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "absent.yaml"), envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := load("", envFrom(map[string]string{"PORT": "abc"}))
	require.Error(t, err)

	_, err = load("", envFrom(map[string]string{"DATABASE_DRIVER": "oracle"}))
	require.Error(t, err)

	_, err = load("", envFrom(map[string]string{"DATABASE_DRIVER": "postgres"}))
	require.Error(t, err, "postgres needs a dsn")

	cfg, err := load("", envFrom(map[string]string{
		"DATABASE_DRIVER": "postgres",
		"DATABASE_DSN":    "postgres://school@localhost/school?sslmode=disable",
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}
