package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, v, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.False(t, cfg.Redis.CacheEnabled())
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DOCVAULT_SERVER_PORT", "9090")
	t.Setenv("DOCVAULT_DB_DRIVER", "mysql")
	t.Setenv("DOCVAULT_REDIS_ADDR", "localhost:6379")

	cfg, _, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.True(t, cfg.Redis.CacheEnabled())
}

func TestLoad_ConfigFileInDirectory(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	content := []byte("server:\n  port: \"7000\"\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, v, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), v.ConfigFileUsed())
}

func TestValidate(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Port: "8080"}, DB: DBConfig{Driver: "sqlite"}}
	assert.Error(t, cfg.Validate())

	cfg.DB.DSN = "file::memory:"
	assert.NoError(t, cfg.Validate())
}

func TestServerConfig_Addr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:80", ServerConfig{Port: "127.0.0.1:80"}.Addr())
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
