package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"microblog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL())
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxSize)
	assert.Contains(t, cfg.Upload.AllowedExtensions, ".webp")
}

func TestLoadConfig_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  env: production
database:
  driver: sqlite
  url: file:blog.db
jwt:
  secret: from-file
  ttl: 10
upload:
  allowed_extensions: ["PNG", ".jpg"]
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SERVER_PORT", "9100")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "file:blog.db", cfg.Database.DSN)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.TokenTTL())
	assert.Equal(t, []string{".png", ".jpg"}, cfg.Upload.AllowedExtensions)
}

func TestLoadConfig_DatabaseURLSelectsPostgres(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DATABASE_URL", "postgres://localhost/blog")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.DriverPostgres, cfg.Database.Driver)
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.Database.Driver = config.DriverMySQL
	assert.Error(t, cfg.Validate(), "relational driver requires a DSN")

	cfg = config.Default()
	cfg.Server.Env = "production"
	assert.Error(t, cfg.Validate(), "default secret is rejected outside development")

	cfg.JWT.Secret = "a-real-secret"
	assert.NoError(t, cfg.Validate())
}
