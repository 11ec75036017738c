package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "reference/fields", cfg.FieldSeedsDir)
	assert.Equal(t, "reference/enums", cfg.EnumsDir)
	assert.Equal(t, "info", cfg.Logger().Level)
}

func TestLoad_Layering(t *testing.T) {
	jsonPath := writeFile(t, "config.json", `{"port":"9000","dbUrl":"postgres://json/db","logLevel":"warn","enumsDir":"from-json"}`)
	dotenv := writeFile(t, ".env", "FUNGARIUM_LOG_LEVEL=debug\nFUNGARIUM_ENUMS_DIR=from-dotenv\n")
	t.Setenv("FUNGARIUM_ENUMS_DIR", "from-env")
	t.Setenv("FUNGARIUM_AUTO_MIGRATE", "true")
	t.Setenv("FUNGARIUM_DB_MAX_OPEN_CONNS", "20")

	cfg, err := Load([]string{"-config", jsonPath, "-env-file", dotenv, "-port", ":7000"})
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port, "flag wins")
	assert.Equal(t, DriverPostgres, cfg.StoreDriver, "DB URL implies postgres")
	assert.Equal(t, "postgres://json/db", cfg.DBURL)
	assert.Equal(t, "debug", cfg.LogLevel, ".env overrides JSON")
	assert.Equal(t, "from-env", cfg.EnumsDir, "process env overrides .env")
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 20, cfg.DBMaxOpenConns)
	assert.Zero(t, cfg.DBMaxIdleConns)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("FUNGARIUM_STORE_DRIVER", "mongo")
	t.Setenv("FUNGARIUM_MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load([]string{"-store", "sqlite", "-sqlite", "/tmp/f.db", "-auto-migrate", "false"})
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/f.db", cfg.SQLitePath)
	assert.False(t, cfg.AutoMigrate)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load([]string{"-config", filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)

	_, err = Load([]string{"-config", writeFile(t, "bad.json", "{")})
	assert.Error(t, err)

	_, err = Load([]string{"-store", "cassandra"})
	assert.ErrorContains(t, err, "unknown store driver")

	_, err = Load([]string{"-store", "postgres"})
	assert.ErrorContains(t, err, "DB URL")

	_, err = Load([]string{"-auto-migrate", "maybe"})
	assert.Error(t, err)

	_, err = Load([]string{"-no-such-flag"})
	assert.Error(t, err)

	t.Setenv("FUNGARIUM_DB_MAX_IDLE_CONNS", "-1")
	_, err = Load(nil)
	assert.ErrorContains(t, err, "pool settings")
}

func TestLogger(t *testing.T) {
	c := def()
	c.LogFormat = "json"
	c.LogFile = "app.log"
	c.LogMaxSizeMB = 0
	lc := c.Logger()
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "app.log", lc.File)
	assert.Equal(t, 50, lc.MaxSizeMB)
}
