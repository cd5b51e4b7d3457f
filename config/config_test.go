package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaultsWithEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, ":9000", cfg.Server.Addr())
	assert.Equal(t, "kpix", cfg.Mongo.Database)
	assert.Equal(t, 5, cfg.Reporting.TopRisksDefault)
	assert.Equal(t, 50, cfg.Reporting.TopRisksMax)
	assert.Equal(t, 3, cfg.Reporting.TrendLimit)
	assert.Equal(t, int64(10<<20), cfg.Imports.MaxFileSize)
	assert.Equal(t, 60*time.Second, cfg.Redis.ReportTTL)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := chdirTemp(t)
	yaml := []byte("auth:\n  jwt_secret: from-file\nmongo:\n  database: kpix_test\nlogger:\n  level: debug\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, "kpix_test", cfg.Mongo.Database)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AUTH_JWT_SECRET=dotenv-secret\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("AUTH_JWT_SECRET") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dotenv-secret", cfg.Auth.JWTSecret)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Mongo:     MongoConfig{URI: "mongodb://localhost"},
		Auth:      AuthConfig{JWTSecret: "s"},
		Reporting: ReportingConfig{TopRisksDefault: 5, TopRisksMax: 50},
	}
	assert.NoError(t, cfg.Validate())

	noSecret := cfg
	noSecret.Auth.JWTSecret = ""
	assert.Error(t, noSecret.Validate())

	noURI := cfg
	noURI.Mongo.URI = ""
	assert.Error(t, noURI.Validate())

	badDefault := cfg
	badDefault.Reporting.TopRisksDefault = 60
	assert.Error(t, badDefault.Validate())
}
