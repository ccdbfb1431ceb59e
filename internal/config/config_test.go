package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 100_000, cfg.Analysis.MaxRows)
	assert.False(t, cfg.Narrative.Enabled)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "port out of range",
			mutate: func(c *Config) { c.Server.Port = 70000 },
		},
		{
			name:   "unknown log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
		},
		{
			name:   "zero max rows",
			mutate: func(c *Config) { c.Analysis.MaxRows = 0 },
		},
		{
			name:   "empty data dir",
			mutate: func(c *Config) { c.Storage.DataDir = "" },
		},
		{
			name: "narrative enabled without endpoint",
			mutate: func(c *Config) {
				c.Narrative.Enabled = true
				c.Narrative.Endpoint = ""
			},
		},
		{
			name: "narrative endpoint not a url",
			mutate: func(c *Config) {
				c.Narrative.Enabled = true
				c.Narrative.Endpoint = "not a url"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadAppliesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("server:\n  port: 9090\nanalysis:\n  max_rows: 500\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Analysis.MaxRows)
	// Values absent from the file keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("server:\n  port: 9090\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))
	chdir(t, dir)
	t.Setenv("GRIDSIGHT_SERVER_PORT", "7000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GRIDSIGHT_LOGGING_LEVEL", "shouting")

	_, err := Load()

	assert.Error(t, err)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Storage.DataDir = filepath.Join(dir, "data")
	cfg.Storage.ExportsDir = filepath.Join(dir, "data", "exports")

	require.NoError(t, cfg.EnsureDirectories())

	info, err := os.Stat(cfg.Storage.ExportsDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExportPath(t *testing.T) {
	cfg := Default()
	cfg.Storage.ExportsDir = "/var/lib/gridsight/exports"

	assert.Equal(t, "/var/lib/gridsight/exports/result.json", cfg.ExportPath("result.json"))
	assert.Equal(t, "/tmp/out.csv", cfg.ExportPath("/tmp/out.csv"))
}
