package cliconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UfukSeker41/api-controller/pkg/logging"
)

// isolate runs the test in an empty directory with no global config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	for _, k := range keys {
		t.Setenv(EnvName(k), "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	want := NewDefault()
	assert.Equal(t, want.LogLevel, cfg.LogLevel)
	assert.Equal(t, want.Export, cfg.Export)
	assert.Empty(t, cfg.ConfigFile)
	assert.Equal(t, want.Sources, cfg.Sources)
}

func TestLoad_LocalFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".apictl.yaml"), "log_level: debug\nexport:\n  format: postman\n  include_tests: true\n")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "postman", cfg.Export.Format)
	assert.True(t, cfg.Export.IncludeTests)
	assert.True(t, cfg.Export.Pretty)
	assert.Equal(t, filepath.Join(dir, ".apictl.yaml"), cfg.ConfigFile)
	assert.Equal(t, SourceFile, cfg.Sources["export.format"])
	assert.Equal(t, SourceDefault, cfg.Sources["export.pretty"])
}

func TestLoad_GlobalFile(t *testing.T) {
	dir := isolate(t)
	global := filepath.Join(dir, "xdg", "apictl", "config.yaml")
	writeFile(t, global, "log_format: json\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, global, cfg.ConfigFile)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".apictl.yaml"), "export:\n  format: postman\n  pretty: true\n")
	t.Setenv("APICTL_EXPORT_FORMAT", "openapi")
	t.Setenv("APICTL_EXPORT_PRETTY", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openapi", cfg.Export.Format)
	assert.False(t, cfg.Export.Pretty)
	assert.Equal(t, SourceEnv, cfg.Sources["export.format"])
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "log_level: error\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "broken.yaml")
	writeFile(t, path, "log_level: [debug\n")

	_, err := Load(path)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "invalid syntax", ce.Message)
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("APICTL_EXPORT_FORMAT", "xml")

	_, err := Load("")
	assert.ErrorContains(t, err, "export.format")
}

func TestCLIConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CLIConfig)
		wantErr string
	}{
		{"defaults", func(*CLIConfig) {}, ""},
		{"bad level", func(c *CLIConfig) { c.LogLevel = "loud" }, "log_level"},
		{"bad log format", func(c *CLIConfig) { c.LogFormat = "xml" }, "log_format"},
		{"bad export format", func(c *CLIConfig) { c.Export.Format = "har" }, "export.format"},
		{"empty export format", func(c *CLIConfig) { c.Export.Format = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCLIConfig_LoggingConfig(t *testing.T) {
	cfg := NewDefault()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"

	lc := cfg.LoggingConfig()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, logging.FormatJSON, lc.Format)
	assert.True(t, lc.AddSource)

	cfg.LogLevel = "info"
	assert.False(t, cfg.LoggingConfig().AddSource)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "APICTL_LOG_LEVEL", EnvName("log_level"))
	assert.Equal(t, "APICTL_EXPORT_INCLUDE_HISTORY", EnvName("export.include_history"))
}
