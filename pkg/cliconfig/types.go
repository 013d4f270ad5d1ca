// Package cliconfig loads apictl settings from defaults, a config file and
// APICTL_* environment variables.
package cliconfig

import (
	"errors"
	"strings"

	"github.com/UfukSeker41/api-controller/pkg/interchange"
	"github.com/UfukSeker41/api-controller/pkg/logging"
)

// CLIConfig is the resolved apictl configuration.
// Precedence, highest first:
// 1. Command-line flags (applied by the commands)
// 2. Environment variables (APICTL_LOG_LEVEL, APICTL_EXPORT_FORMAT, ...)
// 3. Config file (--config, ./.apictl.yaml or $XDG_CONFIG_HOME/apictl/config.yaml)
// 4. Default values
type CLIConfig struct {
	LogLevel  string       `mapstructure:"log_level" yaml:"log_level" json:"logLevel"`
	LogFormat string       `mapstructure:"log_format" yaml:"log_format" json:"logFormat"`
	Export    ExportConfig `mapstructure:"export" yaml:"export" json:"export"`

	// ConfigFile is the file the values were read from, empty when none was found.
	ConfigFile string `mapstructure:"-" yaml:"-" json:"configFile,omitempty"`

	// Sources tracks where each key's value came from
	Sources map[string]string `mapstructure:"-" yaml:"-" json:"-"`
}

// ExportConfig holds defaults for export and convert.
type ExportConfig struct {
	// Format is the default target format when -f/--to is not given.
	Format         string `mapstructure:"format" yaml:"format" json:"format"`
	IncludeTests   bool   `mapstructure:"include_tests" yaml:"include_tests" json:"includeTests"`
	IncludeHistory bool   `mapstructure:"include_history" yaml:"include_history" json:"includeHistory"`

	// Pretty indents canonical JSON output. Other formats are always indented.
	Pretty bool `mapstructure:"pretty" yaml:"pretty" json:"pretty"`
}

// Config sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Validate checks that every value can be used.
func (c *CLIConfig) Validate() error {
	var errs []string
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, "log_level: "+err.Error())
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, "log_format: "+err.Error())
	}
	if c.Export.Format != "" {
		if _, err := interchange.ParseFormat(c.Export.Format); err != nil {
			errs = append(errs, "export.format: "+err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New("invalid configuration: " + strings.Join(errs, "; "))
	}
	return nil
}

// LoggingConfig returns the logger settings. Invalid values fall back to the
// logging defaults; Validate reports them.
func (c *CLIConfig) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.LogLevel); err == nil {
		cfg.Level = level
		// Debug output names the line that logged it.
		cfg.AddSource = level <= logging.LevelDebug
	}
	if format, err := logging.ParseFormat(c.LogFormat); err == nil {
		cfg.Format = format
	}
	return cfg
}
