package cliconfig

import "github.com/spf13/viper"

// Default values.
const (
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"
	DefaultExportFormat = "json"
	DefaultPretty       = true
)

// keys lists every configuration key.
var keys = []string{
	"log_level",
	"log_format",
	"export.format",
	"export.include_tests",
	"export.include_history",
	"export.pretty",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("export.format", DefaultExportFormat)
	v.SetDefault("export.include_tests", false)
	v.SetDefault("export.include_history", false)
	v.SetDefault("export.pretty", DefaultPretty)
}

// NewDefault returns the configuration used when nothing is set.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Export: ExportConfig{
			Format: DefaultExportFormat,
			Pretty: DefaultPretty,
		},
		Sources: make(map[string]string, len(keys)),
	}
	for _, k := range keys {
		cfg.Sources[k] = SourceDefault
	}
	return cfg
}
