package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/UfukSeker41/api-controller/pkg/cliconfig"
	"github.com/UfukSeker41/api-controller/pkg/interchange"
	"github.com/UfukSeker41/api-controller/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	configPath string
	logLevel   string
	logFormat  string
	jsonOutput bool

	// Resolved by PersistentPreRunE before any subcommand runs.
	cfg    *cliconfig.CLIConfig
	logger *slog.Logger
	engine *interchange.Engine

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "apictl",
	Short: "apictl converts API catalogs between description formats",
	Long: `apictl moves API catalogs between the canonical export document (JSON or YAML),
Swagger 2.0, OpenAPI 3.0 and Postman Collection v2.1.

Every import and export reports the defaults it applied and the fields the
target format could not hold as warnings on stderr.

Configuration can be provided via flags, APICTL_* environment variables, or a
configuration file. By default, apictl looks for ./.apictl.yaml and then
$XDG_CONFIG_HOME/apictl/config.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Main()
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := cliconfig.Load(configPath)
		if err != nil {
			return err
		}
		if err := applyFlagOverrides(loaded); err != nil {
			return err
		}
		cfg = loaded

		lc := cfg.LoggingConfig()
		lc.Output = cmd.ErrOrStderr()
		logger = logging.New(lc)
		engine = interchange.New(interchange.WithLogger(logger))

		logger.Debug("configuration loaded",
			"file", cfg.ConfigFile,
			"log_level", cfg.LogLevel,
			"export_format", cfg.Export.Format)
		return nil
	},
}

// applyFlagOverrides copies the persistent logging flags over loaded values.
func applyFlagOverrides(c *cliconfig.CLIConfig) error {
	if logLevel != "" {
		c.LogLevel = logLevel
		c.Sources["log_level"] = cliconfig.SourceFlag
	}
	if logFormat != "" {
		c.LogFormat = logFormat
		c.Sources["log_format"] = cliconfig.SourceFlag
	}
	return c.Validate()
}

// Main runs apictl with os.Args and returns the process exit code.
func Main() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", formatError(err))
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./.apictl.yaml, then $XDG_CONFIG_HOME/apictl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: warn)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (default: text)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
