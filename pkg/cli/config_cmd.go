package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/UfukSeker41/api-controller/pkg/cli/internal/output"
	"github.com/UfukSeker41/api-controller/pkg/cliconfig"
)

// ConfigOutput is the JSON form of 'apictl config show'.
type ConfigOutput struct {
	Config  *cliconfig.CLIConfig `json:"config"`
	Sources map[string]string    `json:"sources"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect apictl configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the effective configuration after defaults, the config file,
APICTL_* environment variables and flags have been applied, together with
the source of every value.

Examples:
  apictl config show
  APICTL_EXPORT_FORMAT=postman apictl config show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), ConfigOutput{Config: cfg, Sources: cfg.Sources})
		}

		w := cmd.OutOrStdout()
		if cfg.ConfigFile != "" {
			fmt.Fprintf(w, "# Resolved configuration from %s\n\n", cfg.ConfigFile)
		} else {
			fmt.Fprint(w, "# No config file found, showing defaults and environment\n\n")
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		fmt.Fprint(w, string(data))

		keys := make([]string, 0, len(cfg.Sources))
		for k := range cfg.Sources {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(w)
		tw := output.Table(w)
		fmt.Fprintln(tw, "KEY\tSOURCE")
		for _, k := range keys {
			fmt.Fprintf(tw, "%s\t%s\n", k, cfg.Sources[k])
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
