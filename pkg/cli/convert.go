package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UfukSeker41/api-controller/pkg/interchange"
)

var (
	convertFrom    string
	convertTo      string
	convertOutput  string
	convertCompact bool
	convertWhere   string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert an API description from one format to another",
	Long: `Convert an API description from one format to another in a single step.
Warnings from both the import and the export go to stderr.

Test records and history read from a canonical source are written again when
the target is canonical.

Examples:
  # Swagger 2.0 to OpenAPI 3.0
  apictl convert swagger.json --from swagger --to openapi -o openapi.json

  # Postman collection to canonical YAML
  apictl convert collection.json --from postman --to yaml

  # Read stdin
  cat openapi.yaml | apictl convert - --from openapi --to postman`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := resolveFormat(convertFrom, "Which format is "+args[0]+" in?")
		if err != nil {
			return err
		}
		to, err := resolveFormat(firstNonEmpty(convertTo, cfg.Export.Format), "Convert "+args[0]+" to")
		if err != nil {
			return err
		}

		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		src, err := engine.Import(data, from)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		printWarnings(cmd.ErrOrStderr(), src.Warnings)

		apis, err := filterAPIs(src.APIs, convertWhere)
		if err != nil {
			return err
		}
		res, err := engine.Export(apis, interchange.ExportOptions{
			Format:         to,
			IncludeTests:   len(src.Tests) > 0,
			IncludeHistory: len(src.History) > 0,
			Tests:          src.Tests,
			History:        src.History,
		})
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		logger.Info("converted", "from", from, "to", to, "apis", len(apis))
		return writeExport(cmd, res, convertOutput, convertCompact)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertFrom, "from", "", "Input format: json, yaml, swagger, openapi, postman")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "Output format (default: export.format from config)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file (default: stdout)")
	convertCmd.Flags().BoolVar(&convertCompact, "compact", false, "Write JSON without indentation")
	convertCmd.Flags().StringVar(&convertWhere, "where", "", "Only convert APIs matching this expression (see 'apictl export --help')")
	_ = convertCmd.RegisterFlagCompletionFunc("from", completeFormats)
	_ = convertCmd.RegisterFlagCompletionFunc("to", completeFormats)
}
