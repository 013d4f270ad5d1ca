package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UfukSeker41/api-controller/pkg/catalog"
	"github.com/UfukSeker41/api-controller/pkg/cli/internal/output"
	"github.com/UfukSeker41/api-controller/pkg/interchange"
)

var (
	exportFormat         string
	exportOutput         string
	exportTestsFile      string
	exportHistoryFile    string
	exportIncludeTests   bool
	exportIncludeHistory bool
	exportCompact        bool
	exportWhere          string
)

// ExportOutput is the JSON form of an export report. It is printed only when
// the document itself went to a file.
type ExportOutput struct {
	Format      string                `json:"format"`
	ContentType string                `json:"contentType"`
	Output      string                `json:"output"`
	Bytes       int                   `json:"bytes"`
	Metadata    catalog.Metadata      `json:"metadata"`
	Warnings    []interchange.Warning `json:"warnings"`
}

var exportCmd = &cobra.Command{
	Use:   "export <canonical-file>",
	Short: "Write a canonical document in another format",
	Long: `Read a canonical export document (JSON, or YAML for .yaml/.yml files) and
write its APIs in the requested format.

Test records and history are only written to canonical documents, and only
when asked for. They come from the input document unless --tests or
--history name a JSON file holding an array of records.

Examples:
  # Export as OpenAPI 3.0 to stdout
  apictl export catalog.json -f openapi

  # Export as a Postman collection file
  apictl export catalog.yaml -f postman -o collection.json

  # Re-export with test history from another file
  apictl export catalog.json -f yaml --history history.json --include-history

  # Only the APIs that need no key
  apictl export catalog.json -f openapi --where 'auth == "none"'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveFormat(firstNonEmpty(exportFormat, cfg.Export.Format), "Export "+args[0]+" as")
		if err != nil {
			return err
		}

		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		src, err := engine.Import(data, canonicalFormat(args[0]))
		if err != nil {
			return fmt.Errorf("reading canonical document: %w", err)
		}
		printWarnings(cmd.ErrOrStderr(), src.Warnings)

		opts := interchange.ExportOptions{
			Format:         format,
			IncludeTests:   cfg.Export.IncludeTests,
			IncludeHistory: cfg.Export.IncludeHistory,
			Tests:          src.Tests,
			History:        src.History,
		}
		if cmd.Flags().Changed("include-tests") {
			opts.IncludeTests = exportIncludeTests
		}
		if cmd.Flags().Changed("include-history") {
			opts.IncludeHistory = exportIncludeHistory
		}
		if exportTestsFile != "" {
			if opts.Tests, err = readRecords[catalog.TestRecord](cmd, exportTestsFile); err != nil {
				return err
			}
		}
		if exportHistoryFile != "" {
			if opts.History, err = readRecords[catalog.TestHistory](cmd, exportHistoryFile); err != nil {
				return err
			}
		}

		apis, err := filterAPIs(src.APIs, exportWhere)
		if err != nil {
			return err
		}
		res, err := engine.Export(apis, opts)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		return writeExport(cmd, res, exportOutput, exportCompact)
	},
}

// writeExport writes an export result and reports its warnings.
func writeExport(cmd *cobra.Command, res *interchange.ExportResult, path string, compact bool) error {
	data := res.Data
	if compact || (res.Format == interchange.FormatJSON && !cfg.Export.Pretty) {
		var err error
		if data, err = compactJSON(res); err != nil {
			return err
		}
	}

	if err := writeOutput(cmd, path, data); err != nil {
		return err
	}
	toStdout := path == "" || path == "-"

	if jsonOutput && !toStdout {
		warnings := res.Warnings
		if warnings == nil {
			warnings = []interchange.Warning{}
		}
		return output.JSON(cmd.OutOrStdout(), ExportOutput{
			Format:      string(res.Format),
			ContentType: res.ContentType,
			Output:      path,
			Bytes:       len(data),
			Metadata:    res.Metadata,
			Warnings:    warnings,
		})
	}

	printWarnings(cmd.ErrOrStderr(), res.Warnings)
	if !toStdout {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d API(s) as %s to %s\n", res.Metadata.APICount, res.Format, path)
	}
	return nil
}

// compactJSON strips the indentation from JSON output. YAML is left alone.
func compactJSON(res *interchange.ExportResult) ([]byte, error) {
	if res.ContentType != interchange.ContentTypeJSON {
		return res.Data, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, res.Data); err != nil {
		return nil, fmt.Errorf("compacting %s output: %w", res.Format, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// readRecords reads a JSON array of test records or histories.
func readRecords[T any](cmd *cobra.Command, path string) ([]T, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &fileError{Path: path, Op: "parse", Err: err}
	}
	return records, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: json, yaml, swagger, openapi, postman (default: export.format from config)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportTestsFile, "tests", "", "JSON file with test records to export instead of the document's")
	exportCmd.Flags().StringVar(&exportHistoryFile, "history", "", "JSON file with test history to export instead of the document's")
	exportCmd.Flags().BoolVar(&exportIncludeTests, "include-tests", false, "Write test records (canonical formats only)")
	exportCmd.Flags().BoolVar(&exportIncludeHistory, "include-history", false, "Write test history (canonical formats only)")
	exportCmd.Flags().BoolVar(&exportCompact, "compact", false, "Write JSON without indentation")
	exportCmd.Flags().StringVar(&exportWhere, "where", "", "Only export APIs matching this expression (fields: id, name, version, baseUrl, auth, endpoints, categories, tags, popularity)")
	_ = exportCmd.RegisterFlagCompletionFunc("format", completeFormats)
}
