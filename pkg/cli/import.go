package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/UfukSeker41/api-controller/internal/id"
	"github.com/UfukSeker41/api-controller/pkg/cli/internal/output"
	"github.com/UfukSeker41/api-controller/pkg/interchange"
)

var (
	importFormat string
	importOutput string
)

// ImportOutput is the JSON form of an import summary.
type ImportOutput struct {
	Format        string                `json:"format"`
	Files         int                   `json:"files"`
	APICount      int                   `json:"apiCount"`
	EndpointCount int                   `json:"endpointCount"`
	TestCount     int                   `json:"testCount"`
	APIs          []APISummary          `json:"apis"`
	Warnings      []interchange.Warning `json:"warnings"`
}

// APISummary is one row of the import summary.
type APISummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Endpoints int    `json:"endpoints"`
	Auth      string `json:"auth"`
}

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Read an API description and summarise it",
	Long: `Read an API description in any supported format and print a summary of the
APIs it holds. Warnings about defaults and dropped data go to stderr.

Several files, or glob patterns such as 'specs/**/*.yaml', can be given as
long as they share one format. Use - as the file to read stdin. Without -f,
apictl asks for the format when run on a terminal.

Supported Formats:
  json      Canonical export document (JSON)
  yaml      Canonical export document (YAML)
  swagger   Swagger 2.0
  openapi   OpenAPI 3.0
  postman   Postman Collection v2.1

Examples:
  # Summarise an OpenAPI document
  apictl import petstore.yaml -f openapi

  # Save a Postman collection as a canonical YAML document
  apictl import collection.json -f postman -o catalog.yaml

  # Every Swagger file below specs/ in one catalog
  apictl import 'specs/**/*.json' -f swagger -o catalog.json

  # Machine-readable summary
  cat swagger.json | apictl import - -f swagger --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveFormat(importFormat, "Which format is "+args[0]+" in?")
		if err != nil {
			return err
		}

		inputs, err := expandInputs(args)
		if err != nil {
			return err
		}

		res := &interchange.ImportResult{Format: format}
		var apiIDs id.Set
		for _, in := range inputs {
			data, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			one, err := engine.Import(data, format)
			if err != nil {
				if len(inputs) > 1 {
					return fmt.Errorf("import failed: %s: %w", in, err)
				}
				return fmt.Errorf("import failed: %w", err)
			}
			one.Warnings = append(one.Warnings, claimAPIIDs(&apiIDs, one)...)
			res.APIs = append(res.APIs, one.APIs...)
			res.Tests = append(res.Tests, one.Tests...)
			res.History = append(res.History, one.History...)
			res.Warnings = append(res.Warnings, one.Warnings...)
		}

		if importOutput != "" {
			exported, err := engine.Export(res.APIs, interchange.ExportOptions{
				Format:         canonicalFormat(importOutput),
				IncludeTests:   true,
				IncludeHistory: true,
				Tests:          res.Tests,
				History:        res.History,
			})
			if err != nil {
				return fmt.Errorf("saving canonical document: %w", err)
			}
			if err := writeOutput(cmd, importOutput, exported.Data); err != nil {
				return err
			}
		}

		summary := summarize(res)
		summary.Files = len(inputs)
		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), summary)
		}

		printWarnings(cmd.ErrOrStderr(), res.Warnings)
		return printImportSummary(cmd.OutOrStdout(), summary)
	},
}

// claimAPIIDs suffixes the API ids of one file that an earlier file already
// used and points the file's test records and history at the new ids. Each
// file is already unique on its own.
func claimAPIIDs(ids *id.Set, one *interchange.ImportResult) []interchange.Warning {
	var (
		renamed  map[string]string
		warnings []interchange.Warning
	)
	for i := range one.APIs {
		got, collided := ids.Claim(one.APIs[i].ID)
		if !collided {
			continue
		}
		warnings = append(warnings, interchange.Warning{
			Code:     interchange.WarnIDCollision,
			Message:  fmt.Sprintf("api id %q already used by an earlier file, renamed to %q", one.APIs[i].ID, got),
			EntityID: got,
		})
		if renamed == nil {
			renamed = make(map[string]string)
		}
		renamed[one.APIs[i].ID] = got
		one.APIs[i].ID = got
	}
	if renamed == nil {
		return warnings
	}

	rename := func(apiID *string) {
		if got, ok := renamed[*apiID]; ok {
			*apiID = got
		}
	}
	for i := range one.Tests {
		rename(&one.Tests[i].APIID)
	}
	for i := range one.History {
		h := &one.History[i]
		rename(&h.APIID)
		for j := range h.Tests {
			rename(&h.Tests[j].APIID)
		}
	}
	return warnings
}

func summarize(res *interchange.ImportResult) ImportOutput {
	out := ImportOutput{
		Format:        string(res.Format),
		APICount:      len(res.APIs),
		EndpointCount: res.EndpointCount(),
		TestCount:     len(res.Tests),
		APIs:          make([]APISummary, 0, len(res.APIs)),
		Warnings:      res.Warnings,
	}
	if out.Warnings == nil {
		out.Warnings = []interchange.Warning{}
	}
	for i := range res.APIs {
		api := &res.APIs[i]
		out.APIs = append(out.APIs, APISummary{
			ID:        api.ID,
			Name:      api.Name,
			Version:   api.Version,
			Endpoints: api.EndpointCount(),
			Auth:      string(api.Authentication.Type),
		})
	}
	return out
}

func printImportSummary(w io.Writer, s ImportOutput) error {
	tw := output.Table(w)
	fmt.Fprintln(tw, "ID\tNAME\tVERSION\tENDPOINTS\tAUTH")
	for _, api := range s.APIs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", api.ID, api.Name, api.Version, api.Endpoints, api.Auth)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d API(s), %d endpoint(s) imported from %s", s.APICount, s.EndpointCount, s.Format)
	if s.Files > 1 {
		fmt.Fprintf(w, " (%d files)", s.Files)
	}
	if s.TestCount > 0 {
		fmt.Fprintf(w, ", %d test record(s)", s.TestCount)
	}
	fmt.Fprintln(w)
	return nil
}

func printWarnings(w io.Writer, warnings []interchange.Warning) {
	for _, warning := range warnings {
		output.Warn(w, "%s", warning)
	}
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: json, yaml, swagger, openapi, postman")
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "Also save the APIs as a canonical document (.yaml/.yml for YAML, otherwise JSON)")
	_ = importCmd.RegisterFlagCompletionFunc("format", completeFormats)
}
