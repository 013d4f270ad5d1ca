package cli

import (
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/UfukSeker41/api-controller/pkg/interchange"
)

// formatLabels are the human names shown in prompts and the formats table.
var formatLabels = map[interchange.Format]string{
	interchange.FormatJSON:    "Canonical JSON",
	interchange.FormatYAML:    "Canonical YAML",
	interchange.FormatSwagger: "Swagger 2.0",
	interchange.FormatOpenAPI: "OpenAPI 3.0",
	interchange.FormatPostman: "Postman Collection v2.1",
}

func formatLabel(f interchange.Format) string {
	if label, ok := formatLabels[f]; ok {
		return label
	}
	return string(f)
}

// stdinIsTerminal reports whether prompts can be shown.
var stdinIsTerminal = isTerminal

// isTerminal checks if stdin is a terminal.
func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// resolveFormat returns flagValue when set. Otherwise it asks for a format on
// an interactive terminal and fails with ErrFormatRequired elsewhere.
func resolveFormat(flagValue, title string) (interchange.Format, error) {
	if flagValue != "" {
		return interchange.ParseFormat(flagValue)
	}
	if !stdinIsTerminal() {
		return "", ErrFormatRequired
	}
	return promptFormat(title)
}

func promptFormat(title string) (interchange.Format, error) {
	var choice string
	options := make([]huh.Option[string], 0, len(interchange.AllFormats()))
	for _, f := range interchange.AllFormats() {
		options = append(options, huh.NewOption(formatLabel(f), string(f)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return interchange.ParseFormat(choice)
}

// completeFormats offers the format tags for shell completion of format flags.
func completeFormats(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	formats := interchange.AllFormats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f) + "\t" + formatLabel(f)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
