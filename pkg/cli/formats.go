package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UfukSeker41/api-controller/pkg/cli/internal/output"
)

// FormatInfo describes one supported format.
type FormatInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ContentType string `json:"contentType"`
	Import      bool   `json:"import"`
	Export      bool   `json:"export"`
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		formats := engine.Formats()
		infos := make([]FormatInfo, 0, len(formats))
		for _, f := range formats {
			infos = append(infos, FormatInfo{
				Name:        string(f),
				Description: formatLabel(f),
				ContentType: f.ContentType(),
				Import:      true,
				Export:      true,
			})
		}

		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), infos)
		}

		tw := output.Table(cmd.OutOrStdout())
		fmt.Fprintln(tw, "FORMAT\tDESCRIPTION\tCONTENT TYPE\tIMPORT\tEXPORT")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", info.Name, info.Description, info.ContentType, yesNo(info.Import), yesNo(info.Export))
		}
		return tw.Flush()
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
