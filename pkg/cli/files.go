package cli

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/UfukSeker41/api-controller/pkg/interchange"
)

// readInput reads path, or the command's stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, &fileError{Path: "stdin", Op: "read", Err: err}
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &fileError{Path: path, Op: "read", Err: err}
	}
	return data, nil
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &fileError{Path: path, Op: "write", Err: err}
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &fileError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// canonicalFormat guesses the canonical encoding of a file from its name.
// Anything that is not .yaml or .yml is read as JSON.
func canonicalFormat(path string) interchange.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return interchange.FormatYAML
	}
	return interchange.FormatJSON
}

// expandInputs resolves glob patterns among args, with ** matching any
// number of directories. Plain paths and "-" are kept as given. A pattern
// that matches nothing is reported like a missing file.
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		if arg == "-" || !strings.ContainsAny(arg, "*?[{") {
			inputs = append(inputs, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, &fileError{Path: arg, Op: "match", Err: fs.ErrNotExist}
		}
		inputs = append(inputs, matches...)
	}
	return inputs, nil
}
