package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/UfukSeker41/api-controller/pkg/cliconfig"
	"github.com/UfukSeker41/api-controller/pkg/interchange"
)

// ErrFormatRequired is returned when no format was given and none can be asked for.
var ErrFormatRequired = errors.New("format is required - pass it with -f/--format")

// fileError is returned when an input or output file cannot be used.
type fileError struct {
	Path string
	Op   string
	Err  error
}

func (e *fileError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *fileError) Unwrap() error {
	return e.Err
}

// formatError turns an error into the message printed on stderr, with
// suggestions for the failures a user can fix.
func formatError(err error) string {
	var (
		unsupported *interchange.UnsupportedFormatError
		decodeErr   *interchange.DecodeError
		encodeErr   *interchange.EncodeError
		configErr   *cliconfig.ConfigError
		fileErr     *fileError
	)

	switch {
	case errors.As(err, &unsupported):
		return fmt.Sprintf(`%v

Run 'apictl formats' to see what each format holds.`, err)

	case errors.As(err, &decodeErr):
		var b strings.Builder
		b.WriteString(err.Error())
		b.WriteString("\n\nSuggestions:\n")
		if decodeErr.Line > 0 {
			fmt.Fprintf(&b, "  • Check the input near line %d, column %d\n", decodeErr.Line, decodeErr.Column)
		}
		fmt.Fprintf(&b, "  • Make sure the input really is %s (use -f to pick another format)", formatLabel(decodeErr.Format))
		return b.String()

	case errors.As(err, &encodeErr):
		return fmt.Sprintf(`%v

Suggestions:
  • Every endpoint needs an id, a name, a path and a supported method
  • Run 'apictl import' on the source file to see what was read`, err)

	case errors.As(err, &configErr):
		return fmt.Sprintf(`%v

Suggestions:
  • Check the YAML syntax of the config file
  • Pass another file with --config`, err)

	case errors.As(err, &fileErr) && errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf(`file not found: %s

Suggestions:
  • Check the file path is correct
  • Use - to read from stdin`, fileErr.Path)

	case errors.Is(err, ErrFormatRequired):
		return fmt.Sprintf(`%v

Supported formats: %s`, err, formatList())
	}
	return err.Error()
}

func formatList() string {
	formats := interchange.AllFormats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
