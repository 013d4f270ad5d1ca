package interchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat matches every *UnsupportedFormatError through errors.Is.
var ErrUnsupportedFormat = errors.New("unsupported format")

// UnsupportedFormatError is returned when a format tag is not one of the
// supported formats. No input is parsed when it occurs.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	names := make([]string, 0, len(AllFormats()))
	for _, f := range AllFormats() {
		names = append(names, string(f))
	}
	return "unsupported format " + strconv.Quote(e.Format) + " (supported: " + strings.Join(names, ", ") + ")"
}

// Is makes errors.Is(err, ErrUnsupportedFormat) work.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// DecodeError represents a failure to decode input in a declared format.
// Offset, Line and Column are set when the position of a syntax error is known.
type DecodeError struct {
	Format Format
	Reason string
	Offset int64
	Line   int
	Column int
	Cause  error
}

func (e *DecodeError) Error() string {
	msg := "decode"
	if e.Format != "" {
		msg += " " + string(e.Format)
	}
	msg += ": " + e.Reason
	switch {
	case e.Line > 0 && e.Column > 0:
		msg += " (line " + strconv.Itoa(e.Line) + ", column " + strconv.Itoa(e.Column) + ")"
	case e.Line > 0:
		msg += " (line " + strconv.Itoa(e.Line) + ")"
	case e.Offset > 0:
		msg += " (offset " + strconv.FormatInt(e.Offset, 10) + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// EncodeError represents a model that cannot be represented in the target format.
type EncodeError struct {
	Format Format
	Reason string
	Cause  error
}

func (e *EncodeError) Error() string {
	msg := "encode"
	if e.Format != "" {
		msg += " " + string(e.Format)
	}
	msg += ": " + e.Reason
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *EncodeError) Unwrap() error {
	return e.Cause
}

// syntaxError wraps a parser error into a DecodeError, locating it in data
// when the parser reports a position.
func syntaxError(format Format, data []byte, reason string, err error) *DecodeError {
	de := &DecodeError{Format: format, Reason: reason, Cause: err}

	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	switch {
	case errors.As(err, &se):
		de.Offset = se.Offset
	case errors.As(err, &te):
		de.Offset = te.Offset
	}
	if de.Offset > 0 && de.Offset <= int64(len(data)) {
		de.Line, de.Column = lineColumn(data, de.Offset)
		return de
	}

	var ye *yaml.TypeError
	if errors.As(err, &ye) && len(ye.Errors) > 0 {
		de.Line = yamlLine(ye.Errors[0])
		return de
	}
	de.Line = yamlLine(err.Error())
	return de
}

// lineColumn converts a byte offset into a 1-based line and column.
func lineColumn(data []byte, offset int64) (int, int) {
	prefix := data[:offset]
	line := bytes.Count(prefix, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(prefix, '\n') - 1
	if col < 1 {
		col = 1
	}
	return line, col
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

func yamlLine(msg string) int {
	m := yamlLineRe.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
