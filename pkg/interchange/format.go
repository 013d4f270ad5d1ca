package interchange

import (
	"strings"
)

// Format is an interchange format tag.
type Format string

// Supported formats.
const (
	FormatJSON    Format = "json"    // Canonical export document, JSON
	FormatYAML    Format = "yaml"    // Canonical export document, YAML
	FormatSwagger Format = "swagger" // Swagger 2.0
	FormatOpenAPI Format = "openapi" // OpenAPI 3.0
	FormatPostman Format = "postman" // Postman Collection v2.1
)

// Content types reported with export results.
const (
	ContentTypeJSON = "application/json"
	ContentTypeYAML = "application/x-yaml"
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known format.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatSwagger, FormatOpenAPI, FormatPostman:
		return true
	default:
		return false
	}
}

// ContentType returns the media type of an export in this format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return ContentTypeYAML
	}
	return ContentTypeJSON
}

// ParseFormat parses a format tag case-insensitively. Anything outside the
// supported set yields an *UnsupportedFormatError.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", &UnsupportedFormatError{Format: s}
	}
	return f, nil
}

// AllFormats returns every supported format in a stable order.
func AllFormats() []Format {
	return []Format{
		FormatJSON,
		FormatYAML,
		FormatSwagger,
		FormatOpenAPI,
		FormatPostman,
	}
}
