package interchange

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed canonical.schema.json
var canonicalSchemaJSON []byte

const canonicalSchemaURL = "https://github.com/UfukSeker41/api-controller/schema/canonical.json"

var (
	canonicalSchemaOnce sync.Once
	canonicalSchema     *jsonschema.Schema
	canonicalSchemaErr  error
)

func compiledCanonicalSchema() (*jsonschema.Schema, error) {
	canonicalSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(canonicalSchemaURL, bytes.NewReader(canonicalSchemaJSON)); err != nil {
			canonicalSchemaErr = fmt.Errorf("loading canonical schema: %w", err)
			return
		}
		canonicalSchema, canonicalSchemaErr = compiler.Compile(canonicalSchemaURL)
	})
	return canonicalSchema, canonicalSchemaErr
}

// validateCanonical checks a decoded JSON tree against the canonical schema.
// The returned error lists the failing instance locations.
func validateCanonical(tree any) error {
	schema, err := compiledCanonicalSchema()
	if err != nil {
		return err
	}
	err = schema.Validate(tree)
	if err == nil {
		return nil
	}
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		return &schemaViolation{details: leafViolations(ve)}
	}
	return err
}

// schemaViolation flattens a jsonschema.ValidationError into its leaf causes.
type schemaViolation struct {
	details []string
}

func (e *schemaViolation) Error() string {
	return strings.Join(e.details, "; ")
}

func leafViolations(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{loc + ": " + ve.Message}
	}
	var out []string
	for _, c := range ve.Causes {
		out = append(out, leafViolations(c)...)
	}
	return out
}
