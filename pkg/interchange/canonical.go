package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/UfukSeker41/api-controller/pkg/catalog"
)

// canonicalCodec reads and writes the export document in JSON or YAML.
type canonicalCodec struct {
	format Format
}

// NewJSONCodec returns the codec for canonical JSON documents.
func NewJSONCodec() Codec {
	return &canonicalCodec{format: FormatJSON}
}

// NewYAMLCodec returns the codec for canonical YAML documents.
func NewYAMLCodec() Codec {
	return &canonicalCodec{format: FormatYAML}
}

// Format returns the codec's format.
func (c *canonicalCodec) Format() Format {
	return c.format
}

// exportDocument is the wire form of catalog.Document. Tests and history are
// pointers so that an empty list the caller asked for is still written.
type exportDocument struct {
	Metadata catalog.Metadata       `json:"metadata" yaml:"metadata"`
	APIs     []catalog.API          `json:"apis" yaml:"apis"`
	Tests    *[]catalog.TestRecord  `json:"tests,omitempty" yaml:"tests,omitempty"`
	History  *[]catalog.TestHistory `json:"history,omitempty" yaml:"history,omitempty"`
}

// Decode accepts an export document, a bare array of APIs or a single API.
func (c *canonicalCodec) Decode(data []byte, l *Ledger) (*Decoded, error) {
	raw := data
	if c.format == FormatYAML {
		converted, err := yamlToJSON(data, canonicalScope)
		if err != nil {
			return nil, syntaxError(c.format, data, "invalid YAML", err)
		}
		raw = converted
	}

	tree, err := decodeTree(raw)
	if err != nil {
		return nil, syntaxError(c.format, data, "invalid JSON", err)
	}

	root, err := c.documentRoot(tree)
	if err != nil {
		return nil, err
	}
	if err := validateCanonical(root); err != nil {
		return nil, &DecodeError{Format: c.format, Reason: "document does not match the canonical layout", Cause: err}
	}
	reportUnknownCanonical(root, l)

	normalized, err := json.Marshal(root)
	if err != nil {
		return nil, &DecodeError{Format: c.format, Reason: "invalid document", Cause: err}
	}
	var doc catalog.Document
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, &DecodeError{Format: c.format, Reason: "invalid field value", Cause: err}
	}

	if err := finalize(c.format, doc.APIs, l); err != nil {
		return nil, err
	}
	return &Decoded{APIs: doc.APIs, Tests: doc.Tests, History: doc.History}, nil
}

// decodeTree decodes one JSON value keeping numbers as json.Number, so
// integers above 2^53 reach the typed decode intact.
func decodeTree(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected %v after the document", tok)
		}
		return nil, err
	}
	return tree, nil
}

func (c *canonicalCodec) documentRoot(tree any) (map[string]any, error) {
	switch v := tree.(type) {
	case []any:
		return map[string]any{"apis": v}, nil
	case map[string]any:
		if _, ok := v["apis"]; ok {
			return v, nil
		}
		return map[string]any{"apis": []any{v}}, nil
	default:
		return nil, &DecodeError{Format: c.format, Reason: "document root must be an object or an array"}
	}
}

func reportUnknownCanonical(root map[string]any, l *Ledger) {
	docType := reflect.TypeOf(catalog.Document{})
	apiType := reflect.TypeOf(catalog.API{})
	fields := jsonFields(docType)

	for _, key := range sortedKeys(root) {
		ft, known := fields[key]
		switch {
		case !known:
			l.Warn(WarnUnknownField, "", "unknown field %q ignored", key)
		case key == "apis":
			apis, _ := root[key].([]any)
			for i, item := range apis {
				entity := apiEntity(item)
				unknownFields("apis["+strconv.Itoa(i)+"]", item, apiType, func(path string) {
					l.Warn(WarnUnknownField, entity, "unknown field %q ignored", path)
				})
			}
		default:
			unknownFields(key, root[key], ft, func(path string) {
				l.Warn(WarnUnknownField, "", "unknown field %q ignored", path)
			})
		}
	}
}

func apiEntity(item any) string {
	obj, _ := item.(map[string]any)
	if s, ok := obj["id"].(string); ok && s != "" {
		return s
	}
	s, _ := obj["name"].(string)
	return s
}

// Encode writes the export document.
func (c *canonicalCodec) Encode(p *Payload, _ *Ledger) ([]byte, error) {
	if err := checkEncodable(c.format, p.APIs); err != nil {
		return nil, err
	}

	doc := exportDocument{Metadata: p.Metadata, APIs: p.APIs}
	if doc.APIs == nil {
		doc.APIs = []catalog.API{}
	}
	if p.IncludeTests {
		tests := p.Tests
		if tests == nil {
			tests = []catalog.TestRecord{}
		}
		doc.Tests = &tests
	}
	if p.IncludeHistory {
		history := p.History
		if history == nil {
			history = []catalog.TestHistory{}
		}
		doc.History = &history
	}

	var buf bytes.Buffer
	if c.format == FormatYAML {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, &EncodeError{Format: c.format, Reason: "cannot render YAML", Cause: err}
		}
		if err := enc.Close(); err != nil {
			return nil, &EncodeError{Format: c.format, Reason: "cannot render YAML", Cause: err}
		}
		return buf.Bytes(), nil
	}

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, &EncodeError{Format: c.format, Reason: "cannot render JSON", Cause: err}
	}
	return buf.Bytes(), nil
}
