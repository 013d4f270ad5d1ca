package interchange

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/UfukSeker41/api-controller/pkg/catalog"
)

// scope tells the YAML converter what a node is expected to hold. A nil
// scope is a free-form value whose scalars keep their YAML types.
type scope interface {
	// text reports whether a scalar here must stay text even when YAML
	// would resolve it to a number or a boolean (version: 1.0).
	text() bool
	field(key string) scope
	elem() scope
}

// typeScope follows the Go type a node will be decoded into.
type typeScope struct {
	t reflect.Type
}

func newTypeScope(t reflect.Type) scope {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Interface {
		return nil
	}
	return typeScope{t: t}
}

func (s typeScope) text() bool {
	return s.t.Kind() == reflect.String
}

func (s typeScope) field(key string) scope {
	switch s.t.Kind() {
	case reflect.Struct:
		if s.t == timeType {
			return nil
		}
		ft, ok := jsonFields(s.t)[key]
		if !ok {
			return nil
		}
		return newTypeScope(ft)
	case reflect.Map:
		return newTypeScope(s.t.Elem())
	}
	return nil
}

func (s typeScope) elem() scope {
	switch s.t.Kind() {
	case reflect.Slice, reflect.Array:
		return newTypeScope(s.t.Elem())
	}
	return nil
}

// specTextKeys always hold text in OpenAPI and Swagger documents.
var specTextKeys = map[string]bool{
	"swagger":     true,
	"openapi":     true,
	"version":     true,
	"title":       true,
	"name":        true,
	"description": true,
	"summary":     true,
}

// specFreeKeys hold user payloads in OpenAPI and Swagger documents.
var specFreeKeys = map[string]bool{
	"example": true,
	"default": true,
	"enum":    true,
	"value":   true,
}

// specScope follows an OpenAPI or Swagger document. Swagger response
// examples are keyed by media type and hold payloads.
type specScope struct {
	isText   bool
	examples bool
}

func (s specScope) text() bool { return s.isText }

func (s specScope) field(key string) scope {
	if specFreeKeys[key] || strings.HasPrefix(key, "x-") || (s.examples && strings.Contains(key, "/")) {
		return nil
	}
	return specScope{isText: specTextKeys[key], examples: key == "examples"}
}

func (s specScope) elem() scope { return specScope{} }

// canonicalScope picks the layout of a canonical document from its root: an
// export document, a bare array of APIs or a single API.
func canonicalScope(root *yaml.Node) scope {
	switch root.Kind {
	case yaml.SequenceNode:
		return newTypeScope(reflect.TypeOf([]catalog.API(nil)))
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value == "apis" {
				return newTypeScope(reflect.TypeOf(catalog.Document{}))
			}
		}
		return newTypeScope(reflect.TypeOf(catalog.API{}))
	}
	return nil
}

func specRootScope(*yaml.Node) scope { return specScope{} }

// yamlToJSON re-encodes a YAML document as JSON so that YAML input can share
// the JSON decoding path. Timestamps keep the text they were written with and
// rootScope decides which other scalars stay text.
func yamlToJSON(data []byte, rootScope func(*yaml.Node) scope) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	v, err := nodeValue(&doc, rootScope(root))
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// toJSON returns an OpenAPI or Swagger document unchanged when it is already
// JSON and converts it from YAML otherwise.
func toJSON(data []byte) ([]byte, error) {
	if json.Valid(data) {
		return data, nil
	}
	return yamlToJSON(data, specRootScope)
}

func nodeValue(n *yaml.Node, s scope) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0], s)
	case yaml.AliasNode:
		return nodeValue(n.Alias, s)
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			var child scope
			if s != nil {
				child = s.field(key)
			}
			v, err := nodeValue(n.Content[i+1], child)
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	case yaml.SequenceNode:
		var item scope
		if s != nil {
			item = s.elem()
		}
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c, item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		switch tag := n.ShortTag(); {
		case tag == "!!str", tag == "!!timestamp", tag == "!!binary":
			return n.Value, nil
		case tag != "!!null" && s != nil && s.text():
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, errors.New("unsupported YAML node")
}
