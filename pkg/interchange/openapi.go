package interchange

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/UfukSeker41/api-controller/internal/id"
	"github.com/UfukSeker41/api-controller/pkg/catalog"
)

// openAPICodec handles Swagger 2.0 and OpenAPI 3.x. Both tags decode either
// version; the tag only selects which version is written on export.
type openAPICodec struct {
	format Format
}

// NewOpenAPICodec returns the codec for FormatSwagger or FormatOpenAPI.
func NewOpenAPICodec(format Format) Codec {
	return &openAPICodec{format: format}
}

// Format returns the codec's format.
func (c *openAPICodec) Format() Format {
	return c.format
}

// Decode parses an OpenAPI 3.x or Swagger 2.0 document, JSON or YAML, into a
// single API.
func (c *openAPICodec) Decode(data []byte, l *Ledger) (*Decoded, error) {
	var versionCheck struct {
		OpenAPI string `yaml:"openapi"`
		Swagger string `yaml:"swagger"`
	}
	if err := yaml.Unmarshal(data, &versionCheck); err != nil {
		return nil, syntaxError(c.format, data, "failed to parse specification", err)
	}

	raw, err := toJSON(data)
	if err != nil {
		return nil, syntaxError(c.format, data, "failed to parse specification", err)
	}

	var api *catalog.API
	switch {
	case strings.HasPrefix(versionCheck.OpenAPI, "3"):
		api, err = c.decodeOpenAPI3(raw, l)
	case strings.HasPrefix(versionCheck.Swagger, "2"):
		api, err = c.decodeSwagger2(raw, l)
	case versionCheck.OpenAPI != "" || versionCheck.Swagger != "":
		return nil, &DecodeError{Format: c.format, Reason: fmt.Sprintf("unsupported specification version %q", versionCheck.OpenAPI+versionCheck.Swagger)}
	default:
		return nil, &DecodeError{Format: c.format, Reason: "not a valid OpenAPI 3.x or Swagger 2.0 specification"}
	}
	if err != nil {
		return nil, err
	}

	apis := []catalog.API{*api}
	if err := finalize(c.format, apis, l); err != nil {
		return nil, err
	}
	return &Decoded{APIs: apis}, nil
}

// newSpecAPI builds the API shell shared by both versions.
func newSpecAPI(info *openapi3.Info, tags openapi3.Tags, l *Ledger) *catalog.API {
	api := &catalog.API{Authentication: catalog.Authentication{Type: catalog.AuthNone}}
	if info != nil {
		api.Name = strings.TrimSpace(info.Title)
		api.Version = info.Version
		api.Description = info.Description
		if ct := info.Contact; ct != nil && (ct.Name != "" || ct.URL != "" || ct.Email != "") {
			api.Provider = &catalog.Provider{Name: ct.Name, Website: ct.URL, Email: ct.Email}
		}
	}
	if api.Name == "" {
		api.Name = "Untitled API"
		api.ID = id.Slug(api.Name)
		l.Default(api.ID, "info.title", api.Name)
	} else {
		api.ID = id.Slug(api.Name)
	}
	l.Fill(api.ID, "info.version", &api.Version, "1.0.0")

	for _, t := range tags {
		if t != nil && t.Name != "" {
			api.Categories = append(api.Categories, t.Name)
		}
	}
	return api
}

// specOperation is the part of an operation both versions share.
type specOperation struct {
	method    catalog.Method
	summary   string
	desc      string
	params    []catalog.Parameter
	responses map[int]catalog.Response
}

func (c *openAPICodec) endpoint(path string, op specOperation) catalog.Endpoint {
	ep := catalog.Endpoint{
		ID:          id.EndpointID(path, string(op.method)),
		Name:        strings.TrimSpace(op.summary),
		Method:      op.method,
		Path:        path,
		Description: op.desc,
		Parameters:  op.params,
	}
	if len(op.responses) > 0 {
		ep.Responses = op.responses
	}
	return ep
}

// checkPathItemKeys rejects path item keys that are not one of the supported
// verbs. Known verbs are already decoded into their fields; anything else the
// decoder left in Extensions that is not an x- extension is a verb the model
// cannot hold.
func (c *openAPICodec) checkPathItemKeys(path string, extensions map[string]any) error {
	keys := make([]string, 0, len(extensions))
	for k := range extensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.HasPrefix(k, "x-") {
			continue
		}
		if _, ok := catalog.ParseMethod(k); ok {
			continue
		}
		return unsupportedVerb(c.format, path, k)
	}
	return nil
}

func unsupportedVerb(format Format, path, verb string) *DecodeError {
	return &DecodeError{Format: format, Reason: fmt.Sprintf("path %s: unsupported method %q", path, strings.ToUpper(verb))}
}

// statusCode parses a response key. Only three digit codes are kept.
func statusCode(key string) (int, bool) {
	code, err := strconv.Atoi(key)
	if err != nil || code < 100 || code > 599 {
		return 0, false
	}
	return code, true
}

// pickExample chooses the JSON example when several media types carry one.
func pickExample(byType map[string]any) any {
	if ex, ok := byType["application/json"]; ok {
		return ex
	}
	keys := make([]string, 0, len(byType))
	for k := range byType {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if byType[k] != nil {
			return byType[k]
		}
	}
	return nil
}

func options(enum []any) []string {
	if len(enum) == 0 {
		return nil
	}
	out := make([]string, 0, len(enum))
	for _, v := range enum {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func firstType(types *openapi3.Types) string {
	if s := types.Slice(); len(s) > 0 {
		return s[0]
	}
	return ""
}

// mergeParams lays operation parameters over path level ones with the same
// name and location.
func mergeParams[P any](shared, own []P, key func(P) string) []P {
	if len(shared) == 0 {
		return own
	}
	seen := make(map[string]bool, len(own))
	for _, p := range own {
		seen[key(p)] = true
	}
	out := make([]P, 0, len(shared)+len(own))
	for _, p := range shared {
		if !seen[key(p)] {
			out = append(out, p)
		}
	}
	return append(out, own...)
}

// --- Swagger 2.0 ---

func (c *openAPICodec) decodeSwagger2(raw []byte, l *Ledger) (*catalog.API, error) {
	var doc openapi2.T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &DecodeError{Format: c.format, Reason: "failed to parse Swagger 2.0 specification", Cause: err}
	}

	api := newSpecAPI(&doc.Info, doc.Tags, l)
	if doc.Host != "" {
		base := doc.Host + strings.TrimSuffix(doc.BasePath, "/")
		if len(doc.Schemes) > 0 {
			base = doc.Schemes[0] + "://" + base
		}
		api.BaseURL = base
	}

	auth, err := c.swaggerAuth(api.ID, doc.SecurityDefinitions, doc.Security, l)
	if err != nil {
		return nil, err
	}
	api.Authentication = auth

	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := doc.Paths[path]
		if item == nil {
			continue
		}
		if item.Head != nil {
			return nil, unsupportedVerb(c.format, path, "head")
		}
		if item.Options != nil {
			return nil, unsupportedVerb(c.format, path, "options")
		}
		if err := c.checkPathItemKeys(path, item.Extensions); err != nil {
			return nil, err
		}

		for _, m := range catalog.Methods {
			op := swaggerOperation(item, m)
			if op == nil {
				continue
			}
			params := mergeParams(item.Parameters, op.Parameters, func(p *openapi2.Parameter) string {
				if p == nil {
					return ""
				}
				return p.In + ":" + p.Name
			})
			spec := specOperation{
				method:    m,
				summary:   op.Summary,
				desc:      op.Description,
				params:    swaggerParams(params),
				responses: swaggerResponses(api.ID, path, m, op.Responses, l),
			}
			api.Endpoints = append(api.Endpoints, c.endpoint(path, spec))
		}
	}
	return api, nil
}

func swaggerOperation(item *openapi2.PathItem, m catalog.Method) *openapi2.Operation {
	switch m {
	case catalog.MethodGet:
		return item.Get
	case catalog.MethodPost:
		return item.Post
	case catalog.MethodPut:
		return item.Put
	case catalog.MethodDelete:
		return item.Delete
	case catalog.MethodPatch:
		return item.Patch
	}
	return nil
}

func swaggerParams(params openapi2.Parameters) []catalog.Parameter {
	var out []catalog.Parameter
	for _, p := range params {
		if p == nil || p.Name == "" {
			continue
		}
		param := catalog.Parameter{
			Name:        p.Name,
			Type:        firstType(p.Type),
			Required:    p.Required || p.In == "path",
			Description: p.Description,
			Options:     options(p.Enum),
			Default:     p.Default,
		}
		if s := p.Schema; s != nil && s.Value != nil {
			if param.Type == "" {
				param.Type = firstType(s.Value.Type)
			}
			if param.Options == nil {
				param.Options = options(s.Value.Enum)
			}
			if param.Default == nil {
				param.Default = s.Value.Default
			}
		}
		out = append(out, param)
	}
	return out
}

func swaggerResponses(apiID, path string, m catalog.Method, responses map[string]*openapi2.Response, l *Ledger) map[int]catalog.Response {
	out := make(map[int]catalog.Response, len(responses))
	for _, key := range sortedKeys(responses) {
		r := responses[key]
		code, ok := statusCode(key)
		if !ok {
			l.Warn(WarnResponseDropped, apiID, "%s %s: response %q is not a status code, dropped", m, path, key)
			continue
		}
		resp := catalog.Response{}
		if r != nil {
			resp.Description = r.Description
			resp.Example = pickExample(r.Examples)
			if resp.Example == nil && r.Schema != nil && r.Schema.Value != nil {
				resp.Example = r.Schema.Value.Example
			}
		}
		out[code] = resp
	}
	return out
}

func (c *openAPICodec) swaggerAuth(apiID string, defs map[string]*openapi2.SecurityScheme, security openapi2.SecurityRequirements, l *Ledger) (catalog.Authentication, error) {
	var required []string
	if len(security) > 0 {
		for name := range security[0] {
			required = append(required, name)
		}
	}
	name, ok := chooseScheme(apiID, sortedKeys(defs), required, l)
	if !ok {
		return catalog.Authentication{Type: catalog.AuthNone}, nil
	}
	s := defs[name]
	if s == nil {
		return catalog.Authentication{Type: catalog.AuthNone}, nil
	}
	return c.schemeAuth(apiID, name, s.Type, "", s.In, s.Name, s.Description, l)
}

// chooseScheme picks the scheme named by the first security requirement, else
// the first declared one by name.
func chooseScheme(apiID string, declared, required []string, l *Ledger) (string, bool) {
	if len(declared) == 0 {
		return "", false
	}
	chosen := declared[0]
	sort.Strings(required)
	for _, r := range required {
		if containsString(declared, r) {
			chosen = r
			break
		}
	}
	if len(declared) > 1 {
		l.Warn(WarnAuthMultiple, apiID, "%d security schemes declared, using %q", len(declared), chosen)
	}
	return chosen, true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// schemeAuth maps one security scheme of either version onto the model.
func (c *openAPICodec) schemeAuth(apiID, name, typ, httpScheme, in, paramName, desc string, l *Ledger) (catalog.Authentication, error) {
	none := catalog.Authentication{Type: catalog.AuthNone}
	switch strings.ToLower(typ) {
	case "apikey":
		if in == "" {
			return none, &DecodeError{Format: c.format, Reason: fmt.Sprintf("security scheme %q: apiKey without a location", name)}
		}
		loc, ok := catalog.ParseKeyLocation(in)
		if !ok {
			l.Warn(WarnAuthUnsupported, apiID, "security scheme %q sends the key in %q, not supported", name, in)
			return none, nil
		}
		return catalog.Authentication{
			Type:         catalog.AuthAPIKey,
			Location:     loc,
			ParamName:    paramName,
			Instructions: desc,
		}, nil
	case "oauth2", "openidconnect":
		return catalog.Authentication{Type: catalog.AuthOAuth, Instructions: desc}, nil
	default:
		kind := typ
		if httpScheme != "" {
			kind += " " + httpScheme
		}
		l.Warn(WarnAuthUnsupported, apiID, "security scheme %q of type %q not supported", name, kind)
		return none, nil
	}
}

// --- OpenAPI 3.x ---

func (c *openAPICodec) decodeOpenAPI3(raw []byte, l *Ledger) (*catalog.API, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, &DecodeError{Format: c.format, Reason: "failed to parse OpenAPI 3.x specification", Cause: err}
	}

	api := newSpecAPI(doc.Info, doc.Tags, l)
	if len(doc.Servers) > 0 && doc.Servers[0] != nil {
		api.BaseURL = strings.TrimSuffix(serverURL(doc.Servers[0]), "/")
	}

	auth, err := c.openAPI3Auth(api.ID, doc, l)
	if err != nil {
		return nil, err
	}
	api.Authentication = auth

	if doc.Paths == nil {
		return api, nil
	}
	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		for _, other := range []struct {
			verb string
			op   *openapi3.Operation
		}{
			{"connect", item.Connect},
			{"head", item.Head},
			{"options", item.Options},
			{"trace", item.Trace},
		} {
			if other.op != nil {
				return nil, unsupportedVerb(c.format, path, other.verb)
			}
		}
		if err := c.checkPathItemKeys(path, item.Extensions); err != nil {
			return nil, err
		}

		for _, m := range catalog.Methods {
			op := item.GetOperation(string(m))
			if op == nil {
				continue
			}
			params := mergeParams(item.Parameters, op.Parameters, func(p *openapi3.ParameterRef) string {
				if p == nil || p.Value == nil {
					return ""
				}
				return p.Value.In + ":" + p.Value.Name
			})
			spec := specOperation{
				method:    m,
				summary:   op.Summary,
				desc:      op.Description,
				params:    openAPI3Params(params),
				responses: openAPI3Responses(api.ID, path, m, op.Responses, l),
			}
			api.Endpoints = append(api.Endpoints, c.endpoint(path, spec))
		}
	}
	return api, nil
}

// serverURL expands server variables to their defaults.
func serverURL(s *openapi3.Server) string {
	u := s.URL
	for name, v := range s.Variables {
		if v != nil {
			u = strings.ReplaceAll(u, "{"+name+"}", v.Default)
		}
	}
	return u
}

func openAPI3Params(params openapi3.Parameters) []catalog.Parameter {
	var out []catalog.Parameter
	for _, ref := range params {
		if ref == nil || ref.Value == nil || ref.Value.Name == "" {
			continue
		}
		p := ref.Value
		param := catalog.Parameter{
			Name:        p.Name,
			Required:    p.Required || p.In == openapi3.ParameterInPath,
			Description: p.Description,
		}
		if s := p.Schema; s != nil && s.Value != nil {
			param.Type = firstType(s.Value.Type)
			param.Options = options(s.Value.Enum)
			param.Default = s.Value.Default
		}
		out = append(out, param)
	}
	return out
}

func openAPI3Responses(apiID, path string, m catalog.Method, responses *openapi3.Responses, l *Ledger) map[int]catalog.Response {
	if responses == nil {
		return nil
	}
	byKey := responses.Map()
	out := make(map[int]catalog.Response, len(byKey))
	for _, key := range sortedKeys(byKey) {
		ref := byKey[key]
		code, ok := statusCode(key)
		if !ok {
			l.Warn(WarnResponseDropped, apiID, "%s %s: response %q is not a status code, dropped", m, path, key)
			continue
		}
		resp := catalog.Response{}
		if ref != nil && ref.Value != nil {
			if ref.Value.Description != nil {
				resp.Description = *ref.Value.Description
			}
			resp.Example = mediaExample(ref.Value.Content)
		}
		out[code] = resp
	}
	return out
}

func mediaExample(content openapi3.Content) any {
	examples := make(map[string]any, len(content))
	for mime, mt := range content {
		if mt == nil {
			continue
		}
		switch {
		case mt.Example != nil:
			examples[mime] = mt.Example
		case len(mt.Examples) > 0:
			for _, name := range sortedKeys(mt.Examples) {
				if ex := mt.Examples[name]; ex != nil && ex.Value != nil {
					examples[mime] = ex.Value.Value
					break
				}
			}
		case mt.Schema != nil && mt.Schema.Value != nil && mt.Schema.Value.Example != nil:
			examples[mime] = mt.Schema.Value.Example
		}
	}
	return pickExample(examples)
}

func (c *openAPICodec) openAPI3Auth(apiID string, doc *openapi3.T, l *Ledger) (catalog.Authentication, error) {
	none := catalog.Authentication{Type: catalog.AuthNone}
	if doc.Components == nil || len(doc.Components.SecuritySchemes) == 0 {
		return none, nil
	}
	schemes := doc.Components.SecuritySchemes

	var required []string
	if len(doc.Security) > 0 {
		for name := range doc.Security[0] {
			required = append(required, name)
		}
	}
	name, ok := chooseScheme(apiID, sortedKeys(schemes), required, l)
	if !ok {
		return none, nil
	}
	ref := schemes[name]
	if ref == nil || ref.Value == nil {
		return none, nil
	}
	s := ref.Value
	return c.schemeAuth(apiID, name, s.Type, s.Scheme, s.In, s.Name, s.Description, l)
}
