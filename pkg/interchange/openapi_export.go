package interchange

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/UfukSeker41/api-controller/pkg/catalog"
)

const (
	multiAPITitle   = "API Documentation"
	multiAPIVersion = "1.0.0"
	metadataExtKey  = "x-export-metadata"
	swaggerVersion  = "2.0"
	openAPIVersion  = "3.0.3"

	defaultResponseDescription = "Default response"
	oauthTokenPath             = "/oauth/token"
)

var pathParamRe = regexp.MustCompile(`\{([^}/]+)\}`)

// Encode writes every (api, endpoint) pair as an operation of one document.
func (c *openAPICodec) Encode(p *Payload, l *Ledger) ([]byte, error) {
	if err := checkEncodable(c.format, p.APIs); err != nil {
		return nil, err
	}
	if err := checkUniqueOperations(c.format, p.APIs); err != nil {
		return nil, err
	}
	for i := range p.APIs {
		reportDroppedSpecFields(c.format, &p.APIs[i], len(p.APIs) > 1, l)
	}

	var (
		out any
		err error
	)
	if c.format == FormatSwagger {
		out, err = c.swaggerDocument(p, l)
	} else {
		out, err = c.openAPI3Document(p, l)
	}
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, &EncodeError{Format: c.format, Reason: "cannot render document", Cause: err}
	}
	return append(data, '\n'), nil
}

// checkUniqueOperations fails when two endpoints map to the same operation slot.
func checkUniqueOperations(format Format, apis []catalog.API) error {
	owner := make(map[string]string)
	for i := range apis {
		for _, ep := range apis[i].Endpoints {
			key := string(ep.Method) + " " + ep.Path
			if prev, ok := owner[key]; ok {
				return &EncodeError{Format: format, Reason: fmt.Sprintf("%s is defined by both %s and %s/%s", key, prev, apis[i].ID, ep.ID)}
			}
			owner[key] = apis[i].ID + "/" + ep.ID
		}
	}
	return nil
}

// reportDroppedSpecFields records catalogue fields OpenAPI has no place for.
func reportDroppedSpecFields(format Format, api *catalog.API, multi bool, l *Ledger) {
	var dropped []string
	add := func(set bool, name string) {
		if set {
			dropped = append(dropped, name)
		}
	}
	if multi {
		add(api.Version != "", "version")
		add(api.Description != "", "description")
		add(api.Provider != nil, "provider")
		add(len(api.Categories) > 0, "categories")
	}
	add(api.Logo != "", "logo")
	add(api.Pricing != nil, "pricing")
	add(api.Status != nil, "status")
	add(api.Stats != nil, "stats")
	add(api.Documentation != nil, "documentation")
	add(api.RateLimit != nil, "rateLimit")
	add(len(api.Tags) > 0, "tags")
	add(!api.LastUpdated.IsZero(), "lastUpdated")
	add(api.Popularity != 0, "popularity")
	add(api.Rating != nil, "rating")
	for _, ep := range api.Endpoints {
		if len(ep.Examples) > 0 {
			add(true, "endpoint examples")
			break
		}
	}
	if len(dropped) > 0 {
		l.Warn(WarnFieldDropped, api.ID, "%s cannot hold %s", format, strings.Join(dropped, ", "))
	}
}

// docInfo is the document level information for one or many APIs.
func docInfo(apis []catalog.API) *openapi3.Info {
	if len(apis) != 1 {
		return &openapi3.Info{Title: multiAPITitle, Version: multiAPIVersion}
	}
	api := apis[0]
	info := &openapi3.Info{Title: api.Name, Version: api.Version, Description: api.Description}
	if info.Version == "" {
		info.Version = multiAPIVersion
	}
	if pv := api.Provider; pv != nil {
		info.Contact = &openapi3.Contact{Name: pv.Name, URL: pv.Website, Email: pv.Email}
	}
	return info
}

func docTags(apis []catalog.API) openapi3.Tags {
	var tags openapi3.Tags
	if len(apis) == 1 {
		for _, c := range apis[0].Categories {
			tags = append(tags, &openapi3.Tag{Name: c})
		}
		return tags
	}
	for _, api := range apis {
		tags = append(tags, &openapi3.Tag{Name: api.Name, Description: api.Description})
	}
	return tags
}

// operationTags groups operations by API when several share a document.
func operationTags(apis []catalog.API, api *catalog.API) []string {
	if len(apis) == 1 {
		return nil
	}
	return []string{api.Name}
}

func operationID(apis []catalog.API, api *catalog.API, ep *catalog.Endpoint) string {
	if len(apis) == 1 {
		return ep.ID
	}
	return api.ID + "." + ep.ID
}

// schemeName names the security scheme of api in the exported document.
func schemeName(apis []catalog.API, api *catalog.API) string {
	kind := "apiKey"
	if api.Authentication.Type == catalog.AuthOAuth {
		kind = "oauth2"
	}
	if len(apis) == 1 {
		return kind
	}
	return api.ID + "_" + kind
}

// hasScheme reports whether api needs a security scheme in the document.
func hasScheme(api *catalog.API) bool {
	return api.Authentication.Type == catalog.AuthAPIKey || api.Authentication.Type == catalog.AuthOAuth
}

// warnDefaultResponse records that ep declared no responses; both document
// formats require at least one.
func warnDefaultResponse(api *catalog.API, ep *catalog.Endpoint, l *Ledger) {
	l.Warn(WarnDefaulted, api.ID, "%s %s: no responses, wrote a %q response", ep.Method, ep.Path, "default")
}

// inPath reports whether name is a template segment of path.
func inPath(path, name string) bool {
	for _, m := range pathParamRe.FindAllStringSubmatch(path, -1) {
		if m[1] == name {
			return true
		}
	}
	return false
}

// exportParam prepares a parameter for a document that requires a type and
// marks path parameters required.
func exportParam(api *catalog.API, ep *catalog.Endpoint, p catalog.Parameter, l *Ledger) (catalog.Parameter, string) {
	in := "query"
	if inPath(ep.Path, p.Name) {
		in = "path"
		if !p.Required {
			p.Required = true
			l.Warn(WarnDefaulted, api.ID, "%s %s: path parameter %q marked required", ep.Method, ep.Path, p.Name)
		}
	}
	l.Fill(api.ID, fmt.Sprintf("%s %s parameter %s type", ep.Method, ep.Path, p.Name), &p.Type, "string")
	return p, in
}

// exportParams returns ep's parameters prepared for export, followed by a
// string parameter for every path template segment ep does not declare.
func exportParams(api *catalog.API, ep *catalog.Endpoint, l *Ledger) ([]catalog.Parameter, []string) {
	params := make([]catalog.Parameter, 0, len(ep.Parameters))
	locations := make([]string, 0, len(ep.Parameters))
	declared := make(map[string]bool, len(ep.Parameters))
	for _, p := range ep.Parameters {
		p, in := exportParam(api, ep, p, l)
		params = append(params, p)
		locations = append(locations, in)
		declared[p.Name] = true
	}
	for _, m := range pathParamRe.FindAllStringSubmatch(ep.Path, -1) {
		if declared[m[1]] {
			continue
		}
		declared[m[1]] = true
		l.Warn(WarnDefaulted, api.ID, "%s %s: path parameter %q not declared, added as a string", ep.Method, ep.Path, m[1])
		params = append(params, catalog.Parameter{Name: m[1], Type: "string", Required: true})
		locations = append(locations, "path")
	}
	return params, locations
}

func anyOptions(opts []string) []any {
	if len(opts) == 0 {
		return nil
	}
	out := make([]any, len(opts))
	for i, o := range opts {
		out[i] = o
	}
	return out
}

func sortedCodes(responses map[int]catalog.Response) []int {
	codes := make([]int, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// sharedBaseURL returns the base URL when every API uses the same one.
func sharedBaseURL(apis []catalog.API) (string, bool) {
	if len(apis) == 0 {
		return "", true
	}
	base := apis[0].BaseURL
	for _, api := range apis[1:] {
		if api.BaseURL != base {
			return "", false
		}
	}
	return base, true
}

// --- Swagger 2.0 ---

func (c *openAPICodec) swaggerDocument(p *Payload, l *Ledger) (*openapi2.T, error) {
	doc := &openapi2.T{
		Extensions: map[string]any{metadataExtKey: p.Metadata},
		Swagger:    swaggerVersion,
		Info:       *docInfo(p.APIs),
		Tags:       docTags(p.APIs),
		Paths:      make(map[string]*openapi2.PathItem),
	}

	if base, shared := sharedBaseURL(p.APIs); shared {
		if err := c.setSwaggerHost(doc, base); err != nil {
			return nil, err
		}
	} else {
		for i := range p.APIs {
			if p.APIs[i].BaseURL != "" {
				l.Warn(WarnFieldDropped, p.APIs[i].ID, "swagger holds a single host, baseUrl %q dropped", p.APIs[i].BaseURL)
			}
		}
	}

	for i := range p.APIs {
		api := &p.APIs[i]
		var security *openapi2.SecurityRequirements
		if hasScheme(api) {
			name := schemeName(p.APIs, api)
			if doc.SecurityDefinitions == nil {
				doc.SecurityDefinitions = make(map[string]*openapi2.SecurityScheme)
			}
			doc.SecurityDefinitions[name] = swaggerScheme(api, l)
			req := openapi2.SecurityRequirements{{name: []string{}}}
			if len(p.APIs) == 1 {
				doc.Security = req
			} else {
				security = &req
			}
		}

		for j := range api.Endpoints {
			ep := &api.Endpoints[j]
			op := &openapi2.Operation{
				Summary:     ep.Name,
				Description: ep.Description,
				Tags:        operationTags(p.APIs, api),
				OperationID: operationID(p.APIs, api, ep),
				Responses:   make(map[string]*openapi2.Response, len(ep.Responses)),
				Security:    security,
			}
			params, locations := exportParams(api, ep, l)
			for k, param := range params {
				op.Parameters = append(op.Parameters, &openapi2.Parameter{
					In:          locations[k],
					Name:        param.Name,
					Description: param.Description,
					Type:        &openapi3.Types{param.Type},
					Required:    param.Required,
					Enum:        anyOptions(param.Options),
					Default:     param.Default,
				})
			}
			for _, code := range sortedCodes(ep.Responses) {
				r := ep.Responses[code]
				resp := &openapi2.Response{Description: r.Description}
				if r.Example != nil {
					resp.Examples = map[string]any{"application/json": r.Example}
				}
				op.Responses[strconv.Itoa(code)] = resp
			}
			if len(ep.Responses) == 0 {
				op.Responses["default"] = &openapi2.Response{Description: defaultResponseDescription}
				warnDefaultResponse(api, ep, l)
			}

			item := doc.Paths[ep.Path]
			if item == nil {
				item = &openapi2.PathItem{}
				doc.Paths[ep.Path] = item
			}
			item.SetOperation(string(ep.Method), op)
		}
	}
	return doc, nil
}

func (c *openAPICodec) setSwaggerHost(doc *openapi2.T, base string) error {
	if base == "" {
		return nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return &EncodeError{Format: c.format, Reason: fmt.Sprintf("invalid baseUrl %q", base), Cause: err}
	}
	if u.Host == "" {
		// No scheme, e.g. "api.example.com/v1".
		u, err = url.Parse("//" + base)
		if err != nil {
			return &EncodeError{Format: c.format, Reason: fmt.Sprintf("invalid baseUrl %q", base), Cause: err}
		}
	} else if u.Scheme != "" {
		doc.Schemes = []string{u.Scheme}
	}
	doc.Host = u.Host
	doc.BasePath = u.Path
	return nil
}

// swaggerScheme describes api's authentication. Swagger 2 oauth2 needs a
// flow with a URL, so OAuth is written as an application flow whose token
// URL sits under the base URL.
func swaggerScheme(api *catalog.API, l *Ledger) *openapi2.SecurityScheme {
	if api.Authentication.Type == catalog.AuthOAuth {
		tokenURL := strings.TrimSuffix(api.BaseURL, "/") + oauthTokenPath
		l.Default(api.ID, "authentication.tokenUrl", tokenURL)
		return &openapi2.SecurityScheme{
			Type:        "oauth2",
			Flow:        "application",
			TokenURL:    tokenURL,
			Description: api.Authentication.Instructions,
		}
	}
	return &openapi2.SecurityScheme{
		Type:        "apiKey",
		In:          string(api.Authentication.Location),
		Name:        keyParamName(api, l),
		Description: api.Authentication.Instructions,
	}
}

// openAPI3Scheme describes api's authentication. OAuth carries no flow
// details in the catalogue, so the flows object stays empty.
func openAPI3Scheme(api *catalog.API, l *Ledger) *openapi3.SecurityScheme {
	if api.Authentication.Type == catalog.AuthOAuth {
		return &openapi3.SecurityScheme{
			Type:        "oauth2",
			Description: api.Authentication.Instructions,
			Flows:       &openapi3.OAuthFlows{},
		}
	}
	return &openapi3.SecurityScheme{
		Type:        "apiKey",
		In:          string(api.Authentication.Location),
		Name:        keyParamName(api, l),
		Description: api.Authentication.Instructions,
	}
}

func keyParamName(api *catalog.API, l *Ledger) string {
	name := api.Authentication.ParamName
	l.Fill(api.ID, "authentication.paramName", &name, "api_key")
	return name
}

// --- OpenAPI 3.0 ---

func (c *openAPICodec) openAPI3Document(p *Payload, l *Ledger) (*openapi3.T, error) {
	doc := &openapi3.T{
		Extensions: map[string]any{metadataExtKey: p.Metadata},
		OpenAPI:    openAPIVersion,
		Info:       docInfo(p.APIs),
		Tags:       docTags(p.APIs),
		Paths:      openapi3.NewPaths(),
	}

	base, shared := sharedBaseURL(p.APIs)
	if shared && base != "" {
		doc.Servers = openapi3.Servers{{URL: base}}
	}

	for i := range p.APIs {
		api := &p.APIs[i]
		var security *openapi3.SecurityRequirements
		if hasScheme(api) {
			name := schemeName(p.APIs, api)
			if doc.Components == nil {
				doc.Components = &openapi3.Components{SecuritySchemes: openapi3.SecuritySchemes{}}
			}
			doc.Components.SecuritySchemes[name] = &openapi3.SecuritySchemeRef{Value: openAPI3Scheme(api, l)}
			req := openapi3.SecurityRequirements{{name: []string{}}}
			if len(p.APIs) == 1 {
				doc.Security = req
			} else {
				security = &req
			}
		}

		var servers *openapi3.Servers
		if !shared && api.BaseURL != "" {
			servers = &openapi3.Servers{{URL: api.BaseURL}}
		}

		for j := range api.Endpoints {
			ep := &api.Endpoints[j]
			op := &openapi3.Operation{
				Summary:     ep.Name,
				Description: ep.Description,
				Tags:        operationTags(p.APIs, api),
				OperationID: operationID(p.APIs, api, ep),
				Responses:   openapi3.NewResponsesWithCapacity(len(ep.Responses)),
				Security:    security,
				Servers:     servers,
			}
			params, locations := exportParams(api, ep, l)
			for k, param := range params {
				schema := &openapi3.Schema{
					Type:    &openapi3.Types{param.Type},
					Enum:    anyOptions(param.Options),
					Default: param.Default,
				}
				op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: &openapi3.Parameter{
					Name:        param.Name,
					In:          locations[k],
					Description: param.Description,
					Required:    param.Required,
					Schema:      &openapi3.SchemaRef{Value: schema},
				}})
			}
			for _, code := range sortedCodes(ep.Responses) {
				r := ep.Responses[code]
				resp := openapi3.NewResponse().WithDescription(r.Description)
				if r.Example != nil {
					resp.Content = openapi3.Content{"application/json": &openapi3.MediaType{Example: r.Example}}
				}
				op.Responses.Set(strconv.Itoa(code), &openapi3.ResponseRef{Value: resp})
			}
			if len(ep.Responses) == 0 {
				op.Responses.Set("default", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(defaultResponseDescription)})
				warnDefaultResponse(api, ep, l)
			}

			item := doc.Paths.Value(ep.Path)
			if item == nil {
				item = &openapi3.PathItem{}
				doc.Paths.Set(ep.Path, item)
			}
			item.SetOperation(string(ep.Method), op)
		}
	}
	return doc, nil
}
