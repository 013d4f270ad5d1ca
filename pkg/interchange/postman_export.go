package interchange

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/UfukSeker41/api-controller/internal/id"
	"github.com/UfukSeker41/api-controller/pkg/catalog"
)

const multiAPICollection = "API Collection"

// Encode writes one flat request item per endpoint of every API.
func (c *postmanCodec) Encode(p *Payload, l *Ledger) ([]byte, error) {
	if err := checkEncodable(FormatPostman, p.APIs); err != nil {
		return nil, err
	}

	apiIDs := make([]string, 0, len(p.APIs)+1)
	apiIDs = append(apiIDs, "postman")
	for i := range p.APIs {
		apiIDs = append(apiIDs, p.APIs[i].ID)
		reportDroppedPostmanFields(&p.APIs[i], len(p.APIs) > 1, l)
	}

	col := postmanCollection{
		Info: postmanInfo{
			PostmanID: id.Stable(apiIDs...),
			Name:      multiAPICollection,
			Schema:    postmanSchemaV21,
		},
		Item: []postmanItem{},
	}
	if len(p.APIs) == 1 {
		api := p.APIs[0]
		col.Info.Name = api.Name
		col.Info.Description = postmanText(api.Description)
		if api.Version != "" {
			version, _ := json.Marshal(api.Version)
			col.Info.Version = version
		}
	}

	shared, sameAuth := sharedAuth(p.APIs)
	if sameAuth {
		col.Auth = encodePostmanAuth(shared)
	}

	for i := range p.APIs {
		api := &p.APIs[i]
		var reqAuth *postmanAuth
		if !sameAuth {
			reqAuth = encodePostmanAuth(api.Authentication)
		}
		for j := range api.Endpoints {
			col.Item = append(col.Item, postmanRequestItem(api, &api.Endpoints[j], reqAuth))
		}
	}

	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return nil, &EncodeError{Format: FormatPostman, Reason: "cannot render collection", Cause: err}
	}
	return append(data, '\n'), nil
}

// reportDroppedPostmanFields records catalogue fields a collection cannot hold.
func reportDroppedPostmanFields(api *catalog.API, multi bool, l *Ledger) {
	var dropped []string
	add := func(set bool, name string) {
		if set {
			dropped = append(dropped, name)
		}
	}
	if multi {
		add(api.Name != "", "name")
		add(api.Version != "", "version")
		add(api.Description != "", "description")
	}
	add(api.Logo != "", "logo")
	add(api.Provider != nil, "provider")
	add(len(api.Categories) > 0, "categories")
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
		if hasParamDetail(ep.Parameters) {
			add(true, "parameter types")
			break
		}
	}
	if len(dropped) > 0 {
		l.Warn(WarnFieldDropped, api.ID, "%s cannot hold %s", FormatPostman, strings.Join(dropped, ", "))
	}
}

func hasParamDetail(params []catalog.Parameter) bool {
	for _, p := range params {
		if p.Type != "" || len(p.Options) > 0 {
			return true
		}
	}
	return false
}

// sharedAuth returns the authentication when all APIs use the same one.
func sharedAuth(apis []catalog.API) (catalog.Authentication, bool) {
	if len(apis) == 0 {
		return catalog.Authentication{Type: catalog.AuthNone}, true
	}
	first := apis[0].Authentication
	for _, api := range apis[1:] {
		a := api.Authentication
		if a.Type != first.Type || a.Location != first.Location || a.ParamName != first.ParamName {
			return catalog.Authentication{}, false
		}
	}
	return first, true
}

func encodePostmanAuth(a catalog.Authentication) *postmanAuth {
	switch a.Type {
	case catalog.AuthAPIKey:
		name := a.ParamName
		if name == "" {
			name = "api_key"
		}
		return &postmanAuth{
			Type: "apikey",
			APIKey: []postmanKV{
				{Key: "key", Value: name, Type: "string"},
				{Key: "value", Value: "{{apiKey}}", Type: "string"},
				{Key: "in", Value: string(a.Location), Type: "string"},
			},
		}
	case catalog.AuthOAuth:
		return &postmanAuth{
			Type:   "oauth2",
			OAuth2: []postmanKV{{Key: "addTokenTo", Value: "header", Type: "string"}},
		}
	default:
		return nil
	}
}

// postmanRequestItem renders ep as a request item against api's base URL.
func postmanRequestItem(api *catalog.API, ep *catalog.Endpoint, auth *postmanAuth) postmanItem {
	u := postmanURL{}
	var segments []string
	for _, seg := range strings.Split(ep.Path, "/") {
		if seg == "" {
			continue
		}
		if m := pathParamRe.FindStringSubmatch(seg); m != nil && m[0] == seg {
			seg = ":" + m[1]
		}
		segments = append(segments, seg)
	}
	u.Path = segments
	if api.BaseURL != "" {
		u.Host = stringList{api.BaseURL}
	}

	query := url.Values{}
	for _, p := range ep.Parameters {
		value := ""
		if p.Default != nil {
			value = stringify(p.Default)
		}
		if inPath(ep.Path, p.Name) {
			u.Variable = append(u.Variable, postmanVariable{Key: p.Name, Value: value, Description: postmanText(p.Description)})
			continue
		}
		u.Query = append(u.Query, postmanQuery{Key: p.Name, Value: value, Description: postmanText(p.Description)})
		query.Add(p.Name, value)
	}
	u.Raw = api.BaseURL + "/" + strings.Join(segments, "/")
	if len(u.Query) > 0 {
		u.Raw += "?" + query.Encode()
	}

	item := postmanItem{
		ID:   id.Stable(api.ID, ep.ID),
		Name: ep.Name,
		Request: &postmanRequest{
			Method:      string(ep.Method),
			URL:         u,
			Auth:        auth,
			Description: postmanText(ep.Description),
		},
	}

	for _, code := range sortedCodes(ep.Responses) {
		resp := ep.Responses[code]
		item.Response = append(item.Response, postmanResponse{
			Name:   resp.Description,
			Status: http.StatusText(code),
			Code:   code,
			Header: jsonHeader(resp.Example),
			Body:   renderBody(resp.Example),
		})
	}
	for _, ex := range ep.Examples {
		orig := &postmanRequest{Method: string(ep.Method), URL: postmanURL{Raw: ex.Request.URL}}
		keys := make([]string, 0, len(ex.Request.Headers))
		for k := range ex.Request.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			orig.Header = append(orig.Header, postmanHeader{Key: k, Value: ex.Request.Headers[k]})
		}
		item.Response = append(item.Response, postmanResponse{
			Name:            ex.Title,
			OriginalRequest: orig,
			Header:          jsonHeader(ex.Response),
			Body:            renderBody(ex.Response),
		})
	}
	return item
}

// stringify renders a parameter default as Postman stores it.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// renderBody writes an example as a response body: strings as is, anything
// else as indented JSON.
func renderBody(v any) string {
	switch body := v.(type) {
	case nil:
		return ""
	case string:
		return body
	default:
		data, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func jsonHeader(v any) []postmanHeader {
	switch v.(type) {
	case nil, string:
		return nil
	}
	return []postmanHeader{{Key: "Content-Type", Value: ContentTypeJSON}}
}
