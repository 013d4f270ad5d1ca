package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/UfukSeker41/api-controller/internal/id"
	"github.com/UfukSeker41/api-controller/pkg/catalog"
)

// postmanSchemaV21 is written into exported collections.
const postmanSchemaV21 = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

// Postman Collection v2.1 types. Several fields accept more than one JSON
// shape, as Postman itself writes them.

type postmanCollection struct {
	Info     postmanInfo       `json:"info"`
	Item     []postmanItem     `json:"item"`
	Auth     *postmanAuth      `json:"auth,omitempty"`
	Variable []postmanVariable `json:"variable,omitempty"`
}

type postmanInfo struct {
	PostmanID   string          `json:"_postman_id,omitempty"`
	Name        string          `json:"name"`
	Description postmanText     `json:"description,omitempty"`
	Version     json.RawMessage `json:"version,omitempty"`
	Schema      string          `json:"schema"`
}

// postmanItem is a request or, when Item is set, a folder.
type postmanItem struct {
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name"`
	Description postmanText       `json:"description,omitempty"`
	Request     *postmanRequest   `json:"request,omitempty"`
	Response    []postmanResponse `json:"response,omitempty"`
	Item        []postmanItem     `json:"item,omitempty"`
}

type postmanRequest struct {
	Method      string          `json:"method"`
	URL         postmanURL      `json:"url"`
	Header      []postmanHeader `json:"header,omitempty"`
	Body        *postmanBody    `json:"body,omitempty"`
	Auth        *postmanAuth    `json:"auth,omitempty"`
	Description postmanText     `json:"description,omitempty"`
}

// UnmarshalJSON accepts the short form where a request is just its URL.
func (r *postmanRequest) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*r = postmanRequest{Method: "GET", URL: postmanURL{Raw: raw}}
		return nil
	}
	type requestBis postmanRequest
	var x requestBis
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	*r = postmanRequest(x)
	return nil
}

type postmanURL struct {
	Raw      string            `json:"raw,omitempty"`
	Protocol string            `json:"protocol,omitempty"`
	Host     stringList        `json:"host,omitempty"`
	Path     stringList        `json:"path,omitempty"`
	Query    []postmanQuery    `json:"query,omitempty"`
	Variable []postmanVariable `json:"variable,omitempty"`
}

// UnmarshalJSON accepts a URL written as a plain string.
func (u *postmanURL) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*u = postmanURL{Raw: raw}
		return nil
	}
	type urlBis postmanURL
	var x urlBis
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	*u = postmanURL(x)
	return nil
}

type postmanQuery struct {
	Key         string      `json:"key"`
	Value       string      `json:"value"`
	Description postmanText `json:"description,omitempty"`
	Disabled    bool        `json:"disabled,omitempty"`
}

type postmanHeader struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

type postmanBody struct {
	Mode string `json:"mode"`
	Raw  string `json:"raw,omitempty"`
}

type postmanAuth struct {
	Type   string      `json:"type"`
	APIKey []postmanKV `json:"apikey,omitempty"`
	OAuth2 []postmanKV `json:"oauth2,omitempty"`
}

// authParam returns the value stored under key in a list of auth settings.
func authParam(kvs []postmanKV, key string) (string, bool) {
	for _, kv := range kvs {
		if kv.Key == key {
			return fmt.Sprint(kv.Value), kv.Value != nil
		}
	}
	return "", false
}

type postmanKV struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	Type  string `json:"type,omitempty"`
}

type postmanResponse struct {
	ID              string          `json:"id,omitempty"`
	Name            string          `json:"name"`
	OriginalRequest *postmanRequest `json:"originalRequest,omitempty"`
	Status          string          `json:"status,omitempty"`
	Code            int             `json:"code,omitempty"`
	Header          []postmanHeader `json:"header,omitempty"`
	Body            string          `json:"body,omitempty"`
}

type postmanVariable struct {
	Key         string      `json:"key"`
	Value       any         `json:"value,omitempty"`
	Description postmanText `json:"description,omitempty"`
}

// postmanText is a description, written either as a string or as
// {"content": "...", "type": "text/markdown"}.
type postmanText string

func (t *postmanText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = postmanText(s)
		return nil
	}
	var obj struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = postmanText(obj.Content)
	return nil
}

// stringList is a host or path, written either as one string or as a list
// whose elements are strings or {"value": "..."} objects.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = stringList{one}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(stringList, 0, len(items))
	for _, item := range items {
		var str string
		if err := json.Unmarshal(item, &str); err == nil {
			out = append(out, str)
			continue
		}
		var obj struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		out = append(out, obj.Value)
	}
	*s = out
	return nil
}

// postmanCodec reads and writes Postman Collection v2.1 documents.
type postmanCodec struct{}

// NewPostmanCodec returns the codec for Postman collections.
func NewPostmanCodec() Codec {
	return &postmanCodec{}
}

// Format returns FormatPostman.
func (c *postmanCodec) Format() Format {
	return FormatPostman
}

// Decode turns a collection into a single API with one endpoint per request.
func (c *postmanCodec) Decode(data []byte, l *Ledger) (*Decoded, error) {
	var col postmanCollection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, syntaxError(FormatPostman, data, "failed to parse Postman Collection", err)
	}
	if col.Info.Schema == "" || !strings.Contains(col.Info.Schema, "postman") {
		return nil, &DecodeError{Format: FormatPostman, Reason: "not a valid Postman Collection v2.x"}
	}

	variables := make(map[string]string, len(col.Variable))
	for _, v := range col.Variable {
		if v.Value != nil {
			variables[v.Key] = fmt.Sprint(v.Value)
		}
	}

	api := catalog.API{
		Name:        strings.TrimSpace(col.Info.Name),
		Description: string(col.Info.Description),
	}
	if api.Name == "" {
		api.Name = "Untitled Collection"
		l.Default(id.Slug(api.Name), "info.name", api.Name)
	}
	api.ID = col.Info.PostmanID
	if api.ID == "" {
		api.ID = id.Slug(api.Name)
	}
	api.Version = postmanVersion(col.Info.Version)
	l.Fill(api.ID, "info.version", &api.Version, "1.0.0")

	var requests []postmanItem
	flattenItems(col.Item, &requests)

	auth := col.Auth
	hostSet := false
	for _, item := range requests {
		ep, base := c.endpoint(item, variables, l, api.ID)
		switch {
		case !hostSet:
			api.BaseURL = base
			hostSet = true
		case base != api.BaseURL:
			l.Warn(WarnMixedHost, api.ID, "request %q targets %q, collection base is %q", item.Name, base, api.BaseURL)
		}
		if auth == nil && item.Request.Auth != nil {
			auth = item.Request.Auth
		}
		api.Endpoints = append(api.Endpoints, ep)
	}

	authentication, err := c.auth(api.ID, auth, l)
	if err != nil {
		return nil, err
	}
	api.Authentication = authentication

	apis := []catalog.API{api}
	if err := finalize(FormatPostman, apis, l); err != nil {
		return nil, err
	}
	return &Decoded{APIs: apis}, nil
}

// postmanVersion reads info.version, a string or {major, minor, patch}.
func postmanVersion(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var semver struct {
		Major *int `json:"major"`
		Minor *int `json:"minor"`
		Patch *int `json:"patch"`
	}
	if err := json.Unmarshal(raw, &semver); err != nil || semver.Major == nil {
		return ""
	}
	minor, patch := 0, 0
	if semver.Minor != nil {
		minor = *semver.Minor
	}
	if semver.Patch != nil {
		patch = *semver.Patch
	}
	return fmt.Sprintf("%d.%d.%d", *semver.Major, minor, patch)
}

// flattenItems collects requests depth-first, descending into folders.
func flattenItems(items []postmanItem, out *[]postmanItem) {
	for _, item := range items {
		if len(item.Item) > 0 {
			flattenItems(item.Item, out)
			continue
		}
		if item.Request == nil {
			continue
		}
		*out = append(*out, item)
	}
}

// substituteVariables replaces Postman variables {{var}} with their values.
func substituteVariables(s string, variables map[string]string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	result := s
	for key, value := range variables {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// endpoint converts one request item and returns it with the base URL the
// request targets.
func (c *postmanCodec) endpoint(item postmanItem, variables map[string]string, l *Ledger, apiID string) (catalog.Endpoint, string) {
	req := item.Request
	method := req.Method
	if method == "" {
		method = "GET"
		l.Default(apiID, "request "+item.Name+" method", method)
	}

	base, segments, query := splitPostmanURL(req.URL, variables)

	var params []catalog.Parameter
	seen := make(map[string]bool)
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") || len(seg) < 2 {
			continue
		}
		name := seg[1:]
		segments[i] = "{" + name + "}"
		if seen[name] {
			continue
		}
		seen[name] = true
		param := catalog.Parameter{Name: name, Required: true}
		for _, v := range req.URL.Variable {
			if v.Key == name {
				param.Description = string(v.Description)
				if v.Value != nil && fmt.Sprint(v.Value) != "" {
					param.Default = fmt.Sprint(v.Value)
				}
			}
		}
		params = append(params, param)
	}
	for _, q := range query {
		param := catalog.Parameter{Name: q.Key, Description: string(q.Description)}
		if q.Value != "" {
			param.Default = q.Value
		}
		params = append(params, param)
	}

	path := "/" + strings.Join(segments, "/")
	desc := string(req.Description)
	if desc == "" {
		desc = string(item.Description)
	}

	ep := catalog.Endpoint{
		ID:          id.EndpointID(path, method),
		Name:        strings.TrimSpace(item.Name),
		Method:      catalog.Method(method),
		Path:        path,
		Description: desc,
		Parameters:  params,
	}

	for _, resp := range item.Response {
		body := parseBody(substituteVariables(resp.Body, variables))
		if resp.Code > 0 {
			if ep.Responses == nil {
				ep.Responses = make(map[int]catalog.Response)
			}
			if _, dup := ep.Responses[resp.Code]; !dup {
				ep.Responses[resp.Code] = catalog.Response{Description: resp.Name, Example: body}
			}
		}
		if orig := resp.OriginalRequest; orig != nil {
			ex := catalog.Example{Title: resp.Name, Response: body}
			ex.Request.URL = postmanRawURL(orig.URL, variables)
			for _, h := range orig.Header {
				if h.Disabled {
					continue
				}
				if ex.Request.Headers == nil {
					ex.Request.Headers = make(map[string]string)
				}
				ex.Request.Headers[h.Key] = substituteVariables(h.Value, variables)
			}
			ep.Examples = append(ep.Examples, ex)
		}
	}
	return ep, base
}

// splitPostmanURL returns the base URL, the path segments and the enabled
// query entries of u.
func splitPostmanURL(u postmanURL, variables map[string]string) (string, []string, []postmanQuery) {
	var query []postmanQuery
	for _, q := range u.Query {
		if q.Disabled {
			continue
		}
		q.Value = substituteVariables(q.Value, variables)
		query = append(query, q)
	}

	if len(u.Host) > 0 || len(u.Path) > 0 {
		hosts := make([]string, len(u.Host))
		for i, h := range u.Host {
			hosts[i] = substituteVariables(h, variables)
		}
		base := strings.Join(hosts, ".")
		if u.Protocol != "" && base != "" && !strings.Contains(base, "://") {
			base = u.Protocol + "://" + base
		}
		var segments []string
		for _, p := range u.Path {
			for _, seg := range strings.Split(substituteVariables(p, variables), "/") {
				if seg != "" {
					segments = append(segments, seg)
				}
			}
		}
		return strings.TrimSuffix(base, "/"), segments, query
	}

	raw := substituteVariables(u.Raw, variables)
	rawPath, rawQuery, _ := strings.Cut(raw, "?")
	base := ""
	if parsed, err := url.Parse(rawPath); err == nil && parsed.Host != "" {
		base = parsed.Scheme + "://" + parsed.Host
		rawPath = parsed.Path
	} else if host, rest, ok := leadingVariable(rawPath); ok {
		base, rawPath = host, rest
	}
	if query == nil && rawQuery != "" {
		if values, err := url.ParseQuery(rawQuery); err == nil {
			for _, key := range sortedKeys(values) {
				query = append(query, postmanQuery{Key: key, Value: values.Get(key)})
			}
		}
	}
	var segments []string
	for _, seg := range strings.Split(rawPath, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return base, segments, query
}

// leadingVariable splits an unresolved variable standing for the host, as in
// "{{baseUrl}}/users", from the rest of a raw URL.
func leadingVariable(raw string) (string, string, bool) {
	if !strings.HasPrefix(raw, "{{") {
		return "", "", false
	}
	end := strings.Index(raw, "}}")
	if end < 0 {
		return "", "", false
	}
	host, rest := raw[:end+2], raw[end+2:]
	if rest != "" && rest[0] != '/' {
		return "", "", false
	}
	return host, rest, true
}

// postmanRawURL renders u back into a single URL string.
func postmanRawURL(u postmanURL, variables map[string]string) string {
	if u.Raw != "" {
		return substituteVariables(u.Raw, variables)
	}
	base, segments, query := splitPostmanURL(u, variables)
	out := base + "/" + strings.Join(segments, "/")
	if len(query) > 0 {
		v := url.Values{}
		for _, q := range query {
			v.Add(q.Key, q.Value)
		}
		out += "?" + v.Encode()
	}
	return out
}

// parseBody returns the JSON value of body, or body itself when it is not JSON.
func parseBody(body string) any {
	trimmed := bytes.TrimSpace([]byte(body))
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err == nil {
		return v
	}
	return body
}

func (c *postmanCodec) auth(apiID string, a *postmanAuth, l *Ledger) (catalog.Authentication, error) {
	none := catalog.Authentication{Type: catalog.AuthNone}
	if a == nil {
		return none, nil
	}
	switch strings.ToLower(a.Type) {
	case "", "noauth":
		return none, nil
	case "apikey":
		in, ok := authParam(a.APIKey, "in")
		if !ok || in == "" {
			return none, &DecodeError{Format: FormatPostman, Reason: "apikey authentication without a location"}
		}
		loc, ok := catalog.ParseKeyLocation(in)
		if !ok {
			return none, &DecodeError{Format: FormatPostman, Reason: fmt.Sprintf("apikey authentication in unsupported location %q", in)}
		}
		name, _ := authParam(a.APIKey, "key")
		return catalog.Authentication{Type: catalog.AuthAPIKey, Location: loc, ParamName: name}, nil
	case "oauth1", "oauth2":
		return catalog.Authentication{Type: catalog.AuthOAuth}, nil
	default:
		l.Warn(WarnAuthUnsupported, apiID, "postman auth type %q not supported", a.Type)
		return none, nil
	}
}
