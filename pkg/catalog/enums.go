package catalog

import "strings"

// Method is an HTTP verb supported by the catalogue.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

// Methods lists the supported verbs in their canonical order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch}

// Valid reports whether m is one of the supported verbs, in upper case.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch:
		return true
	}
	return false
}

// ParseMethod normalises s to upper case and reports whether it is supported.
// The normalised value is returned even when it is not supported so callers can
// report it.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	return m, m.Valid()
}

// AuthType is the authentication scheme of an API.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthAPIKey AuthType = "apiKey"
	AuthOAuth  AuthType = "OAuth"
)

// ParseAuthType accepts the canonical spellings case-insensitively.
func ParseAuthType(s string) (AuthType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return AuthNone, true
	case "apikey":
		return AuthAPIKey, true
	case "oauth":
		return AuthOAuth, true
	}
	return AuthType(s), false
}

// KeyLocation is where an API key is sent.
type KeyLocation string

const (
	KeyInQuery  KeyLocation = "query"
	KeyInHeader KeyLocation = "header"
)

// ParseKeyLocation accepts "query" or "header" case-insensitively.
func ParseKeyLocation(s string) (KeyLocation, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "query":
		return KeyInQuery, true
	case "header":
		return KeyInHeader, true
	}
	return KeyLocation(s), false
}
