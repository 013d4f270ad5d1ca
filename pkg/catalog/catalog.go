// Package catalog defines the canonical model of an API catalogue entry.
//
// Every interchange format is decoded into these types and encoded from them.
// The model carries both the technical surface of an API (endpoints, parameters,
// responses, authentication) and the catalogue metadata shown on a dashboard
// (pricing, status, usage statistics, documentation, ratings).
//
// Optional groups are pointers so a decoder that has nothing to say about them
// leaves them nil instead of fabricating empty values.
package catalog

import "time"

// API is one catalogued API.
type API struct {
	// ID is unique within an import batch.
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Version     string   `json:"version,omitempty" yaml:"version,omitempty"`
	BaseURL     string   `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Categories  []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Logo        string   `json:"logo,omitempty" yaml:"logo,omitempty"`

	Provider       *Provider      `json:"provider,omitempty" yaml:"provider,omitempty"`
	Authentication Authentication `json:"authentication" yaml:"authentication"`
	Endpoints      []Endpoint     `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`

	Pricing       *Pricing       `json:"pricing,omitempty" yaml:"pricing,omitempty"`
	Status        *Status        `json:"status,omitempty" yaml:"status,omitempty"`
	Stats         *Stats         `json:"stats,omitempty" yaml:"stats,omitempty"`
	Documentation *Documentation `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	RateLimit     *RateLimit     `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`

	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	LastUpdated time.Time `json:"lastUpdated,omitzero" yaml:"lastUpdated,omitempty"`
	// Popularity is a percentage in [0, 100].
	Popularity float64 `json:"popularity,omitempty" yaml:"popularity,omitempty"`
	Rating     *Rating `json:"rating,omitempty" yaml:"rating,omitempty"`
}

// EndpointCount returns the number of endpoints the API declares.
func (a *API) EndpointCount() int {
	if a == nil {
		return 0
	}
	return len(a.Endpoints)
}

// Provider identifies who publishes an API.
type Provider struct {
	Name    string `json:"name" yaml:"name"`
	Website string `json:"website,omitempty" yaml:"website,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Authentication describes how a client authenticates against an API.
type Authentication struct {
	Type AuthType `json:"type" yaml:"type"`
	// Location is required when Type is AuthAPIKey.
	Location     KeyLocation `json:"location,omitempty" yaml:"location,omitempty"`
	ParamName    string      `json:"paramName,omitempty" yaml:"paramName,omitempty"`
	Instructions string      `json:"instructions,omitempty" yaml:"instructions,omitempty"`
}

// Endpoint is one operation exposed by an API.
type Endpoint struct {
	// ID is unique within its API.
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Method      Method      `json:"method" yaml:"method"`
	Path        string      `json:"path" yaml:"path"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	// Responses is keyed by HTTP status code.
	Responses map[int]Response `json:"responses,omitempty" yaml:"responses,omitempty"`
	Examples  []Example        `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// Parameter is an input accepted by an endpoint.
type Parameter struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Required    bool     `json:"required" yaml:"required"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
	Default     any      `json:"default,omitempty" yaml:"default,omitempty"`
}

// Response documents one status code of an endpoint.
type Response struct {
	Description string `json:"description" yaml:"description"`
	Example     any    `json:"example,omitempty" yaml:"example,omitempty"`
}

// Example is a worked request/response pair.
type Example struct {
	Title    string         `json:"title" yaml:"title"`
	Request  ExampleRequest `json:"request" yaml:"request"`
	Response any            `json:"response,omitempty" yaml:"response,omitempty"`
}

// ExampleRequest is the request half of an Example.
type ExampleRequest struct {
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Pricing describes the commercial model of an API.
type Pricing struct {
	// Type is one of "free", "paid" or "freemium".
	Type  string `json:"type" yaml:"type"`
	Plans []Plan `json:"plans,omitempty" yaml:"plans,omitempty"`
}

// Plan is a single pricing tier.
type Plan struct {
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
	// Period is "monthly" or "yearly".
	Period    string     `json:"period,omitempty" yaml:"period,omitempty"`
	Features  []string   `json:"features,omitempty" yaml:"features,omitempty"`
	RateLimit *RateLimit `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
}

// RateLimit caps how often an API may be called.
type RateLimit struct {
	Requests int `json:"requests" yaml:"requests"`
	// Period is one of "second", "minute", "hour", "day" or "month".
	Period string  `json:"period" yaml:"period"`
	Cost   float64 `json:"cost,omitempty" yaml:"cost,omitempty"`
}

// Status is the operational health of an API.
type Status struct {
	IsActive *bool `json:"isActive,omitempty" yaml:"isActive,omitempty"`
	// Uptime is a percentage in [0, 100].
	Uptime       float64    `json:"uptime" yaml:"uptime"`
	LastChecked  time.Time  `json:"lastChecked,omitzero" yaml:"lastChecked,omitempty"`
	ResponseTime float64    `json:"responseTime" yaml:"responseTime"`
	Incidents    []Incident `json:"incidents,omitempty" yaml:"incidents,omitempty"`
}

// Incident is a recorded outage.
type Incident struct {
	Date        string `json:"date" yaml:"date"`
	Description string `json:"description" yaml:"description"`
	Duration    string `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Stats holds usage counters.
type Stats struct {
	TotalCalls int64 `json:"totalCalls" yaml:"totalCalls"`
	// FailureRate is a percentage in [0, 100].
	FailureRate     float64 `json:"failureRate" yaml:"failureRate"`
	AvgResponseTime float64 `json:"avgResponseTime" yaml:"avgResponseTime"`
	LastDayUsage    *int64  `json:"lastDayUsage,omitempty" yaml:"lastDayUsage,omitempty"`
}

// Documentation is the long-form guide attached to an API.
type Documentation struct {
	Overview       string           `json:"overview,omitempty" yaml:"overview,omitempty"`
	GettingStarted []DocSection     `json:"gettingStarted,omitempty" yaml:"gettingStarted,omitempty"`
	Authentication []DocSection     `json:"authentication,omitempty" yaml:"authentication,omitempty"`
	Examples       []DocSection     `json:"examples,omitempty" yaml:"examples,omitempty"`
	Errors         []DocError       `json:"errors,omitempty" yaml:"errors,omitempty"`
	Changelog      []ChangelogEntry `json:"changelog,omitempty" yaml:"changelog,omitempty"`
}

// DocSection is a titled block of documentation, optionally with code.
type DocSection struct {
	Title    string `json:"title" yaml:"title"`
	Content  string `json:"content" yaml:"content"`
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// DocError documents an error an API can return.
type DocError struct {
	Code        string `json:"code" yaml:"code"`
	Message     string `json:"message" yaml:"message"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ChangelogEntry is one released version.
type ChangelogEntry struct {
	Version string   `json:"version" yaml:"version"`
	Date    string   `json:"date" yaml:"date"`
	Changes []string `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// Rating aggregates user reviews.
type Rating struct {
	// Score is in [0, 5].
	Score   float64  `json:"score" yaml:"score"`
	Count   int      `json:"count" yaml:"count"`
	Reviews []Review `json:"reviews,omitempty" yaml:"reviews,omitempty"`
}

// Review is a single user review.
type Review struct {
	User string `json:"user" yaml:"user"`
	// Rating is in [0, 5].
	Rating  float64 `json:"rating" yaml:"rating"`
	Comment string  `json:"comment,omitempty" yaml:"comment,omitempty"`
	Date    string  `json:"date,omitempty" yaml:"date,omitempty"`
}
