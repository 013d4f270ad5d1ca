package interchange

import (
	"time"

	"github.com/UfukSeker41/api-controller/pkg/catalog"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestEngine() *Engine {
	return New(WithClock(fixedClock))
}

// weatherAPI is a fully populated catalogue entry whose values survive a
// canonical round trip unchanged.
func weatherAPI() catalog.API {
	active := true
	usage := int64(1200)
	return catalog.API{
		ID:          "weather",
		Name:        "Weather API",
		Version:     "2.1.0",
		BaseURL:     "https://api.weather.example.com/v2",
		Description: "Forecasts and observations",
		Categories:  []string{"weather", "data"},
		Logo:        "https://weather.example.com/logo.png",
		Provider:    &catalog.Provider{Name: "Weather Inc", Website: "https://weather.example.com", Email: "dev@weather.example.com"},
		Authentication: catalog.Authentication{
			Type:         catalog.AuthAPIKey,
			Location:     catalog.KeyInQuery,
			ParamName:    "appid",
			Instructions: "Create a key in the dashboard",
		},
		Endpoints: []catalog.Endpoint{
			{
				ID:          "current",
				Name:        "Current weather",
				Method:      catalog.MethodGet,
				Path:        "/weather/{city}",
				Description: "Current conditions for a city",
				Parameters: []catalog.Parameter{
					{Name: "city", Type: "string", Required: true, Description: "City name"},
					{Name: "units", Type: "string", Options: []string{"metric", "imperial"}, Default: "metric"},
					{Name: "days", Type: "integer", Default: float64(3)},
				},
				Responses: map[int]catalog.Response{
					200: {Description: "OK", Example: map[string]any{"temp": float64(21), "city": "Berlin"}},
					404: {Description: "Unknown city"},
				},
				Examples: []catalog.Example{
					{
						Title: "Berlin",
						Request: catalog.ExampleRequest{
							URL:     "https://api.weather.example.com/v2/weather/Berlin",
							Headers: map[string]string{"Accept": "application/json"},
						},
						Response: map[string]any{"temp": float64(21)},
					},
				},
			},
			{
				ID:     "alerts",
				Name:   "Create alert",
				Method: catalog.MethodPost,
				Path:   "/alerts",
			},
		},
		Pricing: &catalog.Pricing{
			Type: "freemium",
			Plans: []catalog.Plan{
				{Name: "Free", Price: 0, Period: "month", Features: []string{"1k calls"}, RateLimit: &catalog.RateLimit{Requests: 60, Period: "minute"}},
				{Name: "Pro", Price: 29.5, Period: "month"},
			},
		},
		Status: &catalog.Status{
			IsActive:     &active,
			Uptime:       99.9,
			LastChecked:  time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC),
			ResponseTime: 120,
			Incidents:    []catalog.Incident{{Date: "2024-02-01", Description: "Outage", Duration: "2h"}},
		},
		Stats:         &catalog.Stats{TotalCalls: 50000, FailureRate: 0.5, AvgResponseTime: 95.5, LastDayUsage: &usage},
		Documentation: &catalog.Documentation{Overview: "Read the guide", Errors: []catalog.DocError{{Code: "401", Message: "Invalid key"}}, Changelog: []catalog.ChangelogEntry{{Version: "2.1.0", Date: "2024-01-01", Changes: []string{"Alerts"}}}},
		RateLimit:     &catalog.RateLimit{Requests: 1000, Period: "day"},
		Tags:          []string{"popular"},
		LastUpdated:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Popularity:    87.5,
		Rating:        &catalog.Rating{Score: 4.5, Count: 2, Reviews: []catalog.Review{{User: "ana", Rating: 5, Comment: "Great", Date: "2024-02-02"}}},
	}
}

// petsAPI is a small entry on another host.
func petsAPI() catalog.API {
	return catalog.API{
		ID:             "pets",
		Name:           "Pets",
		Version:        "1.0.0",
		BaseURL:        "https://pets.example.com",
		Authentication: catalog.Authentication{Type: catalog.AuthNone},
		Endpoints: []catalog.Endpoint{
			{ID: "list", Name: "List pets", Method: catalog.MethodGet, Path: "/pets"},
			{ID: "get", Name: "Get pet", Method: catalog.MethodGet, Path: "/pets/{id}", Parameters: []catalog.Parameter{{Name: "id", Type: "string", Required: true}}},
			{ID: "delete", Name: "Delete pet", Method: catalog.MethodDelete, Path: "/pets/{id}"},
		},
	}
}

func warningCodes(ws []Warning) []WarningCode {
	out := make([]WarningCode, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

func countCode(ws []Warning, code WarningCode) int {
	n := 0
	for _, w := range ws {
		if w.Code == code {
			n++
		}
	}
	return n
}
