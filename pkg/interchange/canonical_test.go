package interchange

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UfukSeker41/api-controller/pkg/catalog"
)

// ============================================================================
// Canonical Round Trip Tests
// ============================================================================

func TestCanonical_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			e := newTestEngine()
			apis := []catalog.API{weatherAPI(), petsAPI()}

			exported, err := e.Export(apis, ExportOptions{Format: format})
			require.NoError(t, err)
			assert.Empty(t, exported.Warnings)

			imported, err := e.Import(exported.Data, format)
			require.NoError(t, err)
			assert.Empty(t, imported.Warnings, "unexpected warnings: %v", imported.Warnings)
			assert.Equal(t, format, imported.Format)
			assert.Equal(t, apis, imported.APIs)
			assert.Nil(t, imported.Tests)
			assert.Nil(t, imported.History)
		})
	}
}

func TestCanonical_JSONLayout(t *testing.T) {
	res, err := newTestEngine().Export([]catalog.API{petsAPI()}, ExportOptions{Format: FormatJSON})
	require.NoError(t, err)

	out := string(res.Data)
	assert.True(t, strings.HasPrefix(out, "{\n  \"metadata\": {\n    \"version\": \"1.0\""), out)
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.NotContains(t, out, `"tests"`)
	assert.NotContains(t, out, `"history"`)
	assert.Equal(t, ContentTypeJSON, res.ContentType)
}

func TestCanonical_YAMLLayout(t *testing.T) {
	res, err := newTestEngine().Export([]catalog.API{petsAPI()}, ExportOptions{Format: FormatYAML})
	require.NoError(t, err)

	out := string(res.Data)
	assert.True(t, strings.HasPrefix(out, "metadata:\n  version: \"1.0\"\n"), out)
	assert.Contains(t, out, "\napis:\n  - id: pets\n")
	assert.Equal(t, ContentTypeYAML, res.ContentType)
}

func TestCanonical_TestsAndHistory(t *testing.T) {
	e := newTestEngine()
	apis := []catalog.API{petsAPI()}

	t.Run("requested but empty", func(t *testing.T) {
		res, err := e.Export(apis, ExportOptions{Format: FormatJSON, IncludeTests: true, IncludeHistory: true})
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(res.Data, &doc))
		assert.Equal(t, []any{}, doc["tests"])
		assert.Equal(t, []any{}, doc["history"])
	})

	t.Run("carried through", func(t *testing.T) {
		record := catalog.TestRecord{
			ID:         "t1",
			APIID:      "pets",
			EndpointID: "list",
			Timestamp:  time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
			Success:    true,
			Duration:   12.5,
			Request:    map[string]any{"url": "https://pets.example.com/pets"},
			Response:   map[string]any{"status": float64(200)},
		}
		history := []catalog.TestHistory{{APIID: "pets", Tests: []catalog.TestRecord{record}}}

		for _, format := range []Format{FormatJSON, FormatYAML} {
			res, err := e.Export(apis, ExportOptions{
				Format:         format,
				IncludeTests:   true,
				IncludeHistory: true,
				Tests:          []catalog.TestRecord{record},
				History:        history,
			})
			require.NoError(t, err)

			imported, err := e.Import(res.Data, format)
			require.NoError(t, err)
			assert.Equal(t, []catalog.TestRecord{record}, imported.Tests, format)
			assert.Equal(t, history, imported.History, format)
		}
	})

	t.Run("not requested", func(t *testing.T) {
		res, err := e.Export(apis, ExportOptions{Format: FormatJSON, Tests: []catalog.TestRecord{{ID: "t1", APIID: "pets"}}})
		require.NoError(t, err)
		assert.NotContains(t, string(res.Data), `"tests"`)
	})
}

// ============================================================================
// Canonical Decode Tests
// ============================================================================

func TestCanonical_DocumentRoots(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"document", `{"apis": [{"id": "a", "name": "A", "authentication": {"type": "none"}}]}`, 1},
		{"array", `[{"id": "a", "name": "A", "authentication": {"type": "none"}}, {"id": "b", "name": "B", "authentication": {"type": "none"}}]`, 2},
		{"single api", `{"id": "a", "name": "A", "authentication": {"type": "none"}}`, 1},
		{"empty", `{"apis": []}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Import([]byte(tt.data), FormatJSON)
			require.NoError(t, err)
			assert.Len(t, res.APIs, tt.want)
			assert.Empty(t, res.Warnings)
		})
	}
}

func TestCanonical_Defaults(t *testing.T) {
	data := `[{"name": "Café Menü", "endpoints": [{"method": "get", "path": "/menu"}]}]`

	res, err := Import([]byte(data), FormatJSON)
	require.NoError(t, err)
	require.Len(t, res.APIs, 1)

	api := res.APIs[0]
	assert.Equal(t, "cafe-menu", api.ID)
	assert.Equal(t, catalog.AuthNone, api.Authentication.Type)
	require.Len(t, api.Endpoints, 1)
	assert.Equal(t, catalog.MethodGet, api.Endpoints[0].Method)
	assert.Equal(t, "menu-get", api.Endpoints[0].ID)
	assert.Equal(t, "GET /menu", api.Endpoints[0].Name)

	// api id, auth type, endpoint id, endpoint name
	assert.Equal(t, []WarningCode{WarnDefaulted, WarnDefaulted, WarnDefaulted, WarnDefaulted}, warningCodes(res.Warnings))
}

func TestCanonical_IDCollisions(t *testing.T) {
	data := `[
		{"name": "Same API", "authentication": {"type": "none"}, "endpoints": [
			{"name": "one", "method": "GET", "path": "/a"},
			{"name": "two", "method": "GET", "path": "/a"}
		]},
		{"name": "Same API", "authentication": {"type": "none"}}
	]`

	res, err := Import([]byte(data), FormatJSON)
	require.NoError(t, err)
	require.Len(t, res.APIs, 2)

	assert.Equal(t, "same-api", res.APIs[0].ID)
	assert.Equal(t, "same-api-2", res.APIs[1].ID)
	assert.Equal(t, "a-get", res.APIs[0].Endpoints[0].ID)
	assert.Equal(t, "a-get-2", res.APIs[0].Endpoints[1].ID)
	assert.Equal(t, 2, countCode(res.Warnings, WarnIDCollision))
}

func TestCanonical_ExplicitIDCollision(t *testing.T) {
	data := `[
		{"id": "dup", "name": "One", "authentication": {"type": "none"}},
		{"id": "dup", "name": "Two", "authentication": {"type": "none"}}
	]`

	res, err := Import([]byte(data), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "dup", res.APIs[0].ID)
	assert.Equal(t, "dup-2", res.APIs[1].ID)
	assert.Equal(t, []WarningCode{WarnIDCollision}, warningCodes(res.Warnings))
}

func TestCanonical_Clamping(t *testing.T) {
	data := `[{
		"id": "a", "name": "A", "authentication": {"type": "none"},
		"popularity": 140,
		"rating": {"score": 7, "count": 1, "reviews": [{"user": "u", "rating": -1, "comment": "", "date": "2024-01-01"}]},
		"status": {"uptime": -5, "responseTime": 10},
		"stats": {"totalCalls": 1, "failureRate": 250, "avgResponseTime": 1}
	}]`

	res, err := Import([]byte(data), FormatJSON)
	require.NoError(t, err)

	api := res.APIs[0]
	assert.Equal(t, 100.0, api.Popularity)
	assert.Equal(t, 5.0, api.Rating.Score)
	assert.Equal(t, 0.0, api.Rating.Reviews[0].Rating)
	assert.Equal(t, 0.0, api.Status.Uptime)
	assert.Equal(t, 100.0, api.Stats.FailureRate)
	assert.Equal(t, 5, countCode(res.Warnings, WarnValueClamped))
	for _, w := range res.Warnings {
		assert.Equal(t, "a", w.EntityID)
	}
}

func TestCanonical_UnknownFields(t *testing.T) {
	data := `{
		"apis": [{
			"id": "a", "name": "A", "authentication": {"type": "none"}, "colour": "red",
			"endpoints": [{"id": "e", "name": "E", "method": "GET", "path": "/x", "verb": "y"}]
		}],
		"extra": 1
	}`

	res, err := Import([]byte(data), FormatJSON)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 3)

	assert.Equal(t, WarnUnknownField, res.Warnings[0].Code)
	assert.Contains(t, res.Warnings[0].Message, `"apis[0].colour"`)
	assert.Equal(t, "a", res.Warnings[0].EntityID)
	assert.Contains(t, res.Warnings[1].Message, `"apis[0].endpoints[0].verb"`)
	assert.Contains(t, res.Warnings[2].Message, `"extra"`)
	assert.Empty(t, res.Warnings[2].EntityID)
}

func TestCanonical_DecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
		reason string
	}{
		{"trace method", FormatJSON, `[{"id": "a", "name": "A", "endpoints": [{"method": "TRACE", "path": "/a"}]}]`, `unsupported method "TRACE"`},
		{"apiKey without location", FormatJSON, `[{"id": "a", "name": "A", "authentication": {"type": "apiKey", "paramName": "k"}}]`, "requires a location"},
		{"unknown auth type", FormatJSON, `[{"id": "a", "name": "A", "authentication": {"type": "basic"}}]`, `unknown authentication type "basic"`},
		{"cookie location", FormatJSON, `[{"id": "a", "name": "A", "authentication": {"type": "apiKey", "location": "cookie"}}]`, `unknown api key location "cookie"`},
		{"missing name", FormatJSON, `[{"id": "a"}]`, "canonical layout"},
		{"bad response code", FormatJSON, `[{"id": "a", "name": "A", "endpoints": [{"method": "GET", "path": "/a", "responses": {"ok": {}}}]}]`, "canonical layout"},
		{"scalar root", FormatJSON, `42`, "must be an object or an array"},
		{"yaml trace", FormatYAML, "- id: a\n  name: A\n  endpoints:\n    - method: trace\n      path: /a\n", `unsupported method "trace"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import([]byte(tt.data), tt.format)
			require.Error(t, err)
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.format, de.Format)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestCanonical_SyntaxErrorPosition(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		data := "{\n  \"apis\": [\n    {\"name\": \"A\",}\n  ]\n}"
		_, err := Import([]byte(data), FormatJSON)

		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, 3, de.Line)
		assert.Positive(t, de.Column)
		assert.Positive(t, de.Offset)
		assert.Contains(t, err.Error(), "line 3")
	})

	t.Run("yaml", func(t *testing.T) {
		data := "apis:\n  - name: A\n    tags: [unclosed\n"
		_, err := Import([]byte(data), FormatYAML)

		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Positive(t, de.Line)
	})
}

func TestCanonical_YAMLScalarsStayText(t *testing.T) {
	data := `
apis:
  - id: a
    name: 2024
    version: 1.0
    authentication:
      type: none
    lastUpdated: 2024-03-01T12:00:00Z
`
	res, err := Import([]byte(data), FormatYAML)
	require.NoError(t, err)

	api := res.APIs[0]
	assert.Equal(t, "2024", api.Name)
	assert.Equal(t, "1.0", api.Version)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), api.LastUpdated)
}

func TestCanonical_LargeIntegersKeepPrecision(t *testing.T) {
	const calls = int64(9007199254740993) // 2^53 + 1

	api := petsAPI()
	api.Stats = &catalog.Stats{TotalCalls: calls}

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			exported, err := Export([]catalog.API{api}, ExportOptions{Format: format})
			require.NoError(t, err)
			assert.Contains(t, string(exported.Data), "9007199254740993")

			imported, err := Import(exported.Data, format)
			require.NoError(t, err)
			require.NotNil(t, imported.APIs[0].Stats)
			assert.Equal(t, calls, imported.APIs[0].Stats.TotalCalls)
		})
	}
}

func TestCanonical_TrailingData(t *testing.T) {
	for _, data := range []string{`{"apis":[]} {"apis":[]}`, `{"apis":[]} x`, ``} {
		_, err := Import([]byte(data), FormatJSON)
		var de *DecodeError
		require.ErrorAs(t, err, &de, data)
		assert.Equal(t, "invalid JSON", de.Reason)
	}
}

func TestCanonical_YAMLTextOnlyWhereExpected(t *testing.T) {
	data := `
apis:
  - id: 42
    name: Numbers
    categories: [2024, true]
    authentication:
      type: none
    endpoints:
      - id: get
        method: GET
        path: /a
        parameters:
          - name: limit
            type: integer
            default: 10
        responses:
          "200":
            description: 200
            example:
              name: 5
              version: 2
              active: true
tests:
  - id: t1
    apiId: 42
    success: true
    duration: 3
    request:
      name: 7
`
	res, err := Import([]byte(data), FormatYAML)
	require.NoError(t, err)

	api := res.APIs[0]
	assert.Equal(t, "42", api.ID)
	assert.Equal(t, []string{"2024", "true"}, api.Categories)

	ep := api.Endpoints[0]
	assert.Equal(t, float64(10), ep.Parameters[0].Default)
	assert.Equal(t, "200", ep.Responses[200].Description)
	assert.Equal(t, map[string]any{"name": float64(5), "version": float64(2), "active": true}, ep.Responses[200].Example)

	require.Len(t, res.Tests, 1)
	assert.Equal(t, "42", res.Tests[0].APIID)
	assert.Equal(t, map[string]any{"name": float64(7)}, res.Tests[0].Request)
}

func TestCanonical_YAMLRoundTripKeepsPayloads(t *testing.T) {
	payload := map[string]any{"name": float64(5), "version": float64(2), "title": true}

	api := petsAPI()
	api.Endpoints[0].Parameters = []catalog.Parameter{{Name: "limit", Type: "integer", Default: float64(20)}}
	api.Endpoints[0].Responses = map[int]catalog.Response{200: {Description: "OK", Example: payload}}
	api.Endpoints[0].Examples = []catalog.Example{{Title: "list", Response: payload}}
	tests := []catalog.TestRecord{{
		ID: "t1", APIID: "pets", EndpointID: "list", Success: true,
		Timestamp: fixedNow, Request: map[string]any{"name": float64(1)}, Response: payload,
	}}

	exported, err := Export([]catalog.API{api}, ExportOptions{Format: FormatYAML, IncludeTests: true, Tests: tests})
	require.NoError(t, err)

	imported, err := Import(exported.Data, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, []catalog.API{api}, imported.APIs)
	assert.Equal(t, tests, imported.Tests)
}

// ============================================================================
// Canonical Encode Tests
// ============================================================================

func TestCanonical_EncodeRejectsInvalidEndpoints(t *testing.T) {
	for _, format := range AllFormats() {
		t.Run(string(format), func(t *testing.T) {
			api := petsAPI()
			api.Endpoints[0].Method = "TRACE"
			_, err := Export([]catalog.API{api}, ExportOptions{Format: format})
			var ee *EncodeError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, format, ee.Format)

			api = petsAPI()
			api.Endpoints[1].Path = ""
			_, err = Export([]catalog.API{api}, ExportOptions{Format: format})
			require.ErrorAs(t, err, &ee)
		})
	}
}
