package interchange

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UfukSeker41/api-controller/pkg/catalog"
)

func TestEngine_UnsupportedFormat(t *testing.T) {
	e := newTestEngine()

	_, err := e.Import([]byte("<apis/>"), "xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	var de *DecodeError
	assert.False(t, errors.As(err, &de), "no parsing happens for an unknown format")

	_, err = e.Export([]catalog.API{petsAPI()}, ExportOptions{Format: "xml"})
	var ue *UnsupportedFormatError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "xml", ue.Format)
}

func TestEngine_FormatIsCaseInsensitive(t *testing.T) {
	res, err := newTestEngine().Export([]catalog.API{petsAPI()}, ExportOptions{Format: "JSON"})
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, res.Format)
	assert.Equal(t, "json", res.Metadata.Format)
}

func TestEngine_ExportMetadata(t *testing.T) {
	res, err := newTestEngine().Export([]catalog.API{weatherAPI(), petsAPI()}, ExportOptions{Format: FormatYAML})
	require.NoError(t, err)

	assert.Equal(t, catalog.Metadata{
		Version:    catalog.DocumentVersion,
		ExportDate: fixedNow,
		Format:     "yaml",
		APICount:   2,
	}, res.Metadata)
	assert.Contains(t, string(res.Data), "exportDate: 2024-03-15T10:30:00Z")
}

func TestEngine_ExportDoesNotModifyInput(t *testing.T) {
	build := func() []catalog.API {
		pets := petsAPI()
		pets.Endpoints[1].Parameters = []catalog.Parameter{{Name: "id"}}
		weather := weatherAPI()
		weather.Authentication.ParamName = ""
		return []catalog.API{weather, pets}
	}

	for _, format := range AllFormats() {
		t.Run(string(format), func(t *testing.T) {
			apis := build()
			_, err := newTestEngine().Export(apis, ExportOptions{Format: format, IncludeTests: true})
			require.NoError(t, err)
			assert.Equal(t, build(), apis)
		})
	}
}

func TestEngine_ImportEndpointCount(t *testing.T) {
	res, err := Import([]byte(`[
		{"id": "a", "name": "A", "authentication": {"type": "none"}, "endpoints": [
			{"id": "1", "name": "one", "method": "GET", "path": "/1"},
			{"id": "2", "name": "two", "method": "GET", "path": "/2"}
		]},
		{"id": "b", "name": "B", "authentication": {"type": "none"}, "endpoints": [
			{"id": "1", "name": "one", "method": "GET", "path": "/1"}
		]}
	]`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 3, res.EndpointCount())
}

func TestEngine_LogsWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := New(WithLogger(logger))

	data := `{"swagger":"2.0","info":{"title":"X"},"paths":{"/a":{"get":{"summary":"Get A"}}}}`
	_, err := e.Import([]byte(data), FormatSwagger)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "code=defaulted")
	assert.Contains(t, out, "msg=imported")
	assert.Contains(t, out, "warnings=1")
}

func TestEngine_ErrorsWrapCause(t *testing.T) {
	_, err := Import([]byte(`{"apis": [`), FormatJSON)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	require.NotNil(t, de.Cause)
	assert.ErrorIs(t, err, de.Cause)
}
