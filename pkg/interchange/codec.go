package interchange

import (
	"sort"
	"sync"

	"github.com/UfukSeker41/api-controller/pkg/catalog"
)

// Codec converts between one format and the canonical model.
type Codec interface {
	// Format returns the format this codec handles.
	Format() Format

	// Decode parses data and returns the APIs it describes. Defaults and
	// anomalies are recorded in l.
	Decode(data []byte, l *Ledger) (*Decoded, error)

	// Encode renders p in the codec's format. Fields the format cannot hold
	// are recorded in l.
	Encode(p *Payload, l *Ledger) ([]byte, error)
}

// Decoded is what a Codec extracts from its input. Only the canonical
// formats carry tests and history.
type Decoded struct {
	APIs    []catalog.API
	Tests   []catalog.TestRecord
	History []catalog.TestHistory
}

// Payload is everything a Codec needs to encode an export.
type Payload struct {
	APIs     []catalog.API
	Metadata catalog.Metadata

	IncludeTests   bool
	IncludeHistory bool
	Tests          []catalog.TestRecord
	History        []catalog.TestHistory
}

// Registry maps formats to codecs.
type Registry struct {
	mu     sync.RWMutex
	codecs map[Format]Codec
}

// NewRegistry returns a registry holding the given codecs.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{codecs: make(map[Format]Codec, len(codecs))}
	for _, c := range codecs {
		r.Register(c)
	}
	return r
}

// DefaultRegistry returns a fresh registry holding the built-in codecs.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewJSONCodec(),
		NewYAMLCodec(),
		NewOpenAPICodec(FormatSwagger),
		NewOpenAPICodec(FormatOpenAPI),
		NewPostmanCodec(),
	)
}

// Register adds a codec, replacing any codec already registered for its format.
func (r *Registry) Register(c Codec) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.Format()] = c
}

// Get returns the codec for a format.
func (r *Registry) Get(format Format) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[format]
	return c, ok
}

// Has checks if a codec is registered for the format.
func (r *Registry) Has(format Format) bool {
	_, ok := r.Get(format)
	return ok
}

// Formats returns the registered formats sorted by name.
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Format, 0, len(r.codecs))
	for f := range r.codecs {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
