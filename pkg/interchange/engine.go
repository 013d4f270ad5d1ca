package interchange

import (
	"errors"
	"log/slog"
	"time"

	"github.com/UfukSeker41/api-controller/pkg/catalog"
	"github.com/UfukSeker41/api-controller/pkg/logging"
)

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Format  Format
	APIs    []catalog.API
	Tests   []catalog.TestRecord
	History []catalog.TestHistory

	// Warnings are non-fatal issues encountered during import
	Warnings []Warning
}

// EndpointCount returns the number of endpoints across all imported APIs.
func (r *ImportResult) EndpointCount() int {
	n := 0
	for i := range r.APIs {
		n += r.APIs[i].EndpointCount()
	}
	return n
}

// ExportOptions configures an export.
type ExportOptions struct {
	Format Format

	// IncludeTests and IncludeHistory append Tests and History to canonical
	// exports. Other formats ignore them.
	IncludeTests   bool
	IncludeHistory bool
	Tests          []catalog.TestRecord
	History        []catalog.TestHistory
}

// ExportResult contains the result of an export operation.
type ExportResult struct {
	Format      Format
	ContentType string
	Data        []byte
	Metadata    catalog.Metadata

	// Warnings list what the target format could not hold
	Warnings []Warning
}

// Engine dispatches imports and exports to the registered codecs.
type Engine struct {
	registry *Registry
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock sets the clock used for export dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRegistry replaces the built-in codecs.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// New creates an engine with the built-in codecs.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry: DefaultRegistry(),
		logger:   logging.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Import decodes data with the default engine.
func Import(data []byte, format Format) (*ImportResult, error) {
	return defaultEngine.Import(data, format)
}

// Export encodes apis with the default engine.
func Export(apis []catalog.API, opts ExportOptions) (*ExportResult, error) {
	return defaultEngine.Export(apis, opts)
}

// Formats returns the formats the engine can handle.
func (e *Engine) Formats() []Format {
	return e.registry.Formats()
}

// resolve normalises a format tag and finds its codec.
func (e *Engine) resolve(format Format) (Format, Codec, error) {
	f, err := ParseFormat(string(format))
	if err != nil {
		return "", nil, err
	}
	c, ok := e.registry.Get(f)
	if !ok {
		return "", nil, &UnsupportedFormatError{Format: string(format)}
	}
	return f, c, nil
}

// Import decodes data declared to be in format.
func (e *Engine) Import(data []byte, format Format) (*ImportResult, error) {
	format, c, err := e.resolve(format)
	if err != nil {
		return nil, err
	}

	ledger := NewLedger(e.logger)
	decoded, err := c.Decode(data, ledger)
	if err != nil {
		return nil, classifyDecode(format, err)
	}

	e.logger.Debug("imported",
		"format", string(format),
		"apis", len(decoded.APIs),
		"warnings", ledger.Len(),
	)

	return &ImportResult{
		Format:   format,
		APIs:     decoded.APIs,
		Tests:    decoded.Tests,
		History:  decoded.History,
		Warnings: ledger.Warnings(),
	}, nil
}

// Export encodes apis in opts.Format. apis is never modified.
func (e *Engine) Export(apis []catalog.API, opts ExportOptions) (*ExportResult, error) {
	format, c, err := e.resolve(opts.Format)
	if err != nil {
		return nil, err
	}
	opts.Format = format

	meta := catalog.Metadata{
		Version:    catalog.DocumentVersion,
		ExportDate: e.now().UTC().Truncate(time.Second),
		Format:     string(opts.Format),
		APICount:   len(apis),
	}

	ledger := NewLedger(e.logger)
	data, err := c.Encode(&Payload{
		APIs:           apis,
		Metadata:       meta,
		IncludeTests:   opts.IncludeTests,
		IncludeHistory: opts.IncludeHistory,
		Tests:          opts.Tests,
		History:        opts.History,
	}, ledger)
	if err != nil {
		return nil, classifyEncode(opts.Format, err)
	}

	e.logger.Debug("exported",
		"format", string(opts.Format),
		"apis", len(apis),
		"bytes", len(data),
		"warnings", ledger.Len(),
	)

	return &ExportResult{
		Format:      opts.Format,
		ContentType: opts.Format.ContentType(),
		Data:        data,
		Metadata:    meta,
		Warnings:    ledger.Warnings(),
	}, nil
}

func classifyDecode(format Format, err error) error {
	var de *DecodeError
	var ue *UnsupportedFormatError
	if errors.As(err, &de) || errors.As(err, &ue) {
		return err
	}
	return &DecodeError{Format: format, Reason: "invalid document", Cause: err}
}

func classifyEncode(format Format, err error) error {
	var ee *EncodeError
	var ue *UnsupportedFormatError
	if errors.As(err, &ee) || errors.As(err, &ue) {
		return err
	}
	return &EncodeError{Format: format, Reason: "cannot encode", Cause: err}
}
