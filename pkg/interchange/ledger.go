package interchange

import (
	"fmt"
	"log/slog"
)

// WarningCode classifies a Warning.
type WarningCode string

// Warning codes.
const (
	WarnDefaulted       WarningCode = "defaulted"        // a missing value was filled in
	WarnValueClamped    WarningCode = "value_clamped"    // a value was forced into its range
	WarnMixedHost       WarningCode = "mixed_host"       // Postman items target different hosts
	WarnFieldDropped    WarningCode = "field_dropped"    // the target format cannot hold a field
	WarnUnknownField    WarningCode = "unknown_field"    // the input carries a field the model lacks
	WarnIDCollision     WarningCode = "id_collision"     // an identifier was suffixed to stay unique
	WarnAuthUnsupported WarningCode = "auth_unsupported" // an auth scheme has no model equivalent
	WarnAuthMultiple    WarningCode = "auth_multiple"    // several auth schemes, one was chosen
	WarnResponseDropped WarningCode = "response_dropped" // a response key is not a status code
)

// Warning is a recoverable anomaly met while decoding or encoding.
type Warning struct {
	Code     WarningCode `json:"code" yaml:"code"`
	Message  string      `json:"message" yaml:"message"`
	EntityID string      `json:"entityId,omitempty" yaml:"entityId,omitempty"`
}

func (w Warning) String() string {
	if w.EntityID == "" {
		return string(w.Code) + ": " + w.Message
	}
	return string(w.Code) + " [" + w.EntityID + "]: " + w.Message
}

// Ledger records every default applied and every anomaly met during one
// import or export. A Ledger is not safe for concurrent use.
type Ledger struct {
	warnings []Warning
	logger   *slog.Logger
}

// NewLedger returns an empty ledger. Entries are also logged at debug level
// when logger is non-nil.
func NewLedger(logger *slog.Logger) *Ledger {
	return &Ledger{logger: logger}
}

// Warn records a warning of the given code against entity.
func (l *Ledger) Warn(code WarningCode, entity, format string, args ...any) {
	w := Warning{Code: code, Message: fmt.Sprintf(format, args...), EntityID: entity}
	l.warnings = append(l.warnings, w)
	if l.logger != nil {
		l.logger.Debug("interchange warning", "code", string(code), "entity", entity, "message", w.Message)
	}
}

// Default records that field of entity was filled with value.
func (l *Ledger) Default(entity, field string, value any) {
	l.Warn(WarnDefaulted, entity, "%s missing, defaulted to %q", field, fmt.Sprint(value))
}

// Fill sets *dst to value when *dst is empty and records the default.
func (l *Ledger) Fill(entity, field string, dst *string, value string) {
	if *dst != "" {
		return
	}
	*dst = value
	l.Default(entity, field, value)
}

// Clamp forces v into [lo, hi], recording a warning when it had to.
func (l *Ledger) Clamp(entity, field string, v, lo, hi float64) float64 {
	switch {
	case v < lo:
		l.Warn(WarnValueClamped, entity, "%s %v below %v, clamped", field, v, lo)
		return lo
	case v > hi:
		l.Warn(WarnValueClamped, entity, "%s %v above %v, clamped", field, v, hi)
		return hi
	}
	return v
}

// Len returns the number of recorded warnings.
func (l *Ledger) Len() int {
	return len(l.warnings)
}

// Warnings returns a copy of the recorded warnings in the order they occurred.
func (l *Ledger) Warnings() []Warning {
	out := make([]Warning, len(l.warnings))
	copy(out, l.warnings)
	return out
}
