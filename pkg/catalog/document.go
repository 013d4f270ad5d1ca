package catalog

import "time"

// DocumentVersion is the version of the export document layout.
const DocumentVersion = "1.0"

// Document is the canonical serialised form of a catalogue export.
type Document struct {
	Metadata Metadata      `json:"metadata" yaml:"metadata"`
	APIs     []API         `json:"apis" yaml:"apis"`
	Tests    []TestRecord  `json:"tests,omitempty" yaml:"tests,omitempty"`
	History  []TestHistory `json:"history,omitempty" yaml:"history,omitempty"`
}

// Metadata describes an export.
type Metadata struct {
	Version    string    `json:"version" yaml:"version"`
	ExportDate time.Time `json:"exportDate" yaml:"exportDate"`
	Format     string    `json:"format" yaml:"format"`
	APICount   int       `json:"apiCount" yaml:"apiCount"`
}

// TestRecord is a single recorded call against an API. The engine carries
// records through without interpreting Request or Response.
type TestRecord struct {
	ID         string    `json:"id" yaml:"id"`
	APIID      string    `json:"apiId" yaml:"apiId"`
	EndpointID string    `json:"endpointId,omitempty" yaml:"endpointId,omitempty"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Success    bool      `json:"success" yaml:"success"`
	// Duration is in milliseconds.
	Duration float64 `json:"duration" yaml:"duration"`
	Request  any     `json:"request,omitempty" yaml:"request,omitempty"`
	Response any     `json:"response,omitempty" yaml:"response,omitempty"`
}

// TestHistory groups the recorded calls of one API.
type TestHistory struct {
	APIID string       `json:"apiId" yaml:"apiId"`
	Tests []TestRecord `json:"tests" yaml:"tests"`
}
