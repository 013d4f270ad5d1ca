// Package interchange converts API catalogue entries between external API
// description formats and the canonical model in package catalog.
//
// # Supported Formats
//
// Every format can be both imported and exported:
//   - json: the canonical export document, JSON encoded
//   - yaml: the canonical export document, YAML encoded
//   - swagger: Swagger 2.0 (imports OpenAPI 3.x too)
//   - openapi: OpenAPI 3.0 (imports Swagger 2.0 too)
//   - postman: Postman Collection v2.1
//
// The format is always declared by the caller. Nothing is auto-detected.
//
// # Usage
//
//	res, err := interchange.Import(data, interchange.FormatPostman)
//	if err != nil {
//	    var de *interchange.DecodeError
//	    if errors.As(err, &de) { ... }
//	}
//	for _, w := range res.Warnings {
//	    fmt.Println(w)
//	}
//
//	out, err := interchange.Export(res.APIs, interchange.ExportOptions{Format: interchange.FormatOpenAPI})
//
// # Warnings
//
// Decoding and encoding never silently invent or lose data. Every default that
// is filled in and every field that cannot be represented in the target format
// is recorded in a Ledger and returned as a Warning with the result.
// Warnings are never errors.
//
// # Errors
//
// Failures are reported as *UnsupportedFormatError, *DecodeError or
// *EncodeError. All three can be matched with errors.As.
package interchange
