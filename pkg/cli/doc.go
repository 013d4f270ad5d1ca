// Package cli provides the command-line interface for apictl.
//
// The cli package implements the apictl commands on top of the interchange
// engine:
//   - import: Read an API description and print a summary of its APIs
//   - export: Write a canonical document as Swagger, OpenAPI, Postman or canonical JSON/YAML
//   - convert: Import and export in one step
//   - formats: List the supported formats
//   - config show: Display the effective configuration and where each value came from
//   - version: Show apictl version
//
// Configuration comes from flags, APICTL_* environment variables and an
// optional config file, resolved by the cliconfig package. Warnings from the
// engine are printed to stderr. Results go to stdout or to the file named by
// -o.
package cli
