// Package api embeds the OpenAPI description of the Aeroholder HTTP API so
// the server can publish it at /openapi.yaml.
package api

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
