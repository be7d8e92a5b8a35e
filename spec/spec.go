// Package spec embeds the OpenAPI document of the tie inventory API,
// served by the HTTP server at /openapi.yaml.
package spec

import _ "embed"

// OpenAPI holds the raw bytes of openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
