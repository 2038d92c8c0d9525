// Package api embeds the OpenAPI 3 document of the HTTP surface. The document drives
// request validation and the swagger UI.
package api

import _ "embed"

//go:embed openapi.yaml
var spec []byte

// Spec returns a copy of the raw OpenAPI document.
func Spec() []byte {
	out := make([]byte, len(spec))
	copy(out, spec)
	return out
}
