package swagger

import _ "embed"

// OpenAPI is the OpenAPI document for the JSON API.
//
//go:embed openapi.yaml
var OpenAPI []byte
