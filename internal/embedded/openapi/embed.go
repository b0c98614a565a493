// Package openapi embeds the OpenAPI 3.0 description of the HTTP API. The
// server serves it at {prefix}/openapi.yaml and {prefix}/openapi.json.
package openapi

import (
	"bytes"
	_ "embed"
	"encoding/json"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/mavroute/pkg/errors"
)

// DefaultPrefix is the server URL written in the embedded document.
const DefaultPrefix = "/api/v1"

// SpecYAML is the document as written, with DefaultPrefix as server URL.
//
//go:embed openapi.yaml
var SpecYAML []byte

// YAML returns the document with its server URL set to prefix.
func YAML(prefix string) []byte {
	if prefix == DefaultPrefix {
		return SpecYAML
	}
	return bytes.Replace(SpecYAML, []byte("url: "+DefaultPrefix+"\n"), []byte("url: "+prefix+"\n"), 1)
}

// JSON returns the document as indented JSON with its server URL set to
// prefix.
func JSON(prefix string) ([]byte, error) {
	raw, err := yaml.YAMLToJSON(YAML(prefix))
	if err != nil {
		return nil, errors.WrapParse("yaml", "openapi.yaml", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, errors.WrapParse("json", "openapi.json", err)
	}
	return out.Bytes(), nil
}
