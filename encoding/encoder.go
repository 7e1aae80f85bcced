// Package encoding provides the output formats of the CLI.
package encoding

import (
	"strings"

	"github.com/cockroachdb/errors"
	jsonenc "github.com/effective-security/mcptools/encoding/json"
	tomlenc "github.com/effective-security/mcptools/encoding/toml"
	yamlenc "github.com/effective-security/mcptools/encoding/yaml"
)

type Encoder interface {
	Marshal(v any) ([]byte, error)
	Unmarshal([]byte, any) error
}

type Format = string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatTOML}

var (
	_ Encoder = (*jsonenc.Encoder)(nil)
	_ Encoder = (*tomlenc.Encoder)(nil)
	_ Encoder = (*yamlenc.Encoder)(nil)
)

// NewEncoder returns the encoder of a structured format.
func NewEncoder(format Format) (Encoder, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return jsonenc.NewEncoder("  "), nil
	case FormatYAML:
		return yamlenc.NewEncoder(), nil
	case FormatTOML:
		return tomlenc.NewEncoder(), nil
	}
	return nil, errors.Newf("unsupported format: %q", format)
}

// Reformat re-encodes a JSON text in the format.
// Text that is not a JSON object or array is returned as is,
// as well as any text for FormatText.
func Reformat(text string, format Format) (string, error) {
	if format == "" || strings.EqualFold(format, FormatText) {
		return text, nil
	}
	enc, err := NewEncoder(format)
	if err != nil {
		return "", err
	}

	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return text, nil
	}

	var v any
	if err = jsonenc.NewEncoder("").Unmarshal([]byte(trimmed), &v); err != nil {
		return text, nil
	}

	bs, err := enc.Marshal(v)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(bs), "\n"), nil
}
