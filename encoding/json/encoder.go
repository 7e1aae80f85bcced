package json

import (
	"bytes"
	"encoding/json"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
)

// Encoder encodes JSON, decoding is lenient to mistyped scalars
// such as numbers passed as strings.
type Encoder struct {
	indent string
}

// NewEncoder returns an encoder, a non empty indent produces indented output.
func NewEncoder(indent string) *Encoder {
	return &Encoder{indent: indent}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if e.indent != "" {
		enc.SetIndent("", e.indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "failed to encode JSON")
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes well-formed JSON only, leniency applies to the values.
func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	bs = bytes.TrimSpace(bs)
	if !json.Valid(bs) {
		return errors.New("failed to decode JSON: malformed input")
	}
	if err := ljson.Unmarshal(bs, ret); err != nil {
		return errors.Wrap(err, "failed to decode JSON")
	}
	return nil
}
