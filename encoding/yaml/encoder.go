package yaml

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "failed to encode YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to encode YAML")
	}
	return buf.Bytes(), nil
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	if err := yaml.Unmarshal(bs, ret); err != nil {
		return errors.Wrap(err, "failed to decode YAML")
	}
	return nil
}
