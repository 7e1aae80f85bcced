package toml

import (
	"reflect"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// Encoder encodes TOML, the value must encode to a table.
type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, errors.New("failed to encode TOML: nil value")
		}
		rv = rv.Elem()
	}
	if k := rv.Kind(); k != reflect.Map && k != reflect.Struct {
		return nil, errors.Newf("failed to encode TOML: %T is not a table", v)
	}
	bs, err := toml.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode TOML")
	}
	return bs, nil
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	if err := toml.Unmarshal(bs, ret); err != nil {
		return errors.Wrap(err, "failed to decode TOML")
	}
	return nil
}
