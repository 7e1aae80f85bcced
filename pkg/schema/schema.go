package schema

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	cache   = make(map[reflect.Type]*Schema)
	cacheMu sync.RWMutex
)

type Schema struct {
	RawSchema *jsonschema.Schema
	// Parameters represents the Function parameters definition
	Parameters *jsonschema.Schema
}

// New creates a new schema from the given type
func New(t reflect.Type) (*Schema, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[t]; ok {
		return s, nil
	}

	s, err := buildSchema(t)
	if err != nil {
		return nil, err
	}
	cache[t] = s

	return s, nil
}

// For returns the schema of T.
func For[T any]() (*Schema, error) {
	var zero T
	return New(reflect.TypeOf(zero))
}

func (s *Schema) String() string {
	js, _ := json.MarshalIndent(s.Parameters, "", "\t")
	return string(js)
}

// Map returns the function parameters as a generic JSON object,
// the shape MCP tool definitions carry as input schema.
func (s *Schema) Map() (map[string]any, error) {
	return ToMap(s.Parameters)
}

func buildSchema(t reflect.Type) (*Schema, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.Errorf("schema: expected struct type, got %v", t)
	}
	schema := JSONSchema(t)

	funcDef, err := ToFunctionSchema(t, schema)
	if err != nil {
		return nil, err
	}
	s := &Schema{
		RawSchema:  schema,
		Parameters: funcDef,
	}

	return s, nil
}

func ToFunctionSchema(tType reflect.Type, tSchema *jsonschema.Schema) (*jsonschema.Schema, error) {
	// find top level properties
	redID := strings.TrimPrefix(tSchema.Ref, "#/$defs/")

	var defs = make(map[string]*jsonschema.Schema)
	root := tSchema

	for name, def := range tSchema.Definitions {
		if name == redID {
			root = def
		} else {
			defs[name] = def
		}
	}

	res := &jsonschema.Schema{
		Type:       root.Type,
		Properties: root.Properties,
		Required:   root.Required,
	}
	if res.Properties == nil {
		res.Properties = orderedmap.New[string, *jsonschema.Schema]()
	}

	if err := resolveRefs(res.Properties, defs); err != nil {
		return nil, errors.WithMessagef(err, "schema: %s", tType.String())
	}

	return res, nil
}

func resolveRefs(props *orderedmap.OrderedMap[string, *jsonschema.Schema], defs map[string]*jsonschema.Schema) error {
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		child := pair.Value
		if child.Ref != "" {
			name := strings.TrimPrefix(child.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Errorf("definition not found: %s", name)
			}
			pair.Value = def
			child = def
		}
		if child.Properties != nil {
			if err := resolveRefs(child.Properties, defs); err != nil {
				return err
			}
		}
		if child.Items != nil && child.Items.Ref != "" {
			name := strings.TrimPrefix(child.Items.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Errorf("definition not found: %s", name)
			}
			child.Items = def
		}
	}
	return nil
}

// JSONSchema return the json schema of the type
func JSONSchema(t reflect.Type) *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.ExpandedStruct = true
	r.DoNotReference = true
	r.AllowAdditionalProperties = true

	// The struct name could be same in different packages,
	// so the package path hash is added to the definition name.
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			fullname := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(fullname), 10)
		}
		return name
	}

	return r.ReflectFromType(t)
}

// ObjectParameters normalizes a tool input schema, as declared by a tool host,
// into a function parameters object: type is always "object",
// missing properties become an empty object and missing required an empty list.
// Other keywords of the input schema are dropped.
func ObjectParameters(inputSchema any) (*jsonschema.Schema, error) {
	res := &jsonschema.Schema{
		Type:       "object",
		Properties: orderedmap.New[string, *jsonschema.Schema](),
		Required:   []string{},
	}
	if inputSchema == nil {
		return res, nil
	}

	src, err := FromAny(inputSchema)
	if err != nil {
		return nil, err
	}
	if src.Properties != nil {
		res.Properties = src.Properties
	}
	if src.Required != nil {
		res.Required = src.Required
	}
	return res, nil
}

// ToMap converts the schema to a generic JSON object.
func ToMap(s *jsonschema.Schema) (map[string]any, error) {
	js, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal schema")
	}
	m := map[string]any{}
	if err = json.Unmarshal(js, &m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal schema")
	}
	return m, nil
}

// MustFromAny creates a json schema from any type.
// It panics if the type is not valid.
//
// For example:
//
//	map[string]any{
//		"type": "object",
//		"properties": map[string]any{
//			"location": map[string]any{
//				"type": "string",
//			},
//		},
//	}
func MustFromAny(t any) *jsonschema.Schema {
	schema, err := FromAny(t)
	if err != nil {
		panic(err)
	}
	return schema
}

// FromAny creates a json schema from any JSON-encodable value.
func FromAny(t any) (*jsonschema.Schema, error) {
	var js []byte
	switch v := t.(type) {
	case json.RawMessage:
		js = v
	case []byte:
		js = v
	default:
		var err error
		js, err = json.Marshal(t)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal schema")
		}
	}
	schema := &jsonschema.Schema{}
	if err := json.Unmarshal(js, schema); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal schema")
	}
	return schema, nil
}
