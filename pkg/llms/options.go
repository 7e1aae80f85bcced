package llms

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// CallOption is a function that configures a CallOptions.
type CallOption func(*CallOptions)

// CallOptions is a set of options for calling models. Not all models support
// all options.
type CallOptions struct {
	// Model is the model to use.
	Model string
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int
	// Temperature is the temperature for sampling, between 0 and 1.
	Temperature float64

	// Tools is a list of tools to use.
	Tools []Tool
	// ToolChoice is the choice of tool to use, it can either be "none", "auto" (the default behavior),
	// "required", or a specific tool as described in the ToolChoice type.
	ToolChoice any

	// Metadata is a map of metadata to include in the request.
	// The meaning of this field is specific to the backend in use.
	Metadata map[string]any
}

// Tool is a tool that can be used by the model.
type Tool struct {
	// Type is the type of the tool.
	Type string `json:"type"`
	// Function is the function to call.
	Function *FunctionDefinition `json:"function,omitempty"`
}

// FunctionDefinition is a definition of a function that can be called by the model.
type FunctionDefinition struct {
	// Name is the name of the function.
	Name string `json:"name"`
	// Description is a description of the function.
	Description string `json:"description"`
	// Parameters is the JSON schema object of the function arguments.
	Parameters *jsonschema.Schema `json:"parameters,omitempty"`
}

// emptyParameters is the parameters object of a function without arguments
const emptyParameters = `{"properties":{},"type":"object","required":[]}`

// ParametersJSON returns the parameters object of the function.
// It always has type, properties and required, even when the schema
// leaves them out: jsonschema drops an empty required list on marshal.
func (f *FunctionDefinition) ParametersJSON() ([]byte, error) {
	if f == nil || f.Parameters == nil {
		return []byte(emptyParameters), nil
	}
	js, err := json.Marshal(f.Parameters)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal parameters of %s", f.Name)
	}
	// an empty schema marshals as `true`
	if !gjson.ParseBytes(js).IsObject() {
		return []byte(emptyParameters), nil
	}
	defaults := []struct {
		key string
		raw string
	}{
		{"properties", "{}"},
		{"type", `"object"`},
		{"required", "[]"},
	}
	for _, d := range defaults {
		if gjson.GetBytes(js, d.key).Exists() {
			continue
		}
		if js, err = sjson.SetRawBytes(js, d.key, []byte(d.raw)); err != nil {
			return nil, errors.Wrapf(err, "failed to set %s of %s", d.key, f.Name)
		}
	}
	return js, nil
}

// MarshalJSON encodes the function with the parameters of ParametersJSON.
func (f FunctionDefinition) MarshalJSON() ([]byte, error) {
	params, err := f.ParametersJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
	}{
		Name:        f.Name,
		Description: f.Description,
		Parameters:  params,
	})
}

// ToolChoice is a specific tool to use.
type ToolChoice struct {
	// Type is the type of the tool.
	Type string `json:"type"`
	// Function is the function to call (if the tool is a function).
	Function *FunctionReference `json:"function,omitempty"`
}

// FunctionReference is a reference to a function.
type FunctionReference struct {
	// Name is the name of the function.
	Name string `json:"name"`
}

const (
	// ToolTypeFunction is the only tool type supported by the providers.
	ToolTypeFunction = "function"

	// ToolChoiceAuto lets the model decide whether to call tools.
	ToolChoiceAuto = "auto"
	// ToolChoiceNone disables tool calls.
	ToolChoiceNone = "none"
	// ToolChoiceRequired forces at least one tool call.
	ToolChoiceRequired = "required"
)

// NewFunctionTool returns a function tool definition.
func NewFunctionTool(name, description string, parameters *jsonschema.Schema) Tool {
	return Tool{
		Type: ToolTypeFunction,
		Function: &FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// ToolChoiceName returns the string form of a ToolChoice option,
// or the function name when a specific tool is requested.
func ToolChoiceName(choice any) (string, bool) {
	switch v := choice.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case ToolChoice:
		if v.Function != nil {
			return v.Function.Name, true
		}
	case *ToolChoice:
		if v != nil && v.Function != nil {
			return v.Function.Name, true
		}
	}
	return "", false
}

// WithModel specifies which model name to use.
func WithModel(model string) CallOption {
	return func(o *CallOptions) {
		o.Model = model
	}
}

// WithMaxTokens specifies the max number of tokens to generate.
func WithMaxTokens(maxTokens int) CallOption {
	return func(o *CallOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithTemperature specifies the model temperature, a hyperparameter that
// regulates the randomness, or creativity, of the AI's responses.
func WithTemperature(temperature float64) CallOption {
	return func(o *CallOptions) {
		o.Temperature = temperature
	}
}

// WithTools will add an option to set the tools to use.
func WithTools(tools []Tool) CallOption {
	return func(o *CallOptions) {
		o.Tools = tools
	}
}

// WithToolChoice will add an option to set the choice of tool to use.
// It can either be "none", "auto" (the default behavior), "required",
// or a specific tool as described in the ToolChoice type.
func WithToolChoice(choice any) CallOption {
	return func(o *CallOptions) {
		o.ToolChoice = choice
	}
}

// WithMetadata will add an option to set metadata to include in the request.
// The meaning of this field is specific to the backend in use.
func WithMetadata(metadata map[string]any) CallOption {
	return func(o *CallOptions) {
		o.Metadata = metadata
	}
}
