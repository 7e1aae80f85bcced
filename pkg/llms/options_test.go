package llms_test

import (
	"encoding/json"
	"testing"

	"github.com/effective-security/mcptools/pkg/llms"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CallOptions(t *testing.T) {
	t.Parallel()

	params := &jsonschema.Schema{Type: "object"}
	tools := []llms.Tool{llms.NewFunctionTool("get_weather", "Current weather", params)}

	opts := llms.CallOptions{}
	for _, o := range []llms.CallOption{
		llms.WithModel("gpt-4o-mini"),
		llms.WithMaxTokens(100),
		llms.WithTemperature(0.2),
		llms.WithTools(tools),
		llms.WithToolChoice(llms.ToolChoiceAuto),
		llms.WithMetadata(map[string]any{"run": "1"}),
	} {
		o(&opts)
	}

	assert.Equal(t, "gpt-4o-mini", opts.Model)
	assert.Equal(t, 100, opts.MaxTokens)
	assert.Equal(t, 0.2, opts.Temperature)
	assert.Equal(t, "auto", opts.ToolChoice)
	assert.Equal(t, "1", opts.Metadata["run"])
	if assert.Len(t, opts.Tools, 1) {
		assert.Equal(t, "function", opts.Tools[0].Type)
		assert.Equal(t, "get_weather", opts.Tools[0].Function.Name)
		assert.Same(t, params, opts.Tools[0].Function.Parameters)
	}
}

func Test_ToolChoiceName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		choice any
		name   string
		ok     bool
	}{
		{nil, "", false},
		{"", "", false},
		{"auto", "auto", true},
		{llms.ToolChoice{Type: "function", Function: &llms.FunctionReference{Name: "get_weather"}}, "get_weather", true},
		{&llms.ToolChoice{Type: "function", Function: &llms.FunctionReference{Name: "get_localdate"}}, "get_localdate", true},
		{llms.ToolChoice{Type: "function"}, "", false},
		{42, "", false},
	}
	for _, tc := range tests {
		name, ok := llms.ToolChoiceName(tc.choice)
		assert.Equal(t, tc.name, name)
		assert.Equal(t, tc.ok, ok)
	}
}

func Test_FunctionDefinition_Parameters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params *jsonschema.Schema
		exp    string
	}{
		{
			name: "nil",
			exp:  `{"name":"ping","description":"Ping","parameters":{"properties":{},"type":"object","required":[]}}`,
		},
		{
			name:   "empty_required",
			params: &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties(), Required: []string{}},
			exp:    `{"name":"ping","description":"Ping","parameters":{"properties":{},"type":"object","required":[]}}`,
		},
		{
			name:   "no_type",
			params: &jsonschema.Schema{},
			exp:    `{"name":"ping","description":"Ping","parameters":{"properties":{},"type":"object","required":[]}}`,
		},
		{
			name:   "required",
			params: &jsonschema.Schema{Type: "object", Required: []string{"location"}},
			exp:    `{"name":"ping","description":"Ping","parameters":{"type":"object","required":["location"],"properties":{}}}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tool := llms.NewFunctionTool("ping", "Ping", tc.params)
			js, err := json.Marshal(tool.Function)
			require.NoError(t, err)
			assert.JSONEq(t, tc.exp, string(js))

			params, err := tool.Function.ParametersJSON()
			require.NoError(t, err)
			assert.Contains(t, string(params), `"required":`)
		})
	}
}
