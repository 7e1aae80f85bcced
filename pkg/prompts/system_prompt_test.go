package prompts_test

import (
	"testing"

	"github.com/effective-security/mcptools/pkg/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSystemPrompt(t *testing.T) {
	t.Parallel()

	tmpl, err := prompts.NewTemplate("")
	require.NoError(t, err)

	tests := []struct {
		name  string
		tools []string
		exp   string
	}{
		{
			name:  "date",
			tools: []string{"get_localdate"},
			exp:   "You are a helpful assistant with access to date and time tools. Use the get_localdate tool when users ask about dates, times, or timezones.",
		},
		{
			name:  "weather",
			tools: []string{"get_weather", "get_weather_on_date"},
			exp:   "You are a helpful assistant with access to weather tools. Use the get_weather tool for current conditions and get_weather_on_date for a forecast on a specific date.",
		},
		{
			name:  "all",
			tools: []string{"get_localdate", "get_weather", "get_weather_on_date"},
			exp:   "You are a helpful assistant with access to date, time and weather tools. Use the get_localdate tool when users ask about dates, times, or timezones. Use the get_weather tool for current conditions and get_weather_on_date for a forecast on a specific date.",
		},
		{
			name: "none",
			exp:  "You are a helpful assistant with access to date and time tools.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			msg, err := tmpl.SystemMessage(prompts.Data{Tools: tc.tools})
			require.NoError(t, err)
			assert.Equal(t, tc.exp, msg.Content)
		})
	}
}

func TestCustomTemplate(t *testing.T) {
	t.Parallel()

	tmpl := prompts.MustTemplate(`Model {{ .Model | upper }} may call: {{ .Tools | join ", " }}.`)
	s, err := tmpl.Format(prompts.Data{Model: "gpt-4o-mini", Tools: []string{"get_weather", "get_localdate"}})
	require.NoError(t, err)
	assert.Equal(t, "Model GPT-4O-MINI may call: get_weather, get_localdate.", s)

	_, err = prompts.NewTemplate("{{ .Tools ")
	assert.ErrorContains(t, err, "failed to parse system prompt template")

	_, err = prompts.MustTemplate("{{ .Unknown }}").Format(prompts.Data{})
	assert.ErrorContains(t, err, "failed to format system prompt")

	assert.Panics(t, func() { prompts.MustTemplate("{{ end }}") })
}
