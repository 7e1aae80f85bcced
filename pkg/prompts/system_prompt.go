// Package prompts renders the system prompt that seeds an orchestration run.
package prompts

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/pkg/llms"
)

// DefaultSystemPrompt adapts to the tools in the catalog.
// With only the date tool it renders the classic date and time prompt.
const DefaultSystemPrompt = `
{{- $date := has "get_localdate" .Tools -}}
{{- $weather := or (has "get_weather" .Tools) (has "get_weather_on_date" .Tools) -}}
You are a helpful assistant with access to {{ if and $date $weather }}date, time and weather{{ else if $weather }}weather{{ else }}date and time{{ end }} tools.
{{- if $date }} Use the get_localdate tool when users ask about dates, times, or timezones.{{ end }}
{{- if $weather }} Use the get_weather tool for current conditions and get_weather_on_date for a forecast on a specific date.{{ end }}`

// Data is the input of a system prompt template.
type Data struct {
	// Tools is the list of tool names in the catalog.
	Tools []string
	// Model is the chat model of the run.
	Model string
}

// Template is a parsed system prompt template.
// Sprig functions are available in templates.
type Template struct {
	tmpl *template.Template
}

// NewTemplate parses text, an empty text selects DefaultSystemPrompt.
func NewTemplate(text string) (*Template, error) {
	if text == "" {
		text = DefaultSystemPrompt
	}
	tmpl, err := template.New("system").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse system prompt template")
	}
	return &Template{tmpl: tmpl}, nil
}

// MustTemplate is like NewTemplate but panics on error.
func MustTemplate(text string) *Template {
	t, err := NewTemplate(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Format renders the template.
func (t *Template) Format(data Data) (string, error) {
	if data.Tools == nil {
		data.Tools = []string{}
	}
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "failed to format system prompt")
	}
	return buf.String(), nil
}

// SystemMessage renders the template as the first message of a transcript.
func (t *Template) SystemMessage(data Data) (llms.SystemMessage, error) {
	s, err := t.Format(data)
	if err != nil {
		return llms.SystemMessage{}, err
	}
	return llms.SystemMessage{Content: s}, nil
}
