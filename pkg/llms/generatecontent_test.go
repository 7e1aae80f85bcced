package llms_test

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Message_JSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		msg  llms.Message
		js   string
	}{
		{
			"system",
			llms.SystemMessage{Content: "be helpful"},
			`{"role":"system","content":"be helpful"}`,
		},
		{
			"user",
			llms.UserMessage{Content: "what time is it?"},
			`{"role":"user","content":"what time is it?"}`,
		},
		{
			"assistant_text",
			llms.AssistantMessage{Content: "It is noon."},
			`{"role":"assistant","content":"It is noon."}`,
		},
		{
			"assistant_tool_calls",
			llms.AssistantMessage{ToolCalls: []llms.ToolCall{
				{ID: "call_1", Name: "get_localdate", Arguments: `{"timezone":"UTC"}`},
			}},
			`{"role":"assistant","tool_calls":[{"id":"call_1","name":"get_localdate","arguments":"{\"timezone\":\"UTC\"}"}]}`,
		},
		{
			"tool_result",
			llms.ToolResultMessage{ToolCallID: "call_1", ToolName: "get_localdate", Content: `{"date":"x"}`},
			`{"role":"tool","content":"{\"date\":\"x\"}","tool_call_id":"call_1","name":"get_localdate"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			js, err := json.Marshal(tt.msg)
			require.NoError(t, err)
			assert.Equal(t, tt.js, string(js))

			msg, err := llms.UnmarshalMessage(js)
			require.NoError(t, err)
			assert.Equal(t, tt.msg, msg)
			assert.Equal(t, tt.msg.GetRole(), msg.GetRole())
		})
	}
}

func Test_UnmarshalMessage_Errors(t *testing.T) {
	t.Parallel()

	_, err := llms.UnmarshalMessage([]byte(`{"role":"function","content":"x"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, llms.ErrUnexpectedRole))

	_, err = llms.UnmarshalMessage([]byte(`not json`))
	assert.EqualError(t, err, "failed to unmarshal message: invalid character 'o' in literal null (expecting 'u')")
}

func Test_ContentResponse_AssistantMessage(t *testing.T) {
	t.Parallel()

	var nilResp *llms.ContentResponse
	_, err := nilResp.AssistantMessage()
	assert.ErrorIs(t, err, llms.ErrEmptyResponse)

	_, err = (&llms.ContentResponse{}).AssistantMessage()
	assert.ErrorIs(t, err, llms.ErrEmptyResponse)

	resp := &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content:   "checking",
				ToolCalls: []llms.ToolCall{{ID: "1", Name: "get_weather", Arguments: `{"location":"Paris"}`}},
			},
		},
	}
	msg, err := resp.AssistantMessage()
	require.NoError(t, err)
	assert.Equal(t, "checking", msg.Content)
	assert.True(t, msg.HasToolCalls())
	assert.Equal(t, "ToolCall: 1 (get_weather), input: {\"location\":\"Paris\"}", msg.ToolCalls[0].String())
}

func Test_ChatAPIError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, llms.NewChatAPIError(llms.ProviderOpenAI, 500, nil))

	err := llms.NewChatAPIError(llms.ProviderOpenAI, 429, errors.New("rate limited"))
	assert.True(t, errors.Is(err, llms.ErrChatAPI))
	assert.EqualError(t, err, "OPENAI: status 429: rate limited")

	var apiErr *llms.ChatAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 429, apiErr.StatusCode)

	wrapped := errors.Wrap(llms.NewChatAPIError(llms.ProviderAnthropic, 0, errors.New("boom")), "generate")
	assert.True(t, errors.Is(wrapped, llms.ErrChatAPI))
	assert.EqualError(t, wrapped, "generate: ANTHROPIC: boom")
}

func Test_ProviderCapabilities(t *testing.T) {
	t.Parallel()
	assert.True(t, llms.ProviderOpenAI.Supports(llms.CapabilityFunctionCalling))
	assert.True(t, llms.ProviderAnthropic.Supports(llms.CapabilityFunctionCalling))
	assert.False(t, llms.ProviderPerplexity.Supports(llms.CapabilityFunctionCalling))
	assert.False(t, llms.ProviderType("unknown").Supports(llms.CapabilityText))
}
