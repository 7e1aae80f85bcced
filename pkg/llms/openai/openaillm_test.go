package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/pkg/llms"
	"github.com/effective-security/mcptools/pkg/llms/openai"
	"github.com/effective-security/mcptools/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")

	_, err := openai.New()
	assert.ErrorIs(t, err, openai.ErrMissingToken)

	llm, err := openai.New(openai.WithToken("fake"))
	require.NoError(t, err)
	assert.Equal(t, openai.DefaultChatModel, llm.GetName())
	assert.Equal(t, llms.ProviderOpenAI, llm.GetProviderType())

	llm, err = openai.New(
		openai.WithToken("fake"),
		openai.WithModel("sonar"),
		openai.WithProvider(llms.ProviderPerplexity),
		openai.WithOrganization("org"),
	)
	require.NoError(t, err)
	assert.Equal(t, "sonar", llm.GetName())
	assert.Equal(t, llms.ProviderPerplexity, llm.GetProviderType())
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-token")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	llm, err := openai.New()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", llm.GetName())
}

func TestToMessages(t *testing.T) {
	t.Parallel()

	msgs, err := openai.ToMessages([]llms.Message{
		llms.SystemMessage{Content: "sys"},
		llms.UserMessage{Content: "time in IST?"},
		llms.AssistantMessage{ToolCalls: []llms.ToolCall{
			{ID: "c1", Name: "get_localdate", Arguments: `{"timezone":"Asia/Kolkata"}`},
		}},
		llms.ToolResultMessage{ToolCallID: "c1", ToolName: "get_localdate", Content: `{"date":"14:30:05"}`},
		llms.AssistantMessage{Content: "It is 14:30."},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 5)

	js, err := json.Marshal(msgs)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(js, &decoded))
	assert.Equal(t, "system", decoded[0]["role"])
	assert.Equal(t, "user", decoded[1]["role"])
	assert.Equal(t, "assistant", decoded[2]["role"])
	calls, ok := decoded[2]["tool_calls"].([]any)
	require.True(t, ok)
	require.Len(t, calls, 1)
	call := calls[0].(map[string]any)
	assert.Equal(t, "c1", call["id"])
	assert.Equal(t, "function", call["type"])
	assert.Equal(t, "tool", decoded[3]["role"])
	assert.Equal(t, "c1", decoded[3]["tool_call_id"])
	assert.Equal(t, `{"date":"14:30:05"}`, decoded[3]["content"])
	assert.Equal(t, "It is 14:30.", decoded[4]["content"])
}

func TestToTools(t *testing.T) {
	t.Parallel()

	empty, err := schema.ObjectParameters(nil)
	require.NoError(t, err)

	tools, err := openai.ToTools([]llms.Tool{
		llms.NewFunctionTool("get_localdate", "Calls the get_localdate tool", empty),
		llms.NewFunctionTool("get_weather", "Current weather", nil),
	})
	require.NoError(t, err)
	require.Len(t, tools, 2)

	js, err := json.Marshal(tools[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "function",
		"function": {
			"name": "get_localdate",
			"description": "Calls the get_localdate tool",
			"parameters": {"type": "object", "properties": {}, "required": []}
		}
	}`, string(js))

	_, err = openai.ToTools([]llms.Tool{{Type: "web_search"}})
	assert.EqualError(t, err, `openai: tool type "web_search" not supported`)
}

func TestGenerateContent(t *testing.T) {
	t.Parallel()

	var req map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer fake", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": null,
					"tool_calls": [
						{"id": "call_1", "type": "function", "function": {"name": "get_localdate", "arguments": "{\"timezone\":\"Asia/Kolkata\",\"format\":\"%H:%M:%S\"}"}},
						{"id": "call_2", "type": "function", "function": {"name": "get_weather", "arguments": "{\"location\":\"Paris\"}"}}
					]
				}
			}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	llm, err := openai.New(openai.WithToken("fake"), openai.WithBaseURL(srv.URL))
	require.NoError(t, err)

	empty, err := schema.ObjectParameters(nil)
	require.NoError(t, err)

	resp, err := llm.GenerateContent(context.Background(),
		[]llms.Message{llms.SystemMessage{Content: "sys"}, llms.UserMessage{Content: "time in IST?"}},
		llms.WithModel("gpt-4o"),
		llms.WithTools([]llms.Tool{llms.NewFunctionTool("get_localdate", "date", empty)}),
		llms.WithToolChoice(llms.ToolChoiceAuto),
	)
	require.NoError(t, err)

	msg, err := resp.AssistantMessage()
	require.NoError(t, err)
	assert.Empty(t, msg.Content)
	require.Len(t, msg.ToolCalls, 2)
	assert.Equal(t, llms.ToolCall{ID: "call_1", Name: "get_localdate", Arguments: `{"timezone":"Asia/Kolkata","format":"%H:%M:%S"}`}, msg.ToolCalls[0])
	assert.Equal(t, "call_2", msg.ToolCalls[1].ID)
	assert.Equal(t, "tool_calls", resp.Choices[0].StopReason)

	assert.Equal(t, "gpt-4o", req["model"])
	assert.Equal(t, "auto", req["tool_choice"])
	assert.Len(t, req["tools"], 1)
	assert.Len(t, req["messages"], 2)
}

func TestGenerateContent_Errors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	llm, err := openai.New(openai.WithToken("fake"), openai.WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = llm.GenerateContent(context.Background(), []llms.Message{llms.UserMessage{Content: "hi"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, llms.ErrChatAPI))
	var apiErr *llms.ChatAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	empty, err := schema.ObjectParameters(nil)
	require.NoError(t, err)
	_, err = llm.GenerateContent(context.Background(), []llms.Message{llms.UserMessage{Content: "hi"}},
		llms.WithTools([]llms.Tool{llms.NewFunctionTool("get_localdate", "date", empty)}),
		llms.WithToolChoice(llms.ToolChoice{Type: "function", Function: &llms.FunctionReference{Name: "get_localdate"}}),
	)
	assert.ErrorIs(t, err, openai.ErrUnsupportedToolChoice)
}
