package llmutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/effective-security/mcptools/pkg/llms"
	"github.com/effective-security/x/values"
	"gopkg.in/yaml.v3"
)

func JSONIndent(body string) string {
	var buf bytes.Buffer
	_ = json.Indent(&buf, []byte(body), "", "\t")
	return buf.String()
}

func ToJSON(val any) string {
	js, _ := json.Marshal(val)
	return string(js)
}

func ToJSONIndent(val any) string {
	js, _ := json.MarshalIndent(val, "", "\t")
	return string(js)
}

func ToYAML(val any) string {
	js, _ := yaml.Marshal(val)
	return string(js)
}

// PrintMessages is a debugging helper for a transcript payload.
func PrintMessages(w io.Writer, msgs []llms.Message) {
	for _, m := range msgs {
		role := strings.ToUpper(string(m.GetRole()))
		switch mm := m.(type) {
		case llms.AssistantMessage:
			printLine(w, role, mm.Content)
			for _, tc := range mm.ToolCalls {
				fmt.Fprintf(w, "ToolCall ID=%s, Func=%s(%s)\n", tc.ID, tc.Name, tc.Arguments)
			}
		case llms.ToolResultMessage:
			printLine(w, role, fmt.Sprintf("ToolResult ID=%s, Name=%s, Content=%s", mm.ToolCallID, mm.ToolName, mm.Content))
		default:
			printLine(w, role, m.GetContent())
		}
	}
}

func printLine(w io.Writer, role, content string) {
	if content == "" {
		fmt.Fprintf(w, "%s:\n", role)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", role, content)
}

// CountMessagesContentSize counts the size of the content in the messages
func CountMessagesContentSize(msgs []llms.Message) uint64 {
	var size uint64
	for _, m := range msgs {
		size += uint64(len(m.GetRole()))
		size += uint64(len(m.GetContent()))
		switch mm := m.(type) {
		case llms.AssistantMessage:
			for _, tc := range mm.ToolCalls {
				size += uint64(len(tc.ID) + len(tc.Name) + len(tc.Arguments))
			}
		case llms.ToolResultMessage:
			size += uint64(len(mm.ToolCallID) + len(mm.ToolName))
		}
	}
	return size
}

// CountResponseContentSize counts the size of the content in the content response
func CountResponseContentSize(resp *llms.ContentResponse) uint64 {
	if resp == nil {
		return 0
	}
	var size uint64
	for _, choice := range resp.Choices {
		size += uint64(len(choice.Content))
		for _, tc := range choice.ToolCalls {
			size += uint64(len(tc.ID) + len(tc.Name) + len(tc.Arguments))
		}
	}
	return size
}

// CountTokens returns the token usage reported in the generation info.
// OpenAI reports prompt and completion tokens, Anthropic input and output tokens.
func CountTokens(resp *llms.ContentResponse) (in, out, total int64) {
	if resp == nil {
		return
	}
	for _, choice := range resp.Choices {
		ma := values.MapAny(choice.GenerationInfo)
		in += ma.Int64("InputTokens") + ma.Int64("PromptTokens")
		out += ma.Int64("OutputTokens") + ma.Int64("CompletionTokens")
		total += ma.Int64("TotalTokens")
	}
	return
}

// EnsureEndsWithNewline ensures the message ends with a newline,
// it also removes any extra leading and trailing spaces.
func EnsureEndsWithNewline(s string) string {
	s = strings.TrimSpace(s)
	c := len(s)
	if c == 0 {
		return s
	}
	if s[c-1] != '\n' {
		return s + "\n"
	}
	return s
}
