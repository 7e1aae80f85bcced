package mcp

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tidwall/sjson"
)

// TextResult returns a tool result with a single text content.
func TextResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}

// JSONResult returns a tool result with v encoded as JSON text.
func JSONResult(v any) (*mcpsdk.CallToolResult, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal tool result")
	}
	return TextResult(string(js)), nil
}

// ErrorPayload returns {"error": msg}.
func ErrorPayload(msg string) string {
	js, _ := sjson.Set("{}", "error", msg)
	return js
}

// ErrorResult returns a tool result carrying {"error": msg}.
// The result is not flagged as an error: the payload is the tool answer.
func ErrorResult(msg string) *mcpsdk.CallToolResult {
	return TextResult(ErrorPayload(msg))
}

// Texts returns the text contents of the result, in order.
func Texts(res *mcpsdk.CallToolResult) []string {
	if res == nil {
		return nil
	}
	var list []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			list = append(list, tc.Text)
		}
	}
	return list
}

// FirstText returns the first text content, or empty string.
func FirstText(res *mcpsdk.CallToolResult) string {
	texts := Texts(res)
	if len(texts) == 0 {
		return ""
	}
	return texts[0]
}
