package orchestrator

import (
	"context"

	"github.com/effective-security/mcptools/pkg/llms"
)

// Callback receives the events of a run.
// Implementations are in the callbacks package.
type Callback interface {
	OnRunStart(ctx context.Context, runID, model, userMessage string)
	OnRunEnd(ctx context.Context, runID string, state State, answer string, transcript *llms.Transcript)
	OnRunError(ctx context.Context, runID string, err error, transcript *llms.Transcript)

	OnLLMCallStart(ctx context.Context, llm llms.Model, iteration int, payload []llms.Message)
	OnLLMCallEnd(ctx context.Context, llm llms.Model, iteration int, resp *llms.ContentResponse)

	OnToolStart(ctx context.Context, call llms.ToolCall)
	OnToolEnd(ctx context.Context, call llms.ToolCall, output string)
	OnToolError(ctx context.Context, call llms.ToolCall, output string)
	OnToolNotFound(ctx context.Context, call llms.ToolCall)
}
