package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/mcptools/orchestrator"
	"github.com/effective-security/mcptools/pkg/llms"
	"github.com/effective-security/mcptools/pkg/llmutils"
	"github.com/effective-security/xlog"
	"github.com/fatih/color"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ orchestrator.Callback = (*Noop)(nil)
	_ orchestrator.Callback = (*Printer)(nil)
	_ orchestrator.Callback = (*PackageLogger)(nil)
	_ orchestrator.Callback = (*Fanout)(nil)
	_ orchestrator.Callback = (*Scratchpad)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []orchestrator.Callback
}

func NewFanout(callbacks ...orchestrator.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback orchestrator.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnRunStart(ctx context.Context, runID, model, userMessage string) {
	for _, callback := range l.callbacks {
		callback.OnRunStart(ctx, runID, model, userMessage)
	}
}

func (l *Fanout) OnRunEnd(ctx context.Context, runID string, state orchestrator.State, answer string, transcript *llms.Transcript) {
	for _, callback := range l.callbacks {
		callback.OnRunEnd(ctx, runID, state, answer, transcript)
	}
}

func (l *Fanout) OnRunError(ctx context.Context, runID string, err error, transcript *llms.Transcript) {
	for _, callback := range l.callbacks {
		callback.OnRunError(ctx, runID, err, transcript)
	}
}

func (l *Fanout) OnLLMCallStart(ctx context.Context, llm llms.Model, iteration int, payload []llms.Message) {
	for _, callback := range l.callbacks {
		callback.OnLLMCallStart(ctx, llm, iteration, payload)
	}
}

func (l *Fanout) OnLLMCallEnd(ctx context.Context, llm llms.Model, iteration int, resp *llms.ContentResponse) {
	for _, callback := range l.callbacks {
		callback.OnLLMCallEnd(ctx, llm, iteration, resp)
	}
}

func (l *Fanout) OnToolStart(ctx context.Context, call llms.ToolCall) {
	for _, callback := range l.callbacks {
		callback.OnToolStart(ctx, call)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, call llms.ToolCall, output string) {
	for _, callback := range l.callbacks {
		callback.OnToolEnd(ctx, call, output)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, call llms.ToolCall, output string) {
	for _, callback := range l.callbacks {
		callback.OnToolError(ctx, call, output)
	}
}

func (l *Fanout) OnToolNotFound(ctx context.Context, call llms.ToolCall) {
	for _, callback := range l.callbacks {
		callback.OnToolNotFound(ctx, call)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnRunStart(ctx context.Context, runID, model, userMessage string) {}
func (l *Noop) OnRunEnd(ctx context.Context, runID string, state orchestrator.State, answer string, transcript *llms.Transcript) {
}
func (l *Noop) OnRunError(ctx context.Context, runID string, err error, transcript *llms.Transcript) {
}
func (l *Noop) OnLLMCallStart(ctx context.Context, llm llms.Model, iteration int, payload []llms.Message) {
}
func (l *Noop) OnLLMCallEnd(ctx context.Context, llm llms.Model, iteration int, resp *llms.ContentResponse) {
}
func (l *Noop) OnToolStart(ctx context.Context, call llms.ToolCall) {}
func (l *Noop) OnToolEnd(ctx context.Context, call llms.ToolCall, output string) {}
func (l *Noop) OnToolError(ctx context.Context, call llms.ToolCall, output string) {}
func (l *Noop) OnToolNotFound(ctx context.Context, call llms.ToolCall) {}

// Printer is a callback handler that prints to the Writer.
// Headings are colored when the output is a terminal.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock    sync.Mutex
	heading *color.Color
	failure *color.Color
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{
		Out:     out,
		Mode:    mode,
		heading: color.New(color.FgCyan),
		failure: color.New(color.FgRed),
	}
}

func (l *Printer) OnRunStart(ctx context.Context, runID, model, userMessage string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	_, _ = l.heading.Fprintf(l.Out, "Run Start: %s (%s)\n", runID, model)
	fmt.Fprintf(l.Out, "Input: %s\n", userMessage)
}

func (l *Printer) OnRunEnd(ctx context.Context, runID string, state orchestrator.State, answer string, transcript *llms.Transcript) {
	l.lock.Lock()
	defer l.lock.Unlock()
	_, _ = l.heading.Fprintf(l.Out, "Run End: %s (%s)\n", state, runID)
	if l.Mode == ModeVerbose && transcript != nil {
		llmutils.PrintMessages(l.Out, transcript.Messages())
	}
}

func (l *Printer) OnRunError(ctx context.Context, runID string, err error, transcript *llms.Transcript) {
	l.lock.Lock()
	defer l.lock.Unlock()
	_, _ = l.failure.Fprintf(l.Out, "Run Error: %s: %s\n", runID, err.Error())
}

func (l *Printer) OnLLMCallStart(ctx context.Context, llm llms.Model, iteration int, payload []llms.Message) {
	l.lock.Lock()
	defer l.lock.Unlock()
	_, _ = l.heading.Fprintf(l.Out, "LLM Call: #%d %s model, %d messages\n", iteration, llm.GetName(), len(payload))
}

func (l *Printer) OnLLMCallEnd(ctx context.Context, llm llms.Model, iteration int, resp *llms.ContentResponse) {
	l.lock.Lock()
	defer l.lock.Unlock()
	_, _ = l.heading.Fprintf(l.Out, "LLM Call End: #%d %s model, %d choices\n", iteration, llm.GetName(), len(resp.Choices))
	if l.Mode == ModeVerbose {
		for _, choice := range resp.Choices {
			if choice.Content != "" {
				fmt.Fprintln(l.Out, choice.Content)
			}
		}
	}
}

func (l *Printer) OnToolStart(ctx context.Context, call llms.ToolCall) {
	l.lock.Lock()
	defer l.lock.Unlock()
	_, _ = l.heading.Fprintf(l.Out, "Tool Start: %s (%s)\n", call.Name, call.ID)
	fmt.Fprintf(l.Out, "Input: %s\n", call.Arguments)
}

func (l *Printer) OnToolEnd(ctx context.Context, call llms.ToolCall, output string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	_, _ = l.heading.Fprintf(l.Out, "Tool End: %s (%s)\n", call.Name, call.ID)
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Output: %s\n", output)
	}
}

func (l *Printer) OnToolError(ctx context.Context, call llms.ToolCall, output string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	_, _ = l.failure.Fprintf(l.Out, "Tool Error: %s (%s): %s\n", call.Name, call.ID, output)
}

func (l *Printer) OnToolNotFound(ctx context.Context, call llms.ToolCall) {
	l.lock.Lock()
	defer l.lock.Unlock()
	_, _ = l.failure.Fprintf(l.Out, "Tool Not Found: %s\n", call.Name)
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnRunStart(ctx context.Context, runID, model, userMessage string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "run_start",
		"run_id", runID,
		"model", model,
		"input", userMessage,
	)
}

func (l *PackageLogger) OnRunEnd(ctx context.Context, runID string, state orchestrator.State, answer string, transcript *llms.Transcript) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "run_end",
		"run_id", runID,
		"state", state.String(),
		"messages", transcript.Len(),
	)
}

func (l *PackageLogger) OnRunError(ctx context.Context, runID string, err error, transcript *llms.Transcript) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "run_error",
		"run_id", runID,
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnLLMCallStart(ctx context.Context, llm llms.Model, iteration int, payload []llms.Message) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "llm_call_start",
		"model", llm.GetName(),
		"iteration", iteration,
		"messages", len(payload),
	)
}

func (l *PackageLogger) OnLLMCallEnd(ctx context.Context, llm llms.Model, iteration int, resp *llms.ContentResponse) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "llm_call_end",
		"model", llm.GetName(),
		"iteration", iteration,
		"choices", len(resp.Choices),
	)
}

func (l *PackageLogger) OnToolStart(ctx context.Context, call llms.ToolCall) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"tool", call.Name,
		"call_id", call.ID,
		"input", call.Arguments,
	)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, call llms.ToolCall, output string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"tool", call.Name,
		"call_id", call.ID,
		"output", output,
	)
}

func (l *PackageLogger) OnToolError(ctx context.Context, call llms.ToolCall, output string) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_error",
		"tool", call.Name,
		"call_id", call.ID,
		"output", output,
	)
}

func (l *PackageLogger) OnToolNotFound(ctx context.Context, call llms.ToolCall) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_not_found",
		"tool", call.Name,
		"call_id", call.ID,
	)
}
