package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/effective-security/mcptools/orchestrator"
	"github.com/effective-security/mcptools/pkg/llms"
	"github.com/effective-security/mcptools/pkg/llmutils"
)

var TimeNowFn = time.Now

type RunStats struct {
	RunID string
	Model string
	State string

	Duration            time.Duration
	TotalMessages       uint32
	LLMBytesOut         uint64
	LLMBytesIn          uint64
	LLMInputTokens      uint64
	LLMOutputTokens     uint64
	LLMTotalTokens      uint64
	LLMCalls            uint32
	ToolsCalls          uint32
	ToolsCallsSucceeded uint32
	ToolsCallsFailed    uint32
	ToolNotFound        uint32
}

// Scratchpad records the events and stats of each run,
// runs are identified by orchestrator.RunIDFromContext.
type Scratchpad struct {
	runs map[string]*run
	mode Mode
	lock sync.Mutex
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{
		runs: make(map[string]*run),
		mode: mode,
	}
}

// EndRun returns the stats and the scratchpad of a finished run,
// and forgets the run.
func (l *Scratchpad) EndRun(runID string) (*RunStats, []byte) {
	l.lock.Lock()
	run := l.runs[runID]
	delete(l.runs, runID)
	l.lock.Unlock()

	if run == nil {
		return nil, nil
	}

	stats := run.stats
	if stats.Duration == 0 {
		stats.Duration = time.Since(run.started)
	}

	run.print(fmt.Sprintf("Tool calls: %d, Failed: %d, Not Found: %d",
		stats.ToolsCalls,
		stats.ToolsCallsFailed,
		stats.ToolNotFound,
	))
	run.print(fmt.Sprintf("LLM calls: %d, Messages: %d, Bytes Out: %d, Bytes In: %d, Bytes Total: %d, Input Tokens: %d, Output Tokens: %d, Total Tokens: %d",
		stats.LLMCalls,
		stats.TotalMessages,
		stats.LLMBytesOut,
		stats.LLMBytesIn,
		stats.LLMBytesOut+stats.LLMBytesIn,
		stats.LLMInputTokens,
		stats.LLMOutputTokens,
		stats.LLMTotalTokens,
	))
	run.print(fmt.Sprintf("*** Run Ended: %s. Duration: %s ***", stats.State, stats.Duration))

	return &stats, run.w.Bytes()
}

func (l *Scratchpad) getRun(ctx context.Context) *run {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.runs[orchestrator.RunIDFromContext(ctx)]
}

func (l *Scratchpad) OnRunStart(ctx context.Context, runID, model, userMessage string) {
	r := &run{
		stats: RunStats{
			RunID: runID,
			Model: model,
		},
		started: time.Now(),
	}

	l.lock.Lock()
	l.runs[runID] = r
	l.lock.Unlock()

	r.print("*** Run Started ***", model)
	r.print("Input:", userMessage)
}

func (l *Scratchpad) OnRunEnd(ctx context.Context, runID string, state orchestrator.State, answer string, transcript *llms.Transcript) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	run.finish(state.String())
	if l.mode == ModeVerbose {
		run.print("Output:", answer)
		run.print(l.printMessages(transcript.Messages()))
	}
}

func (l *Scratchpad) OnRunError(ctx context.Context, runID string, err error, transcript *llms.Transcript) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	run.finish("failed")
	run.print("*** Error ***", err.Error())
	if transcript != nil {
		run.print(l.printMessages(transcript.Messages()))
	}
}

func (l *Scratchpad) printMessages(messages []llms.Message) string {
	var buf strings.Builder
	buf.WriteString("Messages:\n")
	for idx, msg := range messages {
		fmt.Fprintf(&buf, "[%d] %s:", idx, msg.GetRole())
		switch m := msg.(type) {
		case llms.AssistantMessage:
			fmt.Fprintf(&buf, " %d bytes, %d tool calls\n", len(m.Content), len(m.ToolCalls))
			for _, tc := range m.ToolCalls {
				buf.WriteString("  - ")
				buf.WriteString(tc.String())
				buf.WriteString("\n")
			}
		case llms.ToolResultMessage:
			fmt.Fprintf(&buf, " %s %s, %d bytes\n", m.ToolName, m.ToolCallID, len(m.Content))
		default:
			fmt.Fprintf(&buf, " %d bytes\n", len(msg.GetContent()))
		}
	}
	return buf.String()
}

func (l *Scratchpad) OnLLMCallStart(ctx context.Context, llm llms.Model, iteration int, payload []llms.Message) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}

	atomic.AddUint64(&run.stats.LLMBytesOut, llmutils.CountMessagesContentSize(payload))
	atomic.AddUint32(&run.stats.LLMCalls, 1)
	count := uint32(len(payload))
	atomic.AddUint32(&run.stats.TotalMessages, count)

	run.print("*** LLM Call ***", fmt.Sprintf("#%d %s model, %d messages", iteration, llm.GetName(), count))
	if l.mode == ModeVerbose {
		run.print(l.printMessages(payload))
	}
}

func (l *Scratchpad) OnLLMCallEnd(ctx context.Context, llm llms.Model, iteration int, resp *llms.ContentResponse) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}

	atomic.AddUint64(&run.stats.LLMBytesIn, llmutils.CountResponseContentSize(resp))
	tokensIn, tokensOut, tokensTotal := llmutils.CountTokens(resp)
	atomic.AddUint64(&run.stats.LLMInputTokens, uint64(tokensIn))
	atomic.AddUint64(&run.stats.LLMOutputTokens, uint64(tokensOut))
	atomic.AddUint64(&run.stats.LLMTotalTokens, uint64(tokensTotal))

	run.print("*** LLM Call End ***", fmt.Sprintf("#%d %s model, %d input tokens, %d output tokens, %d total tokens", iteration, llm.GetName(), tokensIn, tokensOut, tokensTotal))
}

func (l *Scratchpad) OnToolStart(ctx context.Context, call llms.ToolCall) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCalls, 1)
	run.print(call.Name, "*** Tool Start ***")
	run.print(call.Name, "Input:", call.Arguments)
}

func (l *Scratchpad) OnToolEnd(ctx context.Context, call llms.ToolCall, output string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsSucceeded, 1)
	if l.mode == ModeVerbose {
		run.print(call.Name, "Output:", output)
	}
	run.print(call.Name, "*** Tool End ***")
}

func (l *Scratchpad) OnToolError(ctx context.Context, call llms.ToolCall, output string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsFailed, 1)
	run.print(call.Name, "*** Tool Error ***", output)
}

func (l *Scratchpad) OnToolNotFound(ctx context.Context, call llms.ToolCall) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolNotFound, 1)
	run.print("*** Tool Not Found ***", call.Name)
}

type run struct {
	w       bytes.Buffer
	started time.Time
	lock    sync.Mutex
	stats   RunStats
}

func (r *run) finish(state string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.stats.State = state
	r.stats.Duration = time.Since(r.started)
}

// print writes the entries to the run's output.
// The entries are written in the following format:
// [timestamp runID] entry entry\n
func (r *run) print(entries ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	now := TimeNowFn()
	ts := now.Format("2006-01-02 15:04:05")

	_, _ = r.w.WriteString(ts)
	_, _ = r.w.WriteString(" ")
	_, _ = r.w.WriteString(r.stats.RunID)
	_, _ = r.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = r.w.WriteString(" ")
		}
		_, _ = r.w.WriteString(entry)
	}
	_, _ = r.w.WriteString("\n")
}
