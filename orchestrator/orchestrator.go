// Package orchestrator implements the tool-orchestration loop: it sends the
// transcript and the tool catalog to a chat model, executes the tool calls
// the model asks for and repeats until the model answers or the iteration
// ceiling is reached.
package orchestrator

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/mcp"
	"github.com/effective-security/mcptools/pkg/llms"
	"github.com/effective-security/mcptools/pkg/metricskey"
	"github.com/effective-security/mcptools/pkg/prompts"
	"github.com/effective-security/mcptools/pkg/schema"
	"github.com/effective-security/mcptools/toolhost"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcptools", "orchestrator")

const (
	// DefaultMaxIterations is the ceiling used when none is given
	DefaultMaxIterations = 10

	// NoResponseText is returned when the final reply has no content
	NoResponseText = "No response generated"
	// ExhaustedText is returned when the ceiling is reached
	ExhaustedText = "Maximum iterations reached. Please try again."
	// NoContentPayload is the tool result when the host returns no content
	NoContentPayload = `{"result": "No content returned"}`
)

var (
	// ErrInvalidTransition is returned on a state change the run does not allow
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrMalformedArguments is returned when tool call arguments are not a JSON object
	ErrMalformedArguments = errors.New("malformed tool arguments")
	// ErrFunctionCallingNotSupported is returned when the model cannot call tools
	ErrFunctionCallingNotSupported = errors.New("function calling is not supported")
)

// ToolHost lists and calls tools.
// toolhost.Client, toolhost.Session and toolhost.Multi implement it.
type ToolHost interface {
	ListTools(ctx context.Context) ([]*toolhost.Descriptor, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*toolhost.Result, error)
}

// Option configures the Loop.
type Option func(*Loop)

// WithCallback sets the run events callback.
func WithCallback(callback Callback) Option {
	return func(l *Loop) {
		l.callback = callback
	}
}

// WithSystemPrompt sets the system prompt template.
func WithSystemPrompt(tpl *prompts.Template) Option {
	return func(l *Loop) {
		if tpl != nil {
			l.prompt = tpl
		}
	}
}

// WithCallOptions adds options to every chat call, such as max tokens.
func WithCallOptions(opts ...llms.CallOption) Option {
	return func(l *Loop) {
		l.callOptions = append(l.callOptions, opts...)
	}
}

// Loop runs the tool-orchestration loop.
// A Loop may run several times, each run has its own transcript.
type Loop struct {
	llm         llms.Model
	host        ToolHost
	prompt      *prompts.Template
	callback    Callback
	callOptions []llms.CallOption
}

// New returns a Loop over the model and the tool host.
func New(llm llms.Model, host ToolHost, opts ...Option) *Loop {
	l := &Loop{
		llm:    llm,
		host:   host,
		prompt: prompts.MustTemplate(""),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result is the outcome of a run.
type Result struct {
	RunID string
	// Answer is the final reply, or one of the fallback texts
	Answer string
	// State is StateDone or StateExhausted, a failed run keeps the state it stopped in
	State State
	// Iterations is the number of chat calls
	Iterations int
	// ToolCalls is the number of executed tool calls
	ToolCalls int
	// Transcript is the conversation of the run
	Transcript *llms.Transcript
}

// Run answers userMessage, using model and at most maxIterations chat calls.
// A maxIterations of 0 or less selects DefaultMaxIterations,
// an empty model selects the model default.
// Reaching the ceiling is not an error, ExhaustedText is returned.
func (l *Loop) Run(ctx context.Context, userMessage, model string, maxIterations int) (string, error) {
	res, err := l.Execute(ctx, userMessage, model, maxIterations)
	if err != nil {
		return "", err
	}
	return res.Answer, nil
}

// Execute is like Run, and returns the full outcome of the run.
// A failed run returns its partial result along with the error.
func (l *Loop) Execute(ctx context.Context, userMessage, model string, maxIterations int) (*Result, error) {
	model = values.StringsCoalesce(model, l.llm.GetName())
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	started := time.Now()
	defer metricskey.PerfChatRun.MeasureSince(started, model)

	res := &Result{
		RunID: uuid.NewString(),
		State: StateAwaitingModelResponse,
	}
	ctx = ContextWithRunID(ctx, res.RunID)

	if l.callback != nil {
		l.callback.OnRunStart(ctx, res.RunID, model, userMessage)
	}

	err := l.run(ctx, res, userMessage, model, maxIterations)
	if err != nil {
		metricskey.StatsRunsFailed.IncrCounter(1, model)
		logger.ContextKV(ctx, xlog.ERROR,
			"run_id", res.RunID,
			"model", model,
			"state", res.State.String(),
			"iterations", res.Iterations,
			"err", err.Error(),
		)
		if l.callback != nil {
			l.callback.OnRunError(ctx, res.RunID, err, res.Transcript)
		}
		return res, err
	}

	if res.State == StateExhausted {
		metricskey.StatsRunsExhausted.IncrCounter(1, model)
	} else {
		metricskey.StatsRunsDone.IncrCounter(1, model)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"run_id", res.RunID,
		"model", model,
		"state", res.State.String(),
		"iterations", res.Iterations,
		"tool_calls", res.ToolCalls,
	)
	if l.callback != nil {
		l.callback.OnRunEnd(ctx, res.RunID, res.State, res.Answer, res.Transcript)
	}
	return res, nil
}

func (l *Loop) run(ctx context.Context, res *Result, userMessage, model string, maxIterations int) error {
	catalog, err := l.host.ListTools(ctx)
	if err != nil {
		return errors.WithMessage(err, "failed to list tools")
	}

	tools, names := ToTools(catalog)
	if len(tools) > 0 && !l.llm.GetProviderType().Supports(llms.CapabilityFunctionCalling) {
		return errors.WithMessagef(ErrFunctionCallingNotSupported, "provider %s", l.llm.GetProviderType())
	}

	system, err := l.prompt.SystemMessage(prompts.Data{Tools: names, Model: model})
	if err != nil {
		return err
	}
	res.Transcript = llms.NewTranscript(system, llms.UserMessage{Content: userMessage})

	callOpts := append([]llms.CallOption{
		llms.WithModel(model),
		llms.WithTools(tools),
		llms.WithToolChoice(llms.ToolChoiceAuto),
	}, l.callOptions...)

	sm := &machine{state: res.State}
	defer func() {
		res.State = sm.state
	}()

	for {
		if res.Iterations >= maxIterations {
			if err = sm.transition(StateExhausted); err != nil {
				return err
			}
			res.Answer = ExhaustedText
			return nil
		}
		res.Iterations++

		msg, err := l.generate(ctx, res, model, callOpts)
		if err != nil {
			return err
		}

		if !msg.HasToolCalls() {
			if err = sm.transition(StateDone); err != nil {
				return err
			}
			res.Transcript.Append(msg)
			res.Answer = values.StringsCoalesce(msg.Content, NoResponseText)
			return nil
		}

		if err = sm.transition(StateExecutingTools); err != nil {
			return err
		}
		res.Transcript.Append(msg)

		for _, call := range msg.ToolCalls {
			content, err := l.executeToolCall(ctx, call)
			if err != nil {
				return err
			}
			res.ToolCalls++
			res.Transcript.Append(llms.ToolResultMessage{
				ToolCallID: call.ID,
				ToolName:   call.Name,
				Content:    content,
			})
		}

		if err = sm.transition(StateAwaitingModelResponse); err != nil {
			return err
		}
	}
}

func (l *Loop) generate(ctx context.Context, res *Result, model string, callOpts []llms.CallOption) (llms.AssistantMessage, error) {
	if err := res.Transcript.Validate(); err != nil {
		return llms.AssistantMessage{}, err
	}

	provider := string(l.llm.GetProviderType())
	payload := res.Transcript.Messages()

	if l.callback != nil {
		l.callback.OnLLMCallStart(ctx, l.llm, res.Iterations, payload)
	}
	metricskey.StatsLLMMessagesSent.IncrCounter(float64(len(payload)), provider, model)

	started := time.Now()
	resp, err := l.llm.GenerateContent(ctx, payload, callOpts...)
	metricskey.PerfLLMCall.MeasureSince(started, provider, model)
	if err == nil {
		var msg llms.AssistantMessage
		msg, err = resp.AssistantMessage()
		if err == nil {
			metricskey.StatsLLMCallsSucceeded.IncrCounter(1, provider, model)
			if l.callback != nil {
				l.callback.OnLLMCallEnd(ctx, l.llm, res.Iterations, resp)
			}
			return msg, nil
		}
	}

	metricskey.StatsLLMCallsFailed.IncrCounter(1, provider, model)
	if !errors.Is(err, llms.ErrChatAPI) {
		err = errors.Mark(err, llms.ErrChatAPI)
	}
	return llms.AssistantMessage{}, errors.WithMessagef(err, "failed to generate content, iteration %d", res.Iterations)
}

// executeToolCall returns the tool result content. Tool failures and unknown
// tools are returned as content, only malformed arguments and an unavailable
// host are errors.
func (l *Loop) executeToolCall(ctx context.Context, call llms.ToolCall) (string, error) {
	args, err := ParseArguments(call.Arguments)
	if err != nil {
		return "", errors.WithMessagef(err, "tool %s, call %s", call.Name, call.ID)
	}

	if l.callback != nil {
		l.callback.OnToolStart(ctx, call)
	}

	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, call.Name)

	res, err := l.host.CallTool(ctx, call.Name, args)
	if err != nil {
		if errors.Is(err, toolhost.ErrToolNotFound) {
			metricskey.StatsToolCallsNotFound.IncrCounter(1, call.Name)
			logger.ContextKV(ctx, xlog.WARNING, "tool", call.Name, "call_id", call.ID, "reason", "not_found")
			if l.callback != nil {
				l.callback.OnToolNotFound(ctx, call)
			}
			return mcp.ErrorPayload("Tool '" + call.Name + "' not found."), nil
		}
		metricskey.StatsToolCallsFailed.IncrCounter(1, call.Name)
		return "", errors.WithMessagef(err, "tool %s, call %s", call.Name, call.ID)
	}

	content := NoContentPayload
	if len(res.Content) > 0 {
		content = res.Content[0]
	}

	if res.IsError {
		metricskey.StatsToolCallsFailed.IncrCounter(1, call.Name)
		logger.ContextKV(ctx, xlog.DEBUG, "tool", call.Name, "call_id", call.ID, "reason", "tool_error", "output", content)
		if l.callback != nil {
			l.callback.OnToolError(ctx, call, content)
		}
		return content, nil
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, call.Name)
	if l.callback != nil {
		l.callback.OnToolEnd(ctx, call, content)
	}
	return content, nil
}

// ParseArguments decodes tool call arguments, which must be a JSON object.
// null decodes to an empty object, empty arguments are malformed.
func ParseArguments(arguments string) (map[string]any, error) {
	args := map[string]any{}
	trimmed := strings.TrimSpace(arguments)
	if trimmed == "" {
		return nil, errors.Mark(errors.New("empty arguments"), ErrMalformedArguments)
	}
	if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "invalid arguments %q", arguments), ErrMalformedArguments)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// ToTools converts the catalog to function tools and returns the tool names.
// The description falls back to "Calls the <name> tool", parameters are
// always an object with properties and required set.
func ToTools(catalog []*toolhost.Descriptor) ([]llms.Tool, []string) {
	tools := make([]llms.Tool, 0, len(catalog))
	names := make([]string, 0, len(catalog))
	for _, d := range catalog {
		var input any
		if d.InputSchema != nil {
			input = d.InputSchema
		}
		params, err := schema.ObjectParameters(input)
		if err != nil {
			logger.KV(xlog.WARNING, "tool", d.Name, "reason", "input_schema", "err", err.Error())
			params, _ = schema.ObjectParameters(nil)
		}
		description := values.StringsCoalesce(d.Description, "Calls the "+d.Name+" tool")
		tools = append(tools, llms.NewFunctionTool(d.Name, description, params))
		names = append(names, d.Name)
	}
	return tools, names
}
