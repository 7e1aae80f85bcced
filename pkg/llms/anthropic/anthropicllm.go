package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/pkg/llms"
	"github.com/effective-security/x/values"
)

var (
	ErrMissingToken           = errors.New("anthropic: missing API key, set it in the ANTHROPIC_API_KEY environment variable")
	ErrUnsupportedMessageType = errors.New("anthropic: unsupported message type")
	ErrUnsupportedContentType = errors.New("anthropic: unsupported content type")
)

const (
	DefaultMaxTokens = 4096
)

type LLM struct {
	Client  *anthropic.Client
	Options *Options
}

var _ llms.Model = (*LLM)(nil)

// New creates a new Anthropic LLM client using the official Anthropic SDK.
//
// If no token is provided via options, the API key is read
// from the ANTHROPIC_API_KEY environment variable.
//
// Example usage:
//
//	llm, err := anthropic.New(
//	    anthropic.WithToken("your-api-key"),
//	    anthropic.WithModel("claude-3-5-haiku-latest"),
//	)
func New(opts ...Option) (*LLM, error) {
	options := &Options{
		Token:      os.Getenv(TokenEnvVarName),
		BaseURL:    "https://api.anthropic.com",
		HttpClient: http.DefaultClient,
		MaxTokens:  DefaultMaxTokens,
	}

	for _, opt := range opts {
		opt(options)
	}

	if len(options.Token) == 0 {
		return nil, ErrMissingToken
	}
	if options.Model == "" {
		return nil, errors.New("anthropic: model is required")
	}

	return &LLM{
		Client:  newClient(options),
		Options: options,
	}, nil
}

func newClient(options *Options) *anthropic.Client {
	// the orchestration loop does not retry, neither does the client
	sdkOpts := []option.RequestOption{
		option.WithAPIKey(options.Token),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(5 * time.Minute),
	}

	if options.BaseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(options.BaseURL))
	}

	if options.HttpClient != nil {
		sdkOpts = append(sdkOpts, option.WithHTTPClient(options.HttpClient))
	}

	client := anthropic.NewClient(sdkOpts...)
	return &client
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.Options.Model
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderAnthropic
}

// GenerateContent implements the Model interface.
//
// All content blocks of the reply are merged into a single choice:
// text blocks are concatenated and tool_use blocks become ToolCalls
// in the order the model produced them.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{
		Model: o.Options.Model,
	}
	for _, opt := range options {
		opt(&opts)
	}

	sdkMessages, systemPrompt, err := ProcessMessages(messages)
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(values.StringsCoalesce(opts.Model, o.Options.Model)),
		Messages:  sdkMessages,
		MaxTokens: values.NumbersCoalesce(int64(opts.MaxTokens), o.Options.MaxTokens, DefaultMaxTokens),
	}

	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: systemPrompt,
			},
		}
	}

	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	if tools := ToTools(opts.Tools); len(tools) > 0 {
		params.Tools = tools
		if tc, ok := ToToolChoice(opts.ToolChoice); ok {
			params.ToolChoice = tc
		}
	}

	result, err := o.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, toChatAPIError(err)
	}

	choice := &llms.ContentChoice{
		StopReason: string(result.StopReason),
		GenerationInfo: map[string]any{
			"InputTokens":  result.Usage.InputTokens,
			"OutputTokens": result.Usage.OutputTokens,
			"TotalTokens":  result.Usage.InputTokens + result.Usage.OutputTokens,
			"ID":           result.ID,
		},
	}

	var text strings.Builder
	for _, contentBlock := range result.Content {
		switch content := contentBlock.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(content.Text)
		case anthropic.ToolUseBlock:
			argumentsJSON, err := json.Marshal(content.Input)
			if err != nil {
				return nil, errors.Wrap(err, "anthropic: failed to marshal tool use arguments")
			}
			args := string(argumentsJSON)
			if args == "" || args == "null" {
				args = "{}"
			}
			choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
				ID:        content.ID,
				Name:      content.Name,
				Arguments: args,
			})
		default:
			return nil, errors.WithMessagef(ErrUnsupportedContentType, "anthropic: %T", content)
		}
	}
	choice.Content = text.String()

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{choice},
	}, nil
}

func toChatAPIError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return llms.NewChatAPIError(llms.ProviderAnthropic, apiErr.StatusCode, err)
	}
	return llms.NewChatAPIError(llms.ProviderAnthropic, 0, err)
}

// ToTools converts LLM tool definitions to Anthropic SDK tool parameters.
// Returns nil if no tools are provided.
func ToTools(tools []llms.Tool) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}

	sdkTools := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		if tool.Function == nil {
			continue
		}
		// Convert Properties from orderedmap to regular map for Anthropic SDK
		properties := map[string]any{}
		required := []string{}
		if params := tool.Function.Parameters; params != nil {
			if params.Properties != nil {
				for pair := params.Properties.Oldest(); pair != nil; pair = pair.Next() {
					properties[pair.Key] = pair.Value
				}
			}
			if len(params.Required) > 0 {
				required = params.Required
			}
		}

		sdkTools = append(sdkTools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Function.Name,
				Description: anthropic.String(tool.Function.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Type:       "object",
					Properties: properties,
					Required:   required,
				},
			},
		})
	}
	if len(sdkTools) == 0 {
		return nil
	}
	return sdkTools
}

// ToToolChoice converts a tool choice option into the Anthropic form.
func ToToolChoice(choice any) (anthropic.ToolChoiceUnionParam, bool) {
	name, ok := llms.ToolChoiceName(choice)
	if !ok {
		return anthropic.ToolChoiceUnionParam{}, false
	}
	switch name {
	case llms.ToolChoiceAuto:
		return anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}, true
	case llms.ToolChoiceRequired:
		return anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}, true
	case llms.ToolChoiceNone:
		return anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}, true
	}
	return anthropic.ToolChoiceUnionParam{OfTool: &anthropic.ToolChoiceToolParam{Name: name}}, true
}

// ProcessMessages converts a transcript to Anthropic SDK message parameters.
//
// System messages are joined into the returned system prompt.
// Consecutive tool results are sent as one user message,
// as the API requires all results of a turn to follow it together.
func ProcessMessages(messages []llms.Message) ([]anthropic.MessageParam, string, error) {
	chatMessages := make([]anthropic.MessageParam, 0, len(messages))
	var system []string
	var results []anthropic.ContentBlockParamUnion

	flushResults := func() {
		if len(results) > 0 {
			chatMessages = append(chatMessages, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, msg := range messages {
		if r, ok := msg.(llms.ToolResultMessage); ok {
			results = append(results, anthropic.NewToolResultBlock(r.ToolCallID, r.Content, false))
			continue
		}
		flushResults()

		switch m := msg.(type) {
		case llms.SystemMessage:
			system = append(system, m.Content)
		case llms.UserMessage:
			chatMessages = append(chatMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case llms.AssistantMessage:
			chatMessage, err := HandleAssistantMessage(m)
			if err != nil {
				return nil, "", err
			}
			chatMessages = append(chatMessages, chatMessage)
		default:
			return nil, "", errors.WithMessagef(ErrUnsupportedMessageType, "%T", msg)
		}
	}
	flushResults()

	return chatMessages, strings.Join(system, "\n"), nil
}

// HandleAssistantMessage converts an assistant turn to Anthropic format:
// text, if any, followed by one tool_use block per tool call.
func HandleAssistantMessage(msg llms.AssistantMessage) (anthropic.MessageParam, error) {
	var contents []anthropic.ContentBlockParamUnion

	if msg.Content != "" {
		contents = append(contents, anthropic.NewTextBlock(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		var inputJSON json.RawMessage
		if err := json.Unmarshal([]byte(values.StringsCoalesce(tc.Arguments, "{}")), &inputJSON); err != nil {
			return anthropic.MessageParam{}, errors.Wrap(err, "anthropic: failed to unmarshal tool call arguments")
		}
		contents = append(contents, anthropic.NewToolUseBlock(tc.ID, inputJSON, tc.Name))
	}

	if len(contents) == 0 {
		return anthropic.MessageParam{}, errors.New("anthropic: no valid content in assistant message")
	}

	return anthropic.NewAssistantMessage(contents...), nil
}
