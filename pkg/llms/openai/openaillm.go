package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/pkg/llms"
	"github.com/effective-security/x/values"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var (
	// ErrMissingToken is returned when no API key is configured.
	ErrMissingToken = errors.New("openai: missing API key, set it in the OPENAI_API_KEY environment variable")
	// ErrUnsupportedToolChoice is returned for a tool choice the API cannot express.
	ErrUnsupportedToolChoice = errors.New("openai: unsupported tool choice")
)

// LLM is a chat completions client for OpenAI and OpenAI compatible providers.
type LLM struct {
	client   openai.Client
	model    string
	provider llms.ProviderType
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI LLM.
func New(opts ...Option) (*LLM, error) {
	o := &options{
		token:        os.Getenv(tokenEnvVarName),
		model:        os.Getenv(modelEnvVarName),
		baseURL:      values.StringsCoalesce(os.Getenv(baseURLEnvVarName), os.Getenv(baseAPIBaseEnvVarName)),
		organization: os.Getenv(organizationEnvVarName),
		provider:     llms.ProviderOpenAI,
		httpClient:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.token == "" {
		return nil, ErrMissingToken
	}

	defaultBaseURL := DefaultBaseURL
	if o.provider == llms.ProviderPerplexity {
		defaultBaseURL = DefaultPerplexityBaseURL
	}

	// the orchestration loop does not retry, neither does the client
	sdkOpts := []option.RequestOption{
		option.WithAPIKey(o.token),
		option.WithBaseURL(values.StringsCoalesce(o.baseURL, defaultBaseURL)),
		option.WithMaxRetries(0),
	}
	if o.organization != "" {
		sdkOpts = append(sdkOpts, option.WithOrganization(o.organization))
	}
	if o.httpClient != nil {
		sdkOpts = append(sdkOpts, option.WithHTTPClient(o.httpClient))
	}

	return &LLM{
		client:   openai.NewClient(sdkOpts...),
		model:    values.StringsCoalesce(o.model, DefaultChatModel),
		provider: o.provider,
	}, nil
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.model
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return o.provider
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	chatMsgs, err := ToMessages(messages)
	if err != nil {
		return nil, err
	}

	req := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(values.StringsCoalesce(opts.Model, o.model)),
		Messages: chatMsgs,
	}
	if opts.MaxTokens > 0 {
		req.MaxCompletionTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		req.Temperature = openai.Float(opts.Temperature)
	}

	if len(opts.Tools) > 0 {
		req.Tools, err = ToTools(opts.Tools)
		if err != nil {
			return nil, err
		}
		if choice, ok := llms.ToolChoiceName(opts.ToolChoice); ok {
			switch choice {
			case llms.ToolChoiceAuto, llms.ToolChoiceNone, llms.ToolChoiceRequired:
				req.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
					OfAuto: openai.String(choice),
				}
			default:
				return nil, errors.WithMessagef(ErrUnsupportedToolChoice, "%q", choice)
			}
		}
	}

	result, err := o.client.Chat.Completions.New(ctx, req)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, llms.NewChatAPIError(o.provider, apiErr.StatusCode, err)
		}
		return nil, llms.NewChatAPIError(o.provider, 0, err)
	}
	if len(result.Choices) == 0 {
		return nil, llms.NewChatAPIError(o.provider, 0, llms.ErrEmptyResponse)
	}

	choices := make([]*llms.ContentChoice, len(result.Choices))
	for i, c := range result.Choices {
		choices[i] = &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: c.FinishReason,
			GenerationInfo: map[string]any{
				"CompletionTokens": result.Usage.CompletionTokens,
				"PromptTokens":     result.Usage.PromptTokens,
				"TotalTokens":      result.Usage.TotalTokens,
			},
		}
		for _, tool := range c.Message.ToolCalls {
			choices[i].ToolCalls = append(choices[i].ToolCalls, llms.ToolCall{
				ID:        tool.ID,
				Name:      tool.Function.Name,
				Arguments: tool.Function.Arguments,
			})
		}
	}
	return &llms.ContentResponse{Choices: choices}, nil
}

// ToMessages converts a transcript to chat completion messages.
func ToMessages(messages []llms.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	chatMsgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch m := msg.(type) {
		case llms.SystemMessage:
			chatMsgs = append(chatMsgs, openai.SystemMessage(m.Content))
		case llms.UserMessage:
			chatMsgs = append(chatMsgs, openai.UserMessage(m.Content))
		case llms.AssistantMessage:
			chatMsgs = append(chatMsgs, assistantMessage(m))
		case llms.ToolResultMessage:
			chatMsgs = append(chatMsgs, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			return nil, errors.Errorf("openai: message %T not supported", msg)
		}
	}
	return chatMsgs, nil
}

func assistantMessage(m llms.AssistantMessage) openai.ChatCompletionMessageParamUnion {
	p := &openai.ChatCompletionAssistantMessageParam{}
	if m.Content != "" {
		p.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openai.String(m.Content),
		}
	}
	for _, tc := range m.ToolCalls {
		p.ToolCalls = append(p.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: p}
}

// ToTools converts function tools to chat completion tools.
func ToTools(tools []llms.Tool) ([]openai.ChatCompletionToolUnionParam, error) {
	res := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		if t.Type != llms.ToolTypeFunction || t.Function == nil {
			return nil, errors.Errorf("openai: tool type %q not supported", t.Type)
		}

		js, err := t.Function.ParametersJSON()
		if err != nil {
			return nil, errors.WithMessagef(err, "openai: tool %s", t.Function.Name)
		}
		m := map[string]any{}
		if err = json.Unmarshal(js, &m); err != nil {
			return nil, errors.Wrapf(err, "openai: tool %s", t.Function.Name)
		}

		res = append(res, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Function.Name,
			Description: openai.String(t.Function.Description),
			Parameters:  openai.FunctionParameters(m),
		}))
	}
	return res, nil
}
