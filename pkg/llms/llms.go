package llms

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// ProviderType is the type of provider.
type ProviderType string

const (
	// ProviderAnthropic is the type of provider.
	ProviderAnthropic ProviderType = "ANTHROPIC"
	// ProviderOpenAI is the type of provider.
	ProviderOpenAI ProviderType = "OPENAI"
	// ProviderPerplexity is the type of provider.
	ProviderPerplexity ProviderType = "PERPLEXITY"
)

//go:generate mockgen -source=llms.go -destination=../../mocks/mockllms/llm_mock.gen.go -package mockllms

// Model is an interface chat models implement.
type Model interface {
	// GetProviderType returns the type of provider.
	GetProviderType() ProviderType
	// GetName returns the default model name.
	GetName() string
	// GenerateContent asks the model to produce the next assistant turn
	// for the given transcript.
	GenerateContent(ctx context.Context, messages []Message, options ...CallOption) (*ContentResponse, error)
}

// Capability is a bitmask indicating supported features of an LLM provider.
type Capability uint64

const (
	// Basic text or chat generation
	CapabilityText Capability = 1 << iota

	// Function/tool calling
	CapabilityFunctionCalling
	CapabilityMultiToolCalling

	// System prompt support
	CapabilitySystemPrompt
)

var providerCapabilities = map[ProviderType]Capability{
	ProviderOpenAI: CapabilityText |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilitySystemPrompt,

	ProviderAnthropic: CapabilityText |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilitySystemPrompt,

	ProviderPerplexity: CapabilityText |
		CapabilitySystemPrompt,
}

func ProviderCapabilities(pt ProviderType) Capability {
	return providerCapabilities[pt]
}

func (p ProviderType) Supports(cap Capability) bool {
	return ProviderCapabilities(p)&cap != 0
}

var (
	// ErrChatAPI marks every failure reported by a chat completion provider.
	ErrChatAPI = errors.New("chat API error")
	// ErrEmptyResponse is returned when the provider returns no choices.
	ErrEmptyResponse = errors.New("empty response")
)

// ChatAPIError describes a failed call to a chat completion provider.
type ChatAPIError struct {
	Provider   ProviderType
	StatusCode int
	Err        error
}

func (e *ChatAPIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Err.Error())
}

func (e *ChatAPIError) Unwrap() error {
	return e.Err
}

// NewChatAPIError returns err as a ChatAPIError marked with ErrChatAPI,
// so callers can test it with errors.Is(err, ErrChatAPI).
func NewChatAPIError(provider ProviderType, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(&ChatAPIError{
		Provider:   provider,
		StatusCode: statusCode,
		Err:        err,
	}, ErrChatAPI)
}
