// Package llmfactory provides factories and configuration for chat model instantiation, supporting multiple providers (OpenAI, Anthropic, Perplexity) and model selection by name.
package llmfactory
