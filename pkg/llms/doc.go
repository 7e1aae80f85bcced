// Package llms provides a provider-neutral view of chat completion models
// with function calling.
//
// The `generatecontent.go` file defines the transcript message variants
// (system, user, assistant, tool result) and the model response.
//
// The `transcript.go` file provides the append-only Transcript.
//
// The `options.go` file provides call options and tool definitions.
//
// Provider implementations live in the openai and anthropic subpackages.
package llms
