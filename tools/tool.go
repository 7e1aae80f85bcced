package tools

import (
	"context"

	"github.com/effective-security/mcptools/mcp"
)

// ITool is a tool served to MCP clients.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be shown to clients and used in the prompt.
	Description() string
	// Parameters returns the JSON schema of the tool input, always an object.
	Parameters() map[string]any

	// Call executes the tool with the given JSON input and returns the JSON result.
	// If the tool fails to parse the input, it should return ErrFailedUnmarshalInput error.
	// Invalid argument values are reported as {"error": "..."} results, not errors.
	Call(context.Context, string) (string, error)
}

type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// IMCPTool is an interface that extends ITool to include functionality for
// registering the tool with an MCP server.
type IMCPTool interface {
	ITool
	RegisterMCP(registrator mcp.Registrator) error
}
