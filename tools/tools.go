package tools

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/mcp"
	"github.com/effective-security/xlog"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcptools", "tools")

// ErrFailedUnmarshalInput is returned when the tool input is not valid JSON for the tool
var ErrFailedUnmarshalInput = errors.New("failed to unmarshal input")

// InputError is returned by Run when an argument value is not acceptable.
// Call reports it to the client as {"error": Message}.
type InputError struct {
	Message string
}

// NewInputError returns an InputError
func NewInputError(format string, args ...any) error {
	return &InputError{Message: errors.Newf(format, args...).Error()}
}

func (e *InputError) Error() string {
	return e.Message
}

// Call decodes the JSON input into I, runs the tool and encodes the output.
// Empty input is treated as {}.
func Call[I any, O any](ctx context.Context, tool Tool[I, O], input string) (string, error) {
	var req I
	if strings.TrimSpace(input) != "" {
		if err := json.Unmarshal([]byte(input), &req); err != nil {
			return "", errors.Mark(errors.Wrapf(err, "%s: invalid input", tool.Name()), ErrFailedUnmarshalInput)
		}
	}

	out, err := tool.Run(ctx, &req)
	if err != nil {
		var ie *InputError
		if errors.As(err, &ie) {
			return mcp.ErrorPayload(ie.Message), nil
		}
		return "", err
	}

	js, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal output")
	}
	return string(js), nil
}

// RegisterMCP registers the tool with an MCP server.
func RegisterMCP(registrator mcp.Registrator, tool ITool) error {
	def := &mcpsdk.Tool{
		Name:        tool.Name(),
		Description: tool.Description(),
		InputSchema: tool.Parameters(),
	}
	return registrator.RegisterTool(def, Handler(tool))
}

// Register registers the tools with an MCP server.
func Register(registrator mcp.Registrator, list ...IMCPTool) error {
	for _, tool := range list {
		if err := tool.RegisterMCP(registrator); err != nil {
			return errors.WithMessagef(err, "failed to register %s", tool.Name())
		}
	}
	return nil
}

// Handler adapts the tool to an MCP tool handler.
// Call errors are returned as error results, so the client receives
// the failure text instead of a protocol error.
func Handler(tool ITool) mcpsdk.ToolHandler {
	name := tool.Name()
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		started := time.Now()

		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}

		out, err := tool.Call(ctx, string(args))
		if err != nil {
			logger.ContextKV(ctx, xlog.ERROR,
				"tool", name,
				"input", string(args),
				"err", err.Error(),
			)
			res := mcp.TextResult("Error executing tool " + name + ": " + err.Error())
			res.IsError = true
			return res, nil
		}

		logger.ContextKV(ctx, xlog.DEBUG,
			"tool", name,
			"elapsed", time.Since(started).String(),
		)
		return mcp.TextResult(out), nil
	}
}
