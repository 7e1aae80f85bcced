// Package toolhost provides the client side of the MCP tool servers:
// catalog listing and tool invocation, per call or over a scoped session.
package toolhost

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/mcp"
	"github.com/effective-security/xlog"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:generate mockgen -source=toolhost.go -destination=../mocks/mocktoolhost/toolhost_mock.gen.go -package mocktoolhost

var logger = xlog.NewPackageLogger("github.com/effective-security/mcptools", "toolhost")

var (
	// ErrUnavailable is returned when the tool server cannot be reached,
	// or the connection is lost.
	ErrUnavailable = errors.New("tool host unavailable")
	// ErrToolNotFound is returned when the tool server does not serve the tool.
	ErrToolNotFound = errors.New("tool not found")
)

// Descriptor describes a tool served by a host.
type Descriptor struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty" yaml:"input_schema,omitempty"`
}

// Result is the outcome of a tool call.
type Result struct {
	// Content is the text contents, in order
	Content []string `json:"content" yaml:"content"`
	// IsError is set when the tool reported a failure
	IsError bool `json:"is_error,omitempty" yaml:"is_error,omitempty"`
}

// Text returns the first text content, or empty string.
func (r *Result) Text() string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	return r.Content[0]
}

// Host lists and calls tools.
type Host interface {
	// ListTools returns the tool catalog.
	ListTools(ctx context.Context) ([]*Descriptor, error)
	// CallTool invokes the tool with the arguments.
	CallTool(ctx context.Context, name string, args map[string]any) (*Result, error)
}

func toDescriptor(tool *mcpsdk.Tool) *Descriptor {
	d := &Descriptor{
		Name:        tool.Name,
		Description: tool.Description,
	}
	if sc, ok := tool.InputSchema.(map[string]any); ok {
		d.InputSchema = sc
	}
	return d
}

func toResult(res *mcpsdk.CallToolResult) *Result {
	return &Result{
		Content: mcp.Texts(res),
		IsError: res.IsError,
	}
}

// classify marks the error as ErrToolNotFound when the server rejected
// the tool name, otherwise as ErrUnavailable.
func classify(err error, host, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrToolNotFound) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(err, "%s: %s", host, op)
	}
	if strings.Contains(err.Error(), "unknown tool") {
		return errors.Mark(errors.Wrapf(err, "%s: %s", host, op), ErrToolNotFound)
	}
	return errors.Mark(errors.Wrapf(err, "%s: %s", host, op), ErrUnavailable)
}
