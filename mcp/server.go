// Package mcp wraps the Model Context Protocol SDK with the server and
// client plumbing shared by the tool servers and the tool host.
package mcp

import (
	"context"
	"os"
	"os/exec"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcptools", "mcp")

// Version is reported in the implementation info of servers and clients
const Version = "1.0.0"

var (
	// ErrToolAlreadyRegistered is returned when a tool name is registered twice
	ErrToolAlreadyRegistered = errors.New("tool already registered")
	// ErrInvalidTool is returned when a tool has no name or its input schema is not an object
	ErrInvalidTool = errors.New("invalid tool")
	// ErrToolNotRegistered is returned when deregistering an unknown tool
	ErrToolNotRegistered = errors.New("tool not registered")
)

// Registrator registers tools with an MCP server.
type Registrator interface {
	RegisterTool(tool *mcpsdk.Tool, handler mcpsdk.ToolHandler) error
}

// Server is an MCP server exposing tools.
type Server struct {
	name   string
	server *mcpsdk.Server

	lock  sync.RWMutex
	tools []string
}

var _ Registrator = (*Server)(nil)

// NewServer returns a server with the given implementation name.
func NewServer(name string) *Server {
	return &Server{
		name:   name,
		server: mcpsdk.NewServer(&mcpsdk.Implementation{Name: name, Version: Version}, nil),
	}
}

// Name returns the implementation name.
func (s *Server) Name() string {
	return s.name
}

// SDK returns the underlying SDK server.
func (s *Server) SDK() *mcpsdk.Server {
	return s.server
}

// RegisterTool adds a tool, the input schema must describe an object.
func (s *Server) RegisterTool(tool *mcpsdk.Tool, handler mcpsdk.ToolHandler) error {
	if tool == nil || tool.Name == "" || handler == nil {
		return errors.WithMessage(ErrInvalidTool, "name and handler are required")
	}
	sc, ok := tool.InputSchema.(map[string]any)
	if !ok || sc["type"] != "object" {
		return errors.WithMessagef(ErrInvalidTool, "%s: input schema must be an object", tool.Name)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if slices.Contains(s.tools, tool.Name) {
		return errors.WithMessage(ErrToolAlreadyRegistered, tool.Name)
	}
	s.server.AddTool(tool, handler)
	s.tools = append(s.tools, tool.Name)

	logger.KV(xlog.DEBUG, "server", s.name, "tool", tool.Name, "status", "registered")
	return nil
}

// DeregisterTool removes a tool.
func (s *Server) DeregisterTool(name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	idx := slices.Index(s.tools, name)
	if idx < 0 {
		return errors.WithMessage(ErrToolNotRegistered, name)
	}
	s.server.RemoveTools(name)
	s.tools = slices.Delete(s.tools, idx, idx+1)
	return nil
}

// Tools returns the registered tool names in registration order.
func (s *Server) Tools() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return slices.Clone(s.tools)
}

// Serve runs the server on the transport until the client disconnects
// or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, transport mcpsdk.Transport) error {
	logger.ContextKV(ctx, xlog.INFO, "server", s.name, "tools", len(s.Tools()), "status", "serving")
	err := s.server.Run(ctx, transport)
	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrapf(err, "%s: server stopped", s.name)
	}
	return nil
}

// ServeStdio runs the server over stdin/stdout.
// Logs must not be written to stdout while serving.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, &mcpsdk.StdioTransport{})
}

// InMemory connects the server to an in-process transport and returns
// the client side of it. The server session ends when the client disconnects
// or ctx is cancelled.
func (s *Server) InMemory(ctx context.Context) (mcpsdk.Transport, error) {
	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	session, err := s.server.Connect(ctx, serverTransport, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: failed to connect", s.name)
	}
	go func() {
		stop := context.AfterFunc(ctx, func() {
			_ = session.Close()
		})
		_ = session.Wait()
		stop()
	}()
	return clientTransport, nil
}

// NewClient returns an SDK client with the given implementation name.
func NewClient(name string) *mcpsdk.Client {
	return mcpsdk.NewClient(&mcpsdk.Implementation{Name: name, Version: Version}, nil)
}

// CommandTransport returns a transport that starts the server as a subprocess
// and talks to it over its stdin/stdout. env is added to the current environment.
func CommandTransport(ctx context.Context, command string, args []string, env ...string) *mcpsdk.CommandTransport {
	// #nosec G204 -- the command comes from the tool server configuration
	cmd := exec.CommandContext(ctx, command, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	cmd.Stderr = os.Stderr
	return &mcpsdk.CommandTransport{Command: cmd}
}
