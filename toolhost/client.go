package toolhost

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/mcp"
	"github.com/effective-security/xlog"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ClientName is the MCP implementation name of the tool host
const ClientName = "mcptools"

// TransportFactory returns a new transport for each connection.
type TransportFactory func(ctx context.Context) (mcpsdk.Transport, error)

// Client connects to a tool server for each operation,
// the session is closed on return regardless of the outcome.
type Client struct {
	name      string
	client    *mcpsdk.Client
	transport TransportFactory
}

// ensure the hosts implement the interface
var (
	_ Host = (*Client)(nil)
	_ Host = (*Session)(nil)
)

// New returns a client of the named server.
func New(name string, transport TransportFactory) *Client {
	return &Client{
		name:      name,
		client:    mcp.NewClient(ClientName),
		transport: transport,
	}
}

// NewCommand returns a client that starts the server command for each connection.
func NewCommand(name, command string, args []string, env ...string) *Client {
	return New(name, func(ctx context.Context) (mcpsdk.Transport, error) {
		if command == "" {
			return nil, errors.Newf("%s: command is required", name)
		}
		return mcp.CommandTransport(ctx, command, args, env...), nil
	})
}

// NewInMemory returns a client of an in-process server,
// each connection gets its own server session.
func NewInMemory(server *mcp.Server) *Client {
	return New(server.Name(), server.InMemory)
}

// Name returns the server name.
func (c *Client) Name() string {
	return c.name
}

// Open connects to the server, the caller must Close the session.
func (c *Client) Open(ctx context.Context) (*Session, error) {
	transport, err := c.transport(ctx)
	if err != nil {
		return nil, errors.Mark(errors.WithMessagef(err, "%s: transport", c.name), ErrUnavailable)
	}
	session, err := c.client.Connect(ctx, transport, nil)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "server", c.name, "reason", "connect", "err", err.Error())
		return nil, errors.Mark(errors.Wrapf(err, "%s: failed to connect", c.name), ErrUnavailable)
	}
	logger.ContextKV(ctx, xlog.DEBUG, "server", c.name, "status", "connected")
	return &Session{name: c.name, session: session}, nil
}

// ListTools connects, lists the tools and disconnects.
func (c *Client) ListTools(ctx context.Context) ([]*Descriptor, error) {
	s, err := c.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.ListTools(ctx)
}

// CallTool connects, calls the tool and disconnects.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*Result, error) {
	s, err := c.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.CallTool(ctx, name, args)
}

// Session is a connection to a tool server, held until Close.
type Session struct {
	name    string
	session *mcpsdk.ClientSession
}

// Name returns the server name.
func (s *Session) Name() string {
	return s.name
}

// ListTools returns the tool catalog in server order.
func (s *Session) ListTools(ctx context.Context) ([]*Descriptor, error) {
	var list []*Descriptor
	for tool, err := range s.session.Tools(ctx, nil) {
		if err != nil {
			return nil, classify(err, s.name, "list tools")
		}
		list = append(list, toDescriptor(tool))
	}
	logger.ContextKV(ctx, xlog.DEBUG, "server", s.name, "tools", len(list))
	return list, nil
}

// CallTool invokes the tool.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (*Result, error) {
	if args == nil {
		args = map[string]any{}
	}
	res, err := s.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, classify(err, s.name, "call "+name)
	}
	return toResult(res), nil
}

// Close ends the session.
func (s *Session) Close() error {
	if s == nil || s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	if err != nil {
		logger.KV(xlog.DEBUG, "server", s.name, "reason", "close", "err", err.Error())
	}
	return err
}
