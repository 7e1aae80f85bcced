// Package localdate provides the get_localdate tool and the date server.
package localdate

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/mcp"
	"github.com/effective-security/mcptools/pkg/schema"
	"github.com/effective-security/mcptools/tools"
	"github.com/effective-security/x/values"
	"github.com/lestrrat-go/strftime"
)

const (
	// ServerName is the MCP implementation name of the date server
	ServerName = "date_server"
	// ToolName is the name of the tool
	ToolName = "get_localdate"

	// DefaultFormat is used when no format is provided
	DefaultFormat = "%Y-%m-%dT%H:%M:%SZ"
	// DefaultTimezone is used when no timezone is provided
	DefaultTimezone = "UTC"
)

// Request represents the tool input.
type Request struct {
	Format   string `json:"format,omitempty" yaml:"format,omitempty" jsonschema:"title=Format,description=strftime pattern of the returned date,default=%Y-%m-%dT%H:%M:%SZ"`
	Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty" jsonschema:"title=Timezone,description=IANA timezone name such as America/Los_Angeles,default=UTC"`
}

// Result represents the tool output.
type Result struct {
	Date     string `json:"date" yaml:"date"`
	Timezone string `json:"timezone" yaml:"timezone"`
}

// Option configures the Tool.
type Option func(*Tool)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tool) {
		t.now = now
	}
}

// Tool returns the current date in a timezone.
type Tool struct {
	name        string
	description string
	funcParams  map[string]any
	now         func() time.Time
}

// ensure Tool implements the interfaces
var (
	_ tools.Tool[Request, Result] = (*Tool)(nil)
	_ tools.IMCPTool              = (*Tool)(nil)
)

// New returns the tool.
func New(opts ...Option) (*Tool, error) {
	sc, err := schema.For[Request]()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	params, err := sc.Map()
	if err != nil {
		return nil, err
	}

	tool := &Tool{
		name:        ToolName,
		description: "Returns the current date and time in an IANA timezone, formatted with a strftime pattern.",
		funcParams:  params,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(tool)
	}
	return tool, nil
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() map[string]any {
	return t.funcParams
}

// Run formats the current time. Unknown timezones and bad patterns
// are returned as tools.InputError.
func (t *Tool) Run(_ context.Context, req *Request) (*Result, error) {
	tz := values.StringsCoalesce(req.Timezone, DefaultTimezone)
	format := values.StringsCoalesce(req.Format, DefaultFormat)

	loc, err := LoadLocation(tz)
	if err != nil {
		return nil, tools.NewInputError("Invalid timezone '%s'. Use a valid IANA name like 'America/Los_Angeles'.", tz)
	}

	date, err := Format(format, t.now().In(loc))
	if err != nil {
		return nil, tools.NewInputError("Invalid format '%s'. Use a valid format like '%%Y-%%m-%%d %%H:%%M:%%S'.", err.Error())
	}

	return &Result{
		Date:     date,
		Timezone: tz,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	return tools.Call(ctx, t, input)
}

func (t *Tool) RegisterMCP(registrator mcp.Registrator) error {
	return tools.RegisterMCP(registrator, t)
}

// LoadLocation returns the location of an IANA timezone name.
// Unlike time.LoadLocation, the empty name and "Local" are rejected.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return nil, errors.Newf("unknown time zone %q", name)
	}
	return time.LoadLocation(name)
}

// Format formats t with a strftime pattern,
// %f is microseconds and %s is Unix seconds.
func Format(pattern string, t time.Time) (string, error) {
	f, err := strftime.New(pattern,
		strftime.WithMicroseconds('f'),
		strftime.WithUnixSeconds('s'),
	)
	if err != nil {
		return "", err
	}
	return f.FormatString(t), nil
}

// NewServer returns the date server with get_localdate registered.
func NewServer(opts ...Option) (*mcp.Server, error) {
	tool, err := New(opts...)
	if err != nil {
		return nil, err
	}
	s := mcp.NewServer(ServerName)
	if err = tools.Register(s, tool); err != nil {
		return nil, err
	}
	return s, nil
}
