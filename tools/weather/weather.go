// Package weather provides the get_weather and get_weather_on_date tools
// and the weather server.
package weather

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/mcp"
	"github.com/effective-security/mcptools/pkg/schema"
	"github.com/effective-security/mcptools/pkg/weatherapi"
	"github.com/effective-security/mcptools/tools"
)

const (
	// ServerName is the MCP implementation name of the weather server
	ServerName = "weather_server"
	// CurrentToolName is the name of the current weather tool
	CurrentToolName = "get_weather"
	// OnDateToolName is the name of the forecast tool
	OnDateToolName = "get_weather_on_date"
)

// API provides the weather summaries.
type API interface {
	Current(ctx context.Context, location string) (string, error)
	OnDate(ctx context.Context, location string, date time.Time) (string, error)
}

var _ API = (*weatherapi.Client)(nil)

// CurrentRequest represents the get_weather input.
type CurrentRequest struct {
	Location string `json:"location" yaml:"location" jsonschema:"title=Location,description=City or place name"`
}

// CurrentResult represents the get_weather output.
type CurrentResult struct {
	Location string `json:"location" yaml:"location"`
	Weather  string `json:"weather" yaml:"weather"`
}

// OnDateRequest represents the get_weather_on_date input.
type OnDateRequest struct {
	Location string `json:"location" yaml:"location" jsonschema:"title=Location,description=City or place name"`
	Date     string `json:"date" yaml:"date" jsonschema:"title=Date,description=Date in YYYY-MM-DD format,example=2025-12-22"`
}

// OnDateResult represents the get_weather_on_date output.
type OnDateResult struct {
	Location string `json:"location" yaml:"location"`
	Date     string `json:"date" yaml:"date"`
	Weather  string `json:"weather" yaml:"weather"`
}

type base struct {
	name        string
	description string
	funcParams  map[string]any
	api         API
}

func (t *base) Name() string {
	return t.name
}

func (t *base) Description() string {
	return t.description
}

func (t *base) Parameters() map[string]any {
	return t.funcParams
}

func newBase[I any](name, description string, api API) (base, error) {
	if api == nil {
		return base{}, errors.Newf("%s: weather API is required", name)
	}
	sc, err := schema.For[I]()
	if err != nil {
		return base{}, errors.Wrap(err, "failed to create schema")
	}
	params, err := sc.Map()
	if err != nil {
		return base{}, err
	}
	return base{
		name:        name,
		description: description,
		funcParams:  params,
		api:         api,
	}, nil
}

// CurrentTool returns the current weather at a location.
type CurrentTool struct {
	base
}

// OnDateTool returns the forecast for a location on a date.
type OnDateTool struct {
	base
}

// ensure the tools implement the interfaces
var (
	_ tools.Tool[CurrentRequest, CurrentResult] = (*CurrentTool)(nil)
	_ tools.Tool[OnDateRequest, OnDateResult]   = (*OnDateTool)(nil)
	_ tools.IMCPTool                            = (*CurrentTool)(nil)
	_ tools.IMCPTool                            = (*OnDateTool)(nil)
)

// NewCurrent returns the get_weather tool.
func NewCurrent(api API) (*CurrentTool, error) {
	b, err := newBase[CurrentRequest](CurrentToolName, "Returns the current weather for a location.", api)
	if err != nil {
		return nil, err
	}
	return &CurrentTool{base: b}, nil
}

// NewOnDate returns the get_weather_on_date tool.
func NewOnDate(api API) (*OnDateTool, error) {
	b, err := newBase[OnDateRequest](OnDateToolName, "Returns the weather forecast for a location on a date in YYYY-MM-DD format.", api)
	if err != nil {
		return nil, err
	}
	return &OnDateTool{base: b}, nil
}

func (t *CurrentTool) Run(ctx context.Context, req *CurrentRequest) (*CurrentResult, error) {
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return nil, tools.NewInputError("Location is required.")
	}
	text, err := t.api.Current(ctx, location)
	if err != nil {
		return nil, err
	}
	return &CurrentResult{
		Location: req.Location,
		Weather:  text,
	}, nil
}

func (t *CurrentTool) Call(ctx context.Context, input string) (string, error) {
	return tools.Call(ctx, t, input)
}

func (t *CurrentTool) RegisterMCP(registrator mcp.Registrator) error {
	return tools.RegisterMCP(registrator, t)
}

func (t *OnDateTool) Run(ctx context.Context, req *OnDateRequest) (*OnDateResult, error) {
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return nil, tools.NewInputError("Location is required.")
	}
	date, err := time.Parse(weatherapi.DateLayout, req.Date)
	if err != nil {
		return nil, tools.NewInputError("Invalid date '%s'. Use the YYYY-MM-DD format like '2025-12-22'.", req.Date)
	}
	text, err := t.api.OnDate(ctx, location, date)
	if err != nil {
		return nil, err
	}
	return &OnDateResult{
		Location: req.Location,
		Date:     req.Date,
		Weather:  text,
	}, nil
}

func (t *OnDateTool) Call(ctx context.Context, input string) (string, error) {
	return tools.Call(ctx, t, input)
}

func (t *OnDateTool) RegisterMCP(registrator mcp.Registrator) error {
	return tools.RegisterMCP(registrator, t)
}

// NewServer returns the weather server with both tools registered.
func NewServer(api API) (*mcp.Server, error) {
	current, err := NewCurrent(api)
	if err != nil {
		return nil, err
	}
	onDate, err := NewOnDate(api)
	if err != nil {
		return nil, err
	}
	s := mcp.NewServer(ServerName)
	if err = tools.Register(s, current, onDate); err != nil {
		return nil, err
	}
	return s, nil
}
