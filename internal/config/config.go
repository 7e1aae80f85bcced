// Package config provides the configuration of the mcptools CLI.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/pkg/llmfactory"
	"github.com/effective-security/mcptools/pkg/weatherapi"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

const (
	// DefaultFileName is the configuration file looked up in the working folder
	DefaultFileName = "mcptools.yaml"
	// DefaultWeatherTimeout is the HTTP timeout of weather API calls
	DefaultWeatherTimeout = 10 * time.Second
	// DefaultCacheTTL is the expiration of cached weather lookups
	DefaultCacheTTL = 10 * time.Minute
)

// Cache kinds
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Configuration of the CLI
type Configuration struct {
	// Servers are the MCP tool servers started as subprocesses over stdio.
	// When empty, the built-in servers are used in process.
	Servers []*Server `json:"servers,omitempty" yaml:"servers,omitempty" validate:"dive"`
	Chat    Chat      `json:"chat" yaml:"chat"`
	Weather Weather   `json:"weather" yaml:"weather"`
	// LLM is the location of the chat providers configuration,
	// relative to the configuration file.
	// When empty, providers are configured from the environment.
	LLM string `json:"llm,omitempty" yaml:"llm,omitempty"`

	dir string
}

// Server describes a tool server command
type Server struct {
	Name    string   `json:"name" yaml:"name" validate:"required"`
	Command string   `json:"command" yaml:"command" validate:"required"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty"`
	// Env is a list of KEY=VALUE added to the environment of the command
	Env []string `json:"env,omitempty" yaml:"env,omitempty"`
}

// Chat specifies the defaults of the chat command
type Chat struct {
	Model         string `json:"model,omitempty" yaml:"model,omitempty"`
	MaxIterations int    `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty" validate:"gte=0"`
	// SystemPrompt is a template, see prompts.Data for the available values
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	// KeepSession holds one session per server for the whole run,
	// instead of a connection per tool call.
	KeepSession bool `json:"keep_session,omitempty" yaml:"keep_session,omitempty"`
}

// Weather specifies the weather API client
type Weather struct {
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// Timeout is a duration, such as 10s
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Cache   Cache  `json:"cache" yaml:"cache"`
}

// Cache specifies the cache of weather lookups
type Cache struct {
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=none memory redis"`
	TTL      string `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	RedisURL string `json:"redis_url,omitempty" yaml:"redis_url,omitempty" validate:"required_if=Kind redis"`
}

// Load returns the configuration from file,
// an empty file returns the default configuration.
func Load(file string) (*Configuration, error) {
	cfg := new(Configuration)
	if file != "" {
		if err := configloader.UnmarshalAndExpand(file, cfg); err != nil {
			return nil, errors.WithMessagef(err, "failed to load config %s", file)
		}
		cfg.dir = filepath.Dir(file)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find returns DefaultFileName if it exists in the working folder.
func Find() string {
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	return ""
}

// Validate checks the configuration values.
func (c *Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.WithMessage(err, "invalid configuration")
	}
	if _, err := parseDuration(c.Weather.Timeout, DefaultWeatherTimeout); err != nil {
		return errors.WithMessage(err, "invalid weather timeout")
	}
	if _, err := parseDuration(c.Weather.Cache.TTL, DefaultCacheTTL); err != nil {
		return errors.WithMessage(err, "invalid cache ttl")
	}
	seen := map[string]bool{}
	for _, s := range c.Servers {
		if seen[s.Name] {
			return errors.Newf("duplicate server name: %s", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// LLMConfig returns the chat providers configuration.
func (c *Configuration) LLMConfig() (*llmfactory.Config, error) {
	if c.LLM == "" {
		return llmfactory.DefaultConfig(), nil
	}
	location := c.LLM
	if !filepath.IsAbs(location) && c.dir != "" {
		location = filepath.Join(c.dir, location)
	}
	return llmfactory.LoadConfig(location)
}

// WeatherTimeout returns the HTTP timeout of weather API calls.
func (c *Configuration) WeatherTimeout() time.Duration {
	d, _ := parseDuration(c.Weather.Timeout, DefaultWeatherTimeout)
	return d
}

// CacheTTL returns the expiration of cached weather lookups.
func (c *Configuration) CacheTTL() time.Duration {
	d, _ := parseDuration(c.Weather.Cache.TTL, DefaultCacheTTL)
	return d
}

// WeatherAPIKey returns the configured key,
// or the value of the WEATHER_API_KEY environment variable.
func (c *Configuration) WeatherAPIKey() string {
	if c.Weather.APIKey != "" {
		return c.Weather.APIKey
	}
	return os.Getenv(weatherapi.APIKeyEnvVarName)
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, errors.WithStack(err)
	}
	if d <= 0 {
		return def, errors.Newf("must be positive: %s", s)
	}
	return d, nil
}
