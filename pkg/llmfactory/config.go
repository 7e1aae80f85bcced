package llmfactory

import (
	"os"
	"slices"

	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

const (
	// DefaultOpenAIModel is the model used when none is configured
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultAnthropicModel is the Anthropic model used when none is configured
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

type Config struct {
	// Providers specifies the list of providers to use
	Providers []*ProviderConfig `json:"providers" yaml:"providers" validate:"dive"`
	// DefaultProvider specifies the default provider to use
	DefaultProvider string `json:"default_provider" yaml:"default_provider"`
}

// ProviderConfig for a chat completion provider
type ProviderConfig struct {
	Name            string       `json:"name" yaml:"name" validate:"required"`
	Token           string       `json:"token,omitempty" yaml:"token,omitempty"`
	DefaultModel    string       `json:"default_model,omitempty" yaml:"default_model,omitempty"`
	AvailableModels []string     `json:"available_models,omitempty" yaml:"available_models,omitempty"`
	OpenAI          OpenAIConfig `json:"open_ai" yaml:"open_ai"`
}

// OpenAIConfig specifies options config
type OpenAIConfig struct {
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	// APIType specifies the type of API to use:
	// OPENAI|OPEN_AI|ANTHROPIC|PERPLEXITY
	APIType string `json:"api_type,omitempty" yaml:"api_type,omitempty" validate:"required"`
	// OrgID specifies which organization's quota and billing should be used when making API requests.
	OrgID string `json:"org_id,omitempty" yaml:"org_id,omitempty"`
}

func (c *ProviderConfig) FindModel(models ...string) string {
	for _, model := range models {
		if slices.Contains(c.AvailableModels, model) {
			return model
		}
	}
	return c.DefaultModel
}

// LoadConfig from file
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	if err = validator.New().Struct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns the providers available from the environment:
// OPENAI_API_KEY (with OPENAI_BASE_URL) and ANTHROPIC_API_KEY.
// OpenAI is the default provider when both are set.
func DefaultConfig() *Config {
	cfg := new(Config)
	if token := os.Getenv("OPENAI_API_KEY"); token != "" {
		cfg.Providers = append(cfg.Providers, &ProviderConfig{
			Name:            "OPEN_AI",
			Token:           token,
			DefaultModel:    DefaultOpenAIModel,
			AvailableModels: []string{DefaultOpenAIModel, "gpt-4o", "gpt-4.1", "gpt-4.1-mini"},
			OpenAI: OpenAIConfig{
				APIType: "OPEN_AI",
				BaseURL: os.Getenv("OPENAI_BASE_URL"),
			},
		})
	}
	if token := os.Getenv("ANTHROPIC_API_KEY"); token != "" {
		cfg.Providers = append(cfg.Providers, &ProviderConfig{
			Name:            "ANTHROPIC",
			Token:           token,
			DefaultModel:    DefaultAnthropicModel,
			AvailableModels: []string{DefaultAnthropicModel, "claude-sonnet-4-20250514"},
			OpenAI: OpenAIConfig{
				APIType: "ANTHROPIC",
			},
		})
	}
	if len(cfg.Providers) > 0 {
		cfg.DefaultProvider = cfg.Providers[0].Name
	}
	return cfg
}
