package llmfactory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/effective-security/mcptools/pkg/llmfactory"
	"github.com/effective-security/mcptools/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFakeLLM(t *testing.T) {
	llmfactory.NewLLM = func(cfg *llmfactory.ProviderConfig, preferredModels ...string) (llms.Model, error) {
		return &fakeLLM{provider: cfg.Name, model: cfg.FindModel(preferredModels...)}, nil
	}
	t.Cleanup(func() {
		llmfactory.NewLLM = llmfactory.CreateLLM
	})
}

func Test_Factory(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "fakekey")
	t.Setenv("ANTHROPIC_API_KEY", "fakekey")
	t.Setenv("PERPLEXITY_TOKEN", "fakekey")

	cfg, err := llmfactory.LoadConfig("testdata/llm.yaml")
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 3)
	assert.Equal(t, "fakekey", cfg.Providers[0].Token)

	setFakeLLM(t)

	f := llmfactory.New(cfg)
	model, err := f.DefaultModel()
	require.NoError(t, err)
	fm := model.(*fakeLLM)
	assert.Equal(t, "gpt-4o-mini", fm.model)
	assert.Equal(t, "OPEN_AI", fm.provider)

	model, err = f.ModelByName("gpt-4o")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
	assert.Equal(t, "OPEN_AI", fm.provider)

	model, err = f.ModelByName("claude-sonnet-4-20250514")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "claude-sonnet-4-20250514", fm.model)
	assert.Equal(t, "ANTHROPIC", fm.provider)

	// non-existent models fall back to default
	model, err = f.ModelByName("non-existent-model")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o-mini", fm.model)
	assert.Equal(t, "OPEN_AI", fm.provider)

	model, err = f.ModelByType("PERPLEXITY")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "sonar", fm.model)
	assert.Equal(t, "PERPLEXITY", fm.provider)

	_, err = f.ModelByType("UNSUPPORTED")
	assert.EqualError(t, err, "provider not found for type: UNSUPPORTED")

	invalidFactory := llmfactory.New(&llmfactory.Config{
		DefaultProvider: "non-existent",
		Providers:       cfg.Providers,
	})
	model, err = invalidFactory.DefaultModel()
	require.NoError(t, err)
	assert.Equal(t, "OPEN_AI", model.(*fakeLLM).provider)

	_, err = llmfactory.New(&llmfactory.Config{}).DefaultModel()
	assert.EqualError(t, err, "no providers configured")
}

func Test_Load(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "fakekey")
	t.Setenv("ANTHROPIC_API_KEY", "fakekey")
	t.Setenv("PERPLEXITY_TOKEN", "fakekey")

	f, err := llmfactory.Load("testdata/llm.yaml")
	require.NoError(t, err)
	require.NotNil(t, f)

	_, err = llmfactory.Load("testdata/non-existent.yaml")
	require.Error(t, err)
}

func Test_LoadConfig(t *testing.T) {
	cfg, err := llmfactory.LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Providers)

	_, err = llmfactory.LoadConfig("testdata/invalid.yaml")
	require.Error(t, err)

	_, err = llmfactory.LoadConfig("testdata/missing_type.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APIType")
}

func Test_CreateLLM(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "fakekey")
	t.Setenv("ANTHROPIC_API_KEY", "fakekey")

	cfg := &llmfactory.ProviderConfig{
		Name:            "test-provider",
		OpenAI:          llmfactory.OpenAIConfig{APIType: "OPEN_AI"},
		AvailableModels: []string{"gpt-4o-mini"},
		DefaultModel:    "gpt-4o-mini",
	}

	model, err := llmfactory.CreateLLM(cfg)
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderOpenAI, model.GetProviderType())
	assert.Equal(t, "gpt-4o-mini", model.GetName())

	cfg.OpenAI.APIType = "openai"
	model, err = llmfactory.CreateLLM(cfg)
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderOpenAI, model.GetProviderType())

	cfg.OpenAI.APIType = "PERPLEXITY"
	cfg.Token = "pplx"
	model, err = llmfactory.CreateLLM(cfg)
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderPerplexity, model.GetProviderType())

	cfg.OpenAI.APIType = "ANTHROPIC"
	cfg.DefaultModel = "claude-3-5-haiku-latest"
	model, err = llmfactory.CreateLLM(cfg)
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderAnthropic, model.GetProviderType())
	assert.Equal(t, "claude-3-5-haiku-latest", model.GetName())

	cfg.OpenAI.APIType = "BEDROCK"
	_, err = llmfactory.CreateLLM(cfg)
	assert.EqualError(t, err, "unsupported provider type: BEDROCK")
}

func Test_ModelCaching(t *testing.T) {
	setFakeLLM(t)

	f := llmfactory.New(&llmfactory.Config{
		Providers: []*llmfactory.ProviderConfig{
			{
				Name:            "OPEN_AI",
				OpenAI:          llmfactory.OpenAIConfig{APIType: "OPEN_AI"},
				AvailableModels: []string{"gpt-4o", "gpt-4o-mini"},
				DefaultModel:    "gpt-4o",
			},
		},
	})

	model1, err := f.ModelByType("OPEN_AI")
	require.NoError(t, err)
	model2, err := f.ModelByType("OPEN_AI")
	require.NoError(t, err)
	assert.Same(t, model1, model2)

	model3, err := f.ModelByName("gpt-4o-mini")
	require.NoError(t, err)
	model4, err := f.ModelByName("gpt-4o-mini")
	require.NoError(t, err)
	assert.Same(t, model3, model4)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := f.ModelByName("gpt-4o-mini")
			assert.NoError(t, err)
			assert.Same(t, model3, m)
		}()
	}
	wg.Wait()
}

func Test_ProviderConfigFindModel(t *testing.T) {
	cfg := &llmfactory.ProviderConfig{
		AvailableModels: []string{"gpt-4o", "gpt-4o-mini"},
		DefaultModel:    "gpt-4o",
	}

	assert.Equal(t, "gpt-4o-mini", cfg.FindModel("gpt-4o-mini"))
	assert.Equal(t, "gpt-4o-mini", cfg.FindModel("unknown", "gpt-4o-mini"))
	assert.Equal(t, "gpt-4o", cfg.FindModel("non-existent-model"))
	assert.Equal(t, "gpt-4o", cfg.FindModel())

	cfg.AvailableModels = nil
	assert.Equal(t, "gpt-4o", cfg.FindModel("gpt-4o-mini"))
}

type fakeLLM struct {
	provider string
	model    string
}

func (f *fakeLLM) GetProviderType() llms.ProviderType {
	return llms.ProviderType(f.provider)
}

func (f *fakeLLM) GetName() string {
	return f.model
}

func (f *fakeLLM) GenerateContent(_ context.Context, _ []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	return nil, nil
}

func Test_DefaultConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := llmfactory.DefaultConfig()
	assert.Empty(t, cfg.Providers)
	assert.Empty(t, cfg.DefaultProvider)

	t.Setenv("ANTHROPIC_API_KEY", "ant")
	cfg = llmfactory.DefaultConfig()
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "ANTHROPIC", cfg.DefaultProvider)
	assert.Equal(t, llmfactory.DefaultAnthropicModel, cfg.Providers[0].DefaultModel)

	t.Setenv("OPENAI_API_KEY", "oai")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1")
	cfg = llmfactory.DefaultConfig()
	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "OPEN_AI", cfg.DefaultProvider)
	assert.Equal(t, "oai", cfg.Providers[0].Token)
	assert.Equal(t, "http://localhost:8080/v1", cfg.Providers[0].OpenAI.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.Providers[0].FindModel("gpt-4o"))
}
