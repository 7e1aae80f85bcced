package config_test

import (
	"testing"
	"time"

	"github.com/effective-security/mcptools/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "weatherkey")
	t.Setenv("OPENAI_API_KEY", "openaikey")

	cfg, err := config.Load("testdata/mcptools.yaml")
	require.NoError(t, err)

	require.Len(t, cfg.Servers, 2)
	assert.Equal(t, "date", cfg.Servers[0].Name)
	assert.Equal(t, "mcptools", cfg.Servers[0].Command)
	assert.Equal(t, []string{"serve", "date"}, cfg.Servers[0].Args)
	assert.Equal(t, []string{"WEATHER_API_KEY=weatherkey"}, cfg.Servers[1].Env)

	assert.Equal(t, "gpt-4o", cfg.Chat.Model)
	assert.Equal(t, 5, cfg.Chat.MaxIterations)
	assert.True(t, cfg.Chat.KeepSession)

	assert.Equal(t, "weatherkey", cfg.WeatherAPIKey())
	assert.Equal(t, 5*time.Second, cfg.WeatherTimeout())
	assert.Equal(t, config.CacheMemory, cfg.Weather.Cache.Kind)
	assert.Equal(t, time.Minute, cfg.CacheTTL())

	llm, err := cfg.LLMConfig()
	require.NoError(t, err)
	require.Len(t, llm.Providers, 1)
	assert.Equal(t, "openaikey", llm.Providers[0].Token)
}

func TestLoad_Default(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "envkey")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "antkey")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Servers)
	assert.Equal(t, config.DefaultWeatherTimeout, cfg.WeatherTimeout())
	assert.Equal(t, config.DefaultCacheTTL, cfg.CacheTTL())
	assert.Equal(t, "envkey", cfg.WeatherAPIKey())

	llm, err := cfg.LLMConfig()
	require.NoError(t, err)
	require.Len(t, llm.Providers, 1)
	assert.Equal(t, "ANTHROPIC", llm.DefaultProvider)
}

func TestLoad_Invalid(t *testing.T) {
	tcases := []struct {
		file string
		err  string
	}{
		{file: "testdata/invalid_cache.yaml", err: "RedisURL"},
		{file: "testdata/invalid_timeout.yaml", err: "invalid weather timeout"},
		{file: "testdata/duplicate.yaml", err: "duplicate server name: date"},
		{file: "testdata/missing_command.yaml", err: "Command"},
		{file: "testdata/not_found.yaml", err: "failed to load config testdata/not_found.yaml"},
	}
	for _, tc := range tcases {
		t.Run(tc.file, func(t *testing.T) {
			_, err := config.Load(tc.file)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &config.Configuration{
		Chat: config.Chat{MaxIterations: -1},
	}
	assert.Error(t, cfg.Validate())

	cfg.Chat.MaxIterations = 0
	cfg.Weather.Cache.TTL = "-1m"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cache ttl")

	cfg.Weather.Cache.TTL = ""
	cfg.Weather.BaseURL = "not a url"
	assert.Error(t, cfg.Validate())
}
