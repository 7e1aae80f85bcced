package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsLLMCallsSucceeded is base for counter metric for chat completions succeeded
	StatsLLMCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_calls_succeeded",
		Help:         "stats_llm_calls_succeeded provides total chat completion calls succeeded",
		RequiredTags: []string{"provider", "model"},
	}

	StatsLLMCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_calls_failed",
		Help:         "stats_llm_calls_failed provides total chat completion calls failed",
		RequiredTags: []string{"provider", "model"},
	}

	StatsLLMMessagesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_messages_sent",
		Help:         "stats_llm_messages_sent provides total messages sent to LLM",
		RequiredTags: []string{"provider", "model"},
	}

	StatsRunsDone = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_runs_done",
		Help:         "stats_runs_done provides total orchestration runs completed with a reply",
		RequiredTags: []string{"model"},
	}

	StatsRunsExhausted = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_runs_exhausted",
		Help:         "stats_runs_exhausted provides total orchestration runs that reached max iterations",
		RequiredTags: []string{"model"},
	}

	StatsRunsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_runs_failed",
		Help:         "stats_runs_failed provides total orchestration runs failed",
		RequiredTags: []string{"model"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}

	StatsWeatherCacheHits = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_weather_cache_hits",
		Help:         "stats_weather_cache_hits provides total weather lookups served from cache",
		RequiredTags: []string{"endpoint"},
	}

	StatsWeatherCacheMisses = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_weather_cache_misses",
		Help:         "stats_weather_cache_misses provides total weather lookups not found in cache",
		RequiredTags: []string{"endpoint"},
	}

	StatsWeatherAPICallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_weather_api_calls_failed",
		Help:         "stats_weather_api_calls_failed provides total weather API calls failed",
		RequiredTags: []string{"endpoint"},
	}
)

// Perf
var (
	PerfChatRun = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_chat_run",
		Help:         "perf_chat_run provides duration of orchestration run",
		RequiredTags: []string{"model"},
	}

	PerfLLMCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_llm_call",
		Help:         "perf_llm_call provides duration of chat completion call",
		RequiredTags: []string{"provider", "model"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}

	PerfWeatherAPICall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_weather_api_call",
		Help:         "perf_weather_api_call provides duration of weather API call",
		RequiredTags: []string{"endpoint"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfChatRun,
	&PerfLLMCall,
	&PerfToolCall,
	&PerfWeatherAPICall,
	&StatsLLMCallsFailed,
	&StatsLLMCallsSucceeded,
	&StatsLLMMessagesSent,
	&StatsRunsDone,
	&StatsRunsExhausted,
	&StatsRunsFailed,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
	&StatsWeatherAPICallsFailed,
	&StatsWeatherCacheHits,
	&StatsWeatherCacheMisses,
}
