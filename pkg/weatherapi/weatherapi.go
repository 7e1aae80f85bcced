// Package weatherapi is a small client for the weatherapi.com REST API.
// It returns the short human readable summaries served by the weather tools.
package weatherapi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/pkg/metricskey"
	"github.com/effective-security/mcptools/store"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/tidwall/gjson"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcptools/pkg", "weatherapi")

const (
	// DefaultBaseURL is the weatherapi.com endpoint
	DefaultBaseURL = "https://api.weatherapi.com"
	// APIKeyEnvVarName is the environment variable holding the API key
	APIKeyEnvVarName = "WEATHER_API_KEY" //#nosec G101 -- This is the variable name, not the key.

	// DateLayout is the layout of forecast dates
	DateLayout = "2006-01-02"

	// CurrentNotAvailable is returned when the current weather response is incomplete
	CurrentNotAvailable = "Weather data not available."
	// ForecastNotAvailable is returned when the forecast response is incomplete
	ForecastNotAvailable = "Forecast not available."

	endpointCurrent  = "current"
	endpointForecast = "forecast"
)

// ErrRequestFailed is returned when the API could not be reached.
var ErrRequestFailed = errors.New("weather API request failed")

// Doer executes HTTP requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client Doer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCache puts a cache in front of the API,
// only complete summaries are stored.
func WithCache(cache store.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.ttl = ttl
	}
}

// Client queries weatherapi.com
type Client struct {
	apiKey     string
	baseURL    string
	httpClient Doer
	cache      store.Cache
	ttl        time.Duration
}

// New returns a client, the key falls back to WEATHER_API_KEY.
// An empty key is allowed, the API then answers with an error body
// and the lookups return the not-available summaries.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     values.StringsCoalesce(apiKey, os.Getenv(APIKeyEnvVarName)),
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the summary of the current weather at location,
// formatted as "{temp_c}°C, {condition}, wind {wind_kph} km/h".
func (c *Client) Current(ctx context.Context, location string) (string, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", location)
	q.Set("aqi", "no")

	key := store.Key("weather", endpointCurrent, strings.ToLower(location))
	return c.lookup(ctx, endpointCurrent, key, "/v1/current.json", q, FormatCurrent)
}

// OnDate returns the forecast summary for location on the date,
// formatted as "{maxtemp_c}°C / {mintemp_c}°C, {condition}".
func (c *Client) OnDate(ctx context.Context, location string, date time.Time) (string, error) {
	dt := date.Format(DateLayout)

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", location)
	q.Set("dt", dt)

	key := store.Key("weather", endpointForecast, strings.ToLower(location), dt)
	return c.lookup(ctx, endpointForecast, key, "/v1/forecast.json", q, FormatForecast)
}

func (c *Client) lookup(ctx context.Context, endpoint, key, path string, q url.Values, format func([]byte) (string, bool)) (string, error) {
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, key)
		if err == nil {
			metricskey.StatsWeatherCacheHits.IncrCounter(1, endpoint)
			return cached, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			logger.ContextKV(ctx, xlog.WARNING, "reason", "cache_get", "key", key, "err", err.Error())
		}
		metricskey.StatsWeatherCacheMisses.IncrCounter(1, endpoint)
	}

	body, err := c.get(ctx, endpoint, path, q)
	if err != nil {
		return "", err
	}

	text, ok := format(body)
	if !ok {
		logger.ContextKV(ctx, xlog.DEBUG,
			"endpoint", endpoint,
			"status", "incomplete_response",
			"body", string(body),
		)
		return text, nil
	}

	if c.cache != nil {
		if err = c.cache.Set(ctx, key, text, c.ttl); err != nil {
			logger.ContextKV(ctx, xlog.WARNING, "reason", "cache_set", "key", key, "err", err.Error())
		}
	}
	return text, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values) ([]byte, error) {
	started := time.Now()
	defer metricskey.PerfWeatherAPICall.MeasureSince(started, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metricskey.StatsWeatherAPICallsFailed.IncrCounter(1, endpoint)
		return nil, errors.Mark(errors.Wrapf(err, "%s weather", endpoint), ErrRequestFailed)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metricskey.StatsWeatherAPICallsFailed.IncrCounter(1, endpoint)
		return nil, errors.Mark(errors.Wrapf(err, "failed to read %s weather response", endpoint), ErrRequestFailed)
	}

	if resp.StatusCode != http.StatusOK {
		metricskey.StatsWeatherAPICallsFailed.IncrCounter(1, endpoint)
		logger.ContextKV(ctx, xlog.DEBUG,
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"error", gjson.GetBytes(body, "error.message").String(),
		)
	}
	return body, nil
}

// FormatCurrent formats a current.json response,
// numbers are rendered as sent by the API.
func FormatCurrent(body []byte) (string, bool) {
	res := gjson.GetManyBytes(body,
		"location.name",
		"current.temp_c",
		"current.condition.text",
		"current.wind_kph",
	)
	if !allExist(res) {
		return CurrentNotAvailable, false
	}
	return res[1].Raw + "°C, " + res[2].String() + ", wind " + res[3].Raw + " km/h", true
}

// FormatForecast formats the first forecast day of a forecast.json response.
func FormatForecast(body []byte) (string, bool) {
	res := gjson.GetManyBytes(body,
		"forecast.forecastday.0.day.maxtemp_c",
		"forecast.forecastday.0.day.mintemp_c",
		"forecast.forecastday.0.day.condition.text",
	)
	if !allExist(res) {
		return ForecastNotAvailable, false
	}
	return res[0].Raw + "°C / " + res[1].Raw + "°C, " + res[2].String(), true
}

func allExist(res []gjson.Result) bool {
	for _, r := range res {
		if !r.Exists() {
			return false
		}
	}
	return true
}
