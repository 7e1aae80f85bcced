package weatherapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/pkg/weatherapi"
	"github.com/effective-security/mcptools/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currentBody = `{
	"location": {"name": "San Francisco", "region": "California"},
	"current": {"temp_c": 14.0, "condition": {"text": "Partly cloudy"}, "wind_kph": 9.4}
}`

const forecastBody = `{
	"location": {"name": "Sydney"},
	"forecast": {"forecastday": [
		{"date": "2025-12-22", "day": {"maxtemp_c": 26.3, "mintemp_c": 19, "condition": {"text": "Sunny"}}}
	]}
}`

func Test_FormatCurrent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		exp  string
		ok   bool
	}{
		{"full", currentBody, "14.0°C, Partly cloudy, wind 9.4 km/h", true},
		{"no_location", `{"current": {"temp_c": 1, "condition": {"text": "Rain"}, "wind_kph": 2}}`, weatherapi.CurrentNotAvailable, false},
		{"no_wind", `{"location": {"name": "x"}, "current": {"temp_c": 1, "condition": {"text": "Rain"}}}`, weatherapi.CurrentNotAvailable, false},
		{"api_error", `{"error": {"code": 1006, "message": "No matching location found."}}`, weatherapi.CurrentNotAvailable, false},
		{"not_json", `<html>bad gateway</html>`, weatherapi.CurrentNotAvailable, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			text, ok := weatherapi.FormatCurrent([]byte(tc.body))
			assert.Equal(t, tc.exp, text)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func Test_FormatForecast(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		exp  string
		ok   bool
	}{
		{"full", forecastBody, "26.3°C / 19°C, Sunny", true},
		{"empty_days", `{"forecast": {"forecastday": []}}`, weatherapi.ForecastNotAvailable, false},
		{"no_condition", `{"forecast": {"forecastday": [{"day": {"maxtemp_c": 1, "mintemp_c": 0}}]}}`, weatherapi.ForecastNotAvailable, false},
		{"api_error", `{"error": {"code": 1006, "message": "No matching location found."}}`, weatherapi.ForecastNotAvailable, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			text, ok := weatherapi.FormatForecast([]byte(tc.body))
			assert.Equal(t, tc.exp, text)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func Test_Client(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "testkey", q.Get("key"))

		switch r.URL.Path {
		case "/v1/current.json":
			assert.Equal(t, "no", q.Get("aqi"))
			if q.Get("q") == "nowhere" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error": {"code": 1006, "message": "No matching location found."}}`))
				return
			}
			assert.Equal(t, "San Fransisco", q.Get("q"))
			_, _ = w.Write([]byte(currentBody))
		case "/v1/forecast.json":
			assert.Equal(t, "sydney", q.Get("q"))
			assert.Equal(t, "2025-12-22", q.Get("dt"))
			_, _ = w.Write([]byte(forecastBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	c := weatherapi.New("testkey",
		weatherapi.WithBaseURL(server.URL+"/"),
		weatherapi.WithHTTPClient(server.Client()),
	)

	text, err := c.Current(ctx, "San Fransisco")
	require.NoError(t, err)
	assert.Equal(t, "14.0°C, Partly cloudy, wind 9.4 km/h", text)

	text, err = c.Current(ctx, "nowhere")
	require.NoError(t, err)
	assert.Equal(t, weatherapi.CurrentNotAvailable, text)

	date, err := time.Parse(weatherapi.DateLayout, "2025-12-22")
	require.NoError(t, err)
	text, err = c.OnDate(ctx, "sydney", date)
	require.NoError(t, err)
	assert.Equal(t, "26.3°C / 19°C, Sunny", text)

	assert.Equal(t, int32(3), calls.Load())
}

func Test_Client_Cache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("q") == "nowhere" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(currentBody))
	}))
	defer server.Close()

	ctx := context.Background()
	cache := store.NewMemoryCache()
	c := weatherapi.New("testkey",
		weatherapi.WithBaseURL(server.URL),
		weatherapi.WithHTTPClient(server.Client()),
		weatherapi.WithCache(cache, time.Minute),
	)

	for range 3 {
		text, err := c.Current(ctx, "Paris")
		require.NoError(t, err)
		assert.Equal(t, "14.0°C, Partly cloudy, wind 9.4 km/h", text)
	}
	assert.Equal(t, int32(1), calls.Load())

	cached, err := cache.Get(ctx, "weather/current/paris")
	require.NoError(t, err)
	assert.Equal(t, "14.0°C, Partly cloudy, wind 9.4 km/h", cached)

	// incomplete responses are not cached
	for range 2 {
		text, err := c.Current(ctx, "nowhere")
		require.NoError(t, err)
		assert.Equal(t, weatherapi.CurrentNotAvailable, text)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func Test_Client_TransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := weatherapi.New("testkey", weatherapi.WithBaseURL(url))
	_, err := c.Current(context.Background(), "Paris")
	require.Error(t, err)
	assert.True(t, errors.Is(err, weatherapi.ErrRequestFailed))
}

func Test_New_KeyFromEnv(t *testing.T) {
	t.Setenv(weatherapi.APIKeyEnvVarName, "envkey")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "envkey", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(currentBody))
	}))
	defer server.Close()

	c := weatherapi.New("", weatherapi.WithBaseURL(server.URL))
	_, err := c.Current(context.Background(), "Paris")
	require.NoError(t, err)
}
