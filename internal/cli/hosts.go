package cli

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/internal/config"
	"github.com/effective-security/mcptools/mcp"
	"github.com/effective-security/mcptools/pkg/weatherapi"
	"github.com/effective-security/mcptools/store"
	"github.com/effective-security/mcptools/toolhost"
	"github.com/effective-security/mcptools/tools/localdate"
	"github.com/effective-security/mcptools/tools/weather"
	"github.com/effective-security/xlog"
)

const cachePrefix = "mcptools"

// clients returns a client per configured server. Without configured servers
// the built-in servers run in process, the weather server only when an API
// key is available.
func (a *app) clients(ctx context.Context) ([]*toolhost.Client, error) {
	if len(a.cfg.Servers) > 0 {
		list := make([]*toolhost.Client, 0, len(a.cfg.Servers))
		for _, s := range a.cfg.Servers {
			list = append(list, toolhost.NewCommand(s.Name, s.Command, s.Args, s.Env...))
		}
		return list, nil
	}

	date, err := localdate.NewServer()
	if err != nil {
		return nil, err
	}
	list := []*toolhost.Client{toolhost.NewInMemory(date)}

	if a.cfg.WeatherAPIKey() == "" {
		logger.KV(xlog.DEBUG, "server", weather.ServerName, "reason", "no_api_key")
		return list, nil
	}
	ws, err := a.weatherServer(ctx)
	if err != nil {
		return nil, err
	}
	return append(list, toolhost.NewInMemory(ws)), nil
}

// toolHost returns the hosts of all servers routed by tool name.
// With keepSession, one session per server is held until close is called.
func (a *app) toolHost(ctx context.Context, keepSession bool) (*toolhost.Multi, func(), error) {
	clients, err := a.clients(ctx)
	if err != nil {
		return nil, nil, err
	}

	if !keepSession {
		hosts := make([]toolhost.Host, 0, len(clients))
		for _, c := range clients {
			hosts = append(hosts, c)
		}
		return toolhost.NewMulti(hosts...), func() {}, nil
	}

	var sessions []*toolhost.Session
	closeAll := func() {
		for _, s := range sessions {
			if err := s.Close(); err != nil {
				logger.KV(xlog.WARNING, "server", s.Name(), "err", err.Error())
			}
		}
	}

	hosts := make([]toolhost.Host, 0, len(clients))
	for _, c := range clients {
		s, err := c.Open(ctx)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sessions = append(sessions, s)
		hosts = append(hosts, s)
	}
	return toolhost.NewMulti(hosts...), closeAll, nil
}

func (a *app) weatherServer(ctx context.Context) (*mcp.Server, error) {
	api, err := newWeatherAPI(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	return weather.NewServer(api)
}

func newWeatherAPI(ctx context.Context, cfg *config.Configuration) (*weatherapi.Client, error) {
	opts := []weatherapi.Option{
		weatherapi.WithHTTPClient(&http.Client{Timeout: cfg.WeatherTimeout()}),
	}
	if cfg.Weather.BaseURL != "" {
		opts = append(opts, weatherapi.WithBaseURL(cfg.Weather.BaseURL))
	}

	switch cfg.Weather.Cache.Kind {
	case config.CacheMemory:
		opts = append(opts, weatherapi.WithCache(store.NewMemoryCache(), cfg.CacheTTL()))
	case config.CacheRedis:
		cache, err := store.NewRedisCacheFromURL(ctx, cfg.Weather.Cache.RedisURL, cachePrefix)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to create weather cache")
		}
		opts = append(opts, weatherapi.WithCache(cache, cfg.CacheTTL()))
	}

	return weatherapi.New(cfg.WeatherAPIKey(), opts...), nil
}
