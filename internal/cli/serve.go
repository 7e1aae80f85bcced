package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/effective-security/mcptools/mcp"
	"github.com/effective-security/mcptools/pkg/weatherapi"
	"github.com/effective-security/mcptools/tools/localdate"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a tool server over stdio",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "date",
			Short: "Serve the get_localdate tool",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := localdate.NewServer()
				if err != nil {
					return err
				}
				return serveStdio(cmd, s)
			},
		},
		&cobra.Command{
			Use:   "weather",
			Short: "Serve the get_weather and get_weather_on_date tools",
			Long:  "Serve the weather tools, backed by weatherapi.com. The API key is read from " + weatherapi.APIKeyEnvVarName + " or the configuration.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if a.cfg.WeatherAPIKey() == "" {
					logger.KV(xlog.WARNING, "reason", "no_api_key", "env", weatherapi.APIKeyEnvVarName)
				}
				s, err := a.weatherServer(cmd.Context())
				if err != nil {
					return err
				}
				return serveStdio(cmd, s)
			},
		},
	)
	return cmd
}

func serveStdio(cmd *cobra.Command, s *mcp.Server) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.ServeStdio(ctx)
}
