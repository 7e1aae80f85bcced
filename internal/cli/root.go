// Package cli implements the mcptools commands.
package cli

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/encoding"
	"github.com/effective-security/mcptools/internal/config"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcptools/internal", "cli")

type app struct {
	configFile string
	debug      bool
	output     string

	cfg *config.Configuration
}

// NewRootCmd creates the top-level mcptools command with all subcommands.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "mcptools",
		Short: "MCP date and weather tools, with an LLM chat client",
		Long: `mcptools serves the date and weather MCP tool servers over stdio,
lists and calls their tools, and answers questions with a chat model
that calls the tools.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Configuration file, default: "+config.DefaultFileName+" if present")
	cmd.PersistentFlags().BoolVarP(&a.debug, "debug", "D", false, "Enable debug logs")
	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", encoding.FormatText, "Output format: text|json|yaml|toml")

	cmd.AddCommand(
		newServeCmd(a),
		newToolsCmd(a),
		newChatCmd(a),
	)

	return cmd
}

// init sets the logs to stderr, the stdout of a tool server is the protocol channel.
func (a *app) init(cmd *cobra.Command) error {
	xlog.SetFormatter(xlog.NewStringFormatter(cmd.ErrOrStderr()))
	if a.debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.WARNING)
	}

	if !slices.Contains(encoding.Formats, a.output) {
		return errors.Newf("unsupported output format: %q", a.output)
	}

	file := a.configFile
	if file == "" {
		file = config.Find()
	}
	cfg, err := config.Load(file)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger.KV(xlog.DEBUG, "config", file, "servers", len(cfg.Servers))
	return nil
}
