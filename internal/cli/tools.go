package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcptools/encoding"
	jsonenc "github.com/effective-security/mcptools/encoding/json"
	"github.com/effective-security/mcptools/toolhost"
	"github.com/spf13/cobra"
)

func newToolsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List and call the tools of the configured servers",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the available tools",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.listTools(cmd)
			},
		},
		newToolsCallCmd(a),
	)
	return cmd
}

type toolsList struct {
	Tools []*toolhost.Descriptor `json:"tools" yaml:"tools" toml:"tools"`
}

func (a *app) listTools(cmd *cobra.Command) error {
	ctx := cmd.Context()
	host, closeFn, err := a.toolHost(ctx, false)
	if err != nil {
		return err
	}
	defer closeFn()

	list, err := host.ListTools(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if a.output != encoding.FormatText {
		enc, err := encoding.NewEncoder(a.output)
		if err != nil {
			return err
		}
		bs, err := enc.Marshal(toolsList{Tools: list})
		if err != nil {
			return err
		}
		_, err = w.Write(bs)
		return err
	}

	fmt.Fprintln(w, "Available tools:")
	for _, d := range list {
		fmt.Fprintf(w, "  - %s: %s\n", d.Name, d.Description)
	}
	fmt.Fprintln(w)
	return nil
}

func newToolsCallCmd(a *app) *cobra.Command {
	var arguments string

	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Call a tool and print its result",
		Example: `  mcptools tools call get_localdate --args '{"timezone":"Asia/Kolkata"}'
  mcptools tools call get_weather --args '{"location":"Paris"}' -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.callTool(cmd, args[0], arguments)
		},
	}
	cmd.Flags().StringVar(&arguments, "args", "{}", "Tool arguments as a JSON object")
	return cmd
}

func (a *app) callTool(cmd *cobra.Command, name, arguments string) error {
	args := map[string]any{}
	if arguments != "" {
		if err := jsonenc.NewEncoder("").Unmarshal([]byte(arguments), &args); err != nil {
			return errors.WithMessage(err, "invalid tool arguments")
		}
	}

	ctx := cmd.Context()
	host, closeFn, err := a.toolHost(ctx, false)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := host.CallTool(ctx, name, args)
	if err != nil {
		return err
	}

	out, err := encoding.Reformat(res.Text(), a.output)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if res.IsError {
		return errors.Newf("tool %s failed", name)
	}
	return nil
}
