package cli

import (
	"fmt"

	"github.com/effective-security/mcptools/callbacks"
	"github.com/effective-security/mcptools/encoding"
	"github.com/effective-security/mcptools/orchestrator"
	"github.com/effective-security/mcptools/pkg/llmfactory"
	"github.com/effective-security/mcptools/pkg/llms"
	"github.com/effective-security/mcptools/pkg/prompts"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

type chatFlags struct {
	model         string
	maxIterations int
	maxTokens     int
	verbose       bool
	stats         bool
}

func newChatCmd(a *app) *cobra.Command {
	var flags chatFlags

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Answer a message with a chat model that calls the tools",
		Example: `  mcptools chat "What time is it in India?"
  mcptools chat "Will it rain in London tomorrow?" --model gpt-4o --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.chat(cmd, args[0], &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Chat model, default: chat.model or the provider default")
	cmd.Flags().IntVar(&flags.maxIterations, "max-iterations", 0, "Maximum chat calls, default: chat.max_iterations or 10")
	cmd.Flags().IntVar(&flags.maxTokens, "max-tokens", 0, "Maximum tokens of each reply")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Print the run events to stderr")
	cmd.Flags().BoolVar(&flags.stats, "stats", false, "Print the run statistics to stderr")
	return cmd
}

func (a *app) chat(cmd *cobra.Command, message string, flags *chatFlags) error {
	ctx := cmd.Context()

	llmCfg, err := a.cfg.LLMConfig()
	if err != nil {
		return err
	}
	model := values.StringsCoalesce(flags.model, a.cfg.Chat.Model)

	factory := llmfactory.New(llmCfg)
	var llm llms.Model
	if model != "" {
		llm, err = factory.ModelByName(model)
	} else {
		llm, err = factory.DefaultModel()
	}
	if err != nil {
		return err
	}

	tpl, err := prompts.NewTemplate(a.cfg.Chat.SystemPrompt)
	if err != nil {
		return err
	}

	host, closeFn, err := a.toolHost(ctx, a.cfg.Chat.KeepSession)
	if err != nil {
		return err
	}
	defer closeFn()

	cb := callbacks.NewFanout(callbacks.NewPackageLogger(logger))
	if flags.verbose {
		cb.Add(callbacks.NewPrinter(cmd.ErrOrStderr(), callbacks.ModeVerbose))
	}
	var pad *callbacks.Scratchpad
	if flags.stats {
		pad = callbacks.NewScratchpad(callbacks.ModeDefault)
		cb.Add(pad)
	}

	opts := []orchestrator.Option{
		orchestrator.WithCallback(cb),
		orchestrator.WithSystemPrompt(tpl),
	}
	if flags.maxTokens > 0 {
		opts = append(opts, orchestrator.WithCallOptions(llms.WithMaxTokens(flags.maxTokens)))
	}

	maxIterations := flags.maxIterations
	if maxIterations <= 0 {
		maxIterations = a.cfg.Chat.MaxIterations
	}

	res, err := orchestrator.New(llm, host, opts...).Execute(ctx, message, model, maxIterations)
	if pad != nil && res != nil {
		if _, printed := pad.EndRun(res.RunID); len(printed) > 0 {
			_, _ = cmd.ErrOrStderr().Write(printed)
		}
	}
	if err != nil {
		return err
	}

	logger.KV(xlog.DEBUG, "run_id", res.RunID, "state", res.State.String(), "iterations", res.Iterations)

	w := cmd.OutOrStdout()
	if a.output != encoding.FormatText {
		enc, err := encoding.NewEncoder(a.output)
		if err != nil {
			return err
		}
		bs, err := enc.Marshal(chatResult{
			RunID:      res.RunID,
			Answer:     res.Answer,
			State:      res.State.String(),
			Iterations: res.Iterations,
			ToolCalls:  res.ToolCalls,
		})
		if err != nil {
			return err
		}
		_, err = w.Write(bs)
		return err
	}

	fmt.Fprintln(w, res.Answer)
	return nil
}

type chatResult struct {
	RunID      string `json:"run_id" yaml:"run_id" toml:"run_id"`
	Answer     string `json:"answer" yaml:"answer" toml:"answer"`
	State      string `json:"state" yaml:"state" toml:"state"`
	Iterations int    `json:"iterations" yaml:"iterations" toml:"iterations"`
	ToolCalls  int    `json:"tool_calls" yaml:"tool_calls" toml:"tool_calls"`
}
