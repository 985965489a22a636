package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	askFlags   requestFlags
	askStream  bool
	askTimeout time.Duration
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a housing question from local listings",
	Long: `Retrieves matching listings and asks the configured chat model to answer
using only those listings. Requires OPENAI_API_KEY or DEEPSEEK_API_KEY.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askFlags.register(askCmd)
	askCmd.Flags().BoolVar(&askStream, "stream", false, "print the answer as it is generated")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall time limit")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	req := askFlags.request(cmd, args)
	if !askStream {
		resp, err := a.Assistant.Ask(ctx, req)
		if err != nil {
			return err
		}
		if askFlags.json {
			return printJSON(cmd, resp)
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Answer)
		return nil
	}

	resp, err := a.Assistant.AskStream(ctx, req, func(event string, data any) error {
		switch event {
		case "listings":
			if fields, ok := data.(map[string]any); ok {
				cmd.PrintErrf("Strategy: %v\n", fields["strategy"])
			}
		case "thinking":
			if fields, ok := data.(map[string]any); ok && logLevel == "debug" {
				cmd.PrintErr(fields["content"])
			}
		case "delta":
			if fields, ok := data.(map[string]any); ok {
				fmt.Fprint(cmd.OutOrStdout(), fields["content"])
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())
	if askFlags.json {
		return printJSON(cmd, resp)
	}
	return nil
}
