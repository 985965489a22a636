package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"housing-assistant/internal/model"

	"github.com/spf13/cobra"
)

// requestFlags are the explicit overrides shared by search and ask
type requestFlags struct {
	city     string
	minPrice int64
	maxPrice int64
	limit    int
	json     bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.city, "city", "", "city override")
	cmd.Flags().Int64Var(&f.minPrice, "min-price", 0, "minimum monthly price override")
	cmd.Flags().Int64Var(&f.maxPrice, "max-price", 0, "maximum monthly price override")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 0, "maximum number of listings (0 uses the configured default)")
	cmd.Flags().BoolVar(&f.json, "json", false, "output the response as JSON")
}

// request builds an AskRequest; only flags set on the command line become overrides
func (f *requestFlags) request(cmd *cobra.Command, args []string) *model.AskRequest {
	req := &model.AskRequest{
		Query: strings.Join(args, " "),
		City:  f.city,
	}
	if cmd.Flags().Changed("min-price") {
		req.MinPrice = model.OptionalInt{Value: f.minPrice, Valid: true}
	}
	if cmd.Flags().Changed("max-price") {
		req.MaxPrice = model.OptionalInt{Value: f.maxPrice, Valid: true}
	}
	if cmd.Flags().Changed("limit") {
		req.TopK = model.OptionalInt{Value: int64(f.limit), Valid: true}
	}
	return req
}

var searchFlags requestFlags

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search listings for a question",
	Long: `Extracts facets from the question and searches the listing store,
relaxing the search step by step (all keywords, each keyword, city only,
raw question) until something matches. Prints the listing table.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchFlags.register(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Assistant.Search(context.Background(), searchFlags.request(cmd, args))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchFlags.json {
		return printJSON(cmd, resp)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Strategy: %s (keyword %q, %d attempts)\n\n", resp.Strategy, resp.Keyword, resp.Attempts)
	fmt.Fprintln(cmd.OutOrStdout(), resp.LocalData)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
