package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"housing-assistant/internal/model"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [file.json]",
	Short: "Load listings from a JSON file",
	Long: `Reads a JSON array of listings, creates the housing table if needed and
inserts the rows in one transaction. Cached search results are dropped
afterwards so new listings show up immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the housing table and indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Repo.EnsureSchema(context.Background()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema ready (%s)\n", a.Repo.Driver())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(schemaCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read listings file: %w", err)
	}

	var listings []model.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return fmt.Errorf("failed to parse listings file: %w", err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if err := a.Repo.EnsureSchema(ctx); err != nil {
		return err
	}

	n, err := a.Repo.InsertListings(ctx, listings)
	if err != nil {
		return err
	}

	if err := a.InvalidateSearchCache(ctx); err != nil {
		slog.Warn("imported listings may be hidden by cached searches", "error", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d listings\n", n)
	return nil
}
