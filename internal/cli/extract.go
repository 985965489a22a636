package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"housing-assistant/internal/config"
	"housing-assistant/internal/service"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [query]",
	Short: "Show the facets found in a question",
	Long: `Runs the facet extractor on a question and prints the city, orientation,
price bounds and keywords it found as JSON. No database is needed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := vocabFile
	if path == "" {
		path = os.Getenv("VOCABULARY_FILE")
	}
	vocab, err := config.LoadVocabulary(path)
	if err != nil {
		return err
	}

	facets := service.NewFacetExtractor(vocab).Extract(strings.Join(args, " "))

	data, err := json.MarshalIndent(facets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal facets: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
