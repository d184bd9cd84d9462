package cmd

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/media-resolver/internal/search"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog for movies and shows",
	Long: `Search the catalog for movies and shows. Results with a poster come first.

The query may end in "year:YYYY" to keep only that release year, or be an id
reference such as "tmdb:27205" or "tmdb:1396:tv" to look the item up directly.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCommand,
}

func runSearchCommand(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.resolver.Search(cmd.Context(), search.Query{SearchQuery: strings.Join(args, " ")})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), records)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderRecords(records))
	return nil
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
