package cmd

import (
	"fmt"

	"github.com/Digital-Shane/media-resolver/internal/media"
	"github.com/Digital-Shane/media-resolver/internal/provider"
	"github.com/spf13/cobra"
)

var (
	lookupSeason string
	lookupFull   bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <canonical-id>",
	Short: "Show the full record for a canonical media id",
	Long: `Fetch and print the record for a canonical id such as tmdb-tv-1396-breaking-bad.

Shows include the season list and the episodes of one season: the season whose
id is given with --season, otherwise season 1. With --full every season is
fetched and all episodes are listed in order.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookupCommand,
}

func runLookupCommand(cmd *cobra.Command, args []string) error {
	decoded, ok := media.DecodeID(args[0])
	if !ok {
		return fmt.Errorf("%q is not a canonical media id", args[0])
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var rec *media.Record
	if lookupFull && decoded.Type == media.Series {
		rec, err = a.metadata.FullShow(cmd.Context(), decoded.NumericID)
	} else {
		rec, err = a.metadata.Lookup(cmd.Context(), decoded.Type, decoded.NumericID, lookupSeason)
	}
	if provider.IsNotFound(err) {
		return fmt.Errorf("%s was not found in the catalog", args[0])
	}
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), rec)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderRecord(rec))
	return nil
}

func init() {
	lookupCmd.Flags().StringVar(&lookupSeason, "season", "", "Season id to expand")
	lookupCmd.Flags().BoolVar(&lookupFull, "full", false, "Fetch every season and list all episodes")
	rootCmd.AddCommand(lookupCmd)
}
