package cmd

import (
	"fmt"
	"io"

	"github.com/Digital-Shane/media-resolver/internal/log"
	"github.com/spf13/cobra"
)

var (
	historyLimit   int
	historyVerbose bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent migration runs",
	Long: `List recent runs of "media-resolver migrate" from the migration journal,
newest first. Use --verbose to print every URL of each run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := log.DefaultJournalDir()
		if err != nil {
			return err
		}
		j, err := log.NewJournal(dir, 0)
		if err != nil {
			return err
		}
		sessions, err := j.Sessions(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read migration journal: %w", err)
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), sessions)
		}
		printHistory(cmd.OutOrStdout(), sessions, historyVerbose)
		return nil
	},
}

func printHistory(w io.Writer, sessions []*log.Session, verbose bool) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No migration runs found.")
		return
	}

	for _, s := range sessions {
		m := s.Metadata
		icon := successStyle.Render("✓")
		if m.Failed > 0 {
			icon = errorStyle.Render("✗")
		}
		fmt.Fprintf(w, "%s %s %s (%d urls: %d converted, %d unchanged, %d failed)\n",
			icon,
			headerStyle.Render(m.SessionID),
			mutedStyle.Render(log.RelativeTime(m.Timestamp)),
			m.Total, m.Converted, m.Skipped, m.Failed)

		if !verbose {
			continue
		}
		for _, e := range s.Entries {
			switch {
			case e.Error != "":
				fmt.Fprintf(w, "    %s %s: %s\n", errorStyle.Render("✗"), e.Source, e.Error)
			case e.Converted:
				fmt.Fprintf(w, "    %s %s → %s\n", successStyle.Render("✓"), e.Source, e.Target)
			default:
				fmt.Fprintf(w, "    %s %s\n", mutedStyle.Render("-"), e.Source)
			}
		}
	}
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show (0 for all)")
	historyCmd.Flags().BoolVarP(&historyVerbose, "verbose", "v", false, "Show every URL of each run")
	rootCmd.AddCommand(historyCmd)
}
