package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Digital-Shane/media-resolver/internal/log"
	"github.com/spf13/cobra"
)

var noJournal bool

var migrateCmd = &cobra.Command{
	Use:   "migrate [url]...",
	Short: "Rewrite legacy and embed URLs into canonical media URLs",
	Long: `Rewrite legacy /media/JW-*, /media/tmdb-show-* and /embed/tmdb-* URLs into the
canonical /media/{id} form. URLs are read from the arguments, or one per line
from stdin when none are given. Blank lines and lines starting with # are ignored.

Every run is recorded in the migration journal; see "media-resolver history".`,
	RunE: runMigrateCommand,
}

var embedCmd = &cobra.Command{
	Use:   "embed <url>...",
	Short: "Rewrite /embed/tmdb-* player URLs into canonical media URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res := migrateURLs(cmd.Context(), cmd.OutOrStdout(), a.migrator.ConvertEmbedURL, nil, args)
		return res.err()
	},
}

// convertFunc rewrites one URL. ok is false when the URL has no canonical
// equivalent.
type convertFunc func(ctx context.Context, raw string) (target string, ok bool, err error)

type batchResult struct {
	Total     int
	Converted int
	Skipped   int
	Failed    int
}

func (r batchResult) err() error {
	if r.Failed > 0 {
		return fmt.Errorf("%d of %d urls failed to migrate", r.Failed, r.Total)
	}
	return nil
}

func runMigrateCommand(cmd *cobra.Command, args []string) error {
	urls, err := readURLs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no urls given")
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var journal *log.Journal
	if !noJournal {
		journal, err = openJournal(a.cfg.LogRetentionDays)
		if err != nil {
			a.logger.Warn("migration journal unavailable", "error", err)
		} else {
			journal.Start(cmd.Name(), args)
		}
	}

	res := migrateURLs(cmd.Context(), cmd.OutOrStdout(), a.migrator.Convert, journal, urls)

	if journal != nil {
		if path, err := journal.End(); err != nil {
			a.logger.Warn("failed to write migration journal", "error", err)
		} else {
			a.logger.Debug("migration journal written", "path", path)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %d converted, %d unchanged, %d failed\n",
		headerStyle.Render("Done:"), res.Converted, res.Skipped, res.Failed)
	return res.err()
}

// migrateURLs converts each URL in order, printing one line per URL and
// recording it in j when j is not nil.
func migrateURLs(ctx context.Context, w io.Writer, convert convertFunc, j *log.Journal, urls []string) batchResult {
	var res batchResult
	for _, raw := range urls {
		res.Total++
		target, ok, err := convert(ctx, raw)
		if j != nil {
			j.Record(raw, target, ok, err)
		}

		switch {
		case err != nil:
			res.Failed++
			fmt.Fprintf(w, "%s %s: %v\n", errorStyle.Render("✗"), raw, err)
		case ok:
			res.Converted++
			fmt.Fprintf(w, "%s %s → %s\n", successStyle.Render("✓"), raw, idStyle.Render(target))
		default:
			res.Skipped++
			fmt.Fprintf(w, "%s %s\n", mutedStyle.Render("-"), raw)
		}
	}
	return res
}

// readURLs returns args when present, otherwise the non blank, non comment
// lines of r.
func readURLs(args []string, r io.Reader) ([]string, error) {
	var urls []string
	if len(args) > 0 {
		for _, arg := range args {
			if s := strings.TrimSpace(arg); s != "" {
				urls = append(urls, s)
			}
		}
		return urls, nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read urls: %w", err)
	}
	return urls, nil
}

func openJournal(retentionDays int) (*log.Journal, error) {
	dir, err := log.DefaultJournalDir()
	if err != nil {
		return nil, err
	}
	return log.NewJournal(dir, retentionDays)
}

func init() {
	migrateCmd.Flags().BoolVar(&noJournal, "no-journal", false, "Do not record this run in the migration journal")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(embedCmd)
}
