package cmd

import (
	"fmt"
	"io"

	"github.com/Digital-Shane/media-resolver/internal/media"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <id>...",
	Short: "Split canonical media ids into their parts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decodeIDs(cmd.OutOrStdout(), args)
	},
}

type decodedID struct {
	ID        string `json:"id"`
	Valid     bool   `json:"valid"`
	Provider  string `json:"provider,omitempty"`
	Type      string `json:"type,omitempty"`
	NumericID string `json:"numeric_id,omitempty"`
}

// decodeIDs needs no configuration or network access.
func decodeIDs(w io.Writer, ids []string) error {
	out := make([]decodedID, 0, len(ids))
	for _, id := range ids {
		d, ok := media.DecodeID(id)
		row := decodedID{ID: id, Valid: ok}
		if ok {
			row.Provider = d.Provider
			row.Type = d.Type.String()
			row.NumericID = d.NumericID
		}
		out = append(out, row)
	}

	if jsonOutput {
		return writeJSON(w, out)
	}
	for _, row := range out {
		if !row.Valid {
			fmt.Fprintf(w, "%s  %s\n", row.ID, errorStyle.Render("not a canonical id"))
			continue
		}
		fmt.Fprintf(w, "%s  %s %s %s\n", row.ID, row.Provider, row.Type, idStyle.Render(row.NumericID))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
