package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Digital-Shane/media-resolver/internal/media"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const titleWidth = 40

var (
	primary = lipgloss.Color("#3a6b4a")
	accent  = lipgloss.Color("#8fc279")
	muted   = lipgloss.Color("#9ba8c0")
	success = lipgloss.Color("#5dc796")
	failure = lipgloss.Color("#f04c56")

	headerStyle  = lipgloss.NewStyle().Foreground(primary).Bold(true)
	idStyle      = lipgloss.NewStyle().Foreground(accent)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success)
	errorStyle   = lipgloss.NewStyle().Foreground(failure).Bold(true)
)

func init() {
	runewidth.DefaultCondition.EastAsianWidth = false
	runewidth.DefaultCondition.StrictEmojiNeutral = true
}

// truncateTitle shortens s to at most width terminal cells.
func truncateTitle(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

// pad right pads s to width cells. lipgloss widths count styled text, so
// padding happens before styling.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// renderRecords draws one row per record: type, year, title and canonical id.
func renderRecords(records []media.Record) string {
	if len(records) == 0 {
		return mutedStyle.Render("No results") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(pad("TYPE", 6)+" "+pad("YEAR", 4)+" "+pad("TITLE", titleWidth)+" ID") + "\n")
	for _, rec := range records {
		id, err := rec.CanonicalID()
		if err != nil {
			continue
		}
		year := rec.Year
		if year == "" {
			year = "----"
		}
		b.WriteString(pad(rec.Type.String(), 6))
		b.WriteString(" ")
		b.WriteString(mutedStyle.Render(pad(year, 4)))
		b.WriteString(" ")
		b.WriteString(pad(truncateTitle(rec.Title, titleWidth), titleWidth))
		b.WriteString(" ")
		b.WriteString(idStyle.Render(string(id)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderRecord draws a single record with its seasons or episodes.
func renderRecord(rec *media.Record) string {
	var b strings.Builder
	id, _ := rec.CanonicalID()
	fmt.Fprintf(&b, "%s %s\n", headerStyle.Render(rec.Title), mutedStyle.Render(rec.Year))
	fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("id:"), idStyle.Render(string(id)))
	if rec.IMDbID != "" {
		fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("imdb:"), rec.IMDbID)
	}
	if rec.Poster != "" {
		fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("poster:"), rec.Poster)
	}
	if rec.Overview != "" {
		b.WriteString(lipgloss.NewStyle().Width(80).Render(rec.Overview) + "\n")
	}

	if len(rec.Seasons) > 0 {
		b.WriteString(headerStyle.Render("Seasons") + "\n")
		for _, s := range rec.Seasons {
			fmt.Fprintf(&b, "  %3d  %s %s\n", s.Number, pad(truncateTitle(s.Title, titleWidth), titleWidth), mutedStyle.Render(s.ID))
		}
	}

	episodes := rec.Episodes
	if rec.SeasonData != nil {
		fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("Season %d: %s", rec.SeasonData.Number, rec.SeasonData.Title)))
		episodes = rec.SeasonData.Episodes
	}
	for _, ep := range episodes {
		fmt.Fprintf(&b, "  S%02dE%02d  %s %s\n", ep.Season, ep.Number, pad(truncateTitle(ep.Title, titleWidth), titleWidth), mutedStyle.Render(ep.AirDate))
	}
	return b.String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
