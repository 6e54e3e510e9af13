// Package formatter renders gateway results for terminal output: track
// lists, playlist summaries, and the mutation journal. CSV output is kept
// plain so it can be piped into other tools.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/soundctl/spotmcp/internal/journal"
	"github.com/soundctl/spotmcp/internal/spotify"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	dim   lipgloss.Style
}

func NewPalette(t, s, e, d string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		dim:   NewStyle(d),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

// TrackList renders tracks as a numbered list, one track per line.
func TrackList(tracks []spotify.TrackRef) string {
	if len(tracks) == 0 {
		return styles.dim.Render("No tracks.")
	}

	var b strings.Builder
	for i, track := range tracks {
		line := fmt.Sprintf("%2d. %s - %s", i+1, track.Artist, track.Name)
		if track.Album != "" {
			line += styles.dim.Render(fmt.Sprintf(" (%s)", track.Album))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// PlaylistSummary renders the result of a playlist mutation.
func PlaylistSummary(ref spotify.PlaylistRef) string {
	var b strings.Builder
	b.WriteString(styles.title.Render(ref.Name))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("ID: %s\n", ref.ID))
	b.WriteString(styles.ok.Render(fmt.Sprintf("Tracks added: %d", ref.TracksAdded)))
	return b.String()
}

// JournalList renders mutation journal entries, newest first, flagging
// partially-applied mutations.
func JournalList(entries []journal.Entry) string {
	if len(entries) == 0 {
		return styles.dim.Render("No recorded mutations.")
	}

	var b strings.Builder
	for _, entry := range entries {
		name := entry.PlaylistName
		if name == "" {
			name = entry.PlaylistID
		}

		status := styles.ok.Render(fmt.Sprintf("%d/%d", entry.Committed, entry.Requested))
		if entry.Committed < entry.Requested {
			status = styles.err.Render(fmt.Sprintf("%d/%d (partial)", entry.Committed, entry.Requested))
		}

		b.WriteString(fmt.Sprintf("%s  %s  %s\n",
			styles.dim.Render(entry.CreatedAt.Local().Format(time.DateTime)), name, status))
	}
	return strings.TrimRight(b.String(), "\n")
}

// TracksCSV converts tracks to CSV with columns: ID, URI, Name, Artist, Album.
func TracksCSV(tracks []spotify.TrackRef) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "URI", "Name", "Artist", "Album"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{track.ID, track.URI, track.Name, track.Artist, track.Album}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// JournalCSV converts journal entries to CSV for offline inspection.
func JournalCSV(entries []journal.Entry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "PlaylistID", "PlaylistName", "Requested", "Committed", "CreatedAt"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range entries {
		record := []string{
			entry.ID,
			entry.PlaylistID,
			entry.PlaylistName,
			strconv.Itoa(entry.Requested),
			strconv.Itoa(entry.Committed),
			entry.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}
