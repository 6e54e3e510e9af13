package journal

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/soundctl/spotmcp/internal/shared"
)

func TestJournal(t *testing.T) {
	t.Run("Record And Recent", func(t *testing.T) {
		j, err := Open(":memory:")
		if err != nil {
			t.Fatalf("failed to open journal: %v", err)
		}
		defer j.Close()

		entries := []Entry{
			{PlaylistID: "p1", PlaylistName: "First", Requested: 250, Committed: 250, CreatedAt: time.Now().Add(-2 * time.Minute)},
			{PlaylistID: "p2", PlaylistName: "Partial", Requested: 250, Committed: 100, CreatedAt: time.Now().Add(-time.Minute)},
		}
		for _, e := range entries {
			if err := j.Record(e); err != nil {
				t.Fatalf("failed to record entry: %v", err)
			}
		}

		got, err := j.Recent(10)
		if err != nil {
			t.Fatalf("failed to read journal: %v", err)
		}

		if len(got) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(got))
		}

		// Newest first.
		if got[0].PlaylistID != "p2" || got[1].PlaylistID != "p1" {
			t.Errorf("unexpected order: %s, %s", got[0].PlaylistID, got[1].PlaylistID)
		}

		if got[0].Committed != 100 || got[0].Requested != 250 {
			t.Errorf("partial mutation accounting lost: %+v", got[0])
		}

		if got[0].ID == "" {
			t.Error("entries should receive generated IDs")
		}
	})

	t.Run("Requires Playlist ID", func(t *testing.T) {
		j, err := Open(":memory:")
		if err != nil {
			t.Fatalf("failed to open journal: %v", err)
		}
		defer j.Close()

		if err := j.Record(Entry{Requested: 1}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Recent Limit Default", func(t *testing.T) {
		j, err := Open(":memory:")
		if err != nil {
			t.Fatalf("failed to open journal: %v", err)
		}
		defer j.Close()

		if err := j.Record(Entry{PlaylistID: "p1"}); err != nil {
			t.Fatalf("failed to record: %v", err)
		}

		got, err := j.Recent(0)
		if err != nil || len(got) != 1 {
			t.Errorf("expected one entry with default limit, got %v, %v", got, err)
		}
	})

	t.Run("Creates Parent Directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deep", "nested", "journal.db")

		j, err := Open(path)
		if err != nil {
			t.Fatalf("failed to open journal at nested path: %v", err)
		}
		defer j.Close()

		if err := j.Record(Entry{PlaylistID: "p1"}); err != nil {
			t.Errorf("failed to record on fresh database: %v", err)
		}
	})
}
