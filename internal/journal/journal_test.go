package journal

import (
	"path/filepath"
	"testing"

	"github.com/citysketch/citysketch/internal/grid"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndEntries(t *testing.T) {
	j := openTestJournal(t)

	if err := j.Record(EditAdd, grid.Cell{X: 3, Y: 3}, 16); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := j.Record(EditRemove, grid.Cell{X: 3, Y: 3}, 0); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := j.Entries(10)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	// Newest first.
	if entries[0].Kind != EditRemove {
		t.Errorf("entries[0].Kind = %v, want remove", entries[0].Kind)
	}
	if entries[1].Kind != EditAdd || entries[1].TileID != 16 {
		t.Errorf("entries[1] = %+v", entries[1])
	}
	if entries[1].Cell != (grid.Cell{X: 3, Y: 3}) {
		t.Errorf("entries[1].Cell = %v", entries[1].Cell)
	}
}

func TestEntriesLimit(t *testing.T) {
	j := openTestJournal(t)

	for i := 0; i < 5; i++ {
		if err := j.Record(EditAdd, grid.Cell{X: i + 1, Y: 1}, 16); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries, err := j.Entries(3)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("entries = %d, want 3", len(entries))
	}
	if entries[0].Cell.X != 5 {
		t.Errorf("newest entry cell = %v", entries[0].Cell)
	}
}

func TestEmptyJournal(t *testing.T) {
	j := openTestJournal(t)

	entries, err := j.Entries(10)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want none", entries)
	}
}
