package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entries := []Entry{
		{GamePK: 745123, AtBatIndex: 3, VideoID: "alex-rivera-rbi-single", Score: 0.55, Category: "none", Strategy: "description"},
		{GamePK: 745123, AtBatIndex: 7, VideoID: "smith-sac-fly", Score: 0.81, Category: "sac_fly", Strategy: "description"},
		{GamePK: 745124, AtBatIndex: 1, VideoID: "garcia-force-out", Score: 0.31, Category: "force_out_rbi", Strategy: "relaxed"},
	}
	for _, entry := range entries {
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent count = %d, want 2", len(recent))
	}
	if recent[0].VideoID != "garcia-force-out" {
		t.Errorf("newest entry = %q, want last recorded", recent[0].VideoID)
	}
	if recent[0].MatchedAt.IsZero() {
		t.Error("matched_at not round-tripped")
	}
}

func TestGameEntries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := Entry{GamePK: 1, AtBatIndex: i, VideoID: "clip", Strategy: "description", MatchedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := store.Record(ctx, Entry{GamePK: 2, VideoID: "other", Strategy: "category"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := store.GameEntries(ctx, 1)
	if err != nil {
		t.Fatalf("GameEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("game entries = %d, want 3", len(entries))
	}
	for i, entry := range entries {
		if entry.AtBatIndex != i {
			t.Errorf("entry %d out of order: at_bat_index = %d", i, entry.AtBatIndex)
		}
	}
}
