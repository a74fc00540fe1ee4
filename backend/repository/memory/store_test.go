package memory

import (
	"context"
	"testing"
	"time"

	"strix/backend/domain"
	"strix/backend/repository/events"
)

func TestLoadStateNormalizesHistoryEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(events.NewBus())
	store.LoadState(domain.ShellState{
		Settings: domain.Settings{"theme": "dark"},
		History: []domain.HistoryEntry{
			{URL: "https://example.com", Title: "Example"},
		},
		LastVPNLocation: "de",
	})

	snapshot := store.Snapshot()
	if len(snapshot.History) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(snapshot.History))
	}
	entry := snapshot.History[0]
	if entry.ID == "" {
		t.Fatal("loaded entry must get an ID")
	}
	if entry.VisitCount < 1 {
		t.Fatalf("visit count must be at least 1, got %d", entry.VisitCount)
	}
	if entry.LastVisitedAt.IsZero() {
		t.Fatal("zero visit time must be filled")
	}
	if snapshot.Settings["theme"] != "dark" || snapshot.LastVPNLocation != "de" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestSnapshotOrdersHistoryByRecency(t *testing.T) {
	t.Parallel()

	store := NewStore(events.NewBus())
	repo := NewHistoryRepo(store)
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, "https://old.example.com", "Old"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := repo.Upsert(ctx, "https://new.example.com", "New"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	snapshot := store.Snapshot()
	if len(snapshot.History) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snapshot.History))
	}
	if snapshot.History[0].URL != "https://new.example.com" {
		t.Fatalf("expected newest first, got %+v", snapshot.History)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	t.Parallel()

	store := NewStore(events.NewBus())
	repo := NewSettingsRepo(store)
	ctx := context.Background()

	if err := repo.SetKey(ctx, "theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}

	snapshot := store.Snapshot()
	snapshot.Settings["theme"] = "light"

	if current := store.Snapshot(); current.Settings["theme"] != "dark" {
		t.Fatalf("mutating a snapshot must not touch the store: %+v", current.Settings)
	}
}
