package persist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"strix/backend/domain"
)

func TestLoadMissingFileReturnsEmptyState(t *testing.T) {
	t.Parallel()

	state, err := Load(filepath.Join(t.TempDir(), "nope", "browser-settings.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.SchemaVersion != SchemaVersion {
		t.Fatalf("expected schema %d, got %d", SchemaVersion, state.SchemaVersion)
	}
	if len(state.Settings) != 0 || len(state.History) != 0 {
		t.Fatalf("expected empty state, got %+v", state)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "browser-settings.json")
	state := domain.ShellState{
		Settings: domain.Settings{
			"theme":       "dark",
			"customThing": "kept-verbatim",
		},
		History: []domain.HistoryEntry{
			{ID: "1", URL: "https://example.com", Title: "Example", VisitCount: 3, LastVisitedAt: time.Now()},
		},
		LastVPNLocation: "de",
	}

	if err := Save(path, state); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Settings.String("theme", "") != "dark" {
		t.Fatalf("theme lost: %+v", loaded.Settings)
	}
	if loaded.Settings.String("customThing", "") != "kept-verbatim" {
		t.Fatalf("unknown key lost: %+v", loaded.Settings)
	}
	if len(loaded.History) != 1 || loaded.History[0].URL != "https://example.com" {
		t.Fatalf("history lost: %+v", loaded.History)
	}
	if loaded.LastVPNLocation != "de" {
		t.Fatalf("last vpn location lost: %q", loaded.LastVPNLocation)
	}
}

func TestLoadRejectsCorruptJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "browser-settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for corrupt snapshot")
	}
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "browser-settings.json")
	if err := os.WriteFile(path, []byte(`{"schemaVersion": 99}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrSchemaTooNew) {
		t.Fatalf("expected ErrSchemaTooNew, got %v", err)
	}
}

func TestBackupCorruptRenames(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "browser-settings.json")
	if err := os.WriteFile(path, []byte("broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := BackupCorrupt(path); err != nil {
		t.Fatalf("backup: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected original to be renamed")
	}
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("expected .bak to exist: %v", err)
	}
}

type fakeSnapshottable struct {
	state domain.ShellState
}

func (f fakeSnapshottable) Snapshot() domain.ShellState { return f.state }

func TestSnapshotterDebouncedSave(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "browser-settings.json")
	snapshotter := NewSnapshotter(path, fakeSnapshottable{
		state: domain.ShellState{Settings: domain.Settings{"theme": "system"}},
	})
	snapshotter.SetDebounce(10 * time.Millisecond)

	snapshotter.Schedule()
	snapshotter.Schedule()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("snapshot was not written")
		}
		time.Sleep(5 * time.Millisecond)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Settings.String("theme", "") != "system" {
		t.Fatalf("unexpected snapshot contents: %+v", loaded.Settings)
	}
}
