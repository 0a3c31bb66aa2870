package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quizzz-client/internal/domain"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	store := NewSessionStore(dir)
	ctx := context.Background()

	if _, err := store.Load(ctx, "draft:3"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := store.Save(ctx, "draft:3", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "draft:3", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err := store.Load(ctx, "draft:3")
	if err != nil || string(data) != `{"a":2}` {
		t.Fatalf("unexpected load %q %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "draft_3.json")); err != nil {
		t.Fatalf("expected session file: %v", err)
	}

	if err := store.Delete(ctx, "draft:3"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "draft:3"); err != nil {
		t.Fatalf("deleting twice should be a no-op, got %v", err)
	}
	if _, err := store.Load(ctx, "draft:3"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestSessionStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewSessionStore(dir)
	for i := 0; i < 3; i++ {
		if err := store.Save(context.Background(), "play:7", []byte("{}")); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "play_7.json" {
		t.Fatalf("unexpected dir contents: %v", entries)
	}
}
