package catalog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/vetbridge/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func catalogDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

func writeDoc(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const vetCenterDoc = "---\nid: vet-center\ntitle: Vet Center\norg_type: va\ntags: [trauma]\n---\nReadjustment counseling.\n"

func TestSync_IndexesAndRemoves(t *testing.T) {
	dir, store := catalogDir(t)
	db := testDB(t)
	writeDoc(t, dir, "vet-center.md", vetCenterDoc)
	writeDoc(t, dir, "peer/buddy.md", "# Buddy Check\nWeekly calls.\n")

	stats, err := Sync(db, store, discardLogger())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Indexed != 2 {
		t.Errorf("indexed = %d, want 2", stats.Indexed)
	}
	r, err := db.Get(context.Background(), "buddy")
	if err != nil {
		t.Fatalf("Get buddy: %v", err)
	}
	if r.Title != "Buddy Check" || r.UpdatedAt.IsZero() {
		t.Errorf("resource = %+v", r)
	}

	// Second pass is a no-op.
	stats, _ = Sync(db, store, discardLogger())
	if stats.Indexed != 0 || stats.Unchanged != 2 {
		t.Errorf("second pass = %+v", stats)
	}

	_ = os.Remove(filepath.Join(dir, "peer", "buddy.md"))
	stats, _ = Sync(db, store, discardLogger())
	if stats.Removed != 1 {
		t.Errorf("removed = %d, want 1", stats.Removed)
	}
	if _, err := db.Get(context.Background(), "buddy"); err == nil {
		t.Error("stale resource still present")
	}
}

func TestSync_ChangedChecksumReindexes(t *testing.T) {
	dir, store := catalogDir(t)
	db := testDB(t)
	writeDoc(t, dir, "vet-center.md", vetCenterDoc)
	_, _ = Sync(db, store, discardLogger())

	writeDoc(t, dir, "vet-center.md", "---\nid: vet-center\ntitle: Vet Center (Austin)\n---\n")
	stats, _ := Sync(db, store, discardLogger())
	if stats.Indexed != 1 {
		t.Fatalf("indexed = %d, want 1", stats.Indexed)
	}
	r, _ := db.Get(context.Background(), "vet-center")
	if r.Title != "Vet Center (Austin)" {
		t.Errorf("title = %q", r.Title)
	}
}
