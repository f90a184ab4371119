// Package testutil provides shared test helpers for catalogs and resource
// directories.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/vetbridge/internal/catalog"
	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/storage"
)

// TestDB creates a temporary catalog database that is automatically cleaned up.
func TestDB(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "vetbridge-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeededDB returns a temporary catalog holding resources.
func SeededDB(t *testing.T, resources ...models.Resource) *catalog.DB {
	t.Helper()
	db := TestDB(t)
	for _, r := range resources {
		if r.Path == "" {
			r.Path = r.ID + storage.DocExt
		}
		if err := db.Upsert(r); err != nil {
			t.Fatalf("seed %s: %v", r.ID, err)
		}
	}
	return db
}

// TestCatalogDir creates a temporary resource directory with a storage.FS.
func TestCatalogDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
