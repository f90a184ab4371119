package catalog

import (
	"log/slog"

	"github.com/starford/vetbridge/internal/parser"
	"github.com/starford/vetbridge/internal/storage"
)

// SyncStats summarises a Sync pass.
type SyncStats struct {
	Indexed   int
	Unchanged int
	Removed   int
	Failed    int
}

// Sync walks the resource directory and brings the catalog up to date:
//   - new or changed documents are parsed and upserted
//   - documents removed from disk are deleted from the catalog
func Sync(db Store, store storage.Provider, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats
	metas, err := store.List("")
	if err != nil {
		return stats, err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if checksums[m.Path] == m.Checksum {
			stats.Unchanged++
			continue
		}
		if _, err := indexFile(db, store, m); err != nil {
			stats.Failed++
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		stats.Indexed++
		logger.Debug("sync: indexed", slog.String("path", m.Path))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if _, err := db.DeleteByPath(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
		logger.Debug("sync: removed stale", slog.String("path", p))
	}

	logger.Info("sync: done",
		slog.Int("indexed", stats.Indexed),
		slog.Int("unchanged", stats.Unchanged),
		slog.Int("removed", stats.Removed),
		slog.Int("failed", stats.Failed))
	return stats, nil
}

// indexFile reads, parses and upserts one document, returning its id.
// Documents without a modification date inherit the file's mtime.
func indexFile(db Store, store storage.Provider, m storage.Meta) (string, error) {
	data, err := store.Read(m.Path)
	if err != nil {
		return "", err
	}
	res, err := parser.Parse(m.Path, data)
	if err != nil {
		return "", err
	}
	r := res.Resource
	r.Checksum = storage.Checksum(data)
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = m.UpdatedAt
	}
	if err := db.Upsert(r); err != nil {
		return "", err
	}
	return r.ID, nil
}
