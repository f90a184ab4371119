package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/starford/vetbridge/internal/storage"
)

//go:embed starter/*.md
var starter embed.FS

// Seed writes the starter resource documents into store. Documents that
// already exist are left alone. It returns the number written.
func Seed(store storage.Writer, logger *slog.Logger) (int, error) {
	existing, err := store.List("")
	if err != nil {
		return 0, fmt.Errorf("catalog: seed: %w", err)
	}
	have := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		have[m.Path] = struct{}{}
	}

	entries, err := fs.ReadDir(starter, "starter")
	if err != nil {
		return 0, fmt.Errorf("catalog: seed: %w", err)
	}
	written := 0
	for _, e := range entries {
		if _, ok := have[e.Name()]; ok {
			logger.Debug("seed: exists, skipping", slog.String("path", e.Name()))
			continue
		}
		data, err := starter.ReadFile("starter/" + e.Name())
		if err != nil {
			return written, fmt.Errorf("catalog: seed: %w", err)
		}
		if err := store.Write(e.Name(), data); err != nil {
			return written, fmt.Errorf("catalog: seed %s: %w", e.Name(), err)
		}
		written++
	}
	logger.Info("seed: done", slog.Int("written", written), slog.Int("skipped", len(entries)-written))
	return written, nil
}
