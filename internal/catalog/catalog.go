package catalog

import (
	"context"

	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/query"
)

// Query is one catalog read. A nil Where matches everything. Results are
// ordered most recently updated first.
type Query struct {
	Where  query.Predicate
	Limit  int
	Offset int
}

// Finder is the read interface the search engine depends on.
type Finder interface {
	Find(ctx context.Context, q Query) ([]models.Resource, error)
	Count(ctx context.Context, where query.Predicate) (int, error)
	Get(ctx context.Context, id string) (*models.Resource, error)
}

// Store is the write side used by Sync and Watch.
type Store interface {
	Upsert(r models.Resource) error
	DeleteByPath(path string) (string, error)
	AllChecksums() (map[string]string, error)
}

var (
	_ Finder = (*DB)(nil)
	_ Store  = (*DB)(nil)
)
