package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/vetbridge/internal/apperr"
	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/query"
)

const selectColumns = `id, path, title, description, categories, tags, org_type, org_name,
	location, verified, featured, rating, views, helpful_count, contact, checksum, updated_at`

// Upsert inserts or replaces a resource. A resource moved to a new path
// keeps its id; a different resource claiming an existing path replaces it.
func (db *DB) Upsert(r models.Resource) error {
	if r.ID == "" {
		return fmt.Errorf("catalog: upsert: %w: empty id", apperr.ErrInvalidInput)
	}
	cats, _ := json.Marshal(nonNil(r.Categories))
	tags, _ := json.Marshal(nonNil(r.Tags))
	var contact sql.NullString
	if r.Contact != nil && !r.Contact.IsZero() {
		b, _ := json.Marshal(r.Contact)
		contact = sql.NullString{String: string(b), Valid: true}
	}
	var location sql.NullString
	if r.Location != "" {
		location = sql.NullString{String: r.Location, Valid: true}
	}
	orgType := r.OrgType
	if orgType == "" {
		orgType = models.OrgUnknown
	}
	updated := r.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM resources WHERE path = ? AND id <> ?`, r.Path, r.ID); err != nil {
		return fmt.Errorf("catalog: clear path: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO resources (id, path, title, description, categories, tags, org_type, org_name,
			location, verified, featured, rating, views, helpful_count, contact, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path          = excluded.path,
			title         = excluded.title,
			description   = excluded.description,
			categories    = excluded.categories,
			tags          = excluded.tags,
			org_type      = excluded.org_type,
			org_name      = excluded.org_name,
			location      = excluded.location,
			verified      = excluded.verified,
			featured      = excluded.featured,
			rating        = excluded.rating,
			views         = excluded.views,
			helpful_count = excluded.helpful_count,
			contact       = excluded.contact,
			checksum      = excluded.checksum,
			updated_at    = excluded.updated_at
	`, r.ID, r.Path, r.Title, r.Description, string(cats), string(tags), string(orgType), r.OrgName,
		location, r.Verified, r.Featured, r.Rating, r.Views, r.HelpfulCount, contact, r.Checksum, updated.UTC())
	if err != nil {
		return fmt.Errorf("catalog: upsert resource: %w", err)
	}
	return tx.Commit()
}

// DeleteByPath removes the resource stored at path and returns its id.
// An unknown path is not an error; the returned id is empty.
func (db *DB) DeleteByPath(path string) (string, error) {
	var id string
	err := db.conn.QueryRow(`SELECT id FROM resources WHERE path = ?`, path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("catalog: lookup path: %w", err)
	}
	if _, err := db.conn.Exec(`DELETE FROM resources WHERE path = ?`, path); err != nil {
		return "", fmt.Errorf("catalog: delete resource: %w", err)
	}
	return id, nil
}

// AllChecksums returns path → checksum for every stored resource.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM resources`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Get returns the resource with the given id, or apperr.ErrNotFound.
func (db *DB) Get(ctx context.Context, id string) (*models.Resource, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM resources WHERE id = ?`, id)
	r, err := scanResource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog: resource %q: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get: %w", err)
	}
	return r, nil
}

// Find returns resources matching q.Where, most recently updated first.
func (db *DB) Find(ctx context.Context, q Query) ([]models.Resource, error) {
	where, args, err := compile(q.Where)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString(`SELECT ` + selectColumns + ` FROM resources WHERE `)
	sb.WriteString(where)
	sb.WriteString(` ORDER BY updated_at DESC, id ASC`)
	if q.Limit > 0 {
		sb.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, q.Limit, max(q.Offset, 0))
	}

	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: find: %w", err)
	}
	defer rows.Close()

	var out []models.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// Count returns the number of resources matching where.
func (db *DB) Count(ctx context.Context, where query.Predicate) (int, error) {
	clause, args, err := compile(where)
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM resources WHERE `+clause, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResource(s scanner) (*models.Resource, error) {
	var (
		r                  models.Resource
		cats, tags, orgTyp string
		location, contact  sql.NullString
	)
	err := s.Scan(&r.ID, &r.Path, &r.Title, &r.Description, &cats, &tags, &orgTyp, &r.OrgName,
		&location, &r.Verified, &r.Featured, &r.Rating, &r.Views, &r.HelpfulCount, &contact,
		&r.Checksum, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(cats), &r.Categories)
	_ = json.Unmarshal([]byte(tags), &r.Tags)
	r.Categories = nonNil(r.Categories)
	r.Tags = nonNil(r.Tags)
	r.OrgType = models.OrgType(orgTyp)
	r.Location = location.String
	if contact.Valid {
		var c models.Contact
		if json.Unmarshal([]byte(contact.String), &c) == nil && !c.IsZero() {
			r.Contact = &c
		}
	}
	return &r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
