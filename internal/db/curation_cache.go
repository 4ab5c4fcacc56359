package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-curator/internal/curation"
	"github.com/jonathan/resume-curator/internal/document"
)

// CurationCache stores curated documents in the curation_cache table. It
// satisfies curation.Cache and curation.Purger.
type CurationCache struct {
	db     *DB
	maxAge time.Duration
	now    func() time.Time
}

var (
	_ curation.Cache  = (*CurationCache)(nil)
	_ curation.Purger = (*CurationCache)(nil)
)

// CurationCache returns a cache backed by db. Rows older than maxAge, when
// positive, are treated as misses.
func (db *DB) CurationCache(maxAge time.Duration) *CurationCache {
	return &CurationCache{db: db, maxAge: maxAge, now: time.Now}
}

// Load implements curation.Cache.
func (c *CurationCache) Load(ctx context.Context, key curation.CacheKey) (document.Value, bool, error) {
	var content []byte
	var updatedAt time.Time
	err := c.db.pool.QueryRow(ctx,
		`SELECT content, updated_at FROM curation_cache WHERE id = $1`,
		key.ID(),
	).Scan(&content, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, &curation.CacheError{Message: "failed to read curation cache", Cause: err}
	}

	if !fresh(updatedAt, c.now(), c.maxAge) {
		return nil, false, nil
	}

	doc, err := document.Decode(content)
	if err != nil {
		return nil, false, &curation.CacheError{Message: "corrupt curation cache row " + key.ID().String(), Cause: err}
	}
	return doc, true, nil
}

// Store implements curation.Cache.
func (c *CurationCache) Store(ctx context.Context, key curation.CacheKey, doc document.Value) error {
	content, err := document.EncodeJSON(doc)
	if err != nil {
		return &curation.CacheError{Message: "failed to encode document", Cause: err}
	}

	_, err = c.db.pool.Exec(ctx,
		`INSERT INTO curation_cache (id, document_id, job_digest, registry_digest, content)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET content = $5, updated_at = NOW()`,
		key.ID(), key.DocumentID, key.JobDigest, key.RegistryDigest, content,
	)
	if err != nil {
		return &curation.CacheError{Message: "failed to write curation cache", Cause: err}
	}
	return nil
}

// Purge deletes every cached snapshot of documentID and returns how many rows
// were removed.
func (c *CurationCache) Purge(ctx context.Context, documentID string) (int64, error) {
	tag, err := c.db.pool.Exec(ctx,
		`DELETE FROM curation_cache WHERE document_id = $1`,
		documentID,
	)
	if err != nil {
		return 0, &curation.CacheError{Message: "failed to purge curation cache", Cause: err}
	}
	return tag.RowsAffected(), nil
}

func fresh(updatedAt, now time.Time, maxAge time.Duration) bool {
	return maxAge <= 0 || now.Sub(updatedAt) <= maxAge
}
