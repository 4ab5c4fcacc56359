package curation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-curator/internal/document"
)

// cacheNamespace scopes curation cache IDs generated with uuid.NewSHA1.
var cacheNamespace = uuid.MustParse("6f3b0c1e-7a5d-4c3e-9a51-2d8f6b4e0c17")

// CacheKey identifies one curated snapshot. The job context and registry are
// folded in as digests so that changing either misses the cache instead of
// serving a result curated for a different role.
type CacheKey struct {
	DocumentID     string
	JobDigest      string
	RegistryDigest string
}

// NewCacheKey derives a key for curating documentID against jobContext.
func NewCacheKey(documentID, jobContext, registryFingerprint string) CacheKey {
	sum := sha256.Sum256([]byte(jobContext))
	return CacheKey{
		DocumentID:     documentID,
		JobDigest:      hex.EncodeToString(sum[:]),
		RegistryDigest: registryFingerprint,
	}
}

// ID is a deterministic UUID for the key, used as the storage name.
func (k CacheKey) ID() uuid.UUID {
	return uuid.NewSHA1(cacheNamespace, []byte(k.DocumentID+"\x00"+k.JobDigest+"\x00"+k.RegistryDigest))
}

// DocumentDigest returns a content-derived identity for doc, suitable as a
// CacheKey DocumentID when the caller has no better one.
func DocumentDigest(doc document.Value) (string, error) {
	data, err := document.EncodeJSON(doc)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}

// Cache persists curated documents. Load reports a miss with ok == false.
type Cache interface {
	Load(ctx context.Context, key CacheKey) (doc document.Value, ok bool, err error)
	Store(ctx context.Context, key CacheKey, doc document.Value) error
}

// Purger drops every cached snapshot of one document, whatever job or
// registry it was curated for.
type Purger interface {
	Purge(ctx context.Context, documentID string) (int64, error)
}

// FileCache stores one JSON snapshot per key in Dir. Entries older than MaxAge
// (when positive) are treated as misses.
type FileCache struct {
	Dir    string
	MaxAge time.Duration

	now func() time.Time
}

// NewFileCache creates a cache rooted at dir.
func NewFileCache(dir string, maxAge time.Duration) *FileCache {
	return &FileCache{Dir: dir, MaxAge: maxAge, now: time.Now}
}

// Entries are named <document prefix>-<key id>.json so Purge can find every
// snapshot of a document.
func (c *FileCache) path(key CacheKey) string {
	return filepath.Join(c.Dir, documentPrefix(key.DocumentID)+"-"+key.ID().String()+".json")
}

func documentPrefix(documentID string) string {
	sum := sha256.Sum256([]byte(documentID))
	return hex.EncodeToString(sum[:8])
}

// Load implements Cache.
func (c *FileCache) Load(_ context.Context, key CacheKey) (document.Value, bool, error) {
	path := c.path(key)

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &CacheError{Message: "failed to stat " + path, Cause: err}
	}
	if c.MaxAge > 0 && c.clock().Sub(info.ModTime()) > c.MaxAge {
		return nil, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, &CacheError{Message: "failed to read " + path, Cause: err}
	}
	doc, err := document.Decode(data)
	if err != nil {
		return nil, false, &CacheError{Message: "corrupt cache entry " + path, Cause: err}
	}
	return doc, true, nil
}

// Store implements Cache. The entry is written to a temporary file and renamed
// into place so readers never observe a partial snapshot.
func (c *FileCache) Store(_ context.Context, key CacheKey, doc document.Value) error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return &CacheError{Message: "failed to create cache directory", Cause: err}
	}

	data, err := document.EncodeJSON(doc)
	if err != nil {
		return &CacheError{Message: "failed to encode document", Cause: err}
	}

	tmp, err := os.CreateTemp(c.Dir, ".curation-*.tmp")
	if err != nil {
		return &CacheError{Message: "failed to create temp file", Cause: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &CacheError{Message: "failed to write cache entry", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &CacheError{Message: "failed to close cache entry", Cause: err}
	}
	if err := os.Rename(tmpName, c.path(key)); err != nil {
		return &CacheError{Message: fmt.Sprintf("failed to move cache entry into %s", c.Dir), Cause: err}
	}
	return nil
}

// Purge implements Purger.
func (c *FileCache) Purge(_ context.Context, documentID string) (int64, error) {
	entries, err := os.ReadDir(c.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, &CacheError{Message: "failed to list " + c.Dir, Cause: err}
	}

	prefix := documentPrefix(documentID) + "-"
	var removed int64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || filepath.Ext(name) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(c.Dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, &CacheError{Message: "failed to remove " + name, Cause: err}
		}
		removed++
	}
	return removed, nil
}

func (c *FileCache) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}
