package curation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-curator/internal/document"
	"github.com/jonathan/resume-curator/internal/permissions"
)

// FieldReport describes what the pipeline did to one registered field.
type FieldReport struct {
	Path        string
	Operations  permissions.OpSet
	Applied     []permissions.Operation
	ItemsBefore int // -1 when the field is not a sequence
	ItemsAfter  int // -1 when the field is not a sequence
	Rewrites    int
}

// Result is the outcome of curating one document.
type Result struct {
	Document  document.Value
	FromCache bool
	Attempts  int
	Fields    []FieldReport
}

// Pipeline applies a permission registry to documents.
type Pipeline struct {
	registry    *permissions.Registry
	service     TextService
	cache       Cache
	logger      *zap.Logger
	maxAttempts int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache enables reading and writing curated snapshots.
func WithCache(c Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMaxAttempts allows the whole document to be re-curated from the original
// when a response fails to parse or violates a permission. Values below 1 mean 1.
func WithMaxAttempts(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// NewPipeline creates a pipeline for registry backed by svc.
func NewPipeline(registry *permissions.Registry, svc TextService, opts ...Option) (*Pipeline, error) {
	if registry == nil {
		return nil, errors.New("curation pipeline requires a permission registry")
	}
	if svc == nil {
		return nil, errors.New("curation pipeline requires a text service")
	}
	p := &Pipeline{
		registry:    registry,
		service:     svc,
		logger:      zap.NewNop(),
		maxAttempts: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Curate returns a curated copy of doc; doc itself is never modified. Fields
// without a registry entry pass through unchanged. The first error on any
// field aborts the document: nothing is partially applied.
//
// documentID, when non-empty and a cache is configured, enables the cache.
func (p *Pipeline) Curate(ctx context.Context, documentID string, doc document.Value, jobContext string) (*Result, error) {
	var key CacheKey
	useCache := p.cache != nil && documentID != ""
	if useCache {
		key = NewCacheKey(documentID, jobContext, p.registry.Fingerprint())
		cached, ok, err := p.cache.Load(ctx, key)
		switch {
		case err != nil:
			p.logger.Warn("curation cache read failed, curating from scratch",
				zap.String("document", documentID), zap.Error(err))
		case ok:
			p.logger.Info("curation cache hit",
				zap.String("document", documentID), zap.String("key", key.ID().String()))
			return &Result{Document: cached, FromCache: true}, nil
		}
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		working := doc.Clone()
		reports, err := p.apply(ctx, working, jobContext)
		if err == nil {
			if useCache {
				if err := p.cache.Store(ctx, key, working); err != nil {
					p.logger.Warn("curation cache write failed",
						zap.String("document", documentID), zap.Error(err))
				}
			}
			return &Result{Document: working, Attempts: attempt, Fields: reports}, nil
		}

		lastErr = err
		if !retryable(err) || attempt == p.maxAttempts {
			break
		}
		p.logger.Warn("curation response rejected, retrying document",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.maxAttempts),
			zap.Error(err))
	}
	return nil, lastErr
}

// Run curates doc without consulting the cache.
func (p *Pipeline) Run(ctx context.Context, doc document.Value, jobContext string) (document.Value, error) {
	res, err := p.Curate(ctx, "", doc, jobContext)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

func (p *Pipeline) apply(ctx context.Context, doc document.Value, jobContext string) ([]FieldReport, error) {
	entries := p.registry.Entries()
	reports := make([]FieldReport, 0, len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		report := FieldReport{
			Path:        entry.Path,
			Operations:  entry.Operations,
			ItemsBefore: itemCount(doc, entry.Path),
		}
		if len(entry.Ignored) > 0 {
			p.logger.Debug("ignoring unknown operations",
				zap.String("field", entry.Path), zap.Strings("operations", entry.Ignored))
		}

		if entry.Operations.Has(permissions.Remove) {
			applied, err := Filter(ctx, p.service, doc, entry.Path, jobContext)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", entry.Path, err)
			}
			if applied {
				report.Applied = append(report.Applied, permissions.Remove)
			}
		}
		if entry.Operations.Has(permissions.Reorder) {
			applied, err := Reorder(ctx, p.service, doc, entry.Path, jobContext, entry.CanRemove())
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", entry.Path, err)
			}
			if applied {
				report.Applied = append(report.Applied, permissions.Reorder)
			}
		}
		if entry.Operations.Has(permissions.Rewrite) {
			n, err := Rewrite(ctx, p.service, doc, entry.Path, jobContext)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", entry.Path, err)
			}
			if n > 0 {
				report.Applied = append(report.Applied, permissions.Rewrite)
				report.Rewrites = n
			}
		}

		report.ItemsAfter = itemCount(doc, entry.Path)
		p.logger.Debug("curated field",
			zap.String("field", entry.Path),
			zap.String("operations", entry.Operations.String()),
			zap.Int("items_before", report.ItemsBefore),
			zap.Int("items_after", report.ItemsAfter),
			zap.Int("rewrites", report.Rewrites))
		reports = append(reports, report)
	}
	return reports, nil
}

func itemCount(doc document.Value, path string) int {
	if seq, ok := document.Get(doc, path).(*document.Sequence); ok {
		return seq.Len()
	}
	return -1
}
