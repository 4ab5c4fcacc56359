package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jonathan/resume-curator/internal/curation"
	"github.com/jonathan/resume-curator/internal/db"
	"github.com/jonathan/resume-curator/internal/fetch"
	"github.com/jonathan/resume-curator/internal/llm"
)

// textService is what the commands need from the text generator.
type textService interface {
	curation.TextService
	Close() error
}

// newTextService builds the Gemini-backed service from opts.
func newTextService(ctx context.Context) (textService, error) {
	apiKey := opts.ResolveAPIKey(apiKeyFlag)
	if apiKey == "" {
		return nil, errors.New("API key is required (set GEMINI_API_KEY environment variable, api_key in config, or use --api-key flag)")
	}

	cfg, err := llm.DefaultConfig().WithModels(opts.Models)
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(ctx, cfg, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return llm.NewTextService(client, cfg.Retry, logger.Named("llm")), nil
}

// openCache returns the configured curation cache, or nil when caching is off.
// The returned func releases any connection.
func openCache(ctx context.Context) (curation.Cache, func(), error) {
	maxAge, err := opts.MaxAge()
	if err != nil {
		return nil, nil, err
	}

	switch {
	case opts.DatabaseURL != "":
		database, err := db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		logger.Debug("using database curation cache")
		return database.CurationCache(maxAge), database.Close, nil
	case opts.CacheDir != "":
		logger.Debug("using file curation cache", zap.String("dir", opts.CacheDir))
		return curation.NewFileCache(opts.CacheDir, maxAge), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}

// loadJobContext reads the job description named by opts.
func loadJobContext(ctx context.Context) (string, error) {
	var loaderOpts []fetch.LoaderOption
	if opts.UseBrowser {
		loaderOpts = append(loaderOpts, fetch.WithRenderer(fetch.NewBrowser(logger.Named("browser"))))
	}
	loader := fetch.NewJobLoader(logger.Named("fetch"), loaderOpts...)

	text, err := loader.Load(ctx, opts.Job, opts.JobURL)
	if err != nil {
		return "", fmt.Errorf("failed to load job description: %w", err)
	}
	return text, nil
}

func jobSource() string {
	if opts.JobURL != "" {
		return opts.JobURL
	}
	return opts.Job
}

// writeText writes data to path, creating parent directories, or to w when
// path is empty.
func writeText(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
