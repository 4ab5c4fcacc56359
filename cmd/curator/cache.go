package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-curator/internal/curation"
	"github.com/jonathan/resume-curator/internal/document"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the curation cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every cached curation of a document",
	Long: `Removes all cached snapshots of one document, across every job description
and permission file it was curated for. The document is named by --doc-id, or
by --document, whose content digest is the default cache identity.`,
	RunE: runCachePurge,
}

func init() {
	cachePurgeCmd.Flags().StringVar(&curateDocID, "doc-id", "", "Cache identity of the document")
	cachePurgeCmd.Flags().StringVarP(&opts.Document, "document", "d", "", "Document whose content digest identifies it")
	cachePurgeCmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "Directory of the file curation cache")
	cachePurgeCmd.Flags().StringVar(&opts.DatabaseURL, "database-url", "", "PostgreSQL URL of the shared curation cache")

	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	docID, n, err := purgeCache(cmd.Context())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cached snapshot(s) of %s\n", n, docID)
	return err
}

// purgeCache removes the cached snapshots of the document named by the flags
// and reports its identity and how many were removed.
func purgeCache(ctx context.Context) (string, int64, error) {
	if opts.CacheDir == "" && opts.DatabaseURL == "" {
		return "", 0, errors.New("--cache-dir or --database-url is required")
	}

	docID := curateDocID
	if docID == "" {
		if opts.Document == "" {
			return "", 0, errors.New("--doc-id or --document is required")
		}
		doc, err := document.LoadFile(opts.Document)
		if err != nil {
			return "", 0, fmt.Errorf("failed to load document: %w", err)
		}
		if docID, err = curation.DocumentDigest(doc); err != nil {
			return "", 0, err
		}
	}

	cache, release, err := openCache(ctx)
	if err != nil {
		return "", 0, err
	}
	defer release()

	purger, ok := cache.(curation.Purger)
	if !ok {
		return "", 0, errors.New("configured cache does not support purging")
	}
	n, err := purger.Purge(ctx, docID)
	if err != nil {
		return "", 0, err
	}
	logger.Info("purged curation cache", zap.String("document_id", docID), zap.Int64("removed", n))
	return docID, n, nil
}
