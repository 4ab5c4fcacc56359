package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-curator/internal/curation"
	"github.com/jonathan/resume-curator/internal/document"
	"github.com/jonathan/resume-curator/internal/observability"
	"github.com/jonathan/resume-curator/internal/permissions"
)

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Curate a document's permitted fields for a job",
	Long: `Applies the permission file to a document: for each listed field, in file
order, items are filtered, reordered, and rewritten by the text service as
permitted. Fields not listed are left untouched. Any rejected response aborts
the whole document.`,
	RunE: runCurate,
}

var (
	curateDocID  string
	curateOutput string
)

func addCurateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&opts.Document, "document", "d", "", "Path to the document to curate (JSON or YAML)")
	cmd.Flags().StringVarP(&opts.Permissions, "permissions", "p", "", "Path to the permission file (YAML or JSON)")
	cmd.Flags().StringVar(&curateDocID, "doc-id", "", "Cache identity for the document (default: content digest)")
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "Directory for the file curation cache")
	cmd.Flags().StringVar(&opts.DatabaseURL, "database-url", "", "PostgreSQL URL for the shared curation cache")
	cmd.Flags().StringVar(&opts.CacheMaxAge, "cache-max-age", "", "Ignore cache entries older than this duration (e.g. 72h)")
	cmd.Flags().IntVar(&opts.MaxAttempts, "max-attempts", 0, "Whole-document attempts when a response is rejected")
}

func addJobFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&opts.Job, "job", "j", "", "Path to a job description text file")
	cmd.Flags().StringVar(&opts.JobURL, "job-url", "", "URL of a job posting to fetch")
	cmd.Flags().BoolVar(&opts.UseBrowser, "use-browser", false, "Render the job posting in headless Chrome when the page is script-driven")
}

func init() {
	addCurateFlags(curateCmd)
	addJobFlags(curateCmd)
	curateCmd.Flags().StringVarP(&curateOutput, "out", "o", "", "Output path; .yaml/.yml writes YAML, anything else JSON (default: stdout)")

	rootCmd.AddCommand(curateCmd)
}

func runCurate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	jobContext, err := loadJobContext(ctx)
	if err != nil {
		return err
	}
	svc, err := newTextService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	printer := verbosePrinter(cmd.ErrOrStderr())
	if printer != nil {
		printer.PrintJobContext(jobSource(), jobContext)
	}

	res, err := curateDocument(ctx, svc, jobContext)
	if err != nil {
		return err
	}
	if printer != nil {
		printer.PrintCurationSummary(res)
	}
	return writeDocument(cmd.OutOrStdout(), curateOutput, res.Document)
}

// curateDocument loads the document and registry named by opts and runs the
// pipeline against jobContext.
func curateDocument(ctx context.Context, svc curation.TextService, jobContext string) (*curation.Result, error) {
	if opts.Document == "" || opts.Permissions == "" {
		return nil, fmt.Errorf("--document and --permissions are required")
	}

	registry, err := permissions.LoadFile(opts.Permissions)
	if err != nil {
		return nil, err
	}
	doc, err := document.LoadFile(opts.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	cache, release, err := openCache(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	pipelineOpts := []curation.Option{
		curation.WithLogger(logger.Named("curation")),
		curation.WithMaxAttempts(opts.MaxAttempts),
	}
	docID := curateDocID
	if cache != nil {
		pipelineOpts = append(pipelineOpts, curation.WithCache(cache))
		if docID == "" {
			if docID, err = curation.DocumentDigest(doc); err != nil {
				return nil, err
			}
		}
	}

	pipeline, err := curation.NewPipeline(registry, svc, pipelineOpts...)
	if err != nil {
		return nil, err
	}

	logger.Info("curating document",
		zap.String("document", opts.Document),
		zap.Int("fields", registry.Len()),
		zap.Bool("cache", cache != nil))

	res, err := pipeline.Curate(ctx, docID, doc, jobContext)
	if err != nil {
		return nil, fmt.Errorf("curation of %s failed: %w", opts.Document, err)
	}
	return res, nil
}

func writeDocument(w io.Writer, path string, doc document.Value) error {
	if path == "" {
		data, err := document.EncodeJSONIndent(doc)
		if err != nil {
			return err
		}
		return writeText(w, "", data)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := document.WriteFile(path, doc); err != nil {
		return fmt.Errorf("failed to write curated document: %w", err)
	}
	logger.Info("wrote curated document", zap.String("path", path))
	return nil
}

func verbosePrinter(w io.Writer) *observability.Printer {
	if !opts.Verbose {
		return nil
	}
	return observability.NewPrinter(w)
}
