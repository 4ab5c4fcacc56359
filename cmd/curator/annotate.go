package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-curator/internal/annotate"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Highlight evidence phrases in a body of text",
	Long: `Converts a plain text body to HTML paragraphs and wraps phrases that support
the job's requirements in <span> markers carrying a tier and evidence note.
Triples come from --triples, or from the text service when --job or --job-url
is given instead. Malformed triples produce plain paragraphs and a warning.`,
	RunE: runAnnotate,
}

var (
	annotateBodyFile    string
	annotateTriplesFile string
	annotateOutput      string
)

func addAnnotateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&annotateBodyFile, "body", "b", "", "Path to the plain text body to annotate")
	cmd.Flags().StringVarP(&annotateTriplesFile, "triples", "t", "", "Path to a JSON array of {text, match, tier} triples")
}

func init() {
	addAnnotateFlags(annotateCmd)
	addJobFlags(annotateCmd)
	annotateCmd.Flags().StringVarP(&annotateOutput, "out", "o", "", "Path to output HTML file (default: stdout)")

	if err := annotateCmd.MarkFlagRequired("body"); err != nil {
		panic(fmt.Sprintf("failed to mark body flag as required: %v", err))
	}

	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var (
		svc        textService
		jobContext string
	)
	if annotateTriplesFile == "" {
		var err error
		if jobContext, err = loadJobContext(ctx); err != nil {
			return fmt.Errorf("--triples or a job description is required: %w", err)
		}
		if svc, err = newTextService(ctx); err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()
	}

	html, stats, err := annotateBody(ctx, svc, jobContext)
	if err != nil {
		return err
	}
	if printer := verbosePrinter(cmd.ErrOrStderr()); printer != nil {
		printer.PrintAnnotationSummary(stats)
	}
	return writeText(cmd.OutOrStdout(), annotateOutput, []byte(html))
}

// annotateBody annotates the body file with triples from the triples file, or
// from svc when no file is set. Malformed triples degrade to plain paragraphs.
func annotateBody(ctx context.Context, svc annotate.Reasoner, jobContext string) (string, annotate.Stats, error) {
	data, err := os.ReadFile(annotateBodyFile)
	if err != nil {
		return "", annotate.Stats{}, fmt.Errorf("failed to read body file: %w", err)
	}
	body := string(data)

	var triples []annotate.Triple
	if annotateTriplesFile != "" {
		raw, err := os.ReadFile(annotateTriplesFile)
		if err != nil {
			return "", annotate.Stats{}, fmt.Errorf("failed to read triples file: %w", err)
		}
		triples, err = annotate.ParseTriples(raw)
		if err != nil {
			return plainParagraphs(body, err)
		}
	} else {
		if svc == nil {
			return "", annotate.Stats{}, errors.New("no triples file and no text service")
		}
		triples, err = annotate.RequestTriples(ctx, svc, jobContext, body)
		if err != nil {
			var malformed *annotate.MalformedInputError
			if errors.As(err, &malformed) {
				return plainParagraphs(body, err)
			}
			return "", annotate.Stats{}, err
		}
	}

	rendered, err := annotate.Paragraphize(body)
	if err != nil {
		return "", annotate.Stats{}, fmt.Errorf("failed to render body: %w", err)
	}
	html, stats := annotate.Inject(rendered, triples)
	logger.Info("annotated body",
		zap.Int("triples", stats.Triples),
		zap.Int("highlights", stats.Wrapped),
		zap.Int("skipped", stats.Overlaps))
	return html, stats, nil
}

func plainParagraphs(body string, cause error) (string, annotate.Stats, error) {
	logger.Warn("annotation input malformed, rendering without highlights", zap.Error(cause))
	html, err := annotate.Paragraphize(body)
	if err != nil {
		return "", annotate.Stats{}, fmt.Errorf("failed to render body: %w", err)
	}
	return html, annotate.Stats{}, nil
}
