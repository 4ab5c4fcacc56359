package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-curator/internal/annotate"
	"github.com/jonathan/resume-curator/internal/curation"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Curate a document and annotate a body of text for the same job",
	Long: `Runs curate and annotate side by side against one job description, sharing
the fetched job context and text service. Either failure cancels the other.`,
	RunE: runTailor,
}

var (
	tailorDocOutput  string
	tailorHTMLOutput string
)

func init() {
	addCurateFlags(tailorCmd)
	addAnnotateFlags(tailorCmd)
	addJobFlags(tailorCmd)
	tailorCmd.Flags().StringVar(&tailorDocOutput, "out-doc", "", "Output path for the curated document (required)")
	tailorCmd.Flags().StringVar(&tailorHTMLOutput, "out-html", "", "Output path for the annotated HTML (required)")

	for _, name := range []string{"body", "out-doc", "out-html"} {
		if err := tailorCmd.MarkFlagRequired(name); err != nil {
			panic("failed to mark " + name + " flag as required: " + err.Error())
		}
	}

	rootCmd.AddCommand(tailorCmd)
}

type tailored struct {
	Curation *curation.Result
	HTML     string
	Stats    annotate.Stats
}

func runTailor(cmd *cobra.Command, _ []string) error {
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

	out, err := tailor(ctx, svc, jobContext)
	if err != nil {
		return err
	}
	if printer != nil {
		printer.PrintCurationSummary(out.Curation)
		printer.PrintAnnotationSummary(out.Stats)
	}

	if err := writeDocument(cmd.OutOrStdout(), tailorDocOutput, out.Curation.Document); err != nil {
		return err
	}
	return writeText(cmd.OutOrStdout(), tailorHTMLOutput, []byte(out.HTML))
}

// tailor runs curation and annotation concurrently. The two share no data
// beyond the read-only job context and the service.
func tailor(ctx context.Context, svc curation.TextService, jobContext string) (*tailored, error) {
	var out tailored
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := curateDocument(gctx, svc, jobContext)
		if err != nil {
			return err
		}
		out.Curation = res
		return nil
	})
	g.Go(func() error {
		html, stats, err := annotateBody(gctx, svc, jobContext)
		if err != nil {
			return err
		}
		out.HTML, out.Stats = html, stats
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
