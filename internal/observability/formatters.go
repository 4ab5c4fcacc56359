// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-curator/internal/annotate"
	"github.com/jonathan/resume-curator/internal/curation"
	"github.com/jonathan/resume-curator/internal/permissions"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of lines to display in previews
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// PrintJobContext outputs the first lines of the job description in use.
func (p *Printer) PrintJobContext(source, text string) {
	if text == "" {
		return
	}

	lines := strings.Split(text, "\n")
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source: %s\n", source))
	sb.WriteString(fmt.Sprintf("Length: %d chars, %d lines\n\n", len(text), len(lines)))
	count := min(len(lines), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(lines[i] + "\n")
	}
	if len(lines) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more lines\n", len(lines)-maxItemsToShow))
	}

	p.printBox("JOB CONTEXT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRegistry outputs each registered field with its operations in the
// order the pipeline applies them.
func (p *Printer) PrintRegistry(reg *permissions.Registry) {
	if reg == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Fields: %d\n", reg.Len()))
	for i, entry := range reg.Entries() {
		sb.WriteString(fmt.Sprintf("\n%d. %s\n", i+1, entry.Path))
		sb.WriteString(fmt.Sprintf("   declared: %s\n", entry.Operations))
		sb.WriteString(fmt.Sprintf("   runs:     %s\n", executionOrder(entry)))
		if len(entry.Ignored) > 0 {
			sb.WriteString(fmt.Sprintf("   ignored:  %s\n", strings.Join(entry.Ignored, ", ")))
		}
	}
	sb.WriteString(fmt.Sprintf("\nFingerprint: %s", shortDigest(reg.Fingerprint())))

	p.printBox("PERMISSION REGISTRY", sb.String())
}

func executionOrder(entry permissions.Entry) string {
	var steps []string
	if entry.Operations.Has(permissions.Remove) {
		steps = append(steps, "filter")
	}
	if entry.Operations.Has(permissions.Reorder) {
		if entry.CanRemove() {
			steps = append(steps, "reorder (may drop)")
		} else {
			steps = append(steps, "reorder (keep all)")
		}
	}
	if entry.Operations.Has(permissions.Rewrite) {
		steps = append(steps, "rewrite")
	}
	if len(steps) == 0 {
		return "nothing"
	}
	return strings.Join(steps, " → ")
}

// PrintCurationSummary outputs per-field results of a curation run.
func (p *Printer) PrintCurationSummary(res *curation.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	if res.FromCache {
		sb.WriteString("Served from cache; no fields were curated.")
		p.printBox("CURATION SUMMARY", sb.String())
		return
	}

	sb.WriteString(fmt.Sprintf("Attempts: %d\n", res.Attempts))
	changed := 0
	for _, f := range res.Fields {
		if len(f.Applied) > 0 {
			changed++
		}
	}
	sb.WriteString(fmt.Sprintf("Fields changed: %d of %d\n", changed, len(res.Fields)))

	for _, f := range res.Fields {
		sb.WriteString(fmt.Sprintf("\n• %s\n", f.Path))
		if len(f.Applied) == 0 {
			sb.WriteString("    unchanged\n")
			continue
		}
		if f.ItemsBefore >= 0 {
			sb.WriteString(fmt.Sprintf("    items: %d → %d\n", f.ItemsBefore, f.ItemsAfter))
		}
		if f.Rewrites > 0 {
			sb.WriteString(fmt.Sprintf("    rewritten: %d\n", f.Rewrites))
		}
	}

	p.printBox("CURATION SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnnotationSummary outputs how many highlights were placed and skipped.
func (p *Printer) PrintAnnotationSummary(stats annotate.Stats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Triples received:     %d\n", stats.Triples))
	sb.WriteString(fmt.Sprintf("Highlights placed:    %d\n", stats.Wrapped))
	sb.WriteString(fmt.Sprintf("Overlapping skipped:  %d\n", stats.Overlaps))
	sb.WriteString(fmt.Sprintf("Triples not found:    %d", stats.Unmatched))
	if stats.Empty > 0 {
		sb.WriteString(fmt.Sprintf("\nEmpty triples:        %d", stats.Empty))
	}

	p.printBox("ANNOTATION SUMMARY", sb.String())
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
