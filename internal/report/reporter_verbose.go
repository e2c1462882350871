package report

import (
	"fmt"
	"io"
	"strings"
)

// Detail is the debug breakdown of one stylesheet.
type Detail struct {
	File          string
	ForcedRemoved []string
	Observed      []string
	Removed       []string
}

// VerboseReporter prints the debug breakdown of a run.
type VerboseReporter struct {
	w         io.Writer
	useColors bool
	limit     int
}

// NewVerboseReporter creates a verbose reporter. At most limit entries of
// each list are printed; 0 prints everything.
func NewVerboseReporter(w io.Writer, useColors bool, limit int) *VerboseReporter {
	return &VerboseReporter{w: w, useColors: useColors, limit: limit}
}

// PrintDetails prints the reconciled classes and dropped selectors of every
// stylesheet.
func (r *VerboseReporter) PrintDetails(details []Detail, spared []string) {
	for _, d := range details {
		fmt.Fprintln(r.w, "")
		fmt.Fprintln(r.w, RenderStyle(StyleCyan, d.File, r.useColors))
		fmt.Fprintln(r.w, strings.Repeat("-", len(d.File)))
		fmt.Fprintf(r.w, "Observed utilities:       %d\n", len(d.Observed))
		fmt.Fprintf(r.w, "Forced-removed utilities: %d\n", len(d.ForcedRemoved))
		fmt.Fprintf(r.w, "Dropped selectors:        %d\n", len(d.Removed))
		r.printList("Dropped", d.Removed)
	}

	if len(spared) > 0 {
		fmt.Fprintln(r.w, "")
		fmt.Fprintln(r.w, RenderStyle(StyleGreen, "Protected but unseen", r.useColors))
		r.printList("", spared)
	}
}

func (r *VerboseReporter) printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	if title != "" {
		fmt.Fprintf(r.w, "\n%s:\n", title)
	}
	for i, item := range items {
		if r.limit > 0 && i >= r.limit {
			fmt.Fprintln(r.w, RenderStyle(StyleGray, fmt.Sprintf("... and %d more", len(items)-r.limit), r.useColors))
			break
		}
		fmt.Fprintf(r.w, "  %s\n", item)
	}
}
