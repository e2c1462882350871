// Package report renders purge results for terminals.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Entry is the size line of one stylesheet.
type Entry struct {
	File       string
	SizeBefore int
	SizeAfter  int
	Skipped    bool
}

// Summary is everything the text reporter prints for one run.
type Summary struct {
	Entries      []Entry
	Warnings     []string
	FilesScanned int
	Legacy       bool
	DryRun       bool
}

// Reporter prints the size table of a purge run.
type Reporter struct {
	w         io.Writer
	useColors bool
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer, useColors bool) *Reporter {
	return &Reporter{w: w, useColors: useColors}
}

// ShouldUseColors determines if colors should be enabled
func ShouldUseColors(force bool) bool {
	// Explicit flag wins
	if force {
		return true
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check for FORCE_COLOR environment variable (GitHub Actions, etc.)
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	// GitHub Actions supports colors
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}

	// Auto-detect TTY
	if fileInfo, err := os.Stdout.Stat(); err == nil && (fileInfo.Mode()&os.ModeCharDevice) != 0 {
		return true
	}

	return false
}

// UseColors returns whether colors are enabled
func (r *Reporter) UseColors() bool {
	return r.useColors
}

// Print writes the banner, one size line per stylesheet and the totals.
func (r *Reporter) Print(s Summary) {
	if s.Legacy {
		fmt.Fprintf(r.w, "Using %s. Purging all unused CSS...\n", RenderStyle(StyleYellow, "legacy mode", r.useColors))
	} else {
		fmt.Fprintln(r.w, "Purging unused utility styles...")
	}

	r.PrintSizes(s.Entries)
	r.PrintWarnings(s.Warnings)

	before, after, purged := 0, 0, 0
	for _, e := range s.Entries {
		if e.Skipped {
			continue
		}
		purged++
		before += e.SizeBefore
		after += e.SizeAfter
	}
	fmt.Fprintln(r.w, "")
	fmt.Fprintf(r.w, "%s scanned, %s purged: %s -> %s\n",
		pluralizeCount(s.FilesScanned, "file", "files"),
		pluralizeCount(purged, "stylesheet", "stylesheets"),
		FormatKB(before), FormatKB(after))
	if s.DryRun {
		fmt.Fprintln(r.w, RenderStyle(StyleGray, "Dry run: no files were written", r.useColors))
	}
}

// PrintSizes prints `file  original kB  ->  final kB` lines with the columns
// aligned. The final size is green when it changed.
func (r *Reporter) PrintSizes(entries []Entry) {
	if len(entries) == 0 {
		return
	}

	fmt.Fprintf(r.w, "Calculating bundle size savings: %s\n", RenderStyle(StyleGray, "(not minified)", r.useColors))

	nameWidth, beforeWidth, afterWidth := 0, 0, 0
	for _, e := range entries {
		nameWidth = max(nameWidth, len(e.File))
		beforeWidth = max(beforeWidth, len(kb(e.SizeBefore)))
		afterWidth = max(afterWidth, len(kb(e.SizeAfter)))
	}

	for _, e := range entries {
		name := r.ColorFile(e.File) + strings.Repeat(" ", nameWidth-len(e.File)+2)
		if e.Skipped {
			fmt.Fprintf(r.w, "%s%s\n", name, RenderStyle(StyleRed, "skipped (not purged)", r.useColors))
			continue
		}

		original := fmt.Sprintf("%*s kB", beforeWidth, kb(e.SizeBefore))
		final := fmt.Sprintf("%*s kB", afterWidth, kb(e.SizeAfter))
		if e.SizeBefore != e.SizeAfter {
			final = RenderStyle(StyleGreen, final, r.useColors)
		}
		fmt.Fprintf(r.w, "%s%s%s%s\n", name,
			RenderStyle(StyleBoldGray, original, r.useColors),
			RenderStyle(StyleBoldGray, "  ->  ", r.useColors),
			final)
	}
}

// PrintWarnings lists non-fatal issues.
func (r *Reporter) PrintWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleYellow, "Warnings", r.useColors))
	fmt.Fprintln(r.w, "-----------")
	for _, warning := range warnings {
		fmt.Fprintf(r.w, "• %s\n", warning)
	}
}

// ColorFile grays out the directory part of a path.
func (r *Reporter) ColorFile(path string) string {
	dir, base := filepath.Split(path)
	if dir == "" {
		return base
	}
	return RenderStyle(StyleGray, dir, r.useColors) + base
}

// FormatKB renders a byte count the way the size table does.
func FormatKB(bytes int) string {
	return kb(bytes) + " kB"
}

func kb(bytes int) string {
	return fmt.Sprintf("%.2f", float64(bytes)/1000)
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
