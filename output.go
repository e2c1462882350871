package csspurge

import (
	"io"
	"path/filepath"

	"github.com/yacobolo/csspurge/internal/report"
)

// OutputFormat selects how a Result is rendered.
type OutputFormat string

// Output formats.
const (
	OutputText    OutputFormat = "text"    // size table (default)
	OutputVerbose OutputFormat = "verbose" // size table plus per-stylesheet details
	OutputJSON    OutputFormat = "json"    // machine-readable, includes the debug snapshot
)

// OutputOptions controls rendering.
type OutputOptions struct {
	Colors bool
	// Limit caps each list in verbose output (0=unlimited).
	Limit int
}

// DetermineOutputFormat selects the output format from the flag value.
// Unknown values fall back to text.
func DetermineOutputFormat(formatFlag string) OutputFormat {
	switch formatFlag {
	case "json":
		return OutputJSON
	case "verbose", "full":
		return OutputVerbose
	default:
		return OutputText
	}
}

// WriteOutput writes the purge result in the specified format
func WriteOutput(w io.Writer, result *Result, format OutputFormat, opts OutputOptions) error {
	switch format {
	case OutputJSON:
		return WriteJSON(w, result)

	case OutputVerbose:
		reporter := report.NewReporter(w, opts.Colors)
		reporter.Print(summary(result))

		details := make([]report.Detail, 0, len(result.Stylesheets))
		for _, s := range result.Stylesheets {
			if s.Skipped {
				continue
			}
			details = append(details, report.Detail{
				File:          displayName(s.File),
				ForcedRemoved: s.ForcedRemoved,
				Observed:      s.Observed,
				Removed:       s.Removed,
			})
		}
		var spared []string
		if result.Debug != nil {
			spared = result.Debug.Spared
		}
		report.NewVerboseReporter(w, reporter.UseColors(), opts.Limit).PrintDetails(details, spared)

	default:
		report.NewReporter(w, opts.Colors).Print(summary(result))
	}
	return nil
}

func summary(result *Result) report.Summary {
	s := report.Summary{
		Warnings:     result.Warnings,
		FilesScanned: result.FilesScanned,
		Legacy:       result.Legacy,
		DryRun:       result.DryRun,
	}
	for _, sr := range result.Stylesheets {
		name := displayName(sr.File)
		if sr.Output != "" && sr.Output != sr.File {
			name = displayName(sr.Output)
		}
		s.Entries = append(s.Entries, report.Entry{
			File:       name,
			SizeBefore: sr.SizeBefore,
			SizeAfter:  sr.SizeAfter,
			Skipped:    sr.Skipped,
		})
	}
	return s
}

func displayName(path string) string {
	if path == "" || !filepath.IsAbs(path) {
		return path
	}
	return GetRelativePath(path)
}
