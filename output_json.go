package csspurge

import (
	"encoding/json"
	"io"
	"time"
)

// JSONOutput represents the structured JSON export schema
type JSONOutput struct {
	Version     string             `json:"version"`
	Timestamp   string             `json:"timestamp"`
	RunID       string             `json:"run_id"`
	Vocabulary  string             `json:"vocabulary,omitempty"`
	Summary     JSONSummary        `json:"summary"`
	Stylesheets []StylesheetResult `json:"stylesheets"`
	Warnings    []string           `json:"warnings"`
	Debug       *Snapshot          `json:"debug,omitempty"`
}

// JSONSummary contains run totals
type JSONSummary struct {
	FilesScanned      int  `json:"files_scanned"`
	FilesSkipped      int  `json:"files_skipped"`
	StylesheetsPurged int  `json:"stylesheets_purged"`
	StylesheetsFailed int  `json:"stylesheets_skipped"`
	BytesBefore       int  `json:"bytes_before"`
	BytesAfter        int  `json:"bytes_after"`
	Legacy            bool `json:"legacy"`
	DryRun            bool `json:"dry_run"`
}

// WriteJSON writes the purge result as JSON
func WriteJSON(w io.Writer, result *Result) error {
	output := buildJSONOutput(result)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildJSONOutput converts Result to JSONOutput
func buildJSONOutput(result *Result) JSONOutput {
	summary := JSONSummary{
		FilesScanned: result.FilesScanned,
		FilesSkipped: result.FilesSkipped,
		Legacy:       result.Legacy,
		DryRun:       result.DryRun,
	}
	for _, s := range result.Stylesheets {
		if s.Skipped {
			summary.StylesheetsFailed++
			continue
		}
		summary.StylesheetsPurged++
		summary.BytesBefore += s.SizeBefore
		summary.BytesAfter += s.SizeAfter
	}

	stylesheets := result.Stylesheets
	if stylesheets == nil {
		stylesheets = []StylesheetResult{}
	}
	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return JSONOutput{
		Version:     "1.0",
		Timestamp:   time.Now().Format(time.RFC3339),
		RunID:       result.RunID,
		Vocabulary:  result.VocabularyPath,
		Summary:     summary,
		Stylesheets: stylesheets,
		Warnings:    warnings,
		Debug:       result.Debug,
	}
}
