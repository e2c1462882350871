package csspurge

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yacobolo/csspurge/internal/logger"
	"github.com/yacobolo/csspurge/internal/purge"
)

// Snapshot is the debug view of one run.
type Snapshot = purge.Snapshot

// Config holds configuration for a purge run
type Config struct {
	VocabularyPath string   // Framework config; discovered in the working directory when empty
	CSS            []string // Stylesheet glob patterns (purge targets)
	Content        []string // Extra content glob patterns
	Skip           []string // Content glob patterns to ignore
	OutDir         string   // Write purged stylesheets here instead of in place

	Safelist       []string // Standard protection rules
	SafelistGreedy []string // Greedy protection rules
	Blocklist      []string // Extra always-remove rules

	Legacy bool // Purge against all declared selectors, no vocabulary gate
	Debug  bool // Attach the intermediate state to the result
	DryRun bool // Report without writing

	MaxLiteralLength int // 0 = unlimited
	BracketDepth     int
	Concurrency      int // 0 = GOMAXPROCS
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		CSS:              []string{"dist/**/*.css"},
		MaxLiteralLength: purge.DefaultMaxLiteralLength,
		BracketDepth:     purge.DefaultBracketDepth,
	}
}

// StylesheetResult reports one stylesheet.
type StylesheetResult struct {
	File          string   `json:"file"`
	Output        string   `json:"output,omitempty"`
	SizeBefore    int      `json:"original_size_bytes"`
	SizeAfter     int      `json:"final_size_bytes"`
	Skipped       bool     `json:"skipped,omitempty"`
	Error         string   `json:"error,omitempty"`
	Removed       []string `json:"removed,omitempty"`
	ForcedRemoved []string `json:"forced_removed,omitempty"`
	Observed      []string `json:"observed,omitempty"`
}

// Result contains statistics from a purge run
type Result struct {
	RunID          string
	VocabularyPath string
	Stylesheets    []StylesheetResult
	FilesScanned   int
	FilesSkipped   int
	Warnings       []string
	Legacy         bool
	DryRun         bool
	Debug          *Snapshot
}

// Purge is the main entry point: it purges the stylesheets matched by
// cfg.CSS on disk.
func Purge(ctx context.Context, cfg Config, log logger.Logger) (*Result, error) {
	return PurgeStore(ctx, cfg, NewFileStore(cfg.CSS, cfg.OutDir), log)
}

// PurgeStore purges the stylesheets of store against the configured content.
// Configuration errors abort before any file is scanned; a cancelled context
// aborts without writing anything.
func PurgeStore(ctx context.Context, cfg Config, store AssetStore, log logger.Logger) (*Result, error) {
	runID := uuid.NewString()
	log = logger.OrNop(log).With(logger.String("run_id", runID))
	result := &Result{RunID: runID, Legacy: cfg.Legacy, DryRun: cfg.DryRun}

	// 1. Resolve the class vocabulary
	fw, err := loadFramework(cfg)
	if err != nil {
		return nil, err
	}
	result.VocabularyPath = fw.Path

	// 2. Protection rules and blocklist
	protection, blocklist, err := buildRules(cfg, fw)
	if err != nil {
		return nil, err
	}

	extractor, err := purge.NewSelectorExtractor(purge.ExtractorOptions{
		Separator:        fw.Separator,
		BracketDepth:     cfg.BracketDepth,
		MaxLiteralLength: cfg.MaxLiteralLength,
	})
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	// 3. Stylesheets
	assets, err := store.Assets()
	if err != nil {
		return nil, err
	}
	targets := make([]string, 0, len(assets))
	for _, a := range assets {
		targets = append(targets, a.Name)
	}

	// 4. Content
	content := append(append([]string{}, fw.Content...), cfg.Content...)
	units, stats, unread, err := LoadSourceUnits(content, cfg.Skip, targets)
	if err != nil {
		return nil, fmt.Errorf("scan content: %w", err)
	}
	result.FilesScanned = stats.FilesScanned
	result.FilesSkipped = stats.FilesSkipped
	for _, re := range unread {
		log.Warn("content file not read", logger.String("file", re.Path), logger.Error(re.Err))
		result.Warnings = append(result.Warnings, re.Error())
	}
	log.Debug("content scanned",
		logger.Int("files_discovered", stats.FilesDiscovered),
		logger.Int("files_scanned", stats.FilesScanned),
		logger.Int("files_skipped", stats.FilesSkipped),
	)

	var vocab *purge.Vocabulary
	if fw.Path != "" {
		vocab = fw.Vocabulary()
	}

	// 5. Purge
	outcome, err := purge.Run(ctx, assets, units, purge.Options{
		Vocabulary:  vocab,
		Protection:  protection,
		Blocklist:   blocklist,
		Legacy:      cfg.Legacy,
		Debug:       cfg.Debug,
		Extractor:   extractor,
		Concurrency: cfg.Concurrency,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, outcome.Warnings...)
	result.Debug = outcome.Snapshot

	// 6. Write
	skipped := make(map[string]error, len(outcome.Skipped))
	for _, s := range outcome.Skipped {
		skipped[s.Name] = s.Err
	}
	verdicts := make(map[string]purge.Verdict, len(outcome.Verdicts))
	for _, v := range outcome.Verdicts {
		verdicts[v.Name] = v
	}

	for _, a := range assets {
		if err, ok := skipped[a.Name]; ok {
			result.Stylesheets = append(result.Stylesheets, StylesheetResult{
				File:       a.Name,
				SizeBefore: len(a.CSS),
				SizeAfter:  len(a.CSS),
				Skipped:    true,
				Error:      err.Error(),
			})
			continue
		}

		v := verdicts[a.Name]
		sr := StylesheetResult{
			File:          v.Name,
			SizeBefore:    v.SizeBefore,
			SizeAfter:     v.SizeAfter,
			Removed:       v.Removed,
			ForcedRemoved: v.ForcedRemoved,
			Observed:      v.Observed,
		}
		if !cfg.DryRun {
			out, err := store.Replace(v.Name, v.CSS)
			if err != nil {
				return nil, fmt.Errorf("write failed: %w", err)
			}
			sr.Output = out
		}
		log.Info("stylesheet purged",
			logger.String("file", v.Name),
			logger.Int("size_before", v.SizeBefore),
			logger.Int("size_after", v.SizeAfter),
			logger.Bool("dry_run", cfg.DryRun),
		)
		result.Stylesheets = append(result.Stylesheets, sr)
	}

	return result, nil
}

// loadFramework resolves the vocabulary. In legacy mode a missing vocabulary
// is not an error.
func loadFramework(cfg Config) (*purge.FrameworkConfig, error) {
	path, err := purge.ResolveVocabularyPath(cfg.VocabularyPath)
	if err != nil {
		if cfg.Legacy && errors.Is(err, purge.ErrVocabularyNotFound) {
			return &purge.FrameworkConfig{Separator: purge.DefaultSeparator}, nil
		}
		return nil, err
	}

	fw, err := purge.LoadFrameworkConfig(path)
	if err != nil {
		return nil, err
	}
	return fw, nil
}

func buildRules(cfg Config, fw *purge.FrameworkConfig) (purge.ProtectionRules, purge.Blocklist, error) {
	standard := append(append([]string{}, fw.Safelist...), cfg.Safelist...)
	extra, err := purge.ParseProtectionRules(standard, cfg.SafelistGreedy)
	if err != nil {
		return purge.ProtectionRules{}, nil, fmt.Errorf("protection rules: %w", err)
	}

	blocklist, err := purge.ParseBlocklist(append(append([]string{}, fw.Blocklist...), cfg.Blocklist...))
	if err != nil {
		return purge.ProtectionRules{}, nil, fmt.Errorf("blocklist: %w", err)
	}

	return purge.DefaultProtection().Merge(extra), blocklist, nil
}
