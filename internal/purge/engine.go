package purge

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yacobolo/csspurge/internal/logger"
)

// Options configures one purge pass.
type Options struct {
	// Vocabulary may be nil in legacy mode.
	Vocabulary *Vocabulary
	Protection ProtectionRules
	Blocklist  Blocklist
	Legacy     bool
	Debug      bool
	// Extractor defaults to a SelectorExtractor over the vocabulary separator.
	Extractor   Extractor
	Concurrency int
	Logger      logger.Logger
}

// SkippedAsset is a stylesheet left untouched.
type SkippedAsset struct {
	Name string
	Err  error
}

// Outcome is the result of one pass. Verdicts follow the order of the
// assets; skipped assets have no verdict.
type Outcome struct {
	Verdicts []Verdict
	Skipped  []SkippedAsset
	Warnings []string
	Snapshot *Snapshot
}

// Snapshot is a read-only copy of the intermediate state, filled in debug
// mode only.
type Snapshot struct {
	Candidates   map[string][]string      `json:"candidates"`
	ForcedRemove []string                 `json:"forced_remove"`
	Observed     []string                 `json:"observed"`
	Spared       []string                 `json:"spared"`
	Rules        map[string][]RuleVerdict `json:"rules"`
}

type parsedAsset struct {
	asset    Asset
	sheet    *Stylesheet
	declared DeclaredSelectors
}

// Run purges assets against the evidence in units. A cancelled context aborts
// extraction and no partial result is returned.
func Run(ctx context.Context, assets []Asset, units []SourceUnit, opts Options) (*Outcome, error) {
	log := logger.OrNop(opts.Logger)
	if opts.Vocabulary == nil {
		if !opts.Legacy {
			return nil, ErrVocabularyNotFound
		}
		opts.Vocabulary = NewVocabulary(nil, DefaultSeparator)
	}
	if opts.Extractor == nil {
		ex, err := NewSelectorExtractor(ExtractorOptions{
			Separator:        opts.Vocabulary.Separator(),
			MaxLiteralLength: DefaultMaxLiteralLength,
		})
		if err != nil {
			return nil, err
		}
		opts.Extractor = ex
	}

	out := &Outcome{}
	rec := NewReconciler(NewClassifier(opts.Vocabulary))

	parsed := make([]parsedAsset, 0, len(assets))
	for _, a := range assets {
		sheet, err := ParseStylesheet(a.CSS)
		if err != nil {
			log.Warn("stylesheet skipped", logger.String("file", a.Name), logger.Error(err))
			out.Skipped = append(out.Skipped, SkippedAsset{Name: a.Name, Err: err})
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %v", a.Name, err))
			continue
		}
		pa := parsedAsset{asset: a, sheet: sheet, declared: Index(sheet)}
		if !opts.Legacy {
			rec.Declare(pa.declared.Classes)
		}
		parsed = append(parsed, pa)
	}

	candidates, warnings, err := extractAll(ctx, units, opts.Extractor, opts.Concurrency)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Warn("source unit not scanned", logger.String("file", w.name), logger.Error(w.err))
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %v", w.name, w.err))
	}

	for _, set := range candidates {
		rec.Observe(set)
	}
	result := rec.Finish(opts.Protection, opts.Blocklist)
	log.Debug("reconciled",
		logger.Int("forced_remove", len(result.ForcedRemove)),
		logger.Int("observed", len(result.Observed)),
		logger.Int("spared", len(result.Spared)),
		logger.Bool("legacy", opts.Legacy),
	)

	decider := NewDecider(result, opts.Legacy)
	for _, pa := range parsed {
		v := Purge(pa.asset.Name, pa.sheet, pa.declared, decider)
		log.Debug("stylesheet purged",
			logger.String("file", v.Name),
			logger.Int("size_before", v.SizeBefore),
			logger.Int("size_after", v.SizeAfter),
			logger.Strings("removed", v.Removed),
		)
		out.Verdicts = append(out.Verdicts, v)
	}

	if opts.Debug {
		out.Snapshot = snapshot(units, candidates, result, out.Verdicts)
	}
	return out, nil
}

type unitWarning struct {
	name string
	err  error
}

// extractAll runs the extractor over every unit with at most limit workers.
// Results are indexed like units.
func extractAll(ctx context.Context, units []SourceUnit, ex Extractor, limit int) ([]TokenSet, []unitWarning, error) {
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}

	sets := make([]TokenSet, len(units))
	errs := make([]error, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			set, err := ex.Extract(units[i])
			if set == nil {
				set = TokenSet{}
			}
			sets[i], errs[i] = set, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var warnings []unitWarning
	for i, err := range errs {
		if err != nil {
			warnings = append(warnings, unitWarning{name: units[i].Name, err: err})
		}
	}
	return sets, warnings, nil
}

func snapshot(units []SourceUnit, candidates []TokenSet, rec *Reconciliation, verdicts []Verdict) *Snapshot {
	s := &Snapshot{
		Candidates:   make(map[string][]string, len(units)),
		ForcedRemove: rec.ForcedRemove.Sorted(),
		Observed:     rec.Observed.Sorted(),
		Spared:       rec.Spared.Sorted(),
		Rules:        make(map[string][]RuleVerdict, len(verdicts)),
	}
	for i, u := range units {
		s.Candidates[u.Name] = candidates[i].Sorted()
	}
	for _, v := range verdicts {
		s.Rules[v.Name] = append([]RuleVerdict(nil), v.Rules...)
	}
	return s
}
