package purge

import "sync"

// Reconciler settles which declared utility classes are used. Every declared
// utility starts pending; the first candidate naming it confirms it, moving it
// to observed for the rest of the build. It is safe for concurrent use.
type Reconciler struct {
	mu         sync.Mutex
	classifier *Classifier
	pending    TokenSet
	observed   TokenSet
	evidence   TokenSet
	declared   TokenSet
}

// NewReconciler returns a reconciler classifying with c.
func NewReconciler(c *Classifier) *Reconciler {
	return &Reconciler{
		classifier: c,
		pending:    TokenSet{},
		observed:   TokenSet{},
		evidence:   TokenSet{},
		declared:   TokenSet{},
	}
}

// Declare registers the classes of a stylesheet. Only utility classes enter
// the pending set. A class already named by recorded evidence is confirmed
// right away.
func (r *Reconciler) Declare(classes TokenSet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for class := range classes {
		r.declared.Add(class)
		if r.observed.Has(class) || !r.classifier.IsUtility(class) {
			continue
		}
		if r.evidence.Has(class) {
			r.observed.Add(class)
			continue
		}
		r.pending.Add(class)
	}
}

// TryConfirm moves token from pending to observed. It reports true only for
// the call that performed the move.
func (r *Reconciler) TryConfirm(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.confirm(token)
}

func (r *Reconciler) confirm(token string) bool {
	if !r.pending.Has(token) {
		return false
	}
	delete(r.pending, token)
	r.observed.Add(token)
	return true
}

// Observe records one unit's candidates: each is confirmed if pending and
// kept as evidence either way.
func (r *Reconciler) Observe(candidates TokenSet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token := range candidates {
		r.confirm(token)
		r.evidence.Add(token)
	}
}

// Finish closes the scan. Pending classes become forced-removed unless
// protected; protected ones are reported as spared. The reconciler itself is
// left unchanged.
func (r *Reconciler) Finish(protection ProtectionRules, blocklist Blocklist) *Reconciliation {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := &Reconciliation{
		ForcedRemove: TokenSet{},
		Observed:     TokenSet{},
		Spared:       TokenSet{},
		Evidence:     TokenSet{},
		Protection:   protection,
		Blocklist:    blocklist,
	}
	rec.Observed.Merge(r.observed)
	rec.Evidence.Merge(r.evidence)

	for class := range r.pending {
		if protection.Protects(class) {
			rec.Spared.Add(class)
			continue
		}
		rec.ForcedRemove.Add(class)
	}
	// Blocklisted classes are forced out even when seen, unless protected.
	for class := range r.declared {
		if !blocklist.Match(class) || protection.Protects(class) {
			continue
		}
		rec.ForcedRemove.Add(class)
		delete(rec.Observed, class)
		delete(rec.Spared, class)
	}

	return rec
}

// Reconciliation is the settled state of one build.
type Reconciliation struct {
	// ForcedRemove holds declared utilities never seen plus blocklisted
	// classes, minus anything protected.
	ForcedRemove TokenSet
	// Observed holds declared utilities confirmed by a candidate.
	Observed TokenSet
	// Spared holds declared utilities never seen but protected.
	Spared TokenSet
	// Evidence is every candidate from every unit.
	Evidence   TokenSet
	Protection ProtectionRules
	Blocklist  Blocklist
}

// IsForcedRemoved reports whether class must go.
func (rec *Reconciliation) IsForcedRemoved(class string) bool {
	return rec.ForcedRemove.Has(class)
}

// Reconcile runs a whole reconciliation over already extracted candidate
// sets.
func Reconcile(c *Classifier, declared TokenSet, candidates []TokenSet, protection ProtectionRules, blocklist Blocklist) *Reconciliation {
	r := NewReconciler(c)
	r.Declare(declared)
	for _, set := range candidates {
		r.Observe(set)
	}
	return r.Finish(protection, blocklist)
}
