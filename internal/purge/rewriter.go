package purge

import (
	"strings"
)

// Reason explains a selector verdict.
type Reason string

// Selector verdict reasons.
const (
	ReasonStructural  Reason = "structural"   // no class, id, tag or attribute (*, :root)
	ReasonEmpty       Reason = "empty"        // blank entry in a selector list
	ReasonGreedy      Reason = "greedy"       // matched a greedy protection rule
	ReasonProtected   Reason = "protected"    // a class matched a standard protection rule
	ReasonObserved    Reason = "observed"     // a class was confirmed in sources
	ReasonBase        Reason = "base"         // no generated utility involved
	ReasonForced      Reason = "forced-remove"
	ReasonBlocklisted Reason = "blocklisted"
	ReasonUnused      Reason = "unused" // legacy mode: a token never appeared in sources
)

// RuleVerdict is the decision for one selector.
type RuleVerdict struct {
	Selector string `json:"selector"`
	Kept     bool   `json:"kept"`
	Reason   Reason `json:"reason"`
	Token    string `json:"token,omitempty"`
}

// Verdict is the result of purging one stylesheet.
type Verdict struct {
	Name string
	CSS  string
	// Removed lists the dropped selectors.
	Removed []string
	// ForcedRemoved and Observed list this stylesheet's declared classes in
	// each reconciled set.
	ForcedRemoved []string
	Observed      []string
	SizeBefore    int
	SizeAfter     int
	Rules         []RuleVerdict
}

// Changed reports whether purging altered the text.
func (v Verdict) Changed() bool {
	return v.SizeBefore != v.SizeAfter
}

// Decider applies the retention policy to single selectors.
type Decider struct {
	rec    *Reconciliation
	legacy bool
}

// NewDecider returns a decider over a finished reconciliation. In legacy mode
// every class, id and tag must appear in the evidence instead of only
// generated utilities being filtered.
func NewDecider(rec *Reconciliation, legacy bool) *Decider {
	return &Decider{rec: rec, legacy: legacy}
}

// Decide returns the verdict for one selector of a selector list.
func (d *Decider) Decide(selector string) RuleVerdict {
	selector = strings.TrimSpace(selector)
	v := RuleVerdict{Selector: selector}
	if selector == "" {
		v.Reason = ReasonEmpty
		return v
	}

	parts := ParseSelector(selector)
	if parts.Empty() {
		v.Kept, v.Reason = true, ReasonStructural
		return v
	}
	if d.rec.Protection.ProtectsSelector(selector, parts) {
		v.Kept, v.Reason = true, ReasonGreedy
		return v
	}
	if d.legacy {
		return d.decideLegacy(v, parts)
	}

	protected := ""
	observed := ""
	for _, class := range parts.Classes {
		switch {
		case d.rec.IsForcedRemoved(class):
			v.Reason, v.Token = ReasonForced, class
			return v
		case d.rec.Blocklist.Match(class) && !d.rec.Protection.Protects(class):
			v.Reason, v.Token = ReasonBlocklisted, class
			return v
		case d.rec.Observed.Has(class):
			observed = class
		case d.rec.Protection.Protects(class):
			protected = class
		}
	}

	v.Kept = true
	switch {
	case observed != "":
		v.Reason, v.Token = ReasonObserved, observed
	case protected != "":
		v.Reason, v.Token = ReasonProtected, protected
	default:
		v.Reason = ReasonBase
	}
	return v
}

func (d *Decider) decideLegacy(v RuleVerdict, parts SelectorParts) RuleVerdict {
	check := func(token string) bool {
		if d.rec.Blocklist.Match(token) && !d.rec.Protection.Protects(token) {
			v.Reason, v.Token = ReasonBlocklisted, token
			return false
		}
		if !d.rec.Evidence.Has(token) && !d.rec.Protection.ProtectsStandard(token) {
			v.Reason, v.Token = ReasonUnused, token
			return false
		}
		return true
	}

	for _, list := range [][]string{parts.Classes, parts.IDs, parts.Tags} {
		for _, token := range list {
			if !check(token) {
				return v
			}
		}
	}
	v.Kept, v.Reason = true, ReasonObserved
	return v
}

// Purge rewrites sheet, dropping every rule whose selectors all fail and
// pruning failing selectors from the rest. Nested rules are decided on their
// own selectors. Grouping at-rules left without rules are dropped as well. Everything else is reproduced byte for byte.
func Purge(name string, sheet *Stylesheet, declared DeclaredSelectors, d *Decider) Verdict {
	before := sheet.String()
	p := &rewriter{decider: d}

	var b strings.Builder
	b.Grow(len(before))
	p.writeNodes(&b, sheet.Nodes)
	b.WriteString(sheet.Trailing)

	out := Verdict{
		Name:       name,
		CSS:        b.String(),
		Removed:    p.removed,
		SizeBefore: len(before),
		Rules:      p.rules,
	}
	out.SizeAfter = len(out.CSS)
	for _, class := range declared.Classes.Sorted() {
		switch {
		case d.rec.ForcedRemove.Has(class):
			out.ForcedRemoved = append(out.ForcedRemoved, class)
		case d.rec.Observed.Has(class):
			out.Observed = append(out.Observed, class)
		}
	}
	return out
}

type rewriter struct {
	decider *Decider
	removed []string
	rules   []RuleVerdict
}

// writeNodes writes the kept nodes and reports whether any rule or opaque
// node survived.
func (p *rewriter) writeNodes(b *strings.Builder, nodes []*Node) bool {
	keptAny := false
	for _, n := range nodes {
		switch n.Kind {
		case NodeRule:
			prelude, ok := p.rule(n.Prelude)
			if !ok {
				p.dropped(b, n)
				continue
			}
			b.WriteString(n.Leading)
			b.WriteString(prelude)
			b.WriteByte('{')
			if n.Children != nil {
				p.writeNodes(b, n.Children)
				b.WriteString(n.Trailing)
			} else {
				b.WriteString(n.Body)
			}
			b.WriteByte('}')
			keptAny = true

		case NodeGroup:
			var inner strings.Builder
			kept := p.writeNodes(&inner, n.Children)
			if !kept && len(n.Children) > 0 && !strings.Contains(n.Trailing, "/*") {
				p.dropped(b, n)
				continue
			}
			b.WriteString(n.Leading)
			b.WriteString(n.Prelude)
			b.WriteByte('{')
			b.WriteString(inner.String())
			b.WriteString(n.Trailing)
			b.WriteByte('}')
			keptAny = true

		default:
			n.writeTo(b)
			keptAny = true
		}
	}
	return keptAny
}

// dropped keeps the comments in front of a removed node.
func (p *rewriter) dropped(b *strings.Builder, n *Node) {
	if n.leadingHasComment {
		b.WriteString(n.Leading)
	}
}

// rule decides every selector of a prelude. It returns the prelude to write,
// unchanged when nothing failed, and false when nothing passed.
func (p *rewriter) rule(prelude string) (string, bool) {
	selectors := SplitSelectorList(prelude)
	kept := make([]string, 0, len(selectors))
	failed := 0
	for _, sel := range selectors {
		v := p.decider.Decide(sel)
		if v.Selector != "" {
			p.rules = append(p.rules, v)
		}
		if v.Kept {
			kept = append(kept, v.Selector)
			continue
		}
		failed++
		if v.Selector != "" {
			p.removed = append(p.removed, v.Selector)
		}
	}

	switch {
	case len(kept) == 0:
		return "", false
	case failed == 0:
		return prelude, true
	}
	trimmed := strings.TrimRight(prelude, " \t\n\r\f")
	return strings.Join(kept, ", ") + prelude[len(trimmed):], true
}
