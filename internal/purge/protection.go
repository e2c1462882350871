package purge

import (
	"fmt"
	"regexp"
	"strings"
)

// pseudoClassFunction keeps selectors such as :is and :where from being purged
// when a lexer reports them as bare class-like tokens.
var pseudoClassFunction = regexp.MustCompile(`^:[-a-z]+$`)

// Matcher is one safelist or blocklist entry: an exact string or a regular
// expression.
type Matcher struct {
	Literal string
	Pattern *regexp.Regexp
}

// ParseMatcher reads an entry written as /source/ (a regular expression) or
// as a plain string (exact match).
func ParseMatcher(entry string) (Matcher, error) {
	if len(entry) >= 2 && strings.HasPrefix(entry, "/") && strings.HasSuffix(entry, "/") {
		re, err := regexp.Compile(entry[1 : len(entry)-1])
		if err != nil {
			return Matcher{}, fmt.Errorf("invalid pattern %q: %w", entry, err)
		}
		return Matcher{Pattern: re}, nil
	}
	return Matcher{Literal: entry}, nil
}

// Match reports whether token satisfies the entry.
func (m Matcher) Match(token string) bool {
	if m.Pattern != nil {
		return m.Pattern.MatchString(token)
	}
	return m.Literal == token
}

func (m Matcher) String() string {
	if m.Pattern != nil {
		return "/" + m.Pattern.String() + "/"
	}
	return m.Literal
}

// ProtectionRules force selectors to be kept. Standard entries test each
// selector token; greedy entries also test the whole selector text, so a
// fragment anywhere in a compound selector protects it.
type ProtectionRules struct {
	Standard []Matcher
	Greedy   []*regexp.Regexp
}

// DefaultProtection returns the rules every run starts with.
func DefaultProtection() ProtectionRules {
	return ProtectionRules{Standard: []Matcher{{Pattern: pseudoClassFunction}}}
}

// ParseProtectionRules builds rules from configured entries. Greedy entries
// are always regular expressions; surrounding slashes are optional.
func ParseProtectionRules(standard, greedy []string) (ProtectionRules, error) {
	var pr ProtectionRules
	for _, entry := range standard {
		m, err := ParseMatcher(entry)
		if err != nil {
			return ProtectionRules{}, fmt.Errorf("safelist: %w", err)
		}
		pr.Standard = append(pr.Standard, m)
	}
	for _, entry := range greedy {
		source := entry
		if len(source) >= 2 && strings.HasPrefix(source, "/") && strings.HasSuffix(source, "/") {
			source = source[1 : len(source)-1]
		}
		re, err := regexp.Compile(source)
		if err != nil {
			return ProtectionRules{}, fmt.Errorf("greedy safelist: invalid pattern %q: %w", entry, err)
		}
		pr.Greedy = append(pr.Greedy, re)
	}
	return pr, nil
}

// Merge returns the union of both rule sets.
func (pr ProtectionRules) Merge(other ProtectionRules) ProtectionRules {
	out := ProtectionRules{
		Standard: make([]Matcher, 0, len(pr.Standard)+len(other.Standard)),
		Greedy:   make([]*regexp.Regexp, 0, len(pr.Greedy)+len(other.Greedy)),
	}
	out.Standard = append(append(out.Standard, pr.Standard...), other.Standard...)
	out.Greedy = append(append(out.Greedy, pr.Greedy...), other.Greedy...)
	return out
}

// Protects reports whether a single token is protected by any rule.
func (pr ProtectionRules) Protects(token string) bool {
	for _, m := range pr.Standard {
		if m.Match(token) {
			return true
		}
	}
	for _, re := range pr.Greedy {
		if re.MatchString(token) {
			return true
		}
	}
	return false
}

// ProtectsStandard reports whether token matches a standard entry.
func (pr ProtectionRules) ProtectsStandard(token string) bool {
	for _, m := range pr.Standard {
		if m.Match(token) {
			return true
		}
	}
	return false
}

// ProtectsSelector reports whether a greedy rule matches the selector text or
// any of its tokens.
func (pr ProtectionRules) ProtectsSelector(selector string, parts SelectorParts) bool {
	if len(pr.Greedy) == 0 {
		return false
	}
	selector = strings.TrimSpace(selector)
	for _, re := range pr.Greedy {
		if re.MatchString(selector) {
			return true
		}
		for _, token := range parts.tokens() {
			if re.MatchString(token) {
				return true
			}
		}
	}
	return false
}

// Blocklist forces matching classes to be removed unless protected.
type Blocklist []Matcher

// ParseBlocklist reads blocklist entries with the same syntax as the
// standard safelist.
func ParseBlocklist(entries []string) (Blocklist, error) {
	bl := make(Blocklist, 0, len(entries))
	for _, entry := range entries {
		m, err := ParseMatcher(entry)
		if err != nil {
			return nil, fmt.Errorf("blocklist: %w", err)
		}
		bl = append(bl, m)
	}
	return bl, nil
}

// Match reports whether any entry matches token.
func (bl Blocklist) Match(token string) bool {
	for _, m := range bl {
		if m.Match(token) {
			return true
		}
	}
	return false
}

// tokens lists every class, id, tag and attribute name of the selector.
func (sp SelectorParts) tokens() []string {
	out := make([]string, 0, len(sp.Classes)+len(sp.IDs)+len(sp.Tags)+len(sp.Attributes))
	out = append(out, sp.Classes...)
	out = append(out, sp.IDs...)
	out = append(out, sp.Tags...)
	for _, a := range sp.Attributes {
		out = append(out, a.Name)
		if a.HasValue {
			out = append(out, a.Value)
		}
	}
	return out
}
