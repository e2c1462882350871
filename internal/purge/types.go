// Package purge determines which rules of a generated stylesheet are exercised
// by an application's sources and removes the rest.
//
// The pipeline runs one way: source units are turned into candidate token
// sets by the Extractor, stylesheets are indexed into DeclaredSelectors, the
// Classifier marks which declared classes are generated utilities, the
// Reconciler settles forced-removed and observed classes, and the rewriter
// produces a Verdict per stylesheet.
package purge

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrVocabularyNotFound is returned when no class vocabulary can be resolved.
	ErrVocabularyNotFound = errors.New("class vocabulary not found")
	// ErrMalformedStylesheet is returned when a stylesheet cannot be parsed into rules.
	ErrMalformedStylesheet = errors.New("malformed stylesheet")
)

// SourceKind selects how a SourceUnit is tokenized.
type SourceKind int

// Source kinds.
const (
	KindGeneric SourceKind = iota
	KindMarkup
	KindScript
	KindStyle
)

func (k SourceKind) String() string {
	switch k {
	case KindMarkup:
		return "markup"
	case KindScript:
		return "script"
	case KindStyle:
		return "style"
	default:
		return "generic"
	}
}

// KindFromPath infers the SourceKind from a file extension. Only plain
// JavaScript is treated as script; typed or templated dialects (.ts, .jsx,
// .svelte, .vue) are scanned as generic text.
func KindFromPath(path string) SourceKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return KindMarkup
	case ".js", ".mjs", ".cjs":
		return KindScript
	case ".css":
		return KindStyle
	default:
		return KindGeneric
	}
}

// SourceUnit is one piece of scannable text.
type SourceUnit struct {
	Name    string // file path or module id, used in diagnostics
	Content string
	Kind    SourceKind
}

// TokenSet is a set of canonical selector tokens.
type TokenSet map[string]struct{}

// NewTokenSet returns a set holding tokens.
func NewTokenSet(tokens ...string) TokenSet {
	s := make(TokenSet, len(tokens))
	for _, t := range tokens {
		s.Add(t)
	}
	return s
}

// Add inserts a non-empty token.
func (s TokenSet) Add(token string) {
	if token != "" {
		s[token] = struct{}{}
	}
}

// Has reports whether token is present.
func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Merge adds every token of other.
func (s TokenSet) Merge(other TokenSet) {
	for t := range other {
		s[t] = struct{}{}
	}
}

// Sorted returns the tokens in lexical order.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// DeclaredSelectors lists every selector token defined by one stylesheet.
type DeclaredSelectors struct {
	AttributeNames  TokenSet
	AttributeValues TokenSet
	IDs             TokenSet
	Tags            TokenSet
	Classes         TokenSet
}

func newDeclaredSelectors() DeclaredSelectors {
	return DeclaredSelectors{
		AttributeNames:  TokenSet{},
		AttributeValues: TokenSet{},
		IDs:             TokenSet{},
		Tags:            TokenSet{},
		Classes:         TokenSet{},
	}
}

// Asset is a named stylesheet handed over by the asset store.
type Asset struct {
	Name string
	CSS  string
}
