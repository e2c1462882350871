// Package pattern composes small regular expression fragments into the
// extraction patterns used by the selector extractor.
//
// Every function accepts either a Fragment (raw regular expression source) or
// an already compiled *regexp.Regexp and normalizes both to source text before
// combining them. Nothing here touches shared state.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// Fragment is raw regular expression source.
type Fragment string

// String returns the fragment source.
func (f Fragment) String() string {
	return string(f)
}

// Escape returns text with every regular expression metacharacter escaped.
// An empty input yields an empty string.
func Escape(text string) string {
	if text == "" {
		return ""
	}
	return regexp.QuoteMeta(text)
}

// toSource joins the source text of every part in order.
func toSource(parts ...fmt.Stringer) string {
	var b strings.Builder
	for _, p := range parts {
		if p == nil {
			continue
		}
		b.WriteString(p.String())
	}
	return b.String()
}

// Sequence concatenates parts.
func Sequence(parts ...fmt.Stringer) Fragment {
	return Fragment(toSource(parts...))
}

// NonCapturing wraps the concatenated parts in a non-capturing group.
func NonCapturing(parts ...fmt.Stringer) Fragment {
	return Fragment("(?:" + toSource(parts...) + ")")
}

// Alternation matches any one of the given parts.
func Alternation(parts ...fmt.Stringer) Fragment {
	sources := make([]string, 0, len(parts))
	for _, p := range parts {
		sources = append(sources, toSource(p))
	}
	return Fragment("(?:" + strings.Join(sources, "|") + ")")
}

// Optional matches part zero or one time.
func Optional(part fmt.Stringer) Fragment {
	return Fragment("(?:" + toSource(part) + ")?")
}

// ZeroOrMore matches the concatenated parts any number of times.
func ZeroOrMore(parts ...fmt.Stringer) Fragment {
	return Fragment("(?:" + toSource(parts...) + ")*")
}

// BalancedBrackets builds a non-capturing pattern matching open ... close where
// the interior may itself hold balanced open/close pairs nested up to depth
// levels. RE2 has no recursion, so the nesting is unrolled into depth literal
// levels: at depth 1 the interior is any run of characters other than open,
// close and whitespace; at greater depths the interior may also contain a
// balanced pattern of depth-1. Content nested deeper than depth never matches
// as a whole. A depth below 1 is treated as 1.
func BalancedBrackets(open, close string, depth int) Fragment {
	if depth < 1 {
		depth = 1
	}
	plain := Fragment(`[^` + Escape(open) + Escape(close) + `\s]`)

	var interior Fragment
	if depth == 1 {
		interior = ZeroOrMore(plain)
	} else {
		interior = ZeroOrMore(Alternation(plain, BalancedBrackets(open, close, depth-1)))
	}
	return NonCapturing(Fragment(Escape(open)), interior, Fragment(Escape(close)))
}

// Compile compiles the concatenation of parts.
func Compile(parts ...fmt.Stringer) (*regexp.Regexp, error) {
	src := toSource(parts...)
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", src, err)
	}
	return re, nil
}

// MustCompile is like Compile but panics on invalid source. Use it only for
// patterns built from constants.
func MustCompile(parts ...fmt.Stringer) *regexp.Regexp {
	re, err := Compile(parts...)
	if err != nil {
		panic(err)
	}
	return re
}
