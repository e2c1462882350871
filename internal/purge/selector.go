package purge

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Attribute is one attribute selector, e.g. [data-state="open"].
type Attribute struct {
	Name     string
	Value    string
	HasValue bool
}

// SelectorParts lists the tokens of one complex selector. Nested holds
// classes found inside functional pseudo-classes such as :not(.x); those are
// declared by the stylesheet but never decide whether the selector is kept.
type SelectorParts struct {
	Classes    []string
	IDs        []string
	Tags       []string
	Attributes []Attribute
	Nested     []string
}

// Empty reports whether the selector has no class, id, tag or attribute, as
// for `*` or `:root`.
func (sp SelectorParts) Empty() bool {
	return len(sp.Classes) == 0 && len(sp.IDs) == 0 && len(sp.Tags) == 0 && len(sp.Attributes) == 0
}

// SplitSelectorList splits a rule prelude at its top-level commas. Each
// element keeps its surrounding whitespace.
func SplitSelectorList(prelude string) []string {
	lexer := css.NewLexer(parse.NewInputString(prelude))

	var parts []string
	var cur strings.Builder
	depth := 0
	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		switch tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case css.CommaToken:
			if depth == 0 {
				parts = append(parts, cur.String())
				cur.Reset()
				continue
			}
		}
		cur.Write(text)
	}
	parts = append(parts, cur.String())
	return parts
}

// ParseSelector extracts the class, id, tag and attribute tokens of one
// selector. Names are unescaped.
func ParseSelector(selector string) SelectorParts {
	lexer := css.NewLexer(parse.NewInputString(selector))

	var sp SelectorParts
	var (
		parenDepth int
		afterDot   bool
		afterColon bool
		inAttr     bool
		attr       Attribute
		attrHasOp  bool
	)

	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			break
		}

		if inAttr {
			switch tt {
			case css.IdentToken, css.StringToken:
				value := string(text)
				if tt == css.StringToken {
					value = unquoteCSSString(value)
				} else {
					value = UnescapeCSS(value)
				}
				if attr.Name == "" {
					attr.Name = value
				} else if attrHasOp && !attr.HasValue {
					attr.Value = value
					attr.HasValue = true
				}
			case css.DelimToken, css.IncludeMatchToken, css.DashMatchToken,
				css.PrefixMatchToken, css.SuffixMatchToken, css.SubstringMatchToken:
				if attr.Name != "" && (tt != css.DelimToken || string(text) == "=") {
					attrHasOp = true
				}
			case css.RightBracketToken:
				inAttr = false
				if attr.Name != "" && parenDepth == 0 {
					sp.Attributes = append(sp.Attributes, attr)
				}
			}
			continue
		}

		switch tt {
		case css.DelimToken:
			afterColon = false
			afterDot = string(text) == "."
			continue
		case css.IdentToken:
			name := UnescapeCSS(string(text))
			switch {
			case afterDot:
				if parenDepth == 0 {
					sp.Classes = append(sp.Classes, name)
				} else {
					sp.Nested = append(sp.Nested, name)
				}
			case afterColon, parenDepth > 0:
				// pseudo-class name or pseudo-class argument
			default:
				sp.Tags = append(sp.Tags, name)
			}
		case css.HashToken:
			if parenDepth == 0 {
				sp.IDs = append(sp.IDs, UnescapeCSS(string(text[1:])))
			}
		case css.ColonToken:
			afterDot = false
			afterColon = true
			continue
		case css.FunctionToken, css.LeftParenthesisToken:
			parenDepth++
		case css.RightParenthesisToken:
			if parenDepth > 0 {
				parenDepth--
			}
		case css.LeftBracketToken:
			inAttr = true
			attr = Attribute{}
			attrHasOp = false
		}
		afterDot = false
		afterColon = false
	}
	return sp
}

// unquoteCSSString strips the quotes of a CSS string token and decodes its
// escapes.
func unquoteCSSString(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	} else if len(s) >= 1 && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	return UnescapeCSS(s)
}
