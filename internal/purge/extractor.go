package purge

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
	"golang.org/x/net/html"

	"github.com/yacobolo/csspurge/internal/pattern"
)

// DefaultBracketDepth is how deeply arbitrary values may nest brackets before
// the word pattern stops matching them.
const DefaultBracketDepth = 3

// DefaultMaxLiteralLength bounds how long a literal may be before it is kept as
// one opaque candidate instead of being split into words.
const DefaultMaxLiteralLength = 100_000

// Extractor turns one source unit into candidate tokens.
type Extractor interface {
	Extract(unit SourceUnit) (TokenSet, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(unit SourceUnit) (TokenSet, error)

// Extract calls f(unit).
func (f ExtractorFunc) Extract(unit SourceUnit) (TokenSet, error) {
	return f(unit)
}

// ExtractorOptions configures NewSelectorExtractor.
type ExtractorOptions struct {
	Separator    string
	BracketDepth int
	// MaxLiteralLength of 0 disables the limit.
	MaxLiteralLength int
	// Overrides replace the built-in tokenizer for a source kind.
	Overrides map[SourceKind]Extractor
}

// SelectorExtractor is the default Extractor. It dispatches on SourceKind,
// honoring per-kind overrides first.
type SelectorExtractor struct {
	words     *WordExtractor
	overrides map[SourceKind]Extractor
}

// NewSelectorExtractor builds the default extractor.
func NewSelectorExtractor(opts ExtractorOptions) (*SelectorExtractor, error) {
	words, err := NewWordExtractor(opts.Separator, opts.BracketDepth, opts.MaxLiteralLength)
	if err != nil {
		return nil, err
	}
	return &SelectorExtractor{words: words, overrides: opts.Overrides}, nil
}

// Extract never fails on malformed markup or generic text. A script unit that
// does not parse is scanned as plain words and its error returned for the
// caller to report.
func (e *SelectorExtractor) Extract(unit SourceUnit) (TokenSet, error) {
	if custom, ok := e.overrides[unit.Kind]; ok && custom != nil {
		return custom.Extract(unit)
	}

	switch unit.Kind {
	case KindScript:
		return e.extractScript(unit)
	case KindMarkup:
		out := e.words.Words(unit.Content)
		out.Merge(markupEvidence(unit.Content))
		return out, nil
	default:
		return e.words.Words(unit.Content), nil
	}
}

// WordExtractor splits literal text into utility-class-like words.
type WordExtractor struct {
	patterns []*regexp.Regexp
	maxLen   int
}

// NewWordExtractor compiles the word patterns for the given variant separator
// and bracket depth.
func NewWordExtractor(separator string, depth, maxLiteralLength int) (*WordExtractor, error) {
	if separator == "" {
		separator = DefaultSeparator
	}
	if depth < 1 {
		depth = DefaultBracketDepth
	}

	candidate, err := pattern.Compile(candidatePattern(separator, depth))
	if err != nil {
		return nil, fmt.Errorf("word pattern: %w", err)
	}
	inner, err := pattern.Compile(innerPattern)
	if err != nil {
		return nil, fmt.Errorf("inner word pattern: %w", err)
	}
	return &WordExtractor{patterns: []*regexp.Regexp{candidate, inner}, maxLen: maxLiteralLength}, nil
}

// innerPattern matches plain runs without brackets, quotes or markup.
const innerPattern = pattern.Fragment("[^<>\"'`\\s.(){}\\[\\]#=%$][^<>\"'`\\s(){}\\[\\]#=%$]*[^<>\"'`\\s.(){}\\[\\]#=%:$]|[^<>\"'`\\s.(){}\\[\\]#=%:$]")

// candidatePattern matches a variant chain followed by a utility:
//
//	[&>*]:hover:!bg-[#bada55]/50
func candidatePattern(separator string, depth int) pattern.Fragment {
	sep := pattern.Fragment(pattern.Escape(separator))
	sepChars := pattern.Escape(separator)
	brackets := pattern.BalancedBrackets("[", "]", depth)
	parens := pattern.BalancedBrackets("(", ")", depth)

	bracketVariant := pattern.Sequence(
		pattern.Fragment(`[\w-]*`),
		brackets,
		pattern.Optional(pattern.Fragment(`/[\w-]+`)),
	)
	plainVariant := pattern.Fragment("[^\\s\"'`\\\\\\[\\]<>{}()=" + sepChars + "]+")
	variants := pattern.ZeroOrMore(pattern.Alternation(bracketVariant, plainVariant), sep)

	modifier := pattern.Optional(pattern.Sequence(
		pattern.Fragment(`/`),
		pattern.Alternation(brackets, parens, pattern.Fragment(`[\w.-]+`)),
	))
	arbitrary := pattern.Sequence(
		pattern.Fragment(`-(?:\w+-)*`),
		pattern.Alternation(brackets, parens),
		modifier,
	)
	normal := pattern.Fragment("[-/][^\\s'\"`\\\\$={}><();,]*")
	named := pattern.Sequence(
		pattern.Fragment(`-?@?\w+`),
		pattern.Optional(pattern.Alternation(arbitrary, normal)),
	)
	utility := pattern.Alternation(pattern.Sequence(brackets, modifier), named)

	return pattern.Sequence(variants, pattern.Fragment(`!?`), utility, pattern.Fragment(`!?`))
}

// Words tokenizes text on whitespace and runs every word through the word
// patterns. Words longer than the literal limit are kept whole.
func (w *WordExtractor) Words(text string) TokenSet {
	out := TokenSet{}
	w.addWords(out, text)
	return out
}

// addLiteral adds a script literal, keeping it whole past the length limit.
func (w *WordExtractor) addLiteral(out TokenSet, text string) {
	if w.tooLong(text) {
		out.Add(text)
		return
	}
	w.addWords(out, text)
}

func (w *WordExtractor) addWords(out TokenSet, text string) {
	for _, word := range strings.Fields(text) {
		if w.tooLong(word) {
			out.Add(word)
			continue
		}
		for _, re := range w.patterns {
			for _, m := range re.FindAllString(word, -1) {
				out.Add(m)
			}
		}
	}
}

func (w *WordExtractor) tooLong(s string) bool {
	return w.maxLen > 0 && len(s) > w.maxLen
}

// extractScript walks the script syntax tree. String literals and template
// parts are split into words; identifiers are added verbatim.
func (e *SelectorExtractor) extractScript(unit SourceUnit) (TokenSet, error) {
	ast, err := js.Parse(parse.NewInputString(unit.Content), js.Options{})
	if err != nil {
		return e.words.Words(unit.Content), fmt.Errorf("parse script %s: %w", unit.Name, err)
	}

	v := &scriptVisitor{words: e.words, out: TokenSet{}}
	js.Walk(v, &ast.BlockStmt)
	return v.out, nil
}

type scriptVisitor struct {
	words *WordExtractor
	out   TokenSet
}

func (v *scriptVisitor) Enter(n js.INode) js.IVisitor {
	switch n := n.(type) {
	case *js.LiteralExpr:
		v.literal(n)
	case js.LiteralExpr:
		// member name after a dot, as in styles.container
		v.literal(&n)
	case *js.TemplateExpr:
		for _, part := range n.List {
			v.words.addLiteral(v.out, templateText(part.Value))
		}
		v.words.addLiteral(v.out, templateText(n.Tail))
	case *js.Var:
		v.out.Add(string(n.Data))
	case *js.ClassElementName:
		// method and field names; the walker does not descend here
		if n.Private != nil {
			break
		}
		if n.IsComputed() {
			js.Walk(v, n.Computed)
		} else {
			v.literal(&n.Literal)
		}
	case *js.LabelledStmt:
		v.out.Add(string(n.Label))
	case *js.BranchStmt:
		if n.Label != nil {
			v.out.Add(string(n.Label))
		}
	}
	return v
}

func (v *scriptVisitor) literal(n *js.LiteralExpr) {
	switch n.TokenType {
	case js.StringToken:
		v.words.addLiteral(v.out, unquoteJS(trimQuotes(string(n.Data))))
	case js.IdentifierToken:
		v.out.Add(string(n.Data))
	}
}

func (v *scriptVisitor) Exit(js.INode) {}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// templateText returns the cooked text of one template part. Parts keep
// their delimiters: a leading ` or }, a trailing ${ or `.
func templateText(raw []byte) string {
	s := string(raw)
	if strings.HasPrefix(s, "`") || strings.HasPrefix(s, "}") {
		s = s[1:]
	}
	if strings.HasSuffix(s, "${") {
		s = s[:len(s)-2]
	} else if strings.HasSuffix(s, "`") {
		s = s[:len(s)-1]
	}
	return unquoteJS(s)
}

// unquoteJS decodes the escape sequences of a string literal body.
func unquoteJS(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch c = s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\r':
			// line continuation, \r\n counts as one
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '\n':
		case 'x':
			if r, n := hexRune(s[i+1:], 2); n > 0 {
				b.WriteRune(r)
				i += n
			} else {
				b.WriteByte(c)
			}
		case 'u':
			if strings.HasPrefix(s[i+1:], "{") {
				end := strings.IndexByte(s[i+1:], '}')
				if end > 1 {
					if r, n := hexRune(s[i+2:i+1+end], end-1); n == end-1 {
						b.WriteRune(r)
						i += end + 1
						continue
					}
				}
				b.WriteByte(c)
			} else if r, n := hexRune(s[i+1:], 4); n > 0 {
				b.WriteRune(r)
				i += n
			} else {
				b.WriteByte(c)
			}
		default:
			if strings.HasPrefix(s[i:], "\u2028") || strings.HasPrefix(s[i:], "\u2029") {
				i += len("\u2028") - 1
				continue
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

// hexRune decodes exactly n hex digits from the start of s. It returns the
// number of bytes consumed, or 0 when s does not start with n hex digits.
func hexRune(s string, n int) (rune, int) {
	if n < 1 || len(s) < n || !isHex(s[:n]) {
		return 0, 0
	}
	cp, err := strconv.ParseUint(s[:n], 16, 32)
	if err != nil || cp > utf8.MaxRune {
		return 0, 0
	}
	return rune(cp), n
}

// markupEvidence collects tag names, ids, class tokens and attribute names and
// values from an HTML document.
func markupEvidence(content string) TokenSet {
	out := TokenSet{}
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return out
	}

	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			out.Add(n.Data)
			for _, attr := range n.Attr {
				out.Add(attr.Key)
				switch attr.Key {
				case "class":
					for _, class := range strings.Fields(attr.Val) {
						out.Add(class)
					}
				default:
					out.Add(attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return out
}
