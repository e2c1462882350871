package purge

import (
	"strings"

	"github.com/yacobolo/csspurge/internal/pattern"
)

// DefaultSeparator splits variants from the utility, as in hover:flex.
const DefaultSeparator = ":"

var (
	// bg-[#bada55]
	arbitraryClass = pattern.MustCompile(
		pattern.Fragment(pattern.Escape("-[")), pattern.Fragment(`.+`), pattern.Fragment(pattern.Escape("]")+"$"),
	)
	// bg-red-500/50, text-black/[.35]
	colorOpacityClass = pattern.MustCompile(
		pattern.Fragment("/"),
		pattern.Alternation(pattern.Fragment(pattern.Escape("[")+`.+`+pattern.Escape("]")), pattern.Fragment(`\d+`)),
		pattern.Fragment("$"),
	)
)

// Vocabulary is the authoritative set of static utility class names plus the
// variant separator. It is read-only once built.
type Vocabulary struct {
	classes   TokenSet
	separator string
}

// NewVocabulary builds a vocabulary. An empty separator means DefaultSeparator.
func NewVocabulary(classes []string, separator string) *Vocabulary {
	if separator == "" {
		separator = DefaultSeparator
	}
	return &Vocabulary{classes: NewTokenSet(classes...), separator: separator}
}

// Has reports whether class is a static vocabulary entry.
func (v *Vocabulary) Has(class string) bool {
	return v.classes.Has(class)
}

// Len returns the number of static classes.
func (v *Vocabulary) Len() int {
	return len(v.classes)
}

// Separator returns the variant separator.
func (v *Vocabulary) Separator() string {
	return v.separator
}

// Classification describes how a token was recognized.
type Classification struct {
	Base      string // token with variants and ! markers removed
	Static    bool   // Base is in the vocabulary
	Arbitrary bool   // Base ends in -[...]
	Modifier  bool   // Base ends in /<digits> or /[...]
}

// IsUtility reports whether the token is a generated utility class.
func (c Classification) IsUtility() bool {
	return c.Static || c.Arbitrary || c.Modifier
}

// Classifier decides whether canonical tokens are generated utility classes.
type Classifier struct {
	vocab *Vocabulary
}

// NewClassifier returns a classifier over vocab.
func NewClassifier(vocab *Vocabulary) *Classifier {
	return &Classifier{vocab: vocab}
}

// Classify strips important markers, drops the variant chain and checks the
// remaining base class. Vocabularies can only enumerate static classes, so
// arbitrary values and opacity modifiers are recognized by shape.
func (c *Classifier) Classify(token string) Classification {
	stripped := strings.ReplaceAll(token, "!", "")
	parts := strings.Split(stripped, c.vocab.separator)
	base := parts[len(parts)-1]

	return Classification{
		Base:      base,
		Static:    c.vocab.Has(base),
		Arbitrary: arbitraryClass.MatchString(base),
		Modifier:  colorOpacityClass.MatchString(base),
	}
}

// IsUtility is shorthand for Classify(token).IsUtility().
func (c *Classifier) IsUtility(token string) bool {
	return c.Classify(token).IsUtility()
}
