package pattern

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "hover", want: "hover"},
		{name: "separator colon", in: ":", want: ":"},
		{name: "metacharacters", in: `a.b*c`, want: `a\.b\*c`},
		{name: "brackets", in: "[x]", want: `\[x\]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestEscapedTextMatchesLiterally(t *testing.T) {
	for _, text := range []string{"w-1/2", "bg-[#fff]", "a+b", "(x)|{y}", "$^"} {
		re := regexp.MustCompile("^" + Escape(text) + "$")
		assert.True(t, re.MatchString(text), text)
	}
}

func TestComposition(t *testing.T) {
	compiled := regexp.MustCompile(`b+`)

	assert.Equal(t, Fragment("a"+`b+`), Sequence(Fragment("a"), compiled))
	assert.Equal(t, Fragment(`(?:a|b+)`), Alternation(Fragment("a"), compiled))
	assert.Equal(t, Fragment(`(?:a)?`), Optional(Fragment("a")))
	assert.Equal(t, Fragment(`(?:ab+)*`), ZeroOrMore(Fragment("a"), compiled))
	assert.Equal(t, Fragment(`(?:ab+)`), NonCapturing(Fragment("a"), compiled))

	re, err := Compile(Fragment("^"), Optional(Fragment("-")), Fragment(`\w+`), Fragment("$"))
	require.NoError(t, err)
	assert.True(t, re.MatchString("-mt"))
	assert.False(t, re.MatchString("--mt"))
}

func TestCompileInvalid(t *testing.T) {
	_, err := Compile(Fragment("(unclosed"))
	require.Error(t, err)
	assert.Panics(t, func() { MustCompile(Fragment("[")) })
}

func TestBalancedBrackets(t *testing.T) {
	tests := []struct {
		name      string
		depth     int
		input     string
		wantMatch string
		wantStart int
	}{
		{name: "depth 1 flat", depth: 1, input: "foo(bar)baz", wantMatch: "(bar)", wantStart: 3},
		{name: "depth 1 nested only inner", depth: 1, input: "foo(bar(baz)qux)", wantMatch: "(baz)", wantStart: 7},
		{name: "depth 2 nested whole", depth: 2, input: "foo(bar(baz)qux)", wantMatch: "(bar(baz)qux)", wantStart: 3},
		{name: "depth 2 too deep", depth: 2, input: "a(b(c(d)))", wantMatch: "(c(d))", wantStart: 3},
		{name: "depth 3 deep", depth: 3, input: "a(b(c(d)))", wantMatch: "(b(c(d)))", wantStart: 1},
		{name: "whitespace never matches", depth: 2, input: "(a b)", wantMatch: "", wantStart: -1},
		{name: "zero depth treated as one", depth: 0, input: "x(y)", wantMatch: "(y)", wantStart: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := MustCompile(BalancedBrackets("(", ")", tt.depth))
			loc := re.FindStringIndex(tt.input)
			if tt.wantStart < 0 {
				assert.Nil(t, loc)
				return
			}
			require.NotNil(t, loc)
			assert.Equal(t, tt.wantStart, loc[0])
			assert.Equal(t, tt.wantMatch, tt.input[loc[0]:loc[1]])
		})
	}
}

func TestBalancedSquareBrackets(t *testing.T) {
	re := MustCompile(Fragment(`\w+-`), BalancedBrackets("[", "]", 2))
	assert.Equal(t, "w-[calc(100%-theme(spacing[2]))]", re.FindString("w-[calc(100%-theme(spacing[2]))]"))
	assert.Equal(t, "bg-[#bada55]", re.FindString(`"bg-[#bada55]"`))
}
