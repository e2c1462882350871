package purge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStylesheetRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		css  string
	}{
		{"empty", ""},
		{"single rule", ".btn { color: red; }"},
		{"comments and whitespace", "/* header */\n\n.a{color:red}\n  /* between */ .b , .c {}\n"},
		{"media group", "@media (min-width: 640px) {\n  .sm\\:flex { display: flex; }\n}\n"},
		{"keyframes", "@keyframes spin { from { transform: rotate(0) } to { transform: rotate(360deg) } }"},
		{"statements", "@charset \"utf-8\";\n@import url(\"x.css\");\n@layer base, components;\n"},
		{"braces in strings", ".q::before { content: \"}\"; }"},
		{"nesting", ".card { color: red; &:hover { color: blue; } }"},
		{"deep nesting", ".a{.b{.c{x:y}}z:w}"},
		{"custom property block", ".a { --x: { b: c }; }"},
		{"unterminated statement", ".a{} @import \"x.css\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := ParseStylesheet(tt.css)
			require.NoError(t, err)
			assert.Equal(t, tt.css, sheet.String())
		})
	}
}

func TestParseStylesheetNodes(t *testing.T) {
	css := "@import \"a.css\";\n.a { x: 1 }\n@media print { .b {} .c {} }\n@font-face { font-family: X; }"
	sheet, err := ParseStylesheet(css)
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 4)

	assert.Equal(t, NodeStatement, sheet.Nodes[0].Kind)
	assert.Equal(t, "import", sheet.Nodes[0].AtName)

	assert.Equal(t, NodeRule, sheet.Nodes[1].Kind)
	assert.Equal(t, "\n", sheet.Nodes[1].Leading)
	assert.Equal(t, ".a ", sheet.Nodes[1].Prelude)
	assert.Equal(t, " x: 1 ", sheet.Nodes[1].Body)

	assert.Equal(t, NodeGroup, sheet.Nodes[2].Kind)
	assert.Equal(t, "media", sheet.Nodes[2].AtName)
	assert.Len(t, sheet.Nodes[2].Children, 2)
	assert.Equal(t, " ", sheet.Nodes[2].Trailing)

	assert.Equal(t, NodeAtBlock, sheet.Nodes[3].Kind)
	assert.Equal(t, "font-face", sheet.Nodes[3].AtName)

	var preludes []string
	sheet.Walk(func(n *Node) { preludes = append(preludes, n.Prelude) })
	assert.Equal(t, []string{".a ", ".b ", ".c "}, preludes)
}

func TestParseStylesheetNestedRules(t *testing.T) {
	sheet, err := ParseStylesheet(".card { color: red; .m-2 & { margin: 0 } @media print { &:hover { x: y } } }")
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 1)

	card := sheet.Nodes[0]
	assert.Equal(t, NodeRule, card.Kind)
	require.Len(t, card.Children, 3)
	assert.Equal(t, NodeStatement, card.Children[0].Kind)
	assert.Equal(t, "color: red;", card.Children[0].Prelude)
	assert.Equal(t, NodeRule, card.Children[1].Kind)
	assert.Equal(t, NodeGroup, card.Children[2].Kind)

	var preludes []string
	sheet.Walk(func(n *Node) { preludes = append(preludes, n.Prelude) })
	assert.Equal(t, []string{".card ", ".m-2 & ", "&:hover "}, preludes)

	assert.Equal(t, []string{"card", "m-2"}, Index(sheet).Classes.Sorted())
}

func TestParseStylesheetMalformed(t *testing.T) {
	for _, css := range []string{
		".a { color: red;",
		"}",
		"@media print { .a {} ",
	} {
		t.Run(css, func(t *testing.T) {
			_, err := ParseStylesheet(css)
			require.ErrorIs(t, err, ErrMalformedStylesheet)
		})
	}
}

func TestSplitSelectorList(t *testing.T) {
	tests := []struct {
		prelude string
		want    []string
	}{
		{".a", []string{".a"}},
		{".a, .b ", []string{".a", " .b "}},
		{":is(.a, .b), .c", []string{":is(.a, .b)", " .c"}},
		{"[data-x=\"a,b\"], p", []string{"[data-x=\"a,b\"]", " p"}},
	}

	for _, tt := range tests {
		t.Run(tt.prelude, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSelectorList(tt.prelude))
		})
	}
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		want     SelectorParts
	}{
		{
			name:     "class",
			selector: ".btn",
			want:     SelectorParts{Classes: []string{"btn"}},
		},
		{
			name:     "escaped variant",
			selector: ".hover\\:bg-red-500:hover",
			want:     SelectorParts{Classes: []string{"hover:bg-red-500"}},
		},
		{
			name:     "arbitrary value",
			selector: ".bg-\\[\\#bada55\\]",
			want:     SelectorParts{Classes: []string{"bg-[#bada55]"}},
		},
		{
			name:     "compound",
			selector: "a[data-state=\"open\"] > #main .btn:not(.disabled)::before",
			want: SelectorParts{
				Classes:    []string{"btn"},
				IDs:        []string{"main"},
				Tags:       []string{"a"},
				Attributes: []Attribute{{Name: "data-state", Value: "open", HasValue: true}},
				Nested:     []string{"disabled"},
			},
		},
		{
			name:     "attribute without value",
			selector: "input[disabled]",
			want: SelectorParts{
				Tags:       []string{"input"},
				Attributes: []Attribute{{Name: "disabled"}},
			},
		},
		{
			name:     "prefix match",
			selector: "[href^=http]",
			want:     SelectorParts{Attributes: []Attribute{{Name: "href", Value: "http", HasValue: true}}},
		},
		{
			name:     "universal",
			selector: "*",
			want:     SelectorParts{},
		},
		{
			name:     "root",
			selector: ":root",
			want:     SelectorParts{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSelector(tt.selector))
		})
	}
}

func TestIndex(t *testing.T) {
	css := `
html, body { margin: 0; }
#app .btn[type="submit"] { color: red; }
@media (min-width: 640px) {
  .sm\:flex { display: flex; }
}
.\3A hover { color: blue; }
.card:not(.is-open) { display: none; }
@keyframes fade { from { opacity: 0 } }
`
	sheet, err := ParseStylesheet(css)
	require.NoError(t, err)
	ds := Index(sheet)

	assert.Equal(t, []string{":hover", "btn", "card", "is-open", "sm:flex"}, ds.Classes.Sorted())
	assert.Equal(t, []string{"app"}, ds.IDs.Sorted())
	assert.Equal(t, []string{"body", "html"}, ds.Tags.Sorted())
	assert.Equal(t, []string{"type"}, ds.AttributeNames.Sorted())
	assert.Equal(t, []string{"submit"}, ds.AttributeValues.Sorted())
}

func TestUnescapeCSS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"btn", "btn"},
		{"hover\\:flex", "hover:flex"},
		{"\\3A hover", ":hover"},
		{"\\000031 x", "1x"},
		{"w-1\\/2", "w-1/2"},
		{"bg-\\[\\#fff\\]", "bg-[#fff]"},
		{"\\D800", "�"},
		{"a�b", "a\x00b"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, UnescapeCSS(tt.in))
		})
	}
}

func TestUnescapePlainTokensUnchanged(t *testing.T) {
	for _, s := range []string{"btn", "text-red-500", "p-4", "_internal", "a1b2"} {
		assert.Equal(t, s, UnescapeCSS(s))
	}
}
