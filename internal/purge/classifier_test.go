package purge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(NewVocabulary([]string{"text-red-500", "p-4", "flex"}, ""))

	tests := []struct {
		token string
		want  Classification
	}{
		{"text-red-500", Classification{Base: "text-red-500", Static: true}},
		{"hover:text-red-500", Classification{Base: "text-red-500", Static: true}},
		{"md:hover:!flex", Classification{Base: "flex", Static: true}},
		{"!p-4", Classification{Base: "p-4", Static: true}},
		{"bg-[#bada55]", Classification{Base: "bg-[#bada55]", Arbitrary: true}},
		{"lg:grid-cols-[1fr_2fr]", Classification{Base: "grid-cols-[1fr_2fr]", Arbitrary: true}},
		{"bg-red-500/50", Classification{Base: "bg-red-500/50", Modifier: true}},
		{"bg-red-500/[.35]", Classification{Base: "bg-red-500/[.35]", Modifier: true}},
		{"btn", Classification{Base: "btn"}},
		{"bg-[]", Classification{Base: "bg-[]"}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got := c.Classify(tt.token)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.IsUtility(), c.IsUtility(tt.token))
		})
	}
}

func TestClassifyCustomSeparator(t *testing.T) {
	c := NewClassifier(NewVocabulary([]string{"flex"}, "_"))
	assert.True(t, c.IsUtility("md_hover_flex"))
	assert.False(t, c.IsUtility("md:flex"))
}

func TestLoadFrameworkConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "vocab.yaml")
		writeFile(t, path, `separator: "_"
classes:
  - flex
  - p-4
  - sm\:flex
content:
  - "src/**/*.html"
safelist:
  - "/^toast-/"
blocklist:
  - debug
`)
		fc, err := LoadFrameworkConfig(path)
		require.NoError(t, err)
		assert.Equal(t, path, fc.Path)
		assert.Equal(t, "_", fc.Separator)
		assert.Equal(t, []string{"flex", "p-4", "sm:flex"}, fc.Classes)
		assert.Equal(t, []string{"src/**/*.html"}, fc.Content)
		assert.Equal(t, []string{"/^toast-/"}, fc.Safelist)
		assert.Equal(t, []string{"debug"}, fc.Blocklist)

		vocab := fc.Vocabulary()
		assert.Equal(t, 3, vocab.Len())
		assert.Equal(t, "_", vocab.Separator())
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "vocab.json")
		writeFile(t, path, `{"classes": ["flex", "grid"]}`)
		fc, err := LoadFrameworkConfig(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultSeparator, fc.Separator)
		assert.Equal(t, []string{"flex", "grid"}, fc.Classes)
	})

	t.Run("class list", func(t *testing.T) {
		path := filepath.Join(dir, "classes.txt")
		writeFile(t, path, "# generated\nflex\n\n  p-4  \n")
		fc, err := LoadFrameworkConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"flex", "p-4"}, fc.Classes)
		assert.True(t, fc.Vocabulary().Has("p-4"))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		writeFile(t, path, "classes: [flex\n")
		_, err := LoadFrameworkConfig(path)
		require.Error(t, err)
	})
}

func TestResolveVocabularyPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := ResolveVocabularyPath("")
	require.ErrorIs(t, err, ErrVocabularyNotFound)

	_, err = ResolveVocabularyPath("missing.yaml")
	require.ErrorIs(t, err, ErrVocabularyNotFound)

	writeFile(t, filepath.Join(dir, "csspurge.classes.txt"), "flex\n")
	writeFile(t, filepath.Join(dir, "csspurge.vocabulary.yml"), "classes: [flex]\n")

	got, err := ResolveVocabularyPath("")
	require.NoError(t, err)
	assert.Equal(t, "csspurge.vocabulary.yml", filepath.Base(got))

	got, err = ResolveVocabularyPath("csspurge.classes.txt")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
