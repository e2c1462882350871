package csspurge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/csspurge/internal/purge"
)

const appCSS = ".text-red-500 { color: red; }\n.p-4 { padding: 1rem; }\n.unused-utility { display: none; }\n"

// setupProject writes a vocabulary, one page and one stylesheet below dir.
func setupProject(t *testing.T) (dir string, cfg Config) {
	t.Helper()
	dir = t.TempDir()
	vocab := writeFile(t, dir, "csspurge.vocabulary.yaml", `
classes:
  - text-red-500
  - p-4
  - unused-utility
  - toast-error
`)
	writeFile(t, dir, "src/index.html", `<p class="text-red-500 p-4">hi</p>`)
	writeFile(t, dir, "dist/app.css", appCSS)

	cfg = DefaultConfig()
	cfg.VocabularyPath = vocab
	cfg.CSS = []string{filepath.Join(dir, "dist", "*.css")}
	cfg.Content = []string{filepath.Join(dir, "src", "**", "*.html")}
	return dir, cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestPurge(t *testing.T) {
	dir, cfg := setupProject(t)

	result, err := Purge(context.Background(), cfg, nil)
	require.NoError(t, err)

	want := ".text-red-500 { color: red; }\n.p-4 { padding: 1rem; }\n"
	assert.Equal(t, want, readFile(t, filepath.Join(dir, "dist", "app.css")))

	_, err = uuid.Parse(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesScanned)
	assert.Empty(t, result.Warnings)

	require.Len(t, result.Stylesheets, 1)
	s := result.Stylesheets[0]
	assert.Equal(t, len(appCSS), s.SizeBefore)
	assert.Equal(t, len(want), s.SizeAfter)
	assert.Equal(t, []string{"unused-utility"}, s.ForcedRemoved)
	assert.Equal(t, []string{"p-4", "text-red-500"}, s.Observed)
	assert.Equal(t, s.File, s.Output)
	assert.Nil(t, result.Debug)
}

func TestPurgeOutDir(t *testing.T) {
	dir, cfg := setupProject(t)
	t.Chdir(dir)
	cfg.CSS = []string{"dist/*.css"}
	cfg.OutDir = "out"

	result, err := Purge(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, appCSS, readFile(t, filepath.Join(dir, "dist", "app.css")))
	assert.Equal(t, filepath.Join("out", "dist", "app.css"), result.Stylesheets[0].Output)
	assert.NotContains(t, readFile(t, filepath.Join(dir, "out", "dist", "app.css")), "unused-utility")
}

func TestPurgeDryRun(t *testing.T) {
	dir, cfg := setupProject(t)
	cfg.DryRun = true

	result, err := Purge(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, appCSS, readFile(t, filepath.Join(dir, "dist", "app.css")))
	assert.True(t, result.DryRun)
	assert.Empty(t, result.Stylesheets[0].Output)
	assert.Less(t, result.Stylesheets[0].SizeAfter, result.Stylesheets[0].SizeBefore)
}

func TestPurgeVocabularyDiscovery(t *testing.T) {
	dir, cfg := setupProject(t)
	t.Chdir(dir)
	cfg.VocabularyPath = ""

	result, err := Purge(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "csspurge.vocabulary.yaml"), result.VocabularyPath)
}

func TestPurgeVocabularyNotFound(t *testing.T) {
	dir := t.TempDir()
	css := writeFile(t, dir, "app.css", appCSS)
	t.Chdir(dir)

	cfg := DefaultConfig()
	cfg.CSS = []string{css}

	_, err := Purge(context.Background(), cfg, nil)
	require.ErrorIs(t, err, purge.ErrVocabularyNotFound)
	assert.Equal(t, appCSS, readFile(t, css))

	t.Run("legacy mode needs none", func(t *testing.T) {
		writeFile(t, dir, "index.html", `<p class="text-red-500"></p>`)
		cfg.Legacy = true
		cfg.Content = []string{filepath.Join(dir, "*.html")}

		result, err := Purge(context.Background(), cfg, nil)
		require.NoError(t, err)
		assert.True(t, result.Legacy)
		assert.Equal(t, ".text-red-500 { color: red; }\n", readFile(t, css))
	})
}

func TestPurgeMalformedStylesheet(t *testing.T) {
	dir, cfg := setupProject(t)
	broken := writeFile(t, dir, "dist/broken.css", ".p-4 {")

	result, err := Purge(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, ".p-4 {", readFile(t, broken))
	require.Len(t, result.Stylesheets, 2)

	var skipped StylesheetResult
	for _, s := range result.Stylesheets {
		if s.Skipped {
			skipped = s
		}
	}
	assert.Equal(t, broken, skipped.File)
	assert.Contains(t, skipped.Error, "malformed")
	assert.Len(t, result.Warnings, 1)
}

func TestPurgeStoreProtectionAndDebug(t *testing.T) {
	dir, cfg := setupProject(t)
	cfg.Safelist = []string{"/^toast-/"}
	cfg.Blocklist = []string{"p-4"}
	cfg.Debug = true

	store := NewMemoryStore(Asset{Name: "bundle.css", CSS: ".toast-error{} .p-4{} .text-red-500{} .btn{}"})
	result, err := PurgeStore(context.Background(), cfg, store, nil)
	require.NoError(t, err)

	assert.Equal(t, ".toast-error{} .text-red-500{} .btn{}", store.CSS("bundle.css"))
	require.NotNil(t, result.Debug)
	assert.Equal(t, []string{"toast-error"}, result.Debug.Spared)
	assert.Contains(t, result.Debug.ForcedRemove, "p-4")
	assert.Contains(t, result.Debug.Candidates, filepath.Join(dir, "src", "index.html"))

	// The stylesheet on disk is not a target of this run.
	assert.Equal(t, appCSS, readFile(t, filepath.Join(dir, "dist", "app.css")))
}

func TestPurgeInvalidSafelist(t *testing.T) {
	_, cfg := setupProject(t)
	cfg.SafelistGreedy = []string{"/[/"}

	_, err := Purge(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "safelist")
}

func TestPurgeCancelled(t *testing.T) {
	dir, cfg := setupProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Purge(ctx, cfg, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, appCSS, readFile(t, filepath.Join(dir, "dist", "app.css")))
}
