package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/csspurge"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetKoanf()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// setupProject writes a vocabulary, one page and one stylesheet into a fresh
// working directory.
func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	files := map[string]string{
		"csspurge.vocabulary.yaml": "classes: [text-red-500, p-4, unused-utility]\ncontent: [\"src/**/*.html\"]\n",
		"src/index.html":           `<p class="text-red-500 p-4">hi</p>`,
		"dist/app.css":             ".text-red-500 { color: red; }\n.p-4 { padding: 1rem; }\n.unused-utility { display: none; }\n",
	}
	for name, content := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
		require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	}
	return dir
}

func TestInitCommand_CreatesConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created .csspurge.yaml")

	data, err := os.ReadFile(".csspurge.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "purge:")
	assert.Contains(t, string(data), "watch:")
	assert.NoFileExists(t, "csspurge.vocabulary.yaml")
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".csspurge.yaml", []byte("existing"), 0644))

	_, err := execute(t, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCommand_ForceOverwriteWithStub(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".csspurge.yaml", []byte("existing"), 0644))

	_, err := execute(t, "init", "--force", "--vocabulary-stub")
	require.NoError(t, err)

	data, err := os.ReadFile(".csspurge.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "purge:")
	assert.FileExists(t, "csspurge.vocabulary.yaml")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "csspurge dev\n", out)
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "csspurge")

	_, err = execute(t, "completion", "tcsh")
	require.Error(t, err)
}

func TestPurgeCommand(t *testing.T) {
	setupProject(t)

	out, err := execute(t, "purge", "--output-format", "json")
	require.NoError(t, err)

	var got csspurge.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.RunID)
	assert.Equal(t, 1, got.Summary.FilesScanned)
	require.Len(t, got.Stylesheets, 1)
	assert.Equal(t, []string{"unused-utility"}, got.Stylesheets[0].ForcedRemoved)

	data, err := os.ReadFile("dist/app.css")
	require.NoError(t, err)
	assert.Equal(t, ".text-red-500 { color: red; }\n.p-4 { padding: 1rem; }\n", string(data))
}

func TestPurgeCommand_ConfigFileDryRun(t *testing.T) {
	setupProject(t)
	require.NoError(t, os.WriteFile(".csspurge.yaml", []byte("purge:\n  dry-run: true\n"), 0o644))

	_, err := execute(t, "purge")
	require.NoError(t, err)

	data, err := os.ReadFile("dist/app.css")
	require.NoError(t, err)
	assert.Contains(t, string(data), "unused-utility")
}

func TestPurgeCommand_MissingVocabulary(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "purge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class vocabulary not found")
}

func TestRootRunsPurge(t *testing.T) {
	setupProject(t)

	_, err := execute(t, "--quiet", "--css", "dist/*.css")
	require.NoError(t, err)

	data, err := os.ReadFile("dist/app.css")
	require.NoError(t, err)
	assert.NotContains(t, string(data), "unused-utility")
}

func TestWatchRequiresOutDir(t *testing.T) {
	setupProject(t)

	_, err := execute(t, "watch")
	require.ErrorIs(t, err, errWatchNeedsOutDir)
}

func TestWatchDirs(t *testing.T) {
	dir := setupProject(t)
	require.NoError(t, os.MkdirAll(filepath.Join("src", "components"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join("src", "node_modules", "x"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join("out", "dist"), 0o755))

	dirs := watchDirs([]string{"src/**/*.html", "dist/*.css", "csspurge.vocabulary.yaml", "out/**/*.css"}, filepath.Join(dir, "out"))

	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "src"),
		filepath.Join(dir, "src", "components"),
		filepath.Join(dir, "dist"),
		dir,
	}, dirs)
}

func TestRelevant(t *testing.T) {
	out := filepath.Join(string(filepath.Separator), "project", "out")

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"source write", fsnotify.Event{Name: "/project/src/a.html", Op: fsnotify.Write}, true},
		{"source removed", fsnotify.Event{Name: "/project/src/a.html", Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: "/project/src/a.html", Op: fsnotify.Chmod}, false},
		{"own output", fsnotify.Event{Name: "/project/out/dist/app.css", Op: fsnotify.Write}, false},
		{"sibling of output", fsnotify.Event{Name: "/project/outline.css", Op: fsnotify.Write}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.ev, out))
		})
	}
}
