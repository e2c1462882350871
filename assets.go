package csspurge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yacobolo/csspurge/internal/purge"
)

// Asset is a named stylesheet.
type Asset = purge.Asset

// AssetStore exposes the stylesheets to purge and accepts their rewritten
// text.
type AssetStore interface {
	// Assets returns the stylesheets in a stable order.
	Assets() ([]Asset, error)
	// Replace stores the purged text of the named asset and returns where it
	// was written.
	Replace(name, css string) (string, error)
}

// FileStore reads stylesheets matched by glob patterns. Purged text is
// written back in place, or mirrored below OutDir when set.
type FileStore struct {
	Patterns []string
	OutDir   string
}

// NewFileStore creates a store over the stylesheets matching patterns.
func NewFileStore(patterns []string, outDir string) *FileStore {
	return &FileStore{Patterns: patterns, OutDir: outDir}
}

// Assets reads every matching stylesheet.
func (s *FileStore) Assets() ([]Asset, error) {
	files, err := expandGlobPatterns(s.Patterns)
	if err != nil {
		return nil, fmt.Errorf("scan stylesheets: %w", err)
	}

	assets := make([]Asset, 0, len(files))
	for _, file := range files {
		// #nosec G304 - paths come from configured stylesheet globs
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read stylesheet: %w", err)
		}
		assets = append(assets, Asset{Name: file, CSS: string(content)})
	}
	return assets, nil
}

// Replace writes css for the named stylesheet.
func (s *FileStore) Replace(name, css string) (string, error) {
	dest := s.Destination(name)

	perm := os.FileMode(0o644)
	if info, err := os.Stat(name); err == nil {
		perm = info.Mode().Perm()
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(dest, []byte(css), perm); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

// Destination is the path Replace writes name to. Paths outside the working
// directory keep only their base name below OutDir.
func (s *FileStore) Destination(name string) string {
	if s.OutDir == "" {
		return name
	}
	rel := name
	if filepath.IsAbs(rel) {
		rel = GetRelativePath(rel)
	}
	rel = filepath.Clean(rel)
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(name)
	}
	return filepath.Join(s.OutDir, rel)
}

// MemoryStore keeps stylesheets in memory, for embedding csspurge in other
// build tools.
type MemoryStore struct {
	mu    sync.Mutex
	names []string
	css   map[string]string
}

// NewMemoryStore creates a store holding assets.
func NewMemoryStore(assets ...Asset) *MemoryStore {
	s := &MemoryStore{css: make(map[string]string, len(assets))}
	for _, a := range assets {
		if _, ok := s.css[a.Name]; !ok {
			s.names = append(s.names, a.Name)
		}
		s.css[a.Name] = a.CSS
	}
	return s
}

// Assets returns the stored stylesheets in insertion order.
func (s *MemoryStore) Assets() ([]Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Asset, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, Asset{Name: name, CSS: s.css[name]})
	}
	return out, nil
}

// Replace overwrites the named stylesheet.
func (s *MemoryStore) Replace(name, css string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.css[name]; !ok {
		return "", fmt.Errorf("unknown asset %q", name)
	}
	s.css[name] = css
	return name, nil
}

// CSS returns the current text of the named stylesheet.
func (s *MemoryStore) CSS(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.css[name]
}
