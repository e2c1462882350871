package csspurge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/yacobolo/csspurge/internal/purge"
)

// ScanStats tracks file scanning statistics
type ScanStats struct {
	FilesDiscovered int // Total files found by glob patterns
	FilesScanned    int // Files actually scanned (after filtering)
	FilesSkipped    int // Files skipped due to filtering
}

// ReadError is a content file that matched a glob but could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ReadError) Unwrap() error {
	return e.Err
}

var (
	// Directories that never hold application sources
	vendorDirs = []string{"node_modules", ".git"}

	// gitignore caching
	gitIgnoreCache *ignore.GitIgnore
	gitIgnoreOnce  sync.Once
)

// isVendored checks if a path lives under a dependency or VCS directory,
// or is a source map
func isVendored(path string) bool {
	if strings.HasSuffix(path, ".map") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		for _, dir := range vendorDirs {
			if part == dir {
				return true
			}
		}
	}
	return false
}

// loadGitIgnore loads the .gitignore file once (thread-safe)
// Gracefully degrades if .gitignore doesn't exist
func loadGitIgnore() *ignore.GitIgnore {
	gitIgnoreOnce.Do(func() {
		gi, err := ignore.CompileIgnoreFile(".gitignore")
		if err != nil {
			gitIgnoreCache = nil
			return
		}
		gitIgnoreCache = gi
	})
	return gitIgnoreCache
}

// shouldSkipFile determines if a content file should be excluded from scanning
//
// Three-layer filtering:
// 1. Pattern check (fast): dependency directories and source maps
// 2. User skip globs
// 3. Gitignore check: only for relative paths
func shouldSkipFile(path string, skip []string) bool {
	if isVendored(path) {
		return true
	}

	slashed := filepath.ToSlash(path)
	for _, pattern := range skip {
		if ok, _ := doublestar.Match(filepath.ToSlash(pattern), slashed); ok {
			return true
		}
	}

	// Absolute paths (like /tmp/...) are not affected by the project gitignore
	if !filepath.IsAbs(path) {
		gi := loadGitIgnore()
		if gi != nil && gi.MatchesPath(path) {
			return true
		}
	}

	return false
}

// expandGlobPatterns expands glob patterns to regular files, deduplicated
// and in match order. No filtering is applied.
func expandGlobPatterns(patterns []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			info, err := os.Stat(match)
			if err == nil && !info.IsDir() {
				allFiles = append(allFiles, match)
				seen[match] = true
			}
		}
	}

	return allFiles, nil
}

// expandGlobPatternsWithStats expands content globs, drops excluded paths
// and filtered files, and tracks statistics
func expandGlobPatternsWithStats(patterns, skip []string, exclude map[string]bool) ([]string, ScanStats, error) {
	var allFiles []string
	seen := make(map[string]bool)
	stats := ScanStats{}

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, stats, fmt.Errorf("glob pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true

			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			stats.FilesDiscovered++

			if exclude[absPath(match)] || shouldSkipFile(match, skip) {
				stats.FilesSkipped++
				continue
			}
			allFiles = append(allFiles, match)
			stats.FilesScanned++
		}
	}

	return allFiles, stats, nil
}

// LoadSourceUnits reads every content file matched by patterns. Files that
// are also purge targets (exclude) are never scanned. Unreadable files are
// reported and skipped.
func LoadSourceUnits(patterns, skip, exclude []string) ([]purge.SourceUnit, ScanStats, []ReadError, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, p := range exclude {
		excluded[absPath(p)] = true
	}

	files, stats, err := expandGlobPatternsWithStats(patterns, skip, excluded)
	if err != nil {
		return nil, stats, nil, err
	}

	units := make([]purge.SourceUnit, 0, len(files))
	var unread []ReadError
	for _, file := range files {
		// #nosec G304 - paths come from configured content globs
		content, err := os.ReadFile(file)
		if err != nil {
			unread = append(unread, ReadError{Path: file, Err: err})
			stats.FilesScanned--
			stats.FilesSkipped++
			continue
		}
		units = append(units, purge.SourceUnit{
			Name:    file,
			Content: string(content),
			Kind:    purge.KindFromPath(file),
		})
	}

	return units, stats, unread, nil
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// GetRelativePath returns a relative path from the current working directory
func GetRelativePath(absPath string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return absPath
	}

	rel, err := filepath.Rel(cwd, absPath)
	if err != nil {
		return absPath
	}

	return rel
}
