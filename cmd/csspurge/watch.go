package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/yacobolo/csspurge"
	"github.com/yacobolo/csspurge/internal/logger"
	"github.com/yacobolo/csspurge/internal/purge"
)

// errWatchNeedsOutDir guards against purging the same stylesheet on every change.
var errWatchNeedsOutDir = errors.New("watch requires --out-dir so source stylesheets are never rewritten")

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Purge again whenever content or stylesheets change",
	Long: `Run a purge, then watch the stylesheet and content globs and run it again
after every burst of changes. Purged stylesheets are written to --out-dir.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runWatch,
}

func init() {
	addPurgeFlags(watchCmd.Flags())
	watchCmd.Flags().Duration("debounce", defaultDebounce, "Quiet period before purging again")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	config := buildPurgeConfig()
	if config.OutDir == "" {
		return errWatchNeedsOutDir
	}

	log, err := logger.New(buildLoggerConfig())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	run := func() {
		result, err := csspurge.Purge(ctx, config, log)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("purge failed", logger.Error(err))
			}
			return
		}
		if !getBool("quiet", false) {
			if err := writeResult(cmd, result); err != nil {
				log.Error("write output", logger.Error(err))
			}
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	outDir := absPath(config.OutDir)
	dirs := watchDirs(watchPatterns(config), outDir)
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			log.Warn("directory not watched", logger.String("file", dir), logger.Error(err))
		}
	}
	log.Info("watching", logger.Int("directories", len(dirs)), logger.String("out_dir", outDir))

	run()
	return watchLoop(ctx, watcher, watchDebounce(), outDir, run, log)
}

// watchLoop calls run once per burst of relevant events, after debounce of
// quiet. It returns when ctx is done.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, debounce time.Duration, outDir string, run func(), log logger.Logger) error {
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, outDir) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.Add(ev.Name)
				}
			}
			log.Debug("change detected", logger.String("file", ev.Name), logger.String("op", ev.Op.String()))
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", logger.Error(err))

		case <-timer.C:
			run()
		}
	}
}

// relevant reports whether ev should trigger a purge. Writes below outDir
// are the purge's own output.
func relevant(ev fsnotify.Event, outDir string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return !within(absPath(ev.Name), outDir)
}

// watchPatterns returns every glob a purge reads: stylesheets, the
// vocabulary file and its content globs, and the configured content.
func watchPatterns(config csspurge.Config) []string {
	patterns := append([]string{}, config.CSS...)
	patterns = append(patterns, config.Content...)

	path, err := purge.ResolveVocabularyPath(config.VocabularyPath)
	if err != nil {
		return patterns
	}
	patterns = append(patterns, path)
	if fw, err := purge.LoadFrameworkConfig(path); err == nil {
		patterns = append(patterns, fw.Content...)
	}
	return patterns
}

// watchDirs lists the directories to watch for patterns: the static base of
// each glob and, for recursive globs, every directory below it.
func watchDirs(patterns []string, outDir string) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		abs := absPath(dir)
		if seen[abs] || within(abs, outDir) {
			return
		}
		seen[abs] = true
		dirs = append(dirs, abs)
	}

	for _, p := range patterns {
		base, rest := doublestar.SplitPattern(filepath.ToSlash(p))
		base = filepath.FromSlash(base)
		if rest == "" || !strings.ContainsAny(rest, "*?[{") {
			// A plain file path: watch its directory.
			add(filepath.Dir(filepath.FromSlash(p)))
			continue
		}
		if !strings.Contains(rest, "**") && !strings.Contains(rest, "/") {
			add(base)
			continue
		}
		_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			switch d.Name() {
			case "node_modules", ".git":
				return filepath.SkipDir
			}
			if within(absPath(path), outDir) {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
	}
	return dirs
}

// within reports whether path is dir or below it.
func within(path, dir string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
