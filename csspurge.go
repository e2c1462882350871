// Package csspurge removes unused utility classes from generated stylesheets.
//
// csspurge scans an application's sources (markup, scripts and any other
// text) for class tokens, reconciles them against the class vocabulary of a
// utility framework and rewrites each stylesheet without the rules whose
// utilities never appear. Hand-written base styles are kept untouched.
//
// # Purging
//
// Purge the stylesheets of a build in place:
//
//	cfg := csspurge.DefaultConfig()
//	cfg.CSS = []string{"dist/**/*.css"}
//	cfg.Content = []string{"src/**/*.{html,js,svelte}"}
//	result, err := csspurge.Purge(ctx, cfg, nil)
//
// The vocabulary is read from csspurge.vocabulary.yaml (or .yml, .json, or a
// plain csspurge.classes.txt list) unless Config.VocabularyPath names a file.
//
// # Embedding
//
// Build tools that hold stylesheets in memory pass their own AssetStore:
//
//	store := csspurge.NewMemoryStore(csspurge.Asset{Name: "app.css", CSS: css})
//	result, err := csspurge.PurgeStore(ctx, cfg, store, nil)
//
// # CLI Tool
//
// Install with:
//
//	go install github.com/yacobolo/csspurge/cmd/csspurge@latest
package csspurge
