package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yacobolo/csspurge"
	"github.com/yacobolo/csspurge/internal/logger"
	"github.com/yacobolo/csspurge/internal/purge"
)

const defaultDebounce = 300 * time.Millisecond

var k = koanf.New(".")

// flagKeys maps command line flags to their config file keys, so a flag left
// at its default never shadows a value from the file or the environment.
var flagKeys = map[string]string{
	"css":                "purge.css",
	"content":            "purge.content",
	"skip":               "purge.skip",
	"out-dir":            "purge.out-dir",
	"safelist":           "purge.safelist",
	"safelist-greedy":    "purge.safelist-greedy",
	"blocklist":          "purge.blocklist",
	"legacy":             "purge.legacy",
	"dry-run":            "purge.dry-run",
	"strict":             "purge.strict",
	"max-literal-length": "purge.max-literal-length",
	"bracket-depth":      "purge.bracket-depth",
	"concurrency":        "purge.concurrency",
	"debounce":           "watch.debounce",
	"log-level":          "log.level",
	"log-format":         "log.format",
}

// Config sections whose keys are nested one level in the file.
var sections = []string{"purge", "watch", "log"}

// addPurgeFlags registers the purge options on f. They live on both the root
// command and the purge subcommand.
func addPurgeFlags(f *pflag.FlagSet) {
	f.StringSlice("css", []string{"dist/**/*.css"}, "Glob patterns of stylesheets to purge")
	f.StringSlice("content", nil, "Extra glob patterns of files to scan for classes")
	f.StringSlice("skip", nil, "Glob patterns of content files to ignore")
	f.String("out-dir", "", "Write purged stylesheets here instead of in place")
	f.StringSlice("safelist", nil, "Classes to always keep (/regex/ or exact)")
	f.StringSlice("safelist-greedy", nil, "Regular expressions that keep any selector they match")
	f.StringSlice("blocklist", nil, "Classes to always remove (/regex/ or exact)")
	f.Bool("legacy", false, "Purge all unused selectors, not only framework utilities")
	f.Bool("dry-run", false, "Report savings without writing files")
	f.Bool("strict", false, "Exit 1 when a stylesheet could not be purged")
	f.Int("max-literal-length", purge.DefaultMaxLiteralLength, "Longest literal split into class candidates (0=unlimited)")
	f.Int("bracket-depth", purge.DefaultBracketDepth, "Nesting depth of arbitrary values recognized")
	f.Int("concurrency", 0, "Files scanned in parallel (0=GOMAXPROCS)")
	f.String("output-format", "", "Output format: text|verbose|json")
	f.Int("max-items", 20, "Max entries per list in verbose output (0=unlimited)")
}

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = ".csspurge.yaml"
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags (highest precedence; defaults only fill keys still unset)
	fs := cmd.Flags()
	provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
		return configKey(f.Name), posflag.FlagVal(fs, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (CSSPURGE_* prefix)
	if err := k.Load(env.Provider("CSSPURGE_", ".", envKey), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

func configKey(flag string) string {
	if key, ok := flagKeys[flag]; ok {
		return key
	}
	return flag
}

// envKey maps an environment variable to a config key:
//
//	CSSPURGE_PURGE_OUT_DIR -> purge.out-dir
//	CSSPURGE_LOG_LEVEL     -> log.level
//	CSSPURGE_VOCABULARY    -> vocabulary
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "CSSPURGE_"))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(s, section+"_"); ok {
			return section + "." + strings.ReplaceAll(rest, "_", "-")
		}
	}
	return strings.ReplaceAll(s, "_", "-")
}

// buildPurgeConfig constructs the library's Config struct from koanf state.
func buildPurgeConfig() csspurge.Config {
	defaults := csspurge.DefaultConfig()

	return csspurge.Config{
		VocabularyPath:   getString("vocabulary", ""),
		CSS:              getStrings("purge.css", defaults.CSS),
		Content:          getStrings("purge.content", nil),
		Skip:             getStrings("purge.skip", nil),
		OutDir:           getString("purge.out-dir", ""),
		Safelist:         getStrings("purge.safelist", nil),
		SafelistGreedy:   getStrings("purge.safelist-greedy", nil),
		Blocklist:        getStrings("purge.blocklist", nil),
		Legacy:           getBool("purge.legacy", false),
		Debug:            getBool("debug", false),
		DryRun:           getBool("purge.dry-run", false),
		MaxLiteralLength: getInt("purge.max-literal-length", defaults.MaxLiteralLength),
		BracketDepth:     getInt("purge.bracket-depth", defaults.BracketDepth),
		Concurrency:      getInt("purge.concurrency", 0),
	}
}

// buildLoggerConfig constructs the logger configuration from koanf state.
func buildLoggerConfig() logger.Config {
	return logger.Config{
		Level:  getString("log.level", "warn"),
		Format: getString("log.format", logger.DefaultFormat),
	}
}

// watchDebounce returns the quiet period before a watch rebuild.
func watchDebounce() time.Duration {
	if !k.Exists("watch.debounce") {
		return defaultDebounce
	}
	if d := k.Duration("watch.debounce"); d > 0 {
		return d
	}
	return defaultDebounce
}

// getString returns the config value, or the default when unset or empty.
func getString(key, defaultVal string) string {
	if v := k.String(key); v != "" {
		return v
	}
	return defaultVal
}

// getStrings returns the config list, or the default when unset or empty.
// A plain string (from the environment) is split with splitList.
func getStrings(key string, defaultVal []string) []string {
	if !k.Exists(key) {
		return defaultVal
	}
	var values []string
	if v, ok := k.Get(key).(string); ok {
		values = splitList(v)
	} else {
		values = k.Strings(key)
	}

	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

// splitList splits a comma separated value. A comma inside a /regex/ entry,
// as in /^p-{1,2}$/, does not end the entry.
func splitList(s string) []string {
	var out []string
	var cur string
	open := false
	for _, part := range strings.Split(s, ",") {
		if open {
			cur += "," + part
		} else {
			cur = part
		}
		t := strings.TrimSpace(cur)
		open = strings.HasPrefix(t, "/") && (len(t) == 1 || !strings.HasSuffix(t, "/"))
		if !open {
			out = append(out, cur)
		}
	}
	if open {
		out = append(out, cur)
	}
	return out
}

// getBool returns the config value, or the default when unset.
func getBool(key string, defaultVal bool) bool {
	if k.Exists(key) {
		return k.Bool(key)
	}
	return defaultVal
}

// getInt returns the config value, or the default when unset.
func getInt(key string, defaultVal int) int {
	if k.Exists(key) {
		return k.Int(key)
	}
	return defaultVal
}
