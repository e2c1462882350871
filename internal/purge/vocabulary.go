package purge

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultVocabularyFiles are tried in order when no path is configured.
var DefaultVocabularyFiles = []string{
	"csspurge.vocabulary.yaml",
	"csspurge.vocabulary.yml",
	"csspurge.vocabulary.json",
	"csspurge.classes.txt",
}

// FrameworkConfig is the resolved utility-framework configuration: the class
// vocabulary, its separator, the content globs and the framework's own
// safelist and blocklist.
type FrameworkConfig struct {
	Path      string   `koanf:"-"`
	Separator string   `koanf:"separator"`
	Classes   []string `koanf:"classes"`
	Content   []string `koanf:"content"`
	Safelist  []string `koanf:"safelist"`
	Blocklist []string `koanf:"blocklist"`
}

// Vocabulary returns the class vocabulary described by the config.
func (fc *FrameworkConfig) Vocabulary() *Vocabulary {
	return NewVocabulary(fc.Classes, fc.Separator)
}

// ResolveVocabularyPath returns configured when it exists, otherwise the first
// existing default file. It fails with ErrVocabularyNotFound.
func ResolveVocabularyPath(configured string) (string, error) {
	if configured != "" {
		abs, err := filepath.Abs(configured)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", configured, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("%w: %s", ErrVocabularyNotFound, configured)
		}
		return abs, nil
	}

	for _, name := range DefaultVocabularyFiles {
		abs, err := filepath.Abs(name)
		if err != nil {
			continue
		}
		if _, err := os.Stat(abs); err == nil {
			return abs, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrVocabularyNotFound, strings.Join(DefaultVocabularyFiles, ", "))
}

// LoadFrameworkConfig reads a framework config. YAML and JSON files are read
// as structured config; any other extension is a class list with one class
// per line and '#' comments.
func LoadFrameworkConfig(path string) (*FrameworkConfig, error) {
	var fc *FrameworkConfig
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		fc, err = loadStructuredConfig(path)
	default:
		fc, err = loadClassList(path)
	}
	if err != nil {
		return nil, err
	}

	fc.Path = path
	if fc.Separator == "" {
		fc.Separator = DefaultSeparator
	}
	for i, c := range fc.Classes {
		fc.Classes[i] = UnescapeCSS(strings.TrimSpace(c))
	}
	return fc, nil
}

func loadStructuredConfig(path string) (*FrameworkConfig, error) {
	k := koanf.New(".")
	// JSON is a subset of YAML, so one parser covers both.
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading vocabulary %s: %w", path, err)
	}

	var fc FrameworkConfig
	if err := k.Unmarshal("", &fc); err != nil {
		return nil, fmt.Errorf("decoding vocabulary %s: %w", path, err)
	}
	return &fc, nil
}

func loadClassList(path string) (*FrameworkConfig, error) {
	// #nosec G304 - path comes from trusted configuration
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()

	fc := &FrameworkConfig{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fc.Classes = append(fc.Classes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return fc, nil
}
