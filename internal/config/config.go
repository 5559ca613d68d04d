package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"codetutor/internal/llm"
)

// DefaultIncludePatterns keeps the file types worth explaining in a
// tutorial: source code, build files and top-level docs.
var DefaultIncludePatterns = []string{
	"*.go", "*.py", "*.js", "*.jsx", "*.ts", "*.tsx",
	"*.java", "*.c", "*.cc", "*.cpp", "*.h", "*.hpp", "*.rs",
	"*.md", "*.rst",
	"Dockerfile", "Makefile", "*.yaml", "*.yml", "*.toml",
}

// DefaultExcludePatterns drops generated output, vendored trees and tests.
var DefaultExcludePatterns = []string{
	"assets/**", "data/**", "examples/**", "images/**", "public/**",
	"static/**", "temp/**", "docs/**", "venv/**", ".venv/**",
	"*test*", "tests/**", "v1/**", "dist/**", "build/**",
	"experimental/**", "deprecated/**", "misc/**", "legacy/**",
	".git/**", ".github/**", ".next/**", ".vscode/**",
	"obj/**", "bin/**", "node_modules/**", "*.log",
}

// DefaultMaxFileSize is the per-file byte cap before a file is skipped.
const DefaultMaxFileSize int64 = 300_000

// Config is the full set of knobs for one tutorial run. Fields map 1:1 to
// CLI flags; a YAML file can pre-set any of them.
type Config struct {
	Repo   string `yaml:"repo"`
	Dir    string `yaml:"dir"`
	Name   string `yaml:"name"`
	Token  string `yaml:"-"` // never persisted; env or flag only
	Output string `yaml:"output"`

	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`
	MaxFileSize int64    `yaml:"max_file_size"`

	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`

	UseCache  bool   `yaml:"use_cache"`
	CacheFile string `yaml:"cache_file"`
	LogDir    string `yaml:"log_dir"`

	Workers    int      `yaml:"workers"`
	MaxRetries int      `yaml:"max_retries"`
	RetryWait  Duration `yaml:"retry_wait"`

	Zip bool `yaml:"zip"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Output:      "output",
		Include:     DefaultIncludePatterns,
		Exclude:     DefaultExcludePatterns,
		MaxFileSize: DefaultMaxFileSize,
		Provider:    string(llm.ProviderGemini),
		UseCache:    true,
		CacheFile:   "llm_cache.json",
		LogDir:      "logs",
		Workers:     1,
		MaxRetries:  3,
		RetryWait:   Duration(10 * time.Second),
	}
}

// Duration is a time.Duration that YAML-decodes from strings like "10s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("config: duration %q: %w", node.Value, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// LoadFile merges a YAML file into cfg. A missing file is not an error, so
// an optional config path can be passed unconditionally.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations that cannot start a run.
func (c *Config) Validate() error {
	if c.Repo == "" && c.Dir == "" {
		return fmt.Errorf("config: either repo or dir is required")
	}
	if c.Repo != "" && c.Dir != "" {
		return fmt.Errorf("config: repo and dir are mutually exclusive")
	}
	if _, err := llm.ParseProvider(c.Provider); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("config: max_file_size must be positive")
	}
	return nil
}
