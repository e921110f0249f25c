// Package config loads the clientguard configuration from defaults, a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// FileName is the configuration file looked up in the scan root.
const FileName = ".clientguard.toml"

// Environment variables overriding file values.
const (
	EnvTrigger      = "CLIENTGUARD_TRIGGER"
	EnvGuardLine    = "CLIENTGUARD_GUARD_LINE"
	EnvScanRoot     = "CLIENTGUARD_SCAN_ROOT"
	EnvExcludedDirs = "CLIENTGUARD_EXCLUDED_DIRS"
	EnvFileSuffixes = "CLIENTGUARD_FILE_SUFFIXES"
	EnvFactoryName  = "CLIENTGUARD_FACTORY_NAME"
	EnvImportLine   = "CLIENTGUARD_IMPORT_LINE"
)

// Placeholders accepted in guard_line_template.
const (
	clientPlaceholder  = "{{client}}"
	factoryPlaceholder = "{{factory}}"
)

var (
	ErrEmptyTrigger   = errors.New("trigger_substring must not be empty")
	ErrEmptyGuard     = errors.New("guard_line_template must not be empty")
	ErrMultilineGuard = errors.New("guard_line_template must be a single line")
	ErrNoSuffixes     = errors.New("file_suffixes must name at least one suffix")
)

type Config struct {
	TriggerSubstring   string   `toml:"trigger_substring"`
	GuardLineTemplate  string   `toml:"guard_line_template"`
	ScanRoot           string   `toml:"scan_root"`
	ExcludedDirs       []string `toml:"excluded_dirs"`
	FileSuffixes       []string `toml:"file_suffixes"`
	ExcludeGlobs       []string `toml:"exclude_globs"`
	ScopePatterns      []string `toml:"scope_patterns"`
	FactoryName        string   `toml:"factory_name"`
	ImportLine         string   `toml:"import_line"`
	AddImport          bool     `toml:"add_import"`
	RespectIgnoreFiles bool     `toml:"respect_ignore_files"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() *Config {
	return &Config{
		TriggerSubstring:  "supabase.",
		GuardLineTemplate: "    const {{client}} = {{factory}}()",
		ScanRoot:          ".",
		ExcludedDirs:      []string{"node_modules", ".git"},
		FileSuffixes:      []string{".ts", ".tsx"},
		ExcludeGlobs:      []string{},
		ScopePatterns:     []string{},
		FactoryName:       "getSupabaseClient",
	}
}

// Read loads path over the defaults. A missing file is not an error.
func Read(path string) (*Config, error) {
	defaultConfig := Default()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return defaultConfig, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return defaultConfig, err
	}

	config := Default()

	err = toml.Unmarshal(file, config)
	if err != nil {
		return defaultConfig, fmt.Errorf("parse %s: %w", path, err)
	}

	if config.ExcludedDirs == nil {
		config.ExcludedDirs = defaultConfig.ExcludedDirs
	}

	if config.FileSuffixes == nil {
		config.FileSuffixes = defaultConfig.FileSuffixes
	}

	if config.ExcludeGlobs == nil {
		config.ExcludeGlobs = []string{}
	}

	if config.ScopePatterns == nil {
		config.ScopePatterns = []string{}
	}

	return config, nil
}

// Load resolves the configuration for a run: defaults, then the TOML file, then the
// environment (a .env file in the working directory is loaded first).
// When path is empty the file is looked up as FileName inside root.
func Load(path, root string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		if root == "" {
			root = firstNonEmpty(strings.TrimSpace(os.Getenv(EnvScanRoot)), ".")
		}

		path = filepath.Join(root, FileName)
	}

	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if root != "" {
		cfg.ScanRoot = root
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.TriggerSubstring = firstNonEmpty(os.Getenv(EnvTrigger), c.TriggerSubstring)
	c.GuardLineTemplate = firstNonEmpty(os.Getenv(EnvGuardLine), c.GuardLineTemplate)
	c.ScanRoot = firstNonEmpty(strings.TrimSpace(os.Getenv(EnvScanRoot)), c.ScanRoot)
	c.FactoryName = firstNonEmpty(strings.TrimSpace(os.Getenv(EnvFactoryName)), c.FactoryName)
	c.ImportLine = firstNonEmpty(os.Getenv(EnvImportLine), c.ImportLine)

	if dirs := splitList(os.Getenv(EnvExcludedDirs)); len(dirs) > 0 {
		c.ExcludedDirs = dirs
	}

	if suffixes := splitList(os.Getenv(EnvFileSuffixes)); len(suffixes) > 0 {
		c.FileSuffixes = suffixes
	}
}

// Validate reports the first problem that would make a run meaningless.
func (c *Config) Validate() error {
	if c.TriggerSubstring == "" {
		return ErrEmptyTrigger
	}

	if strings.TrimSpace(c.GuardLineTemplate) == "" {
		return ErrEmptyGuard
	}

	if strings.ContainsAny(c.GuardLineTemplate, "\r\n") {
		return ErrMultilineGuard
	}

	if len(c.Suffixes()) == 0 {
		return ErrNoSuffixes
	}

	for _, pattern := range c.ScopePatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("scope_patterns: %w", err)
		}
	}

	return nil
}

// GuardLine expands the guard template placeholders.
func (c *Config) GuardLine() string {
	line := strings.ReplaceAll(c.GuardLineTemplate, clientPlaceholder, c.ClientName())

	return strings.ReplaceAll(line, factoryPlaceholder, c.FactoryName)
}

// ClientName is the identifier the trigger calls through, e.g. "supabase" for "supabase.".
func (c *Config) ClientName() string {
	name := strings.TrimSpace(c.TriggerSubstring)
	if i := strings.IndexAny(name, ".?(["); i >= 0 {
		name = name[:i]
	}

	return name
}

// Suffixes returns the configured file suffixes with a leading dot, lower-cased.
func (c *Config) Suffixes() []string {
	suffixes := make([]string, 0, len(c.FileSuffixes))

	for _, suffix := range c.FileSuffixes {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if suffix == "" {
			continue
		}

		if !strings.HasPrefix(suffix, ".") {
			suffix = "." + suffix
		}

		suffixes = append(suffixes, suffix)
	}

	return suffixes
}

// Marshal renders the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func splitList(value string) []string {
	var items []string

	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}

	return items
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
