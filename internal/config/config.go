package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/awano27/fin-news-site/internal/item"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appName = "fin-news"

// Selectors locate the parts of an entry on an HTML list page.
type Selectors struct {
	Item      string `yaml:"item"`
	Title     string `yaml:"title"`
	Link      string `yaml:"link"`
	Summary   string `yaml:"summary,omitempty"`
	Time      string `yaml:"time,omitempty"`
	Thumbnail string `yaml:"thumbnail,omitempty"`
}

type Source struct {
	Name      string     `yaml:"name"`
	Type      string     `yaml:"type"` // rss, atom, html or json
	URL       string     `yaml:"url"`
	Category  string     `yaml:"category,omitempty"`
	Prefix    string     `yaml:"prefix,omitempty"`
	Locale    string     `yaml:"locale,omitempty"`
	Limit     int        `yaml:"limit,omitempty"`
	Enabled   bool       `yaml:"enabled"`
	Tags      []string   `yaml:"tags,omitempty"`
	Selectors *Selectors `yaml:"selectors,omitempty"`
}

// IDPrefix is the id namespace of items from this source: the configured
// prefix, or a slug of the name.
func (s Source) IDPrefix() string {
	if s.Prefix != "" {
		return s.Prefix
	}
	var b strings.Builder
	for _, r := range strings.ToLower(s.Name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "_"):
			b.WriteByte('_')
		}
	}
	slug := strings.TrimSuffix(b.String(), "_")
	if slug == "" {
		return "src"
	}
	return slug
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // json or sqlite
	Path   string `yaml:"path,omitempty"`
}

type EnrichConfig struct {
	Readability bool   `yaml:"readability"`
	Timeout     string `yaml:"timeout,omitempty"`
}

type AIConfig struct {
	Provider string `yaml:"provider"` // "claude" or "openai"
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

type Config struct {
	Store            StoreConfig  `yaml:"store"`
	Locale           string       `yaml:"locale"`
	Recency          string       `yaml:"recency"`
	ItemLimit        int          `yaml:"item_limit"`
	PerSourceLimit   int          `yaml:"per_source_limit"`
	CleanMode        bool         `yaml:"clean_mode"`
	PlaceholderHosts []string     `yaml:"placeholder_hosts,omitempty"`
	Schedule         string       `yaml:"schedule,omitempty"`
	Listen           string       `yaml:"listen,omitempty"`
	BriefSize        int          `yaml:"brief_size,omitempty"`
	Enrich           EnrichConfig `yaml:"enrich"`
	AI               *AIConfig    `yaml:"ai,omitempty"`
	Sources          []Source     `yaml:"sources"`
}

// AIEnabled returns true if AI is configured with a valid API key.
func (c *Config) AIEnabled() bool {
	return c.AI != nil && c.AIKey() != ""
}

// AIKey returns the resolved API key (config or env var).
func (c *Config) AIKey() string {
	if c.AI != nil && c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	return os.Getenv("FIN_NEWS_AI_KEY")
}

// RecencyDuration is the ingest cutoff and the default browse window.
func (c *Config) RecencyDuration() time.Duration {
	return ParseDuration(c.Recency, 24*time.Hour)
}

func (c *Config) EnrichTimeout() time.Duration {
	return ParseDuration(c.Enrich.Timeout, 10*time.Second)
}

// ParseDuration accepts Go durations plus "Nd" day syntax and returns def
// for anything else.
func ParseDuration(s string, def time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if strings.HasSuffix(s, "d") {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) SourceNames() []string {
	var names []string
	for _, s := range c.EnabledSources() {
		names = append(names, s.Name)
	}
	return names
}

// GetBriefSize returns the briefing size, defaulting to 5.
func (c *Config) GetBriefSize() int {
	if c.BriefSize <= 0 {
		return 5
	}
	return c.BriefSize
}

// StorePath returns the configured collection path or the XDG data default
// for the driver.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	name := "items.json"
	if c.Store.Driver == "sqlite" {
		name = "items.db"
	}
	return filepath.Join(xdg.DataHome, appName, name)
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load decodes the user file at path on top of the embedded defaults. A
// missing file is created from the defaults.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults still apply.
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	switch cfg.Store.Driver {
	case "", "json", "sqlite":
	default:
		return fmt.Errorf("store: unknown driver %q (valid: json, sqlite)", cfg.Store.Driver)
	}
	if cfg.ItemLimit < 0 || cfg.PerSourceLimit < 0 {
		return fmt.Errorf("item limits must not be negative")
	}

	validTypes := map[string]bool{"rss": true, "atom": true, "html": true, "json": true}
	seen := map[string]bool{}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("source %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: rss, atom, html, json)", s.Name, s.Type)
		}
		if s.Category != "" {
			if _, ok := item.ParseCategory(s.Category); !ok {
				return fmt.Errorf("source %q: unknown category %q (valid: market, company, sns)", s.Name, s.Category)
			}
		}
		if s.Type == "html" {
			if s.Selectors == nil || s.Selectors.Item == "" || s.Selectors.Title == "" || s.Selectors.Link == "" {
				return fmt.Errorf("source %q: html sources need item, title and link selectors", s.Name)
			}
		}
		if s.Limit < 0 {
			return fmt.Errorf("source %q: limit must not be negative", s.Name)
		}
	}
	return nil
}
