package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/media-resolver/internal/provider"
	"github.com/Digital-Shane/media-resolver/internal/provider/legacy"
	"github.com/Digital-Shane/media-resolver/internal/provider/tmdb"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// MEDIA_RESOLVER_TMDB_API_TOKEN.
const EnvPrefix = "MEDIA_RESOLVER"

// Config holds everything the resolver reads at startup. It also serves as
// the locale and proxy preference source for the providers.
type Config struct {
	TMDBAPIToken    string `mapstructure:"tmdb_api_token"`
	TMDBBaseURL     string `mapstructure:"tmdb_base_url"`
	TMDBFallbackURL string `mapstructure:"tmdb_fallback_url"`
	TMDBWorkerCount int    `mapstructure:"tmdb_worker_count"`
	LegacyBaseURL   string `mapstructure:"legacy_base_url"`

	Locale      string   `mapstructure:"language"`
	EnableProxy bool     `mapstructure:"proxy_enabled"`
	Proxies     []string `mapstructure:"proxy_urls"`

	LogLevel         string `mapstructure:"log_level"`
	LogFormat        string `mapstructure:"log_format"`
	LogFile          string `mapstructure:"log_file"`
	LogRetentionDays int    `mapstructure:"log_retention_days"`

	ListenAddr string `mapstructure:"listen_addr"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDBBaseURL:      tmdb.DefaultBaseURL,
		TMDBFallbackURL:  tmdb.DefaultFallbackURL,
		TMDBWorkerCount:  4,
		LegacyBaseURL:    legacy.DefaultBaseURL,
		Locale:           provider.DefaultLanguage,
		EnableProxy:      false,
		Proxies:          []string{},
		LogLevel:         "info",
		LogFormat:        "text",
		LogFile:          "",
		LogRetentionDays: 30,
		ListenAddr:       ":8080",
	}
}

// ConfigPath returns the path to the default config file
func ConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".media-resolver", "config.yaml"), nil
}

// Load reads the configuration from path, or from the default location when
// path is empty, then applies environment overrides. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	v := newViper()

	if path == "" {
		if def, err := ConfigPath(); err == nil {
			path = def
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Proxies = cleanProxies(cfg.Proxies)
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	for key, value := range c.values() {
		v.Set(key, value)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Language implements provider.Locale.
func (c *Config) Language() string {
	return provider.NormalizeLanguage(c.Locale)
}

// ProxyEnabled implements provider.Preferences.
func (c *Config) ProxyEnabled() bool {
	return c.EnableProxy
}

// ProxyURLs implements provider.Preferences.
func (c *Config) ProxyURLs() []string {
	return c.Proxies
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only covers keys viper already knows about.
	for key, value := range DefaultConfig().values() {
		v.SetDefault(key, value)
	}
	return v
}

func (c *Config) values() map[string]any {
	return map[string]any{
		"tmdb_api_token":     c.TMDBAPIToken,
		"tmdb_base_url":      c.TMDBBaseURL,
		"tmdb_fallback_url":  c.TMDBFallbackURL,
		"tmdb_worker_count":  c.TMDBWorkerCount,
		"legacy_base_url":    c.LegacyBaseURL,
		"language":           c.Locale,
		"proxy_enabled":      c.EnableProxy,
		"proxy_urls":         c.Proxies,
		"log_level":          c.LogLevel,
		"log_format":         c.LogFormat,
		"log_file":           c.LogFile,
		"log_retention_days": c.LogRetentionDays,
		"listen_addr":        c.ListenAddr,
	}
}

func cleanProxies(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
