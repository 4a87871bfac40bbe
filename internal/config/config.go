package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Environment variables overriding the config file
const (
	EnvSite   = "FORMGUARD_SITE"
	EnvListen = "FORMGUARD_LISTEN"
)

// Config represents the main configuration file structure
type Config struct {
	Locale   string         `json:"locale"` // "auto" or ISO format (e.g., "ko-KR", "en-US")
	Site     SiteConfig     `json:"site"`
	Server   ServerConfig   `json:"server"`
	Registry RegistryConfig `json:"registry"`
}

// SiteConfig locates the managed site
type SiteConfig struct {
	Root         string `json:"root"`         // site directory (plugins/, themes/, options.db)
	DefaultTheme string `json:"defaultTheme"` // fallback theme slug when deactivating a theme
	AllowInstall bool   `json:"allowInstall"` // install missing plugins from the site catalog
}

// ServerConfig contains AJAX server settings
type ServerConfig struct {
	Listen string              `json:"listen"`
	Tokens map[string][]string `json:"tokens"` // bearer token -> capabilities
}

// RegistryConfig contains integration registry settings
type RegistryConfig struct {
	Overrides string `json:"overrides,omitempty"` // YAML file merged over the builtin registry
}

var (
	cfg     *Config
	cfgOnce sync.Once
	cfgMu   sync.RWMutex
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Locale: "auto", // default: auto-detect system locale
		Site: SiteConfig{
			Root: DefaultSiteDir(),
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8087",
			Tokens: make(map[string][]string),
		},
	}
}

// Load loads the configuration from the default path
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the configuration from path and applies environment overrides.
// A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfgMu.RLock()
	defer cfgMu.RUnlock()

	config := NewConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	// Ensure maps are initialized
	if config.Server.Tokens == nil {
		config.Server.Tokens = make(map[string][]string)
	}

	// Set defaults for emptied values
	if config.Locale == "" {
		config.Locale = "auto"
	}
	if config.Site.Root == "" {
		config.Site.Root = DefaultSiteDir()
	}
	if config.Server.Listen == "" {
		config.Server.Listen = NewConfig().Server.Listen
	}

	if v := os.Getenv(EnvSite); v != "" {
		config.Site.Root = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		config.Server.Listen = v
	}

	return config, nil
}

// Save saves the configuration to the default path
func Save(config *Config) error {
	return SaveTo(ConfigPath(), config)
}

// SaveTo writes the configuration to path
func SaveTo(path string, config *Config) error {
	cfgMu.Lock()
	defer cfgMu.Unlock()

	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	// tokens are credentials
	return os.WriteFile(path, data, 0600)
}

// Get returns the current configuration (singleton)
func Get() *Config {
	cfgOnce.Do(func() {
		var err error
		cfg, err = Load()
		if err != nil {
			cfg = NewConfig()
		}
	})
	return cfg
}

// GetLocale returns the configured locale
func GetLocale() string {
	return Get().Locale
}

// Keys lists the settable keys in display order
var Keys = []string{
	"locale",
	"site.root",
	"site.defaultTheme",
	"site.allowInstall",
	"server.listen",
	"registry.overrides",
}

// Value returns the string form of a settable key
func (c *Config) Value(key string) (string, error) {
	switch key {
	case "locale":
		return c.Locale, nil
	case "site.root":
		return c.Site.Root, nil
	case "site.defaultTheme":
		return c.Site.DefaultTheme, nil
	case "site.allowInstall":
		return strconv.FormatBool(c.Site.AllowInstall), nil
	case "server.listen":
		return c.Server.Listen, nil
	case "registry.overrides":
		return c.Registry.Overrides, nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

// Set assigns a settable key from its string form.
// "server.tokens.<token>" takes a comma separated capability list; an empty
// value revokes the token.
func (c *Config) Set(key, value string) error {
	if token, ok := strings.CutPrefix(key, "server.tokens."); ok {
		if token == "" {
			return fmt.Errorf("token is empty")
		}
		if value == "" {
			delete(c.Server.Tokens, token)
			return nil
		}
		var caps []string
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				caps = append(caps, name)
			}
		}
		sort.Strings(caps)
		if c.Server.Tokens == nil {
			c.Server.Tokens = make(map[string][]string)
		}
		c.Server.Tokens[token] = caps
		return nil
	}

	switch key {
	case "locale":
		c.Locale = value
	case "site.root":
		c.Site.Root = value
	case "site.defaultTheme":
		c.Site.DefaultTheme = value
	case "site.allowInstall":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("site.allowInstall: %w", err)
		}
		c.Site.AllowInstall = b
	case "server.listen":
		c.Server.Listen = value
	case "registry.overrides":
		c.Registry.Overrides = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
