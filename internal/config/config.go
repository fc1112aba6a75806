package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Journal JournalConfig `mapstructure:"journal"`
	UI      UIConfig      `mapstructure:"ui"`
}

// EngineConfig says where the engine listens and how long to wait for it.
type EngineConfig struct {
	URL            string        `mapstructure:"url"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// JournalConfig holds the journal location. A .jsonl path selects the JSONL
// backend, anything else is SQLite.
type JournalConfig struct {
	Path    string `mapstructure:"path"`
	Enabled bool   `mapstructure:"enabled"`
}

type UIConfig struct {
	AltScreen bool `mapstructure:"alt_screen"`
}

func home() string {
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return h
	}
	return os.Getenv("HOME")
}

// Path is the config file location: $TIGER_CONFIG, else
// $TIGER_CONFIG_DIR/config.toml, else ~/.config/tiger/config.toml.
func Path() string {
	if p := strings.TrimSpace(os.Getenv("TIGER_CONFIG")); p != "" {
		return p
	}
	if d := strings.TrimSpace(os.Getenv("TIGER_CONFIG_DIR")); d != "" {
		return filepath.Join(d, "config.toml")
	}
	return filepath.Join(home(), ".config", "tiger", "config.toml")
}

func defaults(v *viper.Viper) {
	v.SetDefault("engine.url", "ws://127.0.0.1:7878/engine")
	v.SetDefault("engine.dial_timeout", "5s")
	v.SetDefault("engine.request_timeout", "30s")
	v.SetDefault("journal.path", filepath.Join(home(), ".local", "share", "tiger", "journal.sqlite"))
	v.SetDefault("journal.enabled", true)
	v.SetDefault("ui.alt_screen", true)
}

// Keys lists every setting in dotted form, sorted.
func Keys() []string {
	v := viper.New()
	defaults(v)
	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

// Load reads configuration from file and env. Env var overrides use prefix TIGER_.
func Load() (Config, error) {
	v := viper.New()
	defaults(v)
	v.SetConfigType("toml")

	path := Path()
	v.SetConfigFile(path)

	v.SetEnvPrefix("TIGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

func (c Config) viper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.Set("engine.url", c.Engine.URL)
	v.Set("engine.dial_timeout", c.Engine.DialTimeout.String())
	v.Set("engine.request_timeout", c.Engine.RequestTimeout.String())
	v.Set("journal.path", c.Journal.Path)
	v.Set("journal.enabled", c.Journal.Enabled)
	v.Set("ui.alt_screen", c.UI.AltScreen)
	return v
}

// Get returns the value of one dotted key as text.
func (c Config) Get(key string) (string, error) {
	if !known(key) {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return fmt.Sprint(c.viper().Get(key)), nil
}

// Set parses value into the setting named by key.
func (c *Config) Set(key, value string) error {
	if !known(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	v := c.viper()
	v.Set(key, value)
	var next Config
	if err := v.Unmarshal(&next); err != nil {
		return fmt.Errorf("config %s: %w", key, err)
	}
	*c = next
	return nil
}

func known(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	if err := cfg.viper().WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
