package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	FAQ     FAQConfig     `toml:"faq"`
	Client  ClientConfig  `toml:"client"`
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`
	Tracing TracingConfig `toml:"tracing"`
}

type ServerConfig struct {
	Bind      string `toml:"bind"`
	Port      int    `toml:"port"`
	AuthToken string `toml:"auth_token"`
}

type FAQConfig struct {
	Path      string  `toml:"path"`
	Threshold float64 `toml:"threshold"`
	Greeting  string  `toml:"greeting"`
	Goodbye   string  `toml:"goodbye"`
	Fallback  string  `toml:"fallback"`
	// ReloadInterval is a schedule ("30s", "@every 1m", "@hourly") for
	// re-reading the FAQ file. Empty disables reloading.
	ReloadInterval string `toml:"reload_interval"`
}

type ClientConfig struct {
	BaseURL string `toml:"base_url"`
	// Timeout is a Go duration string. Empty or "0" means the request runs
	// until the server answers or the connection fails.
	Timeout string `toml:"timeout"`
}

type StoreConfig struct {
	Enabled bool   `toml:"enabled"`
	DSN     string `toml:"dsn"`
	// Retention is how long query log entries are kept, e.g. "720h".
	// Empty or "0" keeps them forever.
	Retention string `toml:"retention"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type TracingConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	// SampleRatio is the fraction of new traces recorded, in [0, 1].
	// 0 or 1 records every trace.
	SampleRatio float64 `toml:"sample_ratio"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Bind: "loopback",
			Port: 8000,
		},
		FAQ: FAQConfig{
			Path:           filepath.Join(DataDir(), "faqs.json"),
			Threshold:      0.1,
			ReloadInterval: "30s",
		},
		Client: ClientConfig{
			BaseURL: "http://127.0.0.1:8000/api",
		},
		Store: StoreConfig{
			Enabled: true,
			DSN:     filepath.Join(DataDir(), "faqbot.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var (
	current *Config
	mu      sync.RWMutex
)

func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Store.DSN == "" {
		cfg.Store.DSN = filepath.Join(DataDir(), "faqbot.db")
	}
	if cfg.FAQ.Path == "" {
		cfg.FAQ.Path = filepath.Join(DataDir(), "faqs.json")
	}
	if _, err := cfg.Client.RequestTimeout(); err != nil {
		return nil, err
	}
	if _, err := cfg.Store.RetentionPeriod(); err != nil {
		return nil, err
	}
	if cfg.FAQ.Threshold <= 0 || cfg.FAQ.Threshold > 1 {
		return nil, fmt.Errorf("invalid faq.threshold %v: must be in (0, 1]", cfg.FAQ.Threshold)
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return nil, fmt.Errorf("invalid tracing.sample_ratio %v: must be in [0, 1]", cfg.Tracing.SampleRatio)
	}

	mu.Lock()
	current = cfg
	mu.Unlock()

	return cfg, nil
}

func Current() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return Default()
	}
	return current
}

// RequestTimeout parses Timeout; zero means no timeout.
func (c ClientConfig) RequestTimeout() (time.Duration, error) {
	return optionalDuration("client.timeout", c.Timeout)
}

// RetentionPeriod parses Retention; zero means entries are never pruned.
func (s StoreConfig) RetentionPeriod() (time.Duration, error) {
	return optionalDuration("store.retention", s.Retention)
}

func optionalDuration(key, v string) (time.Duration, error) {
	if v == "" || v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, v)
	}
	return d, nil
}

func DataDir() string {
	if dir := os.Getenv("FAQBOT_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".faqbot"
	}
	return filepath.Join(home, ".faqbot")
}

func DefaultConfigPath() string {
	return filepath.Join(DataDir(), "faqbot.toml")
}

func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0700)
}
