package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dvcrn/steepshot-go/internal/env"
)

const (
	DefaultLimit     = 10
	DefaultUserAgent = "steepshot-go"
	DefaultRateBurst = 1
)

// Config holds client settings. BaseURL has no default.
type Config struct {
	BaseURL      string  `yaml:"base_url"`
	UserAgent    string  `yaml:"user_agent"`
	DefaultLimit int     `yaml:"default_limit"`
	RateLimit    float64 `yaml:"rate_limit"`
	RateBurst    int     `yaml:"rate_burst"`
}

// Option overrides a setting after the file and the environment were read.
type Option func(*Config)

// WithBaseURL forces base_url, e.g. to point at a local mock API.
func WithBaseURL(u string) Option {
	return func(c *Config) { c.BaseURL = u }
}

// Load reads an optional YAML file, then applies environment overrides and
// opts. A .env file in the working directory is loaded first when present.
// An empty path skips the file.
func Load(path string, opts ...Option) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if strings.TrimSpace(path) != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		expanded := os.ExpandEnv(string(content))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := env.Get("STEEPSHOT_BASE_URL"); ok {
		c.BaseURL = v
	}
	if v, ok := env.Get("STEEPSHOT_USER_AGENT"); ok {
		c.UserAgent = v
	}
	if v, ok, err := env.Int("STEEPSHOT_DEFAULT_LIMIT"); err != nil {
		return err
	} else if ok {
		c.DefaultLimit = v
	}
	if v, ok, err := env.Float("STEEPSHOT_RATE_LIMIT"); err != nil {
		return err
	} else if ok {
		c.RateLimit = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = DefaultLimit
	}
	if c.RateBurst <= 0 {
		c.RateBurst = DefaultRateBurst
	}
}

// Validate checks the settings after defaults were applied.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url is invalid: %s", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("base_url must use http/https")
	}
	if c.RateLimit < 0 {
		return errors.New("rate_limit must not be negative")
	}
	return nil
}
