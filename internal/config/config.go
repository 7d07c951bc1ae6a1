// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"go-jobposting-collector/internal/scraper"
)

const DefaultPath = "configs/config.yaml"

type ServerConfig struct {
	Port          string `yaml:"port"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type Config struct {
	BackendURL string `yaml:"backend_url" env:"BACKEND_URL"`
	//Paths
	PrefsPath     string `yaml:"prefs_path"`
	CookiesPath   string `yaml:"cookies_path"`
	ScreenshotDir string `yaml:"screenshot_dir"`
	//Browser
	Headless    bool          `yaml:"headless"`
	SaveTimeout time.Duration `yaml:"save_timeout"`
	//Logging
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format"`
	//Record API
	Server         ServerConfig  `yaml:"server"`
	DatabaseURL    string        `yaml:"database_url" env:"DATABASE_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	TelegramToken  string        `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64         `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	Selectors scraper.SelectorOverrides `yaml:"selectors"`
}

// Load reads .env, then the YAML file at path, then environment overrides.
// A missing YAML file leaves the defaults in place.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"BACKEND_URL":        &c.BackendURL,
		"DATABASE_URL":       &c.DatabaseURL,
		"PORT":               &c.Server.Port,
		"PUBLIC_BASE_URL":    &c.Server.PublicBaseURL,
		"TELEGRAM_BOT_TOKEN": &c.TelegramToken,
		"LOG_LEVEL":          &c.LogLevel,
	}
	for key, field := range overrides {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.BackendURL == "" {
		c.BackendURL = "http://localhost:3000"
	}
	if c.PrefsPath == "" {
		c.PrefsPath = ".cache/preferences.json"
	}
	if c.CookiesPath == "" {
		c.CookiesPath = ".cookies/linkedin.json"
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "screenshots"
	}
	if c.SaveTimeout == 0 {
		c.SaveTimeout = 3 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Server.Port == "" {
		c.Server.Port = "3000"
	}
	if c.Server.PublicBaseURL == "" {
		c.Server.PublicBaseURL = "http://localhost:" + c.Server.Port
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend_url must be an http(s) URL, got %q", c.BackendURL)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.SaveTimeout < 0 || c.RequestTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
