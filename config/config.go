package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreHTTP     = "http"
)

type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Player  PlayerConfig  `yaml:"player"`
	Google  GoogleConfig  `yaml:"google"`
	AI      AIConfig      `yaml:"ai"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresURL string `yaml:"postgres_url"`
	HTTPBaseURL string `yaml:"http_base_url"`
	HTTPToken   string `yaml:"http_token"`
}

type PlayerConfig struct {
	SocketPath  string `yaml:"socket_path"`
	Captions    bool   `yaml:"captions"`
	CaptionLang string `yaml:"caption_lang"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	APIKey       string `yaml:"api_key"`
	TokenPath    string `yaml:"token_path"`
}

type AIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	RateLimit    float64       `yaml:"rate_limit"` // requests per second per user
	RateBurst    int           `yaml:"rate_burst"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Dir returns ~/.config/deepfocus.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "deepfocus")
}

// DataDir returns the directory for the database, token and log file.
func DataDir() string {
	if base, err := os.UserHomeDir(); err == nil {
		return filepath.Join(base, ".local", "share", "deepfocus")
	}
	return "data"
}

// DefaultPath is the config file read when --config is not given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	data := DataDir()
	return &Config{
		Store: StoreConfig{
			Driver:      StoreSQLite,
			SQLitePath:  filepath.Join(data, "deepfocus.db"),
			HTTPBaseURL: "http://localhost:8787",
		},
		Player: PlayerConfig{
			SocketPath:  "/tmp/deepfocus-mpv.sock",
			Captions:    true,
			CaptionLang: "en",
		},
		Google: GoogleConfig{
			TokenPath: filepath.Join(data, "token.json"),
		},
		AI: AIConfig{
			BaseURL: "https://api.openai.com",
			Model:   "gpt-4o-mini",
		},
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8787,
			TokenTTL:    30 * 24 * time.Hour,
			RateLimit:   5,
			RateBurst:   20,
			ReadTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads path over Default. A missing file is not an error. DEEPFOCUS_* environment
// variables override secrets and the store driver.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreSQLite, StorePostgres, StoreHTTP:
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == StorePostgres && c.Store.PostgresURL == "" {
		return errors.New("config: store.postgres_url is required for the postgres driver")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	return nil
}

func applyEnv(c *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("DEEPFOCUS_STORE_DRIVER", &c.Store.Driver)
	str("DEEPFOCUS_DATABASE_URL", &c.Store.PostgresURL)
	str("DEEPFOCUS_API_URL", &c.Store.HTTPBaseURL)
	str("DEEPFOCUS_API_TOKEN", &c.Store.HTTPToken)
	str("DEEPFOCUS_GOOGLE_CLIENT_ID", &c.Google.ClientID)
	str("DEEPFOCUS_GOOGLE_CLIENT_SECRET", &c.Google.ClientSecret)
	str("DEEPFOCUS_YOUTUBE_API_KEY", &c.Google.APIKey)
	str("DEEPFOCUS_AI_API_KEY", &c.AI.APIKey)
	str("DEEPFOCUS_AI_BASE_URL", &c.AI.BaseURL)
	str("DEEPFOCUS_JWT_SECRET", &c.Server.JWTSecret)
	str("DEEPFOCUS_LOG_LEVEL", &c.Logging.Level)
	if v, ok := lookup("DEEPFOCUS_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}
