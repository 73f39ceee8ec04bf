package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Market    MarketConfig    `yaml:"market"`
	Ticker    TickerConfig    `yaml:"ticker"`
	News      NewsConfig      `yaml:"news"`
	Recommend RecommendConfig `yaml:"recommend"`
	Chat      ChatConfig      `yaml:"chat"`
	Store     StoreConfig     `yaml:"store"`
	Summary   SummaryConfig   `yaml:"summary"`
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"min=1,max=65535"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=trace debug info notice warn error fatal"`
}

type MarketConfig struct {
	TimeoutMs    int    `yaml:"timeout_ms" validate:"gt=0"`
	ChartBaseURL string `yaml:"chart_base_url" validate:"omitempty,url"`
}

type TickerConfig struct {
	Symbols            []string           `yaml:"symbols" validate:"min=1,dive,required"`
	IntervalSec        int                `yaml:"interval_sec" validate:"gt=0"`
	FailureIntervalSec int                `yaml:"failure_interval_sec" validate:"gt=0"`
	Seeds              map[string]float64 `yaml:"seeds" validate:"dive,gt=0"`
	Timezone           string             `yaml:"timezone"`
}

type NewsConfig struct {
	APIKey        string `yaml:"api_key" validate:"required"`
	BaseURL       string `yaml:"base_url" validate:"omitempty,url"`
	ScrapeBaseURL string `yaml:"scrape_base_url" validate:"omitempty,url"`
	Query         string `yaml:"query"`
	Count         int    `yaml:"count" validate:"gt=0"`
	TimeoutMs     int    `yaml:"timeout_ms" validate:"gt=0"`
}

type RecommendConfig struct {
	APIKey      string `yaml:"api_key" validate:"required"`
	BaseURL     string `yaml:"base_url" validate:"omitempty,url"`
	CacheTTLSec int    `yaml:"cache_ttl_sec" validate:"gte=0"`
	TimeoutMs   int    `yaml:"timeout_ms" validate:"gt=0"`
}

type ChatConfig struct {
	HistorySize int `yaml:"history_size" validate:"gt=0"`
}

type StoreConfig struct {
	Enabled       bool         `yaml:"enabled"`
	Sqlite        SqliteConfig `yaml:"sqlite"`
	RetentionDays int          `yaml:"retention_days" validate:"gte=0"`
	PruneSpec     string       `yaml:"prune_spec"`
}

type SqliteConfig struct {
	Path string `yaml:"path"`
}

type SummaryConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	ByAzure    bool   `yaml:"by_azure"`
	APIVersion string `yaml:"api_version"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info"},
		Market: MarketConfig{TimeoutMs: 5000},
		Ticker: TickerConfig{
			Symbols:            []string{"RELIANCE", "TCS", "HDFCBANK", "INFY", "TATAMOTORS", "WIPRO", "BAJFINANCE"},
			IntervalSec:        60,
			FailureIntervalSec: 30,
			Seeds: map[string]float64{
				"RELIANCE":   2830.45,
				"TCS":        3450.20,
				"HDFCBANK":   1640.30,
				"INFY":       1520.15,
				"TATAMOTORS": 780.10,
			},
			Timezone: "Asia/Kolkata",
		},
		News: NewsConfig{
			Query:     "indian stock market",
			Count:     5,
			TimeoutMs: 8000,
		},
		Recommend: RecommendConfig{
			CacheTTLSec: 30,
			TimeoutMs:   8000,
		},
		Chat: ChatConfig{HistorySize: 200},
		Store: StoreConfig{
			Enabled:       true,
			Sqlite:        SqliteConfig{Path: "data/app.db"},
			RetentionDays: 7,
			PruneSpec:     "@every 1h",
		},
		Summary: SummaryConfig{
			Enabled:   false,
			Model:     "gpt-4.1-mini",
			TimeoutMs: 10000,
		},
	}
}

// Load reads path over the defaults, applies .env and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv fills unset variables from path. A missing file is fine.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Server.Port = p
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		cfg.News.APIKey = v
	}
	if v := os.Getenv("RAPIDAPI_KEY"); v != "" {
		cfg.Recommend.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Summary.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	return nil
}

var envHints = map[string]string{
	"news.api_key":      "NEWS_API_KEY",
	"recommend.api_key": "RAPIDAPI_KEY",
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Validate reports every invalid field by its yaml path.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		msg := fmt.Sprintf("%s failed %q", field, fe.Tag())
		if env, ok := envHints[field]; ok {
			msg += fmt.Sprintf(" (set %s)", env)
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
