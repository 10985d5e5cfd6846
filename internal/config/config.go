package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendGemini    = "gemini"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	FeedProviderFile   string        `mapstructure:"feed_provider_file"`
	DefaultRegion      string        `mapstructure:"default_region"`
	UserAgent          string        `mapstructure:"user_agent"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	SummarizerBackend string `mapstructure:"summarizer_backend"`
	SummarizerModel   string `mapstructure:"summarizer_model"`
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	OpenAIAPIKey      string `mapstructure:"openai_api_key"`
	AnthropicAPIKey   string `mapstructure:"anthropic_api_key"`

	StorageType        string `mapstructure:"storage_type"`
	BBoltPath          string `mapstructure:"bbolt_path"`
	RedisURL           string `mapstructure:"redis_url"`
	PreferencesProfile string `mapstructure:"preferences_profile"`

	PublishersFile string `mapstructure:"publishers_file"`
	ServerAddr     string `mapstructure:"server_addr"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "neura-briefing")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("feed_provider_file", "")
	v.SetDefault("default_region", "IN")
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("summarizer_backend", BackendGemini)
	v.SetDefault("summarizer_model", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/preferences.db")
	v.SetDefault("redis_url", "")
	v.SetDefault("preferences_profile", "default")
	v.SetDefault("publishers_file", "")
	v.SetDefault("server_addr", ":7860")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	return &cfg, nil
}

func (c *Config) normalize() {
	c.DefaultRegion = strings.ToUpper(strings.TrimSpace(c.DefaultRegion))
	c.SummarizerBackend = strings.ToLower(strings.TrimSpace(c.SummarizerBackend))
	c.SummarizerModel = strings.TrimSpace(c.SummarizerModel)
	c.StorageType = strings.ToLower(strings.TrimSpace(c.StorageType))
	c.PreferencesProfile = strings.TrimSpace(c.PreferencesProfile)
	if c.PreferencesProfile == "" {
		c.PreferencesProfile = "default"
	}
}

// Validate fails fast on settings that would otherwise only surface on first use.
func (c *Config) Validate() error {
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	if !IsRegionCode(c.DefaultRegion) {
		return fmt.Errorf("invalid default_region %q (expected 2-letter code)", c.DefaultRegion)
	}

	switch c.SummarizerBackend {
	case BackendGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for summarizer_backend %q", c.SummarizerBackend)
		}
	case BackendOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for summarizer_backend %q", c.SummarizerBackend)
		}
	case BackendAnthropic:
		if strings.TrimSpace(c.AnthropicAPIKey) == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for summarizer_backend %q", c.SummarizerBackend)
		}
	default:
		return fmt.Errorf("unsupported summarizer_backend %q", c.SummarizerBackend)
	}

	switch c.StorageType {
	case "", "none", "disabled":
	case "bbolt":
		if strings.TrimSpace(c.BBoltPath) == "" {
			return fmt.Errorf("bbolt_path is required for storage_type bbolt")
		}
	case "redis":
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("redis_url is required for storage_type redis")
		}
	default:
		return fmt.Errorf("unsupported storage_type %q", c.StorageType)
	}
	return nil
}

// APIKey returns the credential of the selected summarizer backend.
func (c *Config) APIKey() string {
	switch c.SummarizerBackend {
	case BackendOpenAI:
		return c.OpenAIAPIKey
	case BackendAnthropic:
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}

// Redacted returns a copy safe for logging.
func (c Config) Redacted() Config {
	c.GeminiAPIKey = mask(c.GeminiAPIKey)
	c.OpenAIAPIKey = mask(c.OpenAIAPIKey)
	c.AnthropicAPIKey = mask(c.AnthropicAPIKey)
	if c.RedisURL != "" {
		c.RedisURL = "<set>"
	}
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

// IsRegionCode reports whether s is a two-letter ASCII region code.
func IsRegionCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i] | 0x20
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}
