package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Providers ProvidersConfig `mapstructure:"providers"`
}

type ServerConfig struct {
	Port          string `mapstructure:"port"`
	UploadDir     string `mapstructure:"upload_dir"`
	MaxUploadSize int64  `mapstructure:"max_upload_size"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuthConfig struct {
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type ProvidersConfig struct {
	Gemini      GeminiConfig      `mapstructure:"gemini"`
	Model       ModelConfig       `mapstructure:"model"`
	Exchange    ExchangeConfig    `mapstructure:"exchange"`
	FRED        FREDConfig        `mapstructure:"fred"`
	GNews       GNewsConfig       `mapstructure:"gnews"`
	HuggingFace HuggingFaceConfig `mapstructure:"huggingface"`
}

type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// ModelConfig points at the external currency prediction server.
type ModelConfig struct {
	URL string `mapstructure:"url"`
}

type ExchangeConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type FREDConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type GNewsConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type HuggingFaceConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// Load reads configuration from config.yaml (if present) and the
// environment. Environment variables override file values, e.g.
// PROVIDERS_GEMINI_API_KEY overrides providers.gemini.api_key.
func Load() (*Config, error) {
	// .env is optional; running from cmd/* or the repo root both work.
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.upload_dir", "./uploads")
	v.SetDefault("server.max_upload_size", 15*1024*1024)
	v.SetDefault("database.path", "./coinvision.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("auth.session_ttl", 24*time.Hour)

	// Keys must be registered for env-only values to survive Unmarshal.
	v.SetDefault("providers.gemini.api_key", "")
	v.SetDefault("providers.model.url", "")
	v.SetDefault("providers.exchange.api_key", "")
	v.SetDefault("providers.fred.api_key", "")
	v.SetDefault("providers.gnews.api_key", "")
	v.SetDefault("providers.huggingface.api_key", "")

	v.SetDefault("providers.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("providers.gemini.model", "gemini-2.0-flash")
	v.SetDefault("providers.exchange.base_url", "https://v6.exchangerate-api.com/v6")
	v.SetDefault("providers.fred.base_url", "https://api.stlouisfed.org/fred")
	v.SetDefault("providers.gnews.base_url", "https://gnews.io/api/v4")
	v.SetDefault("providers.huggingface.base_url", "https://router.huggingface.co/hf-inference/models/stabilityai/stable-diffusion-xl-base-1.0")
}

func validate(cfg *Config) error {
	if cfg.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("server.max_upload_size must be positive")
	}
	if cfg.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}
	return nil
}
