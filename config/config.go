package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Gemini  GeminiConfig
	Fetch   FetchConfig
	Ranking RankingConfig
	Sources []SourceConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeminiConfig holds inference service configuration. The API key is supplied
// via environment or config file, never embedded in source.
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FetchConfig holds candidate image download configuration
type FetchConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// RankingConfig holds scoring/ranking configuration
type RankingConfig struct {
	TopK int `mapstructure:"top_k"`
}

// SourceConfig declares one scraper output file and the provenance label
// stamped on every record it contributes
type SourceConfig struct {
	Label string `mapstructure:"label"`
	File  string `mapstructure:"file"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shopagent/")

	// Environment variable settings
	v.SetEnvPrefix("SHOPAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Gemini defaults
	v.SetDefault("gemini.model", "gemini-2.5-pro")
	v.SetDefault("gemini.timeout", "120s")

	// Fetch defaults
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.concurrency", 4)
	v.SetDefault("fetch.cache_ttl", "1h")

	// Ranking defaults
	v.SetDefault("ranking.top_k", 5)

	// Source defaults mirror the scraper output files
	v.SetDefault("sources", []map[string]interface{}{
		{"label": "Flipkart", "file": "flipkart_data.json"},
		{"label": "Amazon", "file": "amazon_data.json"},
		{"label": "Myntra", "file": "myntra_data.json"},
	})
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Gemini.APIKey == "" {
		return fmt.Errorf("Gemini API key is required (set SHOPAGENT_GEMINI_API_KEY)")
	}

	if config.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch concurrency must be at least 1, got: %d", config.Fetch.Concurrency)
	}

	if config.Ranking.TopK < 1 {
		return fmt.Errorf("ranking top_k must be at least 1, got: %d", config.Ranking.TopK)
	}

	if len(config.Sources) == 0 {
		return fmt.Errorf("at least one source must be configured")
	}
	for i, src := range config.Sources {
		if src.Label == "" || src.File == "" {
			return fmt.Errorf("source %d must have both label and file", i)
		}
	}

	return nil
}
