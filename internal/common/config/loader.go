// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SERVER_PORT, MERCARI_BASE_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from the working directory and the project root.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "mercari-search"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Mercari.BaseURL == "" {
		cfg.Mercari.BaseURL = "https://api.mercari.jp/"
	}
	if cfg.Mercari.ProductBaseURL == "" {
		cfg.Mercari.ProductBaseURL = "https://jp.mercari.com/item/"
	}
	if cfg.Mercari.CountryCode == "" {
		cfg.Mercari.CountryCode = "JP"
	}
	if cfg.Mercari.Timeout == 0 {
		cfg.Mercari.Timeout = 30000
	}
	if cfg.Mercari.UserAgent == "" {
		cfg.Mercari.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if cfg.Search.PageSize == 0 {
		cfg.Search.PageSize = 120
	}
	if cfg.Search.SampleTarget == 0 {
		cfg.Search.SampleTarget = 30
	}
	if cfg.Search.AttemptCeiling == 0 {
		cfg.Search.AttemptCeiling = 50
	}
	if cfg.Search.TopCategories == 0 {
		cfg.Search.TopCategories = 3
	}
	if cfg.Search.MinReliableSample == 0 {
		cfg.Search.MinReliableSample = 5
	}
	if cfg.Search.PacingMillis == 0 {
		cfg.Search.PacingMillis = 150
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	if cfg.Mercari.BaseURL == "" {
		return fmt.Errorf("mercari.base_url is required")
	}
	if cfg.Search.SampleTarget > cfg.Search.AttemptCeiling {
		return fmt.Errorf("search.sample_target (%d) exceeds search.attempt_ceiling (%d)",
			cfg.Search.SampleTarget, cfg.Search.AttemptCeiling)
	}
	if cfg.Search.PageSize < 1 {
		return fmt.Errorf("search.page_size must be positive")
	}
	return nil
}
