// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Mercari MercariConfig `mapstructure:"mercari"`
	Search  SearchConfig  `mapstructure:"search"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the tool server listen settings.
type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MercariConfig holds the marketplace API endpoints and transport settings.
type MercariConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	ProductBaseURL string `mapstructure:"product_base_url"`
	CountryCode    string `mapstructure:"country_code"`
	Timeout        int    `mapstructure:"timeout"` // milliseconds
	UserAgent      string `mapstructure:"user_agent"`
}

func (m MercariConfig) HTTPTimeout() time.Duration {
	return time.Duration(m.Timeout) * time.Millisecond
}

// SearchConfig holds the tunable constants of the two-phase pipeline.
// The sampler defaults are empirically chosen, not invariants.
type SearchConfig struct {
	PageSize          int `mapstructure:"page_size"`
	SampleTarget      int `mapstructure:"sample_target"`
	AttemptCeiling    int `mapstructure:"attempt_ceiling"`
	TopCategories     int `mapstructure:"top_categories"`
	MinReliableSample int `mapstructure:"min_reliable_sample"`
	PacingMillis      int `mapstructure:"pacing_ms"`
}

func (s SearchConfig) Pacing() time.Duration {
	return time.Duration(s.PacingMillis) * time.Millisecond
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
