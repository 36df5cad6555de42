package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	assert.Equal(t, "mercari-search", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, "https://api.mercari.jp/", cfg.Mercari.BaseURL)
	assert.Equal(t, "https://jp.mercari.com/item/", cfg.Mercari.ProductBaseURL)
	assert.Equal(t, "JP", cfg.Mercari.CountryCode)
	assert.Equal(t, 30*time.Second, cfg.Mercari.HTTPTimeout())
	assert.Equal(t, 120, cfg.Search.PageSize)
	assert.Equal(t, 30, cfg.Search.SampleTarget)
	assert.Equal(t, 50, cfg.Search.AttemptCeiling)
	assert.Equal(t, 3, cfg.Search.TopCategories)
	assert.Equal(t, 5, cfg.Search.MinReliableSample)
	assert.Equal(t, 150*time.Millisecond, cfg.Search.Pacing())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.Server.Port = 9090
	cfg.Search.PageSize = 40
	cfg.Search.PacingMillis = 500
	applyDefaults(&cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 40, cfg.Search.PageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Pacing())
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		var cfg Config
		applyDefaults(&cfg)
		return &cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, validateConfig(valid()))
	})

	t.Run("port out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 70000
		assert.Error(t, validateConfig(cfg))
	})

	t.Run("sample target above ceiling", func(t *testing.T) {
		cfg := valid()
		cfg.Search.SampleTarget = 60
		cfg.Search.AttemptCeiling = 50
		assert.Error(t, validateConfig(cfg))
	})

	t.Run("non-positive page size", func(t *testing.T) {
		cfg := valid()
		cfg.Search.PageSize = -1
		assert.Error(t, validateConfig(cfg))
	})

	t.Run("missing base url", func(t *testing.T) {
		cfg := valid()
		cfg.Mercari.BaseURL = ""
		assert.Error(t, validateConfig(cfg))
	})
}
