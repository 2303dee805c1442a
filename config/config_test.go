package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsMatchCompiledIn(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "data coop", cfg.Query)
	assert.Equal(t, "Canada", cfg.Location)
	assert.Equal(t, 10, cfg.MaxPages)
	assert.Equal(t, "indeed_data_coop_canada.csv", cfg.OutputPath)
	assert.Equal(t, "https://ca.indeed.com/jobs", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.PageTimeout)
	assert.Equal(t, 2*time.Second, cfg.PageDelay)
	assert.False(t, cfg.Headless)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set(KeyQuery, "golang intern")
	v.Set(KeyMaxPages, 3)
	v.Set(KeyDriver, " HTTP ")
	v.Set(KeySQLitePath, "jobs.db")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "golang intern", cfg.Query)
	assert.Equal(t, 3, cfg.MaxPages)
	assert.Equal(t, "http", cfg.Driver)
	assert.Equal(t, "jobs.db", cfg.SQLitePath)
	assert.Equal(t, "Canada", cfg.Location)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"empty query", func(c *Config) { c.Query = "  " }, "query must not be empty"},
		{"zero pages", func(c *Config) { c.MaxPages = 0 }, "max_pages must be at least 1"},
		{"relative base", func(c *Config) { c.BaseURL = "/jobs" }, "is not an absolute URL"},
		{"bad driver", func(c *Config) { c.Driver = "selenium" }, `got "selenium"`},
		{"no output", func(c *Config) { c.OutputPath = "" }, "output path must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
