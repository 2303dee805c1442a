package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"indeed-scraper/browser"
)

// Keys shared by flags, env vars and the config file.
const (
	KeyQuery       = "query"
	KeyLocation    = "location"
	KeyMaxPages    = "max_pages"
	KeyOutput      = "output"
	KeyBaseURL     = "base_url"
	KeyDriver      = "driver"
	KeyHeadless    = "headless"
	KeyPostgresDSN = "postgres_dsn"
	KeySQLitePath  = "sqlite_path"
)

type Config struct {
	Query      string
	Location   string
	MaxPages   int
	BaseURL    string
	OutputPath string

	Driver   string
	Headless bool

	// PageSize is how far the start offset advances per page.
	PageSize int
	// PageTimeout bounds waiting for result markers and for a description.
	PageTimeout time.Duration
	// LoadTimeout bounds a single navigation.
	LoadTimeout time.Duration
	// PageDelay is the pause after each results page.
	PageDelay time.Duration

	// Optional extra sinks; empty disables them.
	PostgresDSN string
	SQLitePath  string
}

func DefaultConfig() *Config {
	return &Config{
		Query:       "data coop",
		Location:    "Canada",
		MaxPages:    10,
		BaseURL:     "https://ca.indeed.com/jobs",
		OutputPath:  "indeed_data_coop_canada.csv",
		Driver:      browser.DriverChromedp,
		Headless:    false,
		PageSize:    10,
		PageTimeout: 15 * time.Second,
		LoadTimeout: 60 * time.Second,
		PageDelay:   2 * time.Second,
	}
}

// SetDefaults registers DefaultConfig values with v so that anything unset
// in flags, env or file falls back to them.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault(KeyQuery, d.Query)
	v.SetDefault(KeyLocation, d.Location)
	v.SetDefault(KeyMaxPages, d.MaxPages)
	v.SetDefault(KeyOutput, d.OutputPath)
	v.SetDefault(KeyBaseURL, d.BaseURL)
	v.SetDefault(KeyDriver, d.Driver)
	v.SetDefault(KeyHeadless, d.Headless)
	v.SetDefault(KeyPostgresDSN, "")
	v.SetDefault(KeySQLitePath, "")
}

// Load builds a validated Config from v on top of DefaultConfig.
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Query = v.GetString(KeyQuery)
	cfg.Location = v.GetString(KeyLocation)
	cfg.MaxPages = v.GetInt(KeyMaxPages)
	cfg.OutputPath = v.GetString(KeyOutput)
	cfg.BaseURL = v.GetString(KeyBaseURL)
	cfg.Driver = strings.ToLower(strings.TrimSpace(v.GetString(KeyDriver)))
	cfg.Headless = v.GetBool(KeyHeadless)
	cfg.PostgresDSN = strings.TrimSpace(v.GetString(KeyPostgresDSN))
	cfg.SQLitePath = strings.TrimSpace(v.GetString(KeySQLitePath))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Query) == "" {
		errs = append(errs, errors.New("query must not be empty"))
	}
	if c.MaxPages < 1 {
		errs = append(errs, fmt.Errorf("max_pages must be at least 1, got %d", c.MaxPages))
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		errs = append(errs, errors.New("output path must not be empty"))
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL))
	}
	switch c.Driver {
	case browser.DriverChromedp, browser.DriverRod, browser.DriverHTTP:
	default:
		errs = append(errs, fmt.Errorf("driver must be one of %s, %s, %s; got %q",
			browser.DriverChromedp, browser.DriverRod, browser.DriverHTTP, c.Driver))
	}
	if c.PageSize < 1 {
		errs = append(errs, fmt.Errorf("page size must be at least 1, got %d", c.PageSize))
	}
	if c.PageTimeout <= 0 {
		errs = append(errs, errors.New("page timeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// BrowserOptions returns the browser settings carried by c.
func (c *Config) BrowserOptions() browser.Options {
	return browser.Options{
		Driver:      c.Driver,
		Headless:    c.Headless,
		LoadTimeout: c.LoadTimeout,
	}
}
