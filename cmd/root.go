package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"indeed-scraper/browser"
	"indeed-scraper/config"
	"indeed-scraper/models"
	"indeed-scraper/scraper/indeed"
	"indeed-scraper/services"
	"indeed-scraper/storage"
	"indeed-scraper/utils"
)

const envPrefix = "JOBSCRAPER"

// Execute runs the root command. SIGINT and SIGTERM cancel the run so the
// browser is still torn down.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "indeed-scraper",
		Short:         "Scrape Indeed search results into a CSV file",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v, cfgFile); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	d := config.DefaultConfig()
	f := rootCmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (default is ./.indeed-scraper.yaml or $HOME/.indeed-scraper.yaml)")
	f.StringP("query", "q", d.Query, "Search keywords.")
	f.StringP("location", "l", d.Location, "Search location.")
	f.IntP("max-pages", "p", d.MaxPages, "Maximum number of result pages to visit.")
	f.StringP("output", "o", d.OutputPath, "CSV file to write.")
	f.String("base-url", d.BaseURL, "Search endpoint.")
	f.String("driver", d.Driver, "Browser driver: chromedp, rod or http.")
	f.Bool("headless", d.Headless, "Run the browser without a window.")
	f.String("postgres-dsn", "", "Also store listings in this PostgreSQL database.")
	f.String("sqlite-path", "", "Also store listings in this SQLite file.")

	for key, name := range map[string]string{
		config.KeyQuery:       "query",
		config.KeyLocation:    "location",
		config.KeyMaxPages:    "max-pages",
		config.KeyOutput:      "output",
		config.KeyBaseURL:     "base-url",
		config.KeyDriver:      "driver",
		config.KeyHeadless:    "headless",
		config.KeyPostgresDSN: "postgres-dsn",
		config.KeySQLitePath:  "sqlite-path",
	} {
		cobra.CheckErr(v.BindPFlag(key, f.Lookup(name)))
	}

	return rootCmd
}

// initConfig reads .env, JOBSCRAPER_* variables and the config file into v.
func initConfig(v *viper.Viper, cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		utils.Info("Using config file: %s", v.ConfigFileUsed())
		return nil
	}

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.SetConfigType("yaml")
	v.SetConfigName(".indeed-scraper")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	utils.Info("Using config file: %s", v.ConfigFileUsed())
	return nil
}

// run scrapes, then writes the CSV and any configured database sinks.
// A scrape error writes nothing.
func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	utils.Info("Scraper starting | query=%q location=%q pages=%d driver=%s",
		cfg.Query, cfg.Location, cfg.MaxPages, cfg.Driver)

	listings, err := collect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("scrape stopped after %d listings: %w", len(listings), err)
	}

	utils.Section("Saving")
	n, err := storage.NewCSVWriter(cfg.OutputPath).Write(listings)
	if err != nil {
		return fmt.Errorf("save csv: %w", err)
	}

	sinks, err := openSinks(ctx, cfg)
	if err != nil {
		return err
	}
	if err := writeSinks(ctx, sinks, listings); err != nil {
		return err
	}

	printSummary(out, n, cfg.OutputPath)
	services.PrintReport(out, services.GenerateReport(listings))
	return nil
}

func collect(ctx context.Context, cfg *config.Config) ([]models.Listing, error) {
	b, err := browser.Open(ctx, cfg.BrowserOptions())
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			utils.Warn("Could not close browser: %v", err)
		}
	}()

	return indeed.NewScraper(cfg, b.Page()).Collect(ctx)
}

func openSinks(ctx context.Context, cfg *config.Config) ([]storage.Sink, error) {
	var sinks []storage.Sink

	if cfg.PostgresDSN != "" {
		pg, err := storage.NewPostgresWriter(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		sinks = append(sinks, pg)
	}

	if cfg.SQLitePath != "" {
		lite, err := storage.NewSQLiteWriter(ctx, cfg.SQLitePath)
		if err != nil {
			closeSinks(sinks)
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sinks = append(sinks, lite)
	}

	return sinks, nil
}

func writeSinks(ctx context.Context, sinks []storage.Sink, listings []models.Listing) error {
	defer closeSinks(sinks)

	for _, s := range sinks {
		if err := s.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure %s schema: %w", s.Name(), err)
		}
		added, err := s.WriteBatch(ctx, listings)
		if err != nil {
			return fmt.Errorf("save listings to %s: %w", s.Name(), err)
		}
		utils.Success("Saved %d new listings to %s (%d already stored)", added, s.Name(), len(listings)-added)
	}
	return nil
}

func closeSinks(sinks []storage.Sink) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			utils.Warn("Could not close %s: %v", s.Name(), err)
		}
	}
}

func printSummary(w io.Writer, rows int, path string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║                SCRAPE COMPLETE               ║")
	fmt.Fprintln(w, "╠══════════════════════════════════════════════╣")
	fmt.Fprintf(w, "║  Listings saved : %-26d║\n", rows)
	fmt.Fprintf(w, "║  Output file    : %-26s║\n", truncate(path, 26))
	fmt.Fprintln(w, "╚══════════════════════════════════════════════╝")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return "..." + string(r[len(r)-max+3:])
}
