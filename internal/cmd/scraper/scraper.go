// Package scraper parses scraper command configuration and runs one scrape.
package scraper

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
	entrypoint "github.com/louisbranch/calculadora-oposicion/internal/platform/cmd"
	"github.com/louisbranch/calculadora-oposicion/internal/platform/timeouts"
	"github.com/louisbranch/calculadora-oposicion/internal/scraper"
	"github.com/louisbranch/calculadora-oposicion/internal/storage/jsonfile"
	"github.com/louisbranch/calculadora-oposicion/internal/storage/sqlite"
)

// Config holds the scraper command configuration.
type Config struct {
	Target    string        `env:"OPOSICIONES_SCRAPER_TARGET" envDefault:"all"`
	OutDir    string        `env:"OPOSICIONES_DATA_DIR" envDefault:"data"`
	DBPath    string        `env:"OPOSICIONES_DB_PATH"`
	Sources   string        `env:"OPOSICIONES_SCRAPER_SOURCES"`
	PageDelay time.Duration `env:"OPOSICIONES_SCRAPER_PAGE_DELAY" envDefault:"2s"`
	UserAgent string        `env:"OPOSICIONES_SCRAPER_USER_AGENT"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Target, "target", cfg.Target, "Pages to scrape: inscripciones, convocatorias or all")
	fs.StringVar(&cfg.OutDir, "out-dir", cfg.OutDir, "Directory for the JSON output; empty disables it")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database to also write to")
	fs.StringVar(&cfg.Sources, "sources", cfg.Sources, "TOML file overriding the scraped URLs")
	fs.DurationVar(&cfg.PageDelay, "page-delay", cfg.PageDelay, "Pause between consecutive page fetches")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if _, err := scraper.ParseTarget(cfg.Target); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run scrapes the configured target once and writes every sink.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceScraper, func(ctx context.Context) error {
		return run(ctx, cfg, scraper.FetcherConfig{UserAgent: cfg.UserAgent})
	})
}

func run(ctx context.Context, cfg Config, fetcherCfg scraper.FetcherConfig) error {
	target, err := scraper.ParseTarget(cfg.Target)
	if err != nil {
		return err
	}
	sources, err := scraper.LoadSources(cfg.Sources)
	if err != nil {
		return err
	}

	var (
		sinks    []oposicion.Sink
		recorder scraper.RunRecorder
	)
	if dir := strings.TrimSpace(cfg.OutDir); dir != "" {
		store, err := jsonfile.Open(dir)
		if err != nil {
			return fmt.Errorf("open output directory: %w", err)
		}
		sinks = append(sinks, store)
	}
	if path := strings.TrimSpace(cfg.DBPath); path != "" {
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close sqlite store: %v", err)
			}
		}()
		sinks = append(sinks, store)
		recorder = store
	}
	if len(sinks) == 0 {
		return errors.New("an output directory or a database path is required")
	}

	pageDelay := cfg.PageDelay
	if pageDelay < 0 {
		pageDelay = timeouts.ScrapePageDelay
	}
	runner, err := scraper.NewRunner(scraper.RunnerConfig{
		Fetcher:   scraper.NewFetcher(fetcherCfg),
		Sources:   sources,
		Sinks:     sinks,
		Recorder:  recorder,
		PageDelay: pageDelay,
	})
	if err != nil {
		return err
	}
	return runner.Run(ctx, target)
}
