// Package web parses web command configuration and launches the web service.
package web

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
	entrypoint "github.com/louisbranch/calculadora-oposicion/internal/platform/cmd"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/views"
	"github.com/louisbranch/calculadora-oposicion/internal/storage/jsonfile"
	"github.com/louisbranch/calculadora-oposicion/internal/storage/sqlite"
)

// Config holds the web command configuration.
type Config struct {
	HTTPAddr    string `env:"OPOSICIONES_WEB_HTTP_ADDR" envDefault:"localhost:8080"`
	BaseURL     string `env:"OPOSICIONES_BASE_URL" envDefault:"/"`
	AnalyticsID string `env:"OPOSICIONES_ANALYTICS_ID" envDefault:"G-Y7MGY6ECNL"`
	DataDir     string `env:"OPOSICIONES_DATA_DIR" envDefault:"data"`
	// DBPath selects the SQLite store instead of the JSON data directory.
	DBPath string `env:"OPOSICIONES_DB_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Path prefix the pages are served under")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding the published JSON data")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path; overrides -data-dir when set")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the web server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWeb, func(ctx context.Context) error {
		source, runs, closeStore, err := openSource(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		server, err := web.NewServer(ctx, web.Config{
			HTTPAddr:    cfg.HTTPAddr,
			BaseURL:     cfg.BaseURL,
			AnalyticsID: cfg.AnalyticsID,
			Source:      source,
			Runs:        runs,
		})
		if err != nil {
			return fmt.Errorf("init web server: %w", err)
		}
		defer server.Close()

		log.Printf("web listening addr=%s base=%s", server.Addr(), cfg.BaseURL)
		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve web: %w", err)
		}
		return nil
	})
}

// openSource opens the SQLite store when configured, or the JSON directory.
func openSource(ctx context.Context, cfg Config) (oposicion.Source, views.RunSource, func(), error) {
	if path := strings.TrimSpace(cfg.DBPath); path != "" {
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, store, func() {
			if err := store.Close(); err != nil {
				log.Printf("close sqlite store: %v", err)
			}
		}, nil
	}
	store, err := jsonfile.Open(cfg.DataDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open data directory: %w", err)
	}
	return store, nil, func() {}, nil
}
