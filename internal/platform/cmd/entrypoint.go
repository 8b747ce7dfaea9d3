// Package cmd holds what the web and scraper commands share at startup:
// environment-then-flags configuration and telemetry around the run loop.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/calculadora-oposicion/internal/platform/config"
	"github.com/louisbranch/calculadora-oposicion/internal/platform/otel"
	"github.com/louisbranch/calculadora-oposicion/internal/platform/timeouts"
)

// Service names reported as the OpenTelemetry service.name.
const (
	ServiceWeb     = "oposiciones-web"
	ServiceScraper = "oposiciones-scraper"
)

// ParseConfig fills cfg from OPOSICIONES_* environment variables. Commands
// call it before registering flags so flag defaults show the env values.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	if err := config.ParseEnv(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// ParseArgs parses command-line flags; flags win over the environment.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry sets up tracing for service, runs run and flushes
// pending spans once it returns.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), timeouts.TelemetryShutdown)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Printf("telemetry shutdown service=%s err=%v", service, err)
		}
	}()

	started := time.Now()
	err = run(ctx)
	log.Printf("stopped service=%s elapsed=%s", service, time.Since(started).Round(time.Millisecond))
	return err
}
