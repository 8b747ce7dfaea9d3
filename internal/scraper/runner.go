package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
)

// Target selects which published pages a run scrapes.
type Target string

const (
	TargetInscripciones Target = "inscripciones"
	TargetConvocatorias Target = "convocatorias"
	TargetAll           Target = "all"
)

const maxListingPages = 1000

// ParseTarget validates a target name.
func ParseTarget(value string) (Target, error) {
	switch target := Target(strings.ToLower(strings.TrimSpace(value))); target {
	case TargetInscripciones, TargetConvocatorias, TargetAll:
		return target, nil
	case "":
		return TargetAll, nil
	default:
		return "", fmt.Errorf("unknown scrape target %q", value)
	}
}

// RunRecorder stores the outcome of each scrape pass.
type RunRecorder interface {
	RecordScrapeRun(ctx context.Context, run oposicion.ScrapeRun) error
}

// RunnerConfig wires a Runner.
type RunnerConfig struct {
	Fetcher   *Fetcher
	Sources   Sources
	Sinks     []oposicion.Sink
	Recorder  RunRecorder
	Logger    *log.Logger
	PageDelay time.Duration
	Now       func() time.Time
	NewID     func() string
}

// Runner scrapes every configured tribunal sequentially.
type Runner struct {
	fetcher   *Fetcher
	sources   Sources
	sinks     []oposicion.Sink
	recorder  RunRecorder
	logger    *log.Logger
	pageDelay time.Duration
	now       func() time.Time
	newID     func() string
}

// NewRunner validates cfg and builds a Runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if len(cfg.Sinks) == 0 {
		return nil, fmt.Errorf("at least one sink is required")
	}
	for i, sink := range cfg.Sinks {
		if sink == nil {
			return nil, fmt.Errorf("sink %d is nil", i)
		}
	}
	if err := cfg.Sources.Validate(); err != nil {
		return nil, fmt.Errorf("validate sources: %w", err)
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = NewFetcher(FetcherConfig{})
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Runner{
		fetcher:   cfg.Fetcher,
		sources:   cfg.Sources,
		sinks:     cfg.Sinks,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
		pageDelay: cfg.PageDelay,
		now:       cfg.Now,
		newID:     cfg.NewID,
	}, nil
}

// Run scrapes target for every tribunal. A failing tribunal does not stop
// the others; all failures are returned joined.
func (r *Runner) Run(ctx context.Context, target Target) error {
	var errs []error
	if target == TargetInscripciones || target == TargetAll {
		for _, id := range sortedKeys(r.sources.Inscripciones) {
			errs = append(errs, r.runOne(ctx, TargetInscripciones, id, r.sources.Inscripciones[id], r.scrapeInscripciones))
		}
	}
	if target == TargetConvocatorias || target == TargetAll {
		for _, id := range sortedKeys(r.sources.Convocatorias) {
			errs = append(errs, r.runOne(ctx, TargetConvocatorias, id, r.sources.Convocatorias[id], r.scrapeConvocatorias))
		}
	}
	return errors.Join(errs...)
}

type scrapeFunc func(ctx context.Context, tribunalID, pageURL string) (int, error)

func (r *Runner) runOne(ctx context.Context, target Target, tribunalID, pageURL string, scrape scrapeFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	run := oposicion.ScrapeRun{
		ID:         r.newID(),
		Target:     string(target),
		TribunalID: tribunalID,
		StartedAt:  r.now().UTC(),
	}
	r.logger.Printf("scrape start run_id=%s target=%s tribunal=%s url=%s", run.ID, target, tribunalID, pageURL)
	records, err := scrape(ctx, tribunalID, pageURL)
	run.FinishedAt = r.now().UTC()
	run.Records = records
	if err != nil {
		run.Error = err.Error()
		r.logger.Printf("scrape failed run_id=%s target=%s tribunal=%s err=%v", run.ID, target, tribunalID, err)
	} else {
		r.logger.Printf("scrape done run_id=%s target=%s tribunal=%s records=%d", run.ID, target, tribunalID, records)
	}
	if r.recorder != nil {
		if recErr := r.recorder.RecordScrapeRun(ctx, run); recErr != nil {
			r.logger.Printf("record scrape run failed run_id=%s err=%v", run.ID, recErr)
		}
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", target, tribunalID, err)
	}
	return nil
}

func (r *Runner) scrapeInscripciones(ctx context.Context, tribunalID, pageURL string) (int, error) {
	aspirants, err := r.ScrapeInscripciones(ctx, pageURL)
	if err != nil {
		return 0, err
	}
	if len(aspirants) == 0 {
		return 0, fmt.Errorf("no aspirants found")
	}
	for _, sink := range r.sinks {
		if err := sink.SaveAspirants(ctx, tribunalID, aspirants); err != nil {
			return len(aspirants), fmt.Errorf("save aspirants: %w", err)
		}
	}
	return len(aspirants), nil
}

func (r *Runner) scrapeConvocatorias(ctx context.Context, tribunalID, pageURL string) (int, error) {
	doc, err := r.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return 0, err
	}
	page := ParseConvocatorias(doc)
	if page.Skipped > 0 {
		r.logger.Printf("convocatoria cards skipped tribunal=%s count=%d", tribunalID, page.Skipped)
	}
	convocatorias := page.Convocatorias
	if convocatorias == nil {
		convocatorias = []oposicion.Convocatoria{}
	}
	for _, sink := range r.sinks {
		if err := sink.SaveConvocatorias(ctx, tribunalID, convocatorias); err != nil {
			return len(convocatorias), fmt.Errorf("save convocatorias: %w", err)
		}
	}
	return len(convocatorias), nil
}

// ScrapeInscripciones walks the paginated listing starting at pageURL and
// returns every aspirant in page order.
func (r *Runner) ScrapeInscripciones(ctx context.Context, pageURL string) ([]oposicion.Aspirant, error) {
	var aspirants []oposicion.Aspirant
	visited := map[string]bool{}
	current := pageURL
	for pageNumber := 1; pageNumber <= maxListingPages; pageNumber++ {
		if visited[current] {
			r.logger.Printf("listing page revisited url=%s", current)
			break
		}
		visited[current] = true

		doc, err := r.fetcher.Fetch(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNumber, err)
		}
		page := ParseInscripciones(doc)
		if !page.HasTable {
			r.logger.Printf("listing page without table page=%d url=%s", pageNumber, current)
			break
		}
		if page.Skipped > 0 {
			r.logger.Printf("listing rows skipped page=%d count=%d", pageNumber, page.Skipped)
		}
		aspirants = append(aspirants, page.Aspirants...)
		if page.NextHref == "" {
			break
		}
		next, err := resolveHref(current, page.NextHref)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNumber, err)
		}
		current = next
		if err := r.wait(ctx); err != nil {
			return nil, err
		}
	}
	return aspirants, nil
}

func (r *Runner) wait(ctx context.Context) error {
	if r.pageDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.pageDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func resolveHref(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse page url %q: %w", base, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse next href %q: %w", href, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}
