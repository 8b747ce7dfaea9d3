package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/louisbranch/calculadora-oposicion/internal/platform/timeouts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

const (
	defaultUserAgent = "calculadora-oposicion-scraper/1.0"
	tracerName       = "github.com/louisbranch/calculadora-oposicion/internal/scraper"
	maxPageBytes     = 8 << 20
)

// FetcherConfig configures page downloads.
type FetcherConfig struct {
	HTTPClient *http.Client
	UserAgent  string
}

// Fetcher downloads and parses HTML pages.
type Fetcher struct {
	client    *http.Client
	userAgent string
	tracer    trace.Tracer
}

// NewFetcher builds a Fetcher. A nil client gets one bounded by
// timeouts.ScrapeRequest.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeouts.ScrapeRequest}
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
		tracer:    otel.Tracer(tracerName),
	}
}

// Fetch downloads pageURL and returns its parsed document.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*html.Node, error) {
	ctx, span := f.tracer.Start(ctx, "scraper.fetch", trace.WithAttributes(attribute.String("url.full", pageURL)))
	defer span.End()

	doc, err := f.fetch(ctx, span, pageURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return doc, nil
}

func (f *Fetcher) fetch(ctx context.Context, span trace.Span, pageURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", pageURL, err)
	}
	defer res.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("get %s: status %d", pageURL, res.StatusCode)
	}
	doc, err := html.Parse(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}
