// Package analytics installs the page-view tracking capability: the gtag.js
// snippet in every page head, plus server-side page-view counters.
package analytics

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-playground/validator/v10"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/app"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PluginName is the name the analytics capability installs under.
const PluginName = "analytics"

// DefaultPropertyID is the production tracking property.
const DefaultPropertyID = "G-Y7MGY6ECNL"

var rePropertyID = regexp.MustCompile(`^G-[A-Z0-9]+$`)

// Property identifies the tracking property.
type Property struct {
	ID string `validate:"required,gtag_id"`
}

// Config configures the analytics capability.
type Config struct {
	Property Property
	// Registry receives the page-view counter. A private registry is used
	// when nil.
	Registry *prometheus.Registry
	Logger   *log.Logger
}

// Analytics records page views.
type Analytics struct {
	property  Property
	registry  *prometheus.Registry
	pageViews *prometheus.CounterVec
	logger    *log.Logger
}

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("gtag_id", func(fl validator.FieldLevel) bool {
		return rePropertyID.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register gtag_id validator: %w", err)
	}
	return v, nil
}

// New validates cfg and registers the page-view counter.
func New(cfg Config) (*Analytics, error) {
	cfg.Property.ID = strings.TrimSpace(cfg.Property.ID)
	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	if err := v.Struct(cfg.Property); err != nil {
		return nil, fmt.Errorf("invalid analytics property %q: %w", cfg.Property.ID, err)
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	pageViews := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oposiciones",
		Name:      "page_views_total",
		Help:      "Rendered pages by route and status.",
	}, []string{"route", "status"})
	if err := registry.Register(pageViews); err != nil {
		return nil, fmt.Errorf("register page view counter: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Analytics{
		property:  cfg.Property,
		registry:  registry,
		pageViews: pageViews,
		logger:    logger,
	}, nil
}

// Name implements app.Plugin.
func (a *Analytics) Name() string {
	return PluginName
}

// Install adds the tracking snippet to the page head and observes
// navigation.
func (a *Analytics) Install(target *app.App) error {
	if err := target.AddHead(a.Snippet()); err != nil {
		return err
	}
	if err := target.Observe(a); err != nil {
		return err
	}
	return target.Provide(PluginName, a)
}

// PropertyID returns the tracking property id.
func (a *Analytics) PropertyID() string {
	return a.property.ID
}

// Snippet renders the gtag.js loader configured for the property.
func (a *Analytics) Snippet() templ.Component {
	id := a.property.ID
	return templ.Raw(`<script async src="https://www.googletagmanager.com/gtag/js?id=` + id + `"></script>` +
		`<script>window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}` +
		`gtag('js',new Date());gtag('config','` + id + `');</script>`)
}

// ObserveNavigation records one rendered page.
func (a *Analytics) ObserveNavigation(ctx context.Context, view app.PageView) {
	route := view.Route
	if route == "" {
		route = "unmatched"
	}
	status := strconv.Itoa(view.Status)
	a.pageViews.WithLabelValues(route, status).Inc()
	trace.SpanFromContext(ctx).AddEvent("page_view", trace.WithAttributes(
		attribute.String("analytics.property", a.property.ID),
		attribute.String("page.route", route),
		attribute.String("url.path", view.Path),
		attribute.Int("http.response.status_code", view.Status),
	))
	a.logger.Printf("page view route=%s path=%s status=%s", route, view.Path, status)
}

// MetricsHandler exposes the registry in the Prometheus text format.
func (a *Analytics) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
}

// FromApp returns the analytics capability installed in target.
func FromApp(target *app.App) (*Analytics, bool) {
	value, ok := target.Capability(PluginName)
	if !ok {
		return nil, false
	}
	a, ok := value.(*Analytics)
	return a, ok
}
