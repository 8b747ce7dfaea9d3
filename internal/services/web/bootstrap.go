package web

import (
	"fmt"
	"strings"

	"github.com/louisbranch/calculadora-oposicion/internal/services/web/analytics"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/app"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/calendar"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/router"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/views"
)

// AnchorID is the id of the element pages render into.
const AnchorID = "app"

// NewApp creates the application instance and installs the calendar,
// analytics and router capabilities, in that order. The app is not mounted.
// An empty BaseURL falls back to OPOSICIONES_BASE_URL.
func NewApp(cfg Config) (*app.App, error) {
	viewCfg := views.Config{Source: cfg.Source, Runs: cfg.Runs, Now: cfg.Now, Logger: cfg.Logger}
	calculadora, err := views.NewCalculadoraView(viewCfg)
	if err != nil {
		return nil, err
	}
	estadisticas, err := views.NewStatisticsView(viewCfg)
	if err != nil {
		return nil, err
	}
	convocatorias, err := views.NewConvocatoriasView(viewCfg)
	if err != nil {
		return nil, err
	}

	cal, err := calendar.New(calendar.Config{})
	if err != nil {
		return nil, fmt.Errorf("configure calendar: %w", err)
	}
	propertyID := strings.TrimSpace(cfg.AnalyticsID)
	if propertyID == "" {
		propertyID = analytics.DefaultPropertyID
	}
	tracker, err := analytics.New(analytics.Config{
		Property: analytics.Property{ID: propertyID},
		Registry: cfg.Registry,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("configure analytics: %w", err)
	}
	routerCfg := router.Config{Base: cfg.BaseURL}
	if strings.TrimSpace(routerCfg.Base) == "" {
		if routerCfg, err = router.ConfigFromEnv(); err != nil {
			return nil, fmt.Errorf("configure router: %w", err)
		}
	}
	rt, err := router.New(routerCfg, router.DefaultRoutes(router.Views{
		Calculadora:   calculadora,
		Estadisticas:  estadisticas,
		Convocatorias: convocatorias,
	})...)
	if err != nil {
		return nil, fmt.Errorf("configure router: %w", err)
	}

	a := app.New(
		app.WithLogger(cfg.Logger),
		app.WithNotFound(views.NotFound),
		app.WithErrorPage(views.ErrorPage),
	)
	for _, plugin := range []app.Plugin{cal, tracker, rt} {
		if err := a.Use(plugin); err != nil {
			return nil, err
		}
	}
	return a, nil
}
