// Package views renders the calculator, statistics and convocatorias pages.
package views

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/app"
	apperrors "github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/errors"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/i18n"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/templates"
)

// RunSource reports when a tribunal's data was last scraped.
type RunSource interface {
	LatestScrapeRun(ctx context.Context, target, tribunalID string) (oposicion.ScrapeRun, error)
}

// Config carries the data the views read.
type Config struct {
	Source oposicion.Source
	// Runs is optional; without it pages omit the last update date.
	Runs       RunSource
	Tribunales []oposicion.Tribunal
	Now        func() time.Time
	Logger     *log.Logger
}

func (cfg Config) normalize() (Config, error) {
	if cfg.Source == nil {
		return Config{}, fmt.Errorf("views: data source is required")
	}
	if len(cfg.Tribunales) == 0 {
		cfg.Tribunales = oposicion.DefaultTribunales()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return cfg, nil
}

func (cfg Config) tribunal(id string) (oposicion.Tribunal, bool) {
	for _, tribunal := range cfg.Tribunales {
		if tribunal.ID == id {
			return tribunal, true
		}
	}
	return oposicion.Tribunal{}, false
}

// tribunalData is one tribunal's published data.
type tribunalData struct {
	Tribunal      oposicion.Tribunal
	Aspirants     []oposicion.Aspirant
	Convocatorias []oposicion.Convocatoria
}

func (cfg Config) load(ctx context.Context, tribunal oposicion.Tribunal) (tribunalData, error) {
	aspirants, err := cfg.Source.Aspirants(ctx, tribunal.ID)
	if err != nil {
		return tribunalData{}, apperrors.Wrap(apperrors.KindUnavailable, "error.data_unavailable", fmt.Errorf("load aspirants %s: %w", tribunal.ID, err))
	}
	convocatorias, err := cfg.Source.Convocatorias(ctx, tribunal.ID)
	if err != nil {
		return tribunalData{}, apperrors.Wrap(apperrors.KindUnavailable, "error.data_unavailable", fmt.Errorf("load convocatorias %s: %w", tribunal.ID, err))
	}
	return tribunalData{Tribunal: tribunal, Aspirants: aspirants, Convocatorias: convocatorias}, nil
}

// lastUpdate returns when target was last scraped for tribunalID, or the zero
// time when unknown.
func (cfg Config) lastUpdate(ctx context.Context, target, tribunalID string) time.Time {
	if cfg.Runs == nil {
		return time.Time{}
	}
	run, err := cfg.Runs.LatestScrapeRun(ctx, target, tribunalID)
	if err != nil {
		if !errors.Is(err, oposicion.ErrNotFound) {
			cfg.Logger.Printf("load scrape run failed target=%s tribunal=%s err=%v", target, tribunalID, err)
		}
		return time.Time{}
	}
	return run.FinishedAt
}

// NotFound is the view rendered for unmatched paths.
var NotFound = app.ViewFunc(func(r *http.Request) (app.Page, error) {
	return ErrorPage(r, http.StatusNotFound, nil), nil
})

// ErrorPage renders a failed view. Typed errors with a localization key show
// that message under the generic heading.
func ErrorPage(r *http.Request, status int, err error) app.Page {
	loc, _ := i18n.FromContext(r.Context())
	body := templates.ErrorState(loc, status)
	if key := apperrors.LocalizationKey(err); key != "" {
		body = templates.Join(body, templates.Notice("error", i18n.T(loc, key)))
	}
	return app.Page{
		Title:  templates.ErrorTitle(loc, status),
		Status: status,
		Body:   body,
	}
}
