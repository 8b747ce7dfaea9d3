package app

import (
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/i18n"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/templates"
)

// Option configures an App.
type Option func(*App)

// ErrorPageFunc builds the page shown when a view fails with status.
type ErrorPageFunc func(r *http.Request, status int, err error) Page

// ShellFunc renders the document around a page body.
type ShellFunc func(templates.Shell) templ.Component

// WithLogger sets the app logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithNotFound sets the view rendered for unmatched paths.
func WithNotFound(view View) Option {
	return func(a *App) {
		if view != nil {
			a.notFound = view
		}
	}
}

// WithErrorPage sets the page rendered when a view fails.
func WithErrorPage(fn ErrorPageFunc) Option {
	return func(a *App) {
		if fn != nil {
			a.errorPage = fn
		}
	}
}

// WithShell replaces the document layout.
func WithShell(fn ShellFunc) Option {
	return func(a *App) {
		if fn != nil {
			a.shell = fn
		}
	}
}

var defaultNotFound = ViewFunc(func(r *http.Request) (Page, error) {
	return defaultErrorPage(r, http.StatusNotFound, nil), nil
})

func defaultErrorPage(r *http.Request, status int, _ error) Page {
	loc, _ := i18n.FromContext(r.Context())
	return Page{
		Title:  templates.ErrorTitle(loc, status),
		Status: status,
		Body:   templates.ErrorState(loc, status),
	}
}

func defaultShell(shell templates.Shell) templ.Component {
	return templates.Layout(shell)
}
