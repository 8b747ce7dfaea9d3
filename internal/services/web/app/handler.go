package app

import (
	"bytes"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/errors"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/httpx"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/i18n"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/routepath"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/templates"
)

// handler serves a mounted app.
type handler struct {
	app *App
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a := h.app
	r = r.WithContext(WithApp(r.Context(), a))

	nav := a.navigator.Navigate(r)
	if nav.Redirect != "" {
		http.Redirect(w, r, nav.Redirect, http.StatusMovedPermanently)
		return
	}
	if len(nav.Allow) > 0 {
		w.Header().Set("Allow", strings.Join(nav.Allow, ", "))
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	page := a.renderView(r, nav)
	_, tag := i18n.FromContext(r.Context())

	shell := templates.Shell{
		Anchor:        a.anchor,
		Title:         page.Title,
		Lang:          tag.String(),
		HomeHref:      a.navigator.Base(),
		StylesheetURL: a.navigator.Base() + routepath.StaticPrefix + "app.css",
		Head:          a.head,
		Nav:           a.navLinks(nav.Route),
		Languages:     i18n.LanguageOptions(r, tag),
		Body:          page.Body,
	}
	var buf bytes.Buffer
	if err := a.shell(shell).Render(r.Context(), &buf); err != nil {
		a.logger.Printf("render shell failed path=%s route=%s err=%v", r.URL.Path, nav.Route, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		a.notify(r, nav.Route, http.StatusInternalServerError)
		return
	}
	if err := httpx.WriteHTML(w, page.Status, buf.String()); err != nil {
		a.logger.Printf("write page failed path=%s err=%v", r.URL.Path, err)
	}
	a.notify(r, nav.Route, page.Status)
}

// renderView renders the matched view, the not-found view when nothing
// matched, or the error page when the view fails.
func (a *App) renderView(r *http.Request, nav Navigation) Page {
	view := nav.View
	fallbackStatus := http.StatusOK
	if view == nil {
		view = a.notFound
		fallbackStatus = http.StatusNotFound
	}

	page, err := view.Render(r)
	if err != nil {
		status := apperrors.HTTPStatus(err)
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		a.logger.Printf("render view failed path=%s route=%s status=%d err=%v", r.URL.Path, nav.Route, status, err)
		page = a.errorPage(r, status, err)
		if page.Status == 0 {
			page.Status = status
		}
	}
	if page.Status == 0 {
		page.Status = fallbackStatus
	}
	if nav.View == nil {
		page.Status = http.StatusNotFound
	}
	return page
}

func (a *App) navLinks(current string) []templates.NavLink {
	names := a.navigator.RouteNames()
	links := make([]templates.NavLink, 0, len(names))
	for _, name := range names {
		href, ok := a.navigator.Href(name)
		if !ok {
			continue
		}
		links = append(links, templates.NavLink{Name: name, Href: href, Current: name == current})
	}
	return links
}

func (a *App) notify(r *http.Request, route string, status int) {
	view := PageView{Route: route, Path: r.URL.Path, Status: status}
	for _, observer := range a.observers {
		observer.ObserveNavigation(r.Context(), view)
	}
}
