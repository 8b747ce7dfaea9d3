package templates

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/i18n"
)

// ErrorTitle returns the localized page title for an error status.
func ErrorTitle(loc i18n.Localizer, status int) string {
	if status == http.StatusNotFound {
		return i18n.T(loc, "error.not_found.title")
	}
	return i18n.T(loc, "error.server.title")
}

// ErrorState renders the body of an error page.
func ErrorState(loc i18n.Localizer, status int) templ.Component {
	body := i18n.T(loc, "error.server.body")
	if status == http.StatusNotFound {
		body = i18n.T(loc, "error.not_found.body")
	}
	return El("section", []Attr{Class("error-state"), A("data-status", http.StatusText(status))},
		El("h1", nil, Text(ErrorTitle(loc, status))),
		El("p", nil, Text(body)),
	)
}

// Notice renders an inline message block; kind is a CSS modifier such as
// "error" or "info".
func Notice(kind, message string) templ.Component {
	role := "status"
	if kind == "error" {
		role = "alert"
	}
	return El("p", []Attr{Class("notice notice-" + kind), A("role", role)}, Text(message))
}
