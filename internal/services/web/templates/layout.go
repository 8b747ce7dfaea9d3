package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/i18n"
)

// NavLink is one entry of the main navigation.
type NavLink struct {
	Name    string
	Href    string
	Current bool
}

// Shell carries everything the page layout needs around a view body.
type Shell struct {
	Anchor        string
	Title         string
	Lang          string
	HomeHref      string
	StylesheetURL string
	Head          []templ.Component
	Nav           []NavLink
	Languages     []i18n.LanguageOption
	Body          templ.Component
}

// Layout renders the full HTML document. The view body is placed inside the
// element whose id is Shell.Anchor.
func Layout(shell Shell) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		loc, tag := i18n.FromContext(ctx)
		lang := strings.TrimSpace(shell.Lang)
		if lang == "" {
			lang = tag.String()
		}
		appTitle := i18n.T(loc, "core.app.title")
		title := appTitle
		if pageTitle := strings.TrimSpace(shell.Title); pageTitle != "" && pageTitle != appTitle {
			title = pageTitle + " · " + appTitle
		}

		if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
			return err
		}
		head := El("head", nil,
			Void("meta", A("charset", "utf-8")),
			Void("meta", A("name", "viewport"), A("content", "width=device-width, initial-scale=1")),
			Void("meta", A("name", "description"), A("content", i18n.T(loc, "core.app.tagline"))),
			El("title", nil, Text(title)),
			If(shell.StylesheetURL != "", Void("link", A("rel", "stylesheet"), A("href", shell.StylesheetURL))),
			Join(shell.Head...),
		)
		header := El("header", []Attr{Class("site-header")},
			El("a", []Attr{Class("brand"), A("href", shell.HomeHref)}, Text(appTitle)),
			El("nav", []Attr{A("aria-label", i18n.T(loc, "core.nav.label"))},
				El("ul", nil, Each(shell.Nav, func(_ int, link NavLink) templ.Component {
					attrs := []Attr{A("href", link.Href)}
					if link.Current {
						attrs = append(attrs, A("aria-current", "page"))
					}
					return El("li", nil, El("a", attrs, Text(i18n.T(loc, "core.nav."+link.Name))))
				})),
			),
			If(len(shell.Languages) > 1, El("ul", []Attr{Class("languages")}, Each(shell.Languages, func(_ int, option i18n.LanguageOption) templ.Component {
				attrs := []Attr{A("href", option.URL), A("hreflang", option.Tag)}
				if option.Active {
					attrs = append(attrs, A("aria-current", "true"))
				}
				return El("li", nil, El("a", attrs, Text(option.Label)))
			}))),
		)
		body := El("body", nil,
			header,
			El("main", nil, El("div", []Attr{A("id", shell.Anchor)}, shell.Body)),
			El("footer", []Attr{Class("site-footer")}, El("p", nil, Text(i18n.T(loc, "core.footer")))),
		)
		return El("html", []Attr{A("lang", lang)}, head, body).Render(ctx, w)
	})
}
