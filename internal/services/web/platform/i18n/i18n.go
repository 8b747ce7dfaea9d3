// Package i18n resolves the request language and exposes localized printers
// to web handlers and templates.
package i18n

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/louisbranch/calculadora-oposicion/internal/platform/i18n/catalog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "oposiciones_lang"
)

// Localizer provides translated strings.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Tag    string
	Label  string
	URL    string
	Active bool
}

type localizerKey struct{}

type localeState struct {
	loc Localizer
	tag language.Tag
}

// Supported returns the catalog languages, default first.
func Supported() []language.Tag {
	return catalog.Default().Tags()
}

// Default returns the default language tag.
func Default() language.Tag {
	return language.MustParse(catalog.BaseLocale)
}

// Printer returns a printer bound to the embedded catalogs.
func Printer(tag language.Tag) *message.Printer {
	return catalog.Default().Printer(tag)
}

// ParseTag matches value against the supported languages.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Tag{}, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Tag{}, false
	}
	return matchTags([]language.Tag{tag})
}

func matchTags(tags []language.Tag) (language.Tag, bool) {
	supported := Supported()
	_, index, confidence := catalog.Default().Matcher().Match(tags...)
	if confidence == language.No || index < 0 || index >= len(supported) {
		return Default(), false
	}
	return supported[index], true
}

// ResolveTag picks the request language from the lang query parameter, the
// preference cookie, then Accept-Language. The bool reports whether the query
// parameter chose it and should be persisted.
func ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return Default(), false
	}
	if tag, ok := ParseTag(r.URL.Query().Get(LangParam)); ok {
		return tag, true
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := ParseTag(cookie.Value); ok {
			return tag, false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			if tag, ok := matchTags(tags); ok {
				return tag, false
			}
		}
	}
	return Default(), false
}

// SetLanguageCookie persists the selected language under cookiePath.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag, cookiePath string) {
	if w == nil {
		return
	}
	if strings.TrimSpace(cookiePath) == "" {
		cookiePath = "/"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     cookiePath,
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware resolves the request language once and stores the localizer in
// the request context.
func Middleware(cookiePath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag, persist := ResolveTag(r)
			if persist {
				SetLanguageCookie(w, tag, cookiePath)
			}
			w.Header().Set("Content-Language", tag.String())
			next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), Printer(tag), tag)))
		})
	}
}

// WithLocalizer stores loc and its language in ctx.
func WithLocalizer(ctx context.Context, loc Localizer, tag language.Tag) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, localizerKey{}, localeState{loc: loc, tag: tag})
}

// FromContext returns the request localizer, or a default-language printer.
func FromContext(ctx context.Context) (Localizer, language.Tag) {
	if ctx != nil {
		if state, ok := ctx.Value(localizerKey{}).(localeState); ok && state.loc != nil {
			return state.loc, state.tag
		}
	}
	return Printer(Default()), Default()
}

// T returns a translated string, falling back to formatting the key itself.
func T(loc Localizer, key message.Reference, args ...any) string {
	if loc != nil {
		return loc.Sprintf(key, args...)
	}
	if keyString, ok := key.(string); ok {
		if len(args) > 0 {
			return fmt.Sprintf(keyString, args...)
		}
		return keyString
	}
	return ""
}

// LanguageOptions lists every supported language with a link that switches
// to it while keeping the current path and query.
func LanguageOptions(r *http.Request, active language.Tag) []LanguageOption {
	path, rawQuery := "/", ""
	if r != nil && r.URL != nil {
		path, rawQuery = r.URL.Path, r.URL.RawQuery
	}
	supported := Supported()
	options := make([]LanguageOption, 0, len(supported))
	for _, tag := range supported {
		base, _ := tag.Base()
		options = append(options, LanguageOption{
			Tag:    tag.String(),
			Label:  strings.ToUpper(base.String()),
			URL:    LanguageURL(path, rawQuery, tag.String()),
			Active: tag == active,
		})
	}
	return options
}

// LanguageURL returns path with the language parameter set to tag.
func LanguageURL(path, rawQuery, tag string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/"
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	query.Set(LangParam, tag)
	return (&url.URL{Path: path, RawQuery: query.Encode()}).String()
}
