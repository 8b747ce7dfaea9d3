package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func TestResolveTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		url         string
		cookie      string
		accept      string
		wantTag     string
		wantPersist bool
	}{
		{name: "default", url: "/", wantTag: "es-ES"},
		{name: "query", url: "/?lang=en-US", wantTag: "en-US", wantPersist: true},
		{name: "query base language", url: "/?lang=en", wantTag: "en-US", wantPersist: true},
		{name: "cookie", url: "/", cookie: "en-US", wantTag: "en-US"},
		{name: "accept language", url: "/", accept: "en-GB,en;q=0.8", wantTag: "en-US"},
		{name: "unsupported accept", url: "/", accept: "ja-JP", wantTag: "es-ES"},
		{name: "invalid query falls through", url: "/?lang=???", accept: "en", wantTag: "en-US"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookieName, Value: tc.cookie})
			}
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			tag, persist := ResolveTag(req)
			if tag.String() != tc.wantTag || persist != tc.wantPersist {
				t.Fatalf("ResolveTag = %s, %v; want %s, %v", tag, persist, tc.wantTag, tc.wantPersist)
			}
		})
	}
}

func TestMiddlewareStoresLocalizerAndCookie(t *testing.T) {
	t.Parallel()

	var got string
	handler := Middleware("/oposiciones/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc, _ := FromContext(r.Context())
		got = T(loc, "core.nav.Estadisticas")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oposiciones/?lang=en-US", nil))

	if got != "Statistics" {
		t.Fatalf("label = %q", got)
	}
	if rec.Header().Get("Content-Language") != "en-US" {
		t.Fatalf("content-language = %q", rec.Header().Get("Content-Language"))
	}
	cookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, LangCookieName+"=en-US") || !strings.Contains(cookie, "Path=/oposiciones/") {
		t.Fatalf("cookie = %q", cookie)
	}
}

func TestFromContextDefaultsToSpanish(t *testing.T) {
	t.Parallel()

	loc, tag := FromContext(context.Background())
	if tag != language.MustParse("es-ES") {
		t.Fatalf("tag = %v", tag)
	}
	if got := T(loc, "core.nav.Calculadora"); got != "Calculadora" {
		t.Fatalf("label = %q", got)
	}
}

func TestTWithoutLocalizerFormatsKey(t *testing.T) {
	t.Parallel()

	if got := T(nil, "hola %s", "mundo"); got != "hola mundo" {
		t.Fatalf("T = %q", got)
	}
}

func TestLanguageOptions(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/estadisticas?tribunal=tribunal2", nil)
	options := LanguageOptions(req, language.MustParse("en-US"))
	if len(options) != 2 || options[0].Tag != "es-ES" {
		t.Fatalf("options = %+v", options)
	}
	if options[0].Active || !options[1].Active {
		t.Fatalf("active flags = %+v", options)
	}
	if options[1].URL != "/estadisticas?lang=en-US&tribunal=tribunal2" {
		t.Fatalf("url = %q", options[1].URL)
	}
}
