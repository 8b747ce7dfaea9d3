package httpx

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChainRunsMiddlewareInListedOrder(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "page")
		w.WriteHeader(http.StatusNoContent)
	}), tag("recover"), nil, tag("logger"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := strings.Join(order, ","); got != "recover,logger,page" {
		t.Fatalf("order = %q", got)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAllowMethods(t *testing.T) {
	t.Parallel()

	h := AllowMethods(http.MethodGet, http.MethodHead)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for method, want := range map[string]int{
		http.MethodGet:    http.StatusNoContent,
		http.MethodHead:   http.StatusNoContent,
		http.MethodPost:   http.StatusMethodNotAllowed,
		http.MethodDelete: http.StatusMethodNotAllowed,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/up", nil))
		if rec.Code != want {
			t.Fatalf("%s status = %d, want %d", method, rec.Code, want)
		}
		if want == http.StatusMethodNotAllowed && rec.Header().Get("Allow") != "GET, HEAD" {
			t.Fatalf("%s Allow = %q", method, rec.Header().Get("Allow"))
		}
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.HasPrefix(seen, "web-") || rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("generated id = %q, header = %q", seen, rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, " proxy-42 ")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "proxy-42" || rec.Header().Get(RequestIDHeader) != "proxy-42" {
		t.Fatalf("forwarded id = %q, header = %q", seen, rec.Header().Get(RequestIDHeader))
	}

	if got := RequestIDFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context()); got != "-" {
		t.Fatalf("missing id = %q", got)
	}
}

func TestRecoverPanicLogsAndAnswers500(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil calendar")
	}), RequestID(), RecoverPanic(log.New(&logs, "", 0)))

	req := httptest.NewRequest(http.MethodGet, "/estadisticas", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, want := range []string{"path=/estadisticas", "request_id=req-7", "panic=nil calendar"} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("log missing %q: %s", want, logs.String())
		}
	}
}

func TestWriteHelpersSetContentType(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	if err := WriteJSON(rec, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if rec.Header().Get("Content-Type") != "application/json; charset=utf-8" || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("json response = %q %q", rec.Header().Get("Content-Type"), rec.Body.String())
	}

	rec = httptest.NewRecorder()
	if err := WriteHTML(rec, http.StatusNotFound, "<p>Sin datos</p>"); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if rec.Code != http.StatusNotFound || rec.Header().Get("Content-Type") != "text/html; charset=utf-8" {
		t.Fatalf("html response = %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}
