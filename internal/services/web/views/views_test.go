package views

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/app"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/calendar"
	apperrors "github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/errors"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/i18n"
)

type fakeSource struct {
	aspirants     map[string][]oposicion.Aspirant
	convocatorias map[string][]oposicion.Convocatoria
	err           error
}

func (s fakeSource) Aspirants(_ context.Context, tribunalID string) ([]oposicion.Aspirant, error) {
	return s.aspirants[tribunalID], s.err
}

func (s fakeSource) Convocatorias(_ context.Context, tribunalID string) ([]oposicion.Convocatoria, error) {
	return s.convocatorias[tribunalID], s.err
}

type fakeRuns map[string]oposicion.ScrapeRun

func (r fakeRuns) LatestScrapeRun(_ context.Context, target, tribunalID string) (oposicion.ScrapeRun, error) {
	run, ok := r[target+"/"+tribunalID]
	if !ok {
		return oposicion.ScrapeRun{}, oposicion.ErrNotFound
	}
	return run, nil
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	day, err := oposicion.ParseDate(value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return day
}

func fixtureConfig(t *testing.T) Config {
	t.Helper()
	aspirants := make([]oposicion.Aspirant, 0, 100)
	for i := 1; i <= 100; i++ {
		name := fmt.Sprintf("Aspirante %03d", i)
		switch i {
		case 7:
			name = "Pérez Ruiz, Ana"
		case 8:
			name = "Pérez Gil, Luis"
		case 45:
			name = "García López, María"
		}
		aspirants = append(aspirants, oposicion.Aspirant{NumeroOrden: i, NombreApellidos: name, NumeroSorteo: i, Turno: "libre"})
	}
	return Config{
		Source: fakeSource{
			aspirants: map[string][]oposicion.Aspirant{"tribunal1": aspirants},
			convocatorias: map[string][]oposicion.Convocatoria{"tribunal1": {
				{Fecha: mustDate(t, "2025-03-03"), Convocados: []oposicion.Rango{{Inicio: 1, Fin: 10}}},
				{Fecha: mustDate(t, "2025-03-04"), Convocados: []oposicion.Rango{{Inicio: 11, Fin: 20}}},
			}},
		},
		Now: func() time.Time { return mustDate(t, "2025-03-04") },
	}
}

func request(t *testing.T, target string) *http.Request {
	t.Helper()
	cal, err := calendar.New(calendar.Config{})
	if err != nil {
		t.Fatalf("new calendar: %v", err)
	}
	a := app.New()
	if err := a.Use(cal); err != nil {
		t.Fatalf("use calendar: %v", err)
	}
	r := httptest.NewRequest(http.MethodGet, target, nil)
	return r.WithContext(app.WithApp(r.Context(), a))
}

func render(t *testing.T, view app.View, r *http.Request) (app.Page, string) {
	t.Helper()
	page, err := view.Render(r)
	if err != nil {
		t.Fatalf("render %s: %v", r.URL, err)
	}
	var buf bytes.Buffer
	if err := page.Body.Render(r.Context(), &buf); err != nil {
		t.Fatalf("render body: %v", err)
	}
	return page, buf.String()
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestNewViewsRequireSource(t *testing.T) {
	t.Parallel()

	if _, err := NewCalculadoraView(Config{}); err == nil {
		t.Fatal("expected calculator error")
	}
	if _, err := NewStatisticsView(Config{}); err == nil {
		t.Fatal("expected statistics error")
	}
	if _, err := NewConvocatoriasView(Config{}); err == nil {
		t.Fatal("expected convocatorias error")
	}
}

func TestCalculadoraEmptyQueryShowsForm(t *testing.T) {
	t.Parallel()

	view, err := NewCalculadoraView(fixtureConfig(t))
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	page, body := render(t, view, request(t, "/"))
	if page.Status != http.StatusOK || page.Title != "Calculadora" {
		t.Fatalf("page = %+v", page)
	}
	assertContains(t, body,
		`<form class="calculator-form" method="get">`,
		`<option value="tribunal1" selected>Tribunal 1</option>`,
		`<option value="tribunal2">Tribunal 2</option>`,
	)
	if strings.Contains(body, `class="result`) {
		t.Fatalf("empty query should not show a result:\n%s", body)
	}
}

func TestCalculadoraEstimates(t *testing.T) {
	t.Parallel()

	view, err := NewCalculadoraView(fixtureConfig(t))
	if err != nil {
		t.Fatalf("new view: %v", err)
	}

	t.Run("pending number", func(t *testing.T) {
		t.Parallel()
		page, body := render(t, view, request(t, "/?tribunal=tribunal1&numero=45"))
		if page.Status != http.StatusOK {
			t.Fatalf("status = %d", page.Status)
		}
		assertContains(t, body,
			`class="result result-pendiente"`,
			"Número de sorteo 45",
			"Fecha estimada de examen: lunes, 17 de marzo de 2025.",
			"Aspirantes por delante: 25",
			"Último número llamado: 20, en la sesión del martes, 4 de marzo de 2025.",
			`data-date="2025-03-17" class="estimate"`,
			`data-date="2025-03-03" class="session"`,
		)
	})

	t.Run("called number", func(t *testing.T) {
		t.Parallel()
		_, body := render(t, view, request(t, "/?tribunal=tribunal1&numero=5"))
		assertContains(t, body,
			"Ya has sido convocado para el lunes, 3 de marzo de 2025.",
			`data-date="2025-03-03" class="session called"`,
		)
	})

	t.Run("single name match", func(t *testing.T) {
		t.Parallel()
		_, body := render(t, view, request(t, "/?tribunal=tribunal1&nombre=garcia"))
		assertContains(t, body, "García López, María", "Número de sorteo 45", `value="garcia"`)
	})

	t.Run("several name matches", func(t *testing.T) {
		t.Parallel()
		page, body := render(t, view, request(t, "/?tribunal=tribunal1&nombre=P%C3%A9rez"))
		if page.Status != http.StatusOK {
			t.Fatalf("status = %d", page.Status)
		}
		assertContains(t, body,
			"Varios aspirantes coinciden con tu búsqueda:",
			`<a href="?numero=7&amp;tribunal=tribunal1">Pérez Ruiz, Ana (7)</a>`,
			`<a href="?numero=8&amp;tribunal=tribunal1">Pérez Gil, Luis (8)</a>`,
		)
	})

	t.Run("no name match", func(t *testing.T) {
		t.Parallel()
		_, body := render(t, view, request(t, "/?tribunal=tribunal1&nombre=zzzzzzzz"))
		assertContains(t, body, "No se ha encontrado ningún aspirante con ese nombre.")
	})

	t.Run("tribunal without sessions", func(t *testing.T) {
		t.Parallel()
		_, body := render(t, view, request(t, "/?tribunal=tribunal2&numero=3"))
		assertContains(t, body, "Todavía no hay convocatorias publicadas para este tribunal.")
	})
}

func TestCalculadoraAcceptsNumbersPastAWithdrawal(t *testing.T) {
	t.Parallel()

	cfg := fixtureConfig(t)
	source := cfg.Source.(fakeSource)
	full := source.aspirants["tribunal1"]
	withGap := append(append([]oposicion.Aspirant(nil), full[:49]...), full[50:]...)
	source.aspirants = map[string][]oposicion.Aspirant{"tribunal1": withGap}
	cfg.Source = source

	view, err := NewCalculadoraView(cfg)
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	page, body := render(t, view, request(t, "/?tribunal=tribunal1&numero=100"))
	if page.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", page.Status)
	}
	assertContains(t, body, `class="result result-pendiente"`, "Número de sorteo 100", "Aspirantes por delante: 80")
}

func TestCalculadoraInvalidInput(t *testing.T) {
	t.Parallel()

	view, err := NewCalculadoraView(fixtureConfig(t))
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{name: "unknown tribunal", target: "/?tribunal=tribunal9&numero=3", want: "Selecciona un tribunal válido."},
		{name: "missing query", target: "/?tribunal=tribunal1", want: "Introduce un número de sorteo o un nombre."},
		{name: "not a number", target: "/?tribunal=tribunal1&numero=abc", want: "El número de sorteo debe ser un entero positivo."},
		{name: "zero", target: "/?tribunal=tribunal1&numero=0", want: "El número de sorteo debe ser un entero positivo."},
		{name: "out of range", target: "/?tribunal=tribunal1&numero=500", want: "El número de sorteo no figura en la lista de aspirantes."},
		{name: "long name", target: "/?tribunal=tribunal1&nombre=" + strings.Repeat("a", maxNameLength+1), want: "El nombre introducido es demasiado largo."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			page, body := render(t, view, request(t, tc.target))
			if page.Status != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", page.Status)
			}
			assertContains(t, body, `role="alert"`, tc.want, `<form class="calculator-form"`)
		})
	}
}

func TestViewsReportUnavailableData(t *testing.T) {
	t.Parallel()

	cfg := Config{Source: fakeSource{err: errors.New("disk gone")}}
	calc, err := NewCalculadoraView(cfg)
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	stats, err := NewStatisticsView(cfg)
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	for _, view := range []app.View{calc, stats} {
		_, err := view.Render(request(t, "/?tribunal=tribunal1&numero=3"))
		if got := apperrors.HTTPStatus(err); got != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503 (err %v)", got, err)
		}
		if key := apperrors.LocalizationKey(err); key != "error.data_unavailable" {
			t.Fatalf("key = %q", key)
		}
	}
}

func TestStatisticsView(t *testing.T) {
	t.Parallel()

	cfg := fixtureConfig(t)
	cfg.Runs = fakeRuns{
		"convocatorias/tribunal1": {FinishedAt: mustDate(t, "2025-03-05")},
	}
	view, err := NewStatisticsView(cfg)
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	page, body := render(t, view, request(t, "/estadisticas"))
	if page.Title != "Estadísticas" {
		t.Fatalf("title = %q", page.Title)
	}
	assertContains(t, body,
		`<article data-tribunal="tribunal1">`,
		"<dt>Aspirantes</dt><dd>100</dd>",
		"<dt>Convocados</dt><dd>20</dd>",
		"<dt>Sesiones</dt><dd>2</dd>",
		"<dt>Primera sesión</dt><dd>lunes, 3 de marzo de 2025</dd>",
		"<td>libre</td><td>100</td>",
		"Datos actualizados el miércoles, 5 de marzo de 2025.",
		`<article data-tribunal="tribunal2"><h2>Tribunal 2</h2><p class="empty">Sin datos</p></article>`,
	)
}

func TestConvocatoriasView(t *testing.T) {
	t.Parallel()

	view, err := NewConvocatoriasView(fixtureConfig(t))
	if err != nil {
		t.Fatalf("new view: %v", err)
	}
	_, body := render(t, view, request(t, "/convocatorias"))
	assertContains(t, body,
		`<time datetime="2025-03-03">lunes, 3 de marzo de 2025</time>`,
		"<li>Del 1 al 10</li>",
		"<li>Del 11 al 20</li>",
		"10 aspirantes",
		"<caption>marzo de 2025</caption>",
		"No hay convocatorias publicadas.",
	)
	if strings.Index(body, `<time datetime="2025-03-03">`) > strings.Index(body, `<time datetime="2025-03-04">`) {
		t.Fatal("sessions should be listed in date order")
	}
	if got := rangeLabel(i18n.Printer(i18n.Default()), oposicion.Rango{Inicio: 4, Fin: 4}); got != "Número 4" {
		t.Fatalf("single range label = %q", got)
	}
}

func TestErrorPages(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/nope", nil)
	page, err := NotFound.Render(r)
	if err != nil || page.Status != http.StatusNotFound || page.Title != "Página no encontrada" {
		t.Fatalf("not found page = %+v, %v", page, err)
	}

	failure := apperrors.Wrap(apperrors.KindUnavailable, "error.data_unavailable", errors.New("boom"))
	page = ErrorPage(r, http.StatusServiceUnavailable, failure)
	var buf bytes.Buffer
	if err := page.Body.Render(r.Context(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	assertContains(t, buf.String(), "Los datos del tribunal no están disponibles.")
}
