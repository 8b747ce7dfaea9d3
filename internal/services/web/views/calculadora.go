package views

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-playground/validator/v10"
	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/app"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/calendar"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/i18n"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/templates"
)

const (
	maxNameLength = 120
	maxMatches    = 10
)

type calculatorForm struct {
	Tribunal string `validate:"required,tribunal"`
	Numero   string `validate:"required_without=Nombre,omitempty,number"`
	Nombre   string `validate:"required_without=Numero,omitempty,max=120"`
}

func (f calculatorForm) empty() bool {
	return f.Tribunal == "" && f.Numero == "" && f.Nombre == ""
}

// CalculadoraView estimates the exam date for a draw number or a name.
type CalculadoraView struct {
	cfg      Config
	validate *validator.Validate
}

// NewCalculadoraView builds the calculator view.
func NewCalculadoraView(cfg Config) (*CalculadoraView, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("tribunal", func(fl validator.FieldLevel) bool {
		_, ok := cfg.tribunal(fl.Field().String())
		return ok
	}); err != nil {
		return nil, fmt.Errorf("register tribunal validator: %w", err)
	}
	return &CalculadoraView{cfg: cfg, validate: validate}, nil
}

// Render implements app.View. Invalid input re-renders the form with status
// 400 instead of failing the view.
func (v *CalculadoraView) Render(r *http.Request) (app.Page, error) {
	ctx := r.Context()
	loc, _ := i18n.FromContext(ctx)
	query := r.URL.Query()
	form := calculatorForm{
		Tribunal: strings.TrimSpace(query.Get("tribunal")),
		Numero:   strings.TrimSpace(query.Get("numero")),
		Nombre:   strings.TrimSpace(query.Get("nombre")),
	}

	page := app.Page{Title: i18n.T(loc, "web.calculator.title"), Status: http.StatusOK}
	if form.empty() {
		page.Body = v.layout(loc, form, nil)
		return page, nil
	}
	if err := v.validate.Struct(form); err != nil {
		return v.invalid(page, loc, form, formErrorKey(err)), nil
	}

	tribunal, _ := v.cfg.tribunal(form.Tribunal)
	data, err := v.cfg.load(ctx, tribunal)
	if err != nil {
		return app.Page{}, err
	}

	var (
		numero  int
		matched *oposicion.Aspirant
	)
	if form.Numero != "" {
		numero, err = strconv.Atoi(form.Numero)
		if err != nil || numero < 1 {
			return v.invalid(page, loc, form, "error.invalid_number"), nil
		}
	} else {
		matches := oposicion.FindByName(data.Aspirants, form.Nombre, maxMatches)
		switch len(matches) {
		case 0:
			page.Body = v.layout(loc, form, templates.Notice("info", i18n.T(loc, "web.calculator.no_match")))
			return page, nil
		case 1:
			matched = &matches[0].Aspirant
			numero = matched.NumeroSorteo
		default:
			page.Body = v.layout(loc, form, matchList(loc, tribunal, matches))
			return page, nil
		}
	}

	estimate, err := oposicion.Calculate(oposicion.EstimateInput{
		NumeroSorteo:  numero,
		Total:         oposicion.DrawTotal(data.Aspirants),
		Convocatorias: data.Convocatorias,
		Reference:     v.cfg.Now(),
	})
	if errors.Is(err, oposicion.ErrInvalidNumber) {
		return v.invalid(page, loc, form, "error.number_out_of_range"), nil
	}
	if err != nil {
		return app.Page{}, fmt.Errorf("calculate %s/%d: %w", tribunal.ID, numero, err)
	}

	cal, _ := calendar.FromContext(ctx)
	page.Body = v.layout(loc, form, v.result(loc, cal, data, estimate, matched))
	return page, nil
}

func (v *CalculadoraView) invalid(page app.Page, loc i18n.Localizer, form calculatorForm, key string) app.Page {
	page.Status = http.StatusBadRequest
	page.Body = v.layout(loc, form, templates.Notice("error", i18n.T(loc, key)))
	return page
}

// formErrorKey maps the first failed field to its message key.
func formErrorKey(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "error.missing_query"
	}
	fieldError := fieldErrors[0]
	if fieldError.Tag() == "required_without" {
		return "error.missing_query"
	}
	switch fieldError.Field() {
	case "Tribunal":
		return "error.invalid_tribunal"
	case "Nombre":
		return "error.invalid_name"
	default:
		return "error.invalid_number"
	}
}

func (v *CalculadoraView) layout(loc i18n.Localizer, form calculatorForm, outcome templ.Component) templ.Component {
	return templates.El("section", []templates.Attr{templates.Class("calculator")},
		templates.El("h1", nil, templates.Text(i18n.T(loc, "web.calculator.title"))),
		templates.El("p", []templates.Attr{templates.Class("intro")}, templates.Text(i18n.T(loc, "web.calculator.intro"))),
		v.form(loc, form),
		outcome,
	)
}

func (v *CalculadoraView) form(loc i18n.Localizer, form calculatorForm) templ.Component {
	selected := form.Tribunal
	if _, ok := v.cfg.tribunal(selected); !ok {
		selected = v.cfg.Tribunales[0].ID
	}
	return templates.El("form", []templates.Attr{templates.Class("calculator-form"), templates.A("method", "get")},
		templates.El("label", []templates.Attr{templates.A("for", "tribunal")}, templates.Text(i18n.T(loc, "web.calculator.tribunal"))),
		templates.El("select", []templates.Attr{templates.A("id", "tribunal"), templates.A("name", "tribunal")},
			templates.Each(v.cfg.Tribunales, func(_ int, tribunal oposicion.Tribunal) templ.Component {
				return templates.El("option", []templates.Attr{
					templates.A("value", tribunal.ID),
					templates.Flag("selected", tribunal.ID == selected),
				}, templates.Text(tribunal.Label))
			}),
		),
		templates.El("label", []templates.Attr{templates.A("for", "numero")}, templates.Text(i18n.T(loc, "web.calculator.numero"))),
		templates.Void("input",
			templates.A("id", "numero"),
			templates.A("name", "numero"),
			templates.A("type", "number"),
			templates.A("min", "1"),
			templates.A("inputmode", "numeric"),
			templates.A("value", form.Numero),
		),
		templates.El("label", []templates.Attr{templates.A("for", "nombre")}, templates.Text(i18n.T(loc, "web.calculator.nombre"))),
		templates.Void("input",
			templates.A("id", "nombre"),
			templates.A("name", "nombre"),
			templates.A("type", "text"),
			templates.A("maxlength", strconv.Itoa(maxNameLength)),
			templates.A("autocomplete", "name"),
			templates.A("value", form.Nombre),
		),
		templates.El("button", []templates.Attr{templates.A("type", "submit")}, templates.Text(i18n.T(loc, "web.calculator.submit"))),
	)
}

func matchList(loc i18n.Localizer, tribunal oposicion.Tribunal, matches []oposicion.NameMatch) templ.Component {
	return templates.Join(
		templates.El("p", nil, templates.Text(i18n.T(loc, "web.calculator.matches"))),
		templates.El("ul", []templates.Attr{templates.Class("matches")}, templates.Each(matches, func(_ int, match oposicion.NameMatch) templ.Component {
			numero := strconv.Itoa(match.Aspirant.NumeroSorteo)
			query := url.Values{"tribunal": {tribunal.ID}, "numero": {numero}}
			return templates.El("li", nil, templates.El("a", []templates.Attr{templates.A("href", "?"+query.Encode())},
				templates.Textf("%s (%s)", match.Aspirant.NombreApellidos, numero)))
		})),
	)
}

func (v *CalculadoraView) result(loc i18n.Localizer, cal *calendar.Calendar, data tribunalData, estimate oposicion.Estimate, matched *oposicion.Aspirant) templ.Component {
	var lines []templ.Component
	switch estimate.Status {
	case oposicion.StatusConvocado:
		lines = append(lines, templates.Text(i18n.T(loc, "web.calculator.status.convocado", templates.LongDate(loc, estimate.Fecha))))
	case oposicion.StatusPasado:
		lines = append(lines, templates.Text(i18n.T(loc, "web.calculator.status.pasado")))
	case oposicion.StatusPendiente:
		lines = append(lines,
			templates.Text(i18n.T(loc, "web.calculator.status.pendiente", templates.LongDate(loc, estimate.Fecha))),
			templates.Text(i18n.T(loc, "web.calculator.ahead", estimate.Ahead, estimate.SessionsAhead, estimate.Pace)),
		)
	default:
		lines = append(lines, templates.Text(i18n.T(loc, "web.calculator.status.sin_datos")))
	}
	if estimate.LastCalled > 0 && estimate.Status != oposicion.StatusConvocado {
		lines = append(lines, templates.Text(i18n.T(loc, "web.calculator.last_called",
			strconv.Itoa(estimate.LastCalled), templates.LongDate(loc, estimate.LastSession))))
	}

	heading := i18n.T(loc, "web.calculator.result_for", strconv.Itoa(estimate.NumeroSorteo))
	return templates.El("section", []templates.Attr{templates.Class("result result-" + string(estimate.Status)), templates.A("aria-live", "polite")},
		templates.El("h2", nil, templates.Text(heading)),
		templates.If(matched != nil, templates.El("p", []templates.Attr{templates.Class("aspirant")}, templates.Text(matchedName(matched)))),
		templates.Each(lines, func(_ int, line templ.Component) templ.Component {
			return templates.El("p", nil, line)
		}),
		resultCalendar(cal, data.Convocatorias, estimate, v.cfg.Now()),
	)
}

func matchedName(matched *oposicion.Aspirant) string {
	if matched == nil {
		return ""
	}
	return matched.NombreApellidos
}

// resultCalendar shows the month of the estimate with the published sessions
// and the estimated date marked.
func resultCalendar(cal *calendar.Calendar, convocatorias []oposicion.Convocatoria, estimate oposicion.Estimate, now time.Time) templ.Component {
	if cal == nil {
		return nil
	}
	focus := estimate.Fecha
	if focus.IsZero() {
		focus = estimate.LastSession
	}
	if focus.IsZero() {
		focus = now
	}
	marks := sessionMarks(convocatorias)
	switch estimate.Status {
	case oposicion.StatusConvocado:
		marks.Set(estimate.Fecha, "called", "")
	case oposicion.StatusPendiente:
		marks.Set(estimate.Fecha, "estimate", "")
	}
	return cal.MonthView(cal.Month(focus.Year(), focus.Month()), marks)
}

func sessionMarks(convocatorias []oposicion.Convocatoria) calendar.Marks {
	marks := calendar.Marks{}
	for _, convocatoria := range convocatorias {
		marks.Set(convocatoria.Fecha, "session", "")
	}
	return marks
}
