package views

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/a-h/templ"
	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/app"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/calendar"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/i18n"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/templates"
)

// ConvocatoriasView lists every published session with its called ranges.
type ConvocatoriasView struct {
	cfg Config
}

// NewConvocatoriasView builds the convocatorias view.
func NewConvocatoriasView(cfg Config) (*ConvocatoriasView, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	return &ConvocatoriasView{cfg: cfg}, nil
}

// Render implements app.View.
func (v *ConvocatoriasView) Render(r *http.Request) (app.Page, error) {
	ctx := r.Context()
	loc, _ := i18n.FromContext(ctx)
	cal, _ := calendar.FromContext(ctx)

	sections := make([]templ.Component, 0, len(v.cfg.Tribunales))
	for _, tribunal := range v.cfg.Tribunales {
		data, err := v.cfg.load(ctx, tribunal)
		if err != nil {
			return app.Page{}, err
		}
		sections = append(sections, convocatoriasSection(loc, cal, data))
	}

	title := i18n.T(loc, "web.convocatorias.title")
	return app.Page{
		Title:  title,
		Status: http.StatusOK,
		Body: templates.El("section", []templates.Attr{templates.Class("convocatorias")},
			templates.El("h1", nil, templates.Text(title)),
			templates.Join(sections...),
		),
	}, nil
}

func convocatoriasSection(loc i18n.Localizer, cal *calendar.Calendar, data tribunalData) templ.Component {
	heading := templates.El("h2", nil, templates.Text(data.Tribunal.Label))
	attrs := []templates.Attr{templates.A("data-tribunal", data.Tribunal.ID)}
	if len(data.Convocatorias) == 0 {
		return templates.El("article", attrs, heading,
			templates.El("p", []templates.Attr{templates.Class("empty")}, templates.Text(i18n.T(loc, "web.convocatorias.empty"))))
	}

	sessions := append([]oposicion.Convocatoria(nil), data.Convocatorias...)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Fecha.Before(sessions[j].Fecha)
	})
	total := oposicion.DrawTotal(data.Aspirants)

	var month templ.Component
	if cal != nil {
		latest := sessions[len(sessions)-1].Fecha
		month = cal.MonthView(cal.Month(latest.Year(), latest.Month()), sessionMarks(sessions))
	}

	return templates.El("article", attrs,
		heading,
		month,
		templates.El("ol", []templates.Attr{templates.Class("sessions")}, templates.Each(sessions, func(_ int, session oposicion.Convocatoria) templ.Component {
			return templates.El("li", nil,
				templates.El("time", []templates.Attr{templates.A("datetime", session.Fecha.Format(oposicion.DateLayout))},
					templates.Text(templates.LongDate(loc, session.Fecha))),
				templates.El("ul", []templates.Attr{templates.Class("ranges")}, templates.Each(session.Convocados, func(_ int, rango oposicion.Rango) templ.Component {
					return templates.El("li", nil, templates.Text(rangeLabel(loc, rango)))
				})),
				templates.If(total > 0, templates.El("p", []templates.Attr{templates.Class("count")},
					templates.Text(i18n.T(loc, "web.convocatorias.total", session.Count(total))))),
			)
		})),
	)
}

func rangeLabel(loc i18n.Localizer, rango oposicion.Rango) string {
	if rango.Inicio == rango.Fin {
		return i18n.T(loc, "web.convocatorias.single", strconv.Itoa(rango.Inicio))
	}
	return i18n.T(loc, "web.convocatorias.range", strconv.Itoa(rango.Inicio), strconv.Itoa(rango.Fin))
}
