package views

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/app"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/i18n"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/templates"
)

// StatisticsView summarises each tribunal's registrations and progress.
type StatisticsView struct {
	cfg Config
}

// NewStatisticsView builds the statistics view.
func NewStatisticsView(cfg Config) (*StatisticsView, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	return &StatisticsView{cfg: cfg}, nil
}

// Render implements app.View.
func (v *StatisticsView) Render(r *http.Request) (app.Page, error) {
	ctx := r.Context()
	loc, _ := i18n.FromContext(ctx)

	sections := make([]templ.Component, 0, len(v.cfg.Tribunales))
	for _, tribunal := range v.cfg.Tribunales {
		data, err := v.cfg.load(ctx, tribunal)
		if err != nil {
			return app.Page{}, err
		}
		stats := oposicion.ComputeStats(tribunal, data.Aspirants, data.Convocatorias)
		updated := v.cfg.lastUpdate(ctx, "convocatorias", tribunal.ID)
		sections = append(sections, statsSection(loc, stats, updated.IsZero(), templates.LongDate(loc, updated)))
	}

	title := i18n.T(loc, "web.stats.title")
	return app.Page{
		Title:  title,
		Status: http.StatusOK,
		Body: templates.El("section", []templates.Attr{templates.Class("statistics")},
			templates.El("h1", nil, templates.Text(title)),
			templates.Join(sections...),
		),
	}, nil
}

type summaryItem struct {
	key   string
	value string
}

func statsSection(loc i18n.Localizer, stats oposicion.Stats, unknownUpdate bool, updated string) templ.Component {
	heading := templates.El("h2", nil, templates.Text(stats.Tribunal.Label))
	if stats.TotalAspirantes == 0 && stats.Sesiones == 0 {
		return templates.El("article", []templates.Attr{templates.A("data-tribunal", stats.Tribunal.ID)},
			heading,
			templates.El("p", []templates.Attr{templates.Class("empty")}, templates.Text(i18n.T(loc, "web.stats.empty"))),
		)
	}

	summary := []summaryItem{
		{key: "web.stats.total", value: i18n.T(loc, "%d", stats.TotalAspirantes)},
		{key: "web.stats.convocados", value: i18n.T(loc, "%d", stats.Convocados)},
		{key: "web.stats.progreso", value: i18n.T(loc, "%.1f %%", stats.Progreso)},
		{key: "web.stats.sesiones", value: i18n.T(loc, "%d", stats.Sesiones)},
		{key: "web.stats.media", value: i18n.T(loc, "%.1f", stats.MediaPorSesion)},
		{key: "web.stats.primera", value: dateOrEmpty(loc, stats.Primera.IsZero(), templates.LongDate(loc, stats.Primera))},
		{key: "web.stats.ultima", value: dateOrEmpty(loc, stats.Ultima.IsZero(), templates.LongDate(loc, stats.Ultima))},
	}

	return templates.El("article", []templates.Attr{templates.A("data-tribunal", stats.Tribunal.ID)},
		heading,
		templates.El("dl", []templates.Attr{templates.Class("summary")}, templates.Each(summary, func(_ int, item summaryItem) templ.Component {
			return templates.Join(
				templates.El("dt", nil, templates.Text(i18n.T(loc, item.key))),
				templates.El("dd", nil, templates.Text(item.value)),
			)
		})),
		templates.If(len(stats.PorTurno) > 0, templates.El("table", []templates.Attr{templates.Class("por-turno")},
			templates.El("caption", nil, templates.Text(i18n.T(loc, "web.stats.por_turno"))),
			templates.El("thead", nil, templates.El("tr", nil,
				templates.El("th", []templates.Attr{templates.A("scope", "col")}, templates.Text(i18n.T(loc, "web.stats.turno"))),
				templates.El("th", []templates.Attr{templates.A("scope", "col")}, templates.Text(i18n.T(loc, "web.stats.total"))),
			)),
			templates.El("tbody", nil, templates.Each(stats.PorTurno, func(_ int, row oposicion.TurnoCount) templ.Component {
				return templates.El("tr", nil,
					templates.El("td", nil, templates.Text(row.Turno)),
					templates.El("td", nil, templates.Text(i18n.T(loc, "%d", row.Count))),
				)
			})),
		)),
		templates.If(len(stats.PorSesion) > 0, templates.El("table", []templates.Attr{templates.Class("por-sesion")},
			templates.El("caption", nil, templates.Text(i18n.T(loc, "web.stats.por_sesion"))),
			templates.El("thead", nil, templates.El("tr", nil,
				templates.El("th", []templates.Attr{templates.A("scope", "col")}, templates.Text(i18n.T(loc, "web.stats.fecha"))),
				templates.El("th", []templates.Attr{templates.A("scope", "col")}, templates.Text(i18n.T(loc, "web.stats.convocados"))),
			)),
			templates.El("tbody", nil, templates.Each(stats.PorSesion, func(_ int, row oposicion.SessionCount) templ.Component {
				return templates.El("tr", nil,
					templates.El("td", nil, templates.El("time", []templates.Attr{templates.A("datetime", row.Fecha.Format(oposicion.DateLayout))},
						templates.Text(templates.LongDate(loc, row.Fecha)))),
					templates.El("td", nil, templates.Text(i18n.T(loc, "%d", row.Count))),
				)
			})),
		)),
		templates.If(!unknownUpdate, templates.El("p", []templates.Attr{templates.Class("updated")},
			templates.Text(i18n.T(loc, "web.stats.updated", updated)))),
	)
}

func dateOrEmpty(loc i18n.Localizer, zero bool, formatted string) string {
	if zero {
		return i18n.T(loc, "web.stats.empty")
	}
	return formatted
}
