package calendar

import (
	"context"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/templates"
)

// Marks maps dates to CSS classes and an optional title for their cells.
type Marks map[string]Mark

// Mark decorates one day.
type Mark struct {
	Class string
	Title string
}

// Set marks day, appending class to any class already present.
func (m Marks) Set(day time.Time, class, title string) {
	key := day.Format(oposicion.DateLayout)
	current := m[key]
	if current.Class != "" {
		if slices.Contains(strings.Fields(current.Class), class) {
			class = current.Class
		} else {
			class = current.Class + " " + class
		}
	}
	if title == "" {
		title = current.Title
	}
	m[key] = Mark{Class: class, Title: title}
}

// MonthView renders grid as a table with localized headings.
func (c *Calendar) MonthView(grid Month, marks Marks) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		loc := c.localizer(ctx)
		weekdays := c.Weekdays()

		head := templates.El("thead", nil, templates.El("tr", nil, templates.Each(weekdays[:], func(_ int, day time.Weekday) templ.Component {
			return templates.El("th", []templates.Attr{templates.A("scope", "col"), templates.A("abbr", templates.WeekdayName(loc, day))},
				templates.Text(templates.WeekdayInitial(loc, day)))
		})))
		body := templates.El("tbody", nil, templates.Each(grid.Weeks, func(_ int, week [7]Day) templ.Component {
			return templates.El("tr", nil, templates.Each(week[:], func(_ int, day Day) templ.Component {
				return dayCell(day, marks)
			}))
		}))
		table := templates.El("table", []templates.Attr{templates.Class("calendar")},
			templates.El("caption", nil, templates.Text(templates.MonthYear(loc, grid.Year, grid.Month))),
			head,
			body,
		)
		return table.Render(ctx, w)
	})
}

func dayCell(day Day, marks Marks) templ.Component {
	key := day.Date.Format(oposicion.DateLayout)
	class := ""
	if !day.InMonth {
		class = "outside"
	}
	attrs := []templates.Attr{templates.A("data-date", key)}
	if mark, ok := marks[key]; ok && day.InMonth {
		class = mark.Class
		if mark.Title != "" {
			attrs = append(attrs, templates.A("title", mark.Title))
		}
	}
	if class != "" {
		attrs = append(attrs, templates.Class(class))
	}
	return templates.El("td", attrs, templates.Text(strconv.Itoa(day.Date.Day())))
}
