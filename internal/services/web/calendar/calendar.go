// Package calendar provides month grids and a month component to views.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/calculadora-oposicion/internal/services/web/app"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/i18n"
	"golang.org/x/text/language"
)

// PluginName is the name the calendar installs and provides itself under.
const PluginName = "calendar"

// Weekday is an ISO weekday, Monday = 1. The zero value means Monday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

func (d Weekday) time() time.Weekday {
	if d < Monday || d > Sunday {
		return time.Monday
	}
	return time.Weekday(int(d) % 7)
}

// Config configures the calendar. The zero value starts weeks on Monday and
// labels days in the request language.
type Config struct {
	FirstWeekday Weekday
	// Locale forces the label language when set, e.g. "es-ES".
	Locale string
}

// Day is one cell of a month grid.
type Day struct {
	Date    time.Time
	InMonth bool
}

// Month is a grid of whole weeks covering one month.
type Month struct {
	Year  int
	Month time.Month
	Weeks [][7]Day
}

// Calendar builds month grids.
type Calendar struct {
	first  time.Weekday
	locale *language.Tag
}

// New validates cfg and builds a Calendar.
func New(cfg Config) (*Calendar, error) {
	if cfg.FirstWeekday < 0 || cfg.FirstWeekday > Sunday {
		return nil, fmt.Errorf("first weekday %d out of range", cfg.FirstWeekday)
	}
	c := &Calendar{first: cfg.FirstWeekday.time()}
	if locale := strings.TrimSpace(cfg.Locale); locale != "" {
		tag, ok := i18n.ParseTag(locale)
		if !ok {
			return nil, fmt.Errorf("unsupported calendar locale %q", locale)
		}
		c.locale = &tag
	}
	return c, nil
}

// Name implements app.Plugin.
func (c *Calendar) Name() string {
	return PluginName
}

// Install provides the calendar to views.
func (c *Calendar) Install(a *app.App) error {
	return a.Provide(PluginName, c)
}

// FirstWeekday returns the first column's weekday.
func (c *Calendar) FirstWeekday() time.Weekday {
	return c.first
}

// Weekdays returns the column weekdays in display order.
func (c *Calendar) Weekdays() [7]time.Weekday {
	var out [7]time.Weekday
	for i := range out {
		out[i] = time.Weekday((int(c.first) + i) % 7)
	}
	return out
}

// Month returns the grid for year and month. Leading and trailing cells
// belong to the neighbouring months.
func (c *Calendar) Month(year int, month time.Month) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) - int(c.first) + 7) % 7
	cursor := first.AddDate(0, 0, -offset)

	grid := Month{Year: first.Year(), Month: first.Month()}
	for {
		var week [7]Day
		for i := range week {
			week[i] = Day{Date: cursor, InMonth: cursor.Month() == first.Month()}
			cursor = cursor.AddDate(0, 0, 1)
		}
		grid.Weeks = append(grid.Weeks, week)
		if cursor.Month() != first.Month() {
			break
		}
	}
	return grid
}

// localizer returns the forced locale printer, or the request localizer.
func (c *Calendar) localizer(ctx context.Context) i18n.Localizer {
	if c.locale != nil {
		return i18n.Printer(*c.locale)
	}
	loc, _ := i18n.FromContext(ctx)
	return loc
}

// FromApp returns the calendar installed in a.
func FromApp(a *app.App) (*Calendar, bool) {
	value, ok := a.Capability(PluginName)
	if !ok {
		return nil, false
	}
	c, ok := value.(*Calendar)
	return c, ok
}

// FromContext returns the calendar of the app serving ctx.
func FromContext(ctx context.Context) (*Calendar, bool) {
	a := app.FromContext(ctx)
	if a == nil {
		return nil, false
	}
	return FromApp(a)
}
