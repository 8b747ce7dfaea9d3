package templates

import (
	"strconv"
	"time"

	"github.com/louisbranch/calculadora-oposicion/internal/services/web/platform/i18n"
)

// LongDate formats t as "lunes, 3 de marzo de 2025" in the localizer's language.
func LongDate(loc i18n.Localizer, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return i18n.T(loc, "core.date.long",
		WeekdayName(loc, t.Weekday()),
		t.Day(),
		MonthName(loc, t.Month()),
		strconv.Itoa(t.Year()),
	)
}

// MonthYear formats a calendar month heading.
func MonthYear(loc i18n.Localizer, year int, month time.Month) string {
	return i18n.T(loc, "core.date.month_year", MonthName(loc, month), strconv.Itoa(year))
}

// MonthName returns the localized month name.
func MonthName(loc i18n.Localizer, month time.Month) string {
	return i18n.T(loc, "core.month."+strconv.Itoa(int(month)))
}

// WeekdayName returns the localized weekday name.
func WeekdayName(loc i18n.Localizer, day time.Weekday) string {
	return i18n.T(loc, "core.weekday."+strconv.Itoa(int(day)))
}

// WeekdayInitial returns the localized short weekday label.
func WeekdayInitial(loc i18n.Localizer, day time.Weekday) string {
	return i18n.T(loc, "core.weekday.short."+strconv.Itoa(int(day)))
}
