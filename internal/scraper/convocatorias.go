package scraper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
	"golang.org/x/net/html"
)

var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// ParseSpanishDate parses dates such as "lunes, 3 de marzo de 2025". The
// weekday prefix before the comma is optional and ignored.
func ParseSpanishDate(value string) (time.Time, error) {
	raw := value
	if _, after, ok := strings.Cut(value, ","); ok {
		value = after
	}
	fields := strings.Fields(strings.ToLower(value))
	if len(fields) != 5 || fields[1] != "de" || fields[3] != "de" {
		return time.Time{}, fmt.Errorf("parse spanish date %q: unexpected format", raw)
	}
	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse spanish date %q: day: %w", raw, err)
	}
	month, ok := spanishMonths[fields[2]]
	if !ok {
		return time.Time{}, fmt.Errorf("parse spanish date %q: unknown month %q", raw, fields[2])
	}
	year, err := strconv.Atoi(fields[4])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse spanish date %q: year: %w", raw, err)
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || date.Month() != month {
		return time.Time{}, fmt.Errorf("parse spanish date %q: day out of range", raw)
	}
	return date, nil
}

// ConvocatoriasPage is the parsed session list of one tribunal.
type ConvocatoriasPage struct {
	Convocatorias []oposicion.Convocatoria
	// Skipped counts cards whose date or range could not be read.
	Skipped int
}

// ParseConvocatorias reads every .convocatoria-card of doc. Cards on the
// same date are grouped in first-seen order; a missing end number means a
// single-number range.
func ParseConvocatorias(doc *html.Node) ConvocatoriasPage {
	var page ConvocatoriasPage
	index := map[string]int{}
	for _, card := range findAll(doc, withClass("convocatoria-card")) {
		fecha, rango, err := parseCard(card)
		if err != nil {
			page.Skipped++
			continue
		}
		key := fecha.Format(oposicion.DateLayout)
		if i, ok := index[key]; ok {
			page.Convocatorias[i].Convocados = append(page.Convocatorias[i].Convocados, rango)
			continue
		}
		index[key] = len(page.Convocatorias)
		page.Convocatorias = append(page.Convocatorias, oposicion.Convocatoria{
			Fecha:      fecha,
			Convocados: []oposicion.Rango{rango},
		})
	}
	return page
}

func parseCard(card *html.Node) (time.Time, oposicion.Rango, error) {
	fechaNode := findFirst(card, withClass("fecha-convocatoria"))
	if fechaNode == nil {
		return time.Time{}, oposicion.Rango{}, fmt.Errorf("card without fecha-convocatoria")
	}
	fecha, err := ParseSpanishDate(text(fechaNode))
	if err != nil {
		return time.Time{}, oposicion.Rango{}, err
	}
	initNode := findFirst(card, withClass("rango-sorteo-init"))
	if initNode == nil {
		return time.Time{}, oposicion.Rango{}, fmt.Errorf("card without rango-sorteo-init")
	}
	inicio, err := strconv.Atoi(text(initNode))
	if err != nil {
		return time.Time{}, oposicion.Rango{}, fmt.Errorf("parse rango inicio: %w", err)
	}
	fin := inicio
	if finNode := findFirst(card, withClass("rango-sorteo-fin")); finNode != nil {
		fin, err = strconv.Atoi(text(finNode))
		if err != nil {
			return time.Time{}, oposicion.Rango{}, fmt.Errorf("parse rango fin: %w", err)
		}
	}
	return fecha, oposicion.Rango{Inicio: inicio, Fin: fin}, nil
}
