package oposicion

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the published data.
const DateLayout = "2006-01-02"

// ErrUnknownTribunal is returned for tribunal ids outside the catalog.
var ErrUnknownTribunal = errors.New("unknown tribunal")

// ErrNotFound is returned by lookups that match nothing, such as a tribunal
// that was never scraped.
var ErrNotFound = errors.New("not found")

// Tribunal identifies one examining board.
type Tribunal struct {
	ID    string
	Label string
}

// DefaultTribunales lists the boards of the current call.
func DefaultTribunales() []Tribunal {
	return []Tribunal{
		{ID: "tribunal1", Label: "Tribunal 1"},
		{ID: "tribunal2", Label: "Tribunal 2"},
	}
}

// TribunalByID returns the tribunal with the given id from DefaultTribunales.
func TribunalByID(id string) (Tribunal, error) {
	id = strings.TrimSpace(id)
	for _, tribunal := range DefaultTribunales() {
		if tribunal.ID == id {
			return tribunal, nil
		}
	}
	return Tribunal{}, ErrUnknownTribunal
}

// Aspirant is one registered candidate.
type Aspirant struct {
	NumeroOrden     int
	NombreApellidos string
	NumeroSorteo    int
	Turno           string
}

// Rango is an inclusive range of draw numbers called in one session. A
// range whose end is lower than its start wraps past the highest number.
type Rango struct {
	Inicio int
	Fin    int
}

// Convocatoria is one exam session date and the ranges called for it.
type Convocatoria struct {
	Fecha      time.Time
	Convocados []Rango
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
}

// Source reads published aspirant and session data for a tribunal.
// Missing data is reported as empty slices, not errors.
type Source interface {
	Aspirants(ctx context.Context, tribunalID string) ([]Aspirant, error)
	Convocatorias(ctx context.Context, tribunalID string) ([]Convocatoria, error)
}

// Sink persists freshly scraped data for a tribunal, replacing what was
// stored before.
type Sink interface {
	SaveAspirants(ctx context.Context, tribunalID string, aspirants []Aspirant) error
	SaveConvocatorias(ctx context.Context, tribunalID string, convocatorias []Convocatoria) error
}

// ScrapeRun records one scraper pass over a tribunal's published pages.
type ScrapeRun struct {
	ID         string
	Target     string
	TribunalID string
	StartedAt  time.Time
	FinishedAt time.Time
	Records    int
	Error      string
}
