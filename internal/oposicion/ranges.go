package oposicion

import (
	"sort"
	"time"
)

func (r Rango) wraps() bool {
	return r.Fin < r.Inicio
}

// Contains reports whether number falls inside the range.
func (r Rango) Contains(number int) bool {
	if r.wraps() {
		return number >= r.Inicio || number <= r.Fin
	}
	return number >= r.Inicio && number <= r.Fin
}

// Size returns how many draw numbers the range covers given the total
// number of aspirants.
func (r Rango) Size(total int) int {
	if r.wraps() {
		return total - r.Inicio + 1 + r.Fin
	}
	return r.Fin - r.Inicio + 1
}

// Count returns how many aspirants were called in the session.
func (c Convocatoria) Count(total int) int {
	count := 0
	for _, rango := range c.Convocados {
		count += rango.Size(total)
	}
	return count
}

// sortedByDate returns a copy of convocatorias in ascending date order,
// dropping sessions that call nobody.
func sortedByDate(convocatorias []Convocatoria) []Convocatoria {
	out := make([]Convocatoria, 0, len(convocatorias))
	for _, convocatoria := range convocatorias {
		if len(convocatoria.Convocados) == 0 || convocatoria.Fecha.IsZero() {
			continue
		}
		out = append(out, convocatoria)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Fecha.Before(out[j].Fecha)
	})
	return out
}

// DrawTotal is the size of the draw: the highest NumeroSorteo among
// aspirants. Withdrawals leave gaps, so it can exceed len(aspirants). When
// no aspirant carries a number the list length stands in.
func DrawTotal(aspirants []Aspirant) int {
	highest := 0
	for _, aspirant := range aspirants {
		highest = max(highest, aspirant.NumeroSorteo)
	}
	if highest == 0 {
		return len(aspirants)
	}
	return highest
}

// highestNumber returns the largest draw number mentioned in the history.
func highestNumber(convocatorias []Convocatoria) int {
	highest := 0
	for _, convocatoria := range convocatorias {
		for _, rango := range convocatoria.Convocados {
			highest = max(highest, rango.Inicio, rango.Fin)
		}
	}
	return highest
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
