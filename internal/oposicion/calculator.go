package oposicion

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Status classifies an estimate.
type Status string

const (
	// StatusConvocado means the number was already called on Estimate.Fecha.
	StatusConvocado Status = "convocado"
	// StatusPasado means the calls moved past the number without listing it.
	StatusPasado Status = "pasado"
	// StatusPendiente means the number is still ahead; Estimate.Fecha is a projection.
	StatusPendiente Status = "pendiente"
	// StatusSinDatos means no session history is available yet.
	StatusSinDatos Status = "sin_datos"
)

// ErrInvalidNumber is returned for draw numbers outside 1..total.
var ErrInvalidNumber = errors.New("invalid draw number")

// EstimateInput carries everything Calculate needs.
type EstimateInput struct {
	NumeroSorteo  int
	Total         int
	Convocatorias []Convocatoria
	Reference     time.Time
}

// Estimate is the outcome of Calculate.
type Estimate struct {
	Status        Status
	NumeroSorteo  int
	Fecha         time.Time
	Ahead         int
	SessionsAhead int
	Pace          float64
	LastCalled    int
	LastSession   time.Time
	ExamWeekdays  []time.Weekday
}

// Calculate estimates when NumeroSorteo is called.
//
// Total is the number of registered aspirants; when zero the highest number
// seen in the history (or the queried number) stands in for it.
func Calculate(in EstimateInput) (Estimate, error) {
	number := in.NumeroSorteo
	if number < 1 || (in.Total > 0 && number > in.Total) {
		return Estimate{}, fmt.Errorf("%w: %d", ErrInvalidNumber, number)
	}
	out := Estimate{NumeroSorteo: number}

	sessions := sortedByDate(in.Convocatorias)
	if len(sessions) == 0 {
		out.Status = StatusSinDatos
		return out, nil
	}

	total := in.Total
	if total <= 0 {
		total = max(highestNumber(sessions), number)
	}

	for _, session := range sessions {
		for _, rango := range session.Convocados {
			if rango.Contains(number) {
				out.Status = StatusConvocado
				out.Fecha = session.Fecha
				return out, nil
			}
		}
	}

	start := sessions[0].Convocados[0].Inicio
	position := func(n int) int {
		return ((n-start)%total + total) % total
	}

	lastPos := -1
	called := 0
	for _, session := range sessions {
		for _, rango := range session.Convocados {
			if pos := position(rango.Fin); pos > lastPos {
				lastPos = pos
				out.LastCalled = rango.Fin
			}
		}
		called += session.Count(total)
	}
	last := sessions[len(sessions)-1].Fecha
	out.LastSession = last
	out.ExamWeekdays = examWeekdays(sessions)

	ahead := position(number) - lastPos
	if ahead <= 0 {
		out.Status = StatusPasado
		return out, nil
	}

	distinct := distinctDays(sessions)
	out.Pace = float64(called) / float64(distinct)
	out.Ahead = ahead
	out.SessionsAhead = int(math.Ceil(float64(ahead) / out.Pace))
	out.Status = StatusPendiente

	anchor := dayOf(last)
	if ref := dayOf(in.Reference); !in.Reference.IsZero() && ref.After(anchor) {
		anchor = ref
	}
	out.Fecha = advanceExamDays(anchor, out.SessionsAhead, out.ExamWeekdays)
	return out, nil
}

func distinctDays(sessions []Convocatoria) int {
	seen := make(map[time.Time]struct{}, len(sessions))
	for _, session := range sessions {
		seen[dayOf(session.Fecha)] = struct{}{}
	}
	return len(seen)
}

// examWeekdays returns the weekdays sessions were held on, Monday first,
// falling back to Monday-Friday.
func examWeekdays(sessions []Convocatoria) []time.Weekday {
	seen := map[time.Weekday]bool{}
	for _, session := range sessions {
		seen[session.Fecha.Weekday()] = true
	}
	if len(seen) == 0 {
		return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	}
	out := make([]time.Weekday, 0, len(seen))
	for day := range seen {
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool {
		return mondayFirst(out[i]) < mondayFirst(out[j])
	})
	return out
}

func mondayFirst(day time.Weekday) int {
	return (int(day) + 6) % 7
}

// advanceExamDays returns the n-th exam day strictly after from.
func advanceExamDays(from time.Time, n int, weekdays []time.Weekday) time.Time {
	allowed := map[time.Weekday]bool{}
	for _, day := range weekdays {
		allowed[day] = true
	}
	day := from
	for n > 0 {
		day = day.AddDate(0, 0, 1)
		if allowed[day.Weekday()] {
			n--
		}
	}
	return day
}
