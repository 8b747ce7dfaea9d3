package oposicion

import (
	"sort"
	"strings"
	"time"
)

// TurnoCount is the number of aspirants registered under one turno.
type TurnoCount struct {
	Turno string
	Count int
}

// SessionCount is the number of aspirants called on one date.
type SessionCount struct {
	Fecha time.Time
	Count int
}

// Stats summarises a tribunal's registrations and progress.
type Stats struct {
	Tribunal        Tribunal
	TotalAspirantes int
	PorTurno        []TurnoCount
	Convocados      int
	Progreso        float64
	Sesiones        int
	MediaPorSesion  float64
	Primera         time.Time
	Ultima          time.Time
	PorSesion       []SessionCount
}

// ComputeStats builds Stats from a tribunal's aspirants and sessions.
func ComputeStats(tribunal Tribunal, aspirants []Aspirant, convocatorias []Convocatoria) Stats {
	stats := Stats{Tribunal: tribunal, TotalAspirantes: len(aspirants)}

	byTurno := map[string]int{}
	for _, aspirant := range aspirants {
		turno := strings.TrimSpace(aspirant.Turno)
		if turno == "" {
			turno = "-"
		}
		byTurno[turno]++
	}
	for turno, count := range byTurno {
		stats.PorTurno = append(stats.PorTurno, TurnoCount{Turno: turno, Count: count})
	}
	sort.Slice(stats.PorTurno, func(i, j int) bool {
		if stats.PorTurno[i].Count != stats.PorTurno[j].Count {
			return stats.PorTurno[i].Count > stats.PorTurno[j].Count
		}
		return stats.PorTurno[i].Turno < stats.PorTurno[j].Turno
	})

	sessions := sortedByDate(convocatorias)
	if len(sessions) == 0 {
		return stats
	}
	total := DrawTotal(aspirants)
	if total == 0 {
		total = highestNumber(sessions)
	}

	perDay := map[time.Time]int{}
	var days []time.Time
	for _, session := range sessions {
		day := dayOf(session.Fecha)
		if _, ok := perDay[day]; !ok {
			days = append(days, day)
		}
		count := session.Count(total)
		perDay[day] += count
		stats.Convocados += count
	}
	for _, day := range days {
		stats.PorSesion = append(stats.PorSesion, SessionCount{Fecha: day, Count: perDay[day]})
	}

	stats.Sesiones = len(days)
	stats.Primera = days[0]
	stats.Ultima = days[len(days)-1]
	stats.MediaPorSesion = float64(stats.Convocados) / float64(stats.Sesiones)
	if total > 0 {
		stats.Progreso = min(100, 100*float64(stats.Convocados)/float64(total))
	}
	return stats
}
