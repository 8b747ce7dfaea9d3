package oposicion

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NameMatch is one FindByName result. Distance is zero for substring hits.
type NameMatch struct {
	Aspirant Aspirant
	Distance int
}

// FindByName searches aspirants by name ignoring case and accents. Substring
// matches win; otherwise the closest names by edit distance are returned.
func FindByName(aspirants []Aspirant, query string, limit int) []NameMatch {
	needle := normalizeName(query)
	if needle == "" || limit <= 0 {
		return nil
	}

	var exact, fuzzy []NameMatch
	threshold := max(2, len([]rune(needle))/3)
	for _, aspirant := range aspirants {
		name := normalizeName(aspirant.NombreApellidos)
		if strings.Contains(name, needle) {
			exact = append(exact, NameMatch{Aspirant: aspirant})
			continue
		}
		if distance := nameDistance(name, needle); distance <= threshold {
			fuzzy = append(fuzzy, NameMatch{Aspirant: aspirant, Distance: distance})
		}
	}

	matches := exact
	if len(matches) == 0 {
		matches = fuzzy
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Aspirant.NumeroOrden < matches[j].Aspirant.NumeroOrden
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// nameDistance compares the query against the whole name and against each
// run of as many words as the query has.
func nameDistance(name, needle string) int {
	best := levenshtein.ComputeDistance(name, needle)
	words := strings.Fields(name)
	width := len(strings.Fields(needle))
	for i := 0; i+width <= len(words); i++ {
		candidate := strings.Join(words[i:i+width], " ")
		best = min(best, levenshtein.ComputeDistance(candidate, needle))
	}
	return best
}

func normalizeName(value string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		value,
	)
	if err != nil {
		stripped = value
	}
	stripped = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, stripped)
	return strings.Join(strings.Fields(stripped), " ")
}
