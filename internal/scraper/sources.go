// Package scraper downloads the published aspirant listings and exam
// sessions of each tribunal and stores them for the web service.
package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Sources maps tribunal ids to the pages the scraper reads for them.
type Sources struct {
	Inscripciones map[string]string `toml:"inscripciones"`
	Convocatorias map[string]string `toml:"convocatorias"`
}

// DefaultSources returns the pages published for the 2025 call.
func DefaultSources() Sources {
	return Sources{
		Inscripciones: map[string]string{
			"tribunal1": "https://oposiciones2025.notariado.org/web/tribunal-1/consulta-de-inscripciones",
			"tribunal2": "https://oposiciones2025.notariado.org/web/tribunal-2/consulta-de-inscripciones",
		},
		Convocatorias: map[string]string{
			"tribunal1": "https://oposiciones2025.notariado.org/web/tribunal-1/convocatorias-a-examen",
			"tribunal2": "https://oposiciones2025.notariado.org/web/tribunal-2/convocatorias-a-examen",
		},
	}
}

// LoadSources reads a TOML file and merges its entries over DefaultSources.
// An empty path returns the defaults.
func LoadSources(path string) (Sources, error) {
	sources := DefaultSources()
	path = strings.TrimSpace(path)
	if path == "" {
		return sources, nil
	}
	var overrides Sources
	meta, err := toml.DecodeFile(path, &overrides)
	if err != nil {
		return Sources{}, fmt.Errorf("decode sources %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Sources{}, fmt.Errorf("decode sources %s: unknown key %q", path, undecoded[0].String())
	}
	for id, raw := range overrides.Inscripciones {
		sources.Inscripciones[id] = raw
	}
	for id, raw := range overrides.Convocatorias {
		sources.Convocatorias[id] = raw
	}
	if err := sources.Validate(); err != nil {
		return Sources{}, err
	}
	return sources, nil
}

// Validate checks that every configured page is an absolute http(s) URL.
func (s Sources) Validate() error {
	var errs []error
	check := func(kind string, pages map[string]string) {
		for _, id := range sortedKeys(pages) {
			if strings.TrimSpace(id) == "" {
				errs = append(errs, fmt.Errorf("%s: tribunal id is required", kind))
				continue
			}
			u, err := url.Parse(strings.TrimSpace(pages[id]))
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				errs = append(errs, fmt.Errorf("%s.%s: invalid url %q", kind, id, pages[id]))
			}
		}
	}
	check("inscripciones", s.Inscripciones)
	check("convocatorias", s.Convocatorias)
	return errors.Join(errs...)
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
