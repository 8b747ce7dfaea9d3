// Package routepath stores canonical route paths and names for the web
// service. Page paths are relative to the configured base path.
package routepath

import "strings"

const (
	Calculadora   = "/"
	Estadisticas  = "/estadisticas"
	Convocatorias = "/convocatorias"

	// Server-level endpoints, outside the base path.
	Health  = "/up"
	Metrics = "/metrics"

	StaticPrefix = "static/"
)

// Route names.
const (
	NameCalculadora   = "Calculadora"
	NameEstadisticas  = "Estadisticas"
	NameConvocatorias = "Convocatorias"
)

// NormalizeBase returns base with a leading and trailing slash. An empty
// base is "/".
func NormalizeBase(base string) string {
	base = strings.TrimSpace(base)
	base = strings.Trim(base, "/")
	if base == "" {
		return "/"
	}
	return "/" + base + "/"
}

// Join places a route path under base.
func Join(base, path string) string {
	base = NormalizeBase(base)
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	return base + path
}
