// Package router maps URL paths under a configurable base path to views.
package router

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/louisbranch/calculadora-oposicion/internal/platform/config"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/app"
	"github.com/louisbranch/calculadora-oposicion/internal/services/web/routepath"
)

// PluginName is the name the router installs under.
const PluginName = "router"

// Config holds router settings.
type Config struct {
	// Base is the deployment prefix every route resolves under.
	Base string `env:"OPOSICIONES_BASE_URL" envDefault:"/"`
}

// ConfigFromEnv reads Config from the process environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Route maps a path relative to the base to a named view.
type Route struct {
	Path      string
	Name      string
	Component app.View
}

// Match is a resolved route.
type Match struct {
	Route Route
	// Path is the route path relative to the base.
	Path string
}

// Router is an ordered route table. It is immutable after New.
type Router struct {
	base   string
	routes []Route
	byPath map[string]int
	byName map[string]int
}

// New validates routes and builds a Router. Paths and names must be unique.
func New(cfg Config, routes ...Route) (*Router, error) {
	r := &Router{
		base:   routepath.NormalizeBase(cfg.Base),
		byPath: make(map[string]int, len(routes)),
		byName: make(map[string]int, len(routes)),
	}
	for i, route := range routes {
		route.Name = strings.TrimSpace(route.Name)
		if route.Name == "" {
			return nil, fmt.Errorf("route %d: name is required", i)
		}
		if !strings.HasPrefix(strings.TrimSpace(route.Path), "/") {
			return nil, fmt.Errorf("route %q: path %q must start with /", route.Name, route.Path)
		}
		route.Path = cleanPath(route.Path)
		if route.Component == nil {
			return nil, fmt.Errorf("route %q: component is required", route.Name)
		}
		if previous, ok := r.byPath[route.Path]; ok {
			return nil, fmt.Errorf("route %q duplicates path %q of route %q", route.Name, route.Path, r.routes[previous].Name)
		}
		if _, ok := r.byName[route.Name]; ok {
			return nil, fmt.Errorf("route name %q is declared twice", route.Name)
		}
		r.byPath[route.Path] = len(r.routes)
		r.byName[route.Name] = len(r.routes)
		r.routes = append(r.routes, route)
	}
	if len(r.routes) == 0 {
		return nil, fmt.Errorf("at least one route is required")
	}
	return r, nil
}

// Name implements app.Plugin.
func (r *Router) Name() string {
	return PluginName
}

// Install registers the router as the app navigator.
func (r *Router) Install(a *app.App) error {
	if err := a.SetNavigator(r); err != nil {
		return err
	}
	return a.Provide(PluginName, r)
}

// Base returns the normalized base path, with leading and trailing slash.
func (r *Router) Base() string {
	return r.base
}

// Routes returns the route table in declaration order.
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// RouteNames returns route names in declaration order.
func (r *Router) RouteNames() []string {
	names := make([]string, 0, len(r.routes))
	for _, route := range r.routes {
		names = append(names, route.Name)
	}
	return names
}

// Resolve matches an absolute URL path. Paths outside the base never match;
// a trailing slash is ignored.
func (r *Router) Resolve(urlPath string) (Match, bool) {
	if !strings.HasPrefix(urlPath, r.base) {
		return Match{}, false
	}
	relative := cleanPath("/" + strings.TrimPrefix(urlPath, r.base))
	index, ok := r.byPath[relative]
	if !ok {
		return Match{}, false
	}
	return Match{Route: r.routes[index], Path: relative}, true
}

// Href returns the absolute path of the named route.
func (r *Router) Href(name string) (string, bool) {
	index, ok := r.byName[strings.TrimSpace(name)]
	if !ok {
		return "", false
	}
	return routepath.Join(r.base, r.routes[index].Path), true
}

// Navigate implements app.Navigator. Only GET and HEAD are served; the base
// path without its trailing slash redirects to the base.
func (r *Router) Navigate(req *http.Request) app.Navigation {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return app.Navigation{Allow: []string{http.MethodGet, http.MethodHead}}
	}
	if r.base != "/" && req.URL.Path == strings.TrimSuffix(r.base, "/") {
		target := r.base
		if req.URL.RawQuery != "" {
			target += "?" + req.URL.RawQuery
		}
		return app.Navigation{Redirect: target}
	}
	match, ok := r.Resolve(req.URL.Path)
	if !ok {
		return app.Navigation{}
	}
	return app.Navigation{Route: match.Route.Name, View: match.Route.Component}
}

func cleanPath(value string) string {
	cleaned := path.Clean("/" + strings.TrimSpace(value))
	if cleaned == "." {
		return "/"
	}
	return cleaned
}
