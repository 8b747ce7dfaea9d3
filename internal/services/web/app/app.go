// Package app owns the application instance: the ordered plugin registry,
// the capability registry shared with views, and the single mount that turns
// the instance into an HTTP handler.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/a-h/templ"
)

var (
	// ErrPluginInstalled is returned when a plugin name is installed twice.
	ErrPluginInstalled = errors.New("plugin already installed")
	// ErrCapabilityExists is returned when a capability name is provided twice.
	ErrCapabilityExists = errors.New("capability already provided")
	// ErrAlreadyMounted is returned by a second Mount and by registry changes
	// after the first Mount.
	ErrAlreadyMounted = errors.New("app already mounted")
	// ErrAnchorRequired is returned when Mount receives an empty anchor.
	ErrAnchorRequired = errors.New("mount anchor is required")
	// ErrNoNavigator is returned when Mount runs before a navigator plugin.
	ErrNoNavigator = errors.New("no navigator installed")
)

// Plugin is a capability installed into the app at startup.
type Plugin interface {
	Name() string
	Install(*App) error
}

// Page is what a view renders for one request.
type Page struct {
	Title  string
	Status int
	Body   templ.Component
}

// View renders the page for a matched route.
type View interface {
	Render(*http.Request) (Page, error)
}

// ViewFunc adapts a function to View.
type ViewFunc func(*http.Request) (Page, error)

// Render calls f.
func (f ViewFunc) Render(r *http.Request) (Page, error) {
	return f(r)
}

// Navigation is the navigator's decision for one request.
type Navigation struct {
	// Route is the matched route name, empty when nothing matched.
	Route string
	View  View
	// Redirect, when set, sends the client to this location instead.
	Redirect string
	// Allow, when set, rejects the method and lists the accepted ones.
	Allow []string
}

// Navigator resolves requests to views and builds links to named routes.
type Navigator interface {
	Navigate(*http.Request) Navigation
	Href(name string) (string, bool)
	RouteNames() []string
	Base() string
}

// PageView describes one rendered page for navigation observers.
type PageView struct {
	Route  string
	Path   string
	Status int
}

// NavigationObserver is notified after each page is rendered.
type NavigationObserver interface {
	ObserveNavigation(ctx context.Context, view PageView)
}

// App is one application instance. It is configured on the startup
// goroutine and read-only once mounted.
type App struct {
	mu           sync.RWMutex
	plugins      []string
	installed    map[string]bool
	capabilities map[string]any
	head         []templ.Component
	observers    []NavigationObserver
	navigator    Navigator
	anchor       string
	mounted      bool

	logger    *log.Logger
	notFound  View
	errorPage ErrorPageFunc
	shell     ShellFunc
}

// New constructs an application instance.
func New(opts ...Option) *App {
	a := &App{
		installed:    map[string]bool{},
		capabilities: map[string]any{},
		logger:       log.Default(),
		notFound:     defaultNotFound,
		errorPage:    defaultErrorPage,
		shell:        defaultShell,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Use installs plugin. Plugins install in call order; a failed Install is
// not recorded.
func (a *App) Use(plugin Plugin) error {
	if plugin == nil {
		return fmt.Errorf("plugin is nil")
	}
	name := strings.TrimSpace(plugin.Name())
	if name == "" {
		return fmt.Errorf("plugin name is required")
	}

	a.mu.Lock()
	if a.mounted {
		a.mu.Unlock()
		return fmt.Errorf("install plugin %q: %w", name, ErrAlreadyMounted)
	}
	if a.installed[name] {
		a.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPluginInstalled, name)
	}
	a.installed[name] = true
	a.mu.Unlock()

	if err := plugin.Install(a); err != nil {
		a.mu.Lock()
		delete(a.installed, name)
		a.mu.Unlock()
		return fmt.Errorf("install plugin %q: %w", name, err)
	}

	a.mu.Lock()
	a.plugins = append(a.plugins, name)
	a.mu.Unlock()
	return nil
}

// Plugins returns installed plugin names in install order.
func (a *App) Plugins() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.plugins...)
}

// Installed reports whether a plugin with name is installed.
func (a *App) Installed(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, installed := range a.plugins {
		if installed == name {
			return true
		}
	}
	return false
}

// Provide registers a capability that views can look up while rendering.
func (a *App) Provide(name string, value any) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("capability name is required")
	}
	if value == nil {
		return fmt.Errorf("capability %q is nil", name)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mounted {
		return fmt.Errorf("provide %q: %w", name, ErrAlreadyMounted)
	}
	if _, exists := a.capabilities[name]; exists {
		return fmt.Errorf("%w: %s", ErrCapabilityExists, name)
	}
	a.capabilities[name] = value
	return nil
}

// Capability returns a provided capability.
func (a *App) Capability(name string) (any, bool) {
	if a == nil {
		return nil, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	value, ok := a.capabilities[strings.TrimSpace(name)]
	return value, ok
}

// AddHead appends a component to the document head of every page.
func (a *App) AddHead(component templ.Component) error {
	if component == nil {
		return fmt.Errorf("head component is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mounted {
		return fmt.Errorf("add head: %w", ErrAlreadyMounted)
	}
	a.head = append(a.head, component)
	return nil
}

// Observe registers a navigation observer.
func (a *App) Observe(observer NavigationObserver) error {
	if observer == nil {
		return fmt.Errorf("navigation observer is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mounted {
		return fmt.Errorf("observe: %w", ErrAlreadyMounted)
	}
	a.observers = append(a.observers, observer)
	return nil
}

// SetNavigator installs the navigator. Only one navigator is allowed.
func (a *App) SetNavigator(navigator Navigator) error {
	if navigator == nil {
		return fmt.Errorf("navigator is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mounted {
		return fmt.Errorf("set navigator: %w", ErrAlreadyMounted)
	}
	if a.navigator != nil {
		return fmt.Errorf("navigator already installed")
	}
	a.navigator = navigator
	return nil
}

// Navigator returns the installed navigator, or nil.
func (a *App) Navigator() Navigator {
	if a == nil {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.navigator
}

// Mount attaches the app to anchor, the id of the element views render
// into, and returns the handler serving it. An app mounts at most once.
func (a *App) Mount(anchor string) (http.Handler, error) {
	anchor = strings.TrimSpace(anchor)
	if anchor == "" {
		return nil, ErrAnchorRequired
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mounted {
		return nil, ErrAlreadyMounted
	}
	if a.navigator == nil {
		return nil, ErrNoNavigator
	}
	a.mounted = true
	a.anchor = anchor
	a.logger.Printf("app mounted anchor=%s base=%s plugins=%s", anchor, a.navigator.Base(), strings.Join(a.plugins, ","))
	return &handler{app: a}, nil
}

// Mounted reports whether Mount succeeded.
func (a *App) Mounted() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mounted
}

// Anchor returns the mount anchor, empty before Mount.
func (a *App) Anchor() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.anchor
}

type appContextKey struct{}

// WithApp stores a in ctx.
func WithApp(ctx context.Context, a *App) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, appContextKey{}, a)
}

// FromContext returns the app serving the request, or nil.
func FromContext(ctx context.Context) *App {
	if ctx == nil {
		return nil
	}
	a, _ := ctx.Value(appContextKey{}).(*App)
	return a
}
