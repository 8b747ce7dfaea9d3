// Package catalog loads the embedded locale message catalogs and registers
// them with golang.org/x/text/message.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// BaseLocale is the source locale every other catalog falls back to.
const BaseLocale = "es-ES"

//go:embed locales/*/*.yaml
var embeddedFS embed.FS

var defaultBundle = mustLoadEmbedded()

// Bundle holds every locale's messages keyed by message key.
type Bundle struct {
	locales map[string]map[string]string
	// namespaces tracks which namespace files each locale defined.
	namespaces map[string][]string
	builder    *catalog.Builder
	tags       []language.Tag
}

// Default returns the embedded bundle.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads the catalogs shipped with the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedFS)
}

// LoadFromFS loads locales/<locale>/<namespace>.yaml files from catalogFS.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	bundle := &Bundle{
		locales:    map[string]map[string]string{},
		namespaces: map[string][]string{},
	}
	for _, file := range paths {
		data, err := fs.ReadFile(catalogFS, file)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", file, err)
		}
		parsed, err := parseCatalogFile(data)
		if err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", file, err)
		}
		if err := bundle.add(file, parsed); err != nil {
			return nil, err
		}
	}
	if !bundle.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	if err := bundle.build(); err != nil {
		return nil, err
	}
	return bundle, nil
}

func (b *Bundle) add(file string, parsed catalogFile) error {
	localeFromPath := path.Base(path.Dir(file))
	namespaceFromPath := strings.TrimSuffix(path.Base(file), path.Ext(file))

	if parsed.Locale != localeFromPath {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", file, parsed.Locale, localeFromPath)
	}
	if parsed.Namespace != namespaceFromPath {
		return fmt.Errorf("catalog %s: namespace %q must match filename %q", file, parsed.Namespace, namespaceFromPath)
	}

	messages, ok := b.locales[parsed.Locale]
	if !ok {
		messages = map[string]string{}
		b.locales[parsed.Locale] = messages
	}
	b.namespaces[parsed.Locale] = append(b.namespaces[parsed.Locale], parsed.Namespace)
	for key, value := range parsed.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", file)
		}
		if strings.HasPrefix(key, "core.") && parsed.Namespace != "core" {
			return fmt.Errorf("catalog %s: key %q must be defined in core namespace", file, key)
		}
		if _, exists := messages[key]; exists {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", file, key, parsed.Locale)
		}
		messages[key] = value
	}
	return nil
}

// build compiles the messages into an x/text catalog. Keys missing from a
// locale take the base locale text.
func (b *Bundle) build() error {
	b.builder = catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale)))
	base := b.locales[BaseLocale]
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		b.tags = append(b.tags, tag)
		messages := b.locales[locale]
		for _, key := range sortedKeys(base) {
			value, ok := messages[key]
			if !ok {
				value = base[key]
			}
			if err := b.builder.SetString(tag, key, value); err != nil {
				return fmt.Errorf("set %s %q: %w", locale, key, err)
			}
		}
	}
	// Keep the base locale first so language matching defaults to it.
	sort.SliceStable(b.tags, func(i, j int) bool {
		return b.tags[i].String() == BaseLocale && b.tags[j].String() != BaseLocale
	})
	return nil
}

// Register copies every message into message.DefaultCatalog so plain
// message.NewPrinter callers see them.
func (b *Bundle) Register() error {
	if b == nil {
		return nil
	}
	for locale, messages := range b.locales {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		for _, key := range sortedKeys(messages) {
			if err := message.SetString(tag, key, messages[key]); err != nil {
				return fmt.Errorf("register %s %q: %w", locale, key, err)
			}
		}
	}
	return nil
}

// Printer returns a printer for tag bound to this bundle's catalog.
func (b *Bundle) Printer(tag language.Tag) *message.Printer {
	if b == nil || b.builder == nil {
		return message.NewPrinter(tag)
	}
	return message.NewPrinter(tag, message.Catalog(b.builder))
}

// Matcher matches requested languages against the bundle's locales, base
// locale first.
func (b *Bundle) Matcher() language.Matcher {
	return language.NewMatcher(b.Tags())
}

// Tags returns the bundle's locales as language tags, base locale first.
func (b *Bundle) Tags() []language.Tag {
	if b == nil {
		return nil
	}
	return append([]language.Tag(nil), b.tags...)
}

// HasLocale reports whether the locale exists in this bundle.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Locales returns all locale identifiers in sorted order.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Namespaces returns the namespaces a locale defines, sorted.
func (b *Bundle) Namespaces(locale string) []string {
	if b == nil {
		return nil
	}
	out := append([]string(nil), b.namespaces[strings.TrimSpace(locale)]...)
	sort.Strings(out)
	return out
}

// Message returns one message with base-locale fallback.
func (b *Bundle) Message(locale, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	key = strings.TrimSpace(key)
	if value, ok := b.locales[strings.TrimSpace(locale)][key]; ok {
		return value, true
	}
	value, ok := b.locales[BaseLocale][key]
	return value, ok
}

// MissingKeys lists base-locale keys that locale does not translate.
func (b *Bundle) MissingKeys(locale string) []string {
	if b == nil {
		return nil
	}
	messages := b.locales[strings.TrimSpace(locale)]
	var missing []string
	for _, key := range sortedKeys(b.locales[BaseLocale]) {
		if _, ok := messages[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func mustLoadEmbedded() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return bundle
}
