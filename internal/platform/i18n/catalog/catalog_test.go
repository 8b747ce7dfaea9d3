package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/language"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	t.Parallel()

	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for _, locale := range []string{"es-ES", "en-US"} {
		if !bundle.HasLocale(locale) {
			t.Fatalf("expected locale %s", locale)
		}
	}
	if got := bundle.Namespaces("es-ES"); len(got) != 3 || got[0] != "core" || got[1] != "errors" || got[2] != "web" {
		t.Fatalf("es-ES namespaces = %v", got)
	}
	if tags := bundle.Tags(); len(tags) == 0 || tags[0] != language.MustParse(BaseLocale) {
		t.Fatalf("tags = %v, want base locale first", tags)
	}
}

func TestEmbeddedLocalesTranslateEveryBaseKey(t *testing.T) {
	t.Parallel()

	bundle := Default()
	for _, locale := range bundle.Locales() {
		if missing := bundle.MissingKeys(locale); len(missing) > 0 {
			t.Fatalf("locale %s misses keys %v", locale, missing)
		}
	}
}

func TestPrinterFormatsPerLocale(t *testing.T) {
	t.Parallel()

	bundle := Default()
	es := bundle.Printer(language.MustParse("es-ES"))
	if got := es.Sprintf("core.date.long", "lunes", 3, "marzo", "2025"); got != "lunes, 3 de marzo de 2025" {
		t.Fatalf("es date = %q", got)
	}
	en := bundle.Printer(language.MustParse("en-US"))
	if got := en.Sprintf("core.date.long", "Monday", 3, "March", "2025"); got != "Monday, March 3, 2025" {
		t.Fatalf("en date = %q", got)
	}
	if got := en.Sprintf("core.nav.Estadisticas"); got != "Statistics" {
		t.Fatalf("en nav = %q", got)
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	t.Parallel()

	value, ok := Default().Message("fr-FR", "core.nav.Calculadora")
	if !ok || value != "Calculadora" {
		t.Fatalf("message = %q, %v", value, ok)
	}
	if _, ok := Default().Message("es-ES", "missing.key"); ok {
		t.Fatal("expected missing key")
	}
}

func TestLoadFromFSRejectsCoreKeyOutsideCoreNamespace(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/es-ES/web.yaml"), `locale: "es-ES"
namespace: "web"
messages:
  "core.bad": "no"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/es-ES/core.yaml"), `locale: "es-ES"
namespace: "core"
messages:
  "core.good": "sí"
`)
	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromFSRejectsDuplicateKeysAcrossNamespaces(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/es-ES/core.yaml"), `locale: "es-ES"
namespace: "core"
messages:
  "a.key": "a"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/es-ES/web.yaml"), `locale: "es-ES"
namespace: "web"
messages:
  "a.key": "b"
`)
	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/core.yaml"), `locale: "en-US"
namespace: "core"
messages:
  "core.title": "Title"
`)
	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestLoadFromFSRejectsLocaleMismatch(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/es-ES/core.yaml"), `locale: "en-US"
namespace: "core"
messages:
  "core.title": "Title"
`)
	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected locale mismatch error")
	}
}

func TestParseCatalogFile(t *testing.T) {
	t.Parallel()

	parsed, err := parseCatalogFile([]byte(`# comment
locale: "es-ES"
namespace: "web"
messages:
  "web.quote": "dice \"hola\": vale"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Messages["web.quote"] != `dice "hola": vale` {
		t.Fatalf("messages = %v", parsed.Messages)
	}
	for _, bad := range []string{
		"locale: es-ES\n",
		"locale: \"es-ES\"\nnamespace: \"web\"\n\"k\": \"v\"\n",
		"locale: \"es-ES\"\nnamespace: \"web\"\nmessages:\n  \"k\" \"v\"\n",
		"locale: \"es-ES\"\nnamespace: \"web\"\nmessages:\n",
	} {
		if _, err := parseCatalogFile([]byte(bad)); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
