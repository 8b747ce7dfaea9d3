package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
)

func TestOpenRequiresDir(t *testing.T) {
	t.Parallel()

	if _, err := Open("  "); err == nil {
		t.Fatal("expected empty dir error")
	}
}

func TestReadsPublishedLayout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tribunal1_inscritos.json"), `[
  {"numero_orden": 1, "nombre_apellidos": "Núñez Ruiz, Ana", "numero_sorteo": 57, "turno": "Libre"}
]`)
	writeFile(t, filepath.Join(dir, "convocatorias.json"), `{
  "tribunal1": [{"fecha": "2025-03-03", "convocados": [{"inicio": 10, "fin": 14}, {"inicio": 16, "fin": 16}]}],
  "tribunal2": []
}`)

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	aspirants, err := store.Aspirants(context.Background(), "tribunal1")
	if err != nil {
		t.Fatalf("Aspirants() error = %v", err)
	}
	if len(aspirants) != 1 || aspirants[0].NombreApellidos != "Núñez Ruiz, Ana" || aspirants[0].NumeroSorteo != 57 {
		t.Fatalf("aspirants = %+v", aspirants)
	}

	convocatorias, err := store.Convocatorias(context.Background(), "tribunal1")
	if err != nil {
		t.Fatalf("Convocatorias() error = %v", err)
	}
	if len(convocatorias) != 1 || len(convocatorias[0].Convocados) != 2 {
		t.Fatalf("convocatorias = %+v", convocatorias)
	}
	if want := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC); !convocatorias[0].Fecha.Equal(want) {
		t.Fatalf("fecha = %s", convocatorias[0].Fecha)
	}
}

func TestMissingFilesReadAsEmpty(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	aspirants, err := store.Aspirants(context.Background(), "tribunal2")
	if err != nil || len(aspirants) != 0 {
		t.Fatalf("Aspirants() = %v, %v", aspirants, err)
	}
	convocatorias, err := store.Convocatorias(context.Background(), "tribunal2")
	if err != nil || len(convocatorias) != 0 {
		t.Fatalf("Convocatorias() = %v, %v", convocatorias, err)
	}
}

func TestSaveConvocatoriasKeepsOtherTribunals(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ctx := context.Background()
	first := []oposicion.Convocatoria{{Fecha: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), Convocados: []oposicion.Rango{{Inicio: 1, Fin: 5}}}}
	second := []oposicion.Convocatoria{{Fecha: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), Convocados: []oposicion.Rango{{Inicio: 9, Fin: 9}}}}
	if err := store.SaveConvocatorias(ctx, "tribunal1", first); err != nil {
		t.Fatalf("save tribunal1: %v", err)
	}
	if err := store.SaveConvocatorias(ctx, "tribunal2", second); err != nil {
		t.Fatalf("save tribunal2: %v", err)
	}

	got, err := store.Convocatorias(ctx, "tribunal1")
	if err != nil {
		t.Fatalf("Convocatorias() error = %v", err)
	}
	if len(got) != 1 || got[0].Convocados[0] != (oposicion.Rango{Inicio: 1, Fin: 5}) {
		t.Fatalf("tribunal1 = %+v", got)
	}

	raw, err := os.ReadFile(filepath.Join(store.Dir(), "convocatorias.json"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.Contains(string(raw), `"fecha": "2025-03-04"`) {
		t.Fatalf("file missing tribunal2 entry: %s", raw)
	}
}

func TestSaveAspirantsKeepsNonASCIINames(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	err = store.SaveAspirants(context.Background(), "tribunal1", []oposicion.Aspirant{
		{NumeroOrden: 1, NombreApellidos: "Ibáñez, Íñigo", NumeroSorteo: 3, Turno: "Libre"},
	})
	if err != nil {
		t.Fatalf("SaveAspirants() error = %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(store.Dir(), "tribunal1_inscritos.json"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.Contains(string(raw), "Ibáñez, Íñigo") {
		t.Fatalf("expected unescaped name, got %s", raw)
	}
}

func TestRejectsPathLikeTribunalIDs(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := store.Aspirants(context.Background(), "../etc"); err == nil {
		t.Fatal("expected invalid tribunal id error")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestEmptySessionsAreDropped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	published := `{"tribunal1": [{"fecha": "2025-03-03", "convocados": []}, {"fecha": "2025-03-04", "convocados": [{"inicio": 1, "fin": 4}]}]}`
	if err := os.WriteFile(filepath.Join(dir, "convocatorias.json"), []byte(published), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ctx := context.Background()

	got, err := store.Convocatorias(ctx, "tribunal1")
	if err != nil {
		t.Fatalf("Convocatorias() error = %v", err)
	}
	if len(got) != 1 || got[0].Fecha.Day() != 4 {
		t.Fatalf("read = %+v, want only the 4 March session", got)
	}

	if err := store.SaveConvocatorias(ctx, "tribunal2", []oposicion.Convocatoria{
		{Fecha: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
		{Fecha: time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC), Convocados: []oposicion.Rango{{Inicio: 5, Fin: 9}}},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "convocatorias.json"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if strings.Contains(string(raw), "2025-03-05") {
		t.Fatalf("empty session written: %s", raw)
	}
	got, err = store.Convocatorias(ctx, "tribunal2")
	if err != nil || len(got) != 1 {
		t.Fatalf("tribunal2 = %+v, %v", got, err)
	}
}
