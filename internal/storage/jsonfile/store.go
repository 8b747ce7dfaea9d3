// Package jsonfile stores aspirant and session data as JSON files, in the
// same layout the publishing pipeline has always produced:
//
//	<dir>/<tribunal>_inscritos.json
//	<dir>/convocatorias.json
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
)

const convocatoriasFile = "convocatorias.json"

type aspirantRecord struct {
	NumeroOrden     int    `json:"numero_orden"`
	NombreApellidos string `json:"nombre_apellidos"`
	NumeroSorteo    int    `json:"numero_sorteo"`
	Turno           string `json:"turno"`
}

type rangoRecord struct {
	Inicio int `json:"inicio"`
	Fin    int `json:"fin"`
}

type convocatoriaRecord struct {
	Fecha      string        `json:"fecha"`
	Convocados []rangoRecord `json:"convocados"`
}

// Store reads and writes the JSON data directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open returns a store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: filepath.Clean(dir)}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Aspirants returns the tribunal's registered aspirants.
func (s *Store) Aspirants(ctx context.Context, tribunalID string) ([]oposicion.Aspirant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := aspirantsFile(tribunalID)
	if err != nil {
		return nil, err
	}
	var records []aspirantRecord
	if err := s.readJSON(name, &records); err != nil {
		return nil, err
	}
	out := make([]oposicion.Aspirant, 0, len(records))
	for _, record := range records {
		out = append(out, oposicion.Aspirant{
			NumeroOrden:     record.NumeroOrden,
			NombreApellidos: record.NombreApellidos,
			NumeroSorteo:    record.NumeroSorteo,
			Turno:           record.Turno,
		})
	}
	return out, nil
}

// Convocatorias returns the tribunal's session history. Sessions listing no
// ranges are skipped.
func (s *Store) Convocatorias(ctx context.Context, tribunalID string) ([]oposicion.Convocatoria, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTribunalID(tribunalID); err != nil {
		return nil, err
	}
	all, err := s.readConvocatorias()
	if err != nil {
		return nil, err
	}
	records := all[strings.TrimSpace(tribunalID)]
	out := make([]oposicion.Convocatoria, 0, len(records))
	for _, record := range records {
		if len(record.Convocados) == 0 {
			continue
		}
		fecha, err := oposicion.ParseDate(record.Fecha)
		if err != nil {
			return nil, fmt.Errorf("parse fecha %q: %w", record.Fecha, err)
		}
		convocatoria := oposicion.Convocatoria{Fecha: fecha}
		for _, rango := range record.Convocados {
			convocatoria.Convocados = append(convocatoria.Convocados, oposicion.Rango{Inicio: rango.Inicio, Fin: rango.Fin})
		}
		out = append(out, convocatoria)
	}
	return out, nil
}

// SaveAspirants replaces the tribunal's aspirant file.
func (s *Store) SaveAspirants(ctx context.Context, tribunalID string, aspirants []oposicion.Aspirant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := aspirantsFile(tribunalID)
	if err != nil {
		return err
	}
	records := make([]aspirantRecord, 0, len(aspirants))
	for _, aspirant := range aspirants {
		records = append(records, aspirantRecord{
			NumeroOrden:     aspirant.NumeroOrden,
			NombreApellidos: aspirant.NombreApellidos,
			NumeroSorteo:    aspirant.NumeroSorteo,
			Turno:           aspirant.Turno,
		})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(name, records)
}

// SaveConvocatorias replaces the tribunal's entry in convocatorias.json,
// leaving other tribunals untouched. Sessions without ranges are dropped,
// as the SQLite store does.
func (s *Store) SaveConvocatorias(ctx context.Context, tribunalID string, convocatorias []oposicion.Convocatoria) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTribunalID(tribunalID); err != nil {
		return err
	}
	records := make([]convocatoriaRecord, 0, len(convocatorias))
	for _, convocatoria := range convocatorias {
		if len(convocatoria.Convocados) == 0 {
			continue
		}
		record := convocatoriaRecord{
			Fecha:      convocatoria.Fecha.Format(oposicion.DateLayout),
			Convocados: []rangoRecord{},
		}
		for _, rango := range convocatoria.Convocados {
			record.Convocados = append(record.Convocados, rangoRecord{Inicio: rango.Inicio, Fin: rango.Fin})
		}
		records = append(records, record)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.readConvocatorias()
	if err != nil {
		return err
	}
	all[strings.TrimSpace(tribunalID)] = records
	return s.writeJSON(convocatoriasFile, all)
}

func (s *Store) readConvocatorias() (map[string][]convocatoriaRecord, error) {
	all := map[string][]convocatoriaRecord{}
	if err := s.readJSON(convocatoriasFile, &all); err != nil {
		return nil, err
	}
	if all == nil {
		all = map[string][]convocatoriaRecord{}
	}
	return all, nil
}

// readJSON decodes name into target; a missing file leaves target untouched.
func (s *Store) readJSON(name string, target any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// writeJSON writes indented JSON through a temp file and rename so readers
// never observe a partial file.
func (s *Store) writeJSON(name string, payload any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func aspirantsFile(tribunalID string) (string, error) {
	if err := validateTribunalID(tribunalID); err != nil {
		return "", err
	}
	return strings.TrimSpace(tribunalID) + "_inscritos.json", nil
}

func validateTribunalID(tribunalID string) error {
	tribunalID = strings.TrimSpace(tribunalID)
	if tribunalID == "" {
		return fmt.Errorf("tribunal id is required")
	}
	if strings.ContainsAny(tribunalID, `/\.`) {
		return fmt.Errorf("invalid tribunal id %q", tribunalID)
	}
	return nil
}
