// Package sqlite provides a SQLite-backed store for aspirant and session data.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/calculadora-oposicion/internal/oposicion"
	sqlitemigrate "github.com/louisbranch/calculadora-oposicion/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/calculadora-oposicion/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = oposicion.ErrNotFound

// Store persists oposición data in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	return open(ctx, dsn)
}

func open(ctx context.Context, dsn string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Aspirants returns the tribunal's aspirants ordered by registration order.
func (s *Store) Aspirants(ctx context.Context, tribunalID string) ([]oposicion.Aspirant, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT numero_orden, nombre_apellidos, numero_sorteo, turno
		   FROM aspirants
		  WHERE tribunal_id = ?
		  ORDER BY numero_orden`,
		strings.TrimSpace(tribunalID),
	)
	if err != nil {
		return nil, fmt.Errorf("query aspirants: %w", err)
	}
	defer rows.Close()

	out := []oposicion.Aspirant{}
	for rows.Next() {
		var aspirant oposicion.Aspirant
		if err := rows.Scan(&aspirant.NumeroOrden, &aspirant.NombreApellidos, &aspirant.NumeroSorteo, &aspirant.Turno); err != nil {
			return nil, fmt.Errorf("scan aspirant: %w", err)
		}
		out = append(out, aspirant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aspirants: %w", err)
	}
	return out, nil
}

// Convocatorias returns the tribunal's sessions ordered by date, with ranges
// in their published order.
func (s *Store) Convocatorias(ctx context.Context, tribunalID string) ([]oposicion.Convocatoria, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT fecha, inicio, fin
		   FROM convocatoria_ranges
		  WHERE tribunal_id = ?
		  ORDER BY fecha, position`,
		strings.TrimSpace(tribunalID),
	)
	if err != nil {
		return nil, fmt.Errorf("query convocatorias: %w", err)
	}
	defer rows.Close()

	out := []oposicion.Convocatoria{}
	for rows.Next() {
		var (
			fecha string
			rango oposicion.Rango
		)
		if err := rows.Scan(&fecha, &rango.Inicio, &rango.Fin); err != nil {
			return nil, fmt.Errorf("scan convocatoria: %w", err)
		}
		day, err := oposicion.ParseDate(fecha)
		if err != nil {
			return nil, fmt.Errorf("parse fecha %q: %w", fecha, err)
		}
		if n := len(out); n > 0 && out[n-1].Fecha.Equal(day) {
			out[n-1].Convocados = append(out[n-1].Convocados, rango)
			continue
		}
		out = append(out, oposicion.Convocatoria{Fecha: day, Convocados: []oposicion.Rango{rango}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate convocatorias: %w", err)
	}
	return out, nil
}

// SaveAspirants replaces the tribunal's aspirants in one transaction.
func (s *Store) SaveAspirants(ctx context.Context, tribunalID string, aspirants []oposicion.Aspirant) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tribunalID = strings.TrimSpace(tribunalID)
	if tribunalID == "" {
		return fmt.Errorf("tribunal id is required")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM aspirants WHERE tribunal_id = ?`, tribunalID); err != nil {
			return fmt.Errorf("clear aspirants: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO aspirants (tribunal_id, numero_orden, nombre_apellidos, numero_sorteo, turno)
			 VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare aspirant insert: %w", err)
		}
		defer stmt.Close()
		for _, aspirant := range aspirants {
			if _, err := stmt.ExecContext(ctx,
				tribunalID,
				aspirant.NumeroOrden,
				strings.TrimSpace(aspirant.NombreApellidos),
				aspirant.NumeroSorteo,
				strings.TrimSpace(aspirant.Turno),
			); err != nil {
				return fmt.Errorf("insert aspirant %d: %w", aspirant.NumeroOrden, err)
			}
		}
		return nil
	})
}

// SaveConvocatorias replaces the tribunal's sessions in one transaction.
// Rows are stored per range, so a session without ranges is dropped; the
// JSON store drops them too.
func (s *Store) SaveConvocatorias(ctx context.Context, tribunalID string, convocatorias []oposicion.Convocatoria) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tribunalID = strings.TrimSpace(tribunalID)
	if tribunalID == "" {
		return fmt.Errorf("tribunal id is required")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM convocatoria_ranges WHERE tribunal_id = ?`, tribunalID); err != nil {
			return fmt.Errorf("clear convocatorias: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO convocatoria_ranges (tribunal_id, fecha, position, inicio, fin)
			 VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare convocatoria insert: %w", err)
		}
		defer stmt.Close()
		positions := map[string]int{}
		for _, convocatoria := range convocatorias {
			fecha := convocatoria.Fecha.Format(oposicion.DateLayout)
			for _, rango := range convocatoria.Convocados {
				position := positions[fecha]
				positions[fecha]++
				if _, err := stmt.ExecContext(ctx, tribunalID, fecha, position, rango.Inicio, rango.Fin); err != nil {
					return fmt.Errorf("insert convocatoria %s: %w", fecha, err)
				}
			}
		}
		return nil
	})
}

// RecordScrapeRun stores one scraper pass.
func (s *Store) RecordScrapeRun(ctx context.Context, run oposicion.ScrapeRun) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("scrape run id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO scrape_runs (id, target, tribunal_id, started_at, finished_at, records, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Target,
		run.TribunalID,
		toMillis(run.StartedAt),
		toMillis(run.FinishedAt),
		run.Records,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("insert scrape run: %w", err)
	}
	return nil
}

// LatestScrapeRun returns the most recent successful run for a target and tribunal.
func (s *Store) LatestScrapeRun(ctx context.Context, target, tribunalID string) (oposicion.ScrapeRun, error) {
	if err := s.ready(ctx); err != nil {
		return oposicion.ScrapeRun{}, err
	}
	var (
		run        oposicion.ScrapeRun
		startedAt  int64
		finishedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, target, tribunal_id, started_at, finished_at, records, error
		   FROM scrape_runs
		  WHERE target = ? AND tribunal_id = ? AND error = ''
		  ORDER BY finished_at DESC
		  LIMIT 1`,
		target,
		tribunalID,
	).Scan(&run.ID, &run.Target, &run.TribunalID, &startedAt, &finishedAt, &run.Records, &run.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return oposicion.ScrapeRun{}, ErrNotFound
	}
	if err != nil {
		return oposicion.ScrapeRun{}, fmt.Errorf("query latest scrape run: %w", err)
	}
	run.StartedAt = fromMillis(startedAt)
	run.FinishedAt = fromMillis(finishedAt)
	return run, nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
