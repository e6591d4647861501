// Package catalog implements thermo.CatalogQuery against a local SQLite
// database: schema creation, seeding and per-formula row retrieval.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/papapumpkin/quasar-thermo/internal/thermo"
)

// schema contains the DDL executed on first open. IF NOT EXISTS makes it
// safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS catalog_rows (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    formula           TEXT NOT NULL,
    display_name      TEXT NOT NULL DEFAULT '',
    phase             TEXT NOT NULL,
    tmin              REAL NOT NULL,
    tmax              REAL NOT NULL,
    h298              REAL NOT NULL DEFAULT 0,
    s298              REAL NOT NULL DEFAULT 0,
    f1                REAL NOT NULL DEFAULT 0,
    f2                REAL NOT NULL DEFAULT 0,
    f3                REAL NOT NULL DEFAULT 0,
    f4                REAL NOT NULL DEFAULT 0,
    f5                REAL NOT NULL DEFAULT 0,
    f6                REAL NOT NULL DEFAULT 0,
    tmelt             REAL,
    tboil             REAL,
    reliability_class INTEGER NOT NULL DEFAULT 3,
    created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_catalog_rows_formula ON catalog_rows(formula);
`

// Store is a SQLite-backed thermochemistry catalog. It opens in WAL mode
// with a single connection, matching the teacher's fabric store: SQLite
// only supports one writer, and a single pooled connection avoids
// SQLITE_BUSY contention between connections that would each need their own
// PRAGMA setup.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at dbPath, enables WAL mode and
// a busy timeout, and creates the schema if absent.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// FetchByFormula returns every catalog row for formula, ordered by tmin.
func (s *Store) FetchByFormula(ctx context.Context, formula string) ([]thermo.CatalogRow, error) {
	const q = `
		SELECT id, formula, display_name, phase, tmin, tmax, h298, s298,
		       f1, f2, f3, f4, f5, f6, tmelt, tboil, reliability_class
		FROM catalog_rows
		WHERE formula = ?
		ORDER BY tmin`

	rows, err := s.db.QueryContext(ctx, q, formula)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %q: %w", formula, err)
	}
	defer rows.Close()

	var out []thermo.CatalogRow
	for rows.Next() {
		var r thermo.CatalogRow
		var phase string
		var tmelt, tboil sql.NullFloat64
		if err := rows.Scan(
			&r.IDValue, &r.Formula_, &r.DisplayName_, &phase, &r.TMin_, &r.TMax_, &r.H298_, &r.S298_,
			&r.Coeffs_[0], &r.Coeffs_[1], &r.Coeffs_[2], &r.Coeffs_[3], &r.Coeffs_[4], &r.Coeffs_[5],
			&tmelt, &tboil, &r.ReliabilityClass_,
		); err != nil {
			return nil, fmt.Errorf("catalog: scan row for %q: %w", formula, err)
		}
		r.Phase_ = thermo.NormalizePhase(phase)
		if tmelt.Valid {
			v := tmelt.Float64
			r.TMelt_ = &v
		}
		if tboil.Valid {
			v := tboil.Float64
			r.TBoil_ = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate rows for %q: %w", formula, err)
	}
	return out, nil
}

// Query adapts FetchByFormula to thermo.CatalogQuery, so the core never
// needs to know a *Store exists.
func (s *Store) Query() thermo.CatalogQuery {
	return func(formula string) ([]thermo.CatalogRow, error) {
		return s.FetchByFormula(context.Background(), formula)
	}
}

// Row is one seed record accepted by InsertRows.
type Row struct {
	Formula          string
	DisplayName      string
	Phase            string
	TMin, TMax       float64
	H298, S298       float64
	Coeffs           [6]float64
	TMelt, TBoil     *float64
	ReliabilityClass int
}

// InsertRows bulk-inserts seed rows inside a single transaction.
func (s *Store) InsertRows(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin seed tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const q = `
		INSERT INTO catalog_rows
			(formula, display_name, phase, tmin, tmax, h298, s298, f1, f2, f3, f4, f5, f6, tmelt, tboil, reliability_class)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("catalog: prepare seed insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.Formula, r.DisplayName, r.Phase, r.TMin, r.TMax, r.H298, r.S298,
			r.Coeffs[0], r.Coeffs[1], r.Coeffs[2], r.Coeffs[3], r.Coeffs[4], r.Coeffs[5],
			r.TMelt, r.TBoil, r.ReliabilityClass,
		); err != nil {
			return fmt.Errorf("catalog: insert seed row for %q: %w", r.Formula, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit seed tx: %w", err)
	}
	return nil
}

// Formulas returns the distinct set of compound formulas present in the
// catalog, used by the CLI's validate command.
func (s *Store) Formulas(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT formula FROM catalog_rows ORDER BY formula`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list formulas: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("catalog: scan formula: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
