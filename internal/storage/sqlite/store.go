// Package sqlite persists the two things that must survive between runs:
// human corrections to comment classifications and a compact history of
// completed report runs.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rotabot/internal/domain"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS corrections (
		comment      TEXT PRIMARY KEY,
		category     TEXT NOT NULL,
		corrected_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS run_history (
		run_id       TEXT PRIMARY KEY,
		client_name  TEXT DEFAULT '',
		period_ym    TEXT NOT NULL,
		hc_activos   INTEGER NOT NULL,
		bajas_mes    INTEGER NOT NULL,
		rotacion_pct REAL,
		generated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_history_period ON run_history(period_ym);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return db, nil
}

// LoadCorrections takes the run's snapshot of the comment -> category
// overrides. The snapshot is read once per run; writes landing after it are
// picked up by the next run.
func LoadCorrections(db *sql.DB) (domain.CorrectionsMap, error) {
	rows, err := db.Query(`SELECT comment, category FROM corrections`)
	if err != nil {
		return nil, fmt.Errorf("loading corrections: %w", err)
	}
	defer rows.Close()

	out := domain.CorrectionsMap{}
	for rows.Next() {
		var comment, category string
		if err := rows.Scan(&comment, &category); err != nil {
			return nil, err
		}
		out[comment] = category
	}
	return out, rows.Err()
}

// MergeCorrections upserts a batch of overrides in one transaction; later
// writes for the same comment replace earlier ones.
func MergeCorrections(db *sql.DB, corrections domain.CorrectionsMap) error {
	if len(corrections) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO corrections (comment, category, corrected_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(comment) DO UPDATE SET category = excluded.category, corrected_at = CURRENT_TIMESTAMP`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for comment, category := range corrections {
		if _, err := stmt.Exec(comment, category); err != nil {
			tx.Rollback()
			return fmt.Errorf("merging correction: %w", err)
		}
	}
	return tx.Commit()
}

// RunRecord is one row of run history, enough for a KPI timeline across runs.
type RunRecord struct {
	RunID       string
	ClientName  string
	PeriodYM    string
	HCActivos   int
	BajasMes    int
	RotacionPct *float64
	GeneratedAt time.Time
}

func InsertRun(db *sql.DB, r RunRecord) error {
	_, err := db.Exec(
		`INSERT INTO run_history (run_id, client_name, period_ym, hc_activos, bajas_mes, rotacion_pct, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.ClientName, r.PeriodYM, r.HCActivos, r.BajasMes, r.RotacionPct, r.GeneratedAt.UTC(),
	)
	return err
}

func GetRunsByPeriod(db *sql.DB, periodYM string) ([]RunRecord, error) {
	rows, err := db.Query(
		`SELECT run_id, client_name, period_ym, hc_activos, bajas_mes, rotacion_pct, generated_at
		 FROM run_history WHERE period_ym = ? ORDER BY generated_at`, periodYM)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.ClientName, &r.PeriodYM, &r.HCActivos, &r.BajasMes, &r.RotacionPct, &r.GeneratedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
