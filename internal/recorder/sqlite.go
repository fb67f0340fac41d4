package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"RiskDial/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (Grafana reads while the job writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			date       TEXT PRIMARY KEY,
			run_id     TEXT NOT NULL,
			as_of      INTEGER NOT NULL,
			raw_score  REAL,
			score      INTEGER,
			band       TEXT,
			cycle_adj  REAL,
			spike_adj  REAL,
			payload    TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS factor_scores (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			date      TEXT NOT NULL,
			factor    TEXT NOT NULL,
			pillar    TEXT NOT NULL,
			score     INTEGER,
			status    TEXT NOT NULL,
			reason    TEXT,
			last_utc  INTEGER,
			UNIQUE(date, factor)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_factor_scores_factor ON factor_scores(factor, date)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id          TEXT PRIMARY KEY,
			date        TEXT NOT NULL,
			type        TEXT NOT NULL,
			occurred_at INTEGER NOT NULL,
			details     TEXT,
			UNIQUE(date, type)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSnapshot(snap *model.CompositeSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	var bandKey interface{}
	if snap.Band != nil {
		bandKey = snap.Band.Key
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sq.Insert("snapshots").Options("OR REPLACE").
		Columns("date", "run_id", "as_of", "raw_score", "score", "band", "cycle_adj", "spike_adj", "payload").
		Values(snap.Date, snap.ID, snap.AsOfUTC.Unix(), nullableFloat(snap.RawScore), nullableInt(snap.Score), bandKey,
			snap.Adjustments.Cycle.Points, snap.Adjustments.Spike.Points, string(payload)).
		RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	if _, err := sq.Delete("factor_scores").Where(sq.Eq{"date": snap.Date}).RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("clear factor scores: %w", err)
	}
	if len(snap.Factors) > 0 {
		ins := sq.Insert("factor_scores").Columns("date", "factor", "pillar", "score", "status", "reason", "last_utc")
		for _, f := range snap.Factors {
			var last interface{}
			if !f.LastUTC.IsZero() {
				last = f.LastUTC.Unix()
			}
			ins = ins.Values(snap.Date, f.Key, f.Pillar, nullableInt(f.Score), string(f.Status), f.Reason, last)
		}
		if _, err := ins.RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("insert factor scores: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordAlerts(alerts []model.AlertLogEntry) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, a := range alerts {
		details, err := json.Marshal(a.Details)
		if err != nil {
			return inserted, fmt.Errorf("encode alert details: %w", err)
		}
		res, err := sq.Insert("alerts").Options("OR IGNORE").
			Columns("id", "date", "type", "occurred_at", "details").
			Values(a.ID, a.Date, string(a.Type), a.OccurredAt.Unix(), string(details)).
			RunWith(r.db).Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert alert: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, nil
}

// ScoreHistory returns (date, score) pairs for the last n dated snapshots,
// oldest first. Dates without a score are skipped.
func (r *SQLiteRecorder) ScoreHistory(n int) ([]model.HistoryPoint, error) {
	rows, err := sq.Select("date", "score", "band").From("snapshots").
		Where(sq.NotEq{"score": nil}).
		OrderBy("date DESC").Limit(uint64(n)).
		RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("query score history: %w", err)
	}
	defer rows.Close()

	var out []model.HistoryPoint
	for rows.Next() {
		var (
			p     model.HistoryPoint
			score int
			band  sql.NullString
		)
		if err := rows.Scan(&p.Date, &score, &band); err != nil {
			return nil, err
		}
		p.Score = model.IntPtr(score)
		p.BandKey = band.String
		out = append([]model.HistoryPoint{p}, out...)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func nullableInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullableFloat(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
