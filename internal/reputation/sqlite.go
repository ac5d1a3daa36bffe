package reputation

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"marketintel/internal/core"
)

// SQLiteStore is the embedded-file reputation backend, selected when no
// Postgres connection string is configured.
type SQLiteStore struct {
	db      *sql.DB
	trusted []core.TrustedSource
}

// NewSQLiteStore opens (creating if necessary) a SQLite file under dataDir
// and seeds the trusted-sources table on first run.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("reputation: creating data dir: %w", err)
	}
	dbPath := filepath.Join(dataDir, "reputation.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("reputation: opening sqlite: %w", err)
	}

	s := &SQLiteStore{db: db, trusted: core.DefaultTrustedSources()}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS source_profiles (
			source TEXT PRIMARY KEY,
			total_scans INTEGER NOT NULL DEFAULT 0,
			consensus_hits INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS event_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			hard_data TEXT NOT NULL,
			verdict_summary TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("reputation: migrating: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) GetProfile(source string) (core.SourceProfile, bool) {
	row := s.db.QueryRow(`SELECT source, total_scans, consensus_hits, updated_at FROM source_profiles WHERE source = ?`, normalizeSource(source))
	var p core.SourceProfile
	if err := row.Scan(&p.Source, &p.TotalScans, &p.ConsensusHits, &p.UpdatedAt); err != nil {
		return core.SourceProfile{}, false
	}
	return p, true
}

func (s *SQLiteStore) UpsertProfile(profile core.SourceProfile) error {
	profile.Source = normalizeSource(profile.Source)
	profile.UpdatedAt = nowUTC()
	_, err := s.db.Exec(`
		INSERT INTO source_profiles (source, total_scans, consensus_hits, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			total_scans = excluded.total_scans,
			consensus_hits = excluded.consensus_hits,
			updated_at = excluded.updated_at
	`, profile.Source, profile.TotalScans, profile.ConsensusHits, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("reputation: upsert profile: %w", err)
	}
	return nil
}

// RecordScan performs the read-modify-write atomically via SQL upsert
// arithmetic, so concurrent requests touching the same source serialize at
// the database rather than racing in process memory.
func (s *SQLiteStore) RecordScan(source string, consensus bool) error {
	source = normalizeSource(source)
	hit := 0
	if consensus {
		hit = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO source_profiles (source, total_scans, consensus_hits, updated_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			total_scans = total_scans + 1,
			consensus_hits = consensus_hits + ?,
			updated_at = ?
	`, source, hit, nowUTC(), hit, nowUTC())
	if err != nil {
		return fmt.Errorf("reputation: record scan: %w", err)
	}
	return nil
}

func (s *SQLiteStore) TrustedWeight(sourceName string) (float64, bool) {
	return trustedWeightFromList(s.trusted, sourceName)
}

func (s *SQLiteStore) StoreEvent(query string, hardData core.HardData, verdictSummary string) error {
	raw, err := json.Marshal(hardData)
	if err != nil {
		return fmt.Errorf("reputation: marshal hard data: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO event_history (query, hard_data, verdict_summary, timestamp) VALUES (?, ?, ?, ?)`,
		query, string(raw), verdictSummary, nowUTC())
	if err != nil {
		return fmt.Errorf("reputation: store event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SimilarEvents(query string, limit int) ([]core.EventHistoryEntry, error) {
	if limit <= 0 {
		limit = 2
	}
	rows, err := s.db.Query(`SELECT query, hard_data, verdict_summary, timestamp FROM event_history ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("reputation: query events: %w", err)
	}
	defer rows.Close()

	var out []core.EventHistoryEntry
	for rows.Next() && len(out) < limit {
		var e core.EventHistoryEntry
		var rawHardData string
		var ts time.Time
		if err := rows.Scan(&e.Query, &rawHardData, &e.VerdictSummary, &ts); err != nil {
			return nil, fmt.Errorf("reputation: scan event: %w", err)
		}
		if !matchesSubstring(query, e.Query) {
			continue
		}
		_ = json.Unmarshal([]byte(rawHardData), &e.HardData)
		e.Timestamp = ts
		out = append(out, e)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
