package reputation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"marketintel/internal/core"
)

// PostgresStore is the networked reputation backend, used when the pipeline
// runs with shared state across multiple processes instead of a single
// embedded file.
type PostgresStore struct {
	db      *sql.DB
	trusted []core.TrustedSource
}

// NewPostgresStore opens a connection pool against connectionString and
// migrates the reputation schema.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("reputation: opening postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("reputation: pinging postgres: %w", err)
	}

	s := &PostgresStore{db: db, trusted: core.DefaultTrustedSources()}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS source_profiles (
			source TEXT PRIMARY KEY,
			total_scans INTEGER NOT NULL DEFAULT 0,
			consensus_hits INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS event_history (
			id SERIAL PRIMARY KEY,
			query TEXT NOT NULL,
			hard_data JSONB NOT NULL,
			verdict_summary TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("reputation: migrating: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) GetProfile(source string) (core.SourceProfile, bool) {
	row := s.db.QueryRow(`SELECT source, total_scans, consensus_hits, updated_at FROM source_profiles WHERE source = $1`, normalizeSource(source))
	var p core.SourceProfile
	if err := row.Scan(&p.Source, &p.TotalScans, &p.ConsensusHits, &p.UpdatedAt); err != nil {
		return core.SourceProfile{}, false
	}
	return p, true
}

func (s *PostgresStore) UpsertProfile(profile core.SourceProfile) error {
	profile.Source = normalizeSource(profile.Source)
	profile.UpdatedAt = nowUTC()
	_, err := s.db.Exec(`
		INSERT INTO source_profiles (source, total_scans, consensus_hits, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source) DO UPDATE SET
			total_scans = excluded.total_scans,
			consensus_hits = excluded.consensus_hits,
			updated_at = excluded.updated_at
	`, profile.Source, profile.TotalScans, profile.ConsensusHits, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("reputation: upsert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecordScan(source string, consensus bool) error {
	source = normalizeSource(source)
	hit := 0
	if consensus {
		hit = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO source_profiles (source, total_scans, consensus_hits, updated_at)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (source) DO UPDATE SET
			total_scans = source_profiles.total_scans + 1,
			consensus_hits = source_profiles.consensus_hits + $2,
			updated_at = $3
	`, source, hit, nowUTC())
	if err != nil {
		return fmt.Errorf("reputation: record scan: %w", err)
	}
	return nil
}

func (s *PostgresStore) TrustedWeight(sourceName string) (float64, bool) {
	return trustedWeightFromList(s.trusted, sourceName)
}

func (s *PostgresStore) StoreEvent(query string, hardData core.HardData, verdictSummary string) error {
	raw, err := json.Marshal(hardData)
	if err != nil {
		return fmt.Errorf("reputation: marshal hard data: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO event_history (query, hard_data, verdict_summary, timestamp) VALUES ($1, $2, $3, $4)`,
		query, raw, verdictSummary, nowUTC())
	if err != nil {
		return fmt.Errorf("reputation: store event: %w", err)
	}
	return nil
}

// SimilarEvents does the case-insensitive substring match in SQL via ILIKE,
// unlike the SQLite backend which has no ILIKE and filters in process.
func (s *PostgresStore) SimilarEvents(query string, limit int) ([]core.EventHistoryEntry, error) {
	if limit <= 0 {
		limit = 2
	}
	rows, err := s.db.Query(`
		SELECT query, hard_data, verdict_summary, timestamp FROM event_history
		WHERE query ILIKE '%' || $1 || '%'
		ORDER BY timestamp DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("reputation: query events: %w", err)
	}
	defer rows.Close()

	var out []core.EventHistoryEntry
	for rows.Next() {
		var e core.EventHistoryEntry
		var rawHardData []byte
		var ts time.Time
		if err := rows.Scan(&e.Query, &rawHardData, &e.VerdictSummary, &ts); err != nil {
			return nil, fmt.Errorf("reputation: scan event: %w", err)
		}
		_ = json.Unmarshal(rawHardData, &e.HardData)
		e.Timestamp = ts
		out = append(out, e)
	}
	return out, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }
