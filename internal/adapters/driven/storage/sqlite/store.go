// Package sqlite provides SQLite-backed persistence for oppscan:
// quota counters for metered providers and the aggregation run log.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/veridian-labs/oppscan-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// quota and run stores through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.oppscan/data/oppscan.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".oppscan", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "oppscan.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// QuotaStore returns a QuotaStore interface backed by this store.
func (s *Store) QuotaStore() driven.QuotaStore {
	return &quotaStore{store: s}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// --- quota store ---

// Ensure quotaStore implements the interface.
var _ driven.QuotaStore = (*quotaStore)(nil)

type quotaStore struct {
	store *Store
}

func (q *quotaStore) GetQuota(ctx context.Context, provider string) (*domain.QuotaState, error) {
	row := q.store.db.QueryRowContext(ctx, `
		SELECT count, first_used_at, last_used_at, disabled
		FROM quota_usage WHERE provider = ?`, provider)

	var state domain.QuotaState
	var first, last sql.NullTime
	var disabled int
	err := row.Scan(&state.Count, &first, &last, &disabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning quota row: %w", err)
	}
	if first.Valid {
		state.FirstUsedAt = first.Time
	}
	if last.Valid {
		state.LastUsedAt = last.Time
	}
	state.Disabled = disabled != 0
	return &state, nil
}

func (q *quotaStore) PutQuota(ctx context.Context, provider string, state domain.QuotaState) error {
	disabled := 0
	if state.Disabled {
		disabled = 1
	}
	_, err := q.store.db.ExecContext(ctx, `
		INSERT INTO quota_usage (provider, count, first_used_at, last_used_at, disabled)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			count = excluded.count,
			first_used_at = excluded.first_used_at,
			last_used_at = excluded.last_used_at,
			disabled = excluded.disabled`,
		provider, state.Count, nullableTime(state.FirstUsedAt), nullableTime(state.LastUsedAt), disabled)
	if err != nil {
		return fmt.Errorf("upserting quota for %s: %w", provider, err)
	}
	return nil
}

func (q *quotaStore) ResetQuota(ctx context.Context, provider string) error {
	_, err := q.store.db.ExecContext(ctx,
		"DELETE FROM quota_usage WHERE provider = ?", provider)
	if err != nil {
		return fmt.Errorf("resetting quota for %s: %w", provider, err)
	}
	return nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// --- run store ---

// Ensure runStore implements the interface.
var _ driven.RunStore = (*runStore)(nil)

type runStore struct {
	store *Store
}

func (r *runStore) SaveRun(ctx context.Context, rec domain.RunRecord) error {
	sources, err := json.Marshal(rec.SourcesUsed)
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = r.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, topic, sources_used, total_items, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Topic, string(sources), rec.TotalItems, rec.Duration.Milliseconds(), createdAt)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", rec.ID, err)
	}
	return nil
}

func (r *runStore) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, topic, sources_used, total_items, duration_ms, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var recs []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var sources string
		var durationMS int64
		if err := rows.Scan(&rec.ID, &rec.Topic, &sources, &rec.TotalItems, &durationMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &rec.SourcesUsed); err != nil {
			return nil, fmt.Errorf("unmarshalling sources for run %s: %w", rec.ID, err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
