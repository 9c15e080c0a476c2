// Package sqlite archives scoring runs in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"trustrag/internal/domain"
	"trustrag/internal/scorestore"
	"trustrag/internal/scorestore/sqlite/migrations"
)

// ErrRunNotFound is returned by RunScores for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Archive stores scoring runs and their per-document records.
type Archive struct {
	db   *sql.DB
	path string
}

var _ scorestore.Archive = (*Archive)(nil)

// Open opens or creates the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	a := &Archive{db: db, path: path}
	if err := a.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Path returns the database file path.
func (a *Archive) Path() string {
	return a.path
}

func (a *Archive) migrate(fsys embed.FS) error {
	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}
	var current int
	if err := a.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)
	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := a.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := a.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// SaveRun stores run in one transaction and returns its id. An empty run.ID
// is replaced with a fresh UUID.
func (a *Archive) SaveRun(ctx context.Context, run scorestore.Run) (id string, err error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, duration_ms, chunk_count, skipped)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UTC(), run.Duration.Milliseconds(), run.ChunkCount, run.Skipped)
	if err != nil {
		return "", fmt.Errorf("saving run: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scores (run_id, position, file, completeness, accuracy, secure,
			quality, timeliness, ai_trust_score, token_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("preparing score insert: %w", err)
	}
	defer stmt.Close()
	for i, s := range run.Scores {
		_, err = stmt.ExecContext(ctx, run.ID, i, s.File,
			float64(s.Completeness), float64(s.Accuracy), float64(s.Secure),
			float64(s.Quality), float64(s.Timeliness), float64(s.AITrustScore), s.TokenCount)
		if err != nil {
			return "", fmt.Errorf("saving score for %s: %w", s.File, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs first. A non-positive limit returns
// every run.
func (a *Archive) ListRuns(ctx context.Context, limit int) ([]scorestore.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.duration_ms, r.chunk_count, r.skipped,
			COUNT(s.file), COALESCE(AVG(s.ai_trust_score), 0)
		FROM runs r
		LEFT JOIN scores s ON s.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()
	var out []scorestore.RunSummary
	for rows.Next() {
		var (
			r  scorestore.RunSummary
			ms int64
		)
		if err := rows.Scan(&r.ID, &r.StartedAt, &ms, &r.ChunkCount, &r.Skipped, &r.DocumentCount, &r.AverageScore); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunScores returns the records of one run in their original order.
func (a *Archive) RunScores(ctx context.Context, id string) ([]domain.DocumentScore, error) {
	var exists int
	err := a.db.QueryRowContext(ctx, "SELECT 1 FROM runs WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT file, completeness, accuracy, secure, quality, timeliness, ai_trust_score, token_count
		FROM scores WHERE run_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("getting scores: %w", err)
	}
	defer rows.Close()
	out := []domain.DocumentScore{}
	for rows.Next() {
		var (
			s                       domain.DocumentScore
			c, acc, sec, q, tm, ats float64
		)
		if err := rows.Scan(&s.File, &c, &acc, &sec, &q, &tm, &ats, &s.TokenCount); err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		s.Completeness, s.Accuracy, s.Secure = domain.Score(c), domain.Score(acc), domain.Score(sec)
		s.Quality, s.Timeliness, s.AITrustScore = domain.Score(q), domain.Score(tm), domain.Score(ats)
		out = append(out, s)
	}
	return out, rows.Err()
}
