package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"pycheck/internal/shared/observability"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Store persists analysis runs in a sqlite file. A sibling lock file
// serializes access across processes: watch mode and a second invocation
// must not interleave writes.
type Store struct {
	path        string
	lockPath    string
	lockTimeout time.Duration
	db          *sql.DB
	mu          sync.Mutex
}

func Open(path, lockPath string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	if strings.TrimSpace(lockPath) == "" {
		lockPath = cleanPath + ".lock"
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds(),
	)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{
		path:        cleanPath,
		lockPath:    lockPath,
		lockTimeout: busyTimeout,
		db:          db,
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// RecordRun writes one run and its per-rule counts in a single
// transaction.
func (s *Store) RecordRun(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id must not be empty")
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	unlock, err := s.acquire(true)
	if err != nil {
		observability.HistoryWriteErrorsTotal.Inc()
		return err
	}
	defer unlock()

	err = s.withRetry("record run", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
INSERT INTO runs (
  id, schema_version, ts_utc, root, files, modules, edges, cyclic_modules,
  error_count, warning_count, duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
			run.ID,
			SchemaVersion,
			run.Timestamp.UTC().Format(time.RFC3339Nano),
			run.Root,
			run.Files,
			run.Modules,
			run.Edges,
			run.Cyclic,
			run.Errors,
			run.Warnings,
			run.Duration.Milliseconds(),
		); err != nil {
			_ = tx.Rollback()
			return err
		}

		rules := make([]string, 0, len(run.RuleCounts))
		for rule := range run.RuleCounts {
			rules = append(rules, rule)
		}
		sort.Strings(rules)
		for _, rule := range rules {
			if _, err := tx.Exec(
				`INSERT INTO run_diagnostics (run_id, rule, count) VALUES (?, ?, ?)`,
				run.ID, rule, run.RuleCounts[rule],
			); err != nil {
				_ = tx.Rollback()
				return err
			}
		}

		return tx.Commit()
	})
	if err != nil {
		observability.HistoryWriteErrorsTotal.Inc()
		return err
	}
	observability.HistoryWritesTotal.Inc()
	return nil
}

// LoadRuns returns runs newer than since in timestamp order, including
// their per-rule counts. limit <= 0 means no limit.
func (s *Store) LoadRuns(since time.Time, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire(false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	query := `
SELECT id, ts_utc, root, files, modules, edges, cyclic_modules,
       error_count, warning_count, duration_ms
FROM runs
`
	args := make([]any, 0, 2)
	if !since.IsZero() {
		query += " WHERE ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc ASC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows *sql.Rows
	err = s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			run        Run
			tsRaw      string
			durationMS int64
		)
		if err := rows.Scan(
			&run.ID, &tsRaw, &run.Root, &run.Files, &run.Modules, &run.Edges,
			&run.Cyclic, &run.Errors, &run.Warnings, &durationMS,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
		}
		run.Timestamp = ts.UTC()
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	for i := range runs {
		counts, err := s.ruleCounts(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].RuleCounts = counts
	}

	return runs, nil
}

func (s *Store) ruleCounts(runID string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT rule, count FROM run_diagnostics WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("load rule counts for %s: %w", runID, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			rule  string
			count int
		)
		if err := rows.Scan(&rule, &count); err != nil {
			return nil, fmt.Errorf("scan rule count row: %w", err)
		}
		counts[rule] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rule count rows: %w", err)
	}
	if len(counts) == 0 {
		return nil, nil
	}
	return counts, nil
}

// acquire takes the cross-process lock, exclusive for writes and shared
// for reads, and returns the release function.
func (s *Store) acquire(exclusive bool) (func(), error) {
	fl := flock.New(s.lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)
	defer cancel()

	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = fl.TryLockContext(ctx, 10*time.Millisecond)
	} else {
		locked, err = fl.TryRLockContext(ctx, 10*time.Millisecond)
	}
	if err != nil || !locked {
		return nil, fmt.Errorf("could not lock history database %q; another process may be using it", s.path)
	}
	return func() { _ = fl.Unlock() }, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
