package schedule

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"support-intake-go/internal/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteFileName is the database file inside the data directory.
const SQLiteFileName = "schedules.db"

// SQLiteStore keeps schedules in a SQLite table; seq preserves append order.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) dataDir/schedules.db and applies pending
// migrations. Pass ":memory:" for an in-memory database.
func OpenSQLite(dataDir string) (*SQLiteStore, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, storageErr("create data dir", err)
		}
		dsn = filepath.Join(dataDir, SQLiteFileName)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storageErr("open database", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storageErr("ping database", err)
	}

	// One connection: keeps :memory: databases alive and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, storageErr("set busy timeout", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, storageErr("migrate", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate applies every embedded NNN_name.sql file not yet recorded in
// schema_version, in file-name order, each in its own transaction.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Already applied on an earlier open.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		// Schema change and version row commit together, so a failed
		// migration is retried on the next open.
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	prefix, _, ok := strings.Cut(filename, "_")
	if !ok {
		return 0, fmt.Errorf("migration %s: missing version prefix", filename)
	}
	v, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("migration %s: invalid version: %w", filename, err)
	}
	return v, nil
}

// AppliedMigrations returns applied migration versions in ascending order.
func (s *SQLiteStore) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Append(ctx context.Context, rec types.Schedule) (types.Schedule, error) {
	id, err := uniqueID(func(id string) (bool, error) {
		_, ok, err := s.Get(ctx, id)
		return ok, err
	})
	if err != nil {
		return types.Schedule{}, err
	}
	rec.ID = id

	_, err = s.db.ExecContext(ctx, `INSERT INTO schedules
		(id, query, date, time, priority, status, created_at, sentiment, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Query, rec.Date, rec.Time, string(rec.Priority), rec.Status,
		rec.CreatedAt, rec.Sentiment, rec.Notes, rec.UpdatedAt)
	if err != nil {
		return types.Schedule{}, storageErr("insert", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, p Patch) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, storageErr("begin", err)
	}
	defer tx.Rollback()

	rec, err := scanSchedule(tx.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr("load", err)
	}
	p.Apply(&rec)

	if _, err := tx.ExecContext(ctx,
		"UPDATE schedules SET status = ?, notes = ?, updated_at = ? WHERE id = ?",
		rec.Status, rec.Notes, rec.UpdatedAt, id); err != nil {
		return false, storageErr("update", err)
	}
	if err := tx.Commit(); err != nil {
		return false, storageErr("commit", err)
	}
	return true, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]types.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY seq")
	if err != nil {
		return nil, storageErr("list", err)
	}
	defer rows.Close()

	out := []types.Schedule{}
	for rows.Next() {
		rec, err := scanSchedule(rows)
		if err != nil {
			return nil, storageErr("scan", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", err)
	}
	return out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (types.Schedule, bool, error) {
	rec, err := scanSchedule(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Schedule{}, false, nil
	}
	if err != nil {
		return types.Schedule{}, false, storageErr("get", err)
	}
	return rec, true, nil
}

const selectColumns = `SELECT id, query, date, time, priority, status, created_at, sentiment, notes, updated_at FROM schedules`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(r rowScanner) (types.Schedule, error) {
	var rec types.Schedule
	var priority string
	err := r.Scan(&rec.ID, &rec.Query, &rec.Date, &rec.Time, &priority, &rec.Status,
		&rec.CreatedAt, &rec.Sentiment, &rec.Notes, &rec.UpdatedAt)
	rec.Priority = types.Priority(priority)
	return rec, err
}
