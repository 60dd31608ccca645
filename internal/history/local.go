package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// LocalStore keeps history in a sqlite file on this machine.
type LocalStore struct {
	db *sql.DB
}

// OpenLocal opens (and migrates) the sqlite history database at path.
func OpenLocal(path string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	if err := runMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	return &LocalStore{db: db}, nil
}

func runMigrations(path string) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path+"?_foreign_keys=on")
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) Append(ctx context.Context, e Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := insertEntry(ctx, tx, e); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertEntry(ctx context.Context, tx *sql.Tx, e Entry) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = nowUTC()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions(project_name, total_cost, created_at) VALUES (?, ?, ?)`,
		e.ProjectName, e.TotalCost, created.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for i, a := range e.Actions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_actions(session_id, position, name) VALUES (?, ?, ?)`,
			id, i, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *LocalStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT s.id, s.project_name, s.total_cost, s.created_at, COALESCE(a.name, '')
	FROM sessions s
	LEFT JOIN session_actions a ON a.session_id = s.id
	ORDER BY s.id, a.position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	lastID := int64(-1)
	for rows.Next() {
		var (
			id     int64
			e      Entry
			action string
		)
		if err := rows.Scan(&id, &e.ProjectName, &e.TotalCost, &e.CreatedAt, &action); err != nil {
			return nil, err
		}
		if id != lastID {
			out = append(out, e)
			lastID = id
		}
		if action != "" {
			last := &out[len(out)-1]
			last.Actions = append(last.Actions, action)
		}
	}
	return out, rows.Err()
}

// nowUTC returns UTC time truncated to seconds, matching sqlite's precision.
func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
