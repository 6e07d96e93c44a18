package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receipts/internal/queue"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS offline_queue (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT UNIQUE NOT NULL,
	file_name    TEXT NOT NULL,
	content_type TEXT NOT NULL DEFAULT '',
	data         BLOB NOT NULL,
	enqueued_at  DATETIME NOT NULL,
	attempts     INTEGER NOT NULL DEFAULT 0,
	last_error   TEXT,
	state        TEXT NOT NULL
)`

// Store persists the offline queue in a local SQLite file so queued uploads
// survive restarts.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the queue database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating queue directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening queue database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating queue schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const selectItemColumns = `id, file_name, content_type, data, enqueued_at, attempts, last_error, state`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*queue.Item, error) {
	var (
		it        queue.Item
		id        string
		lastError sql.NullString
		state     string
	)

	err := row.Scan(&id, &it.File.Name, &it.File.ContentType, &it.File.Data,
		&it.EnqueuedAt, &it.Attempts, &lastError, &state)
	if err != nil {
		return nil, err
	}

	it.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing item id %q: %w", id, err)
	}

	if lastError.Valid {
		it.LastError = &lastError.String
	}

	it.State = queue.State(state)

	return &it, nil
}

func (s *Store) Add(ctx context.Context, item *queue.Item) error {
	query := `
		INSERT INTO offline_queue (id, file_name, content_type, data, enqueued_at, attempts, last_error, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		item.ID.String(), item.File.Name, item.File.ContentType, item.File.Data,
		item.EnqueuedAt.UTC(), item.Attempts, item.LastError, string(item.State))
	if err != nil {
		return fmt.Errorf("inserting queue item: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]*queue.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM offline_queue ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing queue items: %w", err)
	}
	defer rows.Close()

	var items []*queue.Item

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning queue item: %w", err)
		}

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating queue items: %w", err)
	}

	return items, nil
}

func (s *Store) Update(ctx context.Context, item *queue.Item) error {
	query := `UPDATE offline_queue SET attempts = ?, last_error = ?, state = ? WHERE id = ?`

	return s.execOne(ctx, "updating queue item", query,
		item.Attempts, item.LastError, string(item.State), item.ID.String())
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, "deleting queue item", `DELETE FROM offline_queue WHERE id = ?`, id.String())
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offline_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting queue items: %w", err)
	}

	return n, nil
}

func (s *Store) ResetSubmitting(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE offline_queue SET state = ? WHERE state = ?`,
		string(queue.StateQueued), string(queue.StateSubmitting))
	if err != nil {
		return 0, fmt.Errorf("resetting submitting items: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return int(n), nil
}

func (s *Store) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return queue.ErrItemNotFound
	}

	return nil
}

var _ queue.Store = (*Store)(nil)
