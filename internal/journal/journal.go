// Package journal keeps an append-only SQLite history of published posts.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one successfully published post.
type Record struct {
	RunID    string
	Image    string
	Index    int
	PostID   string
	Caption  string
	PostedAt time.Time
}

// Journal is a SQLite-backed post history. Use ":memory:" for an
// in-memory database, or a file path for persistent storage.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and if needed initializes) the journal database.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize journal schema: %w", err)
	}
	return j, nil
}

func (j *Journal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		image TEXT NOT NULL,
		idx INTEGER NOT NULL,
		post_id TEXT NOT NULL,
		caption TEXT NOT NULL,
		posted_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_posts_posted_at ON posts(posted_at);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Append records a successful post.
func (j *Journal) Append(ctx context.Context, rec Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx,
		"INSERT INTO posts (run_id, image, idx, post_id, caption, posted_at) VALUES (?, ?, ?, ?, ?, ?)",
		rec.RunID, rec.Image, rec.Index, rec.PostID, rec.Caption, rec.PostedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert post record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx,
		"SELECT run_id, image, idx, post_id, caption, posted_at FROM posts ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query post records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var postedAt int64
		if err := rows.Scan(&rec.RunID, &rec.Image, &rec.Index, &rec.PostID, &rec.Caption, &postedAt); err != nil {
			return nil, fmt.Errorf("scan post record: %w", err)
		}
		rec.PostedAt = time.Unix(postedAt, 0).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of journaled posts.
func (j *Journal) Count(ctx context.Context) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var count int
	if err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return 0, fmt.Errorf("count post records: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
