package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteCache keeps batches in a local file for single-host deployments.
type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	c := &SQLiteCache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

func (c *SQLiteCache) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		urls JSON NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

func (c *SQLiteCache) Put(ctx context.Context, key string, urls []string) error {
	if urls == nil {
		urls = []string{}
	}
	data, err := json.Marshal(urls)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, urls, created_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET urls = excluded.urls, created_at = excluded.created_at`,
		key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) Keys(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT key FROM cache_entries ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (c *SQLiteCache) Get(ctx context.Context, key string) ([]string, error) {
	var data string
	err := c.db.QueryRowContext(ctx, `SELECT urls FROM cache_entries WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	var urls []string
	if err := json.Unmarshal([]byte(data), &urls); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return urls, nil
}

func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
