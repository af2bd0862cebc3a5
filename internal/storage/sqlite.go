package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/susume/internal/models"
)

// SQLiteStorage implements Storage using SQLite. Genres, tags, and keywords
// are stored as JSON columns.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if needed.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS media_items (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT,
		genres TEXT,
		tags TEXT,
		keywords TEXT,
		year TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_media_items_category ON media_items(category);
	`
	_, err := db.Exec(schema)
	return err
}

// UpsertItem inserts or replaces an item by ID.
func (s *SQLiteStorage) UpsertItem(ctx context.Context, item *models.MediaItem) error {
	genres, err := json.Marshal(item.Genres)
	if err != nil {
		return fmt.Errorf("marshal genres: %w", err)
	}
	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	keywords, err := json.Marshal(item.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO media_items (id, title, category, description, genres, tags, keywords, year)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			description = excluded.description,
			genres = excluded.genres,
			tags = excluded.tags,
			keywords = excluded.keywords,
			year = excluded.year`,
		item.ID, item.Title, string(item.Category), item.Description,
		string(genres), string(tags), string(keywords), item.Year,
	)
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", item.ID, err)
	}
	return nil
}

// GetItem returns the item with the given ID, or models.ErrNotFound.
func (s *SQLiteStorage) GetItem(ctx context.Context, id string) (*models.MediaItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, category, description, genres, tags, keywords, year, created_at
		FROM media_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %q: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return item, nil
}

// ListItems returns a page of items in insertion order.
func (s *SQLiteStorage) ListItems(ctx context.Context, offset, limit int) ([]*models.MediaItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, category, description, genres, tags, keywords, year, created_at
		FROM media_items ORDER BY rowid LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// AllItems returns the full catalog in insertion order.
func (s *SQLiteStorage) AllItems(ctx context.Context) ([]*models.MediaItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, category, description, genres, tags, keywords, year, created_at
		FROM media_items ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// DeleteItem removes an item by ID.
func (s *SQLiteStorage) DeleteItem(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM media_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

// CountItems returns the catalog size.
func (s *SQLiteStorage) CountItems(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.MediaItem, error) {
	var item models.MediaItem
	var category, genres, tags, keywords string
	if err := row.Scan(&item.ID, &item.Title, &category, &item.Description,
		&genres, &tags, &keywords, &item.Year, &item.CreatedAt); err != nil {
		return nil, err
	}
	item.Category = models.Category(category)
	if err := json.Unmarshal([]byte(genres), &item.Genres); err != nil {
		return nil, fmt.Errorf("unmarshal genres for %s: %w", item.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags for %s: %w", item.ID, err)
	}
	if err := json.Unmarshal([]byte(keywords), &item.Keywords); err != nil {
		return nil, fmt.Errorf("unmarshal keywords for %s: %w", item.ID, err)
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]*models.MediaItem, error) {
	var items []*models.MediaItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
