package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend keeps collection documents in a SQLite table
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the database at dbPath
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	b := &SQLiteBackend{db: db}
	if err := b.initTables(); err != nil {
		db.Close()
		return nil, err
	}

	return b, nil
}

// initTables creates the collections table
func (b *SQLiteBackend) initTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		key TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := b.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize tables: %w", err)
	}

	return nil
}

// Load retrieves the document stored under key
func (b *SQLiteBackend) Load(key string) ([]byte, error) {
	var doc string
	err := b.db.QueryRow(`SELECT document FROM collections WHERE key = ?`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return []byte(doc), nil
}

// Save replaces the document stored under key
func (b *SQLiteBackend) Save(key string, doc []byte) error {
	query := `
		INSERT INTO collections (key, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at
	`

	if _, err := b.db.Exec(query, key, string(doc), time.Now()); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

// Close closes the database connection
func (b *SQLiteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
