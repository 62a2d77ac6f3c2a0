package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLStorage is a database/sql backed Storage.
// It works with any database/sql driver for PostgreSQL, MySQL or SQLite.
// Migrate creates the table; its schema is:
//
//	CREATE TABLE vstore_items (
//	    item_key   VARCHAR(255) PRIMARY KEY,
//	    item_value TEXT NOT NULL,
//	    updated_at TIMESTAMP NOT NULL
//	);
type SQLStorage struct {
	db        *sql.DB
	tableName string
	dialect   SQLDialect
}

// SQLDialect represents the SQL dialect for query generation.
type SQLDialect int

const (
	// DialectPostgreSQL uses PostgreSQL syntax ($1, $2 placeholders).
	DialectPostgreSQL SQLDialect = iota
	// DialectMySQL uses MySQL syntax (? placeholders).
	DialectMySQL
	// DialectSQLite uses SQLite syntax (? placeholders).
	DialectSQLite
)

// SQLOption configures SQLStorage behavior.
type SQLOption func(*SQLStorage)

// WithSQLTableName sets the table name. Default: "vstore_items".
func WithSQLTableName(name string) SQLOption {
	return func(s *SQLStorage) {
		s.tableName = name
	}
}

// WithSQLDialect sets the SQL dialect. Default: DialectPostgreSQL.
func WithSQLDialect(dialect SQLDialect) SQLOption {
	return func(s *SQLStorage) {
		s.dialect = dialect
	}
}

// NewSQLStorage creates a SQL-backed storage. It does not create the table;
// call Migrate for that.
func NewSQLStorage(db *sql.DB, opts ...SQLOption) *SQLStorage {
	s := &SQLStorage{
		db:        db,
		tableName: "vstore_items",
		dialect:   DialectPostgreSQL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// placeholder returns the n-th placeholder for the dialect.
func (s *SQLStorage) placeholder(n int) string {
	if s.dialect == DialectPostgreSQL {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Migrate creates the items table if it does not exist.
func (s *SQLStorage) Migrate(ctx context.Context) error {
	var query string
	switch s.dialect {
	case DialectPostgreSQL:
		query = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				item_key VARCHAR(255) PRIMARY KEY,
				item_value TEXT NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			)
		`, s.tableName)
	case DialectMySQL:
		query = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				item_key VARCHAR(255) PRIMARY KEY,
				item_value LONGTEXT NOT NULL,
				updated_at DATETIME NOT NULL
			)
		`, s.tableName)
	default:
		query = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				item_key TEXT PRIMARY KEY,
				item_value TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)
		`, s.tableName)
	}
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// GetItem selects the value stored under key.
func (s *SQLStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	query := fmt.Sprintf(`SELECT item_value FROM %s WHERE item_key = %s`, s.tableName, s.placeholder(1))

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// SetItem upserts value under key.
func (s *SQLStorage) SetItem(ctx context.Context, key, value string) error {
	var query string
	switch s.dialect {
	case DialectPostgreSQL:
		query = fmt.Sprintf(`
			INSERT INTO %s (item_key, item_value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (item_key) DO UPDATE SET
				item_value = EXCLUDED.item_value,
				updated_at = EXCLUDED.updated_at
		`, s.tableName)
	case DialectMySQL:
		query = fmt.Sprintf(`
			INSERT INTO %s (item_key, item_value, updated_at)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE
				item_value = VALUES(item_value),
				updated_at = VALUES(updated_at)
		`, s.tableName)
	case DialectSQLite:
		query = fmt.Sprintf(`
			INSERT INTO %s (item_key, item_value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (item_key) DO UPDATE SET
				item_value = excluded.item_value,
				updated_at = excluded.updated_at
		`, s.tableName)
	}

	_, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC())
	return err
}

// RemoveItem deletes key.
func (s *SQLStorage) RemoveItem(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE item_key = %s`, s.tableName, s.placeholder(1))
	_, err := s.db.ExecContext(ctx, query, key)
	return err
}

// TableName returns the configured table name.
func (s *SQLStorage) TableName() string {
	return s.tableName
}

var _ Storage = (*SQLStorage)(nil)
