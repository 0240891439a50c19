package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteService opens a local catalog database in read-only mode.
type SQLiteService struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

func NewSQLiteService(ctx context.Context, path string, logger *zap.Logger) (*SQLiteService, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sqlite catalog %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := ping(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	logger.Info("SQLite catalog opened", zap.String("path", path))

	return &SQLiteService{
		db:     db,
		path:   path,
		logger: logger,
	}, nil
}

func (s *SQLiteService) DB() *sql.DB {
	return s.db
}

func (s *SQLiteService) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// OpenWritableSQLite opens path for the catalog importer, creating the file
// when it does not exist.
func OpenWritableSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=rwc&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := ping(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	return db, nil
}
