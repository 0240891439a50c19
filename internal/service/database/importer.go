package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kapu/carfinder-bot-go/internal/catalog"
	"go.uber.org/zap"
)

// Dialect selects the placeholder syntax of a driver.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

func (d Dialect) placeholders() string {
	if d == DialectPostgres {
		return "$1, $2, $3"
	}
	return "?, ?, ?"
}

// ImportOptions controls ImportRecords.
type ImportOptions struct {
	Table   string
	Dialect Dialect
	// Replace empties the table before inserting.
	Replace bool
}

// ImportResult counts what ImportRecords did.
type ImportResult struct {
	Inserted int
	Skipped  int
}

// ImportRecords writes records into a make/model/year table in a single
// transaction, creating the table when missing. Malformed records are skipped
// and logged, the same way the catalog loader treats them.
func ImportRecords(ctx context.Context, db *sql.DB, opts ImportOptions, records []catalog.Record, logger *zap.Logger) (ImportResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := catalog.CheckTableName(opts.Table); err != nil {
		return ImportResult{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		make  TEXT NOT NULL,
		model TEXT NOT NULL,
		year  TEXT NOT NULL
	)`, opts.Table)
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return ImportResult{}, fmt.Errorf("create table %s: %w", opts.Table, err)
	}

	if opts.Replace {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", opts.Table)); err != nil {
			return ImportResult{}, fmt.Errorf("clear table %s: %w", opts.Table, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (make, model, year) VALUES (%s)", opts.Table, opts.Dialect.placeholders()))
	if err != nil {
		return ImportResult{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var result ImportResult
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			logger.Warn("Skipping malformed catalog record", zap.Error(err))
			result.Skipped++
			continue
		}
		if _, err := stmt.ExecContext(ctx, rec.Make, rec.Model, rec.Year); err != nil {
			return ImportResult{}, fmt.Errorf("insert line %d: %w", rec.Line, err)
		}
		result.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("commit import: %w", err)
	}
	return result, nil
}
