package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/kapu/carfinder-bot-go/pkg/errors"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Querier is the subset of *sql.DB used to read records.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// CheckTableName rejects names that cannot be interpolated into SQL as a
// plain or schema-qualified identifier.
func CheckTableName(table string) error {
	if !tableNamePattern.MatchString(table) {
		return errors.NewValidationError("invalid catalog table name", "table", table)
	}
	return nil
}

// QueryRecords reads make/model/year rows from a table. NULL columns become
// empty fields.
func QueryRecords(ctx context.Context, db Querier, table string) ([]Record, error) {
	if err := CheckTableName(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT make, model, CAST(year AS TEXT) FROM %s", table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog table %s: %w", table, err)
	}
	defer rows.Close()

	var records []Record
	line := 0
	for rows.Next() {
		line++
		var brand, model, year sql.NullString
		if err := rows.Scan(&brand, &model, &year); err != nil {
			return nil, fmt.Errorf("scan catalog row %d: %w", line, err)
		}
		records = append(records, Record{
			Line:  line,
			Make:  brand.String,
			Model: model.String,
			Year:  year.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog table %s: %w", table, err)
	}

	return records, nil
}
