package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"dmsreport/internal/repository"
	"dmsreport/internal/table"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TableSQL is a database/sql implementation of repository.TableReader.
// It works with any driver whose values scan into the usual driver.Value types.
type TableSQL struct {
	db *sql.DB
}

// NewTableSQL creates a new TableSQL repository.
func NewTableSQL(db *sql.DB) *TableSQL {
	return &TableSQL{db: db}
}

var _ repository.TableReader = (*TableSQL)(nil)

// ReadTable runs SELECT * against name and returns all rows in store order.
func (r *TableSQL) ReadTable(ctx context.Context, name string) (*table.Table, error) {
	if !tableName.MatchString(name) {
		return nil, fmt.Errorf("invalid table name %q", name)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT * FROM "+name)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", name, err)
	}

	out := table.New(columns...)
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = normalize(v)
		}
		if err := out.Append(row...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows %s: %w", name, err)
	}

	return out, nil
}

// normalize maps driver values onto the cell types table.Table documents.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case int64, float64, bool, string:
		return x
	case time.Time:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case uint64:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return fmt.Sprint(x)
	}
}
