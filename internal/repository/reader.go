package repository

import (
	"context"

	"dmsreport/internal/table"
)

// TableReader defines read-only access to the source store.
// No business logic here: no joins, no filtering, no caching.
type TableReader interface {
	// ReadTable returns every row of the named source table.
	ReadTable(ctx context.Context, name string) (*table.Table, error)
}
