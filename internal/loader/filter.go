package loader

import (
	"dmsreport/internal/model"
	"dmsreport/internal/table"
)

// Filter is the caller's selection over the documents table.
type Filter struct {
	Range       model.DateRange
	Departments []string
	Types       []string
}

// FilterByDate keeps rows whose column timestamp lies inside r, bounds inclusive.
// The table is returned unchanged when r does not have two endpoints or the column is absent.
// Rows without a readable timestamp are dropped by an active range.
func FilterByDate(t *table.Table, column string, r model.DateRange) *table.Table {
	if _, _, ok := r.Bounds(); !ok || !t.Has(column) {
		return t
	}
	return t.Filter(func(row table.Row) bool {
		ts, ok := row.Time(column)
		return ok && r.Contains(ts)
	})
}

// FilterByCategory keeps rows whose column value is one of selected.
// An empty selection or an absent column means no filter.
func FilterByCategory(t *table.Table, column string, selected []string) *table.Table {
	if len(selected) == 0 || !t.Has(column) {
		return t
	}
	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		want[s] = true
	}
	return t.Filter(func(row table.Row) bool {
		v, ok := row.String(column)
		return ok && want[v]
	})
}

// FilterDocuments applies f to the joined documents of ds: the date range on created_at,
// then the departments (by display name, resolved through the departments table), then the
// document types (by the joined type name).
func FilterDocuments(ds *model.Dataset, f Filter) *table.Table {
	docs := ds.Table(model.Documents)
	docs = FilterByDate(docs, model.ColCreatedAt, f.Range)

	if len(f.Departments) > 0 && docs.Has(model.ColDepartmentID) {
		ids := departmentIDs(ds.Table(model.Departments), f.Departments)
		docs = FilterByCategory(docs, model.ColDepartmentID, ids)
		if len(ids) == 0 {
			docs = docs.Head(0)
		}
	}

	return FilterByCategory(docs, model.TypeNameColumn(docs), f.Types)
}

// departmentIDs maps department display names to their ids.
func departmentIDs(departments *table.Table, names []string) []string {
	sel := FilterByCategory(departments, model.ColName, names)
	if !departments.Has(model.ColName) {
		return nil
	}
	var ids []string
	sel.Each(func(row table.Row) {
		if id, ok := row.String(model.ColDepartmentID); ok {
			ids = append(ids, id)
		}
	})
	return ids
}
