package loader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmsreport/internal/model"
	"dmsreport/internal/repository/mocks"
	"dmsreport/internal/table"
)

func loadFixture(t *testing.T) *model.Dataset {
	t.Helper()
	reader := new(mocks.MockTableReader)
	expectAll(reader, 1)
	ds, err := New(reader, nil, nil, nil).Load(context.Background())
	require.NoError(t, err)
	return ds
}

func ids(t *table.Table) []string {
	var out []string
	t.Each(func(r table.Row) {
		v, _ := r.String("doc_id")
		out = append(out, v)
	})
	return out
}

func TestFilterByDate_InclusiveBounds(t *testing.T) {
	docs := loadFixture(t).Table(model.Documents)

	got := FilterByDate(docs, "created_at", model.NewDateRange(day(1), day(5)))
	assert.Equal(t, []string{"1", "2"}, ids(got))

	got = FilterByDate(docs, "created_at", model.NewDateRange(day(2), day(4)))
	assert.Equal(t, 0, got.Len())
}

func TestFilterByDate_NoFilter(t *testing.T) {
	docs := loadFixture(t).Table(model.Documents)

	assert.Same(t, docs, FilterByDate(docs, "created_at", nil))
	assert.Same(t, docs, FilterByDate(docs, "created_at", model.DateRange{day(1)}))
	assert.Same(t, docs, FilterByDate(docs, "updated_at", model.NewDateRange(day(1), day(2))))
}

func TestFilterByDate_DropsMissingTimestamps(t *testing.T) {
	docs := table.New("doc_id", "created_at").
		MustAppend(int64(1), day(3)).
		MustAppend(int64(2), nil)

	got := FilterByDate(docs, "created_at", model.NewDateRange(day(1), day(9)))
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestFilterByCategory(t *testing.T) {
	docs := loadFixture(t).Table(model.Documents)

	assert.Same(t, docs, FilterByCategory(docs, "name", nil))
	assert.Equal(t, []string{"2"}, ids(FilterByCategory(docs, "name", []string{"Policy"})))
	// Null display names never match a selection.
	assert.Equal(t, []string{"1", "2"}, ids(FilterByCategory(docs, "name", []string{"Report", "Policy"})))
}

func TestFilterDocuments(t *testing.T) {
	ds := loadFixture(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter", filter: Filter{}, want: []string{"1", "2", "3"}},
		{name: "date range", filter: Filter{Range: model.NewDateRange(day(4), model.EndOfDay(day(9)))}, want: []string{"2", "3"}},
		{name: "department", filter: Filter{Departments: []string{"Finance"}}, want: []string{"1", "3"}},
		{name: "unknown department", filter: Filter{Departments: []string{"Ops"}}, want: nil},
		{name: "type", filter: Filter{Types: []string{"Report"}}, want: []string{"1"}},
		{
			name: "combined",
			filter: Filter{
				Range:       model.NewDateRange(day(1), day(9).Add(time.Hour)),
				Departments: []string{"Finance", "Legal"},
				Types:       []string{"Policy"},
			},
			want: []string{"2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterDocuments(ds, tt.filter)))
		})
	}
}
