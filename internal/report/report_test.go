package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmsreport/internal/model"
	"dmsreport/internal/table"
)

var generated = time.Date(2024, 3, 31, 9, 30, 15, 0, time.UTC)

// scenario builds 25 documents (12 Memo, 8 Policy, 5 Report; 18 active, 7 archived) and
// 4 users.
func scenario() *model.Dataset {
	docs := table.New("doc_id", "title", "status", "created_at", "name")
	types := []struct {
		name string
		n    int
	}{{"Memo", 12}, {"Policy", 8}, {"Report", 5}}

	id := 0
	for _, tp := range types {
		for i := 0; i < tp.n; i++ {
			id++
			status := "active"
			if id > 18 {
				status = "archived"
			}
			docs.MustAppend(int64(id), fmt.Sprintf("%s %d", tp.name, id), status,
				time.Date(2024, 3, id, 8, 0, 0, 0, time.UTC), tp.name)
		}
	}

	users := table.New("user_id", "role", "status_user", "name_dept").
		MustAppend(int64(1), "admin", "active", "Finance").
		MustAppend(int64(2), "editor", "active", "Legal").
		MustAppend(int64(3), "editor", "inactive", nil).
		MustAppend(int64(4), nil, "active", "Finance")

	return &model.Dataset{Tables: map[string]*table.Table{
		model.Documents:     docs,
		model.Users:         users,
		model.Announcements: table.New("id").MustAppend(int64(1)).MustAppend(int64(2)),
	}}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain ascii", "plain ascii"},
		{"â€¢ item", "- item"},
		{"done âœ… now", "done [OK] now"},
		{"failed âŒ", "failed [ERROR]"},
		{"ðŸ“Š stats ðŸ“„ doc ðŸ”„", "[CHART] stats [DOC] doc [REFRESH]"},
		{"• ✅ ❌ 📊 📄 🔄", "- [OK] [ERROR] [CHART] [DOC] [REFRESH]"},
		{"Café résumé", "Caf rsum"},
		{"日本語", ""},
		{"bad \xff byte", "bad  byte"},
	}
	for _, tt := range tests {
		got := Sanitize(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got, Sanitize(got), "idempotent for %q", tt.in)
		for _, r := range got {
			assert.Less(t, r, rune(128))
		}
	}
}

func TestText(t *testing.T) {
	tbl := table.New("title").MustAppend("ok âœ…").MustAppend(nil)

	assert.Equal(t, "ok [OK]", Text(tbl.Row(0), "title"))
	assert.Equal(t, NA, Text(tbl.Row(1), "title"))
	assert.Equal(t, NA, Text(tbl.Row(0), "missing"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, strings.Repeat("a", 10), Truncate(strings.Repeat("a", 10), 10))
	assert.Equal(t, strings.Repeat("a", 10)+"...", Truncate(strings.Repeat("a", 11), 10))
}

func TestCompose_Scenario(t *testing.T) {
	ds := scenario()
	docs := ds.Table(model.Documents)

	r := Compose(Input{Dataset: ds, Filtered: docs, GeneratedAt: generated, Detailed: true})

	assert.Equal(t, "2024-03-31 09:30:15", r.GeneratedAt)
	assert.Equal(t, "All Dates", r.DateRange)
	assert.Equal(t, "All Departments", r.Departments)
	assert.Equal(t, "All Types", r.Types)

	assert.Equal(t, []Metric{
		{Label: "Total Documents", Value: 25},
		{Label: "Total Users", Value: 4},
		{Label: "Active Documents", Value: 18},
		{Label: "Announcements", Value: 2},
	}, r.Summary)

	require.Len(t, r.Documents, 2)
	assert.Equal(t, []string{
		"- Memo: 12 documents",
		"- Policy: 8 documents",
		"- Report: 5 documents",
	}, r.Documents[0].Lines())
	assert.Equal(t, []string{
		"- active: 18 documents",
		"- archived: 7 documents",
	}, r.Documents[1].Lines())

	require.Len(t, r.Users, 2)
	assert.Equal(t, []string{"- editor: 2 users", "- admin: 1 users", "- N/A: 1 users"}, r.Users[0].Lines())
	assert.Equal(t, []string{"- active: 3 users", "- inactive: 1 users"}, r.Users[1].Lines())

	require.Len(t, r.Recent, 5)
	assert.Equal(t, "Report 25", r.Recent[0].Title)
	assert.Equal(t, "  Type: Report | Status: archived | Created: 2024-03-25 08:00", r.Recent[0].Detail())
	assert.Equal(t, "Report 21", r.Recent[4].Title)

	assert.Nil(t, r.Detailed, "25 rows exceed the detailed listing limit")
}

func TestCompose_BreakdownsSumToRowCount(t *testing.T) {
	ds := scenario()
	filtered := ds.Table(model.Documents).Filter(func(row table.Row) bool { return row.Index()%3 == 0 })

	r := Compose(Input{Dataset: ds, Filtered: filtered, GeneratedAt: generated})
	for _, b := range r.Documents {
		total := 0
		for _, c := range b.Counts {
			total += c.Count
		}
		assert.Equal(t, filtered.Len(), total, b.Title)
	}
}

func TestCompose_DetailedThreshold(t *testing.T) {
	ds := scenario()
	docs := ds.Table(model.Documents)

	tests := []struct {
		name     string
		rows     int
		detailed bool
		want     int
	}{
		{name: "empty", rows: 0, detailed: true, want: 0},
		{name: "single row", rows: 1, detailed: true, want: 1},
		{name: "at limit", rows: 20, detailed: true, want: 20},
		{name: "over limit", rows: 21, detailed: true, want: 0},
		{name: "switched off", rows: 5, detailed: false, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Compose(Input{Dataset: ds, Filtered: docs.Head(tt.rows), GeneratedAt: generated, Detailed: tt.detailed})
			assert.Len(t, r.Detailed, tt.want)
		})
	}
}

func TestCompose_DetailedRows(t *testing.T) {
	long := strings.Repeat("x", 45)
	docs := table.New("doc_id", "title", "status", "created_at", "name").
		MustAppend(int64(7), long, "active", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), nil).
		MustAppend(nil, "Short ✅", nil, nil, "Memo")
	ds := &model.Dataset{Tables: map[string]*table.Table{model.Documents: docs}}

	r := Compose(Input{Dataset: ds, Filtered: docs, GeneratedAt: generated, Detailed: true})

	require.Len(t, r.Detailed, 2)
	assert.Equal(t, DetailedRow{ID: "7", Title: strings.Repeat("x", 40) + "...", Type: NA, Status: "active", Created: "2024-01-02"}, r.Detailed[0])
	assert.Equal(t, DetailedRow{ID: NA, Title: "Short [OK]", Type: "Memo", Status: NA, Created: NA}, r.Detailed[1])
	// Listing keeps the filtered order.
	assert.Equal(t, "7", r.Detailed[0].ID)
}

func TestCompose_RecentActivity(t *testing.T) {
	long := strings.Repeat("t", 60)
	docs := table.New("doc_id", "title", "status", "created_at", "name").
		MustAppend(int64(1), "old", "active", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Memo").
		MustAppend(int64(2), "undated", "active", nil, "Memo").
		MustAppend(int64(3), long, "draft", time.Date(2024, 2, 1, 14, 45, 0, 0, time.UTC), "Policy")
	ds := &model.Dataset{Tables: map[string]*table.Table{model.Documents: docs}}

	r := Compose(Input{Dataset: ds, Filtered: docs, GeneratedAt: generated})

	require.Len(t, r.Recent, 3)
	assert.Equal(t, strings.Repeat("t", 50)+"...", r.Recent[0].Title)
	assert.Equal(t, "2024-02-01 14:45", r.Recent[0].Created)
	assert.Equal(t, "old", r.Recent[1].Title)
	assert.Equal(t, "undated", r.Recent[2].Title)
	assert.Equal(t, NA, r.Recent[2].Created)
}

func TestCompose_EmptyInputs(t *testing.T) {
	r := Compose(Input{Dataset: &model.Dataset{}, GeneratedAt: generated, Detailed: true})

	assert.Empty(t, r.Documents)
	assert.Nil(t, r.Users)
	assert.Empty(t, r.Recent)
	assert.Nil(t, r.Detailed)
	for _, m := range r.Summary {
		assert.Zero(t, m.Value, m.Label)
	}
}

func TestCompose_Metadata(t *testing.T) {
	rng := model.NewDateRange(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		model.EndOfDay(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)),
	)
	r := Compose(Input{
		Dataset:     scenario(),
		Range:       rng,
		Departments: []string{"Finance", "Légal"},
		Types:       []string{"Memo"},
		GeneratedAt: generated,
	})

	assert.Equal(t, "2024-03-01 to 2024-03-31", r.DateRange)
	assert.Equal(t, "Finance, Lgal", r.Departments)
	assert.Equal(t, "Memo", r.Types)
}

func TestRender_WritesPDF(t *testing.T) {
	ds := scenario()
	docs := ds.Table(model.Documents)

	var buf bytes.Buffer
	r := Compose(Input{Dataset: ds, Filtered: docs, GeneratedAt: generated, Detailed: true})
	require.NoError(t, Render(r, "Quarterly ✅ Report", &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	// Empty report still renders.
	buf.Reset()
	empty := Compose(Input{Dataset: &model.Dataset{}, GeneratedAt: generated})
	require.NoError(t, Render(empty, DefaultTitle, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRender_DetailedListingAddsPage(t *testing.T) {
	ds := scenario()
	small := ds.Table(model.Documents).Head(3)

	with := layout(Compose(Input{Dataset: ds, Filtered: small, GeneratedAt: generated, Detailed: true}), DefaultTitle)
	without := layout(Compose(Input{Dataset: ds, Filtered: small, GeneratedAt: generated}), DefaultTitle)

	require.NoError(t, with.Error())
	require.NoError(t, without.Error())
	assert.Equal(t, without.PageCount()+1, with.PageCount())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "DMS_Analytics_Report.pdf", FileName(""))
	assert.Equal(t, "DMS_Analytics_Report.pdf", FileName(DefaultTitle))
	assert.Equal(t, "Q1_Summary.pdf", FileName("Q1 Summary"))
	assert.Equal(t, "DMS_Analytics_Report.pdf", FileName("日本"))
}
