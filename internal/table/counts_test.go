package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueCounts_DescendingWithFirstSeenTies(t *testing.T) {
	tb := New("status").
		MustAppend("draft").
		MustAppend("active").
		MustAppend("archived").
		MustAppend("active").
		MustAppend("archived").
		MustAppend(nil)

	got := ValueCounts(tb, "status", "N/A")

	assert.Equal(t, []Count{
		{Value: "active", Count: 2},
		{Value: "archived", Count: 2},
		{Value: "draft", Count: 1},
		{Value: "N/A", Count: 1},
	}, got)
}

func TestValueCounts_SumsToRowCount(t *testing.T) {
	tb := documents()
	for _, col := range []string{"status", "doc_type", "title"} {
		total := 0
		for _, c := range ValueCounts(tb, col, "N/A") {
			total += c.Count
		}
		assert.Equal(t, tb.Len(), total, col)
	}
}

func TestValueCounts_MissingColumn(t *testing.T) {
	assert.Nil(t, ValueCounts(documents(), "role", "N/A"))
}

func TestTop(t *testing.T) {
	counts := []Count{{"a", 3}, {"b", 2}, {"c", 1}}
	assert.Len(t, Top(counts, 2), 2)
	assert.Len(t, Top(counts, 10), 3)
}

func TestDistinct(t *testing.T) {
	tb := New("name").MustAppend("HR").MustAppend(nil).MustAppend("IT").MustAppend("HR")
	assert.Equal(t, []string{"HR", "IT"}, Distinct(tb, "name"))
	assert.Nil(t, Distinct(tb, "missing"))
}

func TestNewestN(t *testing.T) {
	tb := documents()

	top := NewestN(tb, "created_at", 2)
	require.Equal(t, 2, top.Len())
	first, _ := top.Row(0).String("title")
	second, _ := top.Row(1).String("title")
	assert.Equal(t, "Memo", first)
	assert.Equal(t, "Minutes", second)

	all := NewestN(tb, "created_at", 5)
	require.Equal(t, 4, all.Len(), "fewer rows than n returns all of them")
	last, _ := all.Row(3).String("title")
	assert.Equal(t, "Draft", last, "rows without a timestamp sort last")
}

func TestNewestN_StableTies(t *testing.T) {
	same := ts("2024-01-01 00:00")
	tb := New("id", "created_at").
		MustAppend(int64(1), same).
		MustAppend(int64(2), same).
		MustAppend(int64(3), same)

	top := NewestN(tb, "created_at", 2)
	a, _ := top.Row(0).String("id")
	b, _ := top.Row(1).String("id")
	assert.Equal(t, "1", a)
	assert.Equal(t, "2", b)
}
