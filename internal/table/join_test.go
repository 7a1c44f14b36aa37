package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeftJoin_KeepsUnmatchedRows(t *testing.T) {
	types := New("type_id", "name").
		MustAppend(int64(10), "Memorandum").
		MustAppend(int64(20), "Minutes")

	joined, err := LeftJoin(documents(), types, "doc_type", "type_id", Suffixes{Right: "_type"})
	require.NoError(t, err)

	assert.Equal(t, 4, joined.Len(), "row count preserved")
	assert.Equal(t, []string{"doc_id", "title", "doc_type", "status", "created_at", "type_id", "name"}, joined.Columns())

	name, ok := joined.Row(0).String("name")
	assert.True(t, ok)
	assert.Equal(t, "Memorandum", name)

	_, ok = joined.Row(2).Get("name")
	assert.False(t, ok, "doc_type 99 has no type row")
	_, ok = joined.Row(3).Get("name")
	assert.False(t, ok, "null key never matches")
}

func TestLeftJoin_SharedKeyAndSuffixes(t *testing.T) {
	users := New("user_id", "department_id", "status").
		MustAppend(int64(1), int64(7), "active").
		MustAppend(int64(2), int64(8), "inactive")
	departments := New("department_id", "name", "status").
		MustAppend(int64(7), "Registrar", "open")

	joined, err := LeftJoin(users, departments, "department_id", "department_id", Suffixes{Left: "_user", Right: "_dept"})
	require.NoError(t, err)

	assert.Equal(t, []string{"user_id", "department_id", "status_user", "name", "status_dept"}, joined.Columns())
	require.Equal(t, 2, joined.Len())

	dept, _ := joined.Row(0).String("name")
	assert.Equal(t, "Registrar", dept)
	key, _ := joined.Row(1).String("department_id")
	assert.Equal(t, "8", key, "key of unmatched row comes from the left side")
}

func TestLeftJoin_DuplicateMatchesFanOut(t *testing.T) {
	left := New("k").MustAppend("a").MustAppend("b")
	right := New("k", "v").MustAppend("a", 1).MustAppend("a", 2)

	joined, err := LeftJoin(left, right, "k", "k", DefaultSuffixes)
	require.NoError(t, err)
	assert.Equal(t, 3, joined.Len())
}

func TestLeftJoin_Errors(t *testing.T) {
	left := New("k", "v")
	right := New("k", "v")

	_, err := LeftJoin(left, right, "missing", "k", DefaultSuffixes)
	assert.Error(t, err)

	_, err = LeftJoin(left, right, "k", "missing", DefaultSuffixes)
	assert.Error(t, err)

	_, err = LeftJoin(left, right, "k", "k", Suffixes{})
	assert.Error(t, err, "overlapping columns need a suffix")
}

func TestLeftJoin_MixedKeyTypes(t *testing.T) {
	left := New("doc_type").MustAppend(int64(3))
	right := New("type_id", "name").MustAppend("3", "Letter")

	joined, err := LeftJoin(left, right, "doc_type", "type_id", DefaultSuffixes)
	require.NoError(t, err)
	name, ok := joined.Row(0).String("name")
	assert.True(t, ok)
	assert.Equal(t, "Letter", name)
}
