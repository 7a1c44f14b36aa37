package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSQL_ReadTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewTableSQL(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows([]string{"doc_id", "title", "doc_type", "status", "created_at"}).
			AddRow(int64(1), []byte("Budget"), int64(10), "active", created).
			AddRow(int64(2), "Minutes", nil, "archived", created.Add(time.Hour))

		mock.ExpectQuery("SELECT \\* FROM dms_documents").WillReturnRows(rows)

		got, err := repo.ReadTable(ctx, "dms_documents")

		require.NoError(t, err)
		assert.Equal(t, []string{"doc_id", "title", "doc_type", "status", "created_at"}, got.Columns())
		require.Equal(t, 2, got.Len())

		title, ok := got.Row(0).Get("title")
		assert.True(t, ok)
		assert.Equal(t, "Budget", title, "[]byte is normalized to string")

		_, ok = got.Row(1).Get("doc_type")
		assert.False(t, ok)

		ts, ok := got.Row(0).Time("created_at")
		assert.True(t, ok)
		assert.Equal(t, created, ts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT \\* FROM dms_user").WillReturnError(errors.New("db fail"))

		got, err := repo.ReadTable(ctx, "dms_user")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "query dms_user: db fail")
		assert.Nil(t, got)
	})

	t.Run("row error", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id"}).
			AddRow(int64(1)).
			RowError(0, errors.New("broken row"))
		mock.ExpectQuery("SELECT \\* FROM announcements").WillReturnRows(rows)

		got, err := repo.ReadTable(ctx, "announcements")

		assert.Error(t, err)
		assert.Nil(t, got)
	})

	t.Run("invalid table name", func(t *testing.T) {
		got, err := repo.ReadTable(ctx, "users; DROP TABLE users")

		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, normalize(nil))
	assert.Equal(t, "x", normalize([]byte("x")))
	assert.Equal(t, int64(3), normalize(int32(3)))
	assert.Equal(t, int64(3), normalize(3))
	assert.Equal(t, float64(1.5), normalize(float32(1.5)))
	assert.Equal(t, true, normalize(true))
}
