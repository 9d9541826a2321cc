package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filedrive/internal/model"
	"filedrive/internal/repository"
)

var fileCols = []string{"id", "name", "size", "url", "parent_path", "storage_path", "content_type", "created_at", "updated_at"}

func newFileRepo(t *testing.T) (*FilePostgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFilePostgres(db), mock
}

func TestFilePostgres_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	f := &model.File{
		ID:          "cv1",
		Name:        "report.pdf",
		Size:        100,
		URL:         "http://minio/report.pdf",
		ParentPath:  "docs",
		StoragePath: "docs/report.pdf",
		ContentType: "application/pdf",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	t.Run("success", func(t *testing.T) {
		repo, mock := newFileRepo(t)
		mock.ExpectQuery("INSERT INTO files").
			WithArgs(f.ID, f.Name, f.Size, f.URL, f.ParentPath, f.StoragePath, f.ContentType, f.CreatedAt, f.UpdatedAt).
			WillReturnRows(sqlmock.NewRows(fileCols).
				AddRow(f.ID, f.Name, f.Size, f.URL, f.ParentPath, f.StoragePath, f.ContentType, now, now))

		got, err := repo.Create(ctx, f)

		require.NoError(t, err)
		assert.Equal(t, f, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		repo, mock := newFileRepo(t)
		mock.ExpectQuery("INSERT INTO files").
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

		got, err := repo.Create(ctx, f)

		assert.ErrorIs(t, err, repository.ErrConflict)
		assert.Nil(t, got)
	})

	t.Run("other error passes through", func(t *testing.T) {
		repo, mock := newFileRepo(t)
		boom := errors.New("boom")
		mock.ExpectQuery("INSERT INTO files").WillReturnError(boom)

		_, err := repo.Create(ctx, f)

		assert.ErrorIs(t, err, boom)
	})
}

func TestFilePostgres_FindByNameAndParent(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo, mock := newFileRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM files WHERE name = \\$1 AND parent_path = \\$2").
			WithArgs("a.txt", "").
			WillReturnRows(sqlmock.NewRows(fileCols).
				AddRow("id1", "a.txt", 3, "u", "", "a.txt", "text/plain", time.Now(), time.Now()))

		got, err := repo.FindByNameAndParent(ctx, "a.txt", "")

		require.NoError(t, err)
		assert.Equal(t, "id1", got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newFileRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM files WHERE name").
			WithArgs("a.txt", "docs").
			WillReturnRows(sqlmock.NewRows(fileCols))

		got, err := repo.FindByNameAndParent(ctx, "a.txt", "docs")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, got)
	})
}

func TestFilePostgres_FindByID(t *testing.T) {
	repo, mock := newFileRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM files WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(fileCols))

	got, err := repo.FindByID(context.Background(), "missing")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, got)
}

func TestFilePostgres_UpdateURL(t *testing.T) {
	repo, mock := newFileRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("UPDATE files SET url = \\$2, size = \\$3, updated_at = \\$4").
		WithArgs("id1", "http://new", int64(42), now).
		WillReturnRows(sqlmock.NewRows(fileCols).
			AddRow("id1", "a.txt", 42, "http://new", "", "a.txt", "text/plain", now.Add(-time.Hour), now))

	got, err := repo.UpdateURL(context.Background(), "id1", "http://new", 42, now)

	require.NoError(t, err)
	assert.Equal(t, "http://new", got.URL)
	assert.Equal(t, int64(42), got.Size)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_List(t *testing.T) {
	repo, mock := newFileRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM files WHERE parent_path = \\$1").
		WithArgs("docs").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM files WHERE parent_path = \\$1 ORDER BY").
		WithArgs("docs", 10, 0).
		WillReturnRows(sqlmock.NewRows(fileCols).
			AddRow("id1", "a.txt", 1, "u1", "docs", "docs/a.txt", "text/plain", time.Now(), time.Now()).
			AddRow("id2", "b.txt", 2, "u2", "docs", "docs/b.txt", "text/plain", time.Now(), time.Now()))

	res, err := repo.List(context.Background(), "docs", repository.PageQuery{Limit: 10, Offset: 0})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, "b.txt", res.Items[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_Delete(t *testing.T) {
	repo, mock := newFileRepo(t)
	mock.ExpectExec("DELETE FROM files WHERE id = \\$1").
		WithArgs("id1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "id1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
