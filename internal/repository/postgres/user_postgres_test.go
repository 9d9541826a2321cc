package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filedrive/internal/model"
	"filedrive/internal/repository"
)

var userCols = []string{"id", "email", "password_hash", "created_at"}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserPostgres(db)

	now := time.Now().UTC()
	u := &model.User{ID: "u1", Email: "a@b.co", PasswordHash: "hash", CreatedAt: now}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("u1", "a@b.co", "hash", now).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@b.co", "hash", now))

	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.Create(context.Background(), u)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("a@b.co").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@b.co", "hash", time.Now()))

	got, err := repo.FindByEmail(context.Background(), "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("nobody@b.co").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err = repo.FindByEmail(context.Background(), "nobody@b.co")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@b.co", "hash", time.Now()))

	got, err := repo.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}
