package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-blog/internal/database"
)

var userColumns = []string{
	"id", "username", "email", "password_hash", "image_file", "reset_token", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewRepository(database.NewBunDB(sqlDB)), mock
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows(userColumns).
		AddRow(id.String(), "alice", "a@x.com", "hash", "default.jpg", nil, now, now)
	mock.ExpectQuery(`SELECT .* FROM "users" AS "u" WHERE .*email.*a@x\.com`).WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "default.jpg", got.ImageFile)
	assert.Nil(t, got.ResetToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := repo.Create(context.Background(), "alice", "a@x.com", "hash")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCreate_DuplicateUsername(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	_, err := repo.Create(context.Background(), "alice", "a@x.com", "hash")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestUpdateProfile_DuplicateUsername(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE "users"`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	err := repo.UpdateProfile(context.Background(), uuid.New(), Profile{Username: "bob", Email: "b@x.com", ImageFile: "default.jpg"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestSetResetToken_NoRows(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE "users" AS "u" SET reset_token = 'h1'`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetResetToken(context.Background(), uuid.New(), "h1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword_RequiresStoredToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE "users" .*reset_token = NULL.*reset_token = 'h1'`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE "users" .*reset_token = NULL.*reset_token = 'h2'`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ResetPassword(context.Background(), uuid.New(), "h1", "newhash")
	assert.ErrorIs(t, err, ErrResetTokenMismatch)

	err = repo.ResetPassword(context.Background(), uuid.New(), "h2", "newhash")
	assert.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
