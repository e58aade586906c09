package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"account-service/internal/model"
	repo "account-service/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

const userColumns = `id, username, email, full_name, password_hash, avatar_url, cover_image_url, refresh_token_hash, created_at, updated_at`

func TestPostgresUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresUserRepository(sqlxDB)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (username, email, full_name, password_hash, avatar_url, cover_image_url) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`)).
		WithArgs("alice", "a@x.com", "Alice", "hash", "http://img/avatar.png", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))

	nid, err := r.Create(context.Background(), &model.User{
		Username:     "alice",
		Email:        "a@x.com",
		FullName:     "Alice",
		PasswordHash: "hash",
		AvatarURL:    "http://img/avatar.png",
	})
	require.NoError(t, err)
	require.Equal(t, id, nid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByUsernameOrEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresUserRepository(sqlxDB)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash"}).
		AddRow(id, "alice", "a@x.com", "hash")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $2`)).
		WithArgs("alice", "a@x.com").WillReturnRows(rows)

	u, err := r.FindByUsernameOrEmail(context.Background(), "alice", "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByID_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresUserRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+userColumns+` FROM users WHERE id = $1`)).
		WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrNoRows)

	_, err = r.FindByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_RotateRefreshTokenHash_Swapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresUserRepository(sqlxDB)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET refresh_token_hash = $1, updated_at = now() WHERE id = $2 AND refresh_token_hash = $3`)).
		WithArgs("new", id, "old").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := r.RotateRefreshTokenHash(context.Background(), id, "old", "new")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_RotateRefreshTokenHash_StaleToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresUserRepository(sqlxDB)

	// stored hash no longer matches: zero rows updated
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET refresh_token_hash = $1, updated_at = now() WHERE id = $2 AND refresh_token_hash = $3`)).
		WithArgs("new", sqlmock.AnyArg(), "rotated-out").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := r.RotateRefreshTokenHash(context.Background(), uuid.New(), "rotated-out", "new")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_ClearRefreshTokenHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresUserRepository(sqlxDB)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET refresh_token_hash = NULL, updated_at = now() WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.ClearRefreshTokenHash(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_UpdateAccountDetails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresUserRepository(sqlxDB)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "username", "email", "full_name"}).
		AddRow(id, "alice", "new@x.com", "Alice B")
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET full_name = $1, email = $2, updated_at = now() WHERE id = $3 RETURNING `+userColumns)).
		WithArgs("Alice B", "new@x.com", id).
		WillReturnRows(rows)

	u, err := r.UpdateAccountDetails(context.Background(), id, "Alice B", "new@x.com")
	require.NoError(t, err)
	require.Equal(t, "new@x.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}
