package service

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrValidation         = errors.New("required fields are missing or empty")
	ErrAlreadyExists      = errors.New("user already exists with given username or email")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized request")
	ErrTokenReused        = errors.New("refresh token is expired or already used")
	ErrUpload             = errors.New("file upload failed")
)

// uniqueViolation reports whether err is a Postgres duplicate-key error,
// raised by the unique indexes on users.username and users.email.
func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
