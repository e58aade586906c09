package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID `db:"id"`
	Username         string    `db:"username"`
	Email            string    `db:"email"`
	FullName         string    `db:"full_name"`
	PasswordHash     string    `db:"password_hash"`
	AvatarURL        string    `db:"avatar_url"`
	CoverImageURL    *string   `db:"cover_image_url"`
	RefreshTokenHash *string   `db:"refresh_token_hash"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
