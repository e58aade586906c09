package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"account-service/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (uuid.UUID, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	SetRefreshTokenHash(ctx context.Context, id uuid.UUID, tokenHash string) error
	RotateRefreshTokenHash(ctx context.Context, id uuid.UUID, oldHash, newHash string) (bool, error)
	ClearRefreshTokenHash(ctx context.Context, id uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateAccountDetails(ctx context.Context, id uuid.UUID, fullName, email string) (*model.User, error)
	UpdateAvatarURL(ctx context.Context, id uuid.UUID, avatarURL string) (*model.User, error)
	UpdateCoverImageURL(ctx context.Context, id uuid.UUID, coverImageURL string) (*model.User, error)
}

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, username, email, full_name, password_hash, avatar_url, cover_image_url, refresh_token_hash, created_at, updated_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) (uuid.UUID, error) {
	query := `INSERT INTO users (username, email, full_name, password_hash, avatar_url, cover_image_url) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var newID uuid.UUID
	err := r.db.QueryRowxContext(ctx, query,
		user.Username, user.Email, user.FullName, user.PasswordHash, user.AvatarURL, user.CoverImageURL,
	).Scan(&newID)

	if err != nil {
		return uuid.Nil, err
	}

	return newID, nil
}

func (r *postgresUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $2`
	err := r.db.GetContext(ctx, &user, query, username, email)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) SetRefreshTokenHash(ctx context.Context, id uuid.UUID, tokenHash string) error {
	query := `UPDATE users SET refresh_token_hash = $1, updated_at = now() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, tokenHash, id)
	return err
}

// RotateRefreshTokenHash swaps the stored refresh token hash only if it still
// equals oldHash. A false return means the presented token lost the race or
// was already rotated out, and must be rejected.
func (r *postgresUserRepository) RotateRefreshTokenHash(ctx context.Context, id uuid.UUID, oldHash, newHash string) (bool, error) {
	query := `UPDATE users SET refresh_token_hash = $1, updated_at = now() WHERE id = $2 AND refresh_token_hash = $3`
	res, err := r.db.ExecContext(ctx, query, newHash, id, oldHash)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (r *postgresUserRepository) ClearRefreshTokenHash(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET refresh_token_hash = NULL, updated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *postgresUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, passwordHash, id)
	return err
}

func (r *postgresUserRepository) UpdateAccountDetails(ctx context.Context, id uuid.UUID, fullName, email string) (*model.User, error) {
	var user model.User
	query := `UPDATE users SET full_name = $1, email = $2, updated_at = now() WHERE id = $3 RETURNING ` + userColumns
	err := r.db.GetContext(ctx, &user, query, fullName, email, id)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) UpdateAvatarURL(ctx context.Context, id uuid.UUID, avatarURL string) (*model.User, error) {
	var user model.User
	query := `UPDATE users SET avatar_url = $1, updated_at = now() WHERE id = $2 RETURNING ` + userColumns
	err := r.db.GetContext(ctx, &user, query, avatarURL, id)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) UpdateCoverImageURL(ctx context.Context, id uuid.UUID, coverImageURL string) (*model.User, error) {
	var user model.User
	query := `UPDATE users SET cover_image_url = $1, updated_at = now() WHERE id = $2 RETURNING ` + userColumns
	err := r.db.GetContext(ctx, &user, query, coverImageURL, id)

	if err != nil {
		return nil, err
	}

	return &user, nil
}
