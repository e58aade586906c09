package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"account-service/internal/events"
	"account-service/internal/jwt"
	"account-service/internal/model"
	"account-service/internal/repository"
)

// Uploader is the blob-store collaborator. Implementations must remove the
// local file after the attempt, success or failure.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (url string, err error)
}

type RegisterInput struct {
	Username       string
	Email          string
	FullName       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Login(ctx context.Context, identifier, password string) (*model.User, string, string, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
}

type authService struct {
	userRepo  repository.UserRepository
	tokens    *jwt.TokenService
	uploader  Uploader
	publisher events.EventPublisher
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.TokenService, uploader Uploader, publisher events.EventPublisher) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokens:    tokens,
		uploader:  uploader,
		publisher: publisher,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))
	fullName := strings.TrimSpace(input.FullName)

	if username == "" || email == "" || fullName == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrValidation
	}
	if input.AvatarPath == "" {
		return nil, ErrValidation
	}

	// friendly pre-check; the unique indexes are the authority
	if _, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	avatarURL, err := s.uploader.Upload(ctx, input.AvatarPath)
	if err != nil {
		return nil, ErrUpload
	}

	var coverImageURL *string
	if input.CoverImagePath != "" {
		url, err := s.uploader.Upload(ctx, input.CoverImagePath)
		if err != nil {
			slog.Warn("cover image upload failed, continuing without it", "error", err)
		} else {
			coverImageURL = &url
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		PasswordHash:  string(hashedPassword),
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
	}

	newID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if uniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	created, err := s.userRepo.FindByID(ctx, newID)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishUserRegistered(created.ID, created.Username, created.Email); err != nil {
		slog.Warn("publishing user.registered", "error", err)
	}

	return created, nil
}

func (s *authService) Login(ctx context.Context, identifier, password string) (*model.User, string, string, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return nil, "", "", ErrValidation
	}

	user, err := s.userRepo.FindByUsernameOrEmail(ctx, identifier, identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", "", ErrUserNotFound
		}
		return nil, "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, "", "", err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, "", "", err
	}

	// overwriting the stored hash invalidates whatever session held the
	// previous refresh token; exactly one session per user
	if err := s.userRepo.SetRefreshTokenHash(ctx, user.ID, hashToken(refreshToken)); err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.ClearRefreshTokenHash(ctx, userID)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", ErrUnauthorized
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", "", err
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrUserNotFound
		}
		return "", "", err
	}

	newAccessToken, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		return "", "", err
	}
	newRefreshToken, err := s.tokens.GenerateRefreshToken(userID)
	if err != nil {
		return "", "", err
	}

	// compare-and-swap: the presented token must still be the stored one.
	// A token that was rotated out, or cleared by logout, swaps zero rows.
	swapped, err := s.userRepo.RotateRefreshTokenHash(ctx, userID, hashToken(refreshToken), hashToken(newRefreshToken))
	if err != nil {
		return "", "", err
	}
	if !swapped {
		return "", "", ErrTokenReused
	}

	return newAccessToken, newRefreshToken, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if oldPassword == "" || strings.TrimSpace(newPassword) == "" {
		return ErrValidation
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// existing sessions stay valid; changing the password does not revoke
	// the stored refresh token
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, string(hashedPassword)); err != nil {
		return err
	}

	if err := s.publisher.PublishPasswordChanged(userID); err != nil {
		slog.Warn("publishing user.password_changed", "error", err)
	}

	return nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
