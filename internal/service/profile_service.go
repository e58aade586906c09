package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"account-service/internal/model"
	"account-service/internal/repository"
)

type ProfileService interface {
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateAccountDetails(ctx context.Context, userID uuid.UUID, fullName, email string) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (*model.User, error)
	UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (*model.User, error)
}

type profileService struct {
	userRepo repository.UserRepository
	uploader Uploader
}

func NewProfileService(userRepo repository.UserRepository, uploader Uploader) ProfileService {
	return &profileService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *profileService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (s *profileService) UpdateAccountDetails(ctx context.Context, userID uuid.UUID, fullName, email string) (*model.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))

	if fullName == "" || email == "" {
		return nil, ErrValidation
	}

	user, err := s.userRepo.UpdateAccountDetails(ctx, userID, fullName, email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrUserNotFound
		case uniqueViolation(err):
			return nil, ErrAlreadyExists
		default:
			return nil, err
		}
	}

	return user, nil
}

func (s *profileService) UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (*model.User, error) {
	if localPath == "" {
		return nil, ErrValidation
	}

	url, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return nil, ErrUpload
	}

	user, err := s.userRepo.UpdateAvatarURL(ctx, userID, url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (s *profileService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (*model.User, error) {
	if localPath == "" {
		return nil, ErrValidation
	}

	url, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return nil, ErrUpload
	}

	user, err := s.userRepo.UpdateCoverImageURL(ctx, userID, url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}
