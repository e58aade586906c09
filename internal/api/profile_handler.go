package api

import (
	"context"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"account-service/internal/model"
	"account-service/internal/service"
)

type ProfileHandler struct {
	profileService service.ProfileService
	validate       *validator.Validate
	tempDir        string
}

func NewProfileHandler(profileService service.ProfileService, tempDir string) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		validate:       validator.New(),
		tempDir:        tempDir,
	}
}

func (h *ProfileHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := UserIDFromLocals(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, err.Error())
	}

	user, err := h.profileService.GetCurrentUser(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, fiber.StatusOK, toUserResponse(user), "current user fetched")
}

type UpdateAccountDetailsRequest struct {
	FullName string `json:"fullName" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
}

func (h *ProfileHandler) UpdateAccountDetails(c *fiber.Ctx) error {
	userID, err := UserIDFromLocals(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, err.Error())
	}

	var request UpdateAccountDetailsRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "cannot parse request body")
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid input: "+err.Error())
	}

	user, err := h.profileService.UpdateAccountDetails(c.Context(), userID, request.FullName, request.Email)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, fiber.StatusOK, toUserResponse(user), "account details updated")
}

func (h *ProfileHandler) UpdateAvatar(c *fiber.Ctx) error {
	return h.updateImage(c, "avatar", h.profileService.UpdateAvatar)
}

func (h *ProfileHandler) UpdateCoverImage(c *fiber.Ctx) error {
	return h.updateImage(c, "coverImage", h.profileService.UpdateCoverImage)
}

func (h *ProfileHandler) updateImage(c *fiber.Ctx, field string, update func(ctx context.Context, userID uuid.UUID, localPath string) (*model.User, error)) error {
	userID, err := UserIDFromLocals(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, err.Error())
	}

	file, err := c.FormFile(field)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, field+" file is required")
	}

	localPath, err := h.saveUpload(c, file)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "could not store uploaded file")
	}
	defer os.Remove(localPath)

	user, err := update(c.Context(), userID, localPath)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, fiber.StatusOK, toUserResponse(user), field+" updated")
}

func (h *ProfileHandler) saveUpload(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	path := filepath.Join(h.tempDir, uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveFile(file, path); err != nil {
		return "", err
	}
	return path, nil
}
