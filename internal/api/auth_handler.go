package api

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"account-service/internal/jwt"
	"account-service/internal/service"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

type AuthHandler struct {
	authService service.AuthService
	tokens      *jwt.TokenService
	validate    *validator.Validate
	tempDir     string
}

func NewAuthHandler(authService service.AuthService, tokens *jwt.TokenService, tempDir string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		validate:    validator.New(),
		tempDir:     tempDir,
	}
}

type RegisterRequest struct {
	Username string `form:"username" validate:"required,min=3"`
	Email    string `form:"email" validate:"required,email"`
	FullName string `form:"fullName" validate:"required,min=2"`
	Password string `form:"password" validate:"required,min=8"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request RegisterRequest

	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "cannot parse request body")
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid input: "+err.Error())
	}

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "avatar file is required")
	}

	avatarPath, err := h.saveUpload(c, avatarFile)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "could not store uploaded file")
	}
	defer os.Remove(avatarPath)

	coverImagePath := ""
	if coverFile, err := c.FormFile("coverImage"); err == nil {
		if coverImagePath, err = h.saveUpload(c, coverFile); err != nil {
			return respondError(c, fiber.StatusInternalServerError, "could not store uploaded file")
		}
		defer os.Remove(coverImagePath)
	}

	user, err := h.authService.Register(c.Context(), service.RegisterInput{
		Username:       request.Username,
		Email:          request.Email,
		FullName:       request.FullName,
		Password:       request.Password,
		AvatarPath:     avatarPath,
		CoverImagePath: coverImagePath,
	})
	if err != nil {
		return fail(c, err)
	}

	return respond(c, fiber.StatusCreated, toUserResponse(user), "user registered successfully")
}

type LoginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"required_without=Username"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request LoginRequest

	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "cannot parse request body")
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "username or email is required")
	}

	identifier := request.Username
	if identifier == "" {
		identifier = request.Email
	}

	user, accessToken, refreshToken, err := h.authService.Login(c.Context(), identifier, request.Password)
	if err != nil {
		return fail(c, err)
	}

	h.setAuthCookies(c, accessToken, refreshToken)

	return respond(c, fiber.StatusOK, fiber.Map{
		"user":         toUserResponse(user),
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, "logged in successfully")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := UserIDFromLocals(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, err.Error())
	}

	if err := h.authService.Logout(c.Context(), userID); err != nil {
		return fail(c, err)
	}

	h.clearAuthCookies(c)

	return respond(c, fiber.StatusOK, fiber.Map{}, "logged out successfully")
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	// cookie first, body fallback
	presented := c.Cookies(refreshTokenCookie)
	if presented == "" {
		var request RefreshRequest
		if err := c.BodyParser(&request); err == nil {
			presented = request.RefreshToken
		}
	}

	accessToken, refreshToken, err := h.authService.Refresh(c.Context(), presented)
	if err != nil {
		return fail(c, err)
	}

	h.setAuthCookies(c, accessToken, refreshToken)

	return respond(c, fiber.StatusOK, fiber.Map{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, "access token refreshed")
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := UserIDFromLocals(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, err.Error())
	}

	var request ChangePasswordRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "cannot parse request body")
	}

	if err := h.validate.Struct(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid input: "+err.Error())
	}

	if err := h.authService.ChangePassword(c.Context(), userID, request.OldPassword, request.NewPassword); err != nil {
		return fail(c, err)
	}

	return respond(c, fiber.StatusOK, fiber.Map{}, "password changed successfully")
}

func (h *AuthHandler) saveUpload(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	path := filepath.Join(h.tempDir, uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveFile(file, path); err != nil {
		return "", err
	}
	return path, nil
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     accessTokenCookie,
		Value:    accessToken,
		Expires:  time.Now().Add(h.tokens.AccessTTL()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     refreshTokenCookie,
		Value:    refreshToken,
		Expires:  time.Now().Add(h.tokens.RefreshTTL()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   true,
			SameSite: fiber.CookieSameSiteStrictMode,
		})
	}
}
